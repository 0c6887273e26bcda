package main

import (
	"testing"
	"time"
)

func TestNewPlayer(t *testing.T) {
	p := NewPlayer(5)
	if p.ID != 5 || p.Team != 1 || p.Weapon != WeaponPistol {
		t.Errorf("unexpected defaults %+v", p)
	}
	if p.Active || p.Alive() || p.Human() {
		t.Error("a new slot should be empty")
	}
}

func TestProtectedWindow(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	p := NewPlayer(1)
	p.spawn(10, 20, now)

	window := 3 * time.Second
	if !p.Protected(now.Add(time.Second), window) {
		t.Error("expected protection inside the window")
	}
	if p.Protected(now.Add(window), window) {
		t.Error("protection should end with the window")
	}
	if p.Protected(now, 0) {
		t.Error("no window means no protection")
	}
}

func TestSpawnResetsLife(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	p := NewPlayer(1)
	p.Health = -10
	p.moveCheckedAt = now.Add(-time.Second)

	p.spawn(10, 20, now)
	if p.X != 10 || p.Y != 20 || p.Health != PlayerMaxHealth || !p.SpawnTime.Equal(now) {
		t.Errorf("unexpected spawn state %+v", p)
	}
	if !p.moveCheckedAt.IsZero() {
		t.Error("spawn should restart the speed check")
	}
}

func TestUpdatePositionFrozenWhileDead(t *testing.T) {
	p := NewPlayer(1)
	p.X, p.Y = 5, 5
	p.IsDead = true

	p.updatePosition(PlayerUpdate{X: 100, Y: 100, Angle: 45, Weapon: WeaponShotgun})
	if p.X != 5 || p.Y != 5 || p.Weapon != WeaponPistol {
		t.Errorf("dead player moved: (%v,%v) weapon %d", p.X, p.Y, p.Weapon)
	}

	p.IsDead = false
	p.updatePosition(PlayerUpdate{X: 100, Y: -100, Angle: 45, Weapon: WeaponShotgun, HasAmmo: true})
	if p.X != 100 || p.Y != -100 || p.Angle != 45 || p.Weapon != WeaponShotgun || !p.HasAmmo {
		t.Errorf("unexpected state after update %+v", p)
	}
}

func TestUpdatePositionIgnoresBadWeapon(t *testing.T) {
	p := NewPlayer(1)
	p.Weapon = WeaponBazooka
	p.updatePosition(PlayerUpdate{Weapon: 0})
	if p.Weapon != WeaponBazooka {
		t.Errorf("weapon 0 should be ignored, got %d", p.Weapon)
	}
	p.updatePosition(PlayerUpdate{Weapon: 7})
	if p.Weapon != WeaponBazooka {
		t.Errorf("weapon 7 should be ignored, got %d", p.Weapon)
	}
}

func TestLeaveClearsSession(t *testing.T) {
	p := NewPlayer(1)
	p.Active, p.LoggedIn, p.Admin, p.SendNames = true, true, true, true
	p.Kills = 4

	p.leave()
	if p.Active || p.LoggedIn || p.Admin || p.SendNames {
		t.Errorf("session survived leave: %+v", p)
	}
	if p.Kills != 4 {
		t.Error("leave should keep the score for the round record")
	}
}

func TestTeamBit(t *testing.T) {
	p := NewPlayer(1)
	if p.teamBit() != 0 {
		t.Error("team 1 should clear the bit")
	}
	p.Team = 2
	if p.teamBit() != 1 {
		t.Error("team 2 should set the bit")
	}
}

func TestCurrentWeaponFallsBack(t *testing.T) {
	p := NewPlayer(1)
	p.Weapon = 42
	if w := p.CurrentWeapon(); w.ID != WeaponPistol {
		t.Errorf("expected the pistol for a bad id, got %d", w.ID)
	}
}
