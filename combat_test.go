package main

import (
	"testing"

	"go.uber.org/mock/gomock"
	"pgregory.net/rapid"
)

func TestExplosionDamageFalloff(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		radius := rapid.Float64Range(1, 500).Draw(rt, "radius")
		damage := rapid.Float64Range(1, 500).Draw(rt, "damage")
		d1 := rapid.Float64Range(0, 600).Draw(rt, "d1")
		d2 := rapid.Float64Range(0, 600).Draw(rt, "d2")
		if d1 > d2 {
			d1, d2 = d2, d1
		}

		near, far := ExplosionDamage(d1, radius, damage), ExplosionDamage(d2, radius, damage)
		if near < far {
			rt.Fatalf("damage grew with distance: %v at %v, %v at %v", near, d1, far, d2)
		}
		if near < 0 || near > damage {
			rt.Fatalf("damage %v outside [0, %v]", near, damage)
		}
		if d2 >= radius && far != 0 {
			rt.Fatalf("expected no damage at %v outside radius %v, got %v", d2, radius, far)
		}
	})
}

func TestExplosionDamageEdges(t *testing.T) {
	if got := ExplosionDamage(0, 250, 150); got != 150 {
		t.Errorf("expected full damage at the center, got %v", got)
	}
	if got := ExplosionDamage(125, 250, 150); got != 75 {
		t.Errorf("expected half damage halfway out, got %v", got)
	}
	if got := ExplosionDamage(250, 250, 150); got != 0 {
		t.Errorf("expected no damage at the edge, got %v", got)
	}
	if got := ExplosionDamage(10, 0, 150); got != 0 {
		t.Errorf("expected no damage without a radius, got %v", got)
	}
}

func TestKillCreditsKiller(t *testing.T) {
	h := newTestGame(t, nil)
	ctrl := gomock.NewController(t)
	stats := NewMockStatsSink(ctrl)
	stats.EXPECT().Login(gomock.Any()).AnyTimes()
	h.g.SetStats(stats)

	alice := h.login(addrA, 1, "alice")
	bob := h.login(addrB, 2, "bob")
	stats.EXPECT().Kill(alice, bob, WeaponBazooka)

	h.g.killPlayer(bob, &Bullet{Owner: alice, Weapon: weaponOrPistol(WeaponBazooka)})

	if !bob.IsDead || bob.Health != 0 || bob.Deaths != 1 {
		t.Errorf("unexpected victim state: dead %v health %v deaths %d", bob.IsDead, bob.Health, bob.Deaths)
	}
	if !bob.TimeToDeath.Equal(h.now) {
		t.Errorf("expected time of death %v, got %v", h.now, bob.TimeToDeath)
	}
	if alice.Kills != 1 {
		t.Errorf("expected 1 kill, got %d", alice.Kills)
	}
	for _, id := range []int{alice.ID, bob.ID} {
		msgs := pendingOf[KillMessageEvent](h.g, id)
		if len(msgs) != 1 || msgs[0].Killer != byte(alice.ID) || msgs[0].Victim != byte(bob.ID) || msgs[0].KillerKills != 1 {
			t.Errorf("slot %d: unexpected kill messages %+v", id, msgs)
		}
	}
}

func TestSuicideCostsAKill(t *testing.T) {
	h := newTestGame(t, nil)
	alice := h.login(addrA, 1, "alice")
	alice.Kills = 2

	h.g.killPlayer(alice, nil)
	if alice.Kills != 1 || alice.Deaths != 1 {
		t.Errorf("expected 1/1 after a suicide, got %d/%d", alice.Kills, alice.Deaths)
	}
	msgs := pendingOf[KillMessageEvent](h.g, alice.ID)
	if len(msgs) != 1 || msgs[0].Killer != msgs[0].Victim || msgs[0].Weapon != WeaponPistol {
		t.Errorf("unexpected suicide message %+v", msgs)
	}
}

func TestTeamKillCostsAKill(t *testing.T) {
	h := newTestGame(t, func(c *Config) { c.GameMode = ModeTeamDeathmatch })
	alice := h.login(addrA, 1, "alice")
	bob := h.login(addrB, 2, "bob")
	alice.Team, bob.Team = 2, 2

	h.g.killPlayer(bob, &Bullet{Owner: alice, Weapon: weaponOrPistol(WeaponMachinegun)})
	if alice.Kills != -1 {
		t.Errorf("expected a team kill to cost a kill, got %d", alice.Kills)
	}

	bob.Team = 1
	h.g.killPlayer(bob, &Bullet{Owner: alice, Weapon: weaponOrPistol(WeaponMachinegun)})
	if alice.Kills != 0 {
		t.Errorf("expected an enemy kill to count, got %d", alice.Kills)
	}
}

func TestKillByDepartedPlayerKeepsScore(t *testing.T) {
	h := newTestGame(t, nil)
	alice := h.login(addrA, 1, "alice")
	bob := h.login(addrB, 2, "bob")
	h.g.logout(alice.ID)

	h.g.killPlayer(bob, &Bullet{Owner: alice, Weapon: weaponOrPistol(WeaponBazooka)})
	if alice.Kills != 0 {
		t.Errorf("a departed killer should not score, got %d", alice.Kills)
	}
	if bob.Deaths != 1 {
		t.Errorf("the death still counts, got %d", bob.Deaths)
	}
}

func TestApplyExplosion(t *testing.T) {
	h := newTestGame(t, nil)
	alice := h.login(addrA, 1, "alice")
	bob := h.login(addrB, 2, "bob")
	b := &Bullet{Owner: alice, Weapon: weaponOrPistol(WeaponBazooka)}

	h.g.applyExplosion(b, bob, 125)
	if bob.Health != 25 || bob.IsDead {
		t.Errorf("expected 25 health left, got %v", bob.Health)
	}
	h.g.applyExplosion(b, bob, 125)
	if !bob.IsDead || alice.Kills != 1 {
		t.Errorf("expected bob dead and credited to alice, dead %v kills %d", bob.IsDead, alice.Kills)
	}
}

func TestSetTeamEvenly(t *testing.T) {
	h := newTestGame(t, func(c *Config) { c.GameMode = ModeTeamDeathmatch })
	for i, team := range []int{1, 1, 2} {
		p := h.g.players[i+1]
		p.Active, p.LoggedIn, p.Team = true, true, team
	}
	p := h.g.players[4]
	h.g.setTeamEvenly(p)
	if p.Team != 2 {
		t.Errorf("expected the smaller team 2, got %d", p.Team)
	}

	h.g.players[3].Team = 1
	h.g.players[2].Team = 2
	h.g.players[1].Team = 2
	h.g.setTeamEvenly(p)
	if p.Team != 1 {
		t.Errorf("expected the smaller team 1, got %d", p.Team)
	}
}

func TestSetTeamEvenlyZombieMode(t *testing.T) {
	h := newTestGame(t, func(c *Config) { c.GameMode = ModeZombie })
	human, bot := h.g.players[1], h.g.players[2]
	bot.Zombie = true

	h.g.setTeamEvenly(human)
	h.g.setTeamEvenly(bot)
	if human.Team != 1 || bot.Team != 2 {
		t.Errorf("expected humans on 1 and zombies on 2, got %d and %d", human.Team, bot.Team)
	}
}
