package main

import (
	"time"
)

const (
	PlayerMaxHealth = 100
	zombieHealth    = 10   // health of bots respawning in zombie mode
	healthPickup    = 50   // health restored by a health item
	bodyRadius      = 20.0 // bots slide along walls at this radius
	sideStepSpeed   = 150  // units/s
)

// Player is one slot of the fixed pool shared by humans and bots.
// Zombie marks a bot.
type Player struct {
	Transform
	ID      int
	Peer    Peer
	Name    string
	MapName string // map the client reports having loaded

	Active   bool
	LoggedIn bool
	Zombie   bool
	Admin    bool

	Kicked     bool
	KickReason string
	KickedBy   int // 0 when the server kicked

	Team         int
	Health       float64
	IsDead       bool
	TimeToDeath  time.Time
	SpawnTime    time.Time
	LastActivity time.Time
	Lag          time.Duration

	Weapon   int
	HasAmmo  bool
	HandShot bool // pistol alternates muzzle sides
	Kills    int
	Deaths   int

	SendNames     bool // client asked for the roster
	DebugState    int  // debug shapes queued since the last reply
	moveCheckedAt time.Time

	Bot *BotAI
}

// NewPlayer creates an empty slot
func NewPlayer(id int) *Player {
	return &Player{ID: id, Team: 1, Weapon: WeaponPistol}
}

// Protected reports whether the player is inside its spawn-protection window
func (p *Player) Protected(now time.Time, window time.Duration) bool {
	return p.SpawnTime.Add(window).After(now)
}

// Alive reports whether the slot is in play and has health left
func (p *Player) Alive() bool {
	return p.Active && p.Health > 0
}

// Human reports whether the slot is held by a connected client
func (p *Player) Human() bool {
	return p.Active && !p.Zombie
}

// CurrentWeapon returns the weapon the player holds
func (p *Player) CurrentWeapon() *Weapon {
	return weaponOrPistol(p.Weapon)
}

// spawn resets the per-life state at a new position
func (p *Player) spawn(x, y float64, now time.Time) {
	p.X, p.Y = x, y
	p.Health = PlayerMaxHealth
	p.SpawnTime = now
	p.moveCheckedAt = time.Time{}
}

// leave frees the slot
func (p *Player) leave() {
	p.Active = false
	p.LoggedIn = false
	p.Admin = false
	p.SendNames = false
	p.DebugState = 0
}

// updatePosition applies a PLAYER message from the client. Dead players
// keep their position until they respawn.
func (p *Player) updatePosition(u PlayerUpdate) {
	if p.IsDead {
		return
	}
	p.X = float64(u.X)
	p.Y = float64(u.Y)
	p.Angle = float64(u.Angle)
	if ValidWeapon(u.Weapon) {
		p.Weapon = u.Weapon
	}
	p.HasAmmo = u.HasAmmo
}

// teamBit is the team flag carried in snapshots: set for team 2
func (p *Player) teamBit() byte {
	if p.Team == 2 {
		return 1
	}
	return 0
}
