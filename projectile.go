package main

import (
	"log"
	"math"
	"time"
)

// Bullet is a live projectile. Chainsaw swings are bullets that live for one tick.
type Bullet struct {
	Transform
	ID           uint16
	Owner        *Player
	Weapon       *Weapon
	PrevX, PrevY float64
	Hand         bool // muzzle side for dual-origin weapons
	Shot         time.Time
	moved        bool // first tick travels zero distance
}

// fireWeapon spawns every pellet of one trigger pull and returns how many
// made it into play
func (g *Game) fireWeapon(p *Player) int {
	w := p.CurrentWeapon()
	n := 0
	for i := 1; i <= w.Pellets; i++ {
		mirrored := w.ID == WeaponLauncher && i == 2
		if _, ok := g.newBullet(p, mirrored, i == 1); ok {
			n++
		} else if p.Protected(g.now, g.spawnProtection()) {
			break
		}
	}
	return n
}

// newBullet places one bullet at the shooter's muzzle. It fails when the
// shooter is spawn protected or the bullet cannot be walked out of a wall.
func (g *Game) newBullet(p *Player, mirrored, sound bool) (*Bullet, bool) {
	if p.Protected(g.now, g.spawnProtection()) {
		return nil, false
	}
	w := p.CurrentWeapon()

	g.lastBulletID++
	if g.lastBulletID == 0 {
		g.lastBulletID = 1
	}
	b := &Bullet{
		Transform: p.Transform,
		ID:        g.lastBulletID,
		Owner:     p,
		Weapon:    w,
		Shot:      g.now,
	}

	yaw := w.BulletYaw
	if w.ID == WeaponPistol {
		if !p.HandShot {
			yaw = -yaw
			p.HandShot = true
		} else {
			p.HandShot = false
		}
	}
	b.Hand = p.HandShot
	b.Move(w.BulletForth, yaw)

	var spread float64
	if w.ID == WeaponLauncher {
		spread = w.Spread
		if mirrored {
			spread = -spread
		}
	} else {
		spread = randInt(g.rng, -w.Spread, w.Spread)
	}
	b.Angle += spread
	if w.ID == WeaponShotgun {
		b.Move(randInt(g.rng, 0, 20), 0)
	}

	grid := g.grid()
	for i := 0; i < maxBacktrackStep && grid.IsBlocked(b.X, b.Y); i++ {
		b.Move(-1, 0)
	}
	if grid.IsBlocked(b.X, b.Y) {
		g.lastBulletID--
		if g.debug {
			log.Printf("bullet: %s fired from inside a wall", p.Name)
		}
		return nil, false
	}

	b.PrevX, b.PrevY = b.X, b.Y
	g.bullets = append(g.bullets, b)
	g.queueAll(NewBulletEvent{
		BulletID: b.ID,
		PlayerID: byte(p.ID),
		Weapon:   w.ID,
		Sound:    sound,
		Hand:     b.Hand,
		X:        b.X,
		Y:        b.Y,
		Angle:    b.Angle,
	}, 0)
	return b, true
}

// updateBullets advances every live bullet and drops the ones that hit something
func (g *Game) updateBullets() {
	live := g.bullets[:0]
	for _, b := range g.bullets {
		if !g.updateBullet(b) {
			live = append(live, b)
		}
	}
	for i := len(live); i < len(g.bullets); i++ {
		g.bullets[i] = nil
	}
	g.bullets = live
}

// updateBullet moves b one tick and reports whether it hit something
func (g *Game) updateBullet(b *Bullet) bool {
	if !b.moved {
		b.moved = true
	} else {
		b.Move(g.movePerSec(b.Weapon.BulletSpeed), 0)
	}

	hit := false
	switch {
	case b.Weapon.ID == WeaponLauncher && b.Shot.Add(launcherFuse*time.Millisecond).Before(g.now):
		hit = true
		g.queueAll(BulletHitEvent{BulletID: b.ID, X: b.X, Y: b.Y, Weapon: b.Weapon.ID}, 0)
		g.checkExplosion(b, b.X, b.Y)
	case g.grid().IsBlocked(b.X, b.Y) || b.Weapon.ID == WeaponChainsaw:
		hit = true
		g.checkExplosion(b, b.X, b.Y)
	default:
		for _, p := range g.slots() {
			if g.checkPlayerHit(b, p) {
				hit = true
				break
			}
		}
	}

	if !hit {
		b.PrevX, b.PrevY = b.X, b.Y
	}
	return hit
}

// checkExplosion applies blast damage around (x, y). It reports false for
// weapons without a blast radius.
func (g *Game) checkExplosion(b *Bullet, x, y float64) bool {
	if b.Weapon.DamageRange <= 0 {
		return false
	}
	for _, p := range g.slots() {
		if !p.Alive() || p.Protected(g.now, g.spawnProtection()) {
			continue
		}
		if b.Weapon.ID == WeaponChainsaw && p == b.Owner {
			continue
		}
		if d := Distance(x, y, p.X, p.Y); d <= b.Weapon.DamageRange {
			g.applyExplosion(b, p, d)
		}
	}
	return true
}

// checkPlayerHit samples the path travelled this tick in steps of at most
// hitSampleStep units and hits p on the first sample within directHitRadius
func (g *Game) checkPlayerHit(b *Bullet, p *Player) bool {
	if !p.Alive() || p.Protected(g.now, g.spawnProtection()) || p == b.Owner {
		return false
	}
	travelled := Distance(b.PrevX, b.PrevY, b.X, b.Y)
	steps := int(math.Ceil(travelled / hitSampleStep))
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps)
		x := b.PrevX + (b.X-b.PrevX)*t
		y := b.PrevY + (b.Y-b.PrevY)*t
		if Distance(x, y, p.X, p.Y) < directHitRadius {
			g.bulletHit(b, p, x, y)
			return true
		}
	}
	return false
}

// bulletHit resolves a direct hit on victim at the sampled point (x, y)
func (g *Game) bulletHit(b *Bullet, victim *Player, x, y float64) {
	if victim.IsDead {
		return
	}
	g.queueAll(BulletHitEvent{
		BulletID: b.ID,
		Victim:   byte(victim.ID),
		X:        x,
		Y:        y,
		Weapon:   b.Weapon.ID,
	}, 0)
	if g.checkExplosion(b, x, y) {
		return
	}
	victim.Health -= b.Weapon.Damage
	if victim.Health <= 0 {
		g.killPlayer(victim, b)
	}
}

// clearBullets drops every live bullet
func (g *Game) clearBullets() {
	g.bullets = nil
}
