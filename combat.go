package main

import "log"

// ExplosionDamage is the blast damage at dist from the center, falling
// linearly to zero at the edge of the blast radius
func ExplosionDamage(dist, radius, damage float64) float64 {
	if radius <= 0 || dist >= radius {
		return 0
	}
	if dist < 0 {
		dist = 0
	}
	return (radius - dist) / radius * damage
}

// killPlayer moves victim to the dead state and credits the killer. A nil
// bullet means the victim died on its own with the pistol as the weapon.
func (g *Game) killPlayer(victim *Player, b *Bullet) {
	victim.IsDead = true
	victim.TimeToDeath = g.now
	victim.Deaths++
	victim.Health = 0

	killer, weapon := victim, WeaponPistol
	if b != nil {
		killer, weapon = b.Owner, b.Weapon.ID
	}

	if killer.Active {
		if killer == victim || (g.cfg.GameMode > ModeDeathmatch && killer.Team == victim.Team) {
			killer.Kills--
		} else {
			killer.Kills++
		}
	}

	g.queueAll(KillMessageEvent{
		Killer:       byte(killer.ID),
		Victim:       byte(victim.ID),
		Weapon:       weapon,
		KillerKills:  killer.Kills,
		KillerDeaths: killer.Deaths,
		VictimKills:  victim.Kills,
		VictimDeaths: victim.Deaths,
	}, 0)

	if g.cfg.LogKillMessages {
		if killer == victim {
			log.Printf("kill: %s killed themselves", victim.Name)
		} else {
			log.Printf("kill: %s killed %s with %s", killer.Name, victim.Name, weaponOrPistol(weapon).Name)
		}
	}
	g.stats.Kill(killer, victim, weapon)
}

// applyExplosion deals blast damage to p standing dist away from the center
func (g *Game) applyExplosion(b *Bullet, p *Player, dist float64) {
	p.Health -= ExplosionDamage(dist, b.Weapon.DamageRange, b.Weapon.Damage)
	if p.Health <= 0 {
		g.killPlayer(p, b)
	}
}

// setTeamEvenly picks a team for p: deathmatch puts everyone on team 1,
// zombie mode splits bots from humans, team deathmatch fills the smaller team
func (g *Game) setTeamEvenly(p *Player) {
	switch g.cfg.GameMode {
	case ModeDeathmatch:
		p.Team = 1
		return
	case ModeZombie:
		if p.Zombie {
			p.Team = 2
		} else {
			p.Team = 1
		}
		return
	}

	var greens, reds int
	for _, o := range g.slots() {
		if o == p || !o.LoggedIn {
			continue
		}
		if o.Team == 1 {
			greens++
		} else {
			reds++
		}
	}
	switch {
	case greens < reds:
		p.Team = 1
	case reds < greens:
		p.Team = 2
	default:
		p.Team = g.rng.Intn(2) + 1
	}
}
