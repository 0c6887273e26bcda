package main

import (
	"math"
	"time"
)

// Wall avoidance tuning
const (
	botMinNextAction = 500  // ms until the earliest new wander decision
	botMaxNextAction = 1000 // ms until the latest new wander decision
	botRandRotation  = 90   // deg/s, max wander turn rate
	botMinSpeed      = 80   // speed while escaping a wall
	botMaxSpeed      = 200  // speed when the way is clear
	botWakeupDist    = 100  // walls closer than this trigger an escape
	botSideProbe     = 15   // lateral offset of the side probes
	botExploreAngle  = 50   // escape probes look this far to each side
	botDodgeRotation = 0.2  // smaller means a sharper escape turn
)

// Combat tuning
const (
	botFightDist    = 600 // targets further than this are ignored
	botPistolJitter = 250 // ms of random delay added to pistol reloads
	maxBotSkill     = 64
)

// BotAI is the decision state of one bot
type BotAI struct {
	NextAngle  float64 // escape heading while TooClose
	LastAngle  float64 // heading error on the previous tick
	Rotation   float64 // deg/s
	SideStep   float64 // -1..1
	NextAction time.Time
	TooClose   bool

	Skill         int
	FOV           float64 // full view cone in degrees
	FightRotate   float64 // deg/s while facing a target
	ShootingAngle float64 // fire when the target is this close to the heading

	Target   *Player
	NextShot time.Time
}

// NewBotAI creates the AI for a bot at the lowest skill
func NewBotAI() *BotAI {
	ai := &BotAI{}
	ai.SetSkill(1)
	return ai
}

// SetSkill derives the combat constants from a skill level in 1..64.
// Higher skill narrows the view cone and shooting angle and turns faster.
func (ai *BotAI) SetSkill(skill int) {
	if skill < 1 {
		skill = 1
	}
	if skill > maxBotSkill {
		skill = maxBotSkill
	}
	ai.Skill = skill
	s := float64(skill-1) / float64(maxBotSkill-1)
	ai.FOV = 180 - 90*s
	ai.FightRotate = 120 + 240*s
	ai.ShootingAngle = 20 - 16*s
}

// updateBots runs the AI of every living bot
func (g *Game) updateBots() {
	if g.playerCount <= 0 || g.round.Complete {
		return
	}
	if g.debug {
		for _, p := range g.slots() {
			if p.Human() && p.LoggedIn && p.DebugState == 0 {
				g.queueTo(p.ID, DebugDrawEvent{DrawType: DrawClear})
				p.DebugState = 1
			}
		}
	}
	for _, p := range g.slots() {
		if p.Zombie && p.Active && !p.IsDead && p.Bot != nil {
			g.updateBot(p)
		}
	}
}

// updateBot fights the nearest visible enemy or else wanders
func (g *Game) updateBot(p *Player) {
	ai := p.Bot
	ai.Target = g.findTarget(p)
	if ai.Target != nil {
		g.botFight(p, ai.Target)
		return
	}
	g.botWander(p)
}

// findTarget returns the nearest enemy inside the view cone with a clear line of sight
func (g *Game) findTarget(p *Player) *Player {
	ai := p.Bot
	grid := g.grid()
	var best *Player
	bestDist := math.Inf(1)
	for _, o := range g.slots() {
		if o == p || !o.Active || !o.LoggedIn || o.IsDead || o.Health <= 0 {
			continue
		}
		if g.cfg.GameMode > ModeDeathmatch && o.Team == p.Team {
			continue
		}
		d := Distance(p.X, p.Y, o.X, o.Y)
		if d > botFightDist || d >= bestDist {
			continue
		}
		if math.Abs(AngleDelta(GetAngle(o.X, o.Y, p.X, p.Y), p.Angle)) > ai.FOV/2 {
			continue
		}
		if _, blocked := grid.SegmentBlocked(p.X, p.Y, o.X, o.Y); blocked {
			continue
		}
		best, bestDist = o, d
	}
	return best
}

// botFight turns toward t, keeps the weapon's safe distance and fires when lined up
func (g *Game) botFight(p, t *Player) {
	ai := p.Bot
	ai.TooClose = false
	ai.Rotation = 0
	if ai.SideStep == 0 {
		ai.SideStep = float64(g.rng.Intn(2)*2 - 1)
	}
	w := p.CurrentWeapon()

	diff := AngleDelta(GetAngle(t.X, t.Y, p.X, p.Y), p.Angle)
	maxTurn := g.movePerSec(ai.FightRotate)
	turn := Clamp(diff, -maxTurn, maxTurn)
	p.Turn(turn)
	diff -= turn

	dist := Distance(p.X, p.Y, t.X, t.Y)
	dir := 1.0
	if dist < w.SafeRange {
		dir = -1
	}
	g.botMove(p, dir, botMaxSpeed)

	protection := g.spawnProtection()
	if math.Abs(diff) > ai.ShootingAngle || dist <= w.SafeRange/2 || dist > w.ShootRange {
		return
	}
	if p.Protected(g.now, protection) || t.Protected(g.now, protection) || g.now.Before(ai.NextShot) {
		return
	}
	g.fireWeapon(p)
	reload := ms(w.ReloadTime)
	if w.ID == WeaponPistol {
		reload += ms(g.rng.Intn(botPistolJitter + 1))
	}
	ai.NextShot = g.now.Add(reload)
}

// botWander steers away from walls with three short probes ahead of the bot
func (g *Game) botWander(p *Player) {
	ai := p.Bot
	grid := g.grid()

	if !ai.TooClose && ai.NextAction.Before(g.now) {
		ai.NextAction = g.now.Add(ms(int(randInt(g.rng, botMinNextAction, botMaxNextAction))))
		ai.Rotation = randFloat(g.rng, -botRandRotation, botRandRotation)
		if ai.SideStep != 0 {
			ai.SideStep = randFloat(g.rng, -1, 1)
		}
	}
	p.Turn(g.movePerSec(ai.Rotation))

	if !ai.TooClose {
		picker := p.Transform
		minDist := math.Inf(1)
		probe := func() {
			hit, ok := grid.CastRay(picker.X, picker.Y, picker.Angle, botWakeupDist)
			g.debugRay(picker, hit, ok)
			if ok {
				minDist = math.Min(minDist, hit.Dist)
			}
		}
		probe()
		picker.Move(0, -botSideProbe)
		probe()
		picker.Move(0, 2*botSideProbe)
		probe()

		if !math.IsInf(minDist, 1) {
			picker.Angle = p.Angle
			picker.Turn(-botExploreAngle)
			dist1 := g.exploreDist(picker)
			picker.Turn(2 * botExploreAngle)
			dist2 := g.exploreDist(picker)

			dodge := botWakeupDist - minDist
			if dist1 > dist2 {
				dodge = -dodge
			}
			ai.Rotation = dodge / botDodgeRotation
			ai.NextAngle = WrapAngle(p.Angle + dodge)
			ai.TooClose = true
			ai.LastAngle = AngleDelta(p.Angle, ai.NextAngle)
		}
	} else {
		// Sign change of the heading error means the escape heading was crossed.
		objective := AngleDelta(p.Angle, ai.NextAngle)
		if (objective < 0 && ai.LastAngle >= 0) || (objective > 0 && ai.LastAngle <= 0) {
			ai.Rotation = 0
			ai.TooClose = false
		}
		ai.LastAngle = objective
	}

	speed := float64(botMaxSpeed)
	if ai.TooClose {
		speed = botMinSpeed
	}
	g.botMove(p, 1, speed)
}

// exploreDist is the clear distance along a long probe
func (g *Game) exploreDist(t Transform) float64 {
	grid := g.grid()
	hit, ok := grid.CastRay(t.X, t.Y, t.Angle, grid.Diagonal())
	g.debugRay(t, hit, ok)
	if !ok {
		return grid.Diagonal()
	}
	return hit.Dist
}

// botMove moves a bot scaled by its weapon weight and slides it along walls
func (g *Game) botMove(p *Player, dir, speed float64) {
	w := p.CurrentWeapon()
	forward := dir * 100 / w.Weight * g.movePerSec(speed)
	side := p.Bot.SideStep * 100 / w.Weight * g.movePerSec(sideStepSpeed*0.8)

	oldX, oldY := p.X, p.Y
	p.Move(forward, side)
	s := g.grid().CircleVsGrid(p.X, p.Y, bodyRadius)
	if !s.Any() {
		return
	}
	dx, dy := p.X-oldX, p.Y-oldY
	if (dx > 0 && s.Right) || (dx < 0 && s.Left) {
		p.X = oldX
	}
	if (dy > 0 && s.Up) || (dy < 0 && s.Down) {
		p.Y = oldY
	}
}

// debugRay draws a probe and its hit for clients collecting debug shapes
func (g *Game) debugRay(t Transform, hit RayHit, ok bool) {
	if !g.debug {
		return
	}
	endX := t.X + math.Cos(t.Angle*degToRad)*botWakeupDist
	endY := t.Y + math.Sin(t.Angle*degToRad)*botWakeupDist
	for _, p := range g.slots() {
		if p.DebugState == 0 || !p.Human() {
			continue
		}
		p.DebugState++
		g.queueTo(p.ID, DebugDrawEvent{DrawType: DrawLine, Vars: []float64{
			math.Round(t.X), math.Round(t.Y), math.Round(endX), math.Round(endY),
		}})
		if ok {
			g.queueTo(p.ID, DebugDrawEvent{DrawType: DrawCircle, Vars: []float64{
				math.Round(hit.X), math.Round(hit.Y), 5, 0,
			}})
		}
	}
}

// botWeapon picks a weapon from the configured pool, the map's pool or all weapons
func (g *Game) botWeapon() int {
	pool := g.botWeapons
	if len(pool) == 0 {
		pool = g.currentMap().Config.BotWeapons
	}
	if len(pool) == 0 {
		return WeaponPistol + g.rng.Intn(WeaponChainsaw)
	}
	w := pool[g.rng.Intn(len(pool))]
	if !ValidWeapon(w) {
		return WeaponPistol
	}
	return w
}

// desiredBots is the bot count after humans above the depart limit push bots out
func (g *Game) desiredBots() int {
	n := g.botCount
	if g.botDepartLimit >= 0 && g.playerCount > g.botDepartLimit {
		n -= g.playerCount - g.botDepartLimit
	}
	if free := MaxSlots - g.playerCount; n > free {
		n = free
	}
	if n < 0 {
		n = 0
	}
	return n
}

// activeBots counts bots in play
func (g *Game) activeBots() int {
	n := 0
	for _, p := range g.slots() {
		if p.Active && p.Zombie {
			n++
		}
	}
	return n
}

// rebalanceBots adds bots from the top slot down or removes the most recently added
func (g *Game) rebalanceBots() {
	want, have := g.desiredBots(), g.activeBots()
	for ; have < want; have++ {
		id := g.freeSlotFromTop()
		if id == 0 {
			return
		}
		p := g.addBot(id)
		g.queueAll(LoginEvent{ID: byte(p.ID), Name: p.Name, Zombie: true}, 0)
	}
	for ; have > want; have-- {
		for _, p := range g.slots() {
			if p.Active && p.Zombie {
				g.removeBot(p)
				break
			}
		}
	}
}

func (g *Game) freeSlotFromTop() int {
	for id := MaxSlots; id >= 1; id-- {
		if !g.players[id].Active {
			return id
		}
	}
	return 0
}

// addBot puts a bot in slot id. Skill grows with the number of bots above it.
func (g *Game) addBot(id int) *Player {
	p := g.players[id]
	*p = *NewPlayer(id)
	p.Name = g.currentMap().BotName(MaxSlots + 1 - id)
	p.Zombie = true
	p.Active = true
	p.LoggedIn = true
	p.Health = PlayerMaxHealth
	p.Weapon = g.botWeapon()
	p.X, p.Y = g.findSpot()
	p.Angle = randInt(g.rng, 0, 360)
	switch g.cfg.GameMode {
	case ModeTeamDeathmatch:
		p.Team = g.nextBotTeam
		g.nextBotTeam = 3 - g.nextBotTeam
	default:
		g.setTeamEvenly(p)
	}
	p.Bot = NewBotAI()
	p.Bot.SetSkill(MaxSlots + 1 - id)
	return p
}

// removeBot frees a bot slot and tells the clients
func (g *Game) removeBot(p *Player) {
	p.leave()
	p.Zombie = false
	p.Bot = nil
	g.outbox.Clear(p.ID)
	g.queueAll(LogoutEvent{ID: byte(p.ID)}, 0)
}
