package main

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
)

const (
	mapChangeAfter = 5 * time.Second  // past the end of a round
	roundResetAt   = 10 * time.Second // past the end of a round
)

// roundState tracks the timed round
type roundState struct {
	ID         uuid.UUID
	StartedAt  time.Time
	Complete   bool
	Killed     bool // everyone was killed when the round ended
	MapChanged bool
}

// RoundPlayer is one player's result in a finished round
type RoundPlayer struct {
	Name   string
	Bot    bool
	Team   int
	Kills  int
	Deaths int
}

// RoundRecord is a finished round
type RoundRecord struct {
	ID        uuid.UUID
	Map       string
	Mode      int
	StartedAt time.Time
	EndedAt   time.Time
	Players   []RoundPlayer
}

// Winner returns the player with the most kills, fewest deaths breaking ties
func (r RoundRecord) Winner() (RoundPlayer, bool) {
	var best RoundPlayer
	found := false
	for _, p := range r.Players {
		if !found || p.Kills > best.Kills || (p.Kills == best.Kills && p.Deaths < best.Deaths) {
			best, found = p, true
		}
	}
	return best, found
}

func (g *Game) newRound() {
	g.round = roundState{ID: uuid.New(), StartedAt: g.now}
}

// timeLeft is the time until the round ends. ok is false when rounds are off.
func (g *Game) timeLeft() (left time.Duration, ok bool) {
	period := time.Duration(g.cfg.PeriodLength) * time.Second
	if period <= 0 {
		return 0, false
	}
	return g.round.StartedAt.Add(period).Sub(g.now), true
}

// updateRoundTime ends, rotates and restarts rounds. The clock does not run
// while nobody is playing.
func (g *Game) updateRoundTime() {
	left, ok := g.timeLeft()
	if !ok {
		return
	}
	if g.playerCount <= 0 {
		if g.round.Complete {
			g.resetRound()
		}
		g.round.StartedAt = g.now
		return
	}
	if left > 0 {
		return
	}

	if !g.round.Complete {
		g.round.Complete = true
		g.finishRound()
	}
	g.clearBullets()

	if !g.round.Killed {
		g.round.Killed = true
		for _, p := range g.slots() {
			if !p.Active {
				continue
			}
			p.Health = -10
			p.IsDead = true
			p.TimeToDeath = g.now
		}
	}

	if left < -mapChangeAfter && len(g.maps) > 1 && !g.round.MapChanged {
		g.round.MapChanged = true
		g.nextMap()
	}
	if left < -roundResetAt {
		g.resetRound()
	}
}

// finishRound records the results and announces the winner
func (g *Game) finishRound() {
	rec := RoundRecord{
		ID:        g.round.ID,
		Map:       g.currentMap().Name,
		Mode:      g.cfg.GameMode,
		StartedAt: g.round.StartedAt,
		EndedAt:   g.now,
	}
	for _, p := range g.slots() {
		if !p.Active {
			continue
		}
		rec.Players = append(rec.Players, RoundPlayer{
			Name:   p.Name,
			Bot:    p.Zombie,
			Team:   p.Team,
			Kills:  p.Kills,
			Deaths: p.Deaths,
		})
	}
	if w, ok := rec.Winner(); ok {
		g.serverMessage(fmt.Sprintf("Round over! %s wins with %d kills.", w.Name, w.Kills))
	}
	log.Printf("round: %s finished on %s with %d players", rec.ID, rec.Map, len(rec.Players))
	g.stats.RoundEnd(rec)
}

// nextMap switches to the next map in the rotation
func (g *Game) nextMap() {
	g.mapIndex = (g.mapIndex + 1) % len(g.maps)
	m := g.currentMap()
	log.Printf("round: switching to %s", m.Name)
	g.applyMapBots()
	g.initItems()
	for _, p := range g.slots() {
		if !p.Active {
			continue
		}
		if p.Zombie {
			p.Name = m.BotName(MaxSlots + 1 - p.ID)
		} else {
			p.SendNames = true
		}
	}
}

// resetRound starts a new round. Everyone respawns on the next tick and
// humans still on the old map are dropped.
func (g *Game) resetRound() {
	g.newRound()
	mapName := g.currentMap().Name
	respawn := g.now.Add(-2 * ms(g.cfg.DeathDelay))
	for _, p := range g.slots() {
		if !p.Active {
			continue
		}
		p.Kills = 0
		p.Deaths = 0
		p.TimeToDeath = respawn
		if len(g.maps) > 1 && p.Human() && p.MapName != mapName {
			log.Printf("round: %s is still on %s", p.Name, p.MapName)
			g.logout(p.ID)
		}
	}
}
