package main

import (
	"context"
	"errors"
	"log"
	"math/rand"
	"net/netip"
	"sync"
	"time"
)

const inboundQueueSize = 1024

// ErrClosed is returned by Do once the game loop has stopped
var ErrClosed = errors.New("game closed")

// Datagram is one inbound packet and its source address
type Datagram struct {
	From netip.AddrPort
	Data []byte
}

//go:generate mockgen -source=game.go -destination=mock_sender_test.go -package=main

// Sender delivers a reply datagram to a peer
type Sender interface {
	Send(to netip.AddrPort, b []byte) error
}

// Game holds the whole server state. Everything below mu is owned by the
// loop goroutine started by Run; other goroutines go through Do.
type Game struct {
	mu sync.Mutex

	cfg      *Config
	maps     []*GameMap
	mapIndex int
	sender   Sender
	stats    StatsSink
	commands *Dispatcher
	auth     *AdminAuth

	players      [MaxSlots + 1]*Player // index 0 unused
	playerCount  int                   // logged in humans
	outbox       Outbox
	bullets      []*Bullet
	lastBulletID uint16
	items        []*Item
	round        roundState

	botCount       int
	botDepartLimit int
	botWeapons     []int
	nextBotTeam    int

	rng       *rand.Rand
	clock     func() time.Time
	now       time.Time
	lastTick  time.Time
	frameTime float64 // seconds since the previous tick
	startedAt time.Time
	debug     bool
	closing   bool
	shutdown  func() // called by the close command

	inbound chan Datagram
	calls   chan func()
	done    chan struct{}
}

// NewGame creates a game on the first map of maps
func NewGame(cfg *Config, maps []*GameMap, sender Sender) *Game {
	g := &Game{
		cfg:         cfg,
		maps:        maps,
		sender:      sender,
		stats:       nopStats{},
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
		clock:       time.Now,
		debug:       cfg.Debug,
		nextBotTeam: 1,
		inbound:     make(chan Datagram, inboundQueueSize),
		calls:       make(chan func()),
		done:        make(chan struct{}),
	}
	for i := range g.players {
		g.players[i] = NewPlayer(i)
	}
	g.now = g.clock()
	g.lastTick = g.now
	g.startedAt = g.now
	g.commands = NewDispatcher(g)
	g.botWeapons = cfg.BotWeapons
	g.applyMapBots()
	g.initItems()
	g.newRound()
	return g
}

// SetStats replaces the statistics sink
func (g *Game) SetStats(s StatsSink) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if s == nil {
		s = nopStats{}
	}
	g.stats = s
}

// SetAuth enables admin logins checked against a
func (g *Game) SetAuth(a *AdminAuth) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.auth = a
}

// OnClose sets the function the close command runs
func (g *Game) OnClose(fn func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.shutdown = fn
}

// applyMapBots takes the bot settings of the current map unless the
// config sets them
func (g *Game) applyMapBots() {
	mc := g.currentMap().Config
	g.botCount = g.cfg.BotCount
	if g.botCount < 0 {
		g.botCount = 0
		if mc.BotCount != nil {
			g.botCount = *mc.BotCount
		}
	}
	g.botDepartLimit = g.cfg.BotDepartLimit
	if g.botDepartLimit < 0 && mc.BotDepartLimit != nil {
		g.botDepartLimit = *mc.BotDepartLimit
	}
}

// Run drives the game until ctx is cancelled
func (g *Game) Run(ctx context.Context) error {
	defer close(g.done)
	ticker := time.NewTicker(time.Second / time.Duration(g.cfg.UpdatesPerSec))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			g.mu.Lock()
			g.update()
			g.mu.Unlock()
		case d := <-g.inbound:
			g.mu.Lock()
			g.HandlePacket(d.From, d.Data)
			g.mu.Unlock()
		case fn := <-g.calls:
			g.mu.Lock()
			fn()
			g.mu.Unlock()
		}
	}
}

// Deliver queues an inbound datagram. It reports false when the queue is full.
func (g *Game) Deliver(d Datagram) bool {
	select {
	case g.inbound <- d:
		return true
	default:
		return false
	}
}

// Do runs fn on the game loop and waits for it
func (g *Game) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	wrapped := func() {
		defer close(finished)
		fn()
	}
	select {
	case g.calls <- wrapped:
	case <-g.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// BeginShutdown makes every later reply a SERVERCLOSING notice
func (g *Game) BeginShutdown() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.closing = true
}

// update runs one tick
func (g *Game) update() {
	if g.closing {
		return
	}
	g.now = g.clock()
	g.frameTime = g.now.Sub(g.lastTick).Seconds()
	g.lastTick = g.now

	g.updateBots()
	g.updateRoundTime()
	g.stats.SetConcurrentPeers(g.playerCount)
	if !g.round.Complete {
		g.revive()
	}
	g.timeouts()
	g.rebalanceBots()
	g.updateBullets()
}

// revive respawns players whose death delay has passed
func (g *Game) revive() {
	delay := ms(g.cfg.DeathDelay)
	for _, p := range g.slots() {
		if !p.Active || p.Health > 0 || !p.TimeToDeath.Add(delay).Before(g.now) {
			continue
		}
		x, y := g.findSpot()
		p.spawn(x, y, g.now)
		if p.Zombie {
			p.IsDead = false
			p.Weapon = g.botWeapon()
			if g.cfg.GameMode == ModeZombie {
				p.Health = zombieHealth
				p.SpawnTime = time.Time{}
			}
		}
	}
}

// timeouts logs out humans that have been silent too long
func (g *Game) timeouts() {
	limit := ms(g.cfg.MaxInactiveTime)
	for _, p := range g.slots() {
		if !p.Human() || !p.LastActivity.Add(limit).Before(g.now) {
			continue
		}
		log.Printf("game: %s timed out", p.Name)
		g.logout(p.ID)
	}
}

// slots returns every player slot, active or not
func (g *Game) slots() []*Player {
	return g.players[1:]
}

func (g *Game) currentMap() *GameMap {
	return g.maps[g.mapIndex]
}

func (g *Game) grid() *Grid {
	return g.currentMap().Grid
}

func (g *Game) spawnProtection() time.Duration {
	return ms(g.cfg.SpawnProtection)
}

// movePerSec scales a per-second rate to the current frame
func (g *Game) movePerSec(rate float64) float64 {
	return rate * g.frameTime
}

// findSpot returns the center of a random free tile
func (g *Game) findSpot() (float64, float64) {
	x, y, ok := g.grid().FindFreeSpot(g.rng)
	if !ok {
		log.Printf("game: no free spot on %s", g.currentMap().Name)
	}
	return x, y
}

// getPlayer returns an active slot by id or name, case-insensitively
func (g *Game) getPlayer(who string) *Player {
	if id, ok := parseSlotID(who); ok {
		if p := g.players[id]; p.Active {
			return p
		}
	}
	for _, p := range g.slots() {
		if p.Active && equalFoldName(p.Name, who) {
			return p
		}
	}
	return nil
}

// PlayerSnapshot is the public view of one player
type PlayerSnapshot struct {
	ID     int    `json:"id" msgpack:"id"`
	Name   string `json:"name" msgpack:"name"`
	Bot    bool   `json:"bot" msgpack:"bot"`
	Team   int    `json:"team" msgpack:"team"`
	Kills  int    `json:"kills" msgpack:"kills"`
	Deaths int    `json:"deaths" msgpack:"deaths"`
	Alive  bool   `json:"alive" msgpack:"alive"`
}

// GameSnapshot is the public server state served over HTTP and websockets
type GameSnapshot struct {
	Version     string           `json:"version" msgpack:"version"`
	Description string           `json:"description" msgpack:"description"`
	Map         string           `json:"map" msgpack:"map"`
	Mode        int              `json:"mode" msgpack:"mode"`
	MaxPlayers  int              `json:"maxPlayers" msgpack:"maxPlayers"`
	PlayerCount int              `json:"playerCount" msgpack:"playerCount"`
	BotCount    int              `json:"botCount" msgpack:"botCount"`
	Round       string           `json:"round" msgpack:"round"`
	TimeLeft    float64          `json:"timeLeft" msgpack:"timeLeft"` // seconds, 0 without rounds
	Uptime      float64          `json:"uptime" msgpack:"uptime"`     // seconds
	Players     []PlayerSnapshot `json:"players" msgpack:"players"`
}

// Snapshot captures the public state
func (g *Game) Snapshot() GameSnapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshot()
}

func (g *Game) snapshot() GameSnapshot {
	s := GameSnapshot{
		Version:     ProtocolVersion,
		Description: g.cfg.Description,
		Map:         g.currentMap().Name,
		Mode:        g.cfg.GameMode,
		MaxPlayers:  g.cfg.MaxPlayers,
		PlayerCount: g.playerCount,
		BotCount:    g.activeBots(),
		Round:       g.round.ID.String(),
		Uptime:      g.clock().Sub(g.startedAt).Seconds(),
		Players:     make([]PlayerSnapshot, 0, g.playerCount),
	}
	if left, ok := g.timeLeft(); ok && left > 0 {
		s.TimeLeft = left.Seconds()
	}
	for _, p := range g.slots() {
		if !p.Active {
			continue
		}
		s.Players = append(s.Players, PlayerSnapshot{
			ID:     p.ID,
			Name:   p.Name,
			Bot:    p.Zombie,
			Team:   p.Team,
			Kills:  p.Kills,
			Deaths: p.Deaths,
			Alive:  p.Health > 0,
		})
	}
	return s
}
