package main

import (
	"database/sql"
	"encoding/json"
	"log"
	"sync"
	"time"
)

// Event types for analytics tracking
const (
	EvtLogin    = "login"
	EvtLogout   = "logout"
	EvtKill     = "kill"
	EvtRoundEnd = "round_end"
)

//go:generate mockgen -source=analytics.go -destination=mock_stats_test.go -package=main

// StatsSink receives game events for statistics. Implementations must not
// block the game loop.
type StatsSink interface {
	Kill(killer, victim *Player, weapon int)
	Login(p *Player)
	Logout(p *Player)
	RoundEnd(rec RoundRecord)
	SetConcurrentPeers(n int)
}

type nopStats struct{}

func (nopStats) Kill(*Player, *Player, int) {}
func (nopStats) Login(*Player)              {}
func (nopStats) Logout(*Player)             {}
func (nopStats) RoundEnd(RoundRecord)       {}
func (nopStats) SetConcurrentPeers(int)     {}

// AnalyticsEvent represents a single trackable event
type AnalyticsEvent struct {
	Type       string
	PlayerName string
	Data       string // JSON metadata (optional)
	Timestamp  time.Time
}

// Analytics handles event tracking with batched background writes
type Analytics struct {
	db     *DB
	events chan AnalyticsEvent
	rounds chan RoundRecord
	stop   chan struct{}
	wg     sync.WaitGroup

	// Live metrics
	mu              sync.RWMutex
	concurrentPeers int
	peakPeers       int
	kills           int
}

// NewAnalytics creates and starts the analytics background writer
func NewAnalytics(db *DB) *Analytics {
	a := &Analytics{
		db:     db,
		events: make(chan AnalyticsEvent, 1024),
		rounds: make(chan RoundRecord, 16),
		stop:   make(chan struct{}),
	}
	a.wg.Add(1)
	go a.writer()
	return a
}

// Track enqueues an event for async persistence (non-blocking)
func (a *Analytics) Track(evtType, playerName string, data any) {
	var raw string
	if data != nil {
		if b, err := json.Marshal(data); err == nil {
			raw = string(b)
		}
	}
	select {
	case a.events <- AnalyticsEvent{
		Type:       evtType,
		PlayerName: playerName,
		Data:       raw,
		Timestamp:  time.Now().UTC(),
	}:
	default:
		// Channel full, drop the event rather than block the game loop
	}
}

// Kill records a kill
func (a *Analytics) Kill(killer, victim *Player, weapon int) {
	a.mu.Lock()
	a.kills++
	a.mu.Unlock()
	a.Track(EvtKill, killer.Name, map[string]any{
		"victim":    victim.Name,
		"weapon":    weaponOrPistol(weapon).Name,
		"killerBot": killer.Zombie,
		"victimBot": victim.Zombie,
	})
}

// Login records a player joining
func (a *Analytics) Login(p *Player) {
	a.Track(EvtLogin, p.Name, map[string]any{"slot": p.ID, "team": p.Team})
}

// Logout records a player leaving
func (a *Analytics) Logout(p *Player) {
	a.Track(EvtLogout, p.Name, map[string]any{"kills": p.Kills, "deaths": p.Deaths})
}

// RoundEnd queues a finished round for storage
func (a *Analytics) RoundEnd(rec RoundRecord) {
	select {
	case a.rounds <- rec:
	default:
		log.Printf("analytics: dropping round %s", rec.ID)
	}
	a.Track(EvtRoundEnd, "", map[string]any{
		"round":    rec.ID.String(),
		"map":      rec.Map,
		"mode":     rec.Mode,
		"duration": rec.EndedAt.Sub(rec.StartedAt).Seconds(),
	})
}

// SetConcurrentPeers updates live player count metric
func (a *Analytics) SetConcurrentPeers(n int) {
	a.mu.Lock()
	a.concurrentPeers = n
	if n > a.peakPeers {
		a.peakPeers = n
	}
	a.mu.Unlock()
}

// GetLiveMetrics returns the current and peak player counts and the kills
// seen since start
func (a *Analytics) GetLiveMetrics() (current, peak, kills int) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.concurrentPeers, a.peakPeers, a.kills
}

// Stop gracefully shuts down the analytics writer
func (a *Analytics) Stop() {
	close(a.stop)
	a.wg.Wait()
}

// writer is the background goroutine that batches and writes events to DB
func (a *Analytics) writer() {
	defer a.wg.Done()

	batch := make([]AnalyticsEvent, 0, 64)
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case evt := <-a.events:
			batch = append(batch, evt)
			if len(batch) >= 50 {
				a.flush(batch)
				batch = batch[:0]
			}
		case rec := <-a.rounds:
			a.storeRound(rec)
		case <-ticker.C:
			if len(batch) > 0 {
				a.flush(batch)
				batch = batch[:0]
			}
		case <-a.stop:
			// Drain remaining events
			for {
				select {
				case evt := <-a.events:
					batch = append(batch, evt)
					continue
				case rec := <-a.rounds:
					a.storeRound(rec)
					continue
				default:
				}
				break
			}
			a.flush(batch)
			return
		}
	}
}

func (a *Analytics) storeRound(rec RoundRecord) {
	if a.db == nil {
		return
	}
	if err := a.db.RecordRound(rec); err != nil {
		log.Printf("analytics: store round %s: %v", rec.ID, err)
	}
}

// flush writes a batch of events to the database
func (a *Analytics) flush(events []AnalyticsEvent) {
	if a.db == nil || len(events) == 0 {
		return
	}
	tx, err := a.db.conn.Begin()
	if err != nil {
		log.Printf("analytics: begin tx error: %v", err)
		return
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO analytics_events (event_type, player_name, data, created_at) VALUES (?, ?, ?, ?)`)
	if err != nil {
		log.Printf("analytics: prepare error: %v", err)
		return
	}
	defer stmt.Close()

	for _, evt := range events {
		name := sql.NullString{String: evt.PlayerName, Valid: evt.PlayerName != ""}
		data := sql.NullString{String: evt.Data, Valid: evt.Data != ""}
		if _, err := stmt.Exec(evt.Type, name, data, evt.Timestamp.Format(time.RFC3339)); err != nil {
			log.Printf("analytics: insert error: %v", err)
		}
	}
	if err := tx.Commit(); err != nil {
		log.Printf("analytics: commit error: %v", err)
	}
}

// EventCounts returns counts of each event type for the last N days
func (a *Analytics) EventCounts(days int) (map[string]int, error) {
	if a.db == nil {
		return nil, nil
	}
	rows, err := a.db.conn.Query(`
		SELECT event_type, COUNT(*) FROM analytics_events
		WHERE created_at >= date('now', '-' || ? || ' days')
		GROUP BY event_type ORDER BY COUNT(*) DESC
	`, days)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string]int)
	for rows.Next() {
		var evtType string
		var count int
		if err := rows.Scan(&evtType, &count); err != nil {
			continue
		}
		result[evtType] = count
	}
	return result, rows.Err()
}

// WeaponKills returns kill counts per weapon for the last N days
func (a *Analytics) WeaponKills(days int) (map[string]int, error) {
	if a.db == nil {
		return nil, nil
	}
	rows, err := a.db.conn.Query(`
		SELECT COALESCE(json_extract(data, '$.weapon'), 'unknown') AS weapon, COUNT(*)
		FROM analytics_events
		WHERE event_type = ? AND json_valid(data) AND created_at >= date('now', '-' || ? || ' days')
		GROUP BY weapon
	`, EvtKill, days)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string]int)
	for rows.Next() {
		var weapon string
		var count int
		if err := rows.Scan(&weapon, &count); err != nil {
			continue
		}
		result[weapon] = count
	}
	return result, rows.Err()
}
