package main

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	_ "modernc.org/sqlite"
)

// DB wraps the SQLite database connection
type DB struct {
	conn *sql.DB
}

// RoundRow is a stored round
type RoundRow struct {
	ID        string    `json:"id"`
	Map       string    `json:"map"`
	Mode      int       `json:"mode"`
	Players   int       `json:"players"`
	Winner    string    `json:"winner"`
	StartedAt time.Time `json:"startedAt"`
	EndedAt   time.Time `json:"endedAt"`
}

// LeaderboardEntry represents one row in the leaderboard
type LeaderboardEntry struct {
	Rank   int     `json:"rank" msgpack:"rank"`
	Name   string  `json:"name" msgpack:"name"`
	Rounds int     `json:"rounds" msgpack:"rounds"`
	Wins   int     `json:"wins" msgpack:"wins"`
	Kills  int     `json:"kills" msgpack:"kills"`
	Deaths int     `json:"deaths" msgpack:"deaths"`
	KD     float64 `json:"kd" msgpack:"kd"`
}

// OpenDB opens (or creates) the SQLite database
func OpenDB(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, err
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates tables if they don't exist
func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS rounds (
		id TEXT PRIMARY KEY,
		map TEXT NOT NULL,
		mode INTEGER NOT NULL DEFAULT 1,
		started_at DATETIME NOT NULL,
		ended_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS round_players (
		round_id TEXT NOT NULL REFERENCES rounds(id),
		name TEXT NOT NULL,
		bot INTEGER NOT NULL DEFAULT 0,
		team INTEGER NOT NULL DEFAULT 1,
		kills INTEGER NOT NULL DEFAULT 0,
		deaths INTEGER NOT NULL DEFAULT 0,
		winner INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS analytics_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		event_type TEXT NOT NULL,
		player_name TEXT,
		round_id TEXT,
		data TEXT,
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_round_players_name ON round_players(name);
	CREATE INDEX IF NOT EXISTS idx_round_players_round ON round_players(round_id);
	CREATE INDEX IF NOT EXISTS idx_analytics_type ON analytics_events(event_type, created_at);
	`
	_, err := db.conn.Exec(schema)
	if err != nil {
		log.Printf("db: migration error: %v", err)
	}
	return err
}

// GetSetting returns a stored setting or "" when it is missing
func (db *DB) GetSetting(key string) string {
	var v string
	err := db.conn.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&v)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		log.Printf("db: read setting %s: %v", key, err)
	}
	return v
}

// SetSetting stores a setting
func (db *DB) SetSetting(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	return err
}

// RecordRound stores a finished round and its players
func (db *DB) RecordRound(rec RoundRecord) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		"INSERT INTO rounds (id, map, mode, started_at, ended_at) VALUES (?, ?, ?, ?, ?)",
		rec.ID.String(), rec.Map, rec.Mode, rec.StartedAt.UTC(), rec.EndedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert round: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO round_players (round_id, name, bot, team, kills, deaths, winner)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	winner, hasWinner := rec.Winner()
	for _, p := range rec.Players {
		won := hasWinner && p == winner
		if _, err := stmt.Exec(rec.ID.String(), p.Name, p.Bot, p.Team, p.Kills, p.Deaths, won); err != nil {
			return fmt.Errorf("insert round player %s: %w", p.Name, err)
		}
	}
	return tx.Commit()
}

// Leaderboard returns the top human players over every stored round
func (db *DB) Leaderboard(orderBy string, limit int) ([]LeaderboardEntry, error) {
	// Whitelist valid order columns
	validCols := map[string]string{
		"kills": "kills", "wins": "wins", "rounds": "rounds", "deaths": "deaths",
		"kd": "CASE WHEN deaths > 0 THEN CAST(kills AS REAL)/deaths ELSE kills END",
	}
	col, ok := validCols[orderBy]
	if !ok {
		col = "kills"
	}

	query := `SELECT name, COUNT(*) AS rounds, SUM(winner) AS wins, SUM(kills) AS kills, SUM(deaths) AS deaths
		FROM round_players
		WHERE bot = 0
		GROUP BY name
		ORDER BY ` + col + ` DESC, name LIMIT ?`

	rows, err := db.conn.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []LeaderboardEntry
	rank := 1
	for rows.Next() {
		var e LeaderboardEntry
		if err := rows.Scan(&e.Name, &e.Rounds, &e.Wins, &e.Kills, &e.Deaths); err != nil {
			return nil, err
		}
		e.Rank = rank
		e.KD = float64(e.Kills)
		if e.Deaths > 0 {
			e.KD = float64(e.Kills) / float64(e.Deaths)
		}
		rank++
		result = append(result, e)
	}
	return result, rows.Err()
}

// RecentRounds returns the latest rounds, newest first
func (db *DB) RecentRounds(limit int) ([]RoundRow, error) {
	rows, err := db.conn.Query(`
		SELECT r.id, r.map, r.mode, r.started_at, r.ended_at,
			COUNT(rp.name),
			COALESCE(MAX(CASE WHEN rp.winner = 1 THEN rp.name END), '')
		FROM rounds r
		LEFT JOIN round_players rp ON rp.round_id = r.id
		GROUP BY r.id
		ORDER BY r.ended_at DESC
		LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []RoundRow
	for rows.Next() {
		var r RoundRow
		if err := rows.Scan(&r.ID, &r.Map, &r.Mode, &r.StartedAt, &r.EndedAt, &r.Players, &r.Winner); err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}
