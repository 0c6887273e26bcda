package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"hash/crc32"
	"os"
	"path/filepath"
	"strings"
)

// ErrMapNotFound is returned when no map file exists for a name
var ErrMapNotFound = errors.New("map not found")

// MapConfig holds the per-map settings stored next to the tile data
type MapConfig struct {
	MaxPlayers     int      `json:"maxPlayers"`
	BotCount       *int     `json:"botCount"`
	BotDepartLimit *int     `json:"botDepartLimit"`
	BotNames       []string `json:"botNames"`
	BotWeapons     []int    `json:"botWeapons"`
	HealthItems    int      `json:"healthItems"`
	MgunItems      int      `json:"mgunItems"`
	BazookaItems   int      `json:"bazookaItems"`
	ShotgunItems   int      `json:"shotgunItems"`
	LauncherItems  int      `json:"launcherItems"`
	ChainsawItems  int      `json:"chainsawItems"`
}

type mapFile struct {
	Width    int       `json:"width"`
	Height   int       `json:"height"`
	TileSize float64   `json:"tileSize"`
	CRC32    *int64    `json:"crc32"`
	Data     [][]int   `json:"data"`
	Config   MapConfig `json:"config"`
}

// GameMap is a loaded map: its collision grid plus settings
type GameMap struct {
	Name   string
	Grid   *Grid
	CRC32  int32 // lets the client check it has the same map file
	Config MapConfig
}

// LoadMap reads dir/name.json
func LoadMap(dir, name string) (*GameMap, error) {
	if name == "" || filepath.Base(name) != name || strings.HasPrefix(name, ".") {
		return nil, fmt.Errorf("%w: bad map name %q", ErrMapNotFound, name)
	}
	path := filepath.Join(dir, name+".json")
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrMapNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("read map %s: %w", path, err)
	}
	return ParseMap(name, data)
}

// ParseMap decodes a map file. The tile data is a list of rows.
func ParseMap(name string, data []byte) (*GameMap, error) {
	var f mapFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse map %s: %w", name, err)
	}
	if len(f.Data) != f.Height {
		return nil, fmt.Errorf("map %s: %w: %d rows, height %d", name, ErrBadGrid, len(f.Data), f.Height)
	}
	tiles := make([]byte, 0, f.Width*f.Height)
	for y, row := range f.Data {
		if len(row) != f.Width {
			return nil, fmt.Errorf("map %s: %w: row %d has %d tiles, width %d", name, ErrBadGrid, y, len(row), f.Width)
		}
		for _, t := range row {
			var b byte
			if t != 0 {
				b = 1
			}
			tiles = append(tiles, b)
		}
	}
	grid, err := NewGrid(f.Width, f.Height, f.TileSize, tiles)
	if err != nil {
		return nil, fmt.Errorf("map %s: %w", name, err)
	}

	m := &GameMap{Name: name, Grid: grid, Config: f.Config}
	if f.CRC32 != nil {
		m.CRC32 = int32(*f.CRC32)
	} else {
		m.CRC32 = int32(crc32.ChecksumIEEE(data))
	}
	return m, nil
}

// BotName returns the configured name for a bot slot or Bot_<id>
func (m *GameMap) BotName(id int) string {
	if id >= 1 && id <= len(m.Config.BotNames) && m.Config.BotNames[id-1] != "" {
		return m.Config.BotNames[id-1]
	}
	return fmt.Sprintf("Bot_%d", id)
}
