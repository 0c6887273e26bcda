package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// MaxSlots is the hard cap on player slots
const MaxSlots = 64

const (
	ModeDeathmatch     = 1
	ModeTeamDeathmatch = 2
	ModeZombie         = 3
)

// MapList is the configured map rotation. JSON accepts a single name or a list.
type MapList []string

// UnmarshalJSON accepts "Luna" as well as ["Luna", "Warehouse"]
func (m *MapList) UnmarshalJSON(b []byte) error {
	var one string
	if err := json.Unmarshal(b, &one); err == nil {
		*m = MapList{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(b, &many); err != nil {
		return fmt.Errorf("map must be a name or a list of names: %w", err)
	}
	*m = many
	return nil
}

// Config holds the server settings
type Config struct {
	Port     int    `json:"port"`
	Address  string `json:"address"`
	HTTPAddr string `json:"httpAddress"`
	DBPath   string `json:"database"`
	MapDir   string `json:"mapDir"`

	RegHost        string `json:"regHost"`
	RegPath        string `json:"regPath"`
	Register       bool   `json:"register"`
	MapDownloadURL string `json:"mapDownloadUrl"`
	Description    string `json:"description"`

	Maps            MapList `json:"map"`
	MaxPlayers      int     `json:"maxPlayers"`
	BotCount        int     `json:"botCount"`       // -1 takes the map's value
	BotDepartLimit  int     `json:"botDepartLimit"` // -1 keeps every bot
	BotWeapons      []int   `json:"botWeapons"`
	GameMode        int     `json:"gameMode"`
	PeriodLength    int     `json:"periodLength"`    // seconds, 0 disables rounds
	SpawnProtection int     `json:"spawnProtection"` // ms
	DeathDelay      int     `json:"deathDelay"`      // ms
	MaxInactiveTime int     `json:"maxInactiveTime"` // ms
	LogKillMessages bool    `json:"logKillMessages"`
	RadarArrows     bool    `json:"radarArrows"`
	UpdatesPerSec   int     `json:"updatesPerSec"`
	Password        string  `json:"password"`
	DevBuild        bool    `json:"devBuild"`
	Debug           bool    `json:"debug"`
}

// DefaultConfig returns the settings used when no config file overrides them
func DefaultConfig() *Config {
	return &Config{
		Port:            1337,
		HTTPAddr:        ":8080",
		DBPath:          "netmatch.db",
		MapDir:          "maps",
		RegHost:         "http://tuhoojabotti.com/nm",
		RegPath:         "/reg/gss.php",
		Register:        true,
		MapDownloadURL:  "http://netmatch.vesq.org/maps/",
		Description:     "Go powered server",
		Maps:            MapList{"Arena"},
		MaxPlayers:      10,
		BotCount:        -1,
		BotDepartLimit:  -1,
		GameMode:        ModeDeathmatch,
		PeriodLength:    300,
		SpawnProtection: 3000,
		DeathDelay:      3000,
		MaxInactiveTime: 10000,
		RadarArrows:     true,
		UpdatesPerSec:   60,
	}
}

// LoadConfig reads a JSON config file over the defaults and applies
// environment overrides. A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("config: .env: %v", err)
	}

	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			log.Printf("config: %s not found, using defaults", path)
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := json.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	cfg.applyEnv()
	if !strings.HasSuffix(cfg.MapDownloadURL, "/") {
		cfg.MapDownloadURL += "/"
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := getEnvDefault("NETMATCH_PORT", ""); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Port = port
		} else {
			log.Printf("config: ignoring NETMATCH_PORT=%q", v)
		}
	}
	c.Address = getEnvDefault("NETMATCH_ADDRESS", c.Address)
	c.Password = getEnvDefault("NETMATCH_PASSWORD", c.Password)
	c.DBPath = getEnvDefault("NETMATCH_DB", c.DBPath)
	c.HTTPAddr = getEnvDefault("NETMATCH_HTTP", c.HTTPAddr)
}

// getEnvDefault returns the environment variable or def when it is unset
func getEnvDefault(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

// Validate rejects settings the server cannot start with
func (c *Config) Validate() error {
	if c.MaxPlayers < 1 || c.MaxPlayers > MaxSlots {
		return fmt.Errorf("maxPlayers must be 1..%d, got %d", MaxSlots, c.MaxPlayers)
	}
	if c.UpdatesPerSec <= 0 {
		return fmt.Errorf("updatesPerSec must be positive, got %d", c.UpdatesPerSec)
	}
	if c.GameMode < ModeDeathmatch || c.GameMode > ModeZombie {
		return fmt.Errorf("gameMode must be 1..3, got %d", c.GameMode)
	}
	if len(c.Maps) == 0 {
		return errors.New("no maps configured")
	}
	for _, w := range c.BotWeapons {
		if !ValidWeapon(w) {
			return fmt.Errorf("botWeapons: unknown weapon %d", w)
		}
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port out of range: %d", c.Port)
	}
	return nil
}

// ListenAddr is the UDP address the game socket binds to
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Address, c.Port)
}
