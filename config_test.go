package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestMapListAcceptsNameOrList(t *testing.T) {
	var c struct {
		Map MapList `json:"map"`
	}
	if err := json.Unmarshal([]byte(`{"map":"Luna"}`), &c); err != nil {
		t.Fatalf("single: %v", err)
	}
	if !reflect.DeepEqual(c.Map, MapList{"Luna"}) {
		t.Errorf("expected [Luna], got %v", c.Map)
	}
	if err := json.Unmarshal([]byte(`{"map":["Luna","Warehouse"]}`), &c); err != nil {
		t.Fatalf("list: %v", err)
	}
	if !reflect.DeepEqual(c.Map, MapList{"Luna", "Warehouse"}) {
		t.Errorf("expected [Luna Warehouse], got %v", c.Map)
	}
	if err := json.Unmarshal([]byte(`{"map":5}`), &c); err == nil {
		t.Error("expected an error for a number")
	}
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data := `{"port": 2000, "maxPlayers": 16, "map": ["A", "B"], "gameMode": 2, "mapDownloadUrl": "http://example.com/maps"}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("NETMATCH_PORT", "4000")
	t.Setenv("NETMATCH_PASSWORD", "hunter2")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Port != 4000 {
		t.Errorf("env should override the port, got %d", cfg.Port)
	}
	if cfg.Password != "hunter2" {
		t.Errorf("expected the password from the environment, got %q", cfg.Password)
	}
	if cfg.MaxPlayers != 16 || cfg.GameMode != ModeTeamDeathmatch || len(cfg.Maps) != 2 {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.MapDownloadURL != "http://example.com/maps/" {
		t.Errorf("expected a trailing slash, got %q", cfg.MapDownloadURL)
	}
	if cfg.DeathDelay != 3000 {
		t.Errorf("unset values should keep defaults, death delay %d", cfg.DeathDelay)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("a missing file should not fail: %v", err)
	}
	if cfg.MaxPlayers != DefaultConfig().MaxPlayers {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestLoadConfigBadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"port":`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("expected a parse error")
	}
}

func TestValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("defaults should be valid: %v", err)
	}
	cases := map[string]func(*Config){
		"no players":     func(c *Config) { c.MaxPlayers = 0 },
		"too many":       func(c *Config) { c.MaxPlayers = MaxSlots + 1 },
		"no updates":     func(c *Config) { c.UpdatesPerSec = 0 },
		"bad mode":       func(c *Config) { c.GameMode = 4 },
		"no maps":        func(c *Config) { c.Maps = nil },
		"bad bot weapon": func(c *Config) { c.BotWeapons = []int{9} },
		"bad port":       func(c *Config) { c.Port = 70000 },
	}
	for name, mutate := range cases {
		c := DefaultConfig()
		mutate(c)
		if err := c.Validate(); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
}

func TestListenAddr(t *testing.T) {
	c := DefaultConfig()
	if got := c.ListenAddr(); got != ":1337" {
		t.Errorf("expected :1337, got %s", got)
	}
	c.Address = "127.0.0.1"
	if got := c.ListenAddr(); got != "127.0.0.1:1337" {
		t.Errorf("expected 127.0.0.1:1337, got %s", got)
	}
}
