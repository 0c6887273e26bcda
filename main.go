package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	shutdownGrace   = time.Second
	httpStopTimeout = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "config.json", "Path to the JSON config file")
	port := flag.Int("port", 0, "UDP port (overrides the config)")
	address := flag.String("address", "", "UDP bind address")
	httpAddr := flag.String("http", "", "Status server address, empty disables it")
	dbPath := flag.String("db", "", "SQLite stats database, empty disables it")
	mapList := flag.String("maps", "", "Comma separated map rotation")
	debug := flag.Bool("debug", false, "Send bot debug drawing to players")
	flag.Parse()

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "port":
			cfg.Port = *port
		case "address":
			cfg.Address = *address
		case "http":
			cfg.HTTPAddr = *httpAddr
		case "db":
			cfg.DBPath = *dbPath
		case "maps":
			cfg.Maps = strings.Split(*mapList, ",")
		case "debug":
			cfg.Debug = *debug
		}
	})
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	maps, err := loadMaps(cfg)
	if err != nil {
		log.Fatalf("map: %v", err)
	}

	var db *DB
	if cfg.DBPath != "" {
		db, err = OpenDB(cfg.DBPath)
		if err != nil {
			log.Printf("db: %v, statistics disabled", err)
			db = nil
		} else {
			defer db.Close()
		}
	}

	auth, err := NewAdminAuth(cfg.Password, db)
	if err != nil {
		log.Fatalf("auth: %v", err)
	}
	if !auth.Enabled() {
		log.Printf("auth: no admin password set, admin login disabled")
	}

	sock, err := ListenUDP(cfg.ListenAddr())
	if err != nil {
		log.Fatalf("udp: %v", err)
	}

	game := NewGame(cfg, maps, sock)
	game.SetAuth(auth)
	var stats *Analytics
	if db != nil {
		stats = NewAnalytics(db)
		defer stats.Stop()
		game.SetStats(stats)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	game.OnClose(stop)

	hub := NewHub()
	api := &API{game: game, hub: hub, db: db, stats: stats, auth: auth, port: cfg.Port}
	httpServer := &http.Server{Addr: cfg.HTTPAddr, Handler: SetupRoutes(api)}

	// The game keeps answering with SERVERCLOSING for a moment after a
	// shutdown request, so it runs on its own context.
	runCtx, cancelRun := context.WithCancel(context.Background())
	defer cancelRun()
	eg, egCtx := errgroup.WithContext(runCtx)

	eg.Go(func() error { return game.Run(egCtx) })
	eg.Go(func() error { return sock.Serve(egCtx, game) })
	eg.Go(func() error { return hub.Run(egCtx, game.Snapshot) })
	if cfg.HTTPAddr != "" {
		eg.Go(func() error {
			log.Printf("http: listening on %s", cfg.HTTPAddr)
			if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http: %w", err)
			}
			return nil
		})
		eg.Go(func() error {
			<-egCtx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), httpStopTimeout)
			defer cancel()
			return httpServer.Shutdown(shutdownCtx)
		})
	}
	if cfg.Register {
		reg := NewRegistration(cfg)
		eg.Go(func() error { return reg.Run(egCtx, game.Snapshot) })
	}
	eg.Go(func() error {
		select {
		case <-ctx.Done():
		case <-egCtx.Done():
			return nil
		}
		log.Printf("Server going down...")
		game.BeginShutdown()
		time.Sleep(shutdownGrace)
		cancelRun()
		return nil
	})
	go readConsole(egCtx, game)

	log.Printf("NetMatch %s listening on %s, map %s, mode %d", ProtocolVersion, sock.LocalAddr(), maps[0].Name, cfg.GameMode)
	if err := eg.Wait(); err != nil {
		log.Fatalf("server: %v", err)
	}
	log.Printf("Server closed.")
}

// loadMaps loads every map in the rotation. Each map needs a free tile to
// spawn on.
func loadMaps(cfg *Config) ([]*GameMap, error) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	maps := make([]*GameMap, 0, len(cfg.Maps))
	for _, name := range cfg.Maps {
		m, err := LoadMap(cfg.MapDir, name)
		if err != nil {
			return nil, err
		}
		if _, _, ok := m.Grid.FindFreeSpot(rng); !ok {
			return nil, fmt.Errorf("map %s has no free tile", name)
		}
		log.Printf("map: loaded %s (%dx%d)", m.Name, m.Grid.Width, m.Grid.Height)
		maps = append(maps, m)
	}
	return maps, nil
}

// readConsole runs server commands typed on stdin
func readConsole(ctx context.Context, g *Game) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		replies, err := g.RunCommand(ctx, line)
		if err != nil {
			return
		}
		for _, r := range replies {
			log.Printf("console: %s", r)
		}
	}
}
