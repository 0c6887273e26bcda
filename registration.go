package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	gssProfile        = "NetMatch"
	gssUpdateInterval = 30 * time.Second
	gssTimeout        = 10 * time.Second
)

// Registration keeps the server listed on the master server
type Registration struct {
	cfg        *Config
	client     *http.Client
	registered bool
}

// NewRegistration creates a listing client for cfg.RegHost
func NewRegistration(cfg *Config) *Registration {
	return &Registration{cfg: cfg, client: &http.Client{Timeout: gssTimeout}}
}

// Run registers the server, refreshes the listing from snapshot until ctx
// ends and then unregisters
func (r *Registration) Run(ctx context.Context, snapshot func() GameSnapshot) error {
	if err := r.Register(ctx); err != nil {
		log.Printf("gss: %v", err)
	} else {
		log.Printf("gss: server registered")
	}

	ticker := time.NewTicker(gssUpdateInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			if r.registered {
				done, cancel := context.WithTimeout(context.Background(), gssTimeout)
				defer cancel()
				if err := r.Unregister(done); err != nil {
					log.Printf("gss: %v", err)
				} else {
					log.Printf("gss: server unregistered")
				}
			}
			return nil
		case <-ticker.C:
			if !r.registered {
				if err := r.Register(ctx); err != nil {
					log.Printf("gss: %v", err)
					continue
				}
			}
			if err := r.Update(ctx, snapshot()); err != nil {
				log.Printf("gss: %v", err)
			}
		}
	}
}

// Register adds the server to the listing
func (r *Registration) Register(ctx context.Context) error {
	q := r.query("reg")
	q.Set("ver", ProtocolVersion)
	q.Set("desc", r.cfg.Description)
	if r.cfg.DevBuild {
		q.Set("devbuild", "1")
	}
	if err := r.call(ctx, q); err != nil {
		return fmt.Errorf("register: %w", err)
	}
	r.registered = true
	return nil
}

// Update refreshes the listing with the current players and map
func (r *Registration) Update(ctx context.Context, s GameSnapshot) error {
	q := r.query("update")
	q.Set("data", listingData(s))
	if err := r.call(ctx, q); err != nil {
		return fmt.Errorf("update: %w", err)
	}
	return nil
}

// Unregister removes the server from the listing
func (r *Registration) Unregister(ctx context.Context) error {
	if err := r.call(ctx, r.query("unreg")); err != nil {
		return fmt.Errorf("unregister: %w", err)
	}
	r.registered = false
	return nil
}

func (r *Registration) query(mode string) url.Values {
	q := url.Values{}
	q.Set("mode", mode)
	q.Set("profile", gssProfile)
	q.Set("port", strconv.Itoa(r.cfg.Port))
	if r.cfg.Address != "" {
		q.Set("addr", r.cfg.Address)
	}
	return q
}

// call sends one request. The master server answers "ok" or an error word.
func (r *Registration) call(ctx context.Context, q url.Values) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.cfg.RegHost+r.cfg.RegPath+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1024))
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %s", resp.Status)
	}
	if answer := strings.TrimSpace(string(body)); answer != "ok" {
		return errors.New(answer)
	}
	return nil
}

// listingData encodes players,bots,map,maxPlayers,names with spaces in the
// map name as underscores and names separated by |
func listingData(s GameSnapshot) string {
	var names []string
	for _, p := range s.Players {
		if !p.Bot {
			names = append(names, p.Name)
		}
	}
	return fmt.Sprintf("%d,%d,%s,%d,%s",
		s.PlayerCount, s.BotCount, strings.ReplaceAll(s.Map, " ", "_"), s.MaxPlayers, strings.Join(names, "|"))
}
