package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/skip2/go-qrcode"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	defaultQRSize   = 256
	maxQRSize       = 1024
	maxListLimit    = 100
	maxAdminBody    = 4096
	defaultListSize = 20
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true // Non-browser clients don't send Origin
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return u.Host == r.Host
	},
}

// API serves the HTTP status, statistics and admin endpoints
type API struct {
	game  *Game
	hub   *Hub
	db    *DB         // nil without a database
	stats *Analytics  // nil without a database
	auth  *AdminAuth
	port  int
}

func extractIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("http: encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// queryInt reads an integer query parameter clamped to [1, max]
func queryInt(r *http.Request, key string, def, max int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || v < 1 {
		return def
	}
	return min(v, max)
}

// SetupRoutes configures HTTP routes
func SetupRoutes(api *API) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, api.game.Snapshot())
	})

	mux.HandleFunc("GET /status.msgpack", func(w http.ResponseWriter, r *http.Request) {
		data, err := msgpack.Marshal(api.game.Snapshot())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		w.Header().Set("Content-Type", "application/msgpack")
		w.Write(data)
	})

	mux.HandleFunc("GET /qr.png", func(w http.ResponseWriter, r *http.Request) {
		host := r.URL.Query().Get("host")
		if host == "" {
			host = r.Host
			if h, _, err := net.SplitHostPort(r.Host); err == nil {
				host = h
			}
		}
		content := fmt.Sprintf("netmatch://%s", net.JoinHostPort(host, strconv.Itoa(api.port)))
		png, err := qrcode.Encode(content, qrcode.Medium, queryInt(r, "size", defaultQRSize, maxQRSize))
		if err != nil {
			writeError(w, http.StatusInternalServerError, "qr encode failed")
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "no-cache")
		w.Write(png)
	})

	mux.HandleFunc("GET /leaderboard", func(w http.ResponseWriter, r *http.Request) {
		if api.db == nil {
			writeError(w, http.StatusServiceUnavailable, "statistics disabled")
			return
		}
		entries, err := api.db.Leaderboard(r.URL.Query().Get("order"), queryInt(r, "limit", defaultListSize, maxListLimit))
		if err != nil {
			log.Printf("http: leaderboard: %v", err)
			writeError(w, http.StatusInternalServerError, "database error")
			return
		}
		writeJSON(w, http.StatusOK, entries)
	})

	mux.HandleFunc("GET /rounds", func(w http.ResponseWriter, r *http.Request) {
		if api.db == nil {
			writeError(w, http.StatusServiceUnavailable, "statistics disabled")
			return
		}
		rounds, err := api.db.RecentRounds(queryInt(r, "limit", defaultListSize, maxListLimit))
		if err != nil {
			log.Printf("http: rounds: %v", err)
			writeError(w, http.StatusInternalServerError, "database error")
			return
		}
		writeJSON(w, http.StatusOK, rounds)
	})

	mux.HandleFunc("GET /metrics", func(w http.ResponseWriter, r *http.Request) {
		if api.stats == nil {
			writeError(w, http.StatusServiceUnavailable, "statistics disabled")
			return
		}
		current, peak, kills := api.stats.GetLiveMetrics()
		resp := map[string]any{
			"players":    current,
			"peak":       peak,
			"kills":      kills,
			"spectators": api.hub.ClientCount(),
		}
		if counts, err := api.stats.EventCounts(7); err == nil {
			resp["events"] = counts
		}
		if weapons, err := api.stats.WeaponKills(7); err == nil {
			resp["weapons"] = weapons
		}
		writeJSON(w, http.StatusOK, resp)
	})

	mux.HandleFunc("POST /admin/login", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Password string `json:"password"`
		}
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxAdminBody)).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request")
			return
		}
		token, err := api.auth.Login(req.Password, extractIP(r))
		switch {
		case errors.Is(err, ErrAuthDisabled):
			writeError(w, http.StatusForbidden, err.Error())
		case errors.Is(err, ErrRateLimited):
			writeError(w, http.StatusTooManyRequests, err.Error())
		case err != nil:
			writeError(w, http.StatusUnauthorized, "invalid password")
		default:
			writeJSON(w, http.StatusOK, map[string]string{"token": token})
		}
	})

	mux.HandleFunc("POST /admin/command", func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok {
			writeError(w, http.StatusUnauthorized, "missing token")
			return
		}
		if _, err := api.auth.ValidateToken(token); err != nil {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		var req struct {
			Command string `json:"command"`
		}
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxAdminBody)).Decode(&req); err != nil || strings.TrimSpace(req.Command) == "" {
			writeError(w, http.StatusBadRequest, "invalid request")
			return
		}
		replies, err := api.game.RunCommand(r.Context(), strings.TrimPrefix(strings.TrimSpace(req.Command), "/"))
		if err != nil {
			writeError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		if replies == nil {
			replies = []string{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"replies": replies})
	})

	// WebSocket spectators
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		ip := extractIP(r)
		if !api.hub.CanAccept(ip) {
			http.Error(w, "too many connections", http.StatusServiceUnavailable)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("ws: upgrade error: %v", err)
			return
		}

		api.hub.TrackConnect(ip)

		client := NewClient(api.hub, conn, ip)
		api.hub.register <- client

		go client.WritePump()
		go client.ReadPump()
	})

	return mux
}
