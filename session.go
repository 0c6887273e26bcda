package main

import (
	"fmt"
	"net/netip"
	"sync"
	"time"
)

const (
	maxPacketsPerSec = 120
	peerIdleExpiry   = time.Minute
)

// Peer identifies the connection a slot belongs to: the sender address
// plus the client id carried at the start of every datagram
type Peer struct {
	Addr     netip.AddrPort
	ClientID int32
}

// String renders the peer for logs
func (p Peer) String() string {
	return fmt.Sprintf("%s#%d", p.Addr, p.ClientID)
}

// Valid reports whether the peer has an address
func (p Peer) Valid() bool {
	return p.Addr.IsValid()
}

type peerRate struct {
	count   int
	resetAt time.Time
}

// PeerLimiter caps the datagram rate per source address
type PeerLimiter struct {
	mu    sync.Mutex
	peers map[netip.Addr]*peerRate
	limit int
}

// NewPeerLimiter creates a limiter allowing limit datagrams per second per address
func NewPeerLimiter(limit int) *PeerLimiter {
	return &PeerLimiter{peers: make(map[netip.Addr]*peerRate), limit: limit}
}

// Allow counts one datagram from addr and reports whether it is within the limit
func (l *PeerLimiter) Allow(addr netip.Addr, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.peers[addr]
	if !ok || now.After(e.resetAt) {
		l.peers[addr] = &peerRate{count: 1, resetAt: now.Add(time.Second)}
		return true
	}
	e.count++
	return e.count <= l.limit
}

// Sweep forgets addresses that have been quiet for a while
func (l *PeerLimiter) Sweep(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for addr, e := range l.peers {
		if now.Sub(e.resetAt) > peerIdleExpiry {
			delete(l.peers, addr)
		}
	}
}
