package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/netip"
	"time"
)

const (
	maxDatagramSize = 8192
	sweepInterval   = time.Minute
)

// UDPServer is the game socket. It feeds datagrams to the game loop and
// sends its replies.
type UDPServer struct {
	conn    *net.UDPConn
	limiter *PeerLimiter
	dropped int
}

// ListenUDP binds the game socket
func ListenUDP(addr string) (*UDPServer, error) {
	ua, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", addr, err)
	}
	conn, err := net.ListenUDP("udp", ua)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}
	return &UDPServer{conn: conn, limiter: NewPeerLimiter(maxPacketsPerSec)}, nil
}

// LocalAddr returns the bound address
func (s *UDPServer) LocalAddr() netip.AddrPort {
	return s.conn.LocalAddr().(*net.UDPAddr).AddrPort()
}

// Send writes one datagram to a peer
func (s *UDPServer) Send(to netip.AddrPort, b []byte) error {
	_, err := s.conn.WriteToUDPAddrPort(b, to)
	return err
}

// Serve reads datagrams into g until ctx is cancelled
func (s *UDPServer) Serve(ctx context.Context, g *Game) error {
	go func() {
		<-ctx.Done()
		s.conn.Close()
	}()

	buf := make([]byte, maxDatagramSize)
	lastSweep := time.Now()
	for {
		n, from, err := s.conn.ReadFromUDPAddrPort(buf)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			log.Printf("udp: read: %v", err)
			continue
		}
		from = netip.AddrPortFrom(from.Addr().Unmap(), from.Port())

		now := time.Now()
		if now.Sub(lastSweep) > sweepInterval {
			s.limiter.Sweep(now)
			lastSweep = now
		}
		if !s.limiter.Allow(from.Addr(), now) {
			continue
		}

		data := make([]byte, n)
		copy(data, buf[:n])
		if !g.Deliver(Datagram{From: from, Data: data}) {
			s.dropped++
			if s.dropped%100 == 1 {
				log.Printf("udp: game loop busy, %d datagrams dropped", s.dropped)
			}
		}
	}
}
