package main

import (
	"bytes"
	"context"
	"net"
	"net/netip"
	"testing"
	"time"
)

func TestUDPServerAnswersPing(t *testing.T) {
	h := newTestGame(t, nil)
	srv, err := ListenUDP("127.0.0.1:0")
	if err != nil {
		t.Fatalf("ListenUDP: %v", err)
	}
	h.g.sender = srv

	ctx, cancel := context.WithCancel(context.Background())
	loopDone := make(chan struct{})
	serveDone := make(chan error, 1)
	go func() {
		h.g.Run(ctx)
		close(loopDone)
	}()
	go func() { serveDone <- srv.Serve(ctx, h.g) }()
	defer func() {
		cancel()
		<-loopDone
		if err := <-serveDone; err != nil {
			t.Errorf("Serve: %v", err)
		}
	}()

	client, err := net.DialUDP("udp", nil, net.UDPAddrFromAddrPort(srv.LocalAddr()))
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer client.Close()

	w := NewPacketWriter(16)
	w.PutInt(gssClientID)
	if _, err := client.Write(append(w.Bytes(), "PING"...)); err != nil {
		t.Fatalf("write: %v", err)
	}

	client.SetReadDeadline(time.Now().Add(5 * time.Second))
	buf := make([]byte, 64)
	n, err := client.Read(buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	want := []byte{4, 0, 0, 0, 'P', 'O', 'N', 'G'}
	if !bytes.Equal(buf[:n], want) {
		t.Errorf("expected %v, got %v", want, buf[:n])
	}
}

func TestPeerLimiter(t *testing.T) {
	l := NewPeerLimiter(3)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	a := netip.MustParseAddr("10.0.0.1")
	b := netip.MustParseAddr("10.0.0.2")

	for i := 0; i < 3; i++ {
		if !l.Allow(a, now) {
			t.Fatalf("datagram %d should pass", i)
		}
	}
	if l.Allow(a, now) {
		t.Error("the fourth datagram in a second should be dropped")
	}
	if !l.Allow(b, now) {
		t.Error("other addresses have their own budget")
	}
	if !l.Allow(a, now.Add(1100*time.Millisecond)) {
		t.Error("the budget should reset after a second")
	}

	l.Sweep(now.Add(2 * time.Minute))
	if len(l.peers) != 0 {
		t.Errorf("sweep should forget quiet peers, %d left", len(l.peers))
	}
}

func TestPeerString(t *testing.T) {
	p := Peer{Addr: addrA, ClientID: 42}
	if got := p.String(); got != "10.0.0.1:5000#42" {
		t.Errorf("unexpected %q", got)
	}
	if (Peer{}).Valid() {
		t.Error("the zero peer should not be valid")
	}
}
