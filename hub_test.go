package main

import "testing"

func TestHubConnectionLimits(t *testing.T) {
	h := NewHub()
	for i := 0; i < maxConnsPerIP; i++ {
		if !h.CanAccept("1.2.3.4") {
			t.Fatalf("connection %d should be accepted", i+1)
		}
		h.TrackConnect("1.2.3.4")
	}
	if h.CanAccept("1.2.3.4") {
		t.Error("expected the per address limit")
	}
	if !h.CanAccept("5.6.7.8") {
		t.Error("another address should be accepted")
	}

	h.TrackDisconnect("1.2.3.4")
	if !h.CanAccept("1.2.3.4") {
		t.Error("a freed connection should make room")
	}
	if n := h.TotalConns(); n != maxConnsPerIP-1 {
		t.Errorf("expected %d tracked connections, got %d", maxConnsPerIP-1, n)
	}
}
