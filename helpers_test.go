package main

import (
	"math/rand"
	"net/netip"
	"testing"
	"time"

	"go.uber.org/mock/gomock"
)

var (
	addrA = netip.MustParseAddrPort("10.0.0.1:5000")
	addrB = netip.MustParseAddrPort("10.0.0.2:5000")
	addrC = netip.MustParseAddrPort("10.0.0.3:5000")
)

const testMapCRC = 1234

type sentPacket struct {
	To   netip.AddrPort
	Data []byte
}

// testHarness drives a game with a fake clock and records every datagram it sends
type testHarness struct {
	t    *testing.T
	g    *Game
	now  time.Time
	sent []sentPacket
}

// newTestGame creates a game on an open test map without bots. mutate may
// adjust the config before the game is built.
func newTestGame(t *testing.T, mutate func(*Config)) *testHarness {
	t.Helper()
	ctrl := gomock.NewController(t)
	h := &testHarness{t: t, now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}

	sender := NewMockSender(ctrl)
	sender.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(func(to netip.AddrPort, b []byte) error {
		h.sent = append(h.sent, sentPacket{To: to, Data: append([]byte(nil), b...)})
		return nil
	}).AnyTimes()

	cfg := DefaultConfig()
	cfg.BotCount = 0
	cfg.Register = false
	if mutate != nil {
		mutate(cfg)
	}
	h.g = NewGame(cfg, []*GameMap{testMap(t, "Test")}, sender)
	h.g.clock = func() time.Time { return h.now }
	h.g.rng = rand.New(rand.NewSource(1))
	h.g.now = h.now
	h.g.lastTick = h.now
	h.g.startedAt = h.now
	h.g.newRound()
	return h
}

// testMap is a 20x20 room of 50 unit tiles with a solid border
func testMap(t testing.TB, name string) *GameMap {
	t.Helper()
	const w, h = 20, 20
	tiles := make([]byte, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if x == 0 || y == 0 || x == w-1 || y == h-1 {
				tiles[y*w+x] = 1
			}
		}
	}
	grid, err := NewGrid(w, h, 50, tiles)
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}
	return &GameMap{Name: name, Grid: grid, CRC32: testMapCRC}
}

// advance moves the fake clock forward
func (h *testHarness) advance(d time.Duration) {
	h.now = h.now.Add(d)
}

// tick advances the clock by d and runs one game update
func (h *testHarness) tick(d time.Duration) {
	h.advance(d)
	h.g.update()
}

func (h *testHarness) deliver(from netip.AddrPort, data []byte) {
	h.g.HandlePacket(from, data)
}

// lastSent returns the most recent datagram and fails when none was sent
func (h *testHarness) lastSent() sentPacket {
	h.t.Helper()
	if len(h.sent) == 0 {
		h.t.Fatal("no datagram sent")
	}
	return h.sent[len(h.sent)-1]
}

// login logs nick in from addr and returns its slot
func (h *testHarness) login(from netip.AddrPort, clientID int32, nick string) *Player {
	h.t.Helper()
	h.deliver(from, loginPacket(clientID, ProtocolVersion, nick))
	reply := h.lastSent().Data
	if len(reply) < 3 || reply[0] != NetLogin || reply[1] != NetLoginOK {
		h.t.Fatalf("login %s: unexpected reply %v", nick, reply)
	}
	return h.g.players[reply[2]]
}

func loginPacket(clientID int32, version, nick string) []byte {
	w := NewPacketWriter(64)
	w.PutInt(clientID)
	w.PutByte(NetLogin)
	w.PutString(version)
	w.PutString(nick)
	return w.Bytes()
}

// playerPacket builds a PLAYER update. status packs the weapon in bits 0-3,
// the ammo flag in bit 4 and the trigger in bit 5.
func playerPacket(clientID int32, id byte, x, y, angle int16, status, picked byte) []byte {
	w := NewPacketWriter(32)
	w.PutInt(clientID)
	w.PutByte(NetPlayer)
	w.PutByte(id)
	w.PutShort(x)
	w.PutShort(y)
	w.PutShort(angle)
	w.PutByte(status)
	w.PutByte(picked)
	w.PutByte(NetEnd)
	return w.Bytes()
}

// chatPacket builds a TEXTMESSAGE packet for slot id
func chatPacket(clientID int32, id byte, text string) []byte {
	w := NewPacketWriter(64)
	w.PutInt(clientID)
	w.PutByte(NetTextMessage)
	w.PutByte(id)
	w.PutString(text)
	w.PutByte(NetEnd)
	return w.Bytes()
}

// record is one decoded message of a reply stream
type record struct {
	Tag  byte
	ID   byte   // first byte after the tag, where the message has one
	Text string // string field, where the message has one
	Body []byte
}

// decodeReply splits a reply into messages up to the END byte
func decodeReply(t testing.TB, b []byte) []record {
	t.Helper()
	r := NewPacketReader(b)
	var out []record
	for {
		tag := r.Byte()
		if r.Err() != nil {
			t.Fatalf("reply ended without END: %v", b)
		}
		if tag == NetEnd {
			return out
		}
		start := len(b) - len(r.Remaining())
		rec := record{Tag: tag}
		switch tag {
		case NetPlayer:
			rec.ID = r.Byte()
			r.Short()
			r.Short()
			r.Short()
			r.Byte()
			r.Byte()
			r.Short()
			r.Short()
		case NetRadar, NetTeamInfo:
			rec.ID = r.Byte()
			r.Byte()
		case NetPlayerName:
			rec.ID = r.Byte()
			rec.Text = r.String()
			r.Byte()
			r.Byte()
		case NetLogin:
			rec.ID = r.Byte()
			rec.Text = r.String()
			r.Byte()
		case NetLogout:
			rec.ID = r.Byte()
		case NetNewBullet:
			r.Short()
			rec.ID = r.Byte()
			r.Byte()
			r.Short()
			r.Short()
			r.Short()
		case NetTextMessage:
			rec.ID = r.Byte()
			rec.Text = r.String()
		case NetServerMsg:
			rec.Text = r.String()
		case NetBulletHit:
			r.Short()
			rec.ID = r.Byte()
			r.Short()
			r.Short()
			r.Byte()
		case NetItem:
			rec.ID = r.Byte()
			r.Byte()
			r.Short()
			r.Short()
		case NetKillMessage:
			rec.ID = r.Byte()
			r.Byte()
			r.Byte()
			for i := 0; i < 4; i++ {
				r.Short()
			}
		case NetKicked:
			rec.ID = r.Byte()
			r.Byte()
			rec.Text = r.String()
		case NetSpeedHack:
		case NetDebugDrawing:
			rec.ID = r.Byte()
			if rec.ID != DrawClear {
				for i := 0; i < 4; i++ {
					r.Short()
				}
			}
		default:
			t.Fatalf("unexpected tag %d in reply %v", tag, b)
		}
		if err := r.Err(); err != nil {
			t.Fatalf("decode tag %d: %v", tag, err)
		}
		rec.Body = b[start : len(b)-len(r.Remaining())]
		out = append(out, rec)
	}
}

// findRecord returns the first record with tag
func findRecord(recs []record, tag byte) (record, bool) {
	for _, r := range recs {
		if r.Tag == tag {
			return r, true
		}
	}
	return record{}, false
}

// pendingOf returns the queued events of one type for a slot
func pendingOf[T Event](g *Game, id int) []T {
	var out []T
	for _, ev := range g.outbox.Pending(id) {
		if e, ok := ev.(T); ok {
			out = append(out, e)
		}
	}
	return out
}
