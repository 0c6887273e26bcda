package main

import (
	"fmt"
	"log"
	"math"
	"net/netip"
	"strconv"
	"strings"
)

const (
	viewRangeX = 900 // players further away are shown as radar arrows
	viewRangeY = 700

	maxMoveSpeed  = 400 // units/s a client may report moving
	moveTolerance = 64

	replyBufSize = 512
)

// HandlePacket processes one inbound datagram and sends the reply
func (g *Game) HandlePacket(from netip.AddrPort, data []byte) {
	g.now = g.clock()
	r := NewPacketReader(data)
	clientID := r.Int()
	if r.Err() != nil {
		return
	}
	if clientID == gssClientID {
		g.handleListingProbe(from, r.Remaining())
		return
	}
	if g.closing {
		g.send(from, []byte{NetServerClosing, NetEnd})
		return
	}

	msgType := r.Byte()
	if r.Err() != nil {
		return
	}
	peer := Peer{Addr: from, ClientID: clientID}

	if msgType == NetLogin {
		version := r.String()
		nick := r.String()
		if err := r.Err(); err != nil {
			log.Printf("login: bad packet from %s: %v", peer, err)
			return
		}
		g.login(peer, version, nick)
		return
	}

	id := int(r.Byte())
	if r.Err() != nil {
		return
	}
	if id < 1 || id > g.cfg.MaxPlayers {
		log.Printf("udp: invalid player id %d from %s", id, peer)
		return
	}
	p := g.players[id]

	if p.Kicked && p.Peer == peer {
		w := NewPacketWriter(replyBufSize)
		KickedEvent{Kicker: byte(p.KickedBy), Kicked: byte(p.ID), Reason: p.KickReason}.Encode(w)
		w.PutByte(NetEnd)
		g.send(from, w.Bytes())
		return
	}
	if !p.Active || p.Zombie || p.Peer != peer {
		g.send(from, []byte{NetNoLogin, NetEnd})
		return
	}
	if msgType == NetLogout {
		g.logout(id)
		return
	}

	p.Lag = g.now.Sub(p.LastActivity)
	p.LastActivity = g.now

	for tag := msgType; ; {
		if !g.handleMessage(p, tag, r) {
			break
		}
		tag = r.Byte()
		if r.Err() != nil || tag == 0 || tag == NetEnd {
			break
		}
	}
	g.sendReply(p)
}

// handleMessage applies one tagged message from p. It reports false when
// the rest of the datagram cannot be read.
func (g *Game) handleMessage(p *Player, tag byte, r *PacketReader) bool {
	switch tag {
	case NetPlayer:
		u := decodePlayerUpdate(r)
		if r.Err() != nil {
			return false
		}
		if !p.IsDead {
			g.checkSpeed(p, u)
			p.updatePosition(u)
			if u.Shooting {
				g.fireWeapon(p)
			}
			if u.Picked != 0 {
				g.pickItem(p, u.Picked)
			}
		}
		if p.Health > 0 {
			p.IsDead = false
		}
		p.LoggedIn = true
	case NetPlayerName:
		p.SendNames = true
	case NetTextMessage:
		text := strings.TrimSpace(r.String())
		if r.Err() != nil {
			return false
		}
		g.handleChat(p, text)
	case NetMapChange:
		name := strings.TrimSpace(r.String())
		if r.Err() != nil {
			return false
		}
		p.MapName = name
	default:
		if g.debug {
			log.Printf("udp: unknown message %d from %s", tag, p.Name)
		}
		return false
	}
	return true
}

// checkSpeed warns a client that reports moving faster than possible.
// Moves during spawn protection are not checked since the server teleports
// players on spawn.
func (g *Game) checkSpeed(p *Player, u PlayerUpdate) {
	last := p.moveCheckedAt
	p.moveCheckedAt = g.now
	if last.IsZero() || p.Protected(g.now, g.spawnProtection()) {
		return
	}
	limit := maxMoveSpeed*g.now.Sub(last).Seconds() + moveTolerance
	if Distance(p.X, p.Y, float64(u.X), float64(u.Y)) > limit {
		g.queueTo(p.ID, SpeedHackEvent{})
		if g.debug {
			log.Printf("game: %s moved too fast", p.Name)
		}
	}
}

// handleChat routes a chat line: /commands, *team chat or everyone
func (g *Game) handleChat(p *Player, text string) {
	if text == "" {
		return
	}
	switch {
	case strings.HasPrefix(text, "/"):
		line := text[1:]
		if !p.Admin && commandName(line) != "login" {
			g.serverMessageTo(p.ID, "You need to login as admin to use commands.")
			return
		}
		g.commands.Run(p, line)
	case strings.HasPrefix(text, "*"):
		g.queueTeam(p.Team, TextMessageEvent{From: byte(p.ID), Text: text})
		log.Printf("chat: [team %d] %s: %s", p.Team, p.Name, text[1:])
	default:
		g.queueAll(TextMessageEvent{From: byte(p.ID), Text: text}, 0)
		log.Printf("chat: %s: %s", p.Name, text)
	}
}

// login admits a new player or answers why it cannot
func (g *Game) login(peer Peer, version, nick string) {
	if version != ProtocolVersion {
		w := NewPacketWriter(replyBufSize)
		w.PutByte(NetLogin)
		w.PutByte(NetLoginFailed)
		w.PutByte(NetWrongVersion)
		w.PutString(ProtocolVersion)
		w.PutByte(NetEnd)
		g.send(peer.Addr, w.Bytes())
		return
	}

	nick = strings.TrimSpace(nick)
	for _, o := range g.slots() {
		if o.Name == "" || !strings.EqualFold(o.Name, nick) {
			continue
		}
		if o.Kicked || !o.Active {
			o.Name = ""
			continue
		}
		g.send(peer.Addr, []byte{NetLogin, NetLoginFailed, NetNicknameInUse, NetEnd})
		return
	}

	id := g.freeHumanSlot()
	if id == 0 {
		g.send(peer.Addr, []byte{NetLogin, NetLoginFailed, NetTooManyPlayers, NetEnd})
		return
	}

	p := g.players[id]
	*p = *NewPlayer(id)
	p.Peer = peer
	p.Name = nick
	p.MapName = g.currentMap().Name
	p.Active = true
	if g.cfg.GameMode > ModeDeathmatch {
		g.setTeamEvenly(p)
	}
	p.X, p.Y = g.findSpot()
	p.Angle = math.Floor(g.rng.Float64()*360 + 1)
	p.Health = PlayerMaxHealth
	p.LastActivity = g.now
	p.SpawnTime = g.now
	g.playerCount++
	g.outbox.Clear(id)

	m := g.currentMap()
	w := NewPacketWriter(replyBufSize)
	w.PutByte(NetLogin)
	w.PutByte(NetLoginOK)
	w.PutByte(byte(id))
	w.PutByte(byte(g.cfg.GameMode))
	w.PutString(m.Name)
	w.PutInt(m.CRC32)
	w.PutString(g.cfg.MapDownloadURL)
	w.PutByte(NetEnd)
	g.send(peer.Addr, w.Bytes())

	g.queueAll(LoginEvent{ID: byte(id), Name: nick}, id)
	if g.cfg.GameMode > ModeDeathmatch {
		g.queueAll(TeamInfoEvent{ID: byte(id), Team: byte(p.Team)}, id)
	}
	g.stats.Login(p)
	log.Printf("login: %s joined as #%d from %s", nick, id, peer)
}

// freeHumanSlot returns the first free slot a human may take, evicting a
// bot when every human slot is taken by one. 0 means the server is full.
func (g *Game) freeHumanSlot() int {
	if g.playerCount >= g.cfg.MaxPlayers {
		return 0
	}
	for id := 1; id <= g.cfg.MaxPlayers; id++ {
		if !g.players[id].Active {
			return id
		}
	}
	for id := 1; id <= g.cfg.MaxPlayers; id++ {
		if p := g.players[id]; p.Active && p.Zombie {
			g.removeBot(p)
			return id
		}
	}
	return 0
}

// logout frees a human slot and tells everyone
func (g *Game) logout(id int) {
	p := g.players[id]
	if !p.Active {
		return
	}
	if p.Zombie {
		g.removeBot(p)
		return
	}
	log.Printf("logout: %s left", p.Name)
	g.dropPlayer(p)
	g.queueAll(LogoutEvent{ID: byte(id)}, 0)
}

// dropPlayer frees p's slot without telling the other clients
func (g *Game) dropPlayer(p *Player) {
	g.stats.Logout(p)
	p.leave()
	g.outbox.Clear(p.ID)
	g.playerCount--
}

// kickPlayer removes p from the game. The others only get KICKED, the
// kicked client learns why on its next packet.
func (g *Game) kickPlayer(p, by *Player, reason string) {
	if !p.Active || p.Zombie {
		return
	}
	kicker := 0
	if by != nil {
		kicker = by.ID
	}
	g.queueAll(KickedEvent{Kicker: byte(kicker), Kicked: byte(p.ID), Reason: reason}, p.ID)
	g.dropPlayer(p)
	p.Kicked = true
	p.KickedBy = kicker
	p.KickReason = reason
	log.Printf("kick: %s was kicked: %s", p, reason)
}

// sendReply builds p's reply: the visible players, radar arrows, queued
// events and, when asked for, the roster and items
func (g *Game) sendReply(p *Player) {
	protection := g.spawnProtection()
	w := NewPacketWriter(replyBufSize)

	for _, o := range g.slots() {
		if !o.Active {
			continue
		}
		if p.SendNames {
			w.PutByte(NetPlayerName)
			w.PutByte(byte(o.ID))
			w.PutString(o.Name)
			w.PutBool(o.Zombie)
			w.PutByte(byte(o.Team))
		}

		visible := math.Abs(o.X-p.X) <= viewRangeX && math.Abs(o.Y-p.Y) <= viewRangeY
		switch {
		case visible || p.SendNames || o.Health <= 0:
			w.PutByte(NetPlayer)
			w.PutByte(byte(o.ID))
			w.PutShortF(o.X)
			w.PutShortF(o.Y)
			w.PutShortF(o.Angle)
			flags := byte(o.Weapon%16) | o.teamBit()<<6
			if o.HasAmmo {
				flags |= 1 << 4
			}
			if o.Protected(g.now, protection) {
				flags |= 1 << 7
			}
			w.PutByte(flags)
			w.PutByte(healthByte(o.Health))
			w.PutShort(int16(o.Kills))
			w.PutShort(int16(o.Deaths))
		case g.cfg.RadarArrows || g.cfg.GameMode == ModeTeamDeathmatch:
			if o.Team != p.Team && !g.cfg.RadarArrows {
				continue
			}
			a := math.Atan2(p.Y-o.Y, p.X-o.X)
			w.PutByte(NetRadar)
			w.PutByte(byte((a + math.Pi) / (2 * math.Pi) * 255))
			w.PutByte(byte(o.Team))
		}
	}

	for _, ev := range g.outbox.Take(p.ID) {
		ev.Encode(w)
	}
	if p.SendNames {
		p.SendNames = false
		for _, it := range g.items {
			it.event().Encode(w)
		}
	}
	p.DebugState = 0
	w.PutByte(NetEnd)
	g.send(p.Peer.Addr, w.Bytes())
}

// healthByte encodes health. Negative health wraps so the client can tell
// how the player died.
func healthByte(h float64) byte {
	v := int(h)
	if v <= 0 {
		return byte(min(255, max(0, v+256)))
	}
	return byte(min(255, v))
}

// handleListingProbe answers the master server
func (g *Game) handleListingProbe(from netip.AddrPort, body []byte) {
	switch string(body) {
	case "GSS+":
		log.Printf("gss: registration confirmed by %s", from)
	case "PING":
		w := NewPacketWriter(replyBufSize)
		w.PutString("PONG")
		g.send(from, w.Bytes())
	}
}

// serverMessage sends a server chat line to every human
func (g *Game) serverMessage(text string) {
	g.queueAll(ServerMessageEvent{Text: text}, 0)
	log.Printf("server: %s", text)
}

// serverMessageTo sends a server chat line to one player
func (g *Game) serverMessageTo(id int, text string) {
	g.queueTo(id, ServerMessageEvent{Text: text})
}

func (g *Game) send(to netip.AddrPort, b []byte) {
	if g.sender == nil {
		return
	}
	if err := g.sender.Send(to, b); err != nil {
		log.Printf("udp: send to %s: %v", to, err)
	}
}

// parseSlotID parses a player id given as text
func parseSlotID(s string) (int, bool) {
	id, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || id < 1 || id > MaxSlots {
		return 0, false
	}
	return id, true
}

func equalFoldName(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// nameInUse reports whether an active player other than except has name
func (g *Game) nameInUse(name string, except *Player) bool {
	for _, p := range g.slots() {
		if p != except && p.Active && equalFoldName(p.Name, name) {
			return true
		}
	}
	return false
}

func (p *Player) String() string {
	return fmt.Sprintf("%s (#%d)", p.Name, p.ID)
}
