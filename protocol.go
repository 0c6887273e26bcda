package main

// Message tags. The values are fixed by the client.
const (
	NetLogin          byte = 1
	NetLogout         byte = 2
	NetLoginFailed    byte = 3
	NetLoginOK        byte = 4
	NetWrongVersion   byte = 5
	NetTooManyPlayers byte = 6
	NetNoLogin        byte = 7
	NetPlayer         byte = 8
	NetNewBullet      byte = 9
	NetPlayerName     byte = 10
	NetTextMessage    byte = 11
	NetBulletHit      byte = 12
	NetRadar          byte = 13
	NetItem           byte = 14
	NetKillMessage    byte = 15
	NetSessionTime    byte = 16
	NetBanned         byte = 17
	NetMapChange      byte = 18
	NetKicked         byte = 19
	NetServerMsg      byte = 20
	NetNicknameInUse  byte = 21
	NetServerClosing  byte = 22
	NetTeamInfo       byte = 23
	NetSpeedHack      byte = 24
	NetDebugDrawing   byte = 25
	NetEnd            byte = 255
)

// Debug drawing shapes
const (
	DrawLine   byte = 1
	DrawCircle byte = 2
	DrawBox    byte = 3
	DrawClear  byte = 4
)

// Item types
const (
	ItemHealth   byte = 18
	ItemAmmo     byte = 19
	ItemRocket   byte = 20
	ItemFuel     byte = 21
	ItemShotgun  byte = 33
	ItemLauncher byte = 34
)

const (
	ProtocolVersion = "v2.4b"
	gssClientID     = 544437095 // "gss " read as a little-endian int32
)

// PlayerUpdate is the decoded body of an inbound PLAYER message
type PlayerUpdate struct {
	X, Y, Angle int16
	Weapon      int
	HasAmmo     bool
	Shooting    bool
	Picked      byte
}

// decodePlayerUpdate reads x, y, angle, the packed status byte and the
// picked item id. Bits 0-3 of the status byte carry the weapon, bit 4 the
// ammo flag and bit 5 the trigger.
func decodePlayerUpdate(r *PacketReader) PlayerUpdate {
	u := PlayerUpdate{X: r.Short(), Y: r.Short(), Angle: r.Short()}
	b := int32(r.Byte())
	u.Weapon = int((b << 28) >> 28)
	u.HasAmmo = -((b<<27)>>31) == 1
	u.Shooting = -((b<<26)>>31) == 1
	u.Picked = r.Byte()
	return u
}

// Event is one queued outbound record, encoded when the recipient's reply is built
type Event interface {
	Tag() byte
	Encode(w *PacketWriter)
}

// LoginEvent announces a player joining
type LoginEvent struct {
	ID     byte
	Name   string
	Zombie bool
}

func (LoginEvent) Tag() byte { return NetLogin }

func (e LoginEvent) Encode(w *PacketWriter) {
	w.PutByte(NetLogin)
	w.PutByte(e.ID)
	w.PutString(e.Name)
	w.PutBool(e.Zombie)
}

// LogoutEvent announces a player leaving
type LogoutEvent struct {
	ID byte
}

func (LogoutEvent) Tag() byte { return NetLogout }

func (e LogoutEvent) Encode(w *PacketWriter) {
	w.PutByte(NetLogout)
	w.PutByte(e.ID)
}

// NewBulletEvent announces a fired bullet
type NewBulletEvent struct {
	BulletID uint16
	PlayerID byte
	Weapon   int
	Sound    bool
	Hand     bool
	X, Y     float64
	Angle    float64
}

func (NewBulletEvent) Tag() byte { return NetNewBullet }

func (e NewBulletEvent) Encode(w *PacketWriter) {
	w.PutByte(NetNewBullet)
	w.PutShort(int16(e.BulletID))
	w.PutByte(e.PlayerID)
	flags := byte(e.Weapon % 16)
	if e.Sound {
		flags |= 1 << 4
	}
	if e.Weapon == WeaponChainsaw {
		w.PutByte(flags)
		w.PutShortF(e.X)
		w.PutShortF(e.Y)
		w.PutShort(0)
		return
	}
	if e.Hand {
		flags |= 1 << 5
	}
	w.PutByte(flags)
	w.PutShortF(e.X)
	w.PutShortF(e.Y)
	w.PutShortF(e.Angle)
}

// TextMessageEvent carries chat from a player
type TextMessageEvent struct {
	From byte
	Text string
}

func (TextMessageEvent) Tag() byte { return NetTextMessage }

func (e TextMessageEvent) Encode(w *PacketWriter) {
	w.PutByte(NetTextMessage)
	w.PutByte(e.From)
	w.PutString(e.Text)
}

// ServerMessageEvent carries a message from the server
type ServerMessageEvent struct {
	Text string
}

func (ServerMessageEvent) Tag() byte { return NetServerMsg }

func (e ServerMessageEvent) Encode(w *PacketWriter) {
	w.PutByte(NetServerMsg)
	w.PutString(e.Text)
}

// BulletHitEvent reports where a bullet stopped. Victim is 0 for a wall or fuse.
type BulletHitEvent struct {
	BulletID uint16
	Victim   byte
	X, Y     float64
	Weapon   int
}

func (BulletHitEvent) Tag() byte { return NetBulletHit }

func (e BulletHitEvent) Encode(w *PacketWriter) {
	w.PutByte(NetBulletHit)
	w.PutShort(int16(e.BulletID))
	w.PutByte(e.Victim)
	w.PutShortF(e.X)
	w.PutShortF(e.Y)
	w.PutByte(byte(e.Weapon))
}

// ItemEvent reports an item's current position
type ItemEvent struct {
	ID   byte
	Type byte
	X, Y float64
}

func (ItemEvent) Tag() byte { return NetItem }

func (e ItemEvent) Encode(w *PacketWriter) {
	w.PutByte(NetItem)
	w.PutByte(e.ID)
	w.PutByte(e.Type)
	w.PutShortF(e.X)
	w.PutShortF(e.Y)
}

// KillMessageEvent reports a kill with both parties' updated scores
type KillMessageEvent struct {
	Killer, Victim            byte
	Weapon                    int
	KillerKills, KillerDeaths int
	VictimKills, VictimDeaths int
}

func (KillMessageEvent) Tag() byte { return NetKillMessage }

func (e KillMessageEvent) Encode(w *PacketWriter) {
	w.PutByte(NetKillMessage)
	w.PutByte(e.Killer)
	w.PutByte(e.Victim)
	w.PutByte(byte(e.Weapon))
	w.PutShort(int16(e.KillerKills))
	w.PutShort(int16(e.KillerDeaths))
	w.PutShort(int16(e.VictimKills))
	w.PutShort(int16(e.VictimDeaths))
}

// KickedEvent reports a kick. Kicker is 0 when the server kicked.
type KickedEvent struct {
	Kicker, Kicked byte
	Reason         string
}

func (KickedEvent) Tag() byte { return NetKicked }

func (e KickedEvent) Encode(w *PacketWriter) {
	w.PutByte(NetKicked)
	w.PutByte(e.Kicker)
	w.PutByte(e.Kicked)
	w.PutString(e.Reason)
}

// TeamInfoEvent reports a player's team
type TeamInfoEvent struct {
	ID, Team byte
}

func (TeamInfoEvent) Tag() byte { return NetTeamInfo }

func (e TeamInfoEvent) Encode(w *PacketWriter) {
	w.PutByte(NetTeamInfo)
	w.PutByte(e.ID)
	w.PutByte(e.Team)
}

// SpeedHackEvent tells a client it moved too fast
type SpeedHackEvent struct{}

func (SpeedHackEvent) Tag() byte { return NetSpeedHack }

func (SpeedHackEvent) Encode(w *PacketWriter) {
	w.PutByte(NetSpeedHack)
}

// DebugDrawEvent draws a debug shape on the client. The fifth variable,
// when present, is sent as a byte and ends the list.
type DebugDrawEvent struct {
	DrawType byte
	Vars     []float64
}

func (DebugDrawEvent) Tag() byte { return NetDebugDrawing }

func (e DebugDrawEvent) Encode(w *PacketWriter) {
	w.PutByte(NetDebugDrawing)
	w.PutByte(e.DrawType)
	for i, v := range e.Vars {
		if i == 4 {
			w.PutByte(byte(v))
			break
		}
		w.PutShortF(v)
	}
}
