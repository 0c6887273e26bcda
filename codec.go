package main

import (
	"encoding/binary"
	"errors"
	"math"
)

const maxStringLen = 255

var (
	// ErrShortPacket is returned when a read runs past the end of a datagram
	ErrShortPacket = errors.New("short packet")
	// ErrStringTooLong is returned for string fields over maxStringLen bytes
	ErrStringTooLong = errors.New("string too long")
)

// PacketReader decodes little-endian fields from a datagram. The first
// failed read sticks: every later read returns zero and Err reports it.
type PacketReader struct {
	buf []byte
	off int
	err error
}

// NewPacketReader wraps a datagram
func NewPacketReader(b []byte) *PacketReader {
	return &PacketReader{buf: b}
}

// Err returns the first read error
func (r *PacketReader) Err() error { return r.err }

// Remaining returns the unread bytes
func (r *PacketReader) Remaining() []byte {
	return r.buf[r.off:]
}

func (r *PacketReader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || len(r.buf)-r.off < n {
		r.err = ErrShortPacket
		return nil
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b
}

// Byte reads an unsigned byte
func (r *PacketReader) Byte() byte {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

// Short reads a signed 16-bit integer
func (r *PacketReader) Short() int16 {
	b := r.take(2)
	if b == nil {
		return 0
	}
	return int16(binary.LittleEndian.Uint16(b))
}

// Int reads a signed 32-bit integer
func (r *PacketReader) Int() int32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return int32(binary.LittleEndian.Uint32(b))
}

// String reads an int32 length followed by that many bytes
func (r *PacketReader) String() string {
	n := r.Int()
	if r.err != nil {
		return ""
	}
	if n < 0 || n > maxStringLen {
		r.err = ErrStringTooLong
		return ""
	}
	return string(r.take(int(n)))
}

// PacketWriter encodes little-endian fields into a growing buffer
type PacketWriter struct {
	buf []byte
}

// NewPacketWriter creates a writer with room for size bytes
func NewPacketWriter(size int) *PacketWriter {
	return &PacketWriter{buf: make([]byte, 0, size)}
}

// Bytes returns the encoded packet
func (w *PacketWriter) Bytes() []byte { return w.buf }

// Len returns the encoded length
func (w *PacketWriter) Len() int { return len(w.buf) }

// PutByte appends an unsigned byte
func (w *PacketWriter) PutByte(v byte) {
	w.buf = append(w.buf, v)
}

// PutBool appends 1 or 0
func (w *PacketWriter) PutBool(v bool) {
	if v {
		w.PutByte(1)
		return
	}
	w.PutByte(0)
}

// PutShort appends a signed 16-bit integer
func (w *PacketWriter) PutShort(v int16) {
	w.buf = binary.LittleEndian.AppendUint16(w.buf, uint16(v))
}

// PutShortF truncates and clamps a float into a short
func (w *PacketWriter) PutShortF(v float64) {
	w.PutShort(toShort(v))
}

// PutInt appends a signed 32-bit integer
func (w *PacketWriter) PutInt(v int32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, uint32(v))
}

// PutString appends an int32 length and the raw bytes
func (w *PacketWriter) PutString(s string) {
	w.PutInt(int32(len(s)))
	w.buf = append(w.buf, s...)
}

func toShort(v float64) int16 {
	if math.IsNaN(v) {
		return 0
	}
	return int16(Clamp(math.Trunc(v), math.MinInt16, math.MaxInt16))
}
