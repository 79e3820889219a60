// Package protocol frames chat messages as game protocol packets: a VarInt
// length, a VarInt packet id, then the payload. It lets progress messages be
// piped into anything that speaks the client chat packet.
package protocol

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// ChatPacketID is the clientbound chat message packet.
const ChatPacketID = 0x02

// Chat positions.
const (
	PositionChat      byte = 0
	PositionSystem    byte = 1
	PositionActionBar byte = 2
)

const (
	maxPacketLen = 2097151 // largest 3-byte VarInt
	maxStringLen = 32767 * 4
)

var (
	ErrVarIntTooBig = errors.New("VarInt is too big")
	ErrPacketSize   = errors.New("packet length out of range")
)

// Reader is what the decoders need: bytes one at a time and in bulk.
type Reader interface {
	io.Reader
	io.ByteReader
}

// Packet is one framed packet.
type Packet struct {
	ID   int32
	Data []byte
}

// AppendVarInt appends the VarInt encoding of v.
func AppendVarInt(buf []byte, v int32) []byte {
	return binary.AppendUvarint(buf, uint64(uint32(v)))
}

// readVarInt reads a VarInt of at most five bytes.
func readVarInt(r io.ByteReader) (int32, error) {
	u, err := binary.ReadUvarint(r)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return 0, err
		}
		return 0, ErrVarIntTooBig
	}
	if u > math.MaxUint32 {
		return 0, ErrVarIntTooBig
	}
	return int32(uint32(u)), nil
}

// AppendString appends a VarInt-length-prefixed UTF-8 string.
func AppendString(buf []byte, s string) []byte {
	buf = AppendVarInt(buf, int32(len(s)))
	return append(buf, s...)
}

// readString reads a length-prefixed string.
func readString(r Reader) (string, error) {
	n, err := readVarInt(r)
	if err != nil {
		return "", err
	}
	if n < 0 || n > maxStringLen {
		return "", fmt.Errorf("string length out of range: %d", n)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// WritePacket frames p and writes it with a single Write call.
func WritePacket(w io.Writer, p *Packet) error {
	body := AppendVarInt(nil, p.ID)
	body = append(body, p.Data...)
	if len(body) > maxPacketLen {
		return fmt.Errorf("%w: %d", ErrPacketSize, len(body))
	}
	frame := AppendVarInt(make([]byte, 0, len(body)+3), int32(len(body)))
	_, err := w.Write(append(frame, body...))
	return err
}

// ReadPacket reads one framed packet.
func ReadPacket(r Reader) (*Packet, error) {
	n, err := readVarInt(r)
	if err != nil {
		return nil, err
	}
	if n < 1 || n > maxPacketLen {
		return nil, fmt.Errorf("%w: %d", ErrPacketSize, n)
	}
	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, err
	}
	pr := bytes.NewReader(payload)
	id, err := readVarInt(pr)
	if err != nil {
		return nil, err
	}
	return &Packet{ID: id, Data: payload[len(payload)-pr.Len():]}, nil
}

// ChatPacket builds a chat packet carrying a JSON chat component.
func ChatPacket(json string, position byte) *Packet {
	data := AppendString(nil, json)
	return &Packet{ID: ChatPacketID, Data: append(data, position)}
}

// ParseChat returns the JSON component and position of a chat packet.
func ParseChat(p *Packet) (string, byte, error) {
	if p.ID != ChatPacketID {
		return "", 0, fmt.Errorf("packet 0x%02x is not a chat packet", p.ID)
	}
	r := bytes.NewReader(p.Data)
	json, err := readString(r)
	if err != nil {
		return "", 0, err
	}
	pos, err := r.ReadByte()
	if err != nil {
		return "", 0, fmt.Errorf("chat packet without position: %w", err)
	}
	return json, pos, nil
}
