package chat

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/StoreStation/linecraft/pkg/protocol"
	"github.com/StoreStation/linecraft/pkg/raster"
)

// Format selects how a Broadcaster frames messages.
type Format int

const (
	// FormatJSON writes one chat component per line.
	FormatJSON Format = iota
	// FormatPacket writes framed clientbound chat packets.
	FormatPacket
)

// ParseFormat maps "json" and "packet" to a Format.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "", "json":
		return FormatJSON, nil
	case "packet":
		return FormatPacket, nil
	}
	return 0, fmt.Errorf("unknown chat format %q", s)
}

// Broadcaster announces batch progress as chat messages. It implements
// raster.Observer; per-column events are ignored.
type Broadcaster struct {
	raster.NopObserver

	mu     sync.Mutex
	w      io.Writer
	format Format
	err    error
}

// NewBroadcaster returns a broadcaster writing to w.
func NewBroadcaster(w io.Writer, format Format) *Broadcaster {
	return &Broadcaster{w: w, format: format}
}

func prefixed(parts ...Message) Message {
	return Join(append([]Message{Colored("[linecraft] ", Gold)}, parts...)...)
}

// Send writes msg. After the first write error every later Send is dropped
// and Err reports that error.
func (b *Broadcaster) Send(msg Message) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return b.err
	}
	var err error
	switch b.format {
	case FormatPacket:
		err = protocol.WritePacket(b.w, protocol.ChatPacket(msg.String(), protocol.PositionSystem))
	default:
		_, err = io.WriteString(b.w, msg.String()+"\n")
	}
	b.err = err
	return err
}

// Err returns the first write error.
func (b *Broadcaster) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.err
}

func (b *Broadcaster) BatchStarted(style string, networks int) {
	b.Send(prefixed(Text(fmt.Sprintf("%s: building %d networks", style, networks))))
}

func (b *Broadcaster) NetworkDone(id string, _ raster.Stats, err error) {
	if err == nil || errors.Is(err, raster.ErrDegenerateNetwork) {
		return
	}
	b.Send(prefixed(Colored(fmt.Sprintf("network %s failed: %v", id, err), Red)))
}

func (b *Broadcaster) Progress(style string, done, total int) {
	pct := 0
	if total > 0 {
		pct = done * 100 / total
	}
	b.Send(prefixed(
		Text(style+": "),
		Colored(fmt.Sprintf("%d%%", pct), White),
		Colored(fmt.Sprintf(" (%d/%d segments)", done, total), Gray),
	))
}

func (b *Broadcaster) BatchDone(style string, r raster.BatchResult) {
	color := Green
	if r.Failed > 0 || r.Rasterized == 0 {
		color = Red
	}
	b.Send(prefixed(Colored(fmt.Sprintf("%s done: %d built, %d skipped, %d failed, %d supports",
		style, r.Rasterized, r.Skipped, r.Failed, r.Stats.SupportsPlaced), color)))
}
