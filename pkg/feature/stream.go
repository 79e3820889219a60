package feature

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"os"
	"strconv"
	"strings"
)

// maxLine bounds a single NDJSON element.
const maxLine = 64 << 20

// Point is one vertex of a way geometry.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Element is one map element: a node with Lat/Lon or a way with Geometry.
type Element struct {
	Type     string            `json:"type"`
	ID       int64             `json:"id"`
	Lat      *float64          `json:"lat,omitempty"`
	Lon      *float64          `json:"lon,omitempty"`
	Tags     map[string]string `json:"tags,omitempty"`
	Geometry []Point           `json:"geometry,omitempty"`
}

// Name identifies the element in logs and network IDs.
func (e Element) Name() string {
	return e.Type + "/" + strconv.FormatInt(e.ID, 10)
}

// Tag returns a tag value lowercased and trimmed.
func (e Element) Tag(key string) string {
	return strings.ToLower(strings.TrimSpace(e.Tags[key]))
}

// Stream iterates an NDJSON element file. Blank lines are skipped and lines
// that do not parse as an object are counted and skipped.
type Stream struct {
	sc        *bufio.Scanner
	closer    io.Closer
	cur       Element
	read      int
	malformed int
}

// NewStream reads elements from r.
func NewStream(r io.Reader) *Stream {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 1<<20), maxLine)
	return &Stream{sc: sc}
}

// OpenStream opens an NDJSON file. Close releases it.
func OpenStream(path string) (*Stream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	s := NewStream(f)
	s.closer = f
	return s, nil
}

// Next advances to the next element.
func (s *Stream) Next() bool {
	for s.sc.Scan() {
		line := bytes.TrimSpace(s.sc.Bytes())
		if len(line) == 0 {
			continue
		}
		var e Element
		if err := json.Unmarshal(line, &e); err != nil {
			s.malformed++
			continue
		}
		s.cur = e
		s.read++
		return true
	}
	return false
}

// Element returns the element Next stopped at.
func (s *Stream) Element() Element { return s.cur }

// Read is how many elements were returned.
func (s *Stream) Read() int { return s.read }

// Malformed is how many lines were skipped.
func (s *Stream) Malformed() int { return s.malformed }

// Err returns the first read error.
func (s *Stream) Err() error { return s.sc.Err() }

// Close closes the underlying file, if OpenStream opened one.
func (s *Stream) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}
