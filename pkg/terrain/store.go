package terrain

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"

	"golang.org/x/exp/mmap"
)

// noWater marks a column without water in the waterY layer.
const noWater = math.MinInt16

// ErrTruncated is returned when a layer file is shorter than the grid.
var ErrTruncated = errors.New("terrain layer shorter than grid")

// Meta is the grid.meta.json descriptor. Layer paths are relative to the
// parent of the directory holding the meta file.
type Meta struct {
	MinX          int    `json:"minX"`
	MinZ          int    `json:"minZ"`
	Width         int    `json:"width"`
	Height        int    `json:"height"`
	GroundY       string `json:"groundY"`
	WaterY        string `json:"waterY"`
	TopBlockIndex string `json:"topBlockIndex"`
	TopBlockDict  string `json:"topBlockDict"`
}

// Store serves ground, water and surface block lookups from memory-mapped
// layer files. Lookups are safe for concurrent use.
type Store struct {
	meta   Meta
	ground *mmap.ReaderAt
	water  *mmap.ReaderAt // nil when the layer is absent
	topIdx *mmap.ReaderAt // nil when the layer is absent
	dict   []string
}

// OpenStore maps the layers described by the meta file at metaPath. The
// ground layer is required; the water and top block layers are optional.
func OpenStore(metaPath string) (*Store, error) {
	raw, err := os.ReadFile(metaPath)
	if err != nil {
		return nil, fmt.Errorf("read terrain meta: %w", err)
	}
	var meta Meta
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, fmt.Errorf("parse terrain meta %s: %w", metaPath, err)
	}
	if meta.Width <= 0 || meta.Height <= 0 {
		return nil, fmt.Errorf("terrain meta %s: bad size %dx%d", metaPath, meta.Width, meta.Height)
	}
	if meta.GroundY == "" {
		return nil, fmt.Errorf("terrain meta %s: no groundY layer", metaPath)
	}

	root := filepath.Dir(filepath.Dir(metaPath))
	cells := meta.Width * meta.Height
	s := &Store{meta: meta}

	if s.ground, err = openLayer(filepath.Join(root, meta.GroundY), 4*cells, true); err != nil {
		return nil, err
	}
	if meta.WaterY != "" {
		if s.water, err = openLayer(filepath.Join(root, meta.WaterY), 2*cells, false); err != nil {
			s.Close()
			return nil, err
		}
	}
	if meta.TopBlockIndex != "" && meta.TopBlockDict != "" {
		if s.topIdx, err = openLayer(filepath.Join(root, meta.TopBlockIndex), 4*cells, false); err != nil {
			s.Close()
			return nil, err
		}
		if s.topIdx != nil {
			if s.dict, err = readDict(filepath.Join(root, meta.TopBlockDict)); err != nil {
				s.Close()
				return nil, err
			}
		}
	}
	return s, nil
}

func openLayer(path string, size int, required bool) (*mmap.ReaderAt, error) {
	r, err := mmap.Open(path)
	if err != nil {
		if !required && errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("map terrain layer: %w", err)
	}
	if r.Len() < size {
		r.Close()
		return nil, fmt.Errorf("%s: %w (%d < %d bytes)", path, ErrTruncated, r.Len(), size)
	}
	return r, nil
}

func readDict(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open top block dictionary: %w", err)
	}
	defer f.Close()

	var dict []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		dict = append(dict, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read top block dictionary: %w", err)
	}
	return dict, nil
}

// Meta returns the descriptor the store was opened from.
func (s *Store) Meta() Meta {
	return s.meta
}

// Contains reports whether (x, z) lies on the grid.
func (s *Store) Contains(x, z int) bool {
	m := s.meta
	return x >= m.MinX && x < m.MinX+m.Width && z >= m.MinZ && z < m.MinZ+m.Height
}

func (s *Store) index(x, z int) int64 {
	return int64((z-s.meta.MinZ)*s.meta.Width + (x - s.meta.MinX))
}

// GroundHeight returns the ground height of the column.
func (s *Store) GroundHeight(x, z int) (int, bool) {
	if s == nil || s.ground == nil || !s.Contains(x, z) {
		return 0, false
	}
	var buf [4]byte
	if _, err := s.ground.ReadAt(buf[:], s.index(x, z)*4); err != nil {
		return 0, false
	}
	return int(int32(binary.LittleEndian.Uint32(buf[:]))), true
}

// WaterLevel returns the water surface height, or false where the column
// holds no water.
func (s *Store) WaterLevel(x, z int) (int, bool) {
	if s == nil || s.water == nil || !s.Contains(x, z) {
		return 0, false
	}
	var buf [2]byte
	if _, err := s.water.ReadAt(buf[:], s.index(x, z)*2); err != nil {
		return 0, false
	}
	v := int16(binary.LittleEndian.Uint16(buf[:]))
	if v == noWater {
		return 0, false
	}
	return int(v), true
}

// TopBlock returns the surface block id of the column.
func (s *Store) TopBlock(x, z int) (string, bool) {
	if s == nil || s.topIdx == nil || len(s.dict) == 0 || !s.Contains(x, z) {
		return "", false
	}
	var buf [4]byte
	if _, err := s.topIdx.ReadAt(buf[:], s.index(x, z)*4); err != nil {
		return "", false
	}
	code := int(int32(binary.LittleEndian.Uint32(buf[:])))
	if code < 0 || code >= len(s.dict) {
		return "", false
	}
	return s.dict[code], true
}

// Close unmaps every layer.
func (s *Store) Close() error {
	var errs []error
	for _, r := range []*mmap.ReaderAt{s.ground, s.water, s.topIdx} {
		if r != nil {
			errs = append(errs, r.Close())
		}
	}
	s.ground, s.water, s.topIdx = nil, nil, nil
	return errors.Join(errs...)
}
