package world

import (
	"cmp"
	"slices"

	"github.com/StoreStation/linecraft/pkg/raster"
)

// ChunkSize is the width of a chunk column in blocks.
const ChunkSize = 16

// ChunkPos identifies a 16x16 chunk column.
type ChunkPos struct {
	X, Z int
}

// ChunkOf returns the chunk holding block column (x, z).
func ChunkOf(x, z int) ChunkPos {
	return ChunkPos{X: floorDiv(x, ChunkSize), Z: floorDiv(z, ChunkSize)}
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// Block is one placed block.
type Block struct {
	Pos      BlockPos
	Material raster.Material
}

// Chunk holds the placed blocks of one chunk column, bottom up.
type Chunk struct {
	Pos    ChunkPos
	Blocks []Block
}

// Chunks groups every placed block by chunk. Chunks are ordered by X then
// Z, and blocks inside a chunk by Y, Z, X, so the result is stable for a
// given world.
func (w *World) Chunks() []Chunk {
	byChunk := map[ChunkPos][]Block{}
	for pos, m := range w.GetModifications() {
		cp := ChunkOf(pos.X, pos.Z)
		byChunk[cp] = append(byChunk[cp], Block{Pos: pos, Material: m})
	}

	chunks := make([]Chunk, 0, len(byChunk))
	for cp, blocks := range byChunk {
		slices.SortFunc(blocks, func(a, b Block) int {
			return cmp.Or(cmp.Compare(a.Pos.Y, b.Pos.Y), cmp.Compare(a.Pos.Z, b.Pos.Z), cmp.Compare(a.Pos.X, b.Pos.X))
		})
		chunks = append(chunks, Chunk{Pos: cp, Blocks: blocks})
	}
	slices.SortFunc(chunks, func(a, b Chunk) int {
		return cmp.Or(cmp.Compare(a.Pos.X, b.Pos.X), cmp.Compare(a.Pos.Z, b.Pos.Z))
	})
	return chunks
}
