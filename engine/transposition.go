package engine

import (
	"math/bits"

	"github.com/daystram/caissa/board"
)

const (
	DefaultHashTableSize = 1 << 20 // number of entries
)

type EntryType uint8

const (
	EntryTypeUnknown EntryType = iota
	EntryTypeExact
	EntryTypeLowerBound
	EntryTypeUpperBound
)

func (t EntryType) String() string {
	switch t {
	case EntryTypeExact:
		return "exact"
	case EntryTypeLowerBound:
		return "lower"
	case EntryTypeUpperBound:
		return "upper"
	default:
		return "unknown"
	}
}

// TranspositionTable is a fixed-size, always-indexed cache of search results keyed by
// zobrist hash. A slot whose hash differs from the probed one is treated as empty.
type TranspositionTable struct {
	table    []entry
	maskHash uint64

	// stats
	hits   uint64
	misses uint64
	writes uint64
}

type entry struct {
	hash  uint64
	mv    board.Move
	score int32
	depth uint8
	typ   EntryType
}

// NewTranspositionTable rounds size down to a power of two. A zero size disables the
// table: every probe misses and every store is dropped.
func NewTranspositionTable(size uint64) *TranspositionTable {
	if size == 0 {
		return &TranspositionTable{}
	}
	size = 1 << (63 - bits.LeadingZeros64(size))
	return &TranspositionTable{
		table:    make([]entry, size),
		maskHash: size - 1,
	}
}

func (t *TranspositionTable) Size() uint64 {
	return uint64(len(t.table))
}

// Probe returns the stored score when it can stand in for a search of the given depth
// under the (alpha, beta) window. Mate scores are converted to be relative to ply.
func (t *TranspositionTable) Probe(hash uint64, depth, ply uint8, alpha, beta int32) (int32, board.Move, bool) {
	if len(t.table) == 0 {
		t.misses++
		return 0, board.NullMove, false
	}
	e := &t.table[hash&t.maskHash]
	if e.typ == EntryTypeUnknown || e.hash != hash || e.depth < depth {
		t.misses++
		return 0, board.NullMove, false
	}

	score := scoreFromTT(e.score, ply)
	switch e.typ {
	case EntryTypeExact:
	case EntryTypeLowerBound:
		if score < beta {
			t.misses++
			return 0, board.NullMove, false
		}
	case EntryTypeUpperBound:
		if score > alpha {
			t.misses++
			return 0, board.NullMove, false
		}
	}
	t.hits++
	return score, e.mv, true
}

// Move returns the best move stored for hash regardless of depth, for move ordering.
func (t *TranspositionTable) Move(hash uint64) (board.Move, bool) {
	if len(t.table) == 0 {
		return board.NullMove, false
	}
	e := &t.table[hash&t.maskHash]
	if e.typ == EntryTypeUnknown || e.hash != hash || e.mv.IsNull() {
		return board.NullMove, false
	}
	return e.mv, true
}

// Store keeps the deeper result for the same position and always replaces a colliding one.
func (t *TranspositionTable) Store(hash uint64, depth, ply uint8, score int32, typ EntryType, mv board.Move) {
	if len(t.table) == 0 {
		return
	}
	e := &t.table[hash&t.maskHash]
	if e.typ != EntryTypeUnknown && e.hash == hash && depth < e.depth {
		return
	}
	t.writes++
	*e = entry{
		hash:  hash,
		mv:    mv,
		score: scoreToTT(score, ply),
		depth: depth,
		typ:   typ,
	}
}

func (t *TranspositionTable) Clear() {
	for i := range t.table {
		t.table[i] = entry{}
	}
}

func (t *TranspositionTable) ResetStats() {
	t.hits = 0
	t.misses = 0
	t.writes = 0
}

func (t *TranspositionTable) Stats() (uint64, uint64, uint64) {
	return t.hits, t.misses, t.writes
}

// mate scores are stored as distance from the node, not from the root
func scoreToTT(score int32, ply uint8) int32 {
	if score >= scoreMateThreshold {
		return score + int32(ply)
	}
	if score <= -scoreMateThreshold {
		return score - int32(ply)
	}
	return score
}

func scoreFromTT(score int32, ply uint8) int32 {
	if score >= scoreMateThreshold {
		return score - int32(ply)
	}
	if score <= -scoreMateThreshold {
		return score + int32(ply)
	}
	return score
}
