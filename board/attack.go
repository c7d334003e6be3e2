package board

import (
	"math/bits"
	"sync"

	"github.com/daystram/caissa/position"
)

var (
	defaultAttackTables     *AttackTables
	defaultAttackTablesOnce sync.Once
)

// Magic is the perfect-hash lookup for one slider on one square.
type Magic struct {
	Attacks []Bitmap
	Mask    Bitmap
	Magic   Bitmap
	Shift   uint8
}

func (m *Magic) GetIndex(occupied Bitmap) uint64 {
	return uint64(((occupied & m.Mask) * m.Magic) >> m.Shift)
}

// AttackTables holds per-square attack sets. It is never mutated after NewAttackTables returns
// and may be shared between any number of boards and engines.
type AttackTables struct {
	king     [TotalCells]Bitmap
	knight   [TotalCells]Bitmap
	pawn     [2 + 1][TotalCells]Bitmap
	pawnPush [2 + 1][TotalCells]Bitmap
	bishop   [TotalCells]Magic
	rook     [TotalCells]Magic
}

// DefaultAttackTables returns the process-wide tables, building them on first use.
func DefaultAttackTables() *AttackTables {
	defaultAttackTablesOnce.Do(func() {
		defaultAttackTables = NewAttackTables()
	})
	return defaultAttackTables
}

func NewAttackTables() *AttackTables {
	t := &AttackTables{}
	t.initLeapers()

	r := NewPseudoRand()
	r.Seed(magicSeed)
	for pos := position.Pos(0); pos < TotalCells; pos++ {
		t.bishop[pos] = findMagic(r, pos, relevantBishopMask(pos), HitDiagonals)
		t.rook[pos] = findMagic(r, pos, relevantRookMask(pos), HitLaterals)
	}
	return t
}

func (t *AttackTables) initLeapers() {
	for pos := position.Pos(0); pos < TotalCells; pos++ {
		cell := maskCell[pos]

		mask := Bitmap(0)
		mask |= ShiftN(ShiftN(ShiftE(cell &^ maskRow[7] &^ maskRow[6] &^ maskCol[7])))
		mask |= ShiftN(ShiftN(ShiftW(cell &^ maskRow[7] &^ maskRow[6] &^ maskCol[0])))
		mask |= ShiftS(ShiftS(ShiftE(cell &^ maskRow[0] &^ maskRow[1] &^ maskCol[7])))
		mask |= ShiftS(ShiftS(ShiftW(cell &^ maskRow[0] &^ maskRow[1] &^ maskCol[0])))
		mask |= ShiftE(ShiftE(ShiftN(cell &^ maskCol[7] &^ maskCol[6] &^ maskRow[7])))
		mask |= ShiftE(ShiftE(ShiftS(cell &^ maskCol[7] &^ maskCol[6] &^ maskRow[0])))
		mask |= ShiftW(ShiftW(ShiftN(cell &^ maskCol[0] &^ maskCol[1] &^ maskRow[7])))
		mask |= ShiftW(ShiftW(ShiftS(cell &^ maskCol[0] &^ maskCol[1] &^ maskRow[0])))
		t.knight[pos] = mask

		mask = Bitmap(0)
		mask |= ShiftN(cell &^ maskRow[7])
		mask |= ShiftNE(cell &^ maskRow[7] &^ maskCol[7])
		mask |= ShiftE(cell &^ maskCol[7])
		mask |= ShiftSE(cell &^ maskRow[0] &^ maskCol[7])
		mask |= ShiftS(cell &^ maskRow[0])
		mask |= ShiftSW(cell &^ maskRow[0] &^ maskCol[0])
		mask |= ShiftW(cell &^ maskCol[0])
		mask |= ShiftNW(cell &^ maskRow[7] &^ maskCol[0])
		t.king[pos] = mask

		t.pawn[SideWhite][pos] = ShiftNE(cell&^maskRow[7]&^maskCol[7]) | ShiftNW(cell&^maskRow[7]&^maskCol[0])
		t.pawn[SideBlack][pos] = ShiftSE(cell&^maskRow[0]&^maskCol[7]) | ShiftSW(cell&^maskRow[0]&^maskCol[0])
		t.pawnPush[SideWhite][pos] = ShiftN(cell &^ maskRow[7])
		t.pawnPush[SideBlack][pos] = ShiftS(cell &^ maskRow[0])
	}
}

// relevantBishopMask excludes the board edges, a blocker there never changes the attack set.
func relevantBishopMask(pos position.Pos) Bitmap {
	edges := maskRow[0] | maskRow[7] | maskCol[0] | maskCol[7]
	return (maskDia[pos] | maskADia[pos]) &^ maskCell[pos] &^ edges
}

func relevantRookMask(pos position.Pos) Bitmap {
	row := maskRow[pos.Y()] &^ maskCol[0] &^ maskCol[7]
	col := maskCol[pos.X()] &^ maskRow[0] &^ maskRow[7]
	return (row | col) &^ maskCell[pos]
}

func findMagic(r *PseudoRand, pos position.Pos, mask Bitmap, slow func(position.Pos, Bitmap) Bitmap) Magic {
	n := mask.BitCount()
	size := 1 << n
	occupancies := make([]Bitmap, 0, size)
	references := make([]Bitmap, 0, size)

	// carry-rippler over every subset of mask
	sub := Bitmap(0)
	for {
		occupancies = append(occupancies, sub)
		references = append(references, slow(pos, sub))
		sub = (sub - mask) & mask
		if sub == 0 {
			break
		}
	}

	m := Magic{
		Attacks: make([]Bitmap, size),
		Mask:    mask,
		Shift:   uint8(TotalCells) - n,
	}
	for {
		m.Magic = Bitmap(r.SparseUint64())
		if bits.OnesCount64(uint64((mask*m.Magic)&maskRow[7])) < 6 {
			continue
		}
		for i := range m.Attacks {
			m.Attacks[i] = 0
		}
		ok := true
		for i, occ := range occupancies {
			idx := m.GetIndex(occ)
			// slider attack sets are never empty, so zero marks an unused slot
			if m.Attacks[idx] == 0 {
				m.Attacks[idx] = references[i]
			} else if m.Attacks[idx] != references[i] {
				ok = false
				break
			}
		}
		if ok {
			return m
		}
	}
}

func (t *AttackTables) KingAttacks(pos position.Pos) Bitmap {
	return t.king[pos]
}

func (t *AttackTables) KnightAttacks(pos position.Pos) Bitmap {
	return t.knight[pos]
}

// PawnAttacks returns the squares a pawn of side s on pos captures on.
func (t *AttackTables) PawnAttacks(s Side, pos position.Pos) Bitmap {
	return t.pawn[s][pos]
}

// PawnPush returns the single-step push square of a pawn of side s on pos.
func (t *AttackTables) PawnPush(s Side, pos position.Pos) Bitmap {
	return t.pawnPush[s][pos]
}

func (t *AttackTables) BishopAttacks(pos position.Pos, occupied Bitmap) Bitmap {
	m := &t.bishop[pos]
	return m.Attacks[m.GetIndex(occupied)]
}

func (t *AttackTables) RookAttacks(pos position.Pos, occupied Bitmap) Bitmap {
	m := &t.rook[pos]
	return m.Attacks[m.GetIndex(occupied)]
}

func (t *AttackTables) QueenAttacks(pos position.Pos, occupied Bitmap) Bitmap {
	return t.BishopAttacks(pos, occupied) | t.RookAttacks(pos, occupied)
}
