package board

import (
	"fmt"
	"math/bits"
	"strings"

	"github.com/daystram/caissa/position"
)

// Bitmap is a set of squares, one bit per square in little-endian rank-file order.
type Bitmap uint64

func reverse(bm Bitmap) Bitmap {
	return Bitmap(bits.Reverse64(uint64(bm)))
}

func ShiftNW(bm Bitmap) Bitmap {
	return bm << 7
}

func ShiftN(bm Bitmap) Bitmap {
	return bm << 8
}

func ShiftNE(bm Bitmap) Bitmap {
	return bm << 9
}

func ShiftE(bm Bitmap) Bitmap {
	return bm << 1
}

func ShiftSE(bm Bitmap) Bitmap {
	return bm >> 7
}

func ShiftS(bm Bitmap) Bitmap {
	return bm >> 8
}

func ShiftSW(bm Bitmap) Bitmap {
	return bm >> 9
}

func ShiftW(bm Bitmap) Bitmap {
	return bm >> 1
}

// HitDiagonals returns the bishop rays from pos, stopping at (and including) the first blocker.
func HitDiagonals(pos position.Pos, occupied Bitmap) Bitmap {
	occupied |= maskCell[pos]
	return ScanHit(maskCell[pos], occupied, maskDia[pos]) | ScanHit(maskCell[pos], occupied, maskADia[pos])
}

// HitLaterals returns the rook rays from pos, stopping at (and including) the first blocker.
func HitLaterals(pos position.Pos, occupied Bitmap) Bitmap {
	occupied |= maskCell[pos]
	return ScanHit(maskCell[pos], occupied, maskCol[pos.X()]) | ScanHit(maskCell[pos], occupied, maskRow[pos.Y()])
}

// ScanHit uses o^(o-2*r) trick. occupied must contain cell.
func ScanHit(cell, occupied, mask Bitmap) Bitmap {
	blocker := occupied & mask
	return ((blocker - 2*cell) ^ reverse(reverse(blocker)-2*reverse(cell))) & mask
}

func (bm *Bitmap) Set(pos position.Pos) {
	*bm |= maskCell[pos]
}

func (bm *Bitmap) Unset(pos position.Pos) {
	*bm &^= maskCell[pos]
}

func (bm Bitmap) IsSet(pos position.Pos) bool {
	return bm&maskCell[pos] != 0
}

func (bm Bitmap) LS1B() position.Pos {
	return position.Pos(bits.TrailingZeros64(uint64(bm)))
}

// PopLS1B clears and returns the least significant set square.
func (bm *Bitmap) PopLS1B() position.Pos {
	pos := bm.LS1B()
	*bm &= *bm - 1
	return pos
}

func (bm Bitmap) BitCount() uint8 {
	return uint8(bits.OnesCount64(uint64(bm)))
}

// Mirror flips the set vertically.
func (bm Bitmap) Mirror() Bitmap {
	return Bitmap(bits.ReverseBytes64(uint64(bm)))
}

func (bm Bitmap) Dump(sym ...rune) string {
	builder := strings.Builder{}
	for y := position.Pos(Height); y > 0; y-- {
		_, _ = builder.WriteString(fmt.Sprintf(" %d |", y))
		for x := position.Pos(0); x < Width; x++ {
			if bm&maskCell[(y-1)*Height+x] != 0 {
				s := "#"
				if len(sym) == 1 {
					s = string(sym[0])
				}
				_, _ = builder.WriteString(fmt.Sprintf(" %s ", s))
			} else {
				_, _ = builder.WriteString(" . ")
			}
		}
		_, _ = builder.WriteString("\n")
	}
	_, _ = builder.WriteString("    ------------------------\n    ")
	for x := position.Pos(0); x < Width; x++ {
		_, _ = builder.WriteString(fmt.Sprintf(" %s ", x.NotationComponentX()))
	}
	return builder.String()
}
