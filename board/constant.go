package board

import (
	"github.com/daystram/caissa/position"
)

const (
	Width      = position.MaxComponentScalar
	Height     = position.MaxComponentScalar
	TotalCells = position.TotalCells
)

var (
	DefaultStartingPositionFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

	maskCol = [Width]Bitmap{
		position.FileA: 0x_01_01_01_01_01_01_01_01,
		position.FileB: 0x_02_02_02_02_02_02_02_02,
		position.FileC: 0x_04_04_04_04_04_04_04_04,
		position.FileD: 0x_08_08_08_08_08_08_08_08,
		position.FileE: 0x_10_10_10_10_10_10_10_10,
		position.FileF: 0x_20_20_20_20_20_20_20_20,
		position.FileG: 0x_40_40_40_40_40_40_40_40,
		position.FileH: 0x_80_80_80_80_80_80_80_80,
	}
	maskRow = [Height]Bitmap{
		position.Rank1: 0x_00_00_00_00_00_00_00_FF,
		position.Rank2: 0x_00_00_00_00_00_00_FF_00,
		position.Rank3: 0x_00_00_00_00_00_FF_00_00,
		position.Rank4: 0x_00_00_00_00_FF_00_00_00,
		position.Rank5: 0x_00_00_00_FF_00_00_00_00,
		position.Rank6: 0x_00_00_FF_00_00_00_00_00,
		position.Rank7: 0x_00_FF_00_00_00_00_00_00,
		position.Rank8: 0x_FF_00_00_00_00_00_00_00,
	}
	maskCell [TotalCells]Bitmap
	maskDia  [TotalCells]Bitmap
	maskADia [TotalCells]Bitmap

	// squares that must be empty for castling
	maskCastling = [4 + 1]Bitmap{}
	// squares the king stands on or crosses while castling, none may be attacked
	posCastlingTransit = [4 + 1][3]position.Pos{
		CastleDirectionWhiteRight: {position.E1, position.F1, position.G1},
		CastleDirectionWhiteLeft:  {position.E1, position.D1, position.C1},
		CastleDirectionBlackRight: {position.E8, position.F8, position.G8},
		CastleDirectionBlackLeft:  {position.E8, position.D8, position.C8},
	}
	posCastling = [4 + 1][6 + 1][2]position.Pos{
		CastleDirectionWhiteRight: {
			PieceKing: {position.E1, position.G1},
			PieceRook: {position.H1, position.F1},
		},
		CastleDirectionWhiteLeft: {
			PieceKing: {position.E1, position.C1},
			PieceRook: {position.A1, position.D1},
		},
		CastleDirectionBlackRight: {
			PieceKing: {position.E8, position.G8},
			PieceRook: {position.H8, position.F8},
		},
		CastleDirectionBlackLeft: {
			PieceKing: {position.E8, position.C8},
			PieceRook: {position.A8, position.D8},
		},
	}

	maskCastleRights = [4 + 1]CastleRights{
		CastleDirectionWhiteRight: 0b1000,
		CastleDirectionWhiteLeft:  0b0100,
		CastleDirectionBlackRight: 0b0010,
		CastleDirectionBlackLeft:  0b0001,
	}
	// rights kept when a piece leaves or lands on the square
	maskCastleRightsKeep [TotalCells]CastleRights

	zobristConstantPiece        [2 + 1][6 + 1][TotalCells]uint64
	zobristConstantEnPassant    [Width]uint64
	zobristConstantCastleRights [16]uint64
	zobristConstantSideWhite    uint64
)

const (
	zobristSeed = 0x_9E37_79B9_7F4A_7C15
	magicSeed   = 0x_2545_F491_4F6C_DD1D
)

func init() {
	initMask()
	initZobrist()
}

func initMask() {
	for pos := position.Pos(0); pos < TotalCells; pos++ {
		maskCell[pos] = 1 << pos
	}

	for pos := position.Pos(0); pos < TotalCells; pos++ {
		mask := Bitmap(0)
		x, y := pos%Width, pos/Width
		d := x
		if y < d {
			d = y
		}
		x, y = x-d, y-d
		for x < Width && y < Height {
			mask |= maskCell[y*Width+x]
			x++
			y++
		}
		maskDia[pos] = mask
	}

	for pos := position.Pos(0); pos < TotalCells; pos++ {
		mask := Bitmap(0)
		x, y := pos%Width, pos/Width
		d := x
		if Height-y-1 < d {
			d = Height - y - 1
		}
		x, y = x-d, y+d
		for x < Width && y >= 0 {
			mask |= maskCell[y*Width+x]
			x++
			y--
		}
		maskADia[pos] = mask
	}

	for _, d := range []CastleDirection{
		CastleDirectionWhiteRight,
		CastleDirectionWhiteLeft,
		CastleDirectionBlackRight,
		CastleDirectionBlackLeft,
	} {
		kFrom, _ := d.KingHops()
		rFrom, _ := d.RookHops()
		lo, hi := kFrom, rFrom
		if lo > hi {
			lo, hi = hi, lo
		}
		for pos := lo + 1; pos < hi; pos++ {
			maskCastling[d] |= maskCell[pos]
		}
	}

	all := maskCastleRights[CastleDirectionWhiteRight] | maskCastleRights[CastleDirectionWhiteLeft] |
		maskCastleRights[CastleDirectionBlackRight] | maskCastleRights[CastleDirectionBlackLeft]
	for pos := position.Pos(0); pos < TotalCells; pos++ {
		maskCastleRightsKeep[pos] = all
	}
	maskCastleRightsKeep[position.E1] &^= maskCastleRights[CastleDirectionWhiteRight] | maskCastleRights[CastleDirectionWhiteLeft]
	maskCastleRightsKeep[position.H1] &^= maskCastleRights[CastleDirectionWhiteRight]
	maskCastleRightsKeep[position.A1] &^= maskCastleRights[CastleDirectionWhiteLeft]
	maskCastleRightsKeep[position.E8] &^= maskCastleRights[CastleDirectionBlackRight] | maskCastleRights[CastleDirectionBlackLeft]
	maskCastleRightsKeep[position.H8] &^= maskCastleRights[CastleDirectionBlackRight]
	maskCastleRightsKeep[position.A8] &^= maskCastleRights[CastleDirectionBlackLeft]
}

func initZobrist() {
	r := NewPseudoRand()
	r.Seed(zobristSeed)
	for _, s := range SideList {
		for _, p := range PieceList {
			for pos := position.Pos(0); pos < TotalCells; pos++ {
				zobristConstantPiece[s][p][pos] = r.Uint64()
			}
		}
	}
	for x := position.Pos(0); x < Width; x++ {
		zobristConstantEnPassant[x] = r.Uint64()
	}
	for c := 0; c < 16; c++ {
		zobristConstantCastleRights[c] = r.Uint64()
	}
	zobristConstantSideWhite = r.Uint64()
}
