package engine

import (
	"github.com/daystram/caissa/board"
	"github.com/daystram/caissa/position"
)

const (
	phaseTotal int32 = 24

	scoreBishopPair       int32 = 30
	scoreDoubledPawn      int32 = -20
	scoreIsolatedPawn     int32 = -10
	scoreCentralPawn      int32 = 20
	scoreSpace            int32 = 10
	scoreShieldNear       int32 = 10
	scoreShieldFar        int32 = 5
	scoreKingOpenFile     int32 = -25
	scoreKingHalfOpenFile int32 = -10
	scoreCenterControl    int32 = 5
	scoreRookOpenFile     int32 = 20
	scoreRookHalfOpenFile int32 = 10
	scoreRookOpenFileEG   int32 = 10
	scoreRookHalfOpenEG   int32 = 5
)

var (
	// PieceValues are the material values in centipawns.
	PieceValues = [6 + 1]int32{
		board.PiecePawn:   100,
		board.PieceKnight: 320,
		board.PieceBishop: 330,
		board.PieceRook:   500,
		board.PieceQueen:  900,
	}

	phaseWeight = [6 + 1]int32{
		board.PieceKnight: 1,
		board.PieceBishop: 1,
		board.PieceRook:   2,
		board.PieceQueen:  4,
	}

	scoreMobility = [6 + 1]int32{
		board.PieceKnight: 4,
		board.PieceBishop: 5,
		board.PieceRook:   2,
		board.PieceQueen:  1,
	}

	// indexed by the pawn's rank relative to its own side
	scorePassedPawnMG = [8]int32{0, 5, 10, 15, 25, 40, 60, 0}
	scorePassedPawnEG = [8]int32{0, 10, 20, 35, 55, 80, 110, 0}

	// PST table taken from https://www.chessprogramming.org/Simplified_Evaluation_Function,
	// drawn from White's point of view with rank 8 on top.
	scorePiecePositionMG = [6 + 1][64]int32{
		board.PiecePawn: {
			0, 0, 0, 0, 0, 0, 0, 0,
			50, 50, 50, 50, 50, 50, 50, 50,
			10, 10, 20, 30, 30, 20, 10, 10,
			5, 5, 10, 25, 25, 10, 5, 5,
			0, 0, 0, 20, 20, 0, 0, 0,
			5, -5, -10, 0, 0, -10, -5, 5,
			5, 10, 10, -20, -20, 10, 10, 5,
			0, 0, 0, 0, 0, 0, 0, 0,
		},
		board.PieceKnight: {
			-50, -40, -30, -30, -30, -30, -40, -50,
			-40, -20, 0, 0, 0, 0, -20, -40,
			-30, 0, 10, 15, 15, 10, 0, -30,
			-30, 5, 15, 20, 20, 15, 5, -30,
			-30, 0, 15, 20, 20, 15, 0, -30,
			-30, 5, 10, 15, 15, 10, 5, -30,
			-40, -20, 0, 5, 5, 0, -20, -40,
			-50, -40, -30, -30, -30, -30, -40, -50,
		},
		board.PieceBishop: {
			-20, -10, -10, -10, -10, -10, -10, -20,
			-10, 0, 0, 0, 0, 0, 0, -10,
			-10, 0, 5, 10, 10, 5, 0, -10,
			-10, 5, 5, 10, 10, 5, 5, -10,
			-10, 0, 10, 10, 10, 10, 0, -10,
			-10, 10, 10, 10, 10, 10, 10, -10,
			-10, 5, 0, 0, 0, 0, 5, -10,
			-20, -10, -10, -10, -10, -10, -10, -20,
		},
		board.PieceRook: {
			0, 0, 0, 0, 0, 0, 0, 0,
			5, 10, 10, 10, 10, 10, 10, 5,
			-5, 0, 0, 0, 0, 0, 0, -5,
			-5, 0, 0, 0, 0, 0, 0, -5,
			-5, 0, 0, 0, 0, 0, 0, -5,
			-5, 0, 0, 0, 0, 0, 0, -5,
			-5, 0, 0, 0, 0, 0, 0, -5,
			0, 0, 0, 5, 5, 0, 0, 0,
		},
		board.PieceQueen: {
			-20, -10, -10, -5, -5, -10, -10, -20,
			-10, 0, 0, 0, 0, 0, 0, -10,
			-10, 0, 5, 5, 5, 5, 0, -10,
			-5, 0, 5, 5, 5, 5, 0, -5,
			0, 0, 5, 5, 5, 5, 0, -5,
			-10, 5, 5, 5, 5, 5, 0, -10,
			-10, 0, 5, 0, 0, 0, 0, -10,
			-20, -10, -10, -5, -5, -10, -10, -20,
		},
		board.PieceKing: {
			-30, -40, -40, -50, -50, -40, -40, -30,
			-30, -40, -40, -50, -50, -40, -40, -30,
			-30, -40, -40, -50, -50, -40, -40, -30,
			-30, -40, -40, -50, -50, -40, -40, -30,
			-20, -30, -30, -40, -40, -30, -30, -20,
			-10, -20, -20, -20, -20, -20, -20, -10,
			20, 20, 0, 0, 0, 0, 20, 20,
			20, 30, 10, 0, 0, 10, 30, 20,
		},
	}
	scorePiecePositionEG = [6 + 1][64]int32{
		board.PiecePawn: {
			0, 0, 0, 0, 0, 0, 0, 0,
			80, 80, 80, 80, 80, 80, 80, 80,
			50, 50, 50, 50, 50, 50, 50, 50,
			30, 30, 30, 30, 30, 30, 30, 30,
			20, 20, 20, 20, 20, 20, 20, 20,
			10, 10, 10, 10, 10, 10, 10, 10,
			5, 5, 5, 5, 5, 5, 5, 5,
			0, 0, 0, 0, 0, 0, 0, 0,
		},
		board.PieceKnight: scorePiecePositionMG[board.PieceKnight],
		board.PieceBishop: scorePiecePositionMG[board.PieceBishop],
		board.PieceRook: {
			0, 0, 0, 0, 0, 0, 0, 0,
			10, 10, 10, 10, 10, 10, 10, 10,
			0, 0, 0, 0, 0, 0, 0, 0,
			0, 0, 0, 0, 0, 0, 0, 0,
			0, 0, 0, 0, 0, 0, 0, 0,
			0, 0, 0, 0, 0, 0, 0, 0,
			0, 0, 0, 0, 0, 0, 0, 0,
			0, 0, 0, 0, 0, 0, 0, 0,
		},
		board.PieceQueen: scorePiecePositionMG[board.PieceQueen],
		board.PieceKing: {
			-50, -40, -30, -20, -20, -30, -40, -50,
			-30, -20, -10, 0, 0, -10, -20, -30,
			-30, -10, 20, 30, 30, 20, -10, -30,
			-30, -10, 30, 40, 40, 30, -10, -30,
			-30, -10, 30, 40, 40, 30, -10, -30,
			-30, -10, 20, 30, 30, 20, -10, -30,
			-30, -30, 0, 0, 0, 0, -30, -30,
			-50, -30, -30, -30, -30, -30, -30, -50,
		},
	}

	maskFile         [8]board.Bitmap
	maskAdjacentFile [8]board.Bitmap
	maskFrontSpan    [2 + 1][64]board.Bitmap // own and adjacent files ahead of the square
	maskCenter       board.Bitmap
)

func init() {
	for pos := position.Pos(0); pos < position.TotalCells; pos++ {
		maskFile[pos.X()].Set(pos)
	}
	for x := position.Pos(0); x < position.MaxComponentScalar; x++ {
		if x > 0 {
			maskAdjacentFile[x] |= maskFile[x-1]
		}
		if x < position.MaxComponentScalar-1 {
			maskAdjacentFile[x] |= maskFile[x+1]
		}
	}
	for pos := position.Pos(0); pos < position.TotalCells; pos++ {
		files := maskFile[pos.X()] | maskAdjacentFile[pos.X()]
		for sq := position.Pos(0); sq < position.TotalCells; sq++ {
			if !files.IsSet(sq) {
				continue
			}
			if sq.Y() > pos.Y() {
				maskFrontSpan[board.SideWhite][pos].Set(sq)
			}
			if sq.Y() < pos.Y() {
				maskFrontSpan[board.SideBlack][pos].Set(sq)
			}
		}
	}
	for _, pos := range []position.Pos{position.D4, position.E4, position.D5, position.E5} {
		maskCenter.Set(pos)
	}
}

// relative flips the square so that every side sees its own back rank as rank 1.
func relative(s board.Side, pos position.Pos) position.Pos {
	if s == board.SideBlack {
		return pos.Mirror()
	}
	return pos
}

// pstIndex maps a square to the index of a table drawn with rank 8 on top.
func pstIndex(s board.Side, pos position.Pos) position.Pos {
	return relative(s, pos).Mirror()
}

// Evaluate returns the static score in centipawns, positive when White is better.
// Evaluate(b.Mirror()) == -Evaluate(b) for every position.
func Evaluate(b *board.Board) int32 {
	var mg, eg, phase int32
	t := b.Tables()
	occ := b.Occupied()

	var pawnAttacks [2 + 1]board.Bitmap
	for _, s := range board.SideList {
		pawns := b.GetBitmap(s, board.PiecePawn)
		for pawns != 0 {
			pawnAttacks[s] |= t.PawnAttacks(s, pawns.PopLS1B())
		}
	}

	for _, s := range board.SideList {
		sign := int32(1)
		if s == board.SideBlack {
			sign = -1
		}
		them := s.Opposite()
		own := b.GetSideBitmap(s)
		ownPawns, theirPawns := b.GetBitmap(s, board.PiecePawn), b.GetBitmap(them, board.PiecePawn)
		var sideMG, sideEG int32
		attacked := pawnAttacks[s]

		for _, p := range board.PieceList {
			bm := b.GetBitmap(s, p)
			phase += phaseWeight[p] * int32(bm.BitCount())
			for bm != 0 {
				pos := bm.PopLS1B()
				idx := pstIndex(s, pos)
				sideMG += PieceValues[p] + scorePiecePositionMG[p][idx]
				sideEG += PieceValues[p] + scorePiecePositionEG[p][idx]

				var attacks board.Bitmap
				switch p {
				case board.PieceKnight:
					attacks = t.KnightAttacks(pos)
				case board.PieceBishop:
					attacks = t.BishopAttacks(pos, occ)
				case board.PieceRook:
					attacks = t.RookAttacks(pos, occ)
					file := maskFile[pos.X()]
					if file&(ownPawns|theirPawns) == 0 {
						sideMG += scoreRookOpenFile
						sideEG += scoreRookOpenFileEG
					} else if file&ownPawns == 0 {
						sideMG += scoreRookHalfOpenFile
						sideEG += scoreRookHalfOpenEG
					}
				case board.PieceQueen:
					attacks = t.QueenAttacks(pos, occ)
				case board.PieceKing:
					attacks = t.KingAttacks(pos)
					sideMG += evaluateKingSafety(s, pos, ownPawns, theirPawns)
				}
				attacked |= attacks
				if mobility := scoreMobility[p] * int32((attacks &^ own &^ pawnAttacks[them]).BitCount()); mobility != 0 {
					sideMG += mobility
					sideEG += mobility
				}
			}
		}

		if b.GetBitmap(s, board.PieceBishop).BitCount() >= 2 {
			sideMG += scoreBishopPair
			sideEG += scoreBishopPair
		}

		pawnMG, pawnEG := evaluatePawns(s, ownPawns, theirPawns)
		sideMG += pawnMG
		sideEG += pawnEG

		center := scoreCenterControl * int32((attacked & maskCenter).BitCount())
		sideMG += center

		mg += sign * sideMG
		eg += sign * sideEG
	}

	if phase > phaseTotal {
		phase = phaseTotal
	}
	return (mg*phase + eg*(phaseTotal-phase)) / phaseTotal
}

// EvaluateRelative returns Evaluate from the point of view of the side to move.
func EvaluateRelative(b *board.Board) int32 {
	if b.Turn() == board.SideBlack {
		return -Evaluate(b)
	}
	return Evaluate(b)
}

func evaluatePawns(s board.Side, ownPawns, theirPawns board.Bitmap) (int32, int32) {
	var mg, eg int32
	for x := position.Pos(0); x < position.MaxComponentScalar; x++ {
		if n := int32((ownPawns & maskFile[x]).BitCount()); n > 1 {
			mg += scoreDoubledPawn * (n - 1)
			eg += scoreDoubledPawn * (n - 1)
		}
	}

	central := scoreCentralPawn * int32((ownPawns & maskCenter).BitCount())
	mg += central

	pawns := ownPawns
	for pawns != 0 {
		pos := pawns.PopLS1B()
		rank := relative(s, pos).Y()
		if ownPawns&maskAdjacentFile[pos.X()] == 0 {
			mg += scoreIsolatedPawn
			eg += scoreIsolatedPawn
		}
		if theirPawns&maskFrontSpan[s][pos] == 0 {
			mg += scorePassedPawnMG[rank]
			eg += scorePassedPawnEG[rank]
		}
		if rank >= position.Rank4 && rank <= position.Rank6 {
			mg += scoreSpace
		}
	}
	return mg, eg
}

// evaluateKingSafety scores the pawn shield and the open lines around a king still on its back rank.
func evaluateKingSafety(s board.Side, king position.Pos, ownPawns, theirPawns board.Bitmap) int32 {
	rel := relative(s, king)
	if rel.Y() != position.Rank1 {
		return 0
	}
	var score int32
	files := maskFile[king.X()] | maskAdjacentFile[king.X()]
	// shield only counts for a castled king
	if king.X() <= position.FileC || king.X() >= position.FileF {
		near := relative(s, position.NewPos(0, position.Rank2)).Y()
		far := relative(s, position.NewPos(0, position.Rank3)).Y()
		for pawns := ownPawns & files; pawns != 0; {
			switch pawns.PopLS1B().Y() {
			case near:
				score += scoreShieldNear
			case far:
				score += scoreShieldFar
			}
		}
	}
	for x := position.Pos(0); x < position.MaxComponentScalar; x++ {
		file := maskFile[x]
		if file&files == 0 {
			continue
		}
		if file&(ownPawns|theirPawns) == 0 {
			score += scoreKingOpenFile
		} else if file&ownPawns == 0 {
			score += scoreKingHalfOpenFile
		}
	}
	return score
}
