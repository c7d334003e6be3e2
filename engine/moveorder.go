package engine

import (
	"github.com/daystram/caissa/board"
)

const (
	offsetPV      int32 = 1 << 30
	offsetMVVLVA  int32 = 1 << 29
	offsetPromote int32 = 1 << 28
	offsetKiller  int32 = 1 << 27

	historyMax int32 = 1 << 20
)

// capture ordering rank, bishop slightly ahead of knight
var rankMVVLVA = [6 + 1]int32{
	board.PiecePawn:   1,
	board.PieceKnight: 2,
	board.PieceBishop: 3,
	board.PieceRook:   4,
	board.PieceQueen:  5,
	board.PieceKing:   6,
}

type scoredMove struct {
	mv    board.Move
	score int32
}

func (e *Engine) scoreMoves(mvs []board.Move, pv board.Move, ply uint8) []scoredMove {
	smvs := make([]scoredMove, len(mvs))
	for i, mv := range mvs {
		var score int32
		switch {
		case !pv.IsNull() && mv.Equals(pv):
			score = offsetPV
		case mv.IsCapture():
			score = offsetMVVLVA + rankMVVLVA[mv.Captured]*10 - rankMVVLVA[mv.Piece]
			if mv.IsPromote() {
				score += PieceValues[mv.Promote] / 100
			}
		case mv.IsPromote():
			score = offsetPromote + PieceValues[mv.Promote]
		default:
			score = e.history[mv.IsTurn][mv.From][mv.To]
			if int(ply) >= len(e.killers) {
				break
			}
			for k, killer := range e.killers[ply] {
				if mv.Equals(killer) {
					score = offsetKiller - int32(k)
					break
				}
			}
		}
		smvs[i] = scoredMove{mv: mv, score: score}
	}
	return smvs
}

// sortMoves brings the best remaining move to index, so ordering work stops at a cutoff.
func sortMoves(smvs []scoredMove, index int) {
	bestIndex, bestScore := index, smvs[index].score
	for i := index + 1; i < len(smvs); i++ {
		if smvs[i].score > bestScore {
			bestIndex = i
			bestScore = smvs[i].score
		}
	}
	smvs[index], smvs[bestIndex] = smvs[bestIndex], smvs[index]
}

func (e *Engine) storeKiller(mv board.Move, ply uint8) {
	if mv.Equals(e.killers[ply][0]) {
		return
	}
	e.killers[ply][1] = e.killers[ply][0]
	e.killers[ply][0] = mv
}

func (e *Engine) storeHistory(mv board.Move, depth uint8) {
	h := &e.history[mv.IsTurn][mv.From][mv.To]
	*h = min(*h+int32(depth)*int32(depth), historyMax)
}

// ageHistory halves every entry so older searches weigh less.
func (e *Engine) ageHistory() {
	for s := range e.history {
		for from := range e.history[s] {
			for to := range e.history[s][from] {
				e.history[s][from][to] /= 2
			}
		}
	}
}

func (e *Engine) clearKillers() {
	for i := range e.killers {
		e.killers[i] = [2]board.Move{}
	}
}
