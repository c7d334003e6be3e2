package board

import "github.com/daystram/caissa/position"

// GeneratePseudoLegalMoves returns every move of the side to move that obeys piece
// movement rules, including those leaving the own king in check.
func (b *Board) GeneratePseudoLegalMoves() []Move {
	return b.generate(make([]Move, 0, 64), false)
}

// GenerateMoves returns the legal moves of the side to move. An empty result means
// checkmate or stalemate, see State.
func (b *Board) GenerateMoves() []Move {
	return b.filterLegal(b.generate(make([]Move, 0, 64), false))
}

// GenerateCaptures returns the legal captures and promotions of the side to move.
func (b *Board) GenerateCaptures() []Move {
	return b.filterLegal(b.generate(make([]Move, 0, 16), true))
}

// filterLegal keeps the moves that do not leave the mover's king attacked. mvs is reused.
func (b *Board) filterLegal(mvs []Move) []Move {
	s := b.turn
	legal := mvs[:0]
	for _, mv := range mvs {
		u := b.Apply(mv)
		if !b.IsKingChecked(s) {
			legal = append(legal, mv)
		}
		b.Unapply(u)
	}
	return legal
}

func (b *Board) generate(mvs []Move, tactical bool) []Move {
	t := b.tables
	s := b.turn
	for _, p := range PieceList {
		bm := b.bitboards[s][p]
		for bm != 0 {
			from := bm.PopLS1B()
			switch p {
			case PiecePawn:
				mvs = b.genPawnMoves(mvs, s, from, tactical)
			case PieceKnight:
				mvs = b.genTargetMoves(mvs, s, p, from, t.KnightAttacks(from), tactical)
			case PieceBishop:
				mvs = b.genTargetMoves(mvs, s, p, from, t.BishopAttacks(from, b.occupied), tactical)
			case PieceRook:
				mvs = b.genTargetMoves(mvs, s, p, from, t.RookAttacks(from, b.occupied), tactical)
			case PieceQueen:
				mvs = b.genTargetMoves(mvs, s, p, from, t.QueenAttacks(from, b.occupied), tactical)
			case PieceKing:
				mvs = b.genTargetMoves(mvs, s, p, from, t.KingAttacks(from), tactical)
				if !tactical {
					mvs = b.genCastleMoves(mvs, s)
				}
			}
		}
	}
	return mvs
}

func (b *Board) genTargetMoves(mvs []Move, s Side, p Piece, from position.Pos, targets Bitmap, tactical bool) []Move {
	targets &^= b.sides[s]
	if tactical {
		targets &= b.sides[s.Opposite()]
	}
	for targets != 0 {
		to := targets.PopLS1B()
		mv := Move{From: from, To: to, Piece: p, IsTurn: s}
		if c := b.cells[to]; c != 0 {
			mv.Flag = MoveFlagCapture
			mv.Captured = c.piece()
		}
		mvs = append(mvs, mv)
	}
	return mvs
}

func (b *Board) genPawnMoves(mvs []Move, s Side, from position.Pos, tactical bool) []Move {
	t := b.tables
	startRank, promoteRank := maskRow[position.Rank2], maskRow[position.Rank8]
	if s == SideBlack {
		startRank, promoteRank = maskRow[position.Rank7], maskRow[position.Rank1]
	}

	if push := t.PawnPush(s, from) &^ b.occupied; push != 0 {
		to := push.LS1B()
		mv := Move{From: from, To: to, Piece: PiecePawn, IsTurn: s}
		if push&promoteRank != 0 {
			mvs = appendPromotions(mvs, mv)
		} else if !tactical {
			mvs = append(mvs, mv)
			if startRank.IsSet(from) {
				if double := t.PawnPush(s, to) &^ b.occupied; double != 0 {
					mvs = append(mvs, Move{From: from, To: double.LS1B(), Piece: PiecePawn, Flag: MoveFlagDoublePush, IsTurn: s})
				}
			}
		}
	}

	attacks := t.PawnAttacks(s, from)
	captures := attacks & b.sides[s.Opposite()]
	for captures != 0 {
		to := captures.PopLS1B()
		mv := Move{From: from, To: to, Piece: PiecePawn, Captured: b.cells[to].piece(), Flag: MoveFlagCapture, IsTurn: s}
		if promoteRank.IsSet(to) {
			mvs = appendPromotions(mvs, mv)
		} else {
			mvs = append(mvs, mv)
		}
	}

	if b.enPassant != position.Null && attacks.IsSet(b.enPassant) {
		mvs = append(mvs, Move{From: from, To: b.enPassant, Piece: PiecePawn, Captured: PiecePawn, Flag: MoveFlagEnPassant, IsTurn: s})
	}
	return mvs
}

func appendPromotions(mvs []Move, mv Move) []Move {
	for _, prom := range PawnPromoteCandidates {
		mv.Promote = prom
		mvs = append(mvs, mv)
	}
	return mvs
}

func (b *Board) genCastleMoves(mvs []Move, s Side) []Move {
	for _, d := range castleDirections[s] {
		if !b.castleRights.IsAllowed(d) || b.occupied&maskCastling[d] != 0 {
			continue
		}
		safe := true
		for _, pos := range posCastlingTransit[d] {
			if b.IsSquareAttacked(pos, s.Opposite()) {
				safe = false
				break
			}
		}
		if !safe {
			continue
		}
		flag := MoveFlagCastleKing
		if !d.IsRight() {
			flag = MoveFlagCastleQueen
		}
		kFrom, kTo := d.KingHops()
		mvs = append(mvs, Move{From: kFrom, To: kTo, Piece: PieceKing, Flag: flag, IsTurn: s})
	}
	return mvs
}
