package board

import "github.com/daystram/caissa/position"

type MoveFlag uint8

const (
	MoveFlagQuiet MoveFlag = iota
	MoveFlagCapture
	MoveFlagDoublePush
	MoveFlagEnPassant
	MoveFlagCastleKing
	MoveFlagCastleQueen
)

func (f MoveFlag) String() string {
	switch f {
	case MoveFlagQuiet:
		return "quiet"
	case MoveFlagCapture:
		return "capture"
	case MoveFlagDoublePush:
		return "double-push"
	case MoveFlagEnPassant:
		return "en-passant"
	case MoveFlagCastleKing:
		return "castle-king"
	case MoveFlagCastleQueen:
		return "castle-queen"
	default:
		return ""
	}
}

// Move describes a single ply. Castling is encoded as the king's move.
type Move struct {
	From, To position.Pos
	Piece    Piece
	Captured Piece
	Promote  Piece
	Flag     MoveFlag
	IsTurn   Side
}

// NullMove is the zero-value sentinel for "no move".
var NullMove = Move{}

func (m Move) IsNull() bool {
	return m.Piece == PieceUnknown
}

// IsCapture reports whether the move removes an enemy piece, en passant included.
func (m Move) IsCapture() bool {
	return m.Flag == MoveFlagCapture || m.Flag == MoveFlagEnPassant
}

func (m Move) IsPromote() bool {
	return m.Promote != PieceUnknown
}

func (m Move) IsCastle() CastleDirection {
	switch {
	case m.Flag == MoveFlagCastleKing && m.IsTurn == SideWhite:
		return CastleDirectionWhiteRight
	case m.Flag == MoveFlagCastleQueen && m.IsTurn == SideWhite:
		return CastleDirectionWhiteLeft
	case m.Flag == MoveFlagCastleKing && m.IsTurn == SideBlack:
		return CastleDirectionBlackRight
	case m.Flag == MoveFlagCastleQueen && m.IsTurn == SideBlack:
		return CastleDirectionBlackLeft
	default:
		return CastleDirectionUnknown
	}
}

// Equals compares source, destination and promotion only.
func (m Move) Equals(o Move) bool {
	return m.From == o.From && m.To == o.To && m.Promote == o.Promote
}

func (m Move) String() string {
	return m.Algebra()
}

func (m Move) Algebra() string {
	if m.IsNull() {
		return "-"
	}
	if d := m.IsCastle(); d != CastleDirectionUnknown {
		if d.IsRight() {
			return "0-0"
		}
		return "0-0-0"
	}
	nt := m.Piece.SymbolAlgebra(SideWhite) // SideWhite because it returns capital symbols
	if m.IsCapture() {
		if m.Piece == PiecePawn {
			nt += m.From.X().NotationComponentX()
		} else {
			nt += m.From.Notation()
		}
		nt += "x"
	}
	nt += m.To.Notation()
	if m.IsPromote() {
		nt += m.Promote.SymbolAlgebra(SideWhite)
	}
	if m.Flag == MoveFlagEnPassant {
		nt += " e.p."
	}
	return nt
}

func (m Move) UCI() string {
	if m.IsNull() {
		return "0000"
	}
	return m.From.Notation() + m.To.Notation() + m.Promote.SymbolAlgebra(SideBlack)
}

// Undo carries what Unapply needs to restore the position before a move.
type Undo struct {
	move          Move
	captured      Piece
	castleRights  CastleRights
	enPassant     position.Pos
	halfMoveClock uint16
	fullMoveClock uint16
	hash          uint64
}

func (u Undo) Move() Move {
	return u.move
}
