package board

import "github.com/daystram/caissa/position"

type CastleDirection uint8

const (
	CastleDirectionUnknown CastleDirection = iota
	CastleDirectionWhiteRight
	CastleDirectionWhiteLeft
	CastleDirectionBlackRight
	CastleDirectionBlackLeft
)

var castleDirections = [2 + 1][2]CastleDirection{
	SideWhite: {CastleDirectionWhiteRight, CastleDirectionWhiteLeft},
	SideBlack: {CastleDirectionBlackRight, CastleDirectionBlackLeft},
}

func (d CastleDirection) String() string {
	switch d {
	case CastleDirectionWhiteRight:
		return "White 0-0"
	case CastleDirectionWhiteLeft:
		return "White 0-0-0"
	case CastleDirectionBlackRight:
		return "Black 0-0"
	case CastleDirectionBlackLeft:
		return "Black 0-0-0"
	default:
		return ""
	}
}

func (d CastleDirection) IsWhite() bool {
	return d == CastleDirectionWhiteRight || d == CastleDirectionWhiteLeft
}

func (d CastleDirection) IsRight() bool {
	return d == CastleDirectionWhiteRight || d == CastleDirectionBlackRight
}

// Mirror returns the same wing for the other side.
func (d CastleDirection) Mirror() CastleDirection {
	switch d {
	case CastleDirectionWhiteRight:
		return CastleDirectionBlackRight
	case CastleDirectionWhiteLeft:
		return CastleDirectionBlackLeft
	case CastleDirectionBlackRight:
		return CastleDirectionWhiteRight
	case CastleDirectionBlackLeft:
		return CastleDirectionWhiteLeft
	default:
		return CastleDirectionUnknown
	}
}

// KingHops returns the king's origin and destination squares.
func (d CastleDirection) KingHops() (position.Pos, position.Pos) {
	hops := posCastling[d][PieceKing]
	return hops[0], hops[1]
}

// RookHops returns the rook's origin and destination squares.
func (d CastleDirection) RookHops() (position.Pos, position.Pos) {
	hops := posCastling[d][PieceRook]
	return hops[0], hops[1]
}

// CastleRights packs the four castling flags; values range over [0, 16).
type CastleRights uint8

func (c *CastleRights) Set(d CastleDirection, allow bool) {
	if allow {
		*c |= maskCastleRights[d]
	} else {
		*c &^= maskCastleRights[d]
	}
}

func (c CastleRights) IsAllowed(d CastleDirection) bool {
	return c&maskCastleRights[d] != 0
}

func (c CastleRights) IsSideAllowed(s Side) bool {
	if s == SideWhite {
		return c&(maskCastleRights[CastleDirectionWhiteLeft]|maskCastleRights[CastleDirectionWhiteRight]) != 0
	}
	return c&(maskCastleRights[CastleDirectionBlackLeft]|maskCastleRights[CastleDirectionBlackRight]) != 0
}

// Mirror swaps the White and Black flags.
func (c CastleRights) Mirror() CastleRights {
	var m CastleRights
	for _, d := range []CastleDirection{
		CastleDirectionWhiteRight,
		CastleDirectionWhiteLeft,
		CastleDirectionBlackRight,
		CastleDirectionBlackLeft,
	} {
		if c.IsAllowed(d) {
			m.Set(d.Mirror(), true)
		}
	}
	return m
}

func (c CastleRights) String() string {
	if c == 0 {
		return "-"
	}
	var s string
	if c.IsAllowed(CastleDirectionWhiteRight) {
		s += "K"
	}
	if c.IsAllowed(CastleDirectionWhiteLeft) {
		s += "Q"
	}
	if c.IsAllowed(CastleDirectionBlackRight) {
		s += "k"
	}
	if c.IsAllowed(CastleDirectionBlackLeft) {
		s += "q"
	}
	return s
}
