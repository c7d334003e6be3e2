package board

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/daystram/caissa/position"
)

// UnmarshalFEN loads fen into b, replacing its position. The counters may be omitted,
// in which case they default to "0 1". b is left untouched when fen is rejected.
func UnmarshalFEN(fen string, b *Board) error {
	if b == nil {
		return fmt.Errorf("%w: unmarshal fen", ErrNilBoard)
	}
	tables := b.tables
	if tables == nil {
		tables = DefaultAttackTables()
	}
	parsed := Board{tables: tables, invariantChecks: b.invariantChecks}
	if err := unmarshalFEN(fen, &parsed); err != nil {
		return err
	}
	*b = parsed
	return nil
}

func unmarshalFEN(fen string, b *Board) error {
	segments := strings.Fields(fen)
	if len(segments) == 4 {
		segments = append(segments, "0", "1")
	}
	if len(segments) != 6 {
		return fmt.Errorf("%w: incorrect number of segments", ErrInvalidFEN)
	}
	b.reset()

	rows := strings.Split(segments[0], "/")
	if len(rows) != int(Height) {
		return fmt.Errorf("%w: invalid board configuration", ErrInvalidFEN)
	}
	for y := position.Pos(0); y < Height; y++ {
		row := rows[Height-y-1]
		x := position.Pos(0)
		for _, sym := range row {
			if sym >= '1' && sym <= '8' {
				x += position.Pos(sym - '0')
				if x > Width {
					return fmt.Errorf("%w: skip out of bounds", ErrInvalidFEN)
				}
				continue
			}
			s, p := NewPieceFromSymbol(sym)
			if p == PieceUnknown {
				return fmt.Errorf("%w: unknown symbol '%s'", ErrInvalidFEN, string(sym))
			}
			if x >= Width {
				return fmt.Errorf("%w: too many cells in rank %d", ErrInvalidFEN, y+1)
			}
			b.setPiece(y*Width+x, s, p)
			x++
		}
		if x != Width {
			return fmt.Errorf("%w: missing cells in rank %d", ErrInvalidFEN, y+1)
		}
	}
	for _, s := range SideList {
		if n := b.bitboards[s][PieceKing].BitCount(); n != 1 {
			return fmt.Errorf("%w: %s has %d kings", ErrInvalidFEN, s, n)
		}
	}
	if (b.bitboards[SideWhite][PiecePawn]|b.bitboards[SideBlack][PiecePawn])&(maskRow[0]|maskRow[7]) != 0 {
		return fmt.Errorf("%w: pawn on first or last rank", ErrInvalidFEN)
	}

	switch segments[1] {
	case "w":
		b.turn = SideWhite
		b.hash ^= zobristConstantSideWhite
	case "b":
		b.turn = SideBlack
	default:
		return fmt.Errorf("%w: invalid turn", ErrInvalidFEN)
	}
	if b.IsKingChecked(b.turn.Opposite()) {
		return fmt.Errorf("%w: %s king in check while not to move", ErrInvalidFEN, b.turn.Opposite())
	}

	if len(segments[2]) > 4 {
		return fmt.Errorf("%w: invalid castling rights", ErrInvalidFEN)
	}
crLoop:
	for i, e := range segments[2] {
		var d CastleDirection
		switch e {
		case 'K':
			d = CastleDirectionWhiteRight
		case 'Q':
			d = CastleDirectionWhiteLeft
		case 'k':
			d = CastleDirectionBlackRight
		case 'q':
			d = CastleDirectionBlackLeft
		default:
			if i == 0 && e == '-' && len(segments[2]) == 1 {
				break crLoop
			}
			return fmt.Errorf("%w: invalid castling rights", ErrInvalidFEN)
		}
		if b.castleRights.IsAllowed(d) {
			return fmt.Errorf("%w: duplicate castling right '%s'", ErrInvalidFEN, string(e))
		}
		s := SideWhite
		if !d.IsWhite() {
			s = SideBlack
		}
		kFrom, _ := d.KingHops()
		rFrom, _ := d.RookHops()
		if !b.bitboards[s][PieceKing].IsSet(kFrom) || !b.bitboards[s][PieceRook].IsSet(rFrom) {
			return fmt.Errorf("%w: %s without king and rook at home", ErrInvalidFEN, d)
		}
		b.castleRights.Set(d, true)
	}
	b.hash ^= zobristConstantCastleRights[b.castleRights]

	if segments[3] != "-" {
		pos, err := position.NewPosFromNotation(segments[3])
		if err != nil {
			return fmt.Errorf("%w: invalid enpassant position: %v", ErrInvalidFEN, err)
		}
		// the target lies behind a pawn of the side that just moved
		rank, pawn := position.Rank6, position.NewPos(pos.X(), position.Rank5)
		if b.turn == SideBlack {
			rank, pawn = position.Rank3, position.NewPos(pos.X(), position.Rank4)
		}
		if pos.Y() != rank || !b.bitboards[b.turn.Opposite()][PiecePawn].IsSet(pawn) || b.occupied.IsSet(pos) {
			return fmt.Errorf("%w: invalid enpassant position", ErrInvalidFEN)
		}
		b.enPassant = pos
		b.hash ^= zobristConstantEnPassant[pos.X()]
	}

	halfMoveClock, err := strconv.ParseUint(segments[4], 10, 16)
	if err != nil {
		return fmt.Errorf("%w: invalid half move clock", ErrInvalidFEN)
	}
	b.halfMoveClock = uint16(halfMoveClock)

	fullMoveClock, err := strconv.ParseUint(segments[5], 10, 16)
	if err != nil {
		return fmt.Errorf("%w: invalid full move clock", ErrInvalidFEN)
	}
	b.fullMoveClock = uint16(fullMoveClock)

	return nil
}

func MarshalFEN(b *Board) (string, error) {
	if b == nil {
		return "", fmt.Errorf("%w: marshal fen", ErrNilBoard)
	}
	builder := strings.Builder{}
	var skip uint8
	for y := position.Pos(Height) - 1; y >= 0; y-- {
		for x := position.Pos(0); x < Width; x++ {
			for skip = 0; x < Width && b.cells[y*Width+x] == 0; x++ {
				skip++
			}
			if skip != 0 {
				_, _ = builder.WriteRune(rune(skip + '0'))
			}
			if x < Width {
				s, p := b.GetSideAndPiece(y*Width + x)
				_, _ = builder.WriteString(p.SymbolFEN(s))
			}
		}
		if y > 0 {
			_, _ = builder.WriteRune('/')
		}
	}

	if b.turn == SideWhite {
		_, _ = builder.WriteString(" w ")
	} else {
		_, _ = builder.WriteString(" b ")
	}

	_, _ = builder.WriteString(b.castleRights.String())
	_, _ = builder.WriteRune(' ')

	if b.enPassant == position.Null {
		_, _ = builder.WriteRune('-')
	} else {
		_, _ = builder.WriteString(b.enPassant.Notation())
	}

	_, _ = builder.WriteString(fmt.Sprintf(" %d %d", b.halfMoveClock, b.fullMoveClock))

	return builder.String(), nil
}

func (b *Board) FEN() string {
	fen, _ := MarshalFEN(b)
	return fen
}
