package board

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/fatih/color"

	"github.com/daystram/caissa/position"
)

var (
	ErrInvalidFEN         = errors.New("invalid fen")
	ErrIllegalMove        = errors.New("illegal move")
	ErrInvariantViolation = errors.New("invariant violation")
	ErrNilBoard           = errors.New("nil board")
)

var (
	colorCellLight = color.New(color.FgBlack, color.BgHiWhite)
	colorCellDark  = color.New(color.FgBlack, color.BgGreen)
	colorLegend    = color.New(color.Bold)
)

// cell packs the side in the high nibble and the piece in the low nibble.
type cell uint8

func newCell(s Side, p Piece) cell {
	return cell(uint8(s)<<4 + uint8(p))
}

func (c cell) side() Side {
	return Side(c >> 4)
}

func (c cell) piece() Piece {
	return Piece(c & 0x0F)
}

// Board is the mutable game position in little-endian rank-file (LERF) mapping.
type Board struct {
	// grid data
	bitboards [2 + 1][6 + 1]Bitmap
	sides     [2 + 1]Bitmap
	occupied  Bitmap
	cells     [TotalCells]cell

	// meta
	turn          Side
	castleRights  CastleRights
	enPassant     position.Pos
	halfMoveClock uint16
	fullMoveClock uint16
	ply           uint16
	hash          uint64

	tables          *AttackTables
	invariantChecks bool
}

type boardConfig struct {
	fen             string
	tables          *AttackTables
	invariantChecks bool
}

type BoardOption func(*boardConfig)

func WithFEN(fen string) BoardOption {
	return func(cfg *boardConfig) {
		cfg.fen = fen
	}
}

// WithAttackTables shares pre-built tables instead of the process-wide default.
func WithAttackTables(t *AttackTables) BoardOption {
	return func(cfg *boardConfig) {
		cfg.tables = t
	}
}

// WithInvariantChecks validates the board after every Apply and Unapply, panicking on violation.
func WithInvariantChecks(enabled bool) BoardOption {
	return func(cfg *boardConfig) {
		cfg.invariantChecks = enabled
	}
}

func NewBoard(opts ...BoardOption) (*Board, error) {
	cfg := &boardConfig{
		fen: DefaultStartingPositionFEN,
	}
	for _, f := range opts {
		f(cfg)
	}
	if cfg.tables == nil {
		cfg.tables = DefaultAttackTables()
	}

	b := &Board{
		tables:          cfg.tables,
		invariantChecks: cfg.invariantChecks,
	}
	if err := UnmarshalFEN(cfg.fen, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Board) reset() {
	tables, invariantChecks := b.tables, b.invariantChecks
	*b = Board{
		enPassant:       position.Null,
		tables:          tables,
		invariantChecks: invariantChecks,
	}
}

func (b *Board) setPiece(pos position.Pos, s Side, p Piece) {
	bm := maskCell[pos]
	b.bitboards[s][p] |= bm
	b.sides[s] |= bm
	b.occupied |= bm
	b.cells[pos] = newCell(s, p)
	b.hash ^= zobristConstantPiece[s][p][pos]
}

func (b *Board) unsetPiece(pos position.Pos, s Side, p Piece) {
	bm := maskCell[pos]
	b.bitboards[s][p] &^= bm
	b.sides[s] &^= bm
	b.occupied &^= bm
	b.cells[pos] = 0
	b.hash ^= zobristConstantPiece[s][p][pos]
}

// Apply plays mv, which must be pseudo-legal for the side to move, and returns the
// information needed by Unapply. Apply and Unapply calls must be strictly nested.
func (b *Board) Apply(mv Move) Undo {
	u := Undo{
		move:          mv,
		castleRights:  b.castleRights,
		enPassant:     b.enPassant,
		halfMoveClock: b.halfMoveClock,
		fullMoveClock: b.fullMoveClock,
		hash:          b.hash,
	}
	s := b.turn

	// xor-out features that may change
	if b.enPassant != position.Null {
		b.hash ^= zobristConstantEnPassant[b.enPassant.X()]
	}
	b.hash ^= zobristConstantCastleRights[b.castleRights]

	switch mv.Flag {
	case MoveFlagEnPassant:
		u.captured = PiecePawn
		b.unsetPiece(position.NewPos(mv.To.X(), mv.From.Y()), s.Opposite(), PiecePawn)
	case MoveFlagCapture:
		u.captured = b.cells[mv.To].piece()
		b.unsetPiece(mv.To, s.Opposite(), u.captured)
	case MoveFlagCastleKing, MoveFlagCastleQueen:
		rFrom, rTo := mv.IsCastle().RookHops()
		b.unsetPiece(rFrom, s, PieceRook)
		b.setPiece(rTo, s, PieceRook)
	}

	b.unsetPiece(mv.From, s, mv.Piece)
	if mv.IsPromote() {
		b.setPiece(mv.To, s, mv.Promote)
	} else {
		b.setPiece(mv.To, s, mv.Piece)
	}

	b.enPassant = position.Null
	if mv.Flag == MoveFlagDoublePush {
		b.enPassant = (mv.From + mv.To) / 2
		b.hash ^= zobristConstantEnPassant[b.enPassant.X()]
	}

	b.castleRights &= maskCastleRightsKeep[mv.From] & maskCastleRightsKeep[mv.To]
	b.hash ^= zobristConstantCastleRights[b.castleRights]

	// counters saturate, Unapply restores them from u
	if mv.Piece == PiecePawn || u.captured != PieceUnknown {
		b.halfMoveClock = 0
	} else if b.halfMoveClock < math.MaxUint16 {
		b.halfMoveClock++
	}
	if s == SideBlack && b.fullMoveClock < math.MaxUint16 {
		b.fullMoveClock++
	}
	b.ply++

	b.turn = s.Opposite()
	b.hash ^= zobristConstantSideWhite

	b.checkInvariants()
	return u
}

// Unapply reverts the move recorded in u. u must come from the latest Apply not yet undone.
func (b *Board) Unapply(u Undo) {
	mv := u.move
	s := b.turn.Opposite()

	if mv.IsPromote() {
		b.unsetPiece(mv.To, s, mv.Promote)
	} else {
		b.unsetPiece(mv.To, s, mv.Piece)
	}
	b.setPiece(mv.From, s, mv.Piece)

	switch mv.Flag {
	case MoveFlagEnPassant:
		b.setPiece(position.NewPos(mv.To.X(), mv.From.Y()), s.Opposite(), PiecePawn)
	case MoveFlagCapture:
		b.setPiece(mv.To, s.Opposite(), u.captured)
	case MoveFlagCastleKing, MoveFlagCastleQueen:
		rFrom, rTo := mv.IsCastle().RookHops()
		b.unsetPiece(rTo, s, PieceRook)
		b.setPiece(rFrom, s, PieceRook)
	}

	b.castleRights = u.castleRights
	b.enPassant = u.enPassant
	b.halfMoveClock = u.halfMoveClock
	b.fullMoveClock = u.fullMoveClock
	b.ply--
	b.turn = s
	b.hash = u.hash

	b.checkInvariants()
}

func (b *Board) checkInvariants() {
	if !b.invariantChecks {
		return
	}
	if err := b.Validate(); err != nil {
		panic(err)
	}
}

// ApplyMove applies mv only if it matches a legal move, leaving the board untouched otherwise.
func (b *Board) ApplyMove(mv Move) (Undo, error) {
	for _, legal := range b.GenerateMoves() {
		if legal.Equals(mv) {
			return b.Apply(legal), nil
		}
	}
	return Undo{}, fmt.Errorf("%w: %s", ErrIllegalMove, mv.UCI())
}

// ParseMoveUCI resolves a coordinate move such as "e2e4" or "e7e8q" to a legal move.
func (b *Board) ParseMoveUCI(s string) (Move, error) {
	if len(s) != 4 && len(s) != 5 {
		return Move{}, fmt.Errorf("%w: %q", position.ErrInvalidNotation, s)
	}
	from, err := position.NewPosFromNotation(s[0:2])
	if err != nil {
		return Move{}, fmt.Errorf("%w: %q", err, s)
	}
	to, err := position.NewPosFromNotation(s[2:4])
	if err != nil {
		return Move{}, fmt.Errorf("%w: %q", err, s)
	}
	mv := Move{From: from, To: to}
	if len(s) == 5 {
		_, mv.Promote = NewPieceFromSymbol(rune(s[4]))
		if mv.Promote == PieceUnknown || mv.Promote == PiecePawn || mv.Promote == PieceKing {
			return Move{}, fmt.Errorf("%w: %q", position.ErrInvalidNotation, s)
		}
	}
	for _, legal := range b.GenerateMoves() {
		if legal.Equals(mv) {
			return legal, nil
		}
	}
	return Move{}, fmt.Errorf("%w: %s", ErrIllegalMove, s)
}

// IsSquareAttacked reports whether any piece of side by attacks pos.
func (b *Board) IsSquareAttacked(pos position.Pos, by Side) bool {
	t := b.tables
	if t.PawnAttacks(by.Opposite(), pos)&b.bitboards[by][PiecePawn] != 0 {
		return true
	}
	if t.KnightAttacks(pos)&b.bitboards[by][PieceKnight] != 0 {
		return true
	}
	if t.KingAttacks(pos)&b.bitboards[by][PieceKing] != 0 {
		return true
	}
	queens := b.bitboards[by][PieceQueen]
	if bq := b.bitboards[by][PieceBishop] | queens; bq != 0 && t.BishopAttacks(pos, b.occupied)&bq != 0 {
		return true
	}
	if rq := b.bitboards[by][PieceRook] | queens; rq != 0 && t.RookAttacks(pos, b.occupied)&rq != 0 {
		return true
	}
	return false
}

func (b *Board) IsKingChecked(s Side) bool {
	king := b.bitboards[s][PieceKing]
	if king == 0 {
		return false
	}
	return b.IsSquareAttacked(king.LS1B(), s.Opposite())
}

func (b *Board) State() State {
	checked := b.IsKingChecked(b.turn)
	// checkmate and stalemate take precedence over the draw rules
	if len(b.GenerateMoves()) == 0 {
		if !checked {
			return StateStalemate
		}
		if b.turn == SideWhite {
			return StateCheckmateWhite
		}
		return StateCheckmateBlack
	}
	if b.IsInsufficientMaterial() {
		return StateInsufficientMaterial
	}
	if b.halfMoveClock >= 100 {
		return StateFiftyMoveViolated
	}
	if checked {
		if b.turn == SideWhite {
			return StateCheckWhite
		}
		return StateCheckBlack
	}
	return StateRunning
}

// IsInsufficientMaterial reports bare kings, or bare kings plus a single minor piece.
func (b *Board) IsInsufficientMaterial() bool {
	for _, s := range SideList {
		if b.bitboards[s][PiecePawn]|b.bitboards[s][PieceRook]|b.bitboards[s][PieceQueen] != 0 {
			return false
		}
	}
	var minors uint8
	for _, s := range SideList {
		minors += (b.bitboards[s][PieceKnight] | b.bitboards[s][PieceBishop]).BitCount()
	}
	return minors <= 1
}

// Validate checks the structural invariants of the board and the incremental hash.
func (b *Board) Validate() error {
	for _, s := range SideList {
		union := Bitmap(0)
		for _, p := range PieceList {
			bm := b.bitboards[s][p]
			if union&bm != 0 {
				return fmt.Errorf("%w: %s %s overlaps another set", ErrInvariantViolation, s, p)
			}
			union |= bm
		}
		if union != b.sides[s] {
			return fmt.Errorf("%w: %s pieces do not match side occupancy", ErrInvariantViolation, s)
		}
		if n := b.bitboards[s][PieceKing].BitCount(); n != 1 {
			return fmt.Errorf("%w: %s has %d kings", ErrInvariantViolation, s, n)
		}
	}
	if b.sides[SideWhite]&b.sides[SideBlack] != 0 {
		return fmt.Errorf("%w: side occupancies overlap", ErrInvariantViolation)
	}
	if b.occupied != b.sides[SideWhite]|b.sides[SideBlack] {
		return fmt.Errorf("%w: occupancy does not match sides", ErrInvariantViolation)
	}
	for pos := position.Pos(0); pos < TotalCells; pos++ {
		c := b.cells[pos]
		if c == 0 {
			if b.occupied.IsSet(pos) {
				return fmt.Errorf("%w: empty mailbox on occupied %s", ErrInvariantViolation, pos)
			}
			continue
		}
		if !b.bitboards[c.side()][c.piece()].IsSet(pos) {
			return fmt.Errorf("%w: mailbox mismatch on %s", ErrInvariantViolation, pos)
		}
	}
	if h := b.ComputeHash(); h != b.hash {
		return fmt.Errorf("%w: hash %016x want %016x", ErrInvariantViolation, b.hash, h)
	}
	return nil
}

// Hash returns the incrementally maintained zobrist hash.
func (b *Board) Hash() uint64 {
	return b.hash
}

// ComputeHash derives the zobrist hash from scratch.
func (b *Board) ComputeHash() uint64 {
	var hash uint64
	for _, s := range SideList {
		for _, p := range PieceList {
			bm := b.bitboards[s][p]
			for bm != 0 {
				hash ^= zobristConstantPiece[s][p][bm.PopLS1B()]
			}
		}
	}
	if b.turn == SideWhite {
		hash ^= zobristConstantSideWhite
	}
	hash ^= zobristConstantCastleRights[b.castleRights]
	if b.enPassant != position.Null {
		hash ^= zobristConstantEnPassant[b.enPassant.X()]
	}
	return hash
}

func (b *Board) Clone() *Board {
	c := *b
	return &c
}

// Mirror returns the colour-flipped position: ranks reversed, sides swapped.
func (b *Board) Mirror() *Board {
	m := &Board{
		turn:            b.turn.Opposite(),
		castleRights:    b.castleRights.Mirror(),
		enPassant:       position.Null,
		halfMoveClock:   b.halfMoveClock,
		fullMoveClock:   b.fullMoveClock,
		ply:             b.ply,
		tables:          b.tables,
		invariantChecks: b.invariantChecks,
	}
	for pos := position.Pos(0); pos < TotalCells; pos++ {
		if c := b.cells[pos]; c != 0 {
			m.setPiece(pos.Mirror(), c.side().Opposite(), c.piece())
		}
	}
	if b.enPassant != position.Null {
		m.enPassant = b.enPassant.Mirror()
	}
	m.hash = m.ComputeHash()
	return m
}

func (b *Board) Turn() Side {
	return b.turn
}

func (b *Board) CastleRights() CastleRights {
	return b.castleRights
}

// EnPassant returns the en passant target square, or position.Null.
func (b *Board) EnPassant() position.Pos {
	return b.enPassant
}

func (b *Board) HalfMoveClock() uint16 {
	return b.halfMoveClock
}

func (b *Board) FullMoveClock() uint16 {
	return b.fullMoveClock
}

// Ply counts moves applied since the board was loaded.
func (b *Board) Ply() uint16 {
	return b.ply
}

func (b *Board) Tables() *AttackTables {
	return b.tables
}

func (b *Board) GetBitmap(s Side, p Piece) Bitmap {
	return b.bitboards[s][p]
}

func (b *Board) GetSideBitmap(s Side) Bitmap {
	return b.sides[s]
}

func (b *Board) Occupied() Bitmap {
	return b.occupied
}

func (b *Board) GetSideAndPiece(pos position.Pos) (Side, Piece) {
	c := b.cells[pos]
	return c.side(), c.piece()
}

func (b *Board) Dump() string {
	builder := strings.Builder{}
	for y := position.Pos(Height) - 1; y >= 0; y-- {
		_, _ = builder.WriteString("   +---+---+---+---+---+---+---+---+\n")
		_, _ = builder.WriteString(fmt.Sprintf(" %d |", y+1))
		for x := position.Pos(0); x < Width; x++ {
			s, p := b.GetSideAndPiece(y*Width + x)
			sym := p.SymbolFEN(s)
			if s == SideUnknown {
				sym = " "
			}
			_, _ = builder.WriteString(fmt.Sprintf(" %s |", sym))
		}
		_, _ = builder.WriteString("\n")
	}
	_, _ = builder.WriteString("   +---+---+---+---+---+---+---+---+\n   ")
	for x := position.Pos(0); x < Width; x++ {
		_, _ = builder.WriteString(fmt.Sprintf("  %s ", x.NotationComponentX()))
	}
	return builder.String()
}

func (b *Board) Draw() string {
	builder := strings.Builder{}
	for y := position.Pos(Height) - 1; y >= 0; y-- {
		_, _ = builder.WriteString(colorLegend.Sprintf(" %d ", y+1))
		for x := position.Pos(0); x < Width; x++ {
			s, p := b.GetSideAndPiece(y*Width + x)
			sym := p.SymbolUnicode(s, false)
			if p == PieceUnknown {
				sym = " "
			}
			c := colorCellLight
			if x%2^y%2 == 0 {
				c = colorCellDark
			}
			_, _ = builder.WriteString(c.Sprintf(" %s ", sym))
		}
		_, _ = builder.WriteString("\n")
	}
	_, _ = builder.WriteString("   ")
	for x := position.Pos(0); x < Width; x++ {
		_, _ = builder.WriteString(colorLegend.Sprintf(" %s ", x.NotationComponentX()))
	}
	return builder.String()
}

func (b *Board) DebugString() string {
	return fmt.Sprintf("cast: %s\nenps: %s\nhalf: %4d\nfull: %4d\nhash: %016x\nstat: %s",
		b.castleRights, b.enPassant.Notation(), b.halfMoveClock, b.fullMoveClock, b.hash, b.State())
}
