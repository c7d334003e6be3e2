package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/daystram/caissa/board"
)

const (
	ScoreInfinite int32 = 1_000_000
	ScoreMate     int32 = 900_000

	// scores beyond the threshold encode a forced mate
	scoreMateThreshold = ScoreMate - 1000

	maxQuiescenceDepth uint8 = 6

	// no new iteration starts past this share of the allocated game-clock movetime
	clockGametimeIterationRatio = 0.5
)

var ErrNilBoard = board.ErrNilBoard

func DefaultLogger(a ...any) {
	fmt.Println(a...)
}

type PVLine struct {
	mvs []board.Move
}

func (pvl *PVLine) GetPV() board.Move {
	if len(pvl.mvs) == 0 {
		return board.NullMove
	}
	return pvl.mvs[0]
}

func (pvl *PVLine) Set(mv board.Move, nextPVL PVLine) {
	if pvl == nil {
		return
	}
	pvl.mvs = append(append(pvl.mvs[:0], mv), nextPVL.mvs...)
}

func (pvl *PVLine) Clear() {
	pvl.mvs = pvl.mvs[:0]
}

func (pvl *PVLine) Len() int {
	return len(pvl.mvs)
}

func (pvl *PVLine) Moves() []board.Move {
	return append([]board.Move(nil), pvl.mvs...)
}

func (pvl *PVLine) StringUCI() string {
	if pvl == nil {
		return ""
	}
	builder := strings.Builder{}
	for i, mv := range pvl.mvs {
		_, _ = builder.WriteString(mv.UCI())
		if i < len(pvl.mvs)-1 {
			_, _ = builder.WriteRune(' ')
		}
	}
	return builder.String()
}

func (pvl *PVLine) String(b *board.Board) string {
	return DumpHistory(b, pvl.mvs)
}

// DumpHistory renders mvs played from b in numbered algebraic form with check, mate
// and draw suffixes. b is not modified.
func DumpHistory(b *board.Board, mvs []board.Move) string {
	if b == nil || len(mvs) < 1 {
		return ""
	}
	builder := strings.Builder{}
	bb := b.Clone()
	fullMoveClock := bb.FullMoveClock()
	if mvs[0].IsTurn == board.SideBlack {
		_, _ = builder.WriteString(fmt.Sprintf("%d... ", fullMoveClock))
	}
	for i, mv := range mvs {
		bb.Apply(mv)
		if mv.IsTurn == board.SideWhite {
			_, _ = builder.WriteString(fmt.Sprintf("%d. %s", fullMoveClock, mv))
		} else {
			_, _ = builder.WriteString(mv.String())
			fullMoveClock++
		}
		switch st := bb.State(); {
		case st.IsCheckmate():
			_, _ = builder.WriteRune('#')
		case st.IsCheck():
			_, _ = builder.WriteRune('+')
		case st.IsDraw():
			_, _ = builder.WriteRune('=')
		}
		if i < len(mvs)-1 {
			_, _ = builder.WriteRune(' ')
		}
	}
	return builder.String()
}

type EngineConfig struct {
	HashTableSize uint64
	Logger        func(...any)
}

type SearchConfig struct {
	MaxDepth    uint8
	ClockConfig ClockConfig
	Debug       bool
}

// Result is the outcome of a search. A null Move with a checkmate or stalemate State
// means the game is already over at the root.
type Result struct {
	Move  board.Move
	Score int32
	Depth uint8
	Nodes uint64
	State board.State
	PV    []board.Move
}

func (r Result) IsGameOver() bool {
	return r.Move.IsNull() && r.State.IsGameOver()
}

type Engine struct {
	tt       *TranspositionTable
	clock    *Clock
	killers  [MaxDepth + 1][2]board.Move
	history  [2 + 1][64][64]int32
	rootMove board.Move

	nodes  uint64
	logger func(...any)
}

func NewEngine(cfg *EngineConfig) *Engine {
	if cfg == nil {
		cfg = &EngineConfig{HashTableSize: DefaultHashTableSize}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = DefaultLogger
	}

	return &Engine{
		tt:     NewTranspositionTable(cfg.HashTableSize),
		clock:  NewClock(),
		logger: logger,
	}
}

// Reset forgets everything learnt from previous searches.
func (e *Engine) Reset() {
	e.tt.Clear()
	e.tt.ResetStats()
	e.history = [2 + 1][64][64]int32{}
	e.clearKillers()
	e.rootMove = board.NullMove
}

func (e *Engine) TranspositionTable() *TranspositionTable {
	return e.tt
}

// Search runs iterative deepening on b until cfg.MaxDepth completes or the clock or ctx
// stops it, and returns the best move of the deepest completed iteration. b is left
// exactly as it was given.
func (e *Engine) Search(ctx context.Context, b *board.Board, cfg *SearchConfig) (Result, error) {
	if b == nil {
		return Result{}, ErrNilBoard
	}
	if cfg == nil {
		cfg = &SearchConfig{}
	}
	maxDepth := cfg.MaxDepth
	if maxDepth == 0 {
		maxDepth = DefaultMaxDepth
	}
	maxDepth = min(maxDepth, MaxDepth)

	res := Result{State: b.State()}
	mvs := b.GenerateMoves()
	if len(mvs) == 0 {
		return res, nil
	}

	e.nodes = 0
	e.tt.ResetStats()
	e.ageHistory()
	e.clearKillers()
	e.rootMove = board.NullMove
	if ttMove, ok := e.tt.Move(b.Hash()); ok {
		e.rootMove = ttMove
	}
	e.clock.Start(ctx, b.Turn(), b.FullMoveClock(), &cfg.ClockConfig)

	// fall back to the best ordered move if not even depth 1 completes
	smvs := e.scoreMoves(mvs, e.rootMove, 0)
	sortMoves(smvs, 0)
	res.Move = smvs[0].mv

	for d := uint8(1); d <= maxDepth; d++ {
		var pvl PVLine
		score, ok := e.searchRoot(b, mvs, d, &pvl)
		if !ok {
			break
		}
		res.Move = pvl.GetPV()
		res.Score = score
		res.Depth = d
		res.PV = pvl.Moves()
		e.logIteration(b, cfg, res, &pvl)

		if abs(score) >= scoreMateThreshold {
			break
		}
		if e.clock.Mode() == ClockModeGametime &&
			e.clock.Elapsed().Seconds() > e.clock.Allocated().Seconds()*clockGametimeIterationRatio {
			break
		}
	}
	res.Nodes = e.nodes

	return res, nil
}

// searchRoot searches every root move with the full window. The previous iteration's
// best move goes first. It reports false when the iteration was aborted.
func (e *Engine) searchRoot(b *board.Board, mvs []board.Move, depth uint8, pvl *PVLine) (int32, bool) {
	alpha, beta := -ScoreInfinite, ScoreInfinite
	smvs := e.scoreMoves(mvs, e.rootMove, 0)

	var childPVL PVLine
	bestMove := board.NullMove
	for i := range smvs {
		sortMoves(smvs, i)
		mv := smvs[i].mv

		u := b.Apply(mv)
		score := -e.negamax(b, &childPVL, depth-1, 1, -beta, -alpha)
		b.Unapply(u)

		if e.clock.Done() {
			return 0, false
		}
		if score > alpha {
			alpha = score
			bestMove = mv
			pvl.Set(mv, childPVL)
		}
		childPVL.Clear()
	}

	e.rootMove = bestMove
	e.tt.Store(b.Hash(), depth, 0, alpha, EntryTypeExact, bestMove)
	return alpha, true
}

// negamax is a fail-hard alpha-beta search: the result is always within [alpha, beta].
// For a given board, regardless turn, we always want to maximize alpha.
func (e *Engine) negamax(b *board.Board, pvl *PVLine, depth, ply uint8, alpha, beta int32) int32 {
	if depth == 0 {
		return e.quiescence(b, pvl, 0, ply, alpha, beta)
	}
	if e.clock.Poll(e.nodes) {
		return 0
	}
	e.nodes++

	hash := b.Hash()
	if score, _, ok := e.tt.Probe(hash, depth, ply, alpha, beta); ok {
		return clamp(score, alpha, beta)
	}
	ttMove, _ := e.tt.Move(hash)

	s := b.Turn()
	isCheck := b.IsKingChecked(s)
	smvs := e.scoreMoves(b.GeneratePseudoLegalMoves(), ttMove, ply)

	var childPVL PVLine
	var legalMoves int
	bestMove := board.NullMove
	ttType := EntryTypeUpperBound
	for i := range smvs {
		sortMoves(smvs, i)
		mv := smvs[i].mv

		u := b.Apply(mv)
		if b.IsKingChecked(s) {
			b.Unapply(u)
			continue
		}
		legalMoves++
		score := -e.negamax(b, &childPVL, depth-1, ply+1, -beta, -alpha)
		b.Unapply(u)

		if e.clock.Poll(e.nodes) {
			return 0
		}
		if score >= beta {
			if !mv.IsCapture() && !mv.IsPromote() {
				e.storeKiller(mv, ply)
				e.storeHistory(mv, depth)
			}
			e.tt.Store(hash, depth, ply, beta, EntryTypeLowerBound, mv)
			return beta // fail-hard cutoff
		}
		if score > alpha {
			alpha = score
			bestMove = mv
			ttType = EntryTypeExact
			pvl.Set(mv, childPVL)
		}
		childPVL.Clear()
	}

	// no moves were explored, game has terminated
	if legalMoves == 0 {
		if isCheck {
			return clamp(-(ScoreMate - int32(ply)), alpha, beta)
		}
		return clamp(0, alpha, beta)
	}

	e.tt.Store(hash, depth, ply, alpha, ttType, bestMove)
	return alpha
}

// quiescence resolves captures and promotions past the horizon so the static evaluation
// is taken on a quiet board. In check, every evasion is searched instead.
func (e *Engine) quiescence(b *board.Board, pvl *PVLine, qdepth, ply uint8, alpha, beta int32) int32 {
	if e.clock.Poll(e.nodes) {
		return 0
	}
	e.nodes++

	if qdepth >= maxQuiescenceDepth {
		return clamp(EvaluateRelative(b), alpha, beta)
	}

	var mvs []board.Move
	if b.IsKingChecked(b.Turn()) {
		mvs = b.GenerateMoves()
		if len(mvs) == 0 {
			return clamp(-(ScoreMate - int32(ply)), alpha, beta)
		}
	} else {
		standPat := EvaluateRelative(b)
		if standPat >= beta {
			return beta
		}
		if standPat > alpha {
			alpha = standPat
		}
		mvs = b.GenerateCaptures()
	}

	smvs := e.scoreMoves(mvs, board.NullMove, ply)
	var childPVL PVLine
	for i := range smvs {
		sortMoves(smvs, i)
		mv := smvs[i].mv

		u := b.Apply(mv)
		score := -e.quiescence(b, &childPVL, qdepth+1, ply+1, -beta, -alpha)
		b.Unapply(u)

		if e.clock.Poll(e.nodes) {
			return 0
		}
		if score >= beta {
			return beta // fail-hard cutoff
		}
		if score > alpha {
			alpha = score
			pvl.Set(mv, childPVL)
		}
		childPVL.Clear()
	}

	return alpha
}

func (e *Engine) logIteration(b *board.Board, cfg *SearchConfig, res Result, pvl *PVLine) {
	elapsed := e.clock.Elapsed()
	nps := float64(e.nodes) / (elapsed + time.Nanosecond).Seconds()
	if cfg.Debug {
		hits, misses, writes := e.tt.Stats()
		e.logger(message.NewPrinter(language.English).
			Sprintf("depth:%d [%s] nodes:%d (%.0fn/s) t:%s tt:%d/%d/%d\n    %s",
				res.Depth, formatScoreDebug(res.Score), e.nodes, nps, elapsed, hits, misses, writes, pvl.String(b)))
		return
	}
	e.logger(fmt.Sprintf("info depth %d score %s time %d nodes %d nps %.0f pv %s",
		res.Depth, formatScoreUCI(res.Score), elapsed.Milliseconds(), e.nodes, nps, pvl.StringUCI()))
}

// mateIn converts a mate score to full moves, negative when being mated.
func mateIn(s int32) int32 {
	if s > 0 {
		return (ScoreMate - s + 1) / 2
	}
	return -(ScoreMate + s) / 2
}

func formatScoreDebug(s int32) string {
	if s >= ScoreInfinite {
		return "+inf"
	}
	if s <= -ScoreInfinite {
		return "-inf"
	}
	if abs(s) >= scoreMateThreshold {
		if m := mateIn(s); m < 0 {
			return fmt.Sprintf("#-%d", -m)
		}
		return fmt.Sprintf("#+%d", mateIn(s))
	}
	if s > 0 {
		return fmt.Sprintf("+%.2f", float64(s)/100)
	}
	if s < 0 {
		return fmt.Sprintf("%.2f", float64(s)/100)
	}
	return "0"
}

func formatScoreUCI(s int32) string {
	if abs(s) >= scoreMateThreshold {
		return fmt.Sprintf("mate %d", mateIn(s))
	}
	return fmt.Sprintf("cp %d", s)
}
