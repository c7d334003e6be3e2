package bench

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/daystram/caissa/board"
)

// Counters tallies the leaf moves of a perft walk.
type Counters struct {
	Nodes      uint64
	Captures   uint64
	EnPassants uint64
	Castles    uint64
	Promotions uint64
	Checks     uint64
}

func (c *Counters) add(o Counters) {
	c.Nodes += o.Nodes
	c.Captures += o.Captures
	c.EnPassants += o.EnPassants
	c.Castles += o.Castles
	c.Promotions += o.Promotions
	c.Checks += o.Checks
}

type MoveCount struct {
	Move  board.Move
	Nodes uint64
}

type Result struct {
	Counters
	Divide  []MoveCount
	Elapsed time.Duration
}

// Perft walks the legal move tree of b to depth with Apply/Unapply on b itself.
func Perft(b *board.Board, depth int) Result {
	start := time.Now()
	var res Result
	if depth == 0 {
		res.Nodes = 1
		res.Elapsed = time.Since(start)
		return res
	}
	for _, mv := range b.GenerateMoves() {
		var c Counters
		if depth == 1 {
			countLeaf(b, mv, &c)
		} else {
			u := b.Apply(mv)
			perft(b, depth-1, &c)
			b.Unapply(u)
		}
		res.Divide = append(res.Divide, MoveCount{Move: mv, Nodes: c.Nodes})
		res.add(c)
	}
	res.Elapsed = time.Since(start)
	return res
}

// PerftParallel splits the walk at the root, one goroutine per root move, each on its
// own clone of b. b is not modified.
func PerftParallel(ctx context.Context, b *board.Board, depth int) (Result, error) {
	if depth <= 1 {
		return Perft(b.Clone(), depth), nil
	}
	start := time.Now()
	mvs := b.GenerateMoves()
	counters := make([]Counters, len(mvs))

	g, ctx := errgroup.WithContext(ctx)
	for i, mv := range mvs {
		i, mv := i, mv
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			bb := b.Clone()
			bb.Apply(mv)
			perft(bb, depth-1, &counters[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	var res Result
	for i, mv := range mvs {
		res.Divide = append(res.Divide, MoveCount{Move: mv, Nodes: counters[i].Nodes})
		res.add(counters[i])
	}
	res.Elapsed = time.Since(start)
	return res, nil
}

func perft(b *board.Board, d int, c *Counters) {
	mvs := b.GenerateMoves()
	if d == 1 {
		for _, mv := range mvs {
			countLeaf(b, mv, c)
		}
		return
	}
	for _, mv := range mvs {
		u := b.Apply(mv)
		perft(b, d-1, c)
		b.Unapply(u)
	}
}

func countLeaf(b *board.Board, mv board.Move, c *Counters) {
	c.Nodes++
	if mv.IsCapture() {
		c.Captures++
	}
	if mv.Flag == board.MoveFlagEnPassant {
		c.EnPassants++
	}
	if mv.IsCastle() != board.CastleDirectionUnknown {
		c.Castles++
	}
	if mv.IsPromote() {
		c.Promotions++
	}
	u := b.Apply(mv)
	if b.IsKingChecked(b.Turn()) {
		c.Checks++
	}
	b.Unapply(u)
}

// Run loads fen and logs a perft summary, with per-root-move counts when verbose.
func Run(ctx context.Context, depth int, fen string, parallel, verbose bool, logger func(...any)) (Result, error) {
	b, err := board.NewBoard(board.WithFEN(fen))
	if err != nil {
		return Result{}, err
	}

	var res Result
	if parallel {
		res, err = PerftParallel(ctx, b, depth)
		if err != nil {
			return Result{}, err
		}
	} else {
		res = Perft(b, depth)
	}

	p := message.NewPrinter(language.English)
	if verbose {
		for _, mc := range res.Divide {
			logger(p.Sprintf("%s: %d", mc.Move.UCI(), mc.Nodes))
		}
	}
	logger(p.Sprintf("d=%d nodes=%d rate=%dn/s cap=%d enp=%d cas=%d pro=%d chk=%d (%.3fs elapsed)",
		depth, res.Nodes, int(float64(res.Nodes)/(res.Elapsed+time.Nanosecond).Seconds()),
		res.Captures, res.EnPassants, res.Castles, res.Promotions, res.Checks, res.Elapsed.Seconds()))
	return res, nil
}
