package bench

import (
	"context"
	"fmt"
	"testing"

	"github.com/daystram/caissa/board"
)

const (
	fenKiwipete  = "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1"
	fenPosition3 = "8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1"
	fenPosition4 = "r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1"
	fenPosition5 = "rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8"
	fenPosition6 = "r4rk1/1pp1qppp/p1np1n2/2b1p1B1/2B1P1b1/P1NP1N2/1PP1QPPP/R4RK1 w - - 0 10"
)

func TestPerft(t *testing.T) {
	t.Parallel()

	// Results obtained from https://www.chessprogramming.org/Perft_Results.
	tests := []struct {
		fen       string
		depth     int
		slow      bool
		onlyNodes bool
		want      Counters
	}{
		{fen: board.DefaultStartingPositionFEN, depth: 0, want: Counters{Nodes: 1}},
		{fen: board.DefaultStartingPositionFEN, depth: 1, want: Counters{Nodes: 20}},
		{fen: board.DefaultStartingPositionFEN, depth: 2, want: Counters{Nodes: 400}},
		{fen: board.DefaultStartingPositionFEN, depth: 3, want: Counters{Nodes: 8_902, Captures: 34, Checks: 12}},
		{fen: board.DefaultStartingPositionFEN, depth: 4, want: Counters{Nodes: 197_281, Captures: 1_576, Checks: 469}},
		{
			fen:   board.DefaultStartingPositionFEN,
			depth: 5,
			slow:  true,
			want:  Counters{Nodes: 4_865_609, Captures: 82_719, EnPassants: 258, Checks: 27_351},
		},
		{fen: fenKiwipete, depth: 1, want: Counters{Nodes: 48, Captures: 8, Castles: 2}},
		{fen: fenKiwipete, depth: 2, want: Counters{Nodes: 2_039, Captures: 351, EnPassants: 1, Castles: 91, Checks: 3}},
		{fen: fenKiwipete, depth: 3, want: Counters{Nodes: 97_862, Captures: 17_102, EnPassants: 45, Castles: 3_162, Checks: 993}},
		{fen: fenPosition3, depth: 1, onlyNodes: true, want: Counters{Nodes: 14}},
		{fen: fenPosition3, depth: 2, onlyNodes: true, want: Counters{Nodes: 191}},
		{fen: fenPosition3, depth: 3, onlyNodes: true, want: Counters{Nodes: 2_812}},
		{fen: fenPosition3, depth: 4, onlyNodes: true, want: Counters{Nodes: 43_238}},
		{fen: fenPosition4, depth: 1, onlyNodes: true, want: Counters{Nodes: 6}},
		{fen: fenPosition4, depth: 2, onlyNodes: true, want: Counters{Nodes: 264}},
		{fen: fenPosition4, depth: 3, onlyNodes: true, want: Counters{Nodes: 9_467}},
		{fen: fenPosition5, depth: 1, onlyNodes: true, want: Counters{Nodes: 44}},
		{fen: fenPosition5, depth: 2, onlyNodes: true, want: Counters{Nodes: 1_486}},
		{fen: fenPosition5, depth: 3, onlyNodes: true, want: Counters{Nodes: 62_379}},
		{fen: fenPosition6, depth: 1, onlyNodes: true, want: Counters{Nodes: 46}},
		{fen: fenPosition6, depth: 2, onlyNodes: true, want: Counters{Nodes: 2_079}},
		{fen: fenPosition6, depth: 3, onlyNodes: true, want: Counters{Nodes: 89_890}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(fmt.Sprintf("perft(%d): %s", tt.depth, tt.fen), func(t *testing.T) {
			t.Parallel()
			if tt.slow && testing.Short() {
				t.Skip("skipping deep perft in short mode")
			}
			b, err := board.NewBoard(board.WithFEN(tt.fen))
			if err != nil {
				t.Fatal("unexpected error:", err)
			}
			fen := b.FEN()
			hash := b.Hash()

			got := Perft(b, tt.depth)

			if got.Nodes != tt.want.Nodes {
				t.Errorf("unexpected nodes: got=%d want=%d", got.Nodes, tt.want.Nodes)
			}
			if !tt.onlyNodes && got.Counters != tt.want {
				t.Errorf("unexpected counters: got=%+v want=%+v", got.Counters, tt.want)
			}
			if b.FEN() != fen || b.Hash() != hash {
				t.Errorf("board changed by perft: got=%s want=%s", b.FEN(), fen)
			}
		})
	}
}

func TestPerftParallel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		fen   string
		depth int
	}{
		{fen: board.DefaultStartingPositionFEN, depth: 3},
		{fen: fenKiwipete, depth: 3},
		{fen: fenPosition4, depth: 3},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(fmt.Sprintf("perft(%d): %s", tt.depth, tt.fen), func(t *testing.T) {
			t.Parallel()
			b, err := board.NewBoard(board.WithFEN(tt.fen))
			if err != nil {
				t.Fatal("unexpected error:", err)
			}

			want := Perft(b.Clone(), tt.depth)
			got, err := PerftParallel(context.Background(), b, tt.depth)
			if err != nil {
				t.Fatal("unexpected error:", err)
			}
			if got.Counters != want.Counters {
				t.Errorf("unexpected counters: got=%+v want=%+v", got.Counters, want.Counters)
			}
			if len(got.Divide) != len(want.Divide) {
				t.Fatalf("unexpected divide length: got=%d want=%d", len(got.Divide), len(want.Divide))
			}
			for i := range got.Divide {
				if got.Divide[i] != want.Divide[i] {
					t.Errorf("unexpected divide entry: got=%v want=%v", got.Divide[i], want.Divide[i])
				}
			}
		})
	}
}

func TestPerftParallelCancelled(t *testing.T) {
	t.Parallel()

	b, err := board.NewBoard()
	if err != nil {
		t.Fatal("unexpected error:", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = PerftParallel(ctx, b, 4)
	if err == nil {
		t.Errorf("unexpected error: got=%v want=%v", err, context.Canceled)
	}
}

func TestRun(t *testing.T) {
	t.Parallel()

	var lines []string
	logger := func(a ...any) {
		lines = append(lines, fmt.Sprint(a...))
	}
	res, err := Run(context.Background(), 2, board.DefaultStartingPositionFEN, false, true, logger)
	if err != nil {
		t.Fatal("unexpected error:", err)
	}
	if res.Nodes != 400 {
		t.Errorf("unexpected nodes: got=%d want=%d", res.Nodes, 400)
	}
	// one line per root move plus the summary
	if len(lines) != 21 {
		t.Errorf("unexpected log lines: got=%d want=%d", len(lines), 21)
	}

	if _, err := Run(context.Background(), 1, "invalid", false, false, logger); err == nil {
		t.Errorf("unexpected error: got=%v want=%v", err, board.ErrInvalidFEN)
	}
}
