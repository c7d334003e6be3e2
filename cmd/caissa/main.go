package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/daystram/caissa/board"
)

const (
	exitOK = iota
	exitErr
)

var (
	profile = flag.Bool("profile", false, "serve pprof endpoint")
	fen     = flag.String("fen", board.DefaultStartingPositionFEN, "position to run on, trailing arguments are joined as the FEN too")

	perftDepth    = flag.Int("perft", 0, "run perft to the given depth")
	perftParallel = flag.Bool("perft.parallel", false, "split perft at the root across goroutines")

	movegenRun  = flag.Bool("movegen", false, "run movegen mode")
	movegenDraw = flag.Bool("movegen.draw", false, "draw applied moves in movegen mode")

	searchRun      = flag.Bool("search", false, "run search mode")
	searchMaxDepth = flag.Int("search.maxdepth", 0, "search max depth in search mode")
	searchMovetime = flag.Duration("search.movetime", 0, "time budget per search in search mode")
	searchSteps    = flag.Int("search.steps", 1, "plies to self-play in search mode")
	searchDebug    = flag.Bool("search.debug", false, "human readable search logs")
)

func main() {
	flag.Parse()

	if *profile {
		runProfiler()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := realMain(ctx, flag.Args())
	stop()
	if err != nil {
		log.Println(err)
		os.Exit(exitErr)
	}
	os.Exit(exitOK)
}

func runProfiler() {
	go func() {
		addr := "localhost:6060"
		log.Printf("starting pprof endpoint: http://%s/debug/pprof\n", addr)
		_ = http.ListenAndServe(addr, nil)
	}()
}

func realMain(ctx context.Context, args []string) error {
	f := *fen
	if len(args) > 0 {
		f = strings.Join(args, " ")
	}
	if *perftDepth > 0 {
		return perft(ctx, *perftDepth, f, *perftParallel)
	}
	if *movegenRun {
		return movegen(f, *movegenDraw)
	}
	if *searchRun {
		return search(ctx, f, *searchSteps, uint8(*searchMaxDepth), *searchMovetime, *searchDebug)
	}

	flag.Usage()
	return nil
}

func elapsedSince(start time.Time) string {
	return time.Since(start).Round(time.Millisecond).String()
}
