package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/daystram/caissa/board"
	"github.com/daystram/caissa/engine"
)

// search lets the engine play both sides for the given number of plies from fen.
func search(ctx context.Context, fen string, steps int, maxDepth uint8, movetime time.Duration, debug bool) error {
	b, err := board.NewBoard(board.WithFEN(fen))
	if err != nil {
		return err
	}
	e := engine.NewEngine(&engine.EngineConfig{
		HashTableSize: engine.DefaultHashTableSize,
	})
	fmt.Println(b.Draw())
	fmt.Println(b.FEN())

	start := b.Clone()
	var history []board.Move
	for step := 1; step <= steps; step++ {
		log.Printf("=============== ply %d (%s to move)\n", b.Ply()+1, b.Turn())
		t := time.Now()
		res, err := e.Search(ctx, b, &engine.SearchConfig{
			MaxDepth:    maxDepth,
			ClockConfig: engine.ClockConfig{Movetime: movetime},
			Debug:       debug,
		})
		if err != nil {
			return err
		}
		if res.IsGameOver() {
			log.Println("=============== game ended:", res.State)
			break
		}
		hits, misses, writes := e.TranspositionTable().Stats()
		log.Printf("best %s score %d depth %d nodes %d tt %d/%d/%d in %s\n",
			res.Move.UCI(), res.Score, res.Depth, res.Nodes, hits, misses, writes, elapsedSince(t))

		if _, err := b.ApplyMove(res.Move); err != nil {
			return err
		}
		history = append(history, res.Move)
		fmt.Println(b.Draw())
		fmt.Println(b.FEN())
		if ctx.Err() != nil {
			break
		}
	}
	fmt.Println(engine.DumpHistory(start, history))

	return nil
}
