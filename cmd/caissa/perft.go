package main

import (
	"context"
	"log"

	"github.com/daystram/caissa/bench"
)

func perft(ctx context.Context, depth int, fen string, parallel bool) error {
	name := "dfs"
	if parallel {
		name = "parallel dfs"
	}
	log.Printf("============ perft(%d): %s\n", depth, name)
	_, err := bench.Run(ctx, depth, fen, parallel, true, func(a ...any) {
		log.Println(a...)
	})
	return err
}
