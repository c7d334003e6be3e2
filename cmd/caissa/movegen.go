package main

import (
	"fmt"
	"log"
	"strconv"

	"github.com/daystram/caissa/board"
)

func movegen(fen string, draw bool) error {
	log.Println("============ movegen")
	b, err := board.NewBoard(board.WithFEN(fen))
	if err != nil {
		return err
	}
	fmt.Println("to move:", b.Turn())
	fmt.Println(b.Dump())
	fmt.Println(b.Draw())
	fmt.Println(b.State())
	fmt.Println(b.DebugString())
	dumpMoves(b)

	if draw {
		for _, mv := range b.GenerateMoves() {
			u := b.Apply(mv)
			fmt.Println(mv)
			fmt.Println(b.Draw())
			fmt.Println(b.FEN())
			b.Unapply(u)
		}
	}
	return nil
}

func dumpMoves(b *board.Board) {
	mvs := b.GenerateMoves()
	for i, mv := range mvs {
		fmt.Printf("option %*d: [%s] [%s] %s %s %s => %s (flag=%s) (cap=%s) (pro=%s)\n",
			len(strconv.Itoa(len(mvs))), i+1, mv.UCI(), mv.Algebra(), mv.IsTurn, mv.Piece, mv.From, mv.To, mv.Flag, mv.Captured, mv.Promote)
	}
}
