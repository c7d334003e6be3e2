package engine

import (
	"context"
	"testing"
	"time"

	"github.com/daystram/caissa/board"
)

func TestClockStart(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		turn          board.Side
		fullMoveClock uint16
		cfg           *ClockConfig
		wantMode      ClockMode
		wantAllocated time.Duration
	}{
		{
			name:     "depth only",
			turn:     board.SideWhite,
			cfg:      &ClockConfig{},
			wantMode: ClockModeDepth,
		},
		{
			name:     "nil config",
			turn:     board.SideWhite,
			wantMode: ClockModeDepth,
		},
		{
			name:          "movetime",
			turn:          board.SideBlack,
			cfg:           &ClockConfig{Movetime: 3 * time.Second, BlackTime: time.Minute},
			wantMode:      ClockModeMovetime,
			wantAllocated: 3 * time.Second,
		},
		{
			name:          "movetime floor",
			turn:          board.SideWhite,
			cfg:           &ClockConfig{Movetime: time.Millisecond},
			wantMode:      ClockModeMovetime,
			wantAllocated: minMovetime,
		},
		{
			name:          "white game clock",
			turn:          board.SideWhite,
			fullMoveClock: 0,
			cfg:           &ClockConfig{WhiteTime: 40 * time.Second, WhiteIncrement: time.Second, BlackTime: time.Second},
			wantMode:      ClockModeGametime,
			wantAllocated: time.Second + 200*time.Millisecond,
		},
		{
			name:          "black game clock",
			turn:          board.SideBlack,
			fullMoveClock: 20,
			cfg:           &ClockConfig{WhiteTime: time.Second, BlackTime: 40 * time.Second},
			wantMode:      ClockModeGametime,
			wantAllocated: 2 * time.Second,
		},
		{
			name:          "game clock past expected length",
			turn:          board.SideWhite,
			fullMoveClock: 80,
			cfg:           &ClockConfig{WhiteTime: 10 * time.Second},
			wantMode:      ClockModeGametime,
			wantAllocated: 10 * time.Second,
		},
		{
			name:     "other side's clock only",
			turn:     board.SideBlack,
			cfg:      &ClockConfig{WhiteTime: 10 * time.Second},
			wantMode: ClockModeDepth,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := NewClock()
			c.Start(context.Background(), tt.turn, tt.fullMoveClock, tt.cfg)
			if got := c.Mode(); got != tt.wantMode {
				t.Errorf("unexpected mode: got=%s want=%s", got, tt.wantMode)
			}
			if got := c.Allocated(); got != tt.wantAllocated {
				t.Errorf("unexpected allocated movetime: got=%s want=%s", got, tt.wantAllocated)
			}
		})
	}
}

func TestClockDone(t *testing.T) {
	t.Parallel()

	t.Run("depth only never expires", func(t *testing.T) {
		t.Parallel()
		c := NewClock()
		c.Start(context.Background(), board.SideWhite, 1, &ClockConfig{})
		if c.Done() {
			t.Errorf("unexpected done: got=%v want=%v", true, false)
		}
		if c.Poll(0) {
			t.Errorf("unexpected poll: got=%v want=%v", true, false)
		}
	})

	t.Run("context cancelled", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		c := NewClock()
		c.Start(ctx, board.SideWhite, 1, &ClockConfig{})
		cancel()
		// polls between checkpoints do not look at the context
		if c.Poll(1) {
			t.Errorf("unexpected poll: got=%v want=%v", true, false)
		}
		if !c.Poll(2048) {
			t.Errorf("unexpected poll: got=%v want=%v", false, true)
		}
		if !c.Poll(1) {
			t.Errorf("unexpected poll after stop: got=%v want=%v", false, true)
		}
	})

	t.Run("deadline", func(t *testing.T) {
		t.Parallel()
		c := NewClock()
		c.Start(context.Background(), board.SideWhite, 1, &ClockConfig{Movetime: minMovetime})
		time.Sleep(minMovetime)
		if !c.Done() {
			t.Errorf("unexpected done: got=%v want=%v", false, true)
		}
		if c.Elapsed() < minMovetime {
			t.Errorf("unexpected elapsed: got=%s want>=%s", c.Elapsed(), minMovetime)
		}
	})

	t.Run("restart", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		c := NewClock()
		c.Start(ctx, board.SideWhite, 1, &ClockConfig{})
		if !c.Done() {
			t.Errorf("unexpected done: got=%v want=%v", false, true)
		}
		c.Start(context.Background(), board.SideWhite, 1, &ClockConfig{})
		if c.Done() {
			t.Errorf("unexpected done after restart: got=%v want=%v", true, false)
		}
	})
}
