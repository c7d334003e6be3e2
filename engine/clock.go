package engine

import (
	"context"
	"time"

	"github.com/daystram/caissa/board"
)

const (
	DefaultMaxDepth uint8 = 4

	MaxDepth    uint8 = 64
	MaxMovetime       = 24 * time.Hour

	minMovetime = 50 * time.Millisecond

	expectedGameMoves         uint16 = 40
	movetimeAccumulationRatio        = 0.8
	movetimeMargin                   = 20 * time.Millisecond

	// how often, in nodes, the deadline is polled
	clockPollMask = 2048 - 1
)

type ClockMode uint8

const (
	ClockModeDepth ClockMode = iota
	ClockModeMovetime
	ClockModeGametime
)

func (m ClockMode) String() string {
	switch m {
	case ClockModeDepth:
		return "depth"
	case ClockModeMovetime:
		return "movetime"
	case ClockModeGametime:
		return "gametime"
	default:
		return ""
	}
}

type ClockConfig struct {
	WhiteTime      time.Duration
	BlackTime      time.Duration
	WhiteIncrement time.Duration
	BlackIncrement time.Duration

	Movetime time.Duration
}

// Clock turns a ClockConfig into a deadline. It is polled by the search and never
// spawns goroutines; ctx cancellation is observed on the same polls.
type Clock struct {
	mode              ClockMode
	ctx               context.Context
	start             time.Time
	deadline          time.Time
	allocatedMovetime time.Duration
	stopped           bool
}

func NewClock() *Clock {
	return &Clock{ctx: context.Background()}
}

func (c *Clock) Start(ctx context.Context, turn board.Side, fullMoveClock uint16, cfg *ClockConfig) {
	if ctx == nil {
		ctx = context.Background()
	}
	c.ctx = ctx
	c.start = time.Now()
	c.stopped = false
	c.allocatedMovetime = 0
	c.mode = ClockModeDepth
	if cfg == nil {
		cfg = &ClockConfig{}
	}

	switch {
	case cfg.Movetime != 0:
		c.mode = ClockModeMovetime
		c.allocatedMovetime = cfg.Movetime
	case turn == board.SideWhite && cfg.WhiteTime != 0:
		c.mode = ClockModeGametime
		c.allocatedMovetime = allocateMovetime(fullMoveClock, cfg.WhiteTime, cfg.WhiteIncrement)
	case turn == board.SideBlack && cfg.BlackTime != 0:
		c.mode = ClockModeGametime
		c.allocatedMovetime = allocateMovetime(fullMoveClock, cfg.BlackTime, cfg.BlackIncrement)
	}

	if c.mode != ClockModeDepth {
		c.allocatedMovetime = clamp(c.allocatedMovetime, minMovetime, MaxMovetime)
		c.deadline = c.start.Add(c.allocatedMovetime - movetimeMargin)
	}
}

// spread the remaining time over the moves expected to be left, keeping part of the increment
func allocateMovetime(fullMoveClock uint16, remaining, increment time.Duration) time.Duration {
	movesLeft := int64(1)
	if fullMoveClock < expectedGameMoves {
		movesLeft = max(int64(expectedGameMoves-fullMoveClock), 1)
	}
	return time.Duration(float64(remaining)/float64(movesLeft)) +
		time.Duration(float64(increment)*(1-movetimeAccumulationRatio))
}

// Done reports whether the deadline passed or the context ended. Once done, it stays done
// until the next Start.
func (c *Clock) Done() bool {
	if c.stopped {
		return true
	}
	if c.ctx.Err() != nil {
		c.stopped = true
		return true
	}
	if c.mode != ClockModeDepth && !time.Now().Before(c.deadline) {
		c.stopped = true
		return true
	}
	return false
}

// Poll is the cheap variant of Done used inside the search loop.
func (c *Clock) Poll(nodes uint64) bool {
	if c.stopped {
		return true
	}
	if nodes&clockPollMask != 0 {
		return false
	}
	return c.Done()
}

func (c *Clock) Mode() ClockMode {
	return c.mode
}

func (c *Clock) Allocated() time.Duration {
	return c.allocatedMovetime
}

func (c *Clock) Elapsed() time.Duration {
	return time.Since(c.start)
}
