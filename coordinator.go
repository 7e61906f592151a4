package remotemandel

import (
	"fmt"
	"sync"

	"github.com/hnakamur/ltsvlog"
	"github.com/j3hempsey/remotemandel/msg"
	"golang.org/x/net/context"
)

// State is the position of the coordinator in its dispatch state machine.
type State int

const (
	DispatchInitial State = iota
	SteadyState
	Drain
	Render
)

func (s State) String() string {
	switch s {
	case DispatchInitial:
		return "DISPATCH_INITIAL"
	case SteadyState:
		return "STEADY_STATE"
	case Drain:
		return "DRAIN"
	case Render:
		return "RENDER"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Dispatch records one assignment sent by the coordinator.
type Dispatch struct {
	Rank  int
	Chunk Chunk
}

// Result is what a finished run hands to rendering.
type Result struct {
	Grid         *Grid
	Dispatches   []Dispatch
	Terminations int
	Replies      int
}

// Coordinator owns the grid and drives the workers of a process group from
// rank 0. Workers get one chunk at a time; a reply is answered with the next
// chunk for the same worker or with a Terminate.
//
// A worker that never replies stalls Run until ctx is cancelled. There is no
// watchdog and no reassignment.
type Coordinator struct {
	ep      Endpoint
	planner Planner
	grid    *Grid
	logger  ltsvlog.LogWriter

	// in-flight chunk per worker rank
	inflight map[int]Chunk
	result   Result

	mu    sync.Mutex
	state State
}

// NewCoordinator creates a coordinator for an image of the given dimensions.
// ep must be the rank 0 endpoint of the group.
func NewCoordinator(ep Endpoint, planner Planner, height, width int, logger ltsvlog.LogWriter) *Coordinator {
	grid := NewGrid(height, width)
	return &Coordinator{
		ep:       ep,
		planner:  planner,
		grid:     grid,
		logger:   logger,
		inflight: make(map[int]Chunk),
		result:   Result{Grid: grid},
	}
}

// Run dispatches every row exactly once, merges all replies and returns once
// every worker has been sent exactly one Terminate. It returns ErrNoWorkers
// without sending anything if the group consists of the coordinator alone.
func (c *Coordinator) Run(ctx context.Context) (*Result, error) {
	if c.ep.Size() < 2 {
		c.logger.Info().String("msg", "no workers in process group, nothing to dispatch").
			Int("size", c.ep.Size()).Log()
		return nil, ErrNoWorkers
	}

	c.setState(DispatchInitial)
	for rank := 1; rank < c.ep.Size(); rank++ {
		if err := c.dispatchNext(ctx, rank); err != nil {
			return nil, err
		}
	}
	c.enterSteadyOrDrain()

	for len(c.inflight) > 0 {
		if err := c.receiveAndDispatch(ctx); err != nil {
			return nil, err
		}
	}

	if !c.grid.Complete() {
		return nil, fmt.Errorf("%w: %d of %d rows merged after all workers terminated",
			ErrProtocol, c.grid.RowsMerged(), c.grid.Height)
	}
	c.setState(Render)
	c.logger.Info().String("msg", "all chunks merged").
		Int("dispatches", len(c.result.Dispatches)).
		Int("terminations", c.result.Terminations).Log()
	return &c.result, nil
}

// dispatchNext sends the worker its next chunk, or Terminate if the planner
// has nothing left for it.
func (c *Coordinator) dispatchNext(ctx context.Context, rank int) error {
	ch, ok := c.planner.Next(rank)
	if !ok {
		frame, err := msg.Marshal(msg.TerminateMsg, &msg.Terminate{})
		if err != nil {
			return err
		}
		if err := c.ep.Send(ctx, rank, frame); err != nil {
			return fmt.Errorf("send terminate to rank %d: %w", rank, err)
		}
		c.mu.Lock()
		c.result.Terminations++
		c.mu.Unlock()
		if c.logger.DebugEnabled() {
			c.logger.Debug().String("msg", "sent terminate").Int("rank", rank).Log()
		}
		return nil
	}

	frame, err := msg.Marshal(msg.AssignmentMsg, &msg.Assignment{StartRow: ch.StartRow, Rows: ch.Rows})
	if err != nil {
		return err
	}
	if err := c.ep.Send(ctx, rank, frame); err != nil {
		return fmt.Errorf("send chunk %s to rank %d: %w", ch, rank, err)
	}
	c.inflight[rank] = ch
	c.mu.Lock()
	c.result.Dispatches = append(c.result.Dispatches, Dispatch{Rank: rank, Chunk: ch})
	c.mu.Unlock()
	if c.logger.DebugEnabled() {
		c.logger.Debug().String("msg", "sent chunk").Int("rank", rank).
			Int("startRow", ch.StartRow).Int("rows", ch.Rows).Log()
	}
	return nil
}

func (c *Coordinator) receiveAndDispatch(ctx context.Context) error {
	env, err := c.ep.Recv(ctx, AnySource)
	if err != nil {
		return fmt.Errorf("receive chunk result: %w", err)
	}
	f, err := msg.Open(env.Frame)
	if err != nil {
		return fmt.Errorf("%w: rank %d: %v", ErrProtocol, env.Source, err)
	}
	if f.Type != msg.ChunkResultMsg {
		return fmt.Errorf("%w: unexpected %s from rank %d", ErrProtocol, f.Type, env.Source)
	}
	var res msg.ChunkResult
	if err := f.Decode(&res); err != nil {
		return fmt.Errorf("%w: rank %d: %v", ErrProtocol, env.Source, err)
	}

	ch, ok := c.inflight[env.Source]
	if !ok {
		return fmt.Errorf("%w: result from rank %d which owns no chunk", ErrProtocol, env.Source)
	}
	if res.StartRow != ch.StartRow || len(res.Values) != ch.Rows*c.grid.Width {
		return fmt.Errorf("%w: rank %d replied for row %d with %d values, owns %s",
			ErrProtocol, env.Source, res.StartRow, len(res.Values), ch)
	}
	delete(c.inflight, env.Source)
	c.mu.Lock()
	c.result.Replies++
	err = c.grid.Merge(ch.StartRow, ch.Rows, res.Values)
	c.mu.Unlock()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProtocol, err)
	}

	// A Terminate only ever follows the merge of the worker's last chunk.
	if err := c.dispatchNext(ctx, env.Source); err != nil {
		return err
	}
	c.enterSteadyOrDrain()
	return nil
}

func (c *Coordinator) enterSteadyOrDrain() {
	next := SteadyState
	if !c.planner.Remaining() {
		next = Drain
	}
	if c.State() != next {
		c.setState(next)
	}
}

func (c *Coordinator) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
	c.logger.Info().String("msg", "coordinator state").String("state", s.String()).
		Int("inflight", len(c.inflight)).Log()
}

// State returns the current state. It is safe to call from other goroutines.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}
