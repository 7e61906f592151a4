package remotemandel

import "fmt"

// Chunk is a contiguous row range [StartRow, StartRow+Rows).
type Chunk struct {
	StartRow int
	Rows     int
}

// EndRow returns the first row after the chunk.
func (c Chunk) EndRow() int {
	return c.StartRow + c.Rows
}

func (c Chunk) String() string {
	return fmt.Sprintf("[%d,%d)", c.StartRow, c.EndRow())
}

// Planner decides which rows a worker computes next. It is consulted only by
// the coordinator's dispatch loop, never concurrently.
type Planner interface {
	// Next returns the next chunk for the worker of the given rank, or false
	// if that worker has no more work.
	Next(rank int) (Chunk, bool)

	// Remaining reports whether any worker still has unclaimed rows.
	Remaining() bool
}

// Strategy names a way of distributing rows over workers.
type Strategy string

const (
	// Dynamic hands out fixed size chunks on demand to whichever worker
	// replied last.
	Dynamic Strategy = "dynamic"

	// Block gives every worker one contiguous block of rows up front.
	Block Strategy = "block"

	// Cyclic gives worker r the rows r-1, r-1+(P-1), ... one row at a time.
	Cyclic Strategy = "cyclic"
)

// NewPlanner creates a planner for an image of the given height shared by
// the given number of workers.
func NewPlanner(s Strategy, height, chunkHeight, workers int) (Planner, error) {
	if height <= 0 {
		return nil, fmt.Errorf("invalid height %d", height)
	}
	if workers <= 0 {
		return nil, ErrNoWorkers
	}
	switch s {
	case Dynamic, "":
		if chunkHeight <= 0 {
			return nil, fmt.Errorf("invalid chunk height %d", chunkHeight)
		}
		return NewCursor(height, chunkHeight), nil
	case Block:
		return newBlockPlanner(height, workers), nil
	case Cyclic:
		return newCyclicPlanner(height, workers), nil
	default:
		return nil, fmt.Errorf("unknown strategy %q", s)
	}
}

// Cursor is the work cursor of the dynamic strategy: the next unclaimed row.
// It only moves forward.
type Cursor struct {
	height      int
	chunkHeight int
	nextRow     int
}

// NewCursor creates a cursor at row 0.
func NewCursor(height, chunkHeight int) *Cursor {
	return &Cursor{height: height, chunkHeight: chunkHeight}
}

// Next claims the next chunk regardless of rank. The last chunk is clamped to
// the grid height.
func (c *Cursor) Next(rank int) (Chunk, bool) {
	if !c.Remaining() {
		return Chunk{}, false
	}
	rows := c.chunkHeight
	if rest := c.height - c.nextRow; rows > rest {
		rows = rest
	}
	ch := Chunk{StartRow: c.nextRow, Rows: rows}
	c.nextRow += rows
	return ch, true
}

func (c *Cursor) Remaining() bool {
	return c.nextRow < c.height
}

// NextRow returns the first unclaimed row.
func (c *Cursor) NextRow() int {
	return c.nextRow
}

type blockPlanner struct {
	blocks  map[int]Chunk
	pending int
}

func newBlockPlanner(height, workers int) *blockPlanner {
	p := &blockPlanner{blocks: make(map[int]Chunk, workers)}
	per := (height + workers - 1) / workers
	for i := 0; i < workers; i++ {
		start := i * per
		if start >= height {
			break
		}
		rows := per
		if start+rows > height {
			rows = height - start
		}
		p.blocks[i+1] = Chunk{StartRow: start, Rows: rows}
		p.pending++
	}
	return p
}

func (p *blockPlanner) Next(rank int) (Chunk, bool) {
	ch, ok := p.blocks[rank]
	if !ok {
		return Chunk{}, false
	}
	delete(p.blocks, rank)
	p.pending--
	return ch, true
}

func (p *blockPlanner) Remaining() bool {
	return p.pending > 0
}

type cyclicPlanner struct {
	height  int
	workers int
	next    []int
	pending int
}

func newCyclicPlanner(height, workers int) *cyclicPlanner {
	p := &cyclicPlanner{
		height:  height,
		workers: workers,
		next:    make([]int, workers),
		pending: height,
	}
	for i := range p.next {
		p.next[i] = i
	}
	return p
}

func (p *cyclicPlanner) Next(rank int) (Chunk, bool) {
	i := rank - 1
	if i < 0 || i >= p.workers || p.next[i] >= p.height {
		return Chunk{}, false
	}
	ch := Chunk{StartRow: p.next[i], Rows: 1}
	p.next[i] += p.workers
	p.pending--
	return ch, true
}

func (p *cyclicPlanner) Remaining() bool {
	return p.pending > 0
}
