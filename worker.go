package remotemandel

import (
	"fmt"

	"github.com/hnakamur/ltsvlog"
	"github.com/j3hempsey/remotemandel/msg"
	"golang.org/x/net/context"
)

// PixelFunc computes the normalized value of one pixel.
type PixelFunc func(row, col int) float32

// Worker computes the chunks the coordinator assigns to it until it receives
// a Terminate.
type Worker struct {
	Endpoint Endpoint
	Height   int
	Width    int
	Pixel    PixelFunc
	Logger   ltsvlog.LogWriter

	buf []float32
}

// Run receives assignments from the coordinator, computes them and sends back
// the results. It returns nil after a Terminate and sends nothing after that.
func (w *Worker) Run(ctx context.Context) error {
	rank := w.Endpoint.Rank()
	for {
		env, err := w.Endpoint.Recv(ctx, Root)
		if err != nil {
			return fmt.Errorf("rank %d: receive assignment: %w", rank, err)
		}
		f, err := msg.Open(env.Frame)
		if err != nil {
			return fmt.Errorf("%w: rank %d: %v", ErrProtocol, rank, err)
		}
		switch f.Type {
		case msg.TerminateMsg:
			if w.Logger.DebugEnabled() {
				w.Logger.Debug().String("msg", "received terminate").Int("rank", rank).Log()
			}
			return nil
		case msg.AssignmentMsg:
			var a msg.Assignment
			if err := f.Decode(&a); err != nil {
				return fmt.Errorf("%w: rank %d: %v", ErrProtocol, rank, err)
			}
			if err := w.compute(ctx, a); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: rank %d received %s", ErrProtocol, rank, f.Type)
		}
	}
}

func (w *Worker) compute(ctx context.Context, a msg.Assignment) error {
	if a.Rows <= 0 || a.StartRow < 0 || a.StartRow+a.Rows > w.Height {
		return fmt.Errorf("%w: rank %d assigned rows [%d,%d) of %d",
			ErrProtocol, w.Endpoint.Rank(), a.StartRow, a.StartRow+a.Rows, w.Height)
	}
	if w.Logger.DebugEnabled() {
		w.Logger.Debug().String("msg", "computing chunk").Int("rank", w.Endpoint.Rank()).
			Int("startRow", a.StartRow).Int("rows", a.Rows).Log()
	}

	n := a.Rows * w.Width
	if cap(w.buf) < n {
		w.buf = make([]float32, n)
	}
	values := w.buf[:n]
	for i := 0; i < a.Rows; i++ {
		row := a.StartRow + i
		for col := 0; col < w.Width; col++ {
			values[i*w.Width+col] = w.Pixel(row, col)
		}
	}

	// Marshal copies values, buf is reused by the next assignment.
	frame, err := msg.Marshal(msg.ChunkResultMsg, &msg.ChunkResult{StartRow: a.StartRow, Values: values})
	if err != nil {
		return err
	}
	if err := w.Endpoint.Send(ctx, Root, frame); err != nil {
		return fmt.Errorf("rank %d: send chunk result: %w", w.Endpoint.Rank(), err)
	}
	return nil
}
