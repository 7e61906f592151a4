package remotemandel

import (
	"golang.org/x/net/context"
)

const (
	// Root is the rank of the coordinator.
	Root = 0

	// AnySource matches a frame from any rank in Recv.
	AnySource = -1
)

// Envelope is a received frame together with the rank that sent it.
type Envelope struct {
	Source int
	Frame  []byte
}

// Endpoint is one participant's view of a fixed process group with ranks
// 0..Size()-1. Frames from a given sender are delivered in the order they were
// sent; there is no ordering across senders. Send and Recv block.
type Endpoint interface {
	Rank() int
	Size() int

	// Send transfers frame to dest. The caller must not touch frame afterwards.
	Send(ctx context.Context, dest int, frame []byte) error

	// Recv returns the next frame from source, or from any rank if source is
	// AnySource.
	Recv(ctx context.Context, source int) (Envelope, error)
}

// mailbox implements the source filter of Recv on top of a single inbound
// channel. Frames from other sources are held back in arrival order.
type mailbox struct {
	inbox   <-chan Envelope
	done    <-chan struct{}
	pending []Envelope
}

func (m *mailbox) recv(ctx context.Context, source int) (Envelope, error) {
	for i, env := range m.pending {
		if source == AnySource || env.Source == source {
			m.pending = append(m.pending[:i], m.pending[i+1:]...)
			return env, nil
		}
	}
	for {
		select {
		case env, ok := <-m.inbox:
			if !ok {
				return Envelope{}, errClosed
			}
			if source == AnySource || env.Source == source {
				return env, nil
			}
			m.pending = append(m.pending, env)
		case <-m.done:
			return Envelope{}, errClosed
		case <-ctx.Done():
			return Envelope{}, ctx.Err()
		}
	}
}
