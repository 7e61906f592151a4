package remotemandel

import (
	"fmt"

	"golang.org/x/net/context"
)

// LocalGroup is a process group whose participants are goroutines of the
// current process. Frames are handed over through buffered channels.
type LocalGroup struct {
	endpoints []*localEndpoint
}

// NewLocalGroup creates a group of size participants. bufferLength is the
// number of frames a participant can have queued before senders block.
func NewLocalGroup(size, bufferLength int) *LocalGroup {
	g := &LocalGroup{endpoints: make([]*localEndpoint, size)}
	for rank := range g.endpoints {
		inbox := make(chan Envelope, bufferLength)
		g.endpoints[rank] = &localEndpoint{
			group:   g,
			rank:    rank,
			inbox:   inbox,
			mailbox: mailbox{inbox: inbox},
		}
	}
	return g
}

// Size returns the number of participants.
func (g *LocalGroup) Size() int {
	return len(g.endpoints)
}

// Endpoint returns the endpoint of the given rank.
func (g *LocalGroup) Endpoint(rank int) Endpoint {
	return g.endpoints[rank]
}

type localEndpoint struct {
	group *LocalGroup
	rank  int
	inbox chan Envelope
	mailbox
}

func (e *localEndpoint) Rank() int { return e.rank }
func (e *localEndpoint) Size() int { return len(e.group.endpoints) }

func (e *localEndpoint) Send(ctx context.Context, dest int, frame []byte) error {
	if dest < 0 || dest >= len(e.group.endpoints) || dest == e.rank {
		return fmt.Errorf("send from rank %d: invalid destination %d", e.rank, dest)
	}
	select {
	case e.group.endpoints[dest].inbox <- Envelope{Source: e.rank, Frame: frame}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *localEndpoint) Recv(ctx context.Context, source int) (Envelope, error) {
	return e.recv(ctx, source)
}
