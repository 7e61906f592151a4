package remotemandel

import (
	"errors"
	"fmt"
	"sort"

	"github.com/hnakamur/ltsvlog"
	"github.com/j3hempsey/remotemandel/msg"
	"golang.org/x/net/context"
)

// Hub is the rank 0 side of a process group whose workers connect over
// websockets. Workers get ranks 1..size-1 in the order they register. Once
// every rank is taken the group is ready and further registrations are
// rejected; ranks are never reassigned.
//
// Hub implements Endpoint for the coordinator.
type Hub struct {
	logger ltsvlog.LogWriter
	size   int

	// Geometry sent to every worker on registration.
	geometry msg.RegisterWorkerResult

	// Registered workers by ID and by rank. ranks[0] is always nil.
	workers map[string]*Conn
	ranks   []*Conn

	// Register worker requests from connections.
	registerWorkerC chan registerWorkerRequest

	// Unregister worker requests from connections.
	unregisterWorkerC chan *Conn

	// Outbound frames from the coordinator.
	sendToWorkerC chan sendRequest

	// Inbound frames from the connections.
	inboundC chan Envelope

	readyC chan struct{}
	doneC  chan struct{}

	// closed once the group was ready and every worker has disconnected
	goneC chan struct{}

	mailbox
}

// NewHub creates a hub for a group of size ranks computing an image of the
// given dimensions over the given plane.
func NewHub(size, height, width int, plane msg.Plane, logger ltsvlog.LogWriter) *Hub {
	inboundC := make(chan Envelope)
	doneC := make(chan struct{})
	h := &Hub{
		logger: logger,
		size:   size,
		geometry: msg.RegisterWorkerResult{
			Size:   size,
			Height: height,
			Width:  width,
			Plane:  plane,
		},
		workers:           make(map[string]*Conn),
		ranks:             make([]*Conn, 1, size),
		registerWorkerC:   make(chan registerWorkerRequest),
		unregisterWorkerC: make(chan *Conn),
		sendToWorkerC:     make(chan sendRequest),
		inboundC:          inboundC,
		readyC:            make(chan struct{}),
		doneC:             doneC,
		goneC:             make(chan struct{}),
		mailbox:           mailbox{inbox: inboundC, done: doneC},
	}
	if size < 2 {
		close(h.readyC)
		close(h.goneC)
	}
	return h
}

type registerWorkerRequest struct {
	conn    *Conn
	resultC chan error
}

type sendRequest struct {
	dest    int
	frame   []byte
	resultC chan error
}

// Run runs the hub until ctx is done.
func (h *Hub) Run(ctx context.Context) error {
	defer close(h.doneC)
	for {
		select {
		case req := <-h.registerWorkerC:
			req.resultC <- h.register(req.conn)
		case conn := <-h.unregisterWorkerC:
			workerID := conn.workerID
			if h.workers[workerID] != conn {
				continue
			}
			delete(h.workers, workerID)
			close(conn.send)
			h.logger.Info().String("msg", "unregistered worker").
				String("workerID", workerID).Int("rank", conn.rank).
				String("workerIDs", fmt.Sprint(h.workerIDs())).Log()
			h.checkGone()
		case req := <-h.sendToWorkerC:
			req.resultC <- h.send(req.dest, req.frame)
		case <-ctx.Done():
			for workerID, conn := range h.workers {
				close(conn.send)
				delete(h.workers, workerID)
			}
			return nil
		}
	}
}

func (h *Hub) register(conn *Conn) error {
	workerID := conn.workerID
	if _, exists := h.workers[workerID]; exists {
		return fmt.Errorf("worker with ID %q already exists", workerID)
	}
	if len(h.ranks) >= h.size {
		return errors.New("process group is full")
	}

	conn.rank = len(h.ranks)
	res := h.geometry
	res.Rank = conn.rank
	message, err := msg.Marshal(msg.RegisterWorkerResultMsg, &res)
	if err != nil {
		return err
	}
	conn.send <- message

	h.workers[workerID] = conn
	h.ranks = append(h.ranks, conn)
	h.logger.Info().String("msg", "registered worker").
		String("workerID", workerID).Int("rank", conn.rank).
		String("workerIDs", fmt.Sprint(h.workerIDs())).Log()
	if len(h.ranks) == h.size {
		h.logger.Info().String("msg", "process group ready").Int("size", h.size).Log()
		close(h.readyC)
	}
	return nil
}

func (h *Hub) send(dest int, frame []byte) error {
	if dest <= 0 || dest >= len(h.ranks) {
		return fmt.Errorf("send: no worker with rank %d", dest)
	}
	conn := h.ranks[dest]
	if h.workers[conn.workerID] != conn {
		return fmt.Errorf("send: worker %q with rank %d is gone", conn.workerID, dest)
	}
	select {
	case conn.send <- frame:
		return nil
	default:
		close(conn.send)
		delete(h.workers, conn.workerID)
		h.checkGone()
		return fmt.Errorf("send: queue of worker %q with rank %d is full", conn.workerID, dest)
	}
}

func (h *Hub) checkGone() {
	if len(h.workers) == 0 && len(h.ranks) == h.size {
		close(h.goneC)
	}
}

func (h *Hub) workerIDs() []string {
	workerIDs := make([]string, 0, len(h.workers))
	for workerID := range h.workers {
		workerIDs = append(workerIDs, workerID)
	}
	sort.Strings(workerIDs)
	return workerIDs
}

// WaitReady blocks until every worker rank has registered.
func (h *Hub) WaitReady(ctx context.Context) error {
	select {
	case <-h.readyC:
		return nil
	case <-h.doneC:
		return errHubStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// WaitGone blocks until every worker of a ready group has disconnected.
func (h *Hub) WaitGone(ctx context.Context) error {
	select {
	case <-h.goneC:
		return nil
	case <-h.doneC:
		return errHubStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Hub) Rank() int { return Root }
func (h *Hub) Size() int { return h.size }

// Send queues frame on the connection of the worker with rank dest.
func (h *Hub) Send(ctx context.Context, dest int, frame []byte) error {
	resultC := make(chan error, 1)
	select {
	case h.sendToWorkerC <- sendRequest{dest: dest, frame: frame, resultC: resultC}:
	case <-h.doneC:
		return errHubStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	return <-resultC
}

// Recv returns the next chunk result from the given rank, or from any rank.
func (h *Hub) Recv(ctx context.Context, source int) (Envelope, error) {
	env, err := h.recv(ctx, source)
	if err == errClosed {
		return env, errHubStopped
	}
	return env, err
}
