// Package worker connects a worker process to a coordinator over a websocket
// and runs the chunk computation loop on that connection.
package worker

import (
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hnakamur/ltsvlog"
	"github.com/j3hempsey/remotemandel"
	"github.com/j3hempsey/remotemandel/msg"
	"golang.org/x/net/context"
)

// DefaultWorkerIDHeaderName is the request header carrying the worker ID.
const DefaultWorkerIDHeaderName = "X-Worker-ID"

// Config holds the connection settings of a worker.
type Config struct {
	// Wait between attempts to reach a coordinator that is not up yet.
	DelayBeforeReconnecting time.Duration

	// Number of connection attempts before giving up. Zero means no limit.
	MaxConnectAttempts int

	// After sending a close frame, wait this long for the coordinator to
	// close the connection.
	DelayAfterSendingClose time.Duration

	// Time allowed to write a message to the coordinator.
	WriteWait time.Duration

	// Capacity of the inbound frame queue.
	RecvChannelLength int
}

// DefaultConfig returns the default worker settings.
func DefaultConfig() Config {
	return Config{
		DelayBeforeReconnecting: time.Second,
		DelayAfterSendingClose:  time.Second,
		WriteWait:               10 * time.Second,
		RecvChannelLength:       16,
	}
}

// NewPixelFunc builds the pixel function once the geometry of the run is known.
type NewPixelFunc func(reg *msg.RegisterWorkerResult) remotemandel.PixelFunc

// Worker is a websocket participant of a process group. After registration it
// implements remotemandel.Endpoint for its assigned rank.
type Worker struct {
	serverURL          url.URL
	workerIDHeaderName string
	workerID           string
	config             Config
	logger             ltsvlog.LogWriter

	conn    *websocket.Conn
	writeMu sync.Mutex
	reg     msg.RegisterWorkerResult
	inboxC  chan remotemandel.Envelope
	doneC   chan struct{}
	readErr error
}

// NewWorker creates a worker that registers at serverURL under workerID.
func NewWorker(serverURL url.URL, workerIDHeaderName, workerID string, logger ltsvlog.LogWriter, config Config) *Worker {
	return &Worker{
		serverURL:          serverURL,
		workerIDHeaderName: workerIDHeaderName,
		workerID:           workerID,
		config:             config,
		logger:             logger,
	}
}

// Run connects to the coordinator, registers, and computes assignments until
// the coordinator terminates the worker. A lost connection is not recovered.
func (w *Worker) Run(ctx context.Context, newPixel NewPixelFunc) error {
	if err := w.connect(ctx); err != nil {
		return err
	}
	defer w.conn.Close()

	if err := w.register(); err != nil {
		return err
	}

	w.inboxC = make(chan remotemandel.Envelope, w.config.RecvChannelLength)
	w.doneC = make(chan struct{})
	go w.readPump(ctx)

	cw := &remotemandel.Worker{
		Endpoint: w,
		Height:   w.reg.Height,
		Width:    w.reg.Width,
		Pixel:    newPixel(&w.reg),
		Logger:   w.logger,
	}
	if err := cw.Run(ctx); err != nil {
		return err
	}

	w.logger.Info().String("msg", "terminated by coordinator").
		String("workerID", w.workerID).Int("rank", w.reg.Rank).Log()
	// To cleanly close a connection, a worker should send a close
	// frame and wait for the server to close the connection.
	err := w.write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	if err != nil {
		return err
	}
	select {
	case <-w.doneC:
	case <-time.After(w.config.DelayAfterSendingClose):
	}
	return nil
}

func (w *Worker) connect(ctx context.Context) error {
	header := map[string][]string{
		w.workerIDHeaderName: {w.workerID},
	}
	for attempt := 1; ; attempt++ {
		w.logger.Info().String("msg", "connecting to server").String("address", w.serverURL.String()).Log()
		c, _, err := websocket.DefaultDialer.Dial(w.serverURL.String(), header)
		if err == nil {
			w.logger.Info().String("msg", "connected to server").String("address", w.serverURL.String()).Log()
			w.conn = c
			return nil
		}
		w.logger.Info().String("msg", "dial error").String("address", w.serverURL.String()).
			String("err", err.Error()).Int("attempt", attempt).Log()
		if w.config.MaxConnectAttempts > 0 && attempt >= w.config.MaxConnectAttempts {
			return fmt.Errorf("connect to %s: %w", w.serverURL.String(), err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(w.config.DelayBeforeReconnecting):
		}
	}
}

// register reads the registration result, the first frame on the connection.
func (w *Worker) register() error {
	wsMsgType, frame, err := w.conn.ReadMessage()
	if err != nil {
		return fmt.Errorf("read registration result: %w", err)
	}
	if wsMsgType != websocket.BinaryMessage {
		return fmt.Errorf("unexpected websocket message type %d", wsMsgType)
	}
	f, err := msg.Open(frame)
	if err != nil {
		return err
	}
	if f.Type != msg.RegisterWorkerResultMsg {
		return fmt.Errorf("%w: expected %s, got %s", remotemandel.ErrProtocol, msg.RegisterWorkerResultMsg, f.Type)
	}
	if err := f.Decode(&w.reg); err != nil {
		return err
	}
	if w.reg.Error != "" {
		w.logger.Err(ltsvlog.Err(errors.New(w.reg.Error)).String("msg", "failed to register worker").
			String("workerID", w.workerID).Stack(""))
		return fmt.Errorf("register worker %q: %s", w.workerID, w.reg.Error)
	}
	w.logger.Info().String("msg", "registered myself as worker").
		String("workerID", w.workerID).Int("rank", w.reg.Rank).Int("size", w.reg.Size).
		Int("height", w.reg.Height).Int("width", w.reg.Width).Log()
	return nil
}

func (w *Worker) readPump(ctx context.Context) {
	defer close(w.doneC)
	for {
		wsMsgType, frame, err := w.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				w.logger.Err(ltsvlog.Err(err).String("msg", "read error").Stack(""))
			}
			w.readErr = err
			return
		}
		if wsMsgType != websocket.BinaryMessage {
			w.readErr = fmt.Errorf("unexpected websocket message type %d", wsMsgType)
			return
		}
		select {
		case w.inboxC <- remotemandel.Envelope{Source: remotemandel.Root, Frame: frame}:
		case <-ctx.Done():
			return
		}
	}
}

func (w *Worker) write(mt int, payload []byte) error {
	w.writeMu.Lock()
	defer w.writeMu.Unlock()
	w.conn.SetWriteDeadline(time.Now().Add(w.config.WriteWait))
	return w.conn.WriteMessage(mt, payload)
}

// Rank returns the rank assigned on registration.
func (w *Worker) Rank() int { return w.reg.Rank }

// Size returns the size of the process group.
func (w *Worker) Size() int { return w.reg.Size }

// Send writes frame to the coordinator, the only destination a worker has.
func (w *Worker) Send(ctx context.Context, dest int, frame []byte) error {
	if dest != remotemandel.Root {
		return fmt.Errorf("worker %q can only send to the coordinator, not rank %d", w.workerID, dest)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return w.write(websocket.BinaryMessage, frame)
}

// Recv returns the next frame from the coordinator.
func (w *Worker) Recv(ctx context.Context, source int) (remotemandel.Envelope, error) {
	if source != remotemandel.Root && source != remotemandel.AnySource {
		return remotemandel.Envelope{}, fmt.Errorf("worker %q only receives from the coordinator, not rank %d", w.workerID, source)
	}
	select {
	case env := <-w.inboxC:
		return env, nil
	case <-w.doneC:
		select {
		case env := <-w.inboxC:
			return env, nil
		default:
		}
		return remotemandel.Envelope{}, fmt.Errorf("connection to coordinator lost: %v", w.readErr)
	case <-ctx.Done():
		return remotemandel.Envelope{}, ctx.Err()
	}
}
