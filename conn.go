package remotemandel

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hnakamur/ltsvlog"
	"github.com/j3hempsey/remotemandel/msg"
)

// ConnConfig holds the websocket settings of a worker connection.
type ConnConfig struct {
	// Time allowed to write a message to the peer.
	WriteWait time.Duration

	// Time allowed to read the next pong message from the peer.
	PongWait time.Duration

	// Send pings to peer with this period. Must be less than PongWait.
	PingPeriod time.Duration

	// Maximum message size allowed from peer. A chunk result takes about
	// 5 bytes per pixel.
	MaxMessageSize int64

	// Capacity of the outbound frame queue.
	SendChannelLength int
}

// DefaultConnConfig returns the default connection settings.
func DefaultConnConfig() ConnConfig {
	pongWait := 60 * time.Second
	return ConnConfig{
		WriteWait:         10 * time.Second,
		PongWait:          pongWait,
		PingPeriod:        (pongWait * 9) / 10,
		MaxMessageSize:    64 << 20,
		SendChannelLength: 256,
	}
}

// Conn is a middleman between the websocket connection of a worker and the hub.
type Conn struct {
	hub    *Hub
	ws     *websocket.Conn
	logger ltsvlog.LogWriter
	config ConnConfig

	// Buffered channel of outbound frames.
	send chan []byte

	workerID string

	// rank is set by the hub on registration.
	rank int
}

// NewConn wraps an upgraded websocket connection of the worker with the given ID.
func NewConn(ws *websocket.Conn, workerID string, logger ltsvlog.LogWriter, config ConnConfig) *Conn {
	return &Conn{
		ws:       ws,
		logger:   logger,
		config:   config,
		send:     make(chan []byte, config.SendChannelLength),
		workerID: workerID,
	}
}

// RegisterToHub asks the hub for a rank. On success the registration result
// is already queued on the connection. On failure the error is reported to
// the worker and the connection is closed.
func (c *Conn) RegisterToHub(hub *Hub) error {
	c.hub = hub
	resultC := make(chan error)
	select {
	case hub.registerWorkerC <- registerWorkerRequest{conn: c, resultC: resultC}:
	case <-hub.doneC:
		c.ws.Close()
		return errHubStopped
	}
	err := <-resultC
	if err == nil {
		return nil
	}

	res := msg.RegisterWorkerResult{Error: err.Error()}
	message, merr := msg.Marshal(msg.RegisterWorkerResultMsg, &res)
	if merr == nil {
		c.write(websocket.BinaryMessage, message)
	}
	c.write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, err.Error()))
	c.ws.Close()
	return err
}

// Run pumps frames in both directions until the connection is closed.
func (c *Conn) Run() {
	go c.writePump()
	c.readPump()
}

// readPump pumps chunk results from the websocket connection to the hub.
func (c *Conn) readPump() {
	defer func() {
		select {
		case c.hub.unregisterWorkerC <- c:
		case <-c.hub.doneC:
		}
		c.ws.Close()
	}()
	c.ws.SetReadLimit(c.config.MaxMessageSize)
	c.ws.SetReadDeadline(time.Now().Add(c.config.PongWait))
	c.ws.SetPongHandler(func(string) error { c.ws.SetReadDeadline(time.Now().Add(c.config.PongWait)); return nil })
	for {
		wsMsgType, frame, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Err(ltsvlog.Err(err).String("msg", "read error").
					String("workerID", c.workerID).Int("rank", c.rank).Stack(""))
			} else if c.logger.DebugEnabled() {
				c.logger.Debug().String("msg", "connection closed").String("workerID", c.workerID).
					Int("rank", c.rank).Log()
			}
			return
		}
		if wsMsgType != websocket.BinaryMessage {
			c.logger.Err(ltsvlog.Err(errUnexpectedWSMessage).String("workerID", c.workerID).
				Int("wsMsgType", wsMsgType).Stack(""))
			return
		}
		f, err := msg.Open(frame)
		if err != nil || f.Type != msg.ChunkResultMsg {
			c.logger.Err(ltsvlog.Err(errUnexpectedMessage).String("workerID", c.workerID).
				Int("rank", c.rank).Stack(""))
			return
		}

		select {
		case c.hub.inboundC <- Envelope{Source: c.rank, Frame: frame}:
		case <-c.hub.doneC:
			return
		}
	}
}

// write writes a message with the given message type and payload.
func (c *Conn) write(mt int, payload []byte) error {
	c.ws.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
	return c.ws.WriteMessage(mt, payload)
}

// writePump pumps frames from the hub to the websocket connection.
func (c *Conn) writePump() {
	ticker := time.NewTicker(c.config.PingPeriod)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				c.write(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.write(websocket.BinaryMessage, message); err != nil {
				c.logger.Err(ltsvlog.Err(err).String("msg", "write error").
					String("workerID", c.workerID).Stack(""))
				return
			}
		case <-ticker.C:
			if err := c.write(websocket.PingMessage, []byte{}); err != nil {
				return
			}
		}
	}
}

// ServeWS returns a handler that upgrades worker requests to websockets and
// registers them with hub. The worker ID is read from the workerIDHeaderName
// request header.
func ServeWS(hub *Hub, workerIDHeaderName string, logger ltsvlog.LogWriter, config ConnConfig) http.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
	return func(w http.ResponseWriter, r *http.Request) {
		workerID := r.Header.Get(workerIDHeaderName)
		if workerID == "" {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Err(ltsvlog.Err(err).String("msg", "failed to upgrade to websocket").Stack(""))
			return
		}
		conn := NewConn(ws, workerID, logger, config)
		if err := conn.RegisterToHub(hub); err != nil {
			logger.Err(ltsvlog.Err(err).String("msg", "failed to register connection to hub").
				String("workerID", workerID).Stack(""))
			return
		}
		conn.Run()
	}
}

var (
	errHubStopped          = errors.New("remotemandel: hub stopped")
	errUnexpectedWSMessage = errors.New("remotemandel: unexpected websocket message type")
	errUnexpectedMessage   = errors.New("remotemandel: unexpected message from worker")
)
