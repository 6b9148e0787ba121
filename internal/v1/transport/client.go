package transport

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/dooshiifox/splatoon-comp/planner/go/internal/v1/logging"
	"github.com/dooshiifox/splatoon-comp/planner/go/internal/v1/metrics"
	"github.com/dooshiifox/splatoon-comp/planner/go/internal/v1/types"
)

const (
	// writeWait bounds how long a single frame write may take before
	// the connection is considered dead.
	writeWait = 10 * time.Second

	// sendQueueSize is the per-client frame buffer. A client that lets
	// this many frames pile up is evicted rather than allowed to stall
	// the room.
	sendQueueSize = 512
)

// wsConnection is the slice of *websocket.Conn the client needs.
// Tests substitute their own.
type wsConnection interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	Close() error
	SetWriteDeadline(t time.Time) error
}

// frame is one queued outbound websocket message.
type frame struct {
	messageType int
	data        []byte
}

// Client is one admitted websocket connection. The room layer talks
// to it through types.ClientConn: frames are queued on a buffered
// channel and drained by writePump on the client's own goroutine, so
// fan-out never blocks on a slow socket.
type Client struct {
	conn wsConnection
	app  registry
	room types.RoomName
	addr types.Addr

	mu     sync.Mutex
	closed bool
	send   chan frame
}

func newClient(conn wsConnection, app registry, roomName types.RoomName, addr types.Addr) *Client {
	return &Client{
		conn: conn,
		app:  app,
		room: roomName,
		addr: addr,
		send: make(chan frame, sendQueueSize),
	}
}

// SendRaw queues a pre-serialized text frame. Frames for a closed
// client are dropped.
func (c *Client) SendRaw(data []byte) {
	c.enqueue(frame{messageType: websocket.TextMessage, data: data})
}

// SendPing queues a ping control frame.
func (c *Client) SendPing() {
	c.enqueue(frame{messageType: websocket.PingMessage})
}

// enqueue hands a frame to writePump. The closed check and the send
// share the mutex with Disconnect, so the channel can never be closed
// between them.
func (c *Client) enqueue(f frame) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	select {
	case c.send <- f:
		c.mu.Unlock()
	default:
		c.mu.Unlock()
		logging.Warn(context.Background(), "Client send queue full, evicting slow consumer",
			zap.String("room", string(c.room)),
			zap.String("addr", string(c.addr)),
		)
		c.Disconnect()
	}
}

// Disconnect closes the send queue, which lets writePump drain the
// remaining frames, send a close frame, and drop the connection. Safe
// to call more than once.
func (c *Client) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// readPump feeds inbound text frames to the registry until the
// connection dies, then runs the departure sequence.
func (c *Client) readPump() {
	defer func() {
		c.app.DisconnectUser(context.Background(), c.room, c.addr)
		c.conn.Close()
		metrics.DecConnection()
	}()

	for {
		messageType, data, err := c.conn.ReadMessage()
		if err != nil {
			break
		}
		if messageType != websocket.TextMessage {
			continue
		}
		c.app.Dispatch(context.Background(), c.room, c.addr, c, data)
	}
}

// writePump drains the send queue onto the socket. When the queue
// closes it says goodbye with a close frame; the read side notices
// the dropped connection and cleans up.
func (c *Client) writePump() {
	defer c.conn.Close()

	for f := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(f.messageType, f.data); err != nil {
			logging.Error(context.Background(), "Failed to write frame",
				zap.String("room", string(c.room)),
				zap.String("addr", string(c.addr)),
				zap.Error(err),
			)
			return
		}
	}
	_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}
