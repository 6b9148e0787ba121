// Package transport owns the websocket edge of the planner: the
// upgrade handshake, the join parameter checks, and the per-client
// read/write pumps. Everything behind it goes through the room
// registry.
package transport

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/dooshiifox/splatoon-comp/planner/go/internal/v1/logging"
	"github.com/dooshiifox/splatoon-comp/planner/go/internal/v1/metrics"
	"github.com/dooshiifox/splatoon-comp/planner/go/internal/v1/protocol"
	"github.com/dooshiifox/splatoon-comp/planner/go/internal/v1/room"
	"github.com/dooshiifox/splatoon-comp/planner/go/internal/v1/types"
)

// registry is the slice of *room.App the transport needs.
type registry interface {
	CheckPassword(name types.RoomName, password string) *protocol.JoinError
	Join(ctx context.Context, p room.JoinParams) (uuid.UUID, *protocol.JoinError)
	Dispatch(ctx context.Context, roomName types.RoomName, addr types.Addr, conn types.ClientConn, data []byte)
	DisconnectUser(ctx context.Context, roomName types.RoomName, addr types.Addr) bool
}

// Hub accepts websocket connections and hands admitted clients to the
// room registry.
type Hub struct {
	app            registry
	allowedOrigins []string
}

// NewHub wires the websocket edge to a registry. An empty origin list
// allows every origin.
func NewHub(app registry, allowedOrigins []string) *Hub {
	return &Hub{app: app, allowedOrigins: allowedOrigins}
}

// writeBufferPool is shared across upgrades so idle connections do not
// pin per-connection write buffers.
var writeBufferPool = &sync.Pool{}

// ServeWs runs the join handshake. The socket is always upgraded
// first; a handshake that fails validation afterwards is answered
// with a descriptive close frame so the client can tell the user why.
func (h *Hub) ServeWs(c *gin.Context) {
	ctx := c.Request.Context()

	conn, err := h.upgrade(c)
	if err != nil {
		// The upgrader already answered over HTTP.
		return
	}

	params, jErr := parseJoinParams(c)
	if jErr == nil {
		jErr = h.app.CheckPassword(params.RoomName, params.Password)
	}
	if jErr != nil {
		reject(ctx, conn, jErr)
		return
	}

	addr := types.Addr(c.Request.RemoteAddr)
	client := newClient(conn, h.app, params.RoomName, addr)
	params.Addr = addr
	params.Conn = client

	if _, jErr := h.app.Join(ctx, params); jErr != nil {
		reject(ctx, conn, jErr)
		return
	}

	metrics.IncConnection()
	go client.writePump()
	go client.readPump()
}

// upgrade performs the websocket handshake. Requests that are not
// websocket upgrades, or that fail the origin check, get a plain HTTP
// error instead of a socket.
func (h *Hub) upgrade(c *gin.Context) (wsConnection, error) {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return originAllowed(r, h.allowedOrigins)
		},
		WriteBufferPool: writeBufferPool,
		Error: func(w http.ResponseWriter, r *http.Request, status int, reason error) {
			logging.Warn(r.Context(), "Rejecting websocket upgrade",
				zap.Int("status", status),
				zap.Error(reason),
			)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"type":"websocket_error"}`))
		},
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// reject closes a just-upgraded socket with the refusal's code and
// reason, so the client never becomes a room member.
func reject(ctx context.Context, conn wsConnection, jErr *protocol.JoinError) {
	logging.Info(ctx, "Refusing join",
		zap.Int("code", jErr.Code()),
		zap.ByteString("reason", jErr.Reason()),
	)

	deadline := time.Now().Add(writeWait)
	msg := websocket.FormatCloseMessage(jErr.Code(), string(jErr.Reason()))
	if err := conn.WriteControl(websocket.CloseMessage, msg, deadline); err != nil {
		logging.Warn(ctx, "Failed to send rejection close frame", zap.Error(err))
	}
	conn.Close()
}
