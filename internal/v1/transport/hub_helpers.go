package transport

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dooshiifox/splatoon-comp/planner/go/internal/v1/logging"
	"github.com/dooshiifox/splatoon-comp/planner/go/internal/v1/protocol"
	"github.com/dooshiifox/splatoon-comp/planner/go/internal/v1/room"
	"github.com/dooshiifox/splatoon-comp/planner/go/internal/v1/types"
)

// parseJoinParams validates the handshake query parameters in a fixed
// order, so a client with several mistakes always sees the same one
// first. The canvas parameter is best-effort: an unparseable value is
// treated as absent rather than refused.
func parseJoinParams(c *gin.Context) (room.JoinParams, *protocol.JoinError) {
	var p room.JoinParams

	if v, err := strconv.Atoi(c.Query("protocol")); err != nil || v != protocol.ProtocolVersion {
		return p, protocol.ErrProtocolMismatch()
	}

	roomName := c.Query("room")
	if roomName == "" {
		return p, protocol.ErrRoomMissing()
	}
	if len(roomName) < protocol.RoomNameMinLen || len(roomName) > protocol.RoomNameMaxLen {
		return p, protocol.ErrRoomInvalidLength(len(roomName))
	}
	p.RoomName = types.RoomName(roomName)

	username := c.Query("username")
	if username == "" {
		return p, protocol.ErrUsernameMissing()
	}
	if len(username) < protocol.UsernameMinLen || len(username) > protocol.UsernameMaxLen {
		return p, protocol.ErrUsernameInvalidLength(len(username))
	}
	p.Username = username

	if raw := c.Query("color"); raw != "" {
		color, err := types.ParseColor(raw)
		if err != nil {
			return p, protocol.ErrColorInvalid()
		}
		p.Color = &color
	}

	if raw := c.Query("canvas"); raw != "" {
		if v, err := strconv.ParseUint(raw, 10, 16); err == nil {
			canvas := types.CanvasID(v)
			p.Canvas = &canvas
		} else {
			logging.Warn(c.Request.Context(), "Ignoring unparseable canvas parameter",
				zap.String("canvas", raw),
			)
		}
	}

	p.Password = c.Query("password")
	return p, nil
}

// originAllowed checks the request origin against the configured
// list. Requests without an Origin header are allowed; they come from
// non-browser clients that CORS cannot protect anyway.
func originAllowed(r *http.Request, allowedOrigins []string) bool {
	if len(allowedOrigins) == 0 {
		return true
	}

	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	originURL, err := url.Parse(origin)
	if err != nil {
		logging.Warn(r.Context(), "Invalid origin URL", zap.String("origin", origin), zap.Error(err))
		return false
	}

	for _, allowed := range allowedOrigins {
		allowedURL, err := url.Parse(allowed)
		if err != nil {
			continue
		}
		if originURL.Scheme == allowedURL.Scheme && originURL.Host == allowedURL.Host {
			return true
		}
	}

	logging.Warn(r.Context(), "Origin not in allowed list",
		zap.String("origin", origin),
		zap.Strings("allowed_origins", allowedOrigins),
	)
	return false
}
