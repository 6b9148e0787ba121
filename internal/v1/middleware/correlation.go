// Package middleware contains gin middleware shared by the HTTP
// surface.
package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dooshiifox/splatoon-comp/planner/go/internal/v1/logging"
)

// HeaderXCorrelationID carries the correlation id between services.
const HeaderXCorrelationID = "X-Correlation-ID"

// CorrelationID tags every request with a correlation id. An id
// offered by the caller is reused so a request can be traced across
// services; otherwise a fresh one is minted. The id is echoed on the
// response and stored in both the gin context and the request
// context, where handshake log lines pick it up.
func CorrelationID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderXCorrelationID)
		if id == "" {
			id = uuid.New().String()
		}

		c.Header(HeaderXCorrelationID, id)
		c.Set(string(logging.CorrelationIDKey), id)
		c.Request = c.Request.WithContext(
			context.WithValue(c.Request.Context(), logging.CorrelationIDKey, id))

		c.Next()
	}
}
