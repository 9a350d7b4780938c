package middleware

import (
	"github.com/gin-gonic/gin"
	ulid "github.com/oklog/ulid/v2"
)

const (
	HeaderRequestID = "X-Request-Id"
	CtxRequestIDKey = "request_id"
)

// RequestID tags every request with a ULID so access-log lines can be
// correlated. An id supplied by the caller is kept as-is.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(HeaderRequestID)
		if rid == "" {
			rid = ulid.Make().String()
		}
		c.Set(CtxRequestIDKey, rid)
		c.Header(HeaderRequestID, rid)
		c.Next()
	}
}
