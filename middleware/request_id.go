package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mymandir/mandir-api/utils"
)

const requestIDHeader = "X-Request-ID"

// RequestID assigns each request a correlation ID, honoring one supplied by
// the client, and echoes it in the response headers and access log.
func RequestID() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		rid := ctx.GetHeader(requestIDHeader)
		if rid == "" {
			rid = uuid.NewString()
		}
		ctx.Set(utils.ContextRequestIDKey, rid)
		ctx.Writer.Header().Set(requestIDHeader, rid)
		ctx.Next()
	}
}
