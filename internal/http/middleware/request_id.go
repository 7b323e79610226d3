package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"basegraph.app/assist/common/id"
	"basegraph.app/assist/common/logger"
)

const RequestIDHeader = "X-Request-Id"

// RequestID assigns a snowflake id to every request, echoes it in the response
// header and adds it to the log fields of the request context.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !id.Ready() {
			c.Next()
			return
		}

		requestID := id.New()
		c.Header(RequestIDHeader, strconv.FormatInt(requestID, 10))

		ctx := logger.WithLogFields(c.Request.Context(), logger.LogFields{RequestID: logger.Ptr(requestID)})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
