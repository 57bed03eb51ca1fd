package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"workshop/src/app/http/response"
)

// Recovery turns a panic in any later handler into a generic 500 and logs it
// with the stack. Panics with http.ErrAbortHandler are re-raised so net/http
// can drop the connection as intended.
func Recovery(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(rec)
			}

			// RequestID runs after Recovery, so the scoped logger may be missing.
			l := log
			if v, ok := c.Get(LoggerKey); ok {
				if scoped, ok := v.(*slog.Logger); ok {
					l = scoped
				}
			}
			l.Error("panic recovered",
				"panic", rec,
				"method", c.Request.Method,
				"route", c.FullPath(),
				"stack", string(debug.Stack()),
			)

			response.InternalError(c, GetRequestID(c))
		}()

		c.Next()
	}
}
