package api

import (
	"net/http"
	"time"
)

const timeoutBody = `{"Response":{"Message":"request timeout","Error":"the request took too long to process"}}`

// TimeoutMiddleware cancels the request context after timeout and answers 503 if the
// handler has not finished writing by then. A zero timeout disables it.
func TimeoutMiddleware(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if timeout <= 0 {
			return next
		}
		return http.TimeoutHandler(next, timeout, timeoutBody)
	}
}
