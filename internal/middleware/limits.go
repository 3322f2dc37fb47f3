package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"
)

const (
	// DefaultMaxBodySize bounds request bodies; large enough for image
	// uploads, small enough to shrug off junk payloads.
	DefaultMaxBodySize int64 = 10 << 20

	// DefaultTimeout bounds handler execution.
	DefaultTimeout = 30 * time.Second
)

// MaxBodySize rejects requests whose body exceeds the limit with 413 and
// caps reads on everything else. With no argument it uses
// DefaultMaxBodySize.
func MaxBodySize(limit ...int64) func(http.Handler) http.Handler {
	max := DefaultMaxBodySize
	if len(limit) > 0 {
		max = limit[0]
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > max {
				http.Error(w, "Request body too large", http.StatusRequestEntityTooLarge)
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, max)
			next.ServeHTTP(w, r)
		})
	}
}

// Timeout cancels the request context and answers 503 when a handler runs
// past the deadline. With no argument it uses DefaultTimeout.
func Timeout(d ...time.Duration) func(http.Handler) http.Handler {
	limit := DefaultTimeout
	if len(d) > 0 {
		limit = d[0]
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), limit)
			defer cancel()

			done := make(chan struct{})
			dw := &deadlineWriter{ResponseWriter: w, done: done}

			go func() {
				defer close(done)
				next.ServeHTTP(dw, r.WithContext(ctx))
			}()

			select {
			case <-done:
			case <-ctx.Done():
				dw.mu.Lock()
				defer dw.mu.Unlock()
				// A truncated in-flight response cannot be salvaged; only
				// answer if nothing was written yet.
				if !dw.wroteHeader {
					dw.wroteHeader = true
					w.WriteHeader(http.StatusServiceUnavailable)
					w.Write([]byte("Request timeout"))
				}
			}
		})
	}
}

// deadlineWriter suppresses writes from a handler that lost the race with
// the timeout, so the handler goroutine cannot corrupt the 503 response.
type deadlineWriter struct {
	http.ResponseWriter
	mu          sync.Mutex
	wroteHeader bool
	done        chan struct{}
}

func (dw *deadlineWriter) WriteHeader(code int) {
	dw.mu.Lock()
	defer dw.mu.Unlock()
	if dw.wroteHeader {
		return
	}
	select {
	case <-dw.done:
	default:
		dw.wroteHeader = true
		dw.ResponseWriter.WriteHeader(code)
	}
}

func (dw *deadlineWriter) Write(b []byte) (int, error) {
	dw.mu.Lock()
	defer dw.mu.Unlock()
	select {
	case <-dw.done:
		return 0, context.DeadlineExceeded
	default:
		if !dw.wroteHeader {
			dw.wroteHeader = true
			dw.ResponseWriter.WriteHeader(http.StatusOK)
		}
		return dw.ResponseWriter.Write(b)
	}
}
