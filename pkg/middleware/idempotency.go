package middleware

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/utafrali/OnlineStore/pkg/idempotency"
)

const (
	IdempotencyKeyHeader   = "Idempotency-Key"
	IdempotentReplayHeader = "Idempotent-Replayed"
	maxIdempotencyKeyLen   = 255
)

// captureWriter tees the response so it can be stored after the handler
// returns.
type captureWriter struct {
	*statusRecorder
	body bytes.Buffer
}

func (c *captureWriter) Write(b []byte) (int, error) {
	c.body.Write(b)
	return c.statusRecorder.Write(b)
}

// Idempotency replays the stored response for POST requests that repeat an
// Idempotency-Key. Requests without the header pass through. Responses with
// a 5xx status are not stored so the client may retry. If the store is
// unreachable the request is served without protection.
func Idempotency(store idempotency.Store, ttl time.Duration, logger *slog.Logger) func(http.Handler) http.Handler {
	const lockTTL = 30 * time.Second
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(IdempotencyKeyHeader)
			if r.Method != http.MethodPost || key == "" {
				next.ServeHTTP(w, r)
				return
			}
			if len(key) > maxIdempotencyKeyLen {
				writeJSONError(w, http.StatusBadRequest, "INVALID_INPUT", "Idempotency-Key is too long")
				return
			}

			ctx := r.Context()
			scoped := r.Method + ":" + r.URL.Path + ":" + key

			state, rec, err := store.Acquire(ctx, scoped, lockTTL)
			if err != nil {
				logger.WarnContext(ctx, "idempotency store unavailable", slog.String("error", err.Error()))
				next.ServeHTTP(w, r)
				return
			}

			switch state {
			case idempotency.InFlight:
				writeJSONError(w, http.StatusConflict, "REQUEST_IN_PROGRESS", "a request with this Idempotency-Key is still being processed")
				return
			case idempotency.Completed:
				if rec.ContentType != "" {
					w.Header().Set("Content-Type", rec.ContentType)
				}
				w.Header().Set(IdempotentReplayHeader, "true")
				w.WriteHeader(rec.Status)
				_, _ = w.Write(rec.Body)
				return
			}

			cw := &captureWriter{statusRecorder: newStatusRecorder(w)}
			next.ServeHTTP(cw, r)

			// The request context may already be canceled once the client
			// disconnects; finish bookkeeping regardless.
			bg := context.WithoutCancel(ctx)
			if cw.status >= http.StatusInternalServerError {
				if err := store.Release(bg, scoped); err != nil {
					logger.WarnContext(ctx, "release idempotency key", slog.String("error", err.Error()))
				}
				return
			}
			saved := idempotency.Record{
				Status:      cw.status,
				ContentType: cw.Header().Get("Content-Type"),
				Body:        cw.body.Bytes(),
			}
			if err := store.Save(bg, scoped, saved, ttl); err != nil {
				logger.WarnContext(ctx, "save idempotency record", slog.String("error", err.Error()))
			}
		})
	}
}
