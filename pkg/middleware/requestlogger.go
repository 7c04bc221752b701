package middleware

import (
	"log/slog"
	"net/http"

	"github.com/utafrali/OnlineStore/pkg/logger"
)

// UserIDHeader identifies the acting user. Authentication is handled
// upstream; the header is only used to enrich logs.
const UserIDHeader = "X-User-ID"

// RequestLogger stores a logger enriched with correlation, user and trace
// ids in the request context. Mount it after RequestLogging and Tracing.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if uid := r.Header.Get(UserIDHeader); uid != "" {
				ctx = logger.WithUserID(ctx, uid)
			}
			ctx = logger.NewContext(ctx, logger.WithContext(ctx, base))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
