package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/danamoreau/strandly-backend/pkg/logger"
)

const requestIDHeader = "X-Request-Id"

// RequestID tags every request with an identifier that rides the logger
// context and is echoed back to the caller. An inbound header wins so traces
// can span the mobile client and the API.
func RequestID(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimSpace(r.Header.Get(requestIDHeader))
			if id == "" {
				id = uuid.NewString()
			}
			w.Header().Set(requestIDHeader, id)

			ctx := r.Context()
			if logg != nil {
				ctx = logg.WithRequestID(ctx, id)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
