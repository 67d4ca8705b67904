package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/bluecart/commerce/internal/transport/http/response"
)

const requestIDHeader = "X-Request-ID"

// RequestID trusts an inbound X-Request-ID if present, otherwise mints one,
// and echoes it on the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(response.WithRequestID(r.Context(), id)))
	})
}
