package middleware

import (
	"net/http"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/angelmondragon/warehouse-backend/pkg/logger"
)

const (
	requestIDHeader    = "X-Request-Id"
	maxRequestIDLength = 128
)

// RequestID echoes a caller-supplied X-Request-Id when it is usable and
// otherwise assigns a fresh UUID.
func RequestID(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID, ok := inboundRequestID(r.Header.Get(requestIDHeader))
			if !ok {
				reqID = uuid.NewString()
			}
			r.Header.Set(requestIDHeader, reqID)
			w.Header().Set(requestIDHeader, reqID)

			ctx := r.Context()
			if logg != nil {
				ctx = logg.WithRequestID(ctx, reqID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// inboundRequestID rejects ids that would pollute logs: overlong values and
// anything outside printable ASCII without spaces.
func inboundRequestID(raw string) (string, bool) {
	id := strings.TrimSpace(raw)
	if id == "" || len(id) > maxRequestIDLength {
		return "", false
	}
	for _, c := range id {
		if c > unicode.MaxASCII || !unicode.IsPrint(c) || c == ' ' {
			return "", false
		}
	}
	return id, true
}
