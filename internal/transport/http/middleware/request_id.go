package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/carlpacpaco9-design/HRIS-sub001/internal/requestctx"
	"github.com/carlpacpaco9-design/HRIS-sub001/internal/transport/http/shared"
)

// RequestID tags the request with an id, reusing X-Request-ID when the
// caller sent one, and records the client address for audit entries.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-ID")
		if reqID == "" || len(reqID) > 128 {
			reqID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", reqID)
		ctx := requestctx.WithRequestID(r.Context(), reqID)
		ctx = requestctx.WithClientIP(ctx, shared.ClientIP(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func GetRequestID(ctx context.Context) string {
	return requestctx.GetRequestID(ctx)
}
