// Package requestid tags every request with a UUID so log lines and
// audit records from one request can be correlated.
package requestid

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// Header is the response header carrying the request ID.
const Header = "X-Request-ID"

type ctxKey struct{}

// Middleware assigns a request ID to each inbound request. An ID
// supplied by a trusted proxy in X-Request-ID is kept, otherwise a new
// UUID is generated. The ID is stored in the request context and echoed
// on the response.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(Header)
		if id == "" {
			id = uuid.NewString()
		}
		ctx := context.WithValue(r.Context(), ctxKey{}, id)
		w.Header().Set(Header, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// FromContext returns the request ID, or "" when the middleware did not
// run for this request.
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}
