package mid

import (
	"context"
	"net/http"

	"github.com/ardanlabs/chaindb/foundation/web"
)

// Cors sets the response headers needed for Cross-Origin Resource Sharing.
// The schema routes are read only so only GET and OPTIONS are advertised.
func Cors(origin string) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Origin, Accept, Content-Type, Accept-Encoding")

			return handler(ctx, w, r)
		}

		return h
	}

	return m
}
