package httpx

import "net/http"

type Middleware func(http.Handler) http.Handler

// Chain wraps h so that mws[0] sees the request first.
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// ForPath applies mw only to requests matching method and path exactly. An
// empty method matches any method.
func ForPath(method, path string, mw Middleware) Middleware {
	return func(next http.Handler) http.Handler {
		wrapped := mw(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == path && (method == "" || r.Method == method) {
				wrapped.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
