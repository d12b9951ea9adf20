package middleware

import "net/http"

// AllowedMethods is advertised on preflight responses.
const AllowedMethods = "GET, PUT, PATCH, POST, DELETE"

// CORS applies one permissive cross-origin policy to every response.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		next.ServeHTTP(w, r)
	})
}

// Preflight acknowledges an OPTIONS request and lists the allowed methods.
func Preflight(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Methods", AllowedMethods)
	if requested := r.Header.Get("Access-Control-Request-Headers"); requested != "" {
		w.Header().Set("Access-Control-Allow-Headers", requested)
	}
	w.WriteHeader(http.StatusOK)
}
