package middleware

import (
	"net/http"
	"strings"
)

// AuthMiddleware gates the API behind the 'authenticated=true' cookie.
// The login endpoint, the camera upload path and the metrics scrape
// endpoint stay open; cameras and Prometheus cannot log in.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/login" ||
			r.URL.Path == "/metrics" ||
			strings.HasPrefix(r.URL.Path, "/api/camera") {
			next.ServeHTTP(w, r)
			return
		}

		cookie, err := r.Cookie("authenticated")
		if err != nil || cookie.Value != "true" {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
