// Package mid contains the set of middleware functions for the ops API.
package mid

import "net/http"

// Cors sets the response headers needed for Cross-Origin Resource Sharing.
func Cors(origin string) func(http.Handler) http.Handler {

	// This is the actual middleware function to be executed.
	m := func(handler http.Handler) http.Handler {
		h := func(w http.ResponseWriter, r *http.Request) {

			// Set the CORS headers to the response.
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Origin, Accept, Content-Type, Content-Length, Accept-Encoding")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			// Call the next handler.
			handler.ServeHTTP(w, r)
		}

		return http.HandlerFunc(h)
	}

	return m
}
