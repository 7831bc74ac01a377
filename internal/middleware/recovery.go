package middleware

import (
	"log"
	"net/http"
	"runtime/debug"

	"hostel-backend/pkg/utils"
)

// PanicRecovery turns a handler panic into a 500 instead of killing the
// connection, logging the stack with the request that triggered it.
func PanicRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				log.Printf("[Recovery] panic on %s %s: %v\n%s", r.Method, r.URL.Path, v, debug.Stack())
				utils.JSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			}
		}()

		next.ServeHTTP(w, r)
	})
}
