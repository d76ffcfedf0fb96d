package handlers

import (
	"net/http"

	"homewatch/internal/config"
	"homewatch/internal/logger"
)

// LoginHandler checks the posted password and sets the auth cookie.
func LoginHandler(cfg *config.Config, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		password := r.FormValue("password")
		if password != cfg.Password {
			logger.Warning("Failed login attempt from %s", r.RemoteAddr)
			http.Error(w, "Invalid password", http.StatusUnauthorized)
			return
		}
		http.SetCookie(w, &http.Cookie{
			Name:     "authenticated",
			Value:    "true",
			Path:     "/",
			HttpOnly: true,
		})
		w.Write([]byte("OK"))
	}
}

// LogoutHandler clears the authentication cookie.
func LogoutHandler(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:   "authenticated",
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
	w.Write([]byte("OK"))
}
