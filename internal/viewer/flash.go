package viewer

import (
	"errors"
	"log/slog"
	"net/http"
)

const flashCookieName = "spdb_flash"

// Sets a message to show on the next page rendered.
func (s Server) setFlash(w http.ResponseWriter, msg string) {
	encoded, err := s.secureCookie.Encode(flashCookieName, msg)
	if err != nil {
		slog.Error("error encoding flash", "err", err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    encoded,
		Path:     "/",
		Secure:   s.httpsCookies,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Reads the pending flash message and clears it, so it's only shown once.
func (s Server) popFlash(w http.ResponseWriter, r *http.Request) string {
	cookie, err := r.Cookie(flashCookieName)
	if errors.Is(err, http.ErrNoCookie) {
		return ""
	}
	if err != nil {
		slog.Error("error fetching flash cookie", "err", err)
		return ""
	}

	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Path:     "/",
		MaxAge:   -1,
		Secure:   s.httpsCookies,
		HttpOnly: true,
	})

	var msg string
	if err := s.secureCookie.Decode(flashCookieName, cookie.Value, &msg); err != nil {
		slog.Error("error decoding flash", "err", err)
		return ""
	}

	return msg
}
