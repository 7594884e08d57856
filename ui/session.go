package ui

import (
	"context"
	"net/http"

	"datapilot/domain/core"
	"datapilot/ports"
)

type contextKey int

const sessionContextKey contextKey = iota

// withSession resolves the browser session from the ID cookie, issuing a
// fresh cookie when none exists or the value is not a valid UUID.
func (a *App) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := a.sessionID(w, r)
		sess := a.store.Get(id)
		ctx := context.WithValue(r.Context(), sessionContextKey, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *App) sessionID(w http.ResponseWriter, r *http.Request) core.SessionID {
	if cookie, err := r.Cookie(a.cfg.Session.CookieName); err == nil {
		if id, err := core.ParseSessionID(cookie.Value); err == nil {
			return id
		}
	}

	id := core.NewSessionID()
	http.SetCookie(w, &http.Cookie{
		Name:     a.cfg.Session.CookieName,
		Value:    id.String(),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(a.cfg.Session.TTL.Seconds()),
	})
	return id
}

// session returns the session attached by withSession
func (a *App) session(r *http.Request) ports.Session {
	sess, _ := r.Context().Value(sessionContextKey).(ports.Session)
	return sess
}
