package handler

import (
	"net/http"
	"net/url"

	"github.com/AymanSha3ban/MUC-Library/internal/application/session"
	"github.com/AymanSha3ban/MUC-Library/internal/transport/http/middleware"
)

// SessionHandler turns sign-in links into sessions and serves the caller's profile.
type SessionHandler struct {
	svc         session.Service
	frontendURL string
}

func NewSessionHandler(svc session.Service, frontendURL string) *SessionHandler {
	return &SessionHandler{svc: svc, frontendURL: frontendURL}
}

// Callback consumes a sign-in link and hands the bearer token to the SPA in
// the URL fragment, which never reaches a server log.
func (h *SessionHandler) Callback(w http.ResponseWriter, r *http.Request) {
	tok := r.URL.Query().Get("token")
	if tok == "" {
		writeError(w, http.StatusBadRequest, "token required")
		return
	}
	res, err := h.svc.SignIn(r.Context(), tok)
	if err != nil {
		httpError(w, r, err)
		return
	}
	frag := url.Values{}
	frag.Set("access_token", res.Bearer)
	frag.Set("token_type", "bearer")
	frag.Set("role", res.Identity.Role)
	http.Redirect(w, r, h.frontendURL+"/auth/callback#"+frag.Encode(), http.StatusFound)
}

func (h *SessionHandler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	p, err := h.svc.GetCurrent(r.Context(), claims.Email)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ProfileEnvelope{Profile: p})
}
