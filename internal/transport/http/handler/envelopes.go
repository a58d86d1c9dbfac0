package handler

import (
	"encoding/json"
	"net/http"

	"github.com/AymanSha3ban/MUC-Library/internal/domain"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// VerifiedEnvelope is returned by a successful redemption.
type VerifiedEnvelope struct {
	Message     string `json:"message"`
	RedirectURL string `json:"redirectUrl"`
	Role        string `json:"role"`
}

// ProfileEnvelope wraps the caller's profile.
type ProfileEnvelope struct {
	Profile *domain.Profile `json:"profile"`
}

// RolesEnvelope describes the role policy.
type RolesEnvelope struct {
	Roles  []string `json:"roles"`
	Admins []string `json:"admins"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}
