package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/AymanSha3ban/MUC-Library/internal/application/verification"
	"github.com/AymanSha3ban/MUC-Library/internal/domain"
	"github.com/AymanSha3ban/MUC-Library/internal/pkg/validate"
)

// VerificationHandler issues and redeems emailed login codes.
type VerificationHandler struct {
	svc         verification.Service
	emailDomain string
}

func NewVerificationHandler(svc verification.Service, emailDomain string) *VerificationHandler {
	return &VerificationHandler{svc: svc, emailDomain: emailDomain}
}

func (h *VerificationHandler) Issue(w http.ResponseWriter, r *http.Request) {
	var req verification.IssueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := h.svc.Issue(r.Context(), req.Email); err != nil {
		if errors.Is(err, domain.ErrInvalidDomain) {
			writeError(w, http.StatusBadRequest, "Invalid email domain. Must be "+h.emailDomain)
			return
		}
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "Sent"})
}

func (h *VerificationHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	var req verification.RedeemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := h.svc.Redeem(r.Context(), req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, VerifiedEnvelope{
		Message:     "Verified",
		RedirectURL: res.RedirectURL,
		Role:        res.Role,
	})
}
