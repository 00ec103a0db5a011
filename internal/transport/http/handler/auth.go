package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/unalone/unalone-api/internal/application/auth"
	"github.com/unalone/unalone-api/internal/application/session"
	"github.com/unalone/unalone-api/internal/domain"
	"github.com/unalone/unalone-api/internal/pkg/validate"
	"github.com/unalone/unalone-api/internal/transport/http/cookie"
	"github.com/unalone/unalone-api/internal/transport/http/middleware"
)

// AuthHandler handles the /auth endpoints: OTP issuance and verification,
// registration, login, token refresh, logout and identity lookup.
type AuthHandler struct {
	authSvc    auth.Service
	sessionSvc session.Service
	cookieOpts cookie.Options
	accessTTL  time.Duration
	sessionTTL time.Duration
}

func NewAuthHandler(authSvc auth.Service, sessionSvc session.Service, cookieOpts cookie.Options, accessTTL, sessionTTL time.Duration) *AuthHandler {
	return &AuthHandler{
		authSvc:    authSvc,
		sessionSvc: sessionSvc,
		cookieOpts: cookieOpts,
		accessTTL:  accessTTL,
		sessionTTL: sessionTTL,
	}
}

func (h *AuthHandler) SendOTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}
	if err := h.authSvc.SendOTP(r.Context(), req.Email); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "OTP sent"})
}

func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
		OTP   string `json:"otp"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.OTP == "" {
		writeError(w, http.StatusBadRequest, "email and otp are required")
		return
	}
	if err := h.authSvc.VerifyOTP(r.Context(), req.Email, req.OTP); err != nil {
		// A missing record is a client problem here (never sent or already
		// consumed), not a 404 on some resource.
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "Email verified"})
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	result, err := h.authSvc.Register(r.Context(), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	h.setAuthCookies(w, result)
	writeJSON(w, http.StatusOK, UserEnvelope{Message: "User registered successfully", User: result.User})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}
	result, err := h.authSvc.Login(r.Context(), req)
	if err != nil {
		// Bad credentials come back as a plain 400 with a constant
		// message; the response never reveals whether the email exists.
		if errors.Is(err, domain.ErrUnauthorized) {
			writeError(w, http.StatusBadRequest, "invalid credentials")
			return
		}
		writeDomainError(w, err)
		return
	}
	h.setAuthCookies(w, result)
	writeJSON(w, http.StatusOK, UserEnvelope{Message: "Login successful", User: result.User})
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	c, err := r.Cookie(cookie.SessionName)
	if err != nil || c.Value == "" {
		writeError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}
	bearer, err := h.sessionSvc.Refresh(r.Context(), c.Value)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	cookie.SetAccess(w, bearer, h.accessTTL, h.cookieOpts)
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "token refreshed"})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(cookie.SessionName); err == nil && c.Value != "" {
		if err := h.sessionSvc.Logout(r.Context(), c.Value); err != nil {
			writeDomainError(w, err)
			return
		}
	}
	cookie.ClearAuth(w, h.cookieOpts)
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "logged out"})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}
	u, err := h.sessionSvc.CurrentUser(r.Context(), claims.UserID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, UserEnvelope{User: u})
}

func (h *AuthHandler) setAuthCookies(w http.ResponseWriter, result *auth.AuthResult) {
	cookie.SetAccess(w, result.Bearer, h.accessTTL, h.cookieOpts)
	cookie.SetSession(w, result.Session.SessionID, h.sessionTTL, h.cookieOpts)
}
