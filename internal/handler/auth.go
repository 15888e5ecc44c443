package handler

import (
	"errors"
	"net/http"

	"github.com/rosterhq/rosterd/internal/server/middleware"
	"github.com/rosterhq/rosterd/internal/service"
	"github.com/rosterhq/rosterd/internal/store"
)

// AuthHandler serves the login and token-verification endpoints.
type AuthHandler struct {
	store   *store.Store
	authSvc *service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(st *store.Store, authSvc *service.AuthService) *AuthHandler {
	return &AuthHandler{store: st, authSvc: authSvc}
}

// loginRequest is the expected payload for the Login endpoint.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// loginResponse is the response payload for a successful login.
type loginResponse struct {
	Token     string `json:"token"`
	TokenType string `json:"token_type"`
	ExpiresIn int    `json:"expires_in"`
	AdminID   int64  `json:"admin_id"`
	Username  string `json:"username"`
}

// Login authenticates an administrator and returns a signed session token.
// An unknown username and a wrong password produce the identical response so
// the endpoint does not leak which usernames exist.
// POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	admin, err := h.store.GetAdminByUsername(r.Context(), req.Username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		writeError(w, http.StatusInternalServerError, "Authentication error")
		return
	}

	if err := service.CheckPassword(admin.PasswordHash, req.Password); err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := h.authSvc.IssueToken(admin.ID, admin.Username)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to issue token")
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Token:     token,
		TokenType: "bearer",
		ExpiresIn: int(h.authSvc.TTL().Seconds()),
		AdminID:   admin.ID,
		Username:  admin.Username,
	})
}

// Verify confirms the presented token and echoes the identity it encodes.
// The route sits behind the Authenticate middleware, so reaching the handler
// means validation already succeeded.
// POST /api/auth/verify
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r.Context())
	if principal == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"valid":    true,
		"admin_id": principal.AdminID,
		"username": principal.Username,
	})
}
