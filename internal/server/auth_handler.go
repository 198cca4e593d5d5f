package server

import (
	"net/http"

	"github.com/jonathan/cv-optimizer/internal/server/middleware"
)

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Name     string `json:"name" validate:"max=200"`
	Email    string `json:"email" validate:"required,email,max=320"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UpdatePasswordRequest is the body of POST /api/auth/password.
type UpdatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,max=72"`
}

// SessionResponse is returned by register and login.
type SessionResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

// AuthHandler handles authentication-related HTTP requests.
type AuthHandler struct {
	userService  *UserService
	jwtService   *JWTService
	cookieSecure bool
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(userService *UserService, jwtService *JWTService, cookieSecure bool) *AuthHandler {
	return &AuthHandler{
		userService:  userService,
		jwtService:   jwtService,
		cookieSecure: cookieSecure,
	}
}

// Register handles user registration requests.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(w, r, err)
		return
	}

	user, err := h.userService.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		fail(w, r, err)
		return
	}
	h.startSession(w, r, user)
}

// Login handles user login requests.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(w, r, err)
		return
	}

	user, err := h.userService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		fail(w, r, err)
		return
	}
	h.startSession(w, r, user)
}

// Logout clears the session cookie. Tokens are stateless, so there is nothing to revoke.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	middleware.ClearSessionCookie(w, h.cookieSecure)
	success(w, r, nil)
}

// Me returns the authenticated user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		errorResponse(w, http.StatusUnauthorized, "authentication required")
		return
	}
	user, err := h.userService.Get(r.Context(), userID)
	if err != nil {
		fail(w, r, err)
		return
	}
	success(w, r, map[string]any{"user": user})
}

// UpdatePassword handles password update requests for the authenticated user.
func (h *AuthHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		errorResponse(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req UpdatePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(w, r, err)
		return
	}

	if err := h.userService.UpdatePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		fail(w, r, err)
		return
	}
	success(w, r, map[string]string{"message": "password updated"})
}

func (h *AuthHandler) startSession(w http.ResponseWriter, r *http.Request, user *User) {
	token, err := h.jwtService.GenerateToken(user.ID, user.Email)
	if err != nil {
		fail(w, r, err)
		return
	}
	middleware.SetSessionCookie(w, token, int(h.jwtService.TTL().Seconds()), h.cookieSecure)
	success(w, r, SessionResponse{User: user, Token: token})
}
