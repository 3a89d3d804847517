package handler

import (
	"net/http"

	"github.com/Rrens/support-chat/internal/api/response"
	"github.com/Rrens/support-chat/internal/domain"
	"github.com/Rrens/support-chat/internal/service"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Signup handles user registration
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var input domain.UserCreate
	if !decodeBody(w, r, &input) {
		return
	}

	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, validationMessage(err))
		return
	}

	token, err := h.authService.Signup(r.Context(), input)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Created(w, token)
}

// Login handles user login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input domain.UserLogin
	if !decodeBody(w, r, &input) {
		return
	}

	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, validationMessage(err))
		return
	}

	token, err := h.authService.Login(r.Context(), input)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.OK(w, token)
}
