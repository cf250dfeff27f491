// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"promptbuddy/internal/middleware"
	"promptbuddy/internal/models"
	"promptbuddy/internal/store"
	"promptbuddy/internal/token"
)

// Auth groups the authentication endpoints.
type Auth struct {
	tokens *token.Store
	users  *store.UserStore
}

// NewAuth creates the Auth handler group.
func NewAuth(tokens *token.Store, users *store.UserStore) *Auth {
	return &Auth{tokens: tokens, users: users}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// userPayload is the public view of a user.
type userPayload struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	Role        string `json:"role"`
}

func publicUser(u *models.User) userPayload {
	return userPayload{
		ID:          u.ID.String(),
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Role:        string(u.Role),
	}
}

// Login verifies credentials and issues a bearer token.
func (a *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decode(w, r, &req) {
		return
	}

	user, err := a.users.FindByEmail(strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		storeError(w, err, "Login failed")
		return
	}
	if user == nil || !a.users.CheckPassword(user, req.Password) {
		respondError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	tok, err := a.tokens.Create(r.Context(), &token.Data{
		UserID:      user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Role:        string(user.Role),
	})
	if err != nil {
		slog.Error("token create failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Login failed")
		return
	}

	respondData(w, http.StatusOK, map[string]any{
		"user":  publicUser(user),
		"token": tok,
	}, "Login successful")
}

type registerRequest struct {
	Email       string `json:"email" validate:"required,email,max=255"`
	Password    string `json:"password" validate:"required,min=8"`
	DisplayName string `json:"displayName" validate:"required,max=255"`
	Role        string `json:"role" validate:"omitempty,oneof=admin editor viewer"`
}

// Register creates a CMS user. Gated behind manage_users in the router.
func (a *Auth) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decode(w, r, &req) {
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	existing, err := a.users.FindByEmail(email)
	if err != nil {
		storeError(w, err, "Registration failed")
		return
	}
	if existing != nil {
		respondError(w, http.StatusConflict, "User with this email already exists")
		return
	}

	role := models.Role(req.Role)
	if req.Role == "" {
		role = models.RoleViewer
	}

	user, err := a.users.Create(email, req.Password, req.DisplayName, role)
	if err != nil {
		storeError(w, err, "Registration failed")
		return
	}

	respondData(w, http.StatusCreated, map[string]any{"user": publicUser(user)}, "User created successfully")
}

// Me returns the authenticated user. Requires auth in the router.
func (a *Auth) Me(w http.ResponseWriter, r *http.Request) {
	ident := middleware.IdentityFromCtx(r.Context())
	if ident == nil {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	user, err := a.users.FindByID(ident.UserID)
	if err != nil {
		storeError(w, err, "Failed to get user info")
		return
	}
	if user == nil {
		respondError(w, http.StatusNotFound, "User not found")
		return
	}

	respondData(w, http.StatusOK, map[string]any{"user": publicUser(user)}, "")
}

// Logout revokes the caller's bearer token.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		if err := a.tokens.Destroy(r.Context(), strings.TrimSpace(h[7:])); err != nil {
			slog.Error("token destroy failed", "error", err)
		}
	}
	respondData(w, http.StatusOK, nil, "Logged out")
}
