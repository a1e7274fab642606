// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler contains HTTP handlers for the blog's pages and forms.
package handler

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/goblog/internal/auth"
	"github.com/olegiv/goblog/internal/middleware"
	"github.com/olegiv/goblog/internal/render"
	"github.com/olegiv/goblog/internal/store"
)

// AuthHandler handles registration, login and logout.
type AuthHandler struct {
	queries         *store.Queries
	renderer        *render.Renderer
	sessionManager  *scs.SessionManager
	loginProtection *middleware.LoginProtection
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(db *sql.DB, renderer *render.Renderer, sm *scs.SessionManager, lp *middleware.LoginProtection) *AuthHandler {
	return &AuthHandler{
		queries:         store.New(db),
		renderer:        renderer,
		sessionManager:  sm,
		loginProtection: lp,
	}
}

// RegisterForm displays the registration form.
func (h *AuthHandler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	// Already signed in, nothing to register
	if middleware.GetUser(r) != nil {
		http.Redirect(w, r, redirectHome, http.StatusSeeOther)
		return
	}

	h.renderRegisterForm(w, r, &RegisterForm{}, nil)
}

// Register processes the registration form submission.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, RouteRegister) {
		return
	}

	form := &RegisterForm{
		Email:    r.FormValue("email"),
		Name:     r.FormValue("name"),
		Password: r.FormValue("password"),
	}

	if errs := form.Validate(); errs.HasErrors() {
		h.renderRegisterForm(w, r, form, errs)
		return
	}

	// Proactive duplicate check so the user gets a friendly message
	// instead of a constraint error.
	if _, err := h.queries.GetUserByEmail(r.Context(), form.Email); err == nil {
		flashError(w, r, h.renderer, redirectLogin, "You already registered with this email. Please log in.")
		return
	} else if !errors.Is(err, sql.ErrNoRows) {
		logAndInternalError(w, "failed to check existing email", "error", err)
		return
	}

	passwordHash, err := auth.HashPassword(form.Password)
	if err != nil {
		logAndInternalError(w, "failed to hash password", "error", err)
		return
	}

	now := time.Now()
	user, err := h.queries.CreateUser(r.Context(), store.CreateUserParams{
		Email:        form.Email,
		PasswordHash: passwordHash,
		Name:         form.Name,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		// Lost a race with a concurrent registration for the same email
		if store.IsUniqueViolation(err) {
			flashError(w, r, h.renderer, redirectLogin, "You already registered with this email. Please log in.")
			return
		}
		logAndInternalError(w, "failed to create user", "error", err)
		return
	}

	if err := h.establishSession(r, user.ID); err != nil {
		logAndInternalError(w, "failed to establish session", "error", err, "user_id", user.ID)
		return
	}

	slog.Info("user registered", "user_id", user.ID, "email", user.Email)
	http.Redirect(w, r, redirectHome, http.StatusSeeOther)
}

// LoginForm displays the login form.
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if middleware.GetUser(r) != nil {
		http.Redirect(w, r, redirectHome, http.StatusSeeOther)
		return
	}

	h.renderLoginForm(w, r, &LoginForm{}, nil)
}

// Login processes the login form submission.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, RouteLogin) {
		return
	}

	form := &LoginForm{
		Email:    r.FormValue("email"),
		Password: r.FormValue("password"),
	}

	if errs := form.Validate(); errs.HasErrors() {
		h.renderLoginForm(w, r, form, errs)
		return
	}

	if h.loginProtection != nil {
		if locked, remaining := h.loginProtection.IsAccountLocked(form.Email); locked {
			slog.Warn("login attempt on locked account", "email", form.Email)
			flashError(w, r, h.renderer, redirectLogin,
				fmt.Sprintf("Account temporarily locked. Try again in %s.", remaining.Round(time.Minute)))
			return
		}
	}

	user, err := h.queries.GetUserByEmail(r.Context(), form.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.recordFailure(form.Email)
			flashError(w, r, h.renderer, redirectLogin, "Invalid user, try again.")
			return
		}
		logAndInternalError(w, "failed to look up user", "error", err)
		return
	}

	ok, err := auth.CheckPassword(form.Password, user.PasswordHash)
	if err != nil || !ok {
		h.recordFailure(form.Email)
		flashError(w, r, h.renderer, redirectLogin, "Invalid password, try again.")
		return
	}

	if h.loginProtection != nil {
		h.loginProtection.RecordSuccessfulLogin(form.Email)
	}

	// Upgrade hashes created with older parameters on successful login
	if auth.NeedsRehash(user.PasswordHash) {
		if newHash, err := auth.HashPassword(form.Password); err == nil {
			_ = h.queries.UpdateUserPassword(r.Context(), store.UpdateUserPasswordParams{
				PasswordHash: newHash,
				UpdatedAt:    time.Now(),
				ID:           user.ID,
			})
		}
	}

	if err := h.establishSession(r, user.ID); err != nil {
		logAndInternalError(w, "failed to establish session", "error", err, "user_id", user.ID)
		return
	}

	slog.Info("user logged in", "user_id", user.ID, "email", user.Email)
	http.Redirect(w, r, redirectHome, http.StatusSeeOther)
}

// Logout destroys the session and redirects home.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessionManager.Destroy(r.Context()); err != nil {
		logAndInternalError(w, "failed to destroy session", "error", err)
		return
	}

	http.Redirect(w, r, redirectHome, http.StatusSeeOther)
}

// establishSession rotates the session token and binds it to the user.
// Token renewal prevents session fixation.
func (h *AuthHandler) establishSession(r *http.Request, userID int64) error {
	if err := h.sessionManager.RenewToken(r.Context()); err != nil {
		return err
	}
	h.sessionManager.Put(r.Context(), middleware.SessionKeyUserID, userID)
	return nil
}

// recordFailure tracks a failed login attempt for account lockout.
func (h *AuthHandler) recordFailure(email string) {
	if h.loginProtection == nil {
		return
	}
	if locked, duration := h.loginProtection.RecordFailedAttempt(email); locked {
		slog.Warn("account locked after repeated failures", "email", email, "duration", duration)
	}
}

func (h *AuthHandler) renderRegisterForm(w http.ResponseWriter, r *http.Request, form *RegisterForm, errs FieldErrors) {
	err := h.renderer.Render(w, r, "auth/register", render.TemplateData{
		Title:       "Register",
		CurrentUser: middleware.GetUser(r),
		Data: map[string]any{
			"Form":   form,
			"Errors": errs,
		},
	})
	if err != nil {
		logAndInternalError(w, "failed to render register form", "error", err)
	}
}

func (h *AuthHandler) renderLoginForm(w http.ResponseWriter, r *http.Request, form *LoginForm, errs FieldErrors) {
	err := h.renderer.Render(w, r, "auth/login", render.TemplateData{
		Title:       "Log In",
		CurrentUser: middleware.GetUser(r),
		Data: map[string]any{
			"Form":   form,
			"Errors": errs,
		},
	})
	if err != nil {
		logAndInternalError(w, "failed to render login form", "error", err)
	}
}
