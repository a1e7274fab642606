// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/mail"
	"net/url"
	"strings"
)

// Field length limits.
const (
	MaxEmailLength    = 254
	MaxNameLength     = 100
	MaxTitleLength    = 200
	MaxSubtitleLength = 200
	MaxImgURLLength   = 2048
	MinPasswordLength = 8
	MaxPasswordLength = 128
)

// FieldErrors maps form field names to validation error messages.
type FieldErrors map[string]string

// HasErrors reports whether any field failed validation.
func (fe FieldErrors) HasErrors() bool {
	return len(fe) > 0
}

// Get returns the error message for a field, or "" if the field is valid.
// Exported for template access.
func (fe FieldErrors) Get(field string) string {
	return fe[field]
}

// RegisterForm holds the registration form fields.
type RegisterForm struct {
	Email    string
	Name     string
	Password string
}

// Validate checks the registration form and returns any field errors.
func (f *RegisterForm) Validate() FieldErrors {
	errs := FieldErrors{}

	f.Email = strings.TrimSpace(f.Email)
	f.Name = strings.TrimSpace(f.Name)

	validateEmail(errs, f.Email)
	validateRequired(errs, "name", "Name", f.Name, MaxNameLength)
	validatePassword(errs, f.Password)

	return errs
}

// LoginForm holds the login form fields.
type LoginForm struct {
	Email    string
	Password string
}

// Validate checks the login form and returns any field errors.
func (f *LoginForm) Validate() FieldErrors {
	errs := FieldErrors{}

	f.Email = strings.TrimSpace(f.Email)

	if f.Email == "" {
		errs["email"] = "Email is required"
	}
	if f.Password == "" {
		errs["password"] = "Password is required"
	}

	return errs
}

// PostForm holds the blog post create/edit form fields.
type PostForm struct {
	Title    string
	Subtitle string
	ImgURL   string
	Body     string
}

// Validate checks the post form and returns any field errors.
func (f *PostForm) Validate() FieldErrors {
	errs := FieldErrors{}

	f.Title = strings.TrimSpace(f.Title)
	f.Subtitle = strings.TrimSpace(f.Subtitle)
	f.ImgURL = strings.TrimSpace(f.ImgURL)

	validateRequired(errs, "title", "Title", f.Title, MaxTitleLength)
	validateRequired(errs, "subtitle", "Subtitle", f.Subtitle, MaxSubtitleLength)
	validateRequired(errs, "body", "Body", strings.TrimSpace(f.Body), 0)

	if f.ImgURL == "" {
		errs["img_url"] = "Image URL is required"
	} else if len(f.ImgURL) > MaxImgURLLength {
		errs["img_url"] = "Image URL is too long"
	} else if !isValidURL(f.ImgURL) {
		errs["img_url"] = "Image URL must be a valid http or https URL"
	}

	return errs
}

// CommentForm holds the comment form fields.
type CommentForm struct {
	Text string
}

// Validate checks the comment form and returns any field errors.
func (f *CommentForm) Validate() FieldErrors {
	errs := FieldErrors{}

	if strings.TrimSpace(f.Text) == "" {
		errs["text"] = "Comment text is required"
	}

	return errs
}

// validateRequired checks a required field with an optional max length (0 = no limit).
func validateRequired(errs FieldErrors, field, label, value string, maxLen int) {
	if value == "" {
		errs[field] = label + " is required"
		return
	}
	if maxLen > 0 && len(value) > maxLen {
		errs[field] = label + " is too long"
	}
}

// validateEmail checks that an email is present and well-formed.
func validateEmail(errs FieldErrors, email string) {
	if email == "" {
		errs["email"] = "Email is required"
		return
	}
	if len(email) > MaxEmailLength {
		errs["email"] = "Email is too long"
		return
	}
	if _, err := mail.ParseAddress(email); err != nil {
		errs["email"] = "Email address is not valid"
	}
}

// validatePassword checks password length constraints.
func validatePassword(errs FieldErrors, password string) {
	switch {
	case password == "":
		errs["password"] = "Password is required"
	case len(password) < MinPasswordLength:
		errs["password"] = "Password must be at least 8 characters"
	case len(password) > MaxPasswordLength:
		errs["password"] = "Password is too long"
	}
}

// isValidURL reports whether s parses as an absolute http(s) URL.
func isValidURL(s string) bool {
	u, err := url.ParseRequestURI(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
