// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"

	"github.com/olegiv/goblog/internal/middleware"
	"github.com/olegiv/goblog/internal/render"
)

// PagesHandler serves the static site pages.
type PagesHandler struct {
	renderer *render.Renderer
}

// NewPagesHandler creates a new PagesHandler.
func NewPagesHandler(renderer *render.Renderer) *PagesHandler {
	return &PagesHandler{renderer: renderer}
}

// About displays the about page.
func (h *PagesHandler) About(w http.ResponseWriter, r *http.Request) {
	h.renderStatic(w, r, "site/about", "About")
}

// Contact displays the contact page.
func (h *PagesHandler) Contact(w http.ResponseWriter, r *http.Request) {
	h.renderStatic(w, r, "site/contact", "Contact")
}

func (h *PagesHandler) renderStatic(w http.ResponseWriter, r *http.Request, name, title string) {
	err := h.renderer.Render(w, r, name, render.TemplateData{
		Title:       title,
		CurrentUser: middleware.GetUser(r),
	})
	if err != nil {
		logAndInternalError(w, "failed to render "+name, "error", err)
	}
}

// Health responds to health check probes.
func Health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set(HeaderContentType, "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
