// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/olegiv/goblog/internal/middleware"
	"github.com/olegiv/goblog/internal/render"
	"github.com/olegiv/goblog/internal/store"
)

// postDateFormat is the human-readable publication date stamped on new
// posts, e.g. "August 28, 2026".
const postDateFormat = "January 02, 2006"

// PostsHandler handles blog post listing, viewing, creation, editing,
// deletion and commenting.
type PostsHandler struct {
	queries  *store.Queries
	renderer *render.Renderer
}

// NewPostsHandler creates a new PostsHandler.
func NewPostsHandler(db *sql.DB, renderer *render.Renderer) *PostsHandler {
	return &PostsHandler{
		queries:  store.New(db),
		renderer: renderer,
	}
}

// Home displays all blog posts.
func (h *PostsHandler) Home(w http.ResponseWriter, r *http.Request) {
	posts, err := h.queries.ListPosts(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to list posts", "error", err)
		return
	}

	err = h.renderer.Render(w, r, "site/home", render.TemplateData{
		Title:       "Home",
		CurrentUser: middleware.GetUser(r),
		Data: map[string]any{
			"Posts": posts,
		},
	})
	if err != nil {
		logAndInternalError(w, "failed to render home", "error", err)
	}
}

// View displays a single post with its comments and a comment form.
func (h *PostsHandler) View(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	post, ok := requireEntityWithError(w, "post", id, func(id int64) (store.BlogPost, error) {
		return h.queries.GetPostByID(r.Context(), id)
	})
	if !ok {
		return
	}

	author, err := h.queries.GetUserByID(r.Context(), post.AuthorID)
	if err != nil {
		logAndInternalError(w, "failed to load post author", "error", err, "post_id", id)
		return
	}

	comments, err := h.queries.ListCommentsByPost(r.Context(), id)
	if err != nil {
		logAndInternalError(w, "failed to list comments", "error", err, "post_id", id)
		return
	}

	h.renderPost(w, r, post, author, comments, &CommentForm{}, nil)
}

// AddComment processes a comment submission on a post.
// Commenting requires a signed-in user; the comment is attributed to them.
func (h *PostsHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	user := middleware.GetUser(r)
	if user == nil {
		flashError(w, r, h.renderer, redirectLogin, "Please log in to comment.")
		return
	}

	postURL := fmt.Sprintf(redirectViewPostID, id)

	if !parseFormOrRedirect(w, r, h.renderer, postURL) {
		return
	}

	post, ok := requireEntityWithError(w, "post", id, func(id int64) (store.BlogPost, error) {
		return h.queries.GetPostByID(r.Context(), id)
	})
	if !ok {
		return
	}

	form := &CommentForm{Text: r.FormValue("text")}
	if errs := form.Validate(); errs.HasErrors() {
		author, err := h.queries.GetUserByID(r.Context(), post.AuthorID)
		if err != nil {
			logAndInternalError(w, "failed to load post author", "error", err, "post_id", id)
			return
		}
		comments, err := h.queries.ListCommentsByPost(r.Context(), id)
		if err != nil {
			logAndInternalError(w, "failed to list comments", "error", err, "post_id", id)
			return
		}
		h.renderPost(w, r, post, author, comments, form, errs)
		return
	}

	_, err := h.queries.CreateComment(r.Context(), store.CreateCommentParams{
		PostID:    post.ID,
		AuthorID:  user.ID,
		Text:      form.Text,
		CreatedAt: time.Now(),
	})
	if err != nil {
		if store.IsForeignKeyViolation(err) {
			// Post vanished between the fetch and the insert
			http.NotFound(w, r)
			return
		}
		logAndInternalError(w, "failed to create comment", "error", err, "post_id", id)
		return
	}

	http.Redirect(w, r, postURL, http.StatusSeeOther)
}

// NewForm displays the post creation form.
func (h *PostsHandler) NewForm(w http.ResponseWriter, r *http.Request) {
	h.renderPostForm(w, r, "New Post", RouteMakePost, &PostForm{}, nil)
}

// Create processes the post creation form submission.
// The post is attributed to the signed-in user and stamped with today's date.
func (h *PostsHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		http.Redirect(w, r, redirectLogin, http.StatusSeeOther)
		return
	}

	if !parseFormOrRedirect(w, r, h.renderer, RouteMakePost) {
		return
	}

	form := postFormFromRequest(r)
	if errs := form.Validate(); errs.HasErrors() {
		h.renderPostForm(w, r, "New Post", RouteMakePost, form, errs)
		return
	}

	now := time.Now()
	post, err := h.queries.CreatePost(r.Context(), store.CreatePostParams{
		AuthorID:  user.ID,
		Title:     form.Title,
		Subtitle:  form.Subtitle,
		Date:      now.Format(postDateFormat),
		Body:      form.Body,
		ImgURL:    form.ImgURL,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		if store.IsUniqueViolation(err) {
			h.renderPostForm(w, r, "New Post", RouteMakePost, form,
				FieldErrors{"title": "A post with this title already exists"})
			return
		}
		logAndInternalError(w, "failed to create post", "error", err, "user_id", user.ID)
		return
	}

	slog.Info("post created", "post_id", post.ID, "user_id", user.ID)
	http.Redirect(w, r, redirectHome, http.StatusSeeOther)
}

// EditForm displays the post edit form, pre-filled with the current values.
// Only the post's author may edit it.
func (h *PostsHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	post, ok := h.requireOwnedPost(w, r)
	if !ok {
		return
	}

	form := &PostForm{
		Title:    post.Title,
		Subtitle: post.Subtitle,
		ImgURL:   post.ImgURL,
		Body:     post.Body,
	}

	h.renderPostForm(w, r, "Edit Post", fmt.Sprintf("/edit_post/%d", post.ID), form, nil)
}

// Update processes the post edit form submission.
// Author and publication date are immutable; only title, subtitle,
// body and image URL change.
func (h *PostsHandler) Update(w http.ResponseWriter, r *http.Request) {
	post, ok := h.requireOwnedPost(w, r)
	if !ok {
		return
	}

	action := fmt.Sprintf("/edit_post/%d", post.ID)

	if !parseFormOrRedirect(w, r, h.renderer, action) {
		return
	}

	form := postFormFromRequest(r)
	if errs := form.Validate(); errs.HasErrors() {
		h.renderPostForm(w, r, "Edit Post", action, form, errs)
		return
	}

	err := h.queries.UpdatePost(r.Context(), store.UpdatePostParams{
		Title:     form.Title,
		Subtitle:  form.Subtitle,
		Body:      form.Body,
		ImgURL:    form.ImgURL,
		UpdatedAt: time.Now(),
		ID:        post.ID,
	})
	if err != nil {
		if store.IsUniqueViolation(err) {
			h.renderPostForm(w, r, "Edit Post", action, form,
				FieldErrors{"title": "A post with this title already exists"})
			return
		}
		logAndInternalError(w, "failed to update post", "error", err, "post_id", post.ID)
		return
	}

	slog.Info("post updated", "post_id", post.ID, "user_id", middleware.GetUserID(r))
	http.Redirect(w, r, redirectHome, http.StatusSeeOther)
}

// Delete removes a post and, via the schema cascade, its comments.
// Only the post's author may delete it.
func (h *PostsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	post, ok := h.requireOwnedPost(w, r)
	if !ok {
		return
	}

	if _, err := h.queries.DeletePost(r.Context(), post.ID); err != nil {
		logAndInternalError(w, "failed to delete post", "error", err, "post_id", post.ID)
		return
	}

	slog.Info("post deleted", "post_id", post.ID, "user_id", middleware.GetUserID(r))
	flashSuccess(w, r, h.renderer, redirectHome, "Post deleted.")
}

// requireOwnedPost fetches the post named by the {id} parameter and
// checks that the current user is its author. Writes 404 for a missing
// post and 403 for someone else's post.
func (h *PostsHandler) requireOwnedPost(w http.ResponseWriter, r *http.Request) (store.BlogPost, bool) {
	var zero store.BlogPost

	id, ok := parseIDParam(w, r)
	if !ok {
		return zero, false
	}

	post, ok := requireEntityWithError(w, "post", id, func(id int64) (store.BlogPost, error) {
		return h.queries.GetPostByID(r.Context(), id)
	})
	if !ok {
		return zero, false
	}

	user := middleware.GetUser(r)
	if user == nil || user.ID != post.AuthorID {
		slog.Warn("post access denied",
			"post_id", post.ID,
			"owner_id", post.AuthorID,
			"user_id", middleware.GetUserID(r),
		)
		http.Error(w, "Forbidden", http.StatusForbidden)
		return zero, false
	}

	return post, true
}

// postFormFromRequest builds a PostForm from the submitted form values.
func postFormFromRequest(r *http.Request) *PostForm {
	return &PostForm{
		Title:    r.FormValue("title"),
		Subtitle: r.FormValue("subtitle"),
		ImgURL:   r.FormValue("img_url"),
		Body:     r.FormValue("body"),
	}
}

func (h *PostsHandler) renderPost(
	w http.ResponseWriter,
	r *http.Request,
	post store.BlogPost,
	author store.User,
	comments []store.ListCommentsByPostRow,
	form *CommentForm,
	errs FieldErrors,
) {
	err := h.renderer.Render(w, r, "site/post", render.TemplateData{
		Title:       post.Title,
		CurrentUser: middleware.GetUser(r),
		Data: map[string]any{
			"Post":     post,
			"Author":   author,
			"Comments": comments,
			"Form":     form,
			"Errors":   errs,
		},
	})
	if err != nil {
		logAndInternalError(w, "failed to render post", "error", err, "post_id", post.ID)
	}
}

func (h *PostsHandler) renderPostForm(
	w http.ResponseWriter,
	r *http.Request,
	title, action string,
	form *PostForm,
	errs FieldErrors,
) {
	err := h.renderer.Render(w, r, "site/post_form", render.TemplateData{
		Title:       title,
		CurrentUser: middleware.GetUser(r),
		Data: map[string]any{
			"Heading": title,
			"Action":  action,
			"Form":    form,
			"Errors":  errs,
		},
	})
	if err != nil {
		logAndInternalError(w, "failed to render post form", "error", err)
	}
}
