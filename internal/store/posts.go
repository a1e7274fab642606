// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

// BlogPost represents a blog post row. Date is the human-readable
// publication date captured at creation time ("January 02, 2006");
// it is immutable after creation, as is AuthorID.
type BlogPost struct {
	ID        int64     `json:"id"`
	AuthorID  int64     `json:"author_id"`
	Title     string    `json:"title"`
	Subtitle  string    `json:"subtitle"`
	Date      string    `json:"date"`
	Body      string    `json:"body"`
	ImgURL    string    `json:"img_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

const createPost = `
INSERT INTO blog_posts (author_id, title, subtitle, date, body, img_url, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
RETURNING id, author_id, title, subtitle, date, body, img_url, created_at, updated_at
`

// CreatePostParams holds the parameters for CreatePost.
type CreatePostParams struct {
	AuthorID  int64
	Title     string
	Subtitle  string
	Date      string
	Body      string
	ImgURL    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreatePost inserts a new blog post and returns the created row.
// A duplicate title surfaces as a unique constraint violation.
func (q *Queries) CreatePost(ctx context.Context, arg CreatePostParams) (BlogPost, error) {
	row := q.db.QueryRowContext(ctx, createPost,
		arg.AuthorID, arg.Title, arg.Subtitle, arg.Date, arg.Body, arg.ImgURL,
		arg.CreatedAt, arg.UpdatedAt)
	var p BlogPost
	err := row.Scan(&p.ID, &p.AuthorID, &p.Title, &p.Subtitle, &p.Date, &p.Body,
		&p.ImgURL, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

const getPostByID = `
SELECT id, author_id, title, subtitle, date, body, img_url, created_at, updated_at
FROM blog_posts WHERE id = ?
`

// GetPostByID fetches a post by ID. Returns sql.ErrNoRows if absent.
func (q *Queries) GetPostByID(ctx context.Context, id int64) (BlogPost, error) {
	row := q.db.QueryRowContext(ctx, getPostByID, id)
	var p BlogPost
	err := row.Scan(&p.ID, &p.AuthorID, &p.Title, &p.Subtitle, &p.Date, &p.Body,
		&p.ImgURL, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

const listPosts = `
SELECT p.id, p.author_id, p.title, p.subtitle, p.date, p.body, p.img_url,
       p.created_at, p.updated_at, u.name AS author_name
FROM blog_posts p
JOIN users u ON u.id = p.author_id
ORDER BY p.id
`

// ListPostsRow is a blog post joined with its author's display name.
type ListPostsRow struct {
	BlogPost
	AuthorName string `json:"author_name"`
}

// ListPosts returns all posts with author names, in storage order.
func (q *Queries) ListPosts(ctx context.Context) ([]ListPostsRow, error) {
	rows, err := q.db.QueryContext(ctx, listPosts)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []ListPostsRow
	for rows.Next() {
		var r ListPostsRow
		if err := rows.Scan(&r.ID, &r.AuthorID, &r.Title, &r.Subtitle, &r.Date,
			&r.Body, &r.ImgURL, &r.CreatedAt, &r.UpdatedAt, &r.AuthorName); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

const listPostsByAuthor = `
SELECT id, author_id, title, subtitle, date, body, img_url, created_at, updated_at
FROM blog_posts WHERE author_id = ?
ORDER BY id
`

// ListPostsByAuthor returns all posts written by the given user.
func (q *Queries) ListPostsByAuthor(ctx context.Context, authorID int64) ([]BlogPost, error) {
	rows, err := q.db.QueryContext(ctx, listPostsByAuthor, authorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []BlogPost
	for rows.Next() {
		var p BlogPost
		if err := rows.Scan(&p.ID, &p.AuthorID, &p.Title, &p.Subtitle, &p.Date,
			&p.Body, &p.ImgURL, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

const updatePost = `
UPDATE blog_posts
SET title = ?, subtitle = ?, body = ?, img_url = ?, updated_at = ?
WHERE id = ?
`

// UpdatePostParams holds the parameters for UpdatePost.
// Author and publication date are deliberately absent: they are
// immutable after creation.
type UpdatePostParams struct {
	Title     string
	Subtitle  string
	Body      string
	ImgURL    string
	UpdatedAt time.Time
	ID        int64
}

// UpdatePost mutates a post's editable fields in place.
// A duplicate title surfaces as a unique constraint violation.
func (q *Queries) UpdatePost(ctx context.Context, arg UpdatePostParams) error {
	_, err := q.db.ExecContext(ctx, updatePost,
		arg.Title, arg.Subtitle, arg.Body, arg.ImgURL, arg.UpdatedAt, arg.ID)
	return err
}

const deletePost = `DELETE FROM blog_posts WHERE id = ?`

// DeletePost removes a post. Dependent comments are removed by the
// schema's ON DELETE CASCADE. Returns the number of rows deleted.
func (q *Queries) DeletePost(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deletePost, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const countPosts = `SELECT COUNT(*) FROM blog_posts`

// CountPosts returns the total number of posts.
func (q *Queries) CountPosts(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countPosts).Scan(&count)
	return count, err
}
