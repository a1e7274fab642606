// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

// Comment represents a comment row on a blog post.
type Comment struct {
	ID        int64     `json:"id"`
	PostID    int64     `json:"post_id"`
	AuthorID  int64     `json:"author_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

const createComment = `
INSERT INTO comments (post_id, author_id, text, created_at)
VALUES (?, ?, ?, ?)
RETURNING id, post_id, author_id, text, created_at
`

// CreateCommentParams holds the parameters for CreateComment.
type CreateCommentParams struct {
	PostID    int64
	AuthorID  int64
	Text      string
	CreatedAt time.Time
}

// CreateComment inserts a new comment and returns the created row.
// A missing post or author surfaces as a foreign key violation.
func (q *Queries) CreateComment(ctx context.Context, arg CreateCommentParams) (Comment, error) {
	row := q.db.QueryRowContext(ctx, createComment,
		arg.PostID, arg.AuthorID, arg.Text, arg.CreatedAt)
	var c Comment
	err := row.Scan(&c.ID, &c.PostID, &c.AuthorID, &c.Text, &c.CreatedAt)
	return c, err
}

const getCommentByID = `
SELECT id, post_id, author_id, text, created_at
FROM comments WHERE id = ?
`

// GetCommentByID fetches a comment by ID. Returns sql.ErrNoRows if absent.
func (q *Queries) GetCommentByID(ctx context.Context, id int64) (Comment, error) {
	row := q.db.QueryRowContext(ctx, getCommentByID, id)
	var c Comment
	err := row.Scan(&c.ID, &c.PostID, &c.AuthorID, &c.Text, &c.CreatedAt)
	return c, err
}

const listCommentsByPost = `
SELECT c.id, c.post_id, c.author_id, c.text, c.created_at, u.name AS author_name
FROM comments c
JOIN users u ON u.id = c.author_id
WHERE c.post_id = ?
ORDER BY c.id
`

// ListCommentsByPostRow is a comment joined with its author's display name.
type ListCommentsByPostRow struct {
	Comment
	AuthorName string `json:"author_name"`
}

// ListCommentsByPost returns all comments on a post, oldest first.
func (q *Queries) ListCommentsByPost(ctx context.Context, postID int64) ([]ListCommentsByPostRow, error) {
	rows, err := q.db.QueryContext(ctx, listCommentsByPost, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []ListCommentsByPostRow
	for rows.Next() {
		var r ListCommentsByPostRow
		if err := rows.Scan(&r.ID, &r.PostID, &r.AuthorID, &r.Text, &r.CreatedAt, &r.AuthorName); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

const countCommentsByPost = `SELECT COUNT(*) FROM comments WHERE post_id = ?`

// CountCommentsByPost returns the number of comments on a post.
func (q *Queries) CountCommentsByPost(ctx context.Context, postID int64) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countCommentsByPost, postID).Scan(&count)
	return count, err
}
