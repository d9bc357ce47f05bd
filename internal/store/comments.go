package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Comment is an approved reply in a user's reference corpus.
type Comment struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Body      string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// AddComment saves a comment and indexes its body as an exemplar.
func (s *Store) AddComment(ctx context.Context, userID uuid.UUID, body string) (Comment, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return Comment{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	c := Comment{ID: uuid.New(), UserID: userID, Body: body}
	err = tx.QueryRow(ctx, `
		INSERT INTO comments (id, user_id, body)
		VALUES ($1, $2, $3)
		RETURNING created_at`,
		c.ID, userID, body,
	).Scan(&c.CreatedAt)
	if err != nil {
		return Comment{}, notFound(err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO exemplars (id, body, source)
		VALUES ($1, $2, 'comment')
		ON CONFLICT (body) DO NOTHING`,
		uuid.New(), body,
	)
	if err != nil {
		return Comment{}, fmt.Errorf("insert exemplar: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return Comment{}, fmt.Errorf("commit: %w", err)
	}
	return c, nil
}

// ListComments returns a user's comments, oldest first.
func (s *Store) ListComments(ctx context.Context, userID uuid.UUID) ([]Comment, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, body, created_at
		FROM comments
		WHERE user_id = $1
		ORDER BY created_at, id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query comments: %w", err)
	}
	defer rows.Close()

	var out []Comment
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.UserID, &c.Body, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CommentTexts returns the bodies of a user's comments as reference texts.
func (s *Store) CommentTexts(ctx context.Context, userID uuid.UUID) ([]string, error) {
	comments, err := s.ListComments(ctx, userID)
	if err != nil {
		return nil, err
	}
	texts := make([]string, len(comments))
	for i, c := range comments {
		texts[i] = c.Body
	}
	return texts, nil
}

// DeleteComment removes one of a user's comments. The exemplar stays indexed.
func (s *Store) DeleteComment(ctx context.Context, userID, commentID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM comments WHERE id = $1 AND user_id = $2`,
		commentID, userID,
	)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
