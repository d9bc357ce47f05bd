package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Exchange is one post and the reply produced for it.
type Exchange struct {
	UserQuery   string    `json:"user_query"`
	BotResponse string    `json:"bot_response"`
	Timestamp   time.Time `json:"timestamp"`
}

type Session struct {
	ID        uuid.UUID  `json:"session_id"`
	UserID    uuid.UUID  `json:"user_id"`
	CreatedAt time.Time  `json:"created_at"`
	Queries   []Exchange `json:"queries"`
}

// GetOrCreateSession returns sessionID when it names an existing session of
// the user, otherwise it opens a new one.
func (s *Store) GetOrCreateSession(ctx context.Context, userID uuid.UUID, sessionID string) (uuid.UUID, error) {
	if id, err := uuid.Parse(sessionID); err == nil {
		var exists bool
		err := s.pool.QueryRow(ctx, `
			SELECT EXISTS (SELECT 1 FROM chat_sessions WHERE id = $1 AND user_id = $2)`,
			id, userID,
		).Scan(&exists)
		if err != nil {
			return uuid.Nil, fmt.Errorf("lookup session: %w", err)
		}
		if exists {
			return id, nil
		}
	}

	id := uuid.New()
	_, err := s.pool.Exec(ctx, `
		INSERT INTO chat_sessions (id, user_id) VALUES ($1, $2)`,
		id, userID,
	)
	if err != nil {
		if errors.Is(notFound(err), ErrNotFound) {
			return uuid.Nil, ErrNotFound
		}
		return uuid.Nil, fmt.Errorf("insert session: %w", err)
	}
	return id, nil
}

// RecordExchange appends a query and its reply to one of the user's sessions.
func (s *Store) RecordExchange(ctx context.Context, userID, sessionID, query, reply string) error {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return fmt.Errorf("parse user id: %w", err)
	}
	sid, err := uuid.Parse(sessionID)
	if err != nil {
		return fmt.Errorf("parse session id: %w", err)
	}

	tag, err := s.pool.Exec(ctx, `
		INSERT INTO session_queries (session_id, user_query, bot_response)
		SELECT $1, $2, $3
		WHERE EXISTS (SELECT 1 FROM chat_sessions WHERE id = $1 AND user_id = $4)`,
		sid, query, reply, uid,
	)
	if err != nil {
		return fmt.Errorf("insert session query: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetSession returns a session with its exchanges in order.
func (s *Store) GetSession(ctx context.Context, userID, sessionID uuid.UUID) (Session, error) {
	sess := Session{ID: sessionID, UserID: userID}
	err := s.pool.QueryRow(ctx, `
		SELECT created_at FROM chat_sessions WHERE id = $1 AND user_id = $2`,
		sessionID, userID,
	).Scan(&sess.CreatedAt)
	if err != nil {
		return Session{}, notFound(err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT user_query, bot_response, created_at
		FROM session_queries
		WHERE session_id = $1
		ORDER BY id`,
		sessionID,
	)
	if err != nil {
		return Session{}, fmt.Errorf("query session queries: %w", err)
	}
	defer rows.Close()

	sess.Queries = []Exchange{}
	for rows.Next() {
		var e Exchange
		if err := rows.Scan(&e.UserQuery, &e.BotResponse, &e.Timestamp); err != nil {
			return Session{}, fmt.Errorf("scan session query: %w", err)
		}
		sess.Queries = append(sess.Queries, e)
	}
	return sess, rows.Err()
}
