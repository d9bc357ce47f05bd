//go:build integration

package store

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/google/uuid"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	s, err := New(ctx, dbURL)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	if err := s.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	t.Cleanup(func() {
		s.Close()
	})
	return s
}

func createTestUser(t *testing.T, s *Store) User {
	t.Helper()
	ctx := context.Background()
	u, err := s.CreateUser(ctx, "it-"+uuid.New().String()[:8]+"@example.com", "Integration")
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	t.Cleanup(func() {
		s.pool.Exec(ctx, "DELETE FROM users WHERE id = $1", u.ID)
	})
	return u
}

func TestIntegration_UserAndComments(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	u := createTestUser(t, s)

	got, err := s.GetUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if got.Email != u.Email {
		t.Errorf("expected email %q, got %q", u.Email, got.Email)
	}

	again, err := s.CreateUser(ctx, u.Email, "Other")
	if err != nil {
		t.Fatalf("CreateUser with existing email failed: %v", err)
	}
	if again.ID != u.ID {
		t.Errorf("expected existing user %s, got %s", u.ID, again.ID)
	}

	first, err := s.AddComment(ctx, u.ID, "Felt this one.")
	if err != nil {
		t.Fatalf("AddComment failed: %v", err)
	}
	if _, err := s.AddComment(ctx, u.ID, "So real."); err != nil {
		t.Fatalf("AddComment failed: %v", err)
	}

	texts, err := s.CommentTexts(ctx, u.ID)
	if err != nil {
		t.Fatalf("CommentTexts failed: %v", err)
	}
	if len(texts) != 2 || texts[0] != "Felt this one." {
		t.Errorf("unexpected comment texts: %v", texts)
	}

	if err := s.DeleteComment(ctx, u.ID, first.ID); err != nil {
		t.Fatalf("DeleteComment failed: %v", err)
	}
	if err := s.DeleteComment(ctx, u.ID, first.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound deleting twice, got %v", err)
	}
}

func TestIntegration_MissingUser(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	if _, err := s.GetUser(ctx, uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.AddComment(ctx, uuid.New(), "orphan"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown user, got %v", err)
	}
}

func TestIntegration_Sessions(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	u := createTestUser(t, s)

	sid, err := s.GetOrCreateSession(ctx, u.ID, "")
	if err != nil {
		t.Fatalf("GetOrCreateSession failed: %v", err)
	}
	same, err := s.GetOrCreateSession(ctx, u.ID, sid.String())
	if err != nil {
		t.Fatalf("GetOrCreateSession failed: %v", err)
	}
	if same != sid {
		t.Errorf("expected session %s to be reused, got %s", sid, same)
	}
	fresh, err := s.GetOrCreateSession(ctx, u.ID, uuid.New().String())
	if err != nil {
		t.Fatalf("GetOrCreateSession failed: %v", err)
	}
	if fresh == sid {
		t.Error("unknown session id should open a new session")
	}

	if err := s.RecordExchange(ctx, u.ID.String(), sid.String(), "post one", "reply one"); err != nil {
		t.Fatalf("RecordExchange failed: %v", err)
	}
	if err := s.RecordExchange(ctx, u.ID.String(), sid.String(), "post two", "reply two"); err != nil {
		t.Fatalf("RecordExchange failed: %v", err)
	}
	if err := s.RecordExchange(ctx, uuid.New().String(), sid.String(), "x", "y"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for foreign session, got %v", err)
	}

	sess, err := s.GetSession(ctx, u.ID, sid)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if len(sess.Queries) != 2 || sess.Queries[1].BotResponse != "reply two" {
		t.Errorf("unexpected session queries: %+v", sess.Queries)
	}
}

func TestIntegration_Search(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	tag := uuid.New().String()[:8]

	bodies := []string{
		"Hiring slowly saved our culture " + tag,
		"Pricing is the hardest lesson " + tag,
	}
	for _, b := range bodies {
		if err := s.AddExemplar(ctx, b, "test"); err != nil {
			t.Fatalf("AddExemplar failed: %v", err)
		}
	}
	t.Cleanup(func() {
		s.pool.Exec(ctx, "DELETE FROM exemplars WHERE source = 'test' AND body LIKE $1", "%"+tag)
	})

	got, err := s.Search(ctx, "what we learned about hiring "+tag, 2)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(got) == 0 || got[0] != bodies[0] {
		t.Errorf("expected hiring exemplar first, got %v", got)
	}

	none, err := s.Search(ctx, "the and of", 2)
	if err != nil {
		t.Fatalf("Search with stop words failed: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("expected no results for stop-word query, got %v", none)
	}
}
