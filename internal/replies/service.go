// Package replies serves reply requests from every transport: it resolves
// the chat session, loads the user's approved comments as references, runs
// synthesis and announces the result.
package replies

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/mimic/internal/hermes"
	"github.com/MikeSquared-Agency/mimic/internal/synth"
)

var (
	ErrInvalidUserID = errors.New("invalid user id")
	ErrEmptyPost     = errors.New("post is empty")
)

// Store is the slice of the durable store the service needs.
type Store interface {
	GetOrCreateSession(ctx context.Context, userID uuid.UUID, sessionID string) (uuid.UUID, error)
	CommentTexts(ctx context.Context, userID uuid.UUID) ([]string, error)
}

type Synthesizer interface {
	Synthesize(ctx context.Context, req synth.Request) synth.Outcome
}

type Publisher interface {
	Publish(subject string, data any) error
}

type Request struct {
	RequestID string `json:"request_id,omitempty"`
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id,omitempty"`
	Post      string `json:"post"`
}

type Reply struct {
	Reply     string       `json:"reply"`
	Source    synth.Source `json:"source"`
	SessionID string       `json:"session_id"`
	Score     float64      `json:"score"`
	Advisory  bool         `json:"advisory"`
	Warning   string       `json:"warning,omitempty"`
}

type Service struct {
	store     Store
	synth     Synthesizer
	publisher Publisher
	logger    *slog.Logger
}

// New builds a Service. publisher may be nil.
func New(store Store, s Synthesizer, publisher Publisher, logger *slog.Logger) *Service {
	return &Service{store: store, synth: s, publisher: publisher, logger: logger}
}

// Reply produces a reply for req.Post. Errors only come from resolving the
// user and session; synthesis itself cannot fail.
func (s *Service) Reply(ctx context.Context, req Request) (Reply, error) {
	if strings.TrimSpace(req.Post) == "" {
		return Reply{}, ErrEmptyPost
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return Reply{}, fmt.Errorf("%w: %q", ErrInvalidUserID, req.UserID)
	}

	sessionID, err := s.store.GetOrCreateSession(ctx, userID, req.SessionID)
	if err != nil {
		return Reply{}, fmt.Errorf("resolve session: %w", err)
	}

	refs, err := s.store.CommentTexts(ctx, userID)
	if err != nil {
		s.logger.Warn("failed to load reference comments", "user_id", req.UserID, "error", err)
		refs = nil
	}

	out := s.synth.Synthesize(ctx, synth.Request{
		Post:       req.Post,
		ThreadID:   sessionID.String(),
		UserID:     userID.String(),
		References: refs,
	})

	reply := Reply{
		Reply:     out.Text,
		Source:    out.Source,
		SessionID: sessionID.String(),
		Score:     out.Score,
		Advisory:  out.Advisory,
		Warning:   out.Warning,
	}
	s.announce(req, reply)
	return reply, nil
}

func (s *Service) announce(req Request, r Reply) {
	if s.publisher == nil {
		return
	}
	err := s.publisher.Publish(hermes.SubjectReplyGenerated, hermes.ReplyGenerated{
		RequestID: req.RequestID,
		UserID:    req.UserID,
		SessionID: r.SessionID,
		Post:      req.Post,
		Reply:     r.Reply,
		Source:    string(r.Source),
		Score:     r.Score,
		Advisory:  r.Advisory,
		Warning:   r.Warning,
	})
	if err != nil {
		s.logger.Warn("failed to publish reply event", "session_id", r.SessionID, "error", err)
	}
}
