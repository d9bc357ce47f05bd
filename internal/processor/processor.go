package processor

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/mimic/internal/hermes"
	"github.com/MikeSquared-Agency/mimic/internal/replies"
	"github.com/MikeSquared-Agency/mimic/internal/slack"
	"github.com/MikeSquared-Agency/mimic/internal/store"
	"github.com/MikeSquared-Agency/mimic/internal/synth"
)

const (
	requestTimeout = 2 * time.Minute

	// Replies nobody reacts to are forgotten after pendingTTL, and at most
	// maxPending are tracked at once.
	pendingTTL = 24 * time.Hour
	maxPending = 500
)

type Replier interface {
	Reply(ctx context.Context, req replies.Request) (replies.Reply, error)
}

// Corpus receives replies approved by a reviewer.
type Corpus interface {
	AddComment(ctx context.Context, userID uuid.UUID, body string) (store.Comment, error)
}

type Publisher interface {
	Publish(subject string, data any) error
}

// Reviewer posts replies for human review.
type Reviewer interface {
	PostReplyForReview(ctx context.Context, item slack.ReviewItem) (string, error)
	PostThread(ctx context.Context, threadTS, text string) error
}

// Processor handles Mimic's NATS events: reply requests from other agents and
// the Slack review loop over generated replies.
type Processor struct {
	replies  Replier
	corpus   Corpus
	hermes   Publisher
	reviewer Reviewer
	logger   *slog.Logger

	mu      sync.Mutex
	pending map[string]*pendingReply // keyed by review message TS
	now     func() time.Time
}

type pendingReply struct {
	UserID    string
	SessionID string
	Reply     string
	Source    string
	PostedAt  time.Time
}

// New builds a Processor. reviewer may be nil, which disables the review loop.
func New(r Replier, corpus Corpus, h Publisher, reviewer Reviewer, logger *slog.Logger) *Processor {
	return &Processor{
		replies:  r,
		corpus:   corpus,
		hermes:   h,
		reviewer: reviewer,
		logger:   logger,
		pending:  make(map[string]*pendingReply),
		now:      time.Now,
	}
}

// HandleReplyRequested is the NATS handler for swarm.mimic.reply.requested.
// The reply itself is announced by the replies service.
func (p *Processor) HandleReplyRequested(subject string, data []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	var req hermes.ReplyRequest
	if err := json.Unmarshal(data, &req); err != nil {
		p.logger.Error("failed to parse reply request", "error", err)
		return
	}

	reply, err := p.replies.Reply(ctx, replies.Request{
		RequestID: req.RequestID,
		UserID:    req.UserID,
		SessionID: req.SessionID,
		Post:      req.Post,
	})
	if err != nil {
		p.logger.Error("reply request failed", "request_id", req.RequestID, "user_id", req.UserID, "error", err)
		return
	}

	p.logger.Info("reply request served",
		"request_id", req.RequestID,
		"session_id", reply.SessionID,
		"source", reply.Source,
	)
}

// HandleReplyGenerated posts generated replies to Slack for review. Static
// fallbacks carry nothing to learn from and are not posted.
func (p *Processor) HandleReplyGenerated(subject string, data []byte) {
	if p.reviewer == nil {
		return
	}

	var evt hermes.ReplyGenerated
	if err := json.Unmarshal(data, &evt); err != nil {
		p.logger.Error("failed to parse reply event", "error", err)
		return
	}
	if evt.Source == string(synth.SourceStaticFallback) || evt.Reply == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	ts, err := p.reviewer.PostReplyForReview(ctx, slack.ReviewItem{
		UserID:    evt.UserID,
		SessionID: evt.SessionID,
		Post:      evt.Post,
		Reply:     evt.Reply,
		Source:    evt.Source,
		Score:     evt.Score,
	})
	if err != nil {
		p.logger.Error("slack post failed", "session_id", evt.SessionID, "error", err)
		return
	}

	p.track(ts, &pendingReply{
		UserID:    evt.UserID,
		SessionID: evt.SessionID,
		Reply:     evt.Reply,
		Source:    evt.Source,
	})
}

// track remembers a posted reply, dropping expired entries and the oldest
// one when full.
func (p *Processor) track(ts string, item *pendingReply) {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	item.PostedAt = now
	var oldestTS string
	var oldest time.Time
	for k, v := range p.pending {
		if now.Sub(v.PostedAt) > pendingTTL {
			delete(p.pending, k)
			continue
		}
		if oldestTS == "" || v.PostedAt.Before(oldest) {
			oldestTS, oldest = k, v.PostedAt
		}
	}
	if len(p.pending) >= maxPending {
		delete(p.pending, oldestTS)
		p.logger.Warn("review queue full, dropping oldest reply", "ts", oldestTS)
	}
	p.pending[ts] = item
}

// HandleReaction processes Slack reaction feedback from slack-forwarder via NATS.
func (p *Processor) HandleReaction(subject string, data []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	evt, err := slack.ParseReactionEvent(data)
	if err != nil {
		p.logger.Error("failed to parse reaction", "error", err)
		return
	}

	verdict := slack.ParseReaction(evt.Reaction)
	if verdict == slack.VerdictUnknown {
		return // not a review reaction
	}

	p.mu.Lock()
	item, ok := p.pending[evt.MessageTS]
	if ok {
		delete(p.pending, evt.MessageTS)
		ok = p.now().Sub(item.PostedAt) <= pendingTTL
	}
	p.mu.Unlock()
	if !ok {
		return // not a message we're tracking
	}

	p.logger.Info("processing review reaction",
		"reaction", evt.Reaction,
		"verdict", string(verdict),
		"session_id", item.SessionID,
	)

	switch verdict {
	case slack.VerdictApproved:
		p.approve(ctx, item, evt.MessageTS)
	case slack.VerdictSkipped:
		p.logger.Info("reply skipped by reviewer", "session_id", item.SessionID, "reviewer", evt.UserID)
	case slack.VerdictRejected:
		err := p.hermes.Publish(hermes.SubjectReplyRejected, hermes.ReplyRejected{
			UserID:    item.UserID,
			SessionID: item.SessionID,
			Reply:     item.Reply,
			Source:    item.Source,
			Reviewer:  evt.UserID,
		})
		if err != nil {
			p.logger.Warn("failed to publish rejection", "session_id", item.SessionID, "error", err)
		}
	}
}

// approve saves the reply into the user's approved-comment corpus.
func (p *Processor) approve(ctx context.Context, item *pendingReply, messageTS string) {
	userID, err := uuid.Parse(item.UserID)
	if err != nil {
		p.logger.Error("invalid user id on approved reply", "user_id", item.UserID, "error", err)
		return
	}
	if _, err := p.corpus.AddComment(ctx, userID, item.Reply); err != nil {
		p.logger.Error("failed to save approved reply", "user_id", item.UserID, "error", err)
		return
	}
	if err := p.reviewer.PostThread(ctx, messageTS, "Saved to the approved comments."); err != nil {
		p.logger.Warn("failed to acknowledge approval", "error", err)
	}
}
