package hermes

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

const (
	SubjectReplyRequested = "swarm.mimic.reply.requested"
	SubjectReplyGenerated = "swarm.mimic.reply.generated"
	SubjectReplyRejected  = "swarm.mimic.reply.rejected"
	SubjectRegistered     = "swarm.agent.mimic.registered"

	// SubjectSlackReaction carries reactions forwarded from Slack.
	SubjectSlackReaction = "swarm.slack.reaction"
)

// ReplyRequest asks for a reply to Post on behalf of UserID.
type ReplyRequest struct {
	RequestID string `json:"request_id"`
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id,omitempty"`
	Post      string `json:"post"`
}

// ReplyGenerated is published for every reply produced, whichever transport
// asked for it.
type ReplyGenerated struct {
	RequestID string  `json:"request_id,omitempty"`
	UserID    string  `json:"user_id"`
	SessionID string  `json:"session_id"`
	Post      string  `json:"post"`
	Reply     string  `json:"reply"`
	Source    string  `json:"source"`
	Score     float64 `json:"score"`
	Advisory  bool    `json:"advisory"`
	Warning   string  `json:"warning,omitempty"`
}

// ReplyRejected is published when a reviewer rejects a reply.
type ReplyRejected struct {
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
	Reply     string `json:"reply"`
	Source    string `json:"source"`
	Reviewer  string `json:"reviewer"`
}

type Client struct {
	conn   *nats.Conn
	subs   []*nats.Subscription
	logger *slog.Logger
}

func NewClient(ctx context.Context, url, token string, logger *slog.Logger) (*Client, error) {
	opts := []nats.Option{
		nats.Name("mimic"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(60),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			logger.Info("nats reconnected")
		}),
	}
	if token != "" {
		opts = append(opts, nats.Token(token))
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	return &Client{conn: nc, logger: logger}, nil
}

// Publish JSON-encodes data onto subject.
func (c *Client) Publish(subject string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	if err := c.conn.Publish(subject, payload); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	return nil
}

func (c *Client) Subscribe(subject string, handler func(subject string, data []byte)) error {
	sub, err := c.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(msg.Subject, msg.Data)
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", subject, err)
	}
	c.subs = append(c.subs, sub)
	c.logger.Info("subscribed", "subject", subject)
	return nil
}

// Connected reports whether the connection is currently up.
func (c *Client) Connected() bool {
	return c.conn.IsConnected()
}

func (c *Client) Close() {
	for _, sub := range c.subs {
		_ = sub.Unsubscribe()
	}
	c.conn.Close()
}
