// Package notify publishes build events to NATS.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"git.home.luguber.info/inful/webbuild/internal/config"
	"git.home.luguber.info/inful/webbuild/internal/logfields"
)

// BuildEvent is the message published after every build.
type BuildEvent struct {
	BuildID     string    `json:"build_id"`
	Outcome     string    `json:"outcome"`
	Output      string    `json:"output"`
	StartedAt   time.Time `json:"started_at"`
	DurationMS  int64     `json:"duration_ms"`
	Directories int       `json:"directories"`
	Pages       int       `json:"pages"`
	Copies      int       `json:"copies"`
	Bytes       int64     `json:"bytes"`
	Error       string    `json:"error,omitempty"`
}

// Publisher delivers build events.
type Publisher interface {
	Publish(ctx context.Context, event BuildEvent) error
	Close()
}

// Noop discards every event.
type Noop struct{}

func (Noop) Publish(context.Context, BuildEvent) error { return nil }
func (Noop) Close()                                    {}

// conn is the subset of *nats.Conn the publisher uses.
type conn interface {
	Publish(subject string, data []byte) error
	FlushWithContext(ctx context.Context) error
	Close()
}

// NATSPublisher publishes events on a core NATS subject.
type NATSPublisher struct {
	conn    conn
	subject string
}

const connectTimeout = 5 * time.Second

// New returns a Noop publisher when no URL is configured, otherwise a
// connected NATSPublisher.
func New(cfg config.NotifyConfig) (Publisher, error) {
	if cfg.NATSURL == "" {
		return Noop{}, nil
	}

	nc, err := nats.Connect(cfg.NATSURL,
		nats.Name("webbuild"),
		nats.Timeout(connectTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	slog.Info("NATS publisher initialized for build events",
		"url", cfg.NATSURL,
		"subject", cfg.Subject)
	return &NATSPublisher{conn: nc, subject: cfg.Subject}, nil
}

// Publish sends the event and waits for the server to acknowledge the flush.
func (p *NATSPublisher) Publish(ctx context.Context, event BuildEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := p.conn.Publish(p.subject, data); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := p.conn.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("failed to flush event: %w", err)
	}

	slog.Debug("Published build event",
		logfields.BuildID(event.BuildID),
		"subject", p.subject,
		"outcome", event.Outcome)
	return nil
}

// Close closes the connection.
func (p *NATSPublisher) Close() {
	p.conn.Close()
}
