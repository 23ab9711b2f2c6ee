// Package publish notifies downstream renderers over NATS when a page is
// saved, so published sites can be rebuilt without polling the store.
package publish

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// PageSavedEvent is the wire payload emitted on every successful save.
type PageSavedEvent struct {
	Tenant    string    `json:"tenant"`
	Site      string    `json:"site"`
	PageID    string    `json:"pageId"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	Published bool      `json:"published"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher emits page events. The zero-value-free constructor makes the
// connection mandatory; use Nop when publishing is disabled.
type Publisher interface {
	PageSaved(event PageSavedEvent) error
	Close()
}

// NATSPublisher publishes page events on a NATS subject.
type NATSPublisher struct {
	conn    *nats.Conn
	subject string
}

// NewNATSPublisher connects to NATS and returns a publisher for the subject.
func NewNATSPublisher(url, subject string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url,
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	slog.Info("NATS publisher initialized", "url", url, "subject", subject)

	return &NATSPublisher{conn: conn, subject: subject}, nil
}

// PageSaved publishes a save event. Publish failures are reported to the
// caller but must not fail the save itself.
func (p *NATSPublisher) PageSaved(event PageSavedEvent) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := p.conn.Publish(p.subject, data); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	slog.Debug("Published page saved event",
		"tenant", event.Tenant,
		"site", event.Site,
		"page", event.PageID)
	return nil
}

// Close drains and closes the connection.
func (p *NATSPublisher) Close() {
	if p.conn != nil {
		if err := p.conn.Drain(); err != nil {
			slog.Warn("Error draining NATS connection", "error", err)
		}
	}
}

// NopPublisher is used when publishing is not configured.
type NopPublisher struct{}

func (NopPublisher) PageSaved(PageSavedEvent) error { return nil }
func (NopPublisher) Close()                         {}
