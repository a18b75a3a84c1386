package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/propfinder/internal/core/domain"
)

// ProximityStream holds every proximity transition published by the API.
const ProximityStream = "PROXIMITY_EVENTS"

// ProximitySubject is where transitions of one viewport are published.
func ProximitySubject(viewportID string, kind domain.TransitionKind) string {
	return "proximity." + viewportID + "." + string(kind)
}

// NotificationSubject is where alerts for one recipient are delivered.
func NotificationSubject(recipient string) string {
	return "notifications." + recipient
}

// Publisher implements ports.EventPublisher and ports.NotificationService using NATS.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and enables JetStream.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := Connect(url)
	if err != nil {
		return nil, err
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	// Ensure streams exist
	streams := []nats.StreamConfig{
		{
			Name:      ProximityStream,
			Subjects:  []string{"proximity.>"},
			Retention: nats.InterestPolicy,
			MaxAge:    24 * time.Hour,
			Storage:   nats.FileStorage,
		},
	}

	for _, cfg := range streams {
		if _, err := js.AddStream(&cfg); err != nil {
			// Stream may already exist; try update
			if _, err := js.UpdateStream(&cfg); err != nil {
				conn.Close()
				return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
			}
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

// PublishProximityEvent stores a transition on the proximity stream.
func (p *Publisher) PublishProximityEvent(ctx context.Context, event *domain.ProximityEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(ProximitySubject(event.ViewportID, event.Kind), data, nats.Context(ctx), nats.MsgId(event.ID))
	return err
}

type notification struct {
	Recipient string    `json:"recipient"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	SentAt    time.Time `json:"sent_at"`
}

// Notify publishes a notification on core NATS; delivery is best effort.
func (p *Publisher) Notify(ctx context.Context, recipient, title, body string) error {
	data, err := json.Marshal(notification{Recipient: recipient, Title: title, Body: body, SentAt: time.Now().UTC()})
	if err != nil {
		return err
	}
	return p.conn.Publish(NotificationSubject(recipient), data)
}

// Conn exposes the underlying connection for sharing with position feeds.
func (p *Publisher) Conn() *nats.Conn {
	return p.conn
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// Connect opens a NATS connection that keeps reconnecting.
func Connect(url string) (*nats.Conn, error) {
	conn, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return conn, nil
}
