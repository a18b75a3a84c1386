package http

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/nats-io/nats.go"

	"github.com/samirrijal/propfinder/internal/pkg/metrics"
)

const allProximitySubjects = "proximity.>"

// wsMessage is sent from client to narrow or widen the relayed events.
type wsMessage struct {
	Action   string `json:"action"`   // "subscribe" | "unsubscribe"
	Viewport string `json:"viewport"` // viewport id filter (optional, "" = all)
	Kind     string `json:"kind"`     // "enter" | "leave" (optional, "" = both)
}

// proximitySubject builds the NATS subject for a viewport and transition kind filter.
func proximitySubject(viewport, kind string) string {
	if viewport == "" {
		viewport = "*"
	}
	if kind == "" {
		kind = "*"
	}
	if viewport == "*" && kind == "*" {
		return allProximitySubjects
	}
	return "proximity." + viewport + "." + kind
}

// WebSocketHandler returns a handler that relays proximity transitions from NATS.
// Clients start subscribed to every viewport and may send
// {"action":"subscribe","viewport":"map"} to add a narrower feed, or
// {"action":"unsubscribe"} to drop the default one.
func WebSocketHandler(nc *nats.Conn, logger *slog.Logger) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		remoteAddr := c.RemoteAddr().String()
		logger.Info("ws client connected", "remote", remoteAddr)
		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		var mu sync.Mutex
		subs := make(map[string]*nats.Subscription)

		writeJSON := func(v any) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}
		relay := func(msg *nats.Msg) {
			_ = writeJSON(json.RawMessage(msg.Data))
		}

		sub, err := nc.Subscribe(allProximitySubjects, relay)
		if err != nil {
			logger.Warn("ws default subscribe failed", "error", err)
			return
		}
		subs[allProximitySubjects] = sub

		done := make(chan struct{})
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					mu.Lock()
					err := c.WriteMessage(websocket.PingMessage, nil)
					mu.Unlock()
					if err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				break
			}

			var m wsMessage
			if err := json.Unmarshal(msg, &m); err != nil {
				_ = writeJSON(map[string]string{"error": "invalid JSON"})
				continue
			}
			if m.Kind != "" && m.Kind != "enter" && m.Kind != "leave" {
				_ = writeJSON(map[string]string{"error": "unknown kind: " + m.Kind})
				continue
			}
			subject := proximitySubject(m.Viewport, m.Kind)

			switch m.Action {
			case "subscribe":
				if _, exists := subs[subject]; exists {
					_ = writeJSON(map[string]string{"status": "already subscribed", "subject": subject})
					continue
				}
				s, err := nc.Subscribe(subject, relay)
				if err != nil {
					_ = writeJSON(map[string]string{"error": "subscribe failed: " + err.Error()})
					continue
				}
				subs[subject] = s
				_ = writeJSON(map[string]string{"status": "subscribed", "subject": subject})

			case "unsubscribe":
				if s, exists := subs[subject]; exists {
					_ = s.Unsubscribe()
					delete(subs, subject)
					_ = writeJSON(map[string]string{"status": "unsubscribed", "subject": subject})
				} else {
					_ = writeJSON(map[string]string{"error": "not subscribed to " + subject})
				}

			default:
				_ = writeJSON(map[string]string{"error": "unknown action: " + m.Action})
			}
		}

		close(done)
		for _, s := range subs {
			_ = s.Unsubscribe()
		}
		logger.Info("ws client disconnected", "remote", remoteAddr)
	}
}
