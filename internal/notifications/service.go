package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"stylegen/internal/config"
)

const userAgent = "stylegen/0.1.0"

// Event identifies a batch milestone.
type Event string

const (
	EventBatchStarted        Event = "batch_started"
	EventBatchCompleted      Event = "batch_completed"
	EventSelectionsConfirmed Event = "selections_confirmed"
	EventExportWritten       Event = "export_written"
	EventError               Event = "error"
	EventTest                Event = "test"
)

// Payload carries event fields. Recognised keys depend on the event.
type Payload map[string]any

// Service publishes events.
type Service interface {
	Publish(ctx context.Context, event Event, payload Payload) error
}

// NewService builds an ntfy-backed notifier, or a no-op one when no topic is
// configured.
func NewService(cfg *config.Config) Service {
	if cfg == nil {
		return noopService{}
	}
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}
	timeout := time.Duration(cfg.Notifications.RequestTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

type message struct {
	title    string
	body     string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) Publish(ctx context.Context, event Event, payload Payload) error {
	msg, ok := format(event, payload)
	if !ok {
		return fmt.Errorf("unknown notification event %q", event)
	}
	return n.send(ctx, msg)
}

func format(event Event, payload Payload) (message, bool) {
	switch event {
	case EventBatchStarted:
		return message{
			title: "stylegen - Batch Started",
			body:  fmt.Sprintf("Analysing %d image(s)", intValue(payload, "count")),
			tags:  []string{"stylegen", "batch", "started"},
		}, true
	case EventBatchCompleted:
		succeeded := intValue(payload, "succeeded")
		failed := intValue(payload, "failed")
		duration := durationValue(payload, "duration")
		if failed == 0 {
			return message{
				title: "stylegen - Batch Complete",
				body:  fmt.Sprintf("%d image(s) analysed in %s", succeeded, duration),
				tags:  []string{"stylegen", "batch", "completed"},
			}, true
		}
		return message{
			title: "stylegen - Batch Complete (with errors)",
			body:  fmt.Sprintf("%d succeeded, %d failed in %s", succeeded, failed, duration),
			tags:  []string{"stylegen", "batch", "warning"},
		}, true
	case EventSelectionsConfirmed:
		return message{
			title: "stylegen - Selections Confirmed",
			body:  fmt.Sprintf("%d result(s) ready for export", intValue(payload, "count")),
			tags:  []string{"stylegen", "selection", "confirmed"},
		}, true
	case EventExportWritten:
		body := fmt.Sprintf("Exported %s", stringValue(payload, "file"))
		if rows := intValue(payload, "rows"); rows > 0 {
			body = fmt.Sprintf("%s (%d rows)", body, rows)
		}
		return message{
			title: "stylegen - Export Ready",
			body:  body,
			tags:  []string{"stylegen", "export"},
		}, true
	case EventError:
		var b strings.Builder
		b.WriteString("Error")
		if label := stringValue(payload, "context"); label != "" {
			b.WriteString(" during ")
			b.WriteString(label)
		}
		b.WriteString(": ")
		if text := stringValue(payload, "error"); text != "" {
			b.WriteString(text)
		} else {
			b.WriteString("unknown")
		}
		return message{
			title:    "stylegen - Error",
			body:     b.String(),
			tags:     []string{"stylegen", "error"},
			priority: "high",
		}, true
	case EventTest:
		return message{
			title:    "stylegen - Test",
			body:     "Notification system test",
			tags:     []string{"stylegen", "test"},
			priority: "low",
		}, true
	}
	return message{}, false
}

func (n *ntfyService) send(ctx context.Context, msg message) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(msg.body))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if msg.title != "" {
		req.Header.Set("Title", msg.title)
	}
	if len(msg.tags) > 0 {
		req.Header.Set("Tags", strings.Join(msg.tags, ","))
	}
	if msg.priority != "" {
		req.Header.Set("Priority", msg.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func intValue(p Payload, key string) int {
	switch v := p[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	}
	return 0
}

func stringValue(p Payload, key string) string {
	if v, ok := p[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func durationValue(p Payload, key string) string {
	d, _ := p[key].(time.Duration)
	d = d.Round(time.Second)
	if d <= 0 {
		return "0s"
	}
	return d.String()
}

type noopService struct{}

func (noopService) Publish(context.Context, Event, Payload) error { return nil }
