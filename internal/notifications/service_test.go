package notifications_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"stylegen/internal/config"
	"stylegen/internal/notifications"
)

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	svc := notifications.NewService(&cfg)
	if err := svc.Publish(context.Background(), notifications.EventBatchStarted, notifications.Payload{"count": 3}); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

type captured struct {
	title    string
	body     string
	tags     string
	priority string
}

func newTestServer(t *testing.T, status int) (*httptest.Server, <-chan captured) {
	t.Helper()
	ch := make(chan captured, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		ch <- captured{
			title:    r.Header.Get("Title"),
			body:     string(body),
			tags:     r.Header.Get("Tags"),
			priority: r.Header.Get("Priority"),
		}
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv, ch
}

func TestNtfyServiceFormatsPayloads(t *testing.T) {
	tests := []struct {
		name           string
		event          notifications.Event
		payload        notifications.Payload
		expectTitle    string
		expectBody     string
		expectTags     string
		expectPriority string
	}{
		{
			name:        "batch started",
			event:       notifications.EventBatchStarted,
			payload:     notifications.Payload{"count": 12},
			expectTitle: "stylegen - Batch Started",
			expectBody:  "Analysing 12 image(s)",
			expectTags:  "stylegen,batch,started",
		},
		{
			name:        "batch completed",
			event:       notifications.EventBatchCompleted,
			payload:     notifications.Payload{"succeeded": 5, "failed": 0, "duration": 95 * time.Second},
			expectTitle: "stylegen - Batch Complete",
			expectBody:  "5 image(s) analysed in 1m35s",
			expectTags:  "stylegen,batch,completed",
		},
		{
			name:        "batch completed with failures",
			event:       notifications.EventBatchCompleted,
			payload:     notifications.Payload{"succeeded": 4, "failed": 1},
			expectTitle: "stylegen - Batch Complete (with errors)",
			expectBody:  "4 succeeded, 1 failed in 0s",
			expectTags:  "stylegen,batch,warning",
		},
		{
			name:        "selections confirmed",
			event:       notifications.EventSelectionsConfirmed,
			payload:     notifications.Payload{"count": 4},
			expectTitle: "stylegen - Selections Confirmed",
			expectBody:  "4 result(s) ready for export",
			expectTags:  "stylegen,selection,confirmed",
		},
		{
			name:        "export written",
			event:       notifications.EventExportWritten,
			payload:     notifications.Payload{"file": "hairstyle_analysis_20240101_120000.xlsx", "rows": 4},
			expectTitle: "stylegen - Export Ready",
			expectBody:  "Exported hairstyle_analysis_20240101_120000.xlsx (4 rows)",
			expectTags:  "stylegen,export",
		},
		{
			name:           "error",
			event:          notifications.EventError,
			payload:        notifications.Payload{"context": "analysis", "error": "quota exceeded"},
			expectTitle:    "stylegen - Error",
			expectBody:     "Error during analysis: quota exceeded",
			expectTags:     "stylegen,error",
			expectPriority: "high",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, ch := newTestServer(t, http.StatusOK)
			cfg := config.Default()
			cfg.Notifications.NtfyTopic = srv.URL
			svc := notifications.NewService(&cfg)

			if err := svc.Publish(context.Background(), tt.event, tt.payload); err != nil {
				t.Fatalf("Publish: %v", err)
			}
			got := <-ch
			if got.title != tt.expectTitle {
				t.Errorf("title = %q, want %q", got.title, tt.expectTitle)
			}
			if got.body != tt.expectBody {
				t.Errorf("body = %q, want %q", got.body, tt.expectBody)
			}
			if got.tags != tt.expectTags {
				t.Errorf("tags = %q, want %q", got.tags, tt.expectTags)
			}
			if got.priority != tt.expectPriority {
				t.Errorf("priority = %q, want %q", got.priority, tt.expectPriority)
			}
		})
	}
}

func TestNtfyServiceReportsHTTPErrors(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusForbidden)
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = srv.URL
	svc := notifications.NewService(&cfg)

	if err := svc.Publish(context.Background(), notifications.EventTest, nil); err == nil {
		t.Fatal("expected error for 403 response")
	}
}

func TestNtfyServiceRejectsUnknownEvent(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = "http://127.0.0.1:1"
	svc := notifications.NewService(&cfg)
	err := svc.Publish(context.Background(), notifications.Event("bogus"), nil)
	if err == nil || !strings.Contains(err.Error(), "unknown notification event") {
		t.Fatalf("expected unknown event error, got %v", err)
	}
}
