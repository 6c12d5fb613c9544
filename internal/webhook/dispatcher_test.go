package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"solarlead_backend/platform/logger"
)

type testWebhookConfig struct {
	url string
}

func (c testWebhookConfig) GetUnreachableWebhookURL() string  { return c.url }
func (c testWebhookConfig) IsUnreachableWebhookEnabled() bool { return c.url != "" }

func TestDispatcherSendsPayload(t *testing.T) {
	var received unreachablePayload
	var contentType string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	d := NewDispatcher(testWebhookConfig{url: srv.URL}, logger.New("test"))
	leadID := uuid.New()
	tenantID := uuid.New()

	if err := d.Send(context.Background(), leadID, tenantID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if contentType != "application/json" {
		t.Errorf("content type %q", contentType)
	}
	if received.Event != "lead.unreachable" {
		t.Errorf("event %q, want lead.unreachable", received.Event)
	}
	if received.LeadID != leadID || received.TenantID != tenantID {
		t.Error("payload not keyed to the lead")
	}
	if received.SentAt.IsZero() {
		t.Error("sentAt missing")
	}
}

func TestDispatcherReportsServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	d := NewDispatcher(testWebhookConfig{url: srv.URL}, logger.New("test"))

	if err := d.Send(context.Background(), uuid.New(), uuid.New()); err == nil {
		t.Fatal("expected an error for a 500 response")
	}
}

func TestDispatcherNilWhenDisabled(t *testing.T) {
	d := NewDispatcher(testWebhookConfig{}, logger.New("test"))
	if d != nil {
		t.Fatal("expected nil dispatcher without a configured URL")
	}

	// Nil receiver is a no-op, not a panic.
	if err := d.Send(context.Background(), uuid.New(), uuid.New()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
