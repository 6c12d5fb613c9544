// Package webhook delivers outbound notifications to external systems when a
// lead becomes unreachable.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"solarlead_backend/internal/events"
	"solarlead_backend/platform/config"
	"solarlead_backend/platform/logger"
)

type unreachablePayload struct {
	Event    string    `json:"event"`
	LeadID   uuid.UUID `json:"lead_id"`
	TenantID uuid.UUID `json:"tenant_id"`
	SentAt   time.Time `json:"sent_at"`
}

// Dispatcher posts the unreachable-lead payload to the configured endpoint.
// Delivery is fire-and-forget: a failed delivery is logged, never retried,
// and never fails the lead update that triggered it.
type Dispatcher struct {
	url  string
	http *http.Client
	log  *logger.Logger
}

func NewDispatcher(cfg config.WebhookConfig, log *logger.Logger) *Dispatcher {
	if !cfg.IsUnreachableWebhookEnabled() {
		return nil
	}

	return &Dispatcher{
		url:  cfg.GetUnreachableWebhookURL(),
		http: &http.Client{Timeout: 10 * time.Second},
		log:  log,
	}
}

// RegisterHandlers subscribes the dispatcher to the unreachable event. Safe
// to call on a nil dispatcher (webhook not configured).
func (d *Dispatcher) RegisterHandlers(bus events.Bus) {
	if d == nil {
		return
	}
	bus.Subscribe(events.LeadUnreachable{}.EventName(), events.HandlerFunc(d.onLeadUnreachable))
}

func (d *Dispatcher) onLeadUnreachable(ctx context.Context, event events.Event) error {
	e, ok := event.(events.LeadUnreachable)
	if !ok {
		return nil
	}
	return d.Send(ctx, e.LeadID, e.TenantID)
}

// Send delivers one unreachable notification.
func (d *Dispatcher) Send(ctx context.Context, leadID, tenantID uuid.UUID) error {
	if d == nil {
		return nil
	}

	payload := unreachablePayload{
		Event:    "lead.unreachable",
		LeadID:   leadID,
		TenantID: tenantID,
		SentAt:   time.Now().UTC(),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.http.Do(req)
	if err != nil {
		d.log.WebhookDelivery(d.url, 0, err)
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(resp.Body)
		err := fmt.Errorf("webhook endpoint returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
		d.log.WebhookDelivery(d.url, resp.StatusCode, err)
		return err
	}

	d.log.WebhookDelivery(d.url, resp.StatusCode, nil)
	return nil
}
