// Package notification stores in-app notifications and reacts to domain
// events from the lead pipeline.
package notification

import (
	"context"
	"fmt"

	"solarlead_backend/internal/email"
	"solarlead_backend/internal/events"
	apphttp "solarlead_backend/internal/http"
	"solarlead_backend/internal/notification/handler"
	"solarlead_backend/internal/notification/inapp"
	"solarlead_backend/platform/config"
	"solarlead_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ModuleConfig combines the config interfaces the notification module needs.
type ModuleConfig interface {
	config.EmailConfig
	config.NotificationConfig
}

// Module wires event subscriptions to the in-app store and the email sender.
type Module struct {
	inapp   *inapp.Service
	sender  email.Sender
	handler *handler.HTTPHandler
	cfg     ModuleConfig
	log     *logger.Logger
}

func New(pool *pgxpool.Pool, sender email.Sender, cfg ModuleConfig, log *logger.Logger) *Module {
	svc := inapp.NewService(inapp.NewRepository(pool), log)

	return &Module{
		inapp:   svc,
		sender:  sender,
		handler: handler.NewHTTPHandler(svc),
		cfg:     cfg,
		log:     log,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "notification"
}

// RegisterRoutes mounts the notification feed endpoints.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/notifications"))
}

// RegisterHandlers subscribes the module to the domain events it reacts to.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.NotificationRequested{}.EventName(), events.HandlerFunc(m.onNotificationRequested))
	bus.Subscribe(events.FollowUpEscalated{}.EventName(), events.HandlerFunc(m.onFollowUpEscalated))
}

func (m *Module) onNotificationRequested(ctx context.Context, event events.Event) error {
	e, ok := event.(events.NotificationRequested)
	if !ok {
		return nil
	}

	leadID := e.LeadID
	return m.inapp.Send(ctx, inapp.SendParams{
		TenantID: e.TenantID,
		UserID:   e.UserID,
		LeadID:   &leadID,
		Type:     e.Type,
		Title:    e.Title,
		Message:  e.Message,
	})
}

func (m *Module) onFollowUpEscalated(ctx context.Context, event events.Event) error {
	e, ok := event.(events.FollowUpEscalated)
	if !ok {
		return nil
	}

	if e.AssignedUserID != nil {
		leadID := e.LeadID
		if err := m.inapp.Send(ctx, inapp.SendParams{
			TenantID: e.TenantID,
			UserID:   *e.AssignedUserID,
			LeadID:   &leadID,
			Type:     "follow_up_escalated",
			Title:    fmt.Sprintf("Wiedervorlage eskaliert (Stufe %d)", e.EscalationLevel),
			Message:  fmt.Sprintf("Die Wiedervorlage für Lead %s ist seit %d Tagen überfällig.", e.LeadName, e.DaysOverdue),
		}); err != nil {
			return err
		}
	}

	// Only the highest level goes out by email.
	if e.EscalationLevel < 3 {
		return nil
	}

	to := m.cfg.GetEscalationEmailTo()
	if to == "" {
		return nil
	}

	leadURL := fmt.Sprintf("%s/leads/%s", m.cfg.GetAppBaseURL(), e.LeadID)
	if err := m.sender.SendEscalationEmail(ctx, to, e.LeadName, leadURL, e.DaysOverdue); err != nil {
		m.log.Error("failed to send escalation email", "error", err, "leadId", e.LeadID)
		return err
	}

	return nil
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
