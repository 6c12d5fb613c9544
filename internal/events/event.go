// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"time"

	"solarlead_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// LeadCreated is published when a new lead is created.
type LeadCreated struct {
	BaseEvent
	LeadID         uuid.UUID  `json:"leadId"`
	TenantID       uuid.UUID  `json:"tenantId"`
	AssignedUserID *uuid.UUID `json:"assignedUserId,omitempty"`
	Name           string     `json:"name"`
	Phone          string     `json:"phone"`
	City           string     `json:"city"`
}

func (e LeadCreated) EventName() string { return "leads.lead.created" }

// LeadStatusChanged is published after a lead update that changed the status.
type LeadStatusChanged struct {
	BaseEvent
	LeadID    uuid.UUID `json:"leadId"`
	TenantID  uuid.UUID `json:"tenantId"`
	OldStatus string    `json:"oldStatus"`
	NewStatus string    `json:"newStatus"`
	ChangedBy uuid.UUID `json:"changedBy"`
}

func (e LeadStatusChanged) EventName() string { return "leads.lead.status_changed" }

// LeadUnreachable is published when a lead reaches "Nicht erreicht 3x".
// The webhook dispatcher listens for this one.
type LeadUnreachable struct {
	BaseEvent
	LeadID   uuid.UUID `json:"leadId"`
	TenantID uuid.UUID `json:"tenantId"`
}

func (e LeadUnreachable) EventName() string { return "leads.lead.unreachable" }

// NotificationRequested asks the notification module to store an in-app
// notification for a user.
type NotificationRequested struct {
	BaseEvent
	TenantID uuid.UUID `json:"tenantId"`
	UserID   uuid.UUID `json:"userId"`
	LeadID   uuid.UUID `json:"leadId"`
	Type     string    `json:"type"`
	Title    string    `json:"title"`
	Message  string    `json:"message"`
}

func (e NotificationRequested) EventName() string { return "notifications.requested" }

// FollowUpEscalated is published by the escalation sweep for every follow-up
// it raised. Level 3 escalations additionally trigger an email.
type FollowUpEscalated struct {
	BaseEvent
	FollowUpID      uuid.UUID  `json:"followUpId"`
	LeadID          uuid.UUID  `json:"leadId"`
	TenantID        uuid.UUID  `json:"tenantId"`
	LeadName        string     `json:"leadName"`
	AssignedUserID  *uuid.UUID `json:"assignedUserId,omitempty"`
	EscalationLevel int        `json:"escalationLevel"`
	DaysOverdue     int        `json:"daysOverdue"`
	DueDate         time.Time  `json:"dueDate"`
}

func (e FollowUpEscalated) EventName() string { return "followups.escalated" }
