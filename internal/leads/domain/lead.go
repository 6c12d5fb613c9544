// Package domain contains the lead status-transition and follow-up automation
// engine. Everything in this package is pure: functions receive record
// snapshots and return declarative intents; persistence is the caller's job.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lead pipeline status. The set is fixed; values are the
// German labels used throughout the sales organization.
type Status string

const (
	StatusNew          Status = "Neu"
	StatusInProgress   Status = "In Bearbeitung"
	StatusNotReached1  Status = "Nicht erreicht 1x"
	StatusNotReached2  Status = "Nicht erreicht 2x"
	StatusNotReached3  Status = "Nicht erreicht 3x"
	StatusAppointment  Status = "Termin vereinbart"
	StatusOfferSent    Status = "Angebot übermittelt"
	StatusTVP          Status = "TVP"
	StatusNegotiation  Status = "In Verhandlung"
	StatusWon          Status = "Gewonnen"
	StatusLost         Status = "Verloren"
	StatusResubmission Status = "Wiedervorlage"
)

// AllStatuses lists every valid lead status.
var AllStatuses = []Status{
	StatusNew, StatusInProgress,
	StatusNotReached1, StatusNotReached2, StatusNotReached3,
	StatusAppointment, StatusOfferSent, StatusTVP,
	StatusNegotiation, StatusWon, StatusLost, StatusResubmission,
}

// Valid reports whether s is one of the fixed status values.
func (s Status) Valid() bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// PhoneStatus is the outcome of the most recent phone contact attempt.
type PhoneStatus string

const (
	PhoneStatusOpen        PhoneStatus = "offen"
	PhoneStatusReachable   PhoneStatus = "erreichbar"
	PhoneStatusNotReached  PhoneStatus = "nicht_erreicht"
	PhoneStatusWrongNumber PhoneStatus = "falsche_nummer"
)

// Valid reports whether p is one of the fixed phone status values.
func (p PhoneStatus) Valid() bool {
	switch p {
	case PhoneStatusOpen, PhoneStatusReachable, PhoneStatusNotReached, PhoneStatusWrongNumber:
		return true
	}
	return false
}

// LostReason qualifies a lead in status "Verloren".
type LostReason string

const (
	LostReasonNoInterest   LostReason = "kein_interesse"
	LostReasonTooExpensive LostReason = "zu_teuer"
	LostReasonCompetitor   LostReason = "konkurrenz"
	LostReasonOther        LostReason = "sonstiges"
)

// Valid reports whether r is one of the fixed lost reason values.
func (r LostReason) Valid() bool {
	switch r {
	case LostReasonNoInterest, LostReasonTooExpensive, LostReasonCompetitor, LostReasonOther:
		return true
	}
	return false
}

// Lead is the engine-facing snapshot of a lead record.
type Lead struct {
	ID       uuid.UUID
	TenantID uuid.UUID

	FirstName string
	LastName  string
	Phone     string
	Email     *string
	City      string

	Status          Status
	PhoneStatus     PhoneStatus
	NotReachedCount int

	FollowUp        bool
	FollowUpDate    *time.Time
	AppointmentDate *time.Time

	OfferPV      bool
	OfferStorage bool
	OfferBackup  bool
	TVP          bool

	LostReason     *LostReason
	AssignedUserID *uuid.UUID

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HistoryEntry is an immutable record of one status transition.
// Entries are append-only; they are never updated after creation.
type HistoryEntry struct {
	ID             uuid.UUID
	LeadID         uuid.UUID
	TenantID       uuid.UUID
	OldStatus      Status
	NewStatus      Status
	OldPhoneStatus PhoneStatus
	NewPhoneStatus PhoneStatus
	ChangedBy      uuid.UUID
	Reason         *string
	Notes          *string
	ChangedAt      time.Time
}

// NotificationIntent asks the collaborator to create an in-app notification.
type NotificationIntent struct {
	TenantID uuid.UUID
	UserID   uuid.UUID
	LeadID   uuid.UUID
	Type     string
	Title    string
	Message  string
}

// WebhookIntent asks the collaborator to fire the configured outbound webhook.
// Delivery is fire-and-forget; a failed delivery must never fail the update.
type WebhookIntent struct {
	LeadID   uuid.UUID
	TenantID uuid.UUID
}

// Day truncates t to midnight in its location. All due-date arithmetic in the
// engine operates on whole days.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
