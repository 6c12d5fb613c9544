package domain

import (
	"time"

	"github.com/google/uuid"
)

// FollowUpType classifies a follow-up task.
type FollowUpType string

const (
	FollowUpCall          FollowUpType = "call"
	FollowUpOfferFollowUp FollowUpType = "offer_followup"
	FollowUpMeeting       FollowUpType = "meeting"
	FollowUpCustom        FollowUpType = "custom"
	FollowUpOffer         FollowUpType = "offer"
	FollowUpGeneric       FollowUpType = "followup"
	FollowUpTVP           FollowUpType = "tvp"
	FollowUpReengagement  FollowUpType = "reengagement"
)

// Valid reports whether t is one of the fixed follow-up types.
func (t FollowUpType) Valid() bool {
	switch t {
	case FollowUpCall, FollowUpOfferFollowUp, FollowUpMeeting, FollowUpCustom,
		FollowUpOffer, FollowUpGeneric, FollowUpTVP, FollowUpReengagement:
		return true
	}
	return false
}

// Priority ranks how urgently a follow-up needs attention.
type Priority string

const (
	PriorityLow     Priority = "low"
	PriorityMedium  Priority = "medium"
	PriorityHigh    Priority = "high"
	PriorityOverdue Priority = "overdue"
)

// Rank returns the numeric rank of a priority (overdue=4 > high=3 > medium=2 > low=1).
func (p Priority) Rank() int {
	switch p {
	case PriorityOverdue:
		return 4
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

// MaxEscalationLevel is the highest escalation a follow-up can reach.
const MaxEscalationLevel = 3

// FollowUp is a reminder task tied to a lead.
type FollowUp struct {
	ID              uuid.UUID
	LeadID          uuid.UUID
	TenantID        uuid.UUID
	Type            FollowUpType
	DueDate         time.Time
	Priority        Priority
	AutoGenerated   bool
	EscalationLevel int
	CompletedAt     *time.Time
	Notes           *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Open reports whether the follow-up is still open.
func (f FollowUp) Open() bool {
	return f.CompletedAt == nil
}

// FollowUpSpec describes one follow-up the rule table wants to exist.
type FollowUpSpec struct {
	Type            FollowUpType
	DueDate         time.Time
	Priority        Priority
	EscalationLevel int
	Notes           string
}

// GenerateFollowUps returns the follow-up specifications the rule table
// demands for a lead entering newStatus. Callers invoke this only when
// newStatus differs from the lead's previous status. Offsets are literal
// calendar days, matching the behavior of the rules as deployed.
func GenerateFollowUps(lead Lead, newStatus Status, today time.Time) []FollowUpSpec {
	today = Day(today)

	switch newStatus {
	case StatusNotReached1:
		return []FollowUpSpec{
			{Type: FollowUpCall, DueDate: today.AddDate(0, 0, 1), Priority: PriorityMedium, Notes: "Automatisch: 1. Kontaktversuch erfolglos"},
		}
	case StatusNotReached2:
		return []FollowUpSpec{
			{Type: FollowUpCall, DueDate: today.AddDate(0, 0, 8), Priority: PriorityMedium, Notes: "Automatisch: 2. Kontaktversuch erfolglos"},
		}
	case StatusNotReached3:
		return []FollowUpSpec{
			{Type: FollowUpCustom, DueDate: today, Priority: PriorityHigh, EscalationLevel: 1, Notes: "Automatisch: 3. Kontaktversuch erfolglos, Eskalation"},
		}
	case StatusOfferSent:
		return []FollowUpSpec{
			{Type: FollowUpOffer, DueDate: today.AddDate(0, 0, 1), Priority: PriorityMedium, Notes: "Automatisch: Angebot nachfassen"},
			{Type: FollowUpGeneric, DueDate: today.AddDate(0, 0, 7), Priority: PriorityMedium, Notes: "Automatisch: Angebot Follow-up"},
		}
	case StatusTVP:
		return []FollowUpSpec{
			{Type: FollowUpTVP, DueDate: today.AddDate(0, 0, 1), Priority: PriorityMedium, Notes: "Automatisch: TVP nachfassen"},
			{Type: FollowUpGeneric, DueDate: today.AddDate(0, 0, 3), Priority: PriorityHigh, Notes: "Automatisch: TVP Follow-up"},
		}
	case StatusLost:
		if lead.LostReason != nil && *lead.LostReason == LostReasonNoInterest {
			return []FollowUpSpec{
				{Type: FollowUpReengagement, DueDate: today.AddDate(0, 0, 30), Priority: PriorityLow, Notes: "Automatisch: Reaktivierung nach Absage"},
			}
		}
	}

	return nil
}

// MergeFollowUp folds a new spec into an existing open auto-generated
// follow-up of the same type: the earlier of the two due dates wins, and the
// higher-ranked priority wins. The escalation level is never lowered. This is
// what guarantees at most one open auto task per (lead, type).
func MergeFollowUp(existing FollowUp, spec FollowUpSpec) (FollowUp, bool) {
	merged := existing
	changed := false

	specDue := Day(spec.DueDate)
	if specDue.Before(Day(existing.DueDate)) {
		merged.DueDate = specDue
		changed = true
	}
	if spec.Priority.Rank() > existing.Priority.Rank() {
		merged.Priority = spec.Priority
		changed = true
	}
	if spec.EscalationLevel > existing.EscalationLevel {
		merged.EscalationLevel = spec.EscalationLevel
		changed = true
	}

	return merged, changed
}

// NewFollowUp materializes a spec as a fresh auto-generated follow-up row.
func NewFollowUp(lead Lead, spec FollowUpSpec, now time.Time) FollowUp {
	var notes *string
	if spec.Notes != "" {
		n := spec.Notes
		notes = &n
	}

	return FollowUp{
		ID:              uuid.New(),
		LeadID:          lead.ID,
		TenantID:        lead.TenantID,
		Type:            spec.Type,
		DueDate:         Day(spec.DueDate),
		Priority:        spec.Priority,
		AutoGenerated:   true,
		EscalationLevel: spec.EscalationLevel,
		Notes:           notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}
