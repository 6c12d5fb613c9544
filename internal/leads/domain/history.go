package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Notification types emitted by the history recorder.
const (
	NotificationStatusChange      = "status_change"
	NotificationPhoneStatusChange = "phone_status_change"
	NotificationFollowUpRequired  = "follow_up_required"
)

// RecordTransition produces the immutable history entry for an update and, if
// the transition is notify-worthy, exactly one notification intent. The three
// notification conditions are checked in order; the first match wins:
// status changed, phone status changed, follow-up newly required.
func RecordTransition(old, next Lead, actor uuid.UUID, reason, notes *string, now time.Time) (HistoryEntry, *NotificationIntent) {
	entry := HistoryEntry{
		ID:             uuid.New(),
		LeadID:         old.ID,
		TenantID:       old.TenantID,
		OldStatus:      old.Status,
		NewStatus:      next.Status,
		OldPhoneStatus: old.PhoneStatus,
		NewPhoneStatus: next.PhoneStatus,
		ChangedBy:      actor,
		Reason:         reason,
		Notes:          notes,
		ChangedAt:      now,
	}

	notification := transitionNotification(old, next, actor)
	return entry, notification
}

func transitionNotification(old, next Lead, actor uuid.UUID) *NotificationIntent {
	intent := &NotificationIntent{
		TenantID: old.TenantID,
		LeadID:   old.ID,
		UserID:   notifyTarget(next, actor),
	}

	leadName := fmt.Sprintf("%s %s", next.FirstName, next.LastName)

	switch {
	case old.Status != next.Status:
		intent.Type = NotificationStatusChange
		intent.Title = fmt.Sprintf("Status geändert: %s → %s", old.Status, next.Status)
		intent.Message = fmt.Sprintf("Lead %s ist jetzt im Status %q.", leadName, next.Status)
	case old.PhoneStatus != next.PhoneStatus:
		intent.Type = NotificationPhoneStatusChange
		intent.Title = fmt.Sprintf("Telefonstatus geändert: %s → %s", old.PhoneStatus, next.PhoneStatus)
		intent.Message = fmt.Sprintf("Telefonstatus von Lead %s ist jetzt %q.", leadName, next.PhoneStatus)
	case !old.FollowUp && next.FollowUp:
		intent.Type = NotificationFollowUpRequired
		intent.Title = "Wiedervorlage erforderlich"
		intent.Message = fmt.Sprintf("Lead %s wurde zur Wiedervorlage markiert.", leadName)
	default:
		return nil
	}

	return intent
}

// notifyTarget picks the notification recipient: the assigned user when the
// lead has one, otherwise the actor who made the change.
func notifyTarget(lead Lead, actor uuid.UUID) uuid.UUID {
	if lead.AssignedUserID != nil {
		return *lead.AssignedUserID
	}
	return actor
}
