package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestRecordTransitionEntry(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	actor := uuid.New()
	reason := "Kunde zurückgerufen"

	old := testLead(StatusNew)
	next := old
	next.Status = StatusInProgress
	next.PhoneStatus = PhoneStatusReachable

	entry, _ := RecordTransition(old, next, actor, &reason, nil, now)

	if entry.LeadID != old.ID || entry.TenantID != old.TenantID {
		t.Error("entry not keyed to the lead")
	}
	if entry.OldStatus != StatusNew || entry.NewStatus != StatusInProgress {
		t.Errorf("status %q→%q recorded as %q→%q", StatusNew, StatusInProgress, entry.OldStatus, entry.NewStatus)
	}
	if entry.OldPhoneStatus != PhoneStatusOpen || entry.NewPhoneStatus != PhoneStatusReachable {
		t.Error("phone status transition not recorded")
	}
	if entry.ChangedBy != actor {
		t.Error("actor not recorded")
	}
	if entry.Reason == nil || *entry.Reason != reason {
		t.Error("reason not recorded")
	}
	if !entry.ChangedAt.Equal(now) {
		t.Errorf("changed at %v, want %v", entry.ChangedAt, now)
	}
}

func TestRecordTransitionNotificationOrder(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	actor := uuid.New()

	tests := []struct {
		name     string
		mutate   func(next *Lead)
		wantType string
	}{
		{
			name: "status change wins over everything",
			mutate: func(next *Lead) {
				next.Status = StatusInProgress
				next.PhoneStatus = PhoneStatusReachable
				next.FollowUp = true
			},
			wantType: NotificationStatusChange,
		},
		{
			name: "phone status change when status unchanged",
			mutate: func(next *Lead) {
				next.PhoneStatus = PhoneStatusNotReached
				next.FollowUp = true
			},
			wantType: NotificationPhoneStatusChange,
		},
		{
			name: "follow-up flag alone",
			mutate: func(next *Lead) {
				next.FollowUp = true
			},
			wantType: NotificationFollowUpRequired,
		},
		{
			name:     "nothing notify-worthy",
			mutate:   func(next *Lead) { next.FirstName = "Erika" },
			wantType: "",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			old := testLead(StatusNew)
			next := old
			tc.mutate(&next)

			_, notification := RecordTransition(old, next, actor, nil, nil, now)

			if tc.wantType == "" {
				if notification != nil {
					t.Fatalf("expected no notification, got %+v", notification)
				}
				return
			}
			if notification == nil {
				t.Fatal("expected a notification")
			}
			if notification.Type != tc.wantType {
				t.Errorf("type %q, want %q", notification.Type, tc.wantType)
			}
			if notification.Title == "" || notification.Message == "" {
				t.Error("notification text missing")
			}
		})
	}
}

func TestRecordTransitionNotifiesAssignedUser(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	actor := uuid.New()
	assignee := uuid.New()

	old := testLead(StatusNew)
	next := old
	next.Status = StatusInProgress
	next.AssignedUserID = &assignee

	_, notification := RecordTransition(old, next, actor, nil, nil, now)
	if notification == nil {
		t.Fatal("expected a notification")
	}
	if notification.UserID != assignee {
		t.Errorf("recipient %v, want assigned user %v", notification.UserID, assignee)
	}

	// Without an assignee the actor gets it.
	next.AssignedUserID = nil
	_, notification = RecordTransition(old, next, actor, nil, nil, now)
	if notification.UserID != actor {
		t.Errorf("recipient %v, want actor %v", notification.UserID, actor)
	}
}

func TestRecordTransitionStatusTitleMentionsBothStatuses(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	old := testLead(StatusNotReached2)
	next := old
	next.Status = StatusNotReached3

	_, notification := RecordTransition(old, next, uuid.New(), nil, nil, now)
	if notification == nil {
		t.Fatal("expected a notification")
	}
	if !strings.Contains(notification.Title, string(StatusNotReached2)) ||
		!strings.Contains(notification.Title, string(StatusNotReached3)) {
		t.Errorf("title %q does not name both statuses", notification.Title)
	}
}
