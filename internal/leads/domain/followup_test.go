package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

var testToday = time.Date(2026, 3, 2, 11, 30, 0, 0, time.UTC)

func TestGenerateFollowUpsRuleTable(t *testing.T) {
	day := Day(testToday)

	tests := []struct {
		status Status
		want   []FollowUpSpec
	}{
		{
			status: StatusNotReached1,
			want:   []FollowUpSpec{{Type: FollowUpCall, DueDate: day.AddDate(0, 0, 1), Priority: PriorityMedium}},
		},
		{
			status: StatusNotReached2,
			want:   []FollowUpSpec{{Type: FollowUpCall, DueDate: day.AddDate(0, 0, 8), Priority: PriorityMedium}},
		},
		{
			status: StatusNotReached3,
			want:   []FollowUpSpec{{Type: FollowUpCustom, DueDate: day, Priority: PriorityHigh, EscalationLevel: 1}},
		},
		{
			status: StatusOfferSent,
			want: []FollowUpSpec{
				{Type: FollowUpOffer, DueDate: day.AddDate(0, 0, 1), Priority: PriorityMedium},
				{Type: FollowUpGeneric, DueDate: day.AddDate(0, 0, 7), Priority: PriorityMedium},
			},
		},
		{
			status: StatusTVP,
			want: []FollowUpSpec{
				{Type: FollowUpTVP, DueDate: day.AddDate(0, 0, 1), Priority: PriorityMedium},
				{Type: FollowUpGeneric, DueDate: day.AddDate(0, 0, 3), Priority: PriorityHigh},
			},
		},
		{status: StatusNew},
		{status: StatusInProgress},
		{status: StatusAppointment},
		{status: StatusWon},
	}

	for _, tc := range tests {
		t.Run(string(tc.status), func(t *testing.T) {
			got := GenerateFollowUps(testLead(StatusNew), tc.status, testToday)
			if len(got) != len(tc.want) {
				t.Fatalf("got %d specs, want %d", len(got), len(tc.want))
			}
			for i, spec := range got {
				want := tc.want[i]
				if spec.Type != want.Type {
					t.Errorf("spec %d: type %q, want %q", i, spec.Type, want.Type)
				}
				if !spec.DueDate.Equal(want.DueDate) {
					t.Errorf("spec %d: due %v, want %v", i, spec.DueDate, want.DueDate)
				}
				if spec.Priority != want.Priority {
					t.Errorf("spec %d: priority %q, want %q", i, spec.Priority, want.Priority)
				}
				if spec.EscalationLevel != want.EscalationLevel {
					t.Errorf("spec %d: escalation %d, want %d", i, spec.EscalationLevel, want.EscalationLevel)
				}
			}
		})
	}
}

func TestGenerateFollowUpsLostReengagement(t *testing.T) {
	lead := testLead(StatusInProgress)

	// Lost without a reason, or with a reason other than "kein_interesse",
	// produces nothing.
	if got := GenerateFollowUps(lead, StatusLost, testToday); len(got) != 0 {
		t.Fatalf("lost without reason: got %d specs, want 0", len(got))
	}

	reason := LostReasonTooExpensive
	lead.LostReason = &reason
	if got := GenerateFollowUps(lead, StatusLost, testToday); len(got) != 0 {
		t.Fatalf("lost zu_teuer: got %d specs, want 0", len(got))
	}

	reason = LostReasonNoInterest
	got := GenerateFollowUps(lead, StatusLost, testToday)
	if len(got) != 1 {
		t.Fatalf("lost kein_interesse: got %d specs, want 1", len(got))
	}
	if got[0].Type != FollowUpReengagement || got[0].Priority != PriorityLow {
		t.Errorf("got %+v, want reengagement/low", got[0])
	}
	if want := Day(testToday).AddDate(0, 0, 30); !got[0].DueDate.Equal(want) {
		t.Errorf("due %v, want %v", got[0].DueDate, want)
	}
}

func TestMergeFollowUpKeepsEarlierDueAndHigherPriority(t *testing.T) {
	day := Day(testToday)

	existing := FollowUp{
		ID:            uuid.New(),
		Type:          FollowUpCall,
		DueDate:       day.AddDate(0, 0, 8),
		Priority:      PriorityMedium,
		AutoGenerated: true,
	}

	merged, changed := MergeFollowUp(existing, FollowUpSpec{
		Type:     FollowUpCall,
		DueDate:  day.AddDate(0, 0, 1),
		Priority: PriorityLow,
	})
	if !changed {
		t.Fatal("expected a change")
	}
	if want := day.AddDate(0, 0, 1); !merged.DueDate.Equal(want) {
		t.Errorf("due %v, want earlier date %v", merged.DueDate, want)
	}
	if merged.Priority != PriorityMedium {
		t.Errorf("priority %q, want existing medium kept", merged.Priority)
	}

	merged, changed = MergeFollowUp(existing, FollowUpSpec{
		Type:     FollowUpCall,
		DueDate:  day.AddDate(0, 0, 9),
		Priority: PriorityHigh,
	})
	if !changed {
		t.Fatal("expected a change")
	}
	if !merged.DueDate.Equal(existing.DueDate) {
		t.Errorf("due %v, want existing %v kept", merged.DueDate, existing.DueDate)
	}
	if merged.Priority != PriorityHigh {
		t.Errorf("priority %q, want high", merged.Priority)
	}
}

func TestMergeFollowUpNoop(t *testing.T) {
	day := Day(testToday)

	existing := FollowUp{
		ID:            uuid.New(),
		Type:          FollowUpCall,
		DueDate:       day,
		Priority:      PriorityOverdue,
		AutoGenerated: true,
	}

	merged, changed := MergeFollowUp(existing, FollowUpSpec{
		Type:     FollowUpCall,
		DueDate:  day.AddDate(0, 0, 1),
		Priority: PriorityMedium,
	})
	if changed {
		t.Fatalf("expected no change, got %+v", merged)
	}
}

func TestPriorityRank(t *testing.T) {
	ordered := []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityOverdue}
	for i := 1; i < len(ordered); i++ {
		if ordered[i].Rank() <= ordered[i-1].Rank() {
			t.Errorf("%q rank %d not above %q rank %d", ordered[i], ordered[i].Rank(), ordered[i-1], ordered[i-1].Rank())
		}
	}
}
