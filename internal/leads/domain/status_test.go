package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func testLead(status Status) Lead {
	return Lead{
		ID:          uuid.New(),
		TenantID:    uuid.New(),
		FirstName:   "Max",
		LastName:    "Mustermann",
		Phone:       "+4915112345678",
		Status:      status,
		PhoneStatus: PhoneStatusOpen,
		CreatedAt:   time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestResolveStatusOfferFlagWinsOverEverything(t *testing.T) {
	// offer_pv false→true resolves to "Angebot übermittelt" regardless of any
	// other field in the update, for every starting status.
	for _, status := range AllStatuses {
		lead := testLead(status)

		patch := Patch{
			OfferPV:         Some(true),
			TVP:             Some(true),
			Status:          Some(StatusLost),
			PhoneStatus:     Some(PhoneStatusReachable),
			NotReachedCount: Some(3),
		}

		if got := ResolveStatus(lead, patch); got != StatusOfferSent {
			t.Errorf("status %q: got %q, want %q", status, got, StatusOfferSent)
		}
	}
}

func TestResolveStatusOfferFlagAlreadySet(t *testing.T) {
	// Re-sending offer_pv=true on a lead that already has it is not a flip;
	// the explicit status override takes over instead.
	lead := testLead(StatusOfferSent)
	lead.OfferPV = true

	patch := Patch{OfferPV: Some(true), Status: Some(StatusNegotiation)}

	if got := ResolveStatus(lead, patch); got != StatusNegotiation {
		t.Errorf("got %q, want %q", got, StatusNegotiation)
	}
}

func TestResolveStatusTVPAfterOffer(t *testing.T) {
	lead := testLead(StatusInProgress)

	patch := Patch{TVP: Some(true), Status: Some(StatusLost)}

	if got := ResolveStatus(lead, patch); got != StatusTVP {
		t.Errorf("got %q, want %q", got, StatusTVP)
	}
}

func TestResolveStatusExplicitOverride(t *testing.T) {
	// An explicit status that differs from the current one is taken verbatim
	// as long as the update does not flip offer_pv or tvp false→true.
	for _, target := range AllStatuses {
		lead := testLead(StatusInProgress)
		if target == StatusInProgress {
			continue
		}

		patch := Patch{Status: Some(target), PhoneStatus: Some(PhoneStatusReachable)}

		if got := ResolveStatus(lead, patch); got != target {
			t.Errorf("override to %q: got %q", target, got)
		}
	}
}

func TestResolveStatusPhoneReachable(t *testing.T) {
	appointment := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		lead  func() Lead
		patch Patch
		want  Status
	}{
		{
			name: "reachable without appointment",
			lead: func() Lead { return testLead(StatusNotReached2) },
			patch: Patch{
				PhoneStatus: Some(PhoneStatusReachable),
			},
			want: StatusInProgress,
		},
		{
			name: "reachable with appointment in patch",
			lead: func() Lead { return testLead(StatusNew) },
			patch: Patch{
				PhoneStatus:     Some(PhoneStatusReachable),
				AppointmentDate: Some(appointment),
			},
			want: StatusAppointment,
		},
		{
			name: "reachable with appointment on record",
			lead: func() Lead {
				l := testLead(StatusNew)
				l.AppointmentDate = &appointment
				return l
			},
			patch: Patch{
				PhoneStatus: Some(PhoneStatusReachable),
			},
			want: StatusAppointment,
		},
		{
			name: "reachable with appointment explicitly cleared",
			lead: func() Lead {
				l := testLead(StatusNew)
				l.AppointmentDate = &appointment
				return l
			},
			patch: Patch{
				PhoneStatus:     Some(PhoneStatusReachable),
				AppointmentDate: Null[time.Time](),
			},
			want: StatusInProgress,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ResolveStatus(tc.lead(), tc.patch); got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestResolveStatusNotReachedCascade(t *testing.T) {
	tests := []struct {
		count int
		want  Status
	}{
		{1, StatusNotReached1},
		{2, StatusNotReached2},
		{3, StatusNotReached3},
		{7, StatusNotReached3},
	}

	for _, tc := range tests {
		lead := testLead(StatusNew)
		patch := Patch{NotReachedCount: Some(tc.count)}

		if got := ResolveStatus(lead, patch); got != tc.want {
			t.Errorf("count %d: got %q, want %q", tc.count, got, tc.want)
		}
	}
}

func TestResolveStatusCascadeUsesStoredCount(t *testing.T) {
	lead := testLead(StatusNew)
	lead.NotReachedCount = 2

	// No count in the patch: the stored count drives the cascade.
	if got := ResolveStatus(lead, Patch{FollowUp: Some(true)}); got != StatusNotReached2 {
		t.Errorf("got %q, want %q", got, StatusNotReached2)
	}
}

func TestResolveStatusUnchanged(t *testing.T) {
	lead := testLead(StatusAppointment)

	if got := ResolveStatus(lead, Patch{FirstName: Some("Erika")}); got != StatusAppointment {
		t.Errorf("got %q, want %q", got, StatusAppointment)
	}
}

func TestResolveStatusOfferBeatsExplicitLost(t *testing.T) {
	// A single update that both uploads an offer and manually sets "Verloren"
	// resolves to "Angebot übermittelt" - document flags outrank manual edits.
	lead := testLead(StatusInProgress)

	patch := Patch{OfferPV: Some(true), Status: Some(StatusLost)}

	if got := ResolveStatus(lead, patch); got != StatusOfferSent {
		t.Errorf("got %q, want %q", got, StatusOfferSent)
	}
}
