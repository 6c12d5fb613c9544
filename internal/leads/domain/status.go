package domain

// ResolveStatus computes the lead's next status from the current snapshot and
// a proposed partial update. The priority order is fixed and load-bearing:
// commercial-document flags outrank manual status edits, which outrank
// phone-outcome cascades. First match wins.
//
//  1. offer_pv flips false→true          → "Angebot übermittelt"
//  2. tvp flips false→true                → "TVP"
//  3. explicit status differing from now  → taken verbatim
//  4. phone_status "erreichbar"           → "Termin vereinbart" with an
//     appointment date (patch or current), else "In Bearbeitung"
//  5. not_reached_count (patch or current) → "Nicht erreicht 1x/2x/3x"
//  6. otherwise unchanged
func ResolveStatus(current Lead, patch Patch) Status {
	if patch.OfferPV.HasValue() && patch.OfferPV.Value && !current.OfferPV {
		return StatusOfferSent
	}

	if patch.TVP.HasValue() && patch.TVP.Value && !current.TVP {
		return StatusTVP
	}

	if patch.Status.HasValue() && patch.Status.Value != current.Status {
		return patch.Status.Value
	}

	if patch.PhoneStatus.HasValue() && patch.PhoneStatus.Value == PhoneStatusReachable {
		if appointmentDate(current, patch) {
			return StatusAppointment
		}
		return StatusInProgress
	}

	if count, ok := notReachedCount(current, patch); ok {
		switch {
		case count >= 3:
			return StatusNotReached3
		case count == 2:
			return StatusNotReached2
		case count == 1:
			return StatusNotReached1
		}
	}

	return current.Status
}

func appointmentDate(current Lead, patch Patch) bool {
	if patch.AppointmentDate.Set {
		return patch.AppointmentDate.HasValue()
	}
	return current.AppointmentDate != nil
}

// notReachedCount returns the effective count for the cascade rule: the
// patched value when sent, otherwise the stored one. A count of zero means
// the cascade does not apply.
func notReachedCount(current Lead, patch Patch) (int, bool) {
	count := current.NotReachedCount
	if patch.NotReachedCount.HasValue() {
		count = patch.NotReachedCount.Value
	}
	if count < 1 {
		return 0, false
	}
	return count, true
}
