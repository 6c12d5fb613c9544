package domain

import (
	"time"

	"github.com/google/uuid"
)

// Optional is a tri-state patch field: absent from the patch, explicitly
// null, or carrying a value. Presence is tracked separately from the value so
// "not sent" and "clear this field" stay distinguishable.
type Optional[T any] struct {
	Set   bool
	Null  bool
	Value T
}

// Some returns an Optional carrying a value.
func Some[T any](value T) Optional[T] {
	return Optional[T]{Set: true, Value: value}
}

// Null returns an Optional representing an explicit null.
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true, Null: true}
}

// HasValue reports whether the field was sent with a non-null value.
func (o Optional[T]) HasValue() bool {
	return o.Set && !o.Null
}

// Ptr returns a pointer to the value, or nil when absent or null.
func (o Optional[T]) Ptr() *T {
	if !o.HasValue() {
		return nil
	}
	v := o.Value
	return &v
}

// Patch is a partial lead update. Absent fields leave the lead untouched;
// null fields clear nullable columns.
type Patch struct {
	FirstName Optional[string]
	LastName  Optional[string]
	Phone     Optional[string]
	Email     Optional[string]
	City      Optional[string]

	Status          Optional[Status]
	PhoneStatus     Optional[PhoneStatus]
	NotReachedCount Optional[int]

	FollowUp        Optional[bool]
	FollowUpDate    Optional[time.Time]
	AppointmentDate Optional[time.Time]

	OfferPV      Optional[bool]
	OfferStorage Optional[bool]
	OfferBackup  Optional[bool]
	TVP          Optional[bool]

	LostReason     Optional[LostReason]
	AssignedUserID Optional[uuid.UUID]
}

// Apply returns the lead snapshot after the patch, without resolving the
// status (ResolveStatus owns that). The input lead is not mutated.
func (p Patch) Apply(lead Lead) Lead {
	next := lead

	if p.FirstName.HasValue() {
		next.FirstName = p.FirstName.Value
	}
	if p.LastName.HasValue() {
		next.LastName = p.LastName.Value
	}
	if p.Phone.HasValue() {
		next.Phone = p.Phone.Value
	}
	if p.Email.Set {
		next.Email = p.Email.Ptr()
	}
	if p.City.HasValue() {
		next.City = p.City.Value
	}
	if p.PhoneStatus.HasValue() {
		next.PhoneStatus = p.PhoneStatus.Value
	}
	if p.NotReachedCount.HasValue() {
		next.NotReachedCount = p.NotReachedCount.Value
	}
	if p.FollowUp.HasValue() {
		next.FollowUp = p.FollowUp.Value
	}
	if p.FollowUpDate.Set {
		next.FollowUpDate = p.FollowUpDate.Ptr()
	}
	if p.AppointmentDate.Set {
		next.AppointmentDate = p.AppointmentDate.Ptr()
	}
	if p.OfferPV.HasValue() {
		next.OfferPV = p.OfferPV.Value
	}
	if p.OfferStorage.HasValue() {
		next.OfferStorage = p.OfferStorage.Value
	}
	if p.OfferBackup.HasValue() {
		next.OfferBackup = p.OfferBackup.Value
	}
	if p.TVP.HasValue() {
		next.TVP = p.TVP.Value
	}
	if p.LostReason.Set {
		next.LostReason = p.LostReason.Ptr()
	}
	if p.AssignedUserID.Set {
		next.AssignedUserID = p.AssignedUserID.Ptr()
	}

	return next
}
