package transport

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"solarlead_backend/internal/leads/domain"
)

// Request DTOs

type CreateLeadRequest struct {
	FirstName      string       `json:"firstName" validate:"required,min=1,max=100"`
	LastName       string       `json:"lastName" validate:"required,min=1,max=100"`
	Phone          string       `json:"phone" validate:"required,min=5,max=20"`
	Email          string       `json:"email,omitempty" validate:"omitempty,email"`
	City           string       `json:"city" validate:"required,min=1,max=100"`
	FollowUpDate   *time.Time   `json:"followUpDate,omitempty"`
	AssignedUserID OptionalUUID `json:"assignedUserId,omitempty" validate:"-"`
}

type UpdateLeadRequest struct {
	FirstName OptionalString `json:"firstName,omitempty" validate:"-"`
	LastName  OptionalString `json:"lastName,omitempty" validate:"-"`
	Phone     OptionalString `json:"phone,omitempty" validate:"-"`
	Email     OptionalString `json:"email,omitempty" validate:"-"`
	City      OptionalString `json:"city,omitempty" validate:"-"`

	Status          OptionalString `json:"status,omitempty" validate:"-"`
	PhoneStatus     OptionalString `json:"phoneStatus,omitempty" validate:"-"`
	NotReachedCount OptionalInt    `json:"notReachedCount,omitempty" validate:"-"`

	FollowUp        OptionalBool `json:"followUp,omitempty" validate:"-"`
	FollowUpDate    OptionalTime `json:"followUpDate,omitempty" validate:"-"`
	AppointmentDate OptionalTime `json:"appointmentDate,omitempty" validate:"-"`

	OfferPV      OptionalBool `json:"offerPv,omitempty" validate:"-"`
	OfferStorage OptionalBool `json:"offerStorage,omitempty" validate:"-"`
	OfferBackup  OptionalBool `json:"offerBackup,omitempty" validate:"-"`
	TVP          OptionalBool `json:"tvp,omitempty" validate:"-"`

	LostReason     OptionalString `json:"lostReason,omitempty" validate:"-"`
	AssignedUserID OptionalUUID   `json:"assignedUserId,omitempty" validate:"-"`

	Reason *string `json:"reason,omitempty" validate:"omitempty,max=500"`
	Notes  *string `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

// Patch maps the update request onto a domain patch, rejecting unknown enum
// values before anything touches the pipeline.
func (r UpdateLeadRequest) Patch() (domain.Patch, error) {
	for name, field := range map[string]OptionalString{
		"firstName": r.FirstName, "lastName": r.LastName, "phone": r.Phone, "city": r.City,
	} {
		if field.Set && field.Value == nil {
			return domain.Patch{}, fmt.Errorf("%s must not be null", name)
		}
	}
	for name, set := range map[string]bool{
		"notReachedCount": r.NotReachedCount.Set && r.NotReachedCount.Value == nil,
		"followUp":        r.FollowUp.Set && r.FollowUp.Value == nil,
		"offerPv":         r.OfferPV.Set && r.OfferPV.Value == nil,
		"offerStorage":    r.OfferStorage.Set && r.OfferStorage.Value == nil,
		"offerBackup":     r.OfferBackup.Set && r.OfferBackup.Value == nil,
		"tvp":             r.TVP.Set && r.TVP.Value == nil,
	} {
		if set {
			return domain.Patch{}, fmt.Errorf("%s must not be null", name)
		}
	}

	patch := domain.Patch{
		FirstName:       toOptionalValue(r.FirstName.Set, r.FirstName.Value),
		LastName:        toOptionalValue(r.LastName.Set, r.LastName.Value),
		Phone:           toOptionalValue(r.Phone.Set, r.Phone.Value),
		Email:           toOptionalValue(r.Email.Set, r.Email.Value),
		City:            toOptionalValue(r.City.Set, r.City.Value),
		NotReachedCount: toOptionalValue(r.NotReachedCount.Set, r.NotReachedCount.Value),
		FollowUp:        toOptionalValue(r.FollowUp.Set, r.FollowUp.Value),
		FollowUpDate:    toOptionalValue(r.FollowUpDate.Set, r.FollowUpDate.Value),
		AppointmentDate: toOptionalValue(r.AppointmentDate.Set, r.AppointmentDate.Value),
		OfferPV:         toOptionalValue(r.OfferPV.Set, r.OfferPV.Value),
		OfferStorage:    toOptionalValue(r.OfferStorage.Set, r.OfferStorage.Value),
		OfferBackup:     toOptionalValue(r.OfferBackup.Set, r.OfferBackup.Value),
		TVP:             toOptionalValue(r.TVP.Set, r.TVP.Value),
		AssignedUserID:  toOptionalValue(r.AssignedUserID.Set, r.AssignedUserID.Value),
	}

	if r.NotReachedCount.Set && r.NotReachedCount.Value != nil && *r.NotReachedCount.Value < 0 {
		return domain.Patch{}, fmt.Errorf("notReachedCount must not be negative")
	}

	if r.Status.Set {
		if r.Status.Value == nil {
			return domain.Patch{}, fmt.Errorf("status must not be null")
		}
		status := domain.Status(*r.Status.Value)
		if !status.Valid() {
			return domain.Patch{}, fmt.Errorf("unknown status %q", *r.Status.Value)
		}
		patch.Status = domain.Some(status)
	}

	if r.PhoneStatus.Set {
		if r.PhoneStatus.Value == nil {
			return domain.Patch{}, fmt.Errorf("phoneStatus must not be null")
		}
		phoneStatus := domain.PhoneStatus(*r.PhoneStatus.Value)
		if !phoneStatus.Valid() {
			return domain.Patch{}, fmt.Errorf("unknown phone status %q", *r.PhoneStatus.Value)
		}
		patch.PhoneStatus = domain.Some(phoneStatus)
	}

	if r.LostReason.Set {
		if r.LostReason.Value == nil {
			patch.LostReason = domain.Null[domain.LostReason]()
		} else {
			reason := domain.LostReason(*r.LostReason.Value)
			if !reason.Valid() {
				return domain.Patch{}, fmt.Errorf("unknown lost reason %q", *r.LostReason.Value)
			}
			patch.LostReason = domain.Some(reason)
		}
	}

	return patch, nil
}

func toOptionalValue[T any](set bool, value *T) domain.Optional[T] {
	if !set {
		return domain.Optional[T]{}
	}
	if value == nil {
		return domain.Null[T]()
	}
	return domain.Some(*value)
}

type ListLeadsRequest struct {
	Status         string `form:"status" validate:"omitempty,max=50"`
	PhoneStatus    string `form:"phoneStatus" validate:"omitempty,max=50"`
	AssignedUserID string `form:"assignedUserId" validate:"omitempty,uuid"`
	City           string `form:"city" validate:"omitempty,max=100"`
	Search         string `form:"search" validate:"omitempty,max=100"`
	Page           int    `form:"page" validate:"omitempty,min=1"`
	PageSize       int    `form:"pageSize" validate:"omitempty,min=1,max=100"`
}

type CreateFollowUpRequest struct {
	Type     string    `json:"type" validate:"required,oneof=call offer_followup meeting custom offer followup tvp reengagement"`
	DueDate  time.Time `json:"dueDate" validate:"required"`
	Priority string    `json:"priority" validate:"required,oneof=low medium high overdue"`
	Notes    string    `json:"notes,omitempty" validate:"max=2000"`
}

type CompleteFollowUpRequest struct {
	Notes *string `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

// Response DTOs

type LeadResponse struct {
	ID              uuid.UUID  `json:"id"`
	FirstName       string     `json:"firstName"`
	LastName        string     `json:"lastName"`
	Phone           string     `json:"phone"`
	Email           *string    `json:"email,omitempty"`
	City            string     `json:"city"`
	Status          string     `json:"status"`
	PhoneStatus     string     `json:"phoneStatus"`
	NotReachedCount int        `json:"notReachedCount"`
	FollowUp        bool       `json:"followUp"`
	FollowUpDate    *time.Time `json:"followUpDate,omitempty"`
	AppointmentDate *time.Time `json:"appointmentDate,omitempty"`
	OfferPV         bool       `json:"offerPv"`
	OfferStorage    bool       `json:"offerStorage"`
	OfferBackup     bool       `json:"offerBackup"`
	TVP             bool       `json:"tvp"`
	LostReason      *string    `json:"lostReason,omitempty"`
	AssignedUserID  *uuid.UUID `json:"assignedUserId,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

func ToLeadResponse(lead domain.Lead) LeadResponse {
	var lostReason *string
	if lead.LostReason != nil {
		s := string(*lead.LostReason)
		lostReason = &s
	}

	return LeadResponse{
		ID:              lead.ID,
		FirstName:       lead.FirstName,
		LastName:        lead.LastName,
		Phone:           lead.Phone,
		Email:           lead.Email,
		City:            lead.City,
		Status:          string(lead.Status),
		PhoneStatus:     string(lead.PhoneStatus),
		NotReachedCount: lead.NotReachedCount,
		FollowUp:        lead.FollowUp,
		FollowUpDate:    lead.FollowUpDate,
		AppointmentDate: lead.AppointmentDate,
		OfferPV:         lead.OfferPV,
		OfferStorage:    lead.OfferStorage,
		OfferBackup:     lead.OfferBackup,
		TVP:             lead.TVP,
		LostReason:      lostReason,
		AssignedUserID:  lead.AssignedUserID,
		CreatedAt:       lead.CreatedAt,
		UpdatedAt:       lead.UpdatedAt,
	}
}

type ListLeadsResponse struct {
	Items    []LeadResponse `json:"items"`
	Total    int            `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"pageSize"`
}

type FollowUpResponse struct {
	ID              uuid.UUID  `json:"id"`
	LeadID          uuid.UUID  `json:"leadId"`
	Type            string     `json:"type"`
	DueDate         time.Time  `json:"dueDate"`
	Priority        string     `json:"priority"`
	AutoGenerated   bool       `json:"autoGenerated"`
	EscalationLevel int        `json:"escalationLevel"`
	CompletedAt     *time.Time `json:"completedAt,omitempty"`
	Notes           *string    `json:"notes,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

func ToFollowUpResponse(task domain.FollowUp) FollowUpResponse {
	return FollowUpResponse{
		ID:              task.ID,
		LeadID:          task.LeadID,
		Type:            string(task.Type),
		DueDate:         task.DueDate,
		Priority:        string(task.Priority),
		AutoGenerated:   task.AutoGenerated,
		EscalationLevel: task.EscalationLevel,
		CompletedAt:     task.CompletedAt,
		Notes:           task.Notes,
		CreatedAt:       task.CreatedAt,
		UpdatedAt:       task.UpdatedAt,
	}
}

func ToFollowUpResponses(tasks []domain.FollowUp) []FollowUpResponse {
	items := make([]FollowUpResponse, 0, len(tasks))
	for _, task := range tasks {
		items = append(items, ToFollowUpResponse(task))
	}
	return items
}

type HistoryEntryResponse struct {
	ID             uuid.UUID `json:"id"`
	LeadID         uuid.UUID `json:"leadId"`
	OldStatus      string    `json:"oldStatus"`
	NewStatus      string    `json:"newStatus"`
	OldPhoneStatus string    `json:"oldPhoneStatus"`
	NewPhoneStatus string    `json:"newPhoneStatus"`
	ChangedBy      uuid.UUID `json:"changedBy"`
	Reason         *string   `json:"reason,omitempty"`
	Notes          *string   `json:"notes,omitempty"`
	ChangedAt      time.Time `json:"changedAt"`
}

func ToHistoryResponses(entries []domain.HistoryEntry) []HistoryEntryResponse {
	items := make([]HistoryEntryResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, HistoryEntryResponse{
			ID:             entry.ID,
			LeadID:         entry.LeadID,
			OldStatus:      string(entry.OldStatus),
			NewStatus:      string(entry.NewStatus),
			OldPhoneStatus: string(entry.OldPhoneStatus),
			NewPhoneStatus: string(entry.NewPhoneStatus),
			ChangedBy:      entry.ChangedBy,
			Reason:         entry.Reason,
			Notes:          entry.Notes,
			ChangedAt:      entry.ChangedAt,
		})
	}
	return items
}
