package request

import (
	"strings"
	"time"

	"treatment-booking/internal/usecase/commands"
	"treatment-booking/internal/usecase/queries"

	"github.com/google/uuid"
)

type ContactRequest struct {
	Name  string `json:"name" binding:"required,max=200"`
	Email string `json:"email" binding:"required,email,max=320"`
	Phone string `json:"phone" binding:"omitempty,max=50"`
}

type ProgramSelectionRequest struct {
	ProgramID       uuid.UUID `json:"programId" binding:"required"`
	DurationMinutes int       `json:"durationMinutes" binding:"required,min=1"`
	Quantity        int       `json:"quantity" binding:"required,min=1"`
}

// PackageSelectionRequest quantity may be omitted and then counts as 1.
type PackageSelectionRequest struct {
	PackageID uuid.UUID `json:"packageId" binding:"required"`
	Quantity  int       `json:"quantity" binding:"omitempty,min=0"`
}

type BookingItemRequest struct {
	PersonName string                    `json:"personName" binding:"required,max=200"`
	Programs   []ProgramSelectionRequest `json:"programs" binding:"omitempty,dive"`
	Packages   []PackageSelectionRequest `json:"packages" binding:"omitempty,dive"`
}

type CreateBookingRequest struct {
	ArrivalAt time.Time            `json:"arrivalAt" binding:"required"`
	Contact   ContactRequest       `json:"contact" binding:"required"`
	Note      string               `json:"note" binding:"omitempty,max=2000"`
	Items     []BookingItemRequest `json:"items" binding:"required,min=1,dive"`
}

// UpdateBookingRequest is a partial update: absent fields stay as they are
// and items, when present, replace every item.
type UpdateBookingRequest struct {
	ArrivalAt *time.Time            `json:"arrivalAt"`
	Contact   *ContactRequest       `json:"contact" binding:"omitempty"`
	Note      *string               `json:"note" binding:"omitempty,max=2000"`
	Items     *[]BookingItemRequest `json:"items" binding:"omitempty,min=1,dive"`
}

type ListBookingsQuery struct {
	Status    []string   `form:"status"`
	Q         string     `form:"q"`
	From      *time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To        *time.Time `form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
	SortBy    string     `form:"sortBy"`
	Direction string     `form:"direction"`
	PageSize  int        `form:"pageSize"`
	PageToken string     `form:"pageToken"`
}

func (r *CreateBookingRequest) ToInput() commands.CreateBookingInput {
	return commands.CreateBookingInput{
		ArrivalAt: r.ArrivalAt,
		Contact:   r.Contact.toInput(),
		Note:      r.Note,
		Items:     toItemInputs(r.Items),
	}
}

func (r *UpdateBookingRequest) ToInput() commands.UpdateBookingInput {
	in := commands.UpdateBookingInput{
		ArrivalAt: r.ArrivalAt,
		Note:      r.Note,
	}
	if r.Contact != nil {
		contact := r.Contact.toInput()
		in.Contact = &contact
	}
	if r.Items != nil {
		items := toItemInputs(*r.Items)
		in.Items = &items
	}
	return in
}

// ToParams accepts status both repeated and comma separated.
func (q *ListBookingsQuery) ToParams() queries.ListParams {
	var statuses []string
	for _, s := range q.Status {
		statuses = append(statuses, strings.Split(s, ",")...)
	}
	return queries.ListParams{
		Statuses:  statuses,
		Q:         q.Q,
		From:      q.From,
		To:        q.To,
		SortBy:    q.SortBy,
		Direction: q.Direction,
		PageSize:  q.PageSize,
		PageToken: q.PageToken,
	}
}

func (c ContactRequest) toInput() commands.ContactInput {
	return commands.ContactInput{Name: c.Name, Email: c.Email, Phone: c.Phone}
}

func toItemInputs(items []BookingItemRequest) []commands.ItemInput {
	out := make([]commands.ItemInput, len(items))
	for i, it := range items {
		in := commands.ItemInput{PersonName: it.PersonName}
		for _, p := range it.Programs {
			in.Programs = append(in.Programs, commands.ProgramLineInput{
				ProgramID:       p.ProgramID,
				DurationMinutes: p.DurationMinutes,
				Quantity:        p.Quantity,
			})
		}
		for _, p := range it.Packages {
			in.Packages = append(in.Packages, commands.PackageLineInput{
				PackageID: p.PackageID,
				Quantity:  p.Quantity,
			})
		}
		out[i] = in
	}
	return out
}
