package queries

import (
	"context"
	"time"

	"treatment-booking/internal/domain/booking"
	"treatment-booking/internal/infra"
	"treatment-booking/internal/usecase/shared"

	"github.com/google/uuid"
)

var ErrBookingNotFound = shared.ErrBookingNotFound

type SnapshotView struct {
	Name            string `json:"name"`
	UnitPrice       int64  `json:"unitPrice"`
	DurationMinutes int    `json:"durationMinutes"`
	Currency        string `json:"currency"`
}

type ProgramSelectionView struct {
	ProgramID uuid.UUID    `json:"programId"`
	Quantity  int          `json:"quantity"`
	Snapshot  SnapshotView `json:"snapshot"`
}

type PackageSelectionView struct {
	PackageID uuid.UUID    `json:"packageId"`
	Quantity  int          `json:"quantity"`
	Snapshot  SnapshotView `json:"snapshot"`
}

type ItemView struct {
	PersonName string                 `json:"personName"`
	Programs   []ProgramSelectionView `json:"programs"`
	Packages   []PackageSelectionView `json:"packages"`
}

type ContactView struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

type TotalsView struct {
	Subtotal      int64  `json:"subtotal"`
	GrandTotal    int64  `json:"grandTotal"`
	Currency      string `json:"currency"`
	MixedCurrency bool   `json:"mixedCurrency"`
}

type BookingView struct {
	ID        uuid.UUID   `json:"id"`
	Status    string      `json:"status"`
	ArrivalAt time.Time   `json:"arrivalAt"`
	Contact   ContactView `json:"contact"`
	Note      string      `json:"note,omitempty"`
	Items     []ItemView  `json:"items"`
	Totals    TotalsView  `json:"totals"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
	CreatedBy *string     `json:"createdBy,omitempty"`
	Version   int64       `json:"version"`
	// SearchKey backs the name ordering and is never rendered.
	SearchKey string `json:"-"`
}

type ListMeta struct {
	Notices      []string  `json:"notices,omitempty"`
	AppliedRange RangeKind `json:"appliedRange"`
	Ordering     []Field   `json:"ordering"`
	Direction    Direction `json:"direction"`
	PageSize     int       `json:"pageSize"`
}

type ListResult struct {
	Items         []*BookingView `json:"items"`
	NextPageToken string         `json:"nextPageToken,omitempty"`
	HasMore       bool           `json:"hasMore"`
	Meta          ListMeta       `json:"meta"`
}

type BookingReadStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*BookingView, error)
	// List returns up to plan.FetchLimit() bookings matching the plan,
	// strictly after the pivots when they are non-nil.
	List(ctx context.Context, plan Plan, after []any) ([]*BookingView, error)
}

type BookingQueries interface {
	GetByID(ctx context.Context, id uuid.UUID) (*BookingView, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
}

type bookingQueriesImpl struct {
	repo BookingReadStore
}

func NewBookingQueries(repo BookingReadStore) BookingQueries {
	return &bookingQueriesImpl{repo: repo}
}

func (q *bookingQueriesImpl) GetByID(ctx context.Context, id uuid.UUID) (*BookingView, error) {
	v, err := q.repo.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrBookingNotFound.With("id", id.String())
		}
		return nil, err
	}
	return v, nil
}

func (q *bookingQueriesImpl) List(ctx context.Context, params ListParams) (*ListResult, error) {
	plan, err := BuildPlan(params)
	if err != nil {
		return nil, err
	}

	var after []any
	if params.PageToken != "" {
		cur, derr := DecodeCursor(params.PageToken)
		if derr != nil {
			return nil, derr
		}
		if after, derr = cur.Revive(plan); derr != nil {
			return nil, derr
		}
	}

	rows, err := q.repo.List(ctx, plan, after)
	if err != nil {
		return nil, err
	}

	result := &ListResult{
		Items: rows,
		Meta: ListMeta{
			Notices:      plan.Notices,
			AppliedRange: plan.Range.Kind,
			Ordering:     plan.Ordering,
			Direction:    plan.Direction,
			PageSize:     plan.PageSize,
		},
	}
	if len(rows) > plan.PageSize {
		result.Items = rows[:plan.PageSize]
		result.HasMore = true
		token, eerr := EncodeCursor(NextCursor(result.Items[plan.PageSize-1], plan))
		if eerr != nil {
			return nil, eerr
		}
		result.NextPageToken = token
	}
	if result.Items == nil {
		result.Items = []*BookingView{}
	}
	return result, nil
}

// ViewFromBooking renders the aggregate as the read side would return it.
func ViewFromBooking(b *booking.Booking) *BookingView {
	contact := b.Contact()
	totals := b.Totals()
	v := &BookingView{
		ID:        b.ID(),
		Status:    b.Status().String(),
		ArrivalAt: b.ArrivalAt(),
		Contact:   ContactView{Name: contact.Name(), Email: contact.Email(), Phone: contact.Phone()},
		Note:      b.Note().String(),
		Totals: TotalsView{
			Subtotal:      totals.Subtotal,
			GrandTotal:    totals.GrandTotal,
			Currency:      totals.Currency,
			MixedCurrency: totals.MixedCurrency,
		},
		CreatedAt: b.CreatedAt(),
		UpdatedAt: b.UpdatedAt(),
		CreatedBy: b.CreatedBy(),
		Version:   b.Version(),
		SearchKey: b.SearchKey(),
	}

	for _, it := range b.Items() {
		iv := ItemView{
			PersonName: it.PersonName(),
			Programs:   []ProgramSelectionView{},
			Packages:   []PackageSelectionView{},
		}
		for _, p := range it.Programs() {
			iv.Programs = append(iv.Programs, ProgramSelectionView{
				ProgramID: p.ProgramID(),
				Quantity:  p.Quantity(),
				Snapshot:  snapshotView(p.Snapshot()),
			})
		}
		for _, p := range it.Packages() {
			iv.Packages = append(iv.Packages, PackageSelectionView{
				PackageID: p.PackageID(),
				Quantity:  p.Quantity(),
				Snapshot:  snapshotView(p.Snapshot()),
			})
		}
		v.Items = append(v.Items, iv)
	}
	return v
}

func snapshotView(s booking.Snapshot) SnapshotView {
	return SnapshotView{
		Name:            s.Name(),
		UnitPrice:       s.UnitPrice(),
		DurationMinutes: s.DurationMinutes(),
		Currency:        s.Currency(),
	}
}
