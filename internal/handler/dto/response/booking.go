package response

import (
	"time"

	"treatment-booking/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type SnapshotResponse struct {
	Name            string `json:"name"`
	UnitPrice       int64  `json:"unitPrice"`
	DurationMinutes int    `json:"durationMinutes"`
	Currency        string `json:"currency"`
}

type ProgramSelectionResponse struct {
	ProgramID uuid.UUID        `json:"programId"`
	Quantity  int              `json:"quantity"`
	Snapshot  SnapshotResponse `json:"snapshot"`
}

type PackageSelectionResponse struct {
	PackageID uuid.UUID        `json:"packageId"`
	Quantity  int              `json:"quantity"`
	Snapshot  SnapshotResponse `json:"snapshot"`
}

type ItemResponse struct {
	PersonName string                     `json:"personName"`
	Programs   []ProgramSelectionResponse `json:"programs"`
	Packages   []PackageSelectionResponse `json:"packages"`
}

type ContactResponse struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

type TotalsResponse struct {
	Subtotal      int64  `json:"subtotal"`
	GrandTotal    int64  `json:"grandTotal"`
	Currency      string `json:"currency"`
	MixedCurrency bool   `json:"mixedCurrency"`
}

type BookingResponse struct {
	ID        uuid.UUID       `json:"id"`
	Status    string          `json:"status"`
	ArrivalAt time.Time       `json:"arrivalAt"`
	Contact   ContactResponse `json:"contact"`
	Note      string          `json:"note,omitempty"`
	Items     []ItemResponse  `json:"items"`
	Totals    TotalsResponse  `json:"totals"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
	CreatedBy *string         `json:"createdBy,omitempty"`
	Version   int64           `json:"version"`
}

type ListMetaResponse struct {
	Notices      []string `json:"notices"`
	AppliedRange string   `json:"appliedRange"`
	Ordering     []string `json:"ordering"`
	Direction    string   `json:"direction"`
	PageSize     int      `json:"pageSize"`
}

type BookingListResponse struct {
	Items         []*BookingResponse `json:"items"`
	NextPageToken string             `json:"nextPageToken,omitempty"`
	HasMore       bool               `json:"hasMore"`
	Meta          ListMetaResponse   `json:"meta"`
}

func FromBookingView(v *queries.BookingView) (*BookingResponse, error) {
	res := &BookingResponse{}
	if err := copier.CopyWithOption(res, v, copier.Option{DeepCopy: true}); err != nil {
		return nil, err
	}
	if res.Items == nil {
		res.Items = []ItemResponse{}
	}
	return res, nil
}

func FromListResult(r *queries.ListResult) (*BookingListResponse, error) {
	res := &BookingListResponse{
		Items:         make([]*BookingResponse, 0, len(r.Items)),
		NextPageToken: r.NextPageToken,
		HasMore:       r.HasMore,
		Meta: ListMetaResponse{
			Notices:      append([]string{}, r.Meta.Notices...),
			AppliedRange: string(r.Meta.AppliedRange),
			Ordering:     make([]string, len(r.Meta.Ordering)),
			Direction:    string(r.Meta.Direction),
			PageSize:     r.Meta.PageSize,
		},
	}
	for i, f := range r.Meta.Ordering {
		res.Meta.Ordering[i] = string(f)
	}
	for _, v := range r.Items {
		item, err := FromBookingView(v)
		if err != nil {
			return nil, err
		}
		res.Items = append(res.Items, item)
	}
	return res, nil
}
