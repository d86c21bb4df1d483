package memstore

import (
	"context"
	"slices"
	"strings"
	"time"

	"treatment-booking/internal/domain/booking"
	"treatment-booking/internal/infra/document"
	"treatment-booking/internal/usecase/queries"

	"github.com/google/uuid"
)

// List evaluates the plan the way the document stores do: filter, order by
// the chain, resume strictly after the pivots, stop at the fetch limit.
func (s *Store) List(_ context.Context, plan queries.Plan, after []any) ([]*queries.BookingView, error) {
	s.mu.RLock()
	docs := make([]document.Booking, 0, len(s.bookings))
	for _, d := range s.bookings {
		if matches(d, plan) {
			docs = append(docs, d)
		}
	}
	s.mu.RUnlock()

	sign := 1
	if plan.Direction == queries.Desc {
		sign = -1
	}
	slices.SortFunc(docs, func(a, b document.Booking) int {
		return sign * compareKeys(a, plan.Ordering, keysOf(b, plan.Ordering))
	})

	pivots := normalizePivots(after)
	out := make([]*queries.BookingView, 0, plan.FetchLimit())
	for _, d := range docs {
		if pivots != nil && sign*compareKeys(d, plan.Ordering, pivots) <= 0 {
			continue
		}
		v, err := d.ToView()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
		if len(out) == plan.FetchLimit() {
			break
		}
	}
	return out, nil
}

func matches(d document.Booking, plan queries.Plan) bool {
	if len(plan.Statuses) > 0 && !slices.ContainsFunc(plan.Statuses, func(s booking.Status) bool {
		return s.String() == d.Status
	}) {
		return false
	}

	switch plan.Range.Kind {
	case queries.RangeTextPrefix:
		key, _ := d.Value(plan.Range.Field).(string)
		return key >= plan.Range.Lower && key < plan.Range.Upper
	case queries.RangeDate:
		t, _ := d.Value(plan.Range.Field).(time.Time)
		if plan.Range.From != nil && t.Before(*plan.Range.From) {
			return false
		}
		if plan.Range.To != nil && t.After(*plan.Range.To) {
			return false
		}
	}
	return true
}

func keysOf(d document.Booking, ordering []queries.Field) []any {
	out := make([]any, len(ordering))
	for i, f := range ordering {
		out[i] = d.Value(f)
	}
	return out
}

// compareKeys compares the document's ordering values with keys,
// lexicographically over the chain.
func compareKeys(d document.Booking, ordering []queries.Field, keys []any) int {
	for i, f := range ordering {
		if c := compareValues(d.Value(f), keys[i]); c != 0 {
			return c
		}
	}
	return 0
}

func compareValues(a, b any) int {
	switch x := a.(type) {
	case time.Time:
		y, _ := b.(time.Time)
		return x.Compare(y)
	case string:
		y, _ := b.(string)
		return strings.Compare(x, y)
	default:
		return 0
	}
}

// Ids are stored as canonical strings, whose byte order matches uuid byte
// order.
func normalizePivots(after []any) []any {
	if after == nil {
		return nil
	}
	out := make([]any, len(after))
	for i, v := range after {
		if id, ok := v.(uuid.UUID); ok {
			out[i] = id.String()
			continue
		}
		out[i] = v
	}
	return out
}
