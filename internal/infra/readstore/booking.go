package readstore

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"

	"treatment-booking/internal/infra"
	"treatment-booking/internal/infra/db"
	"treatment-booking/internal/infra/document"
	"treatment-booking/internal/pkg/pgconv"
	"treatment-booking/internal/usecase/queries"

	"github.com/google/uuid"
)

var bookingColumns = map[queries.Field]string{
	queries.FieldCreatedAt: "created_at",
	queries.FieldUpdatedAt: "updated_at",
	queries.FieldArrivalAt: "arrival_at",
	queries.FieldName:      "search_key",
	queries.FieldStatus:    "status",
	queries.FieldID:        "id",
}

type BookingReadStore struct {
	db     db.DBTX
	logger *slog.Logger
}

func NewBookingReadStore(dbtx db.DBTX, logger *slog.Logger) *BookingReadStore {
	return &BookingReadStore{
		db:     dbtx,
		logger: logger,
	}
}

func (r *BookingReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.BookingView, error) {
	var raw []byte
	err := r.db.QueryRow(ctx, `SELECT doc FROM bookings WHERE id = $1`, id).Scan(&raw)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.NotFoundErr("booking not found")
		}
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to get booking by id", err)
	}
	return r.decode(raw)
}

func (r *BookingReadStore) List(ctx context.Context, plan queries.Plan, after []any) ([]*queries.BookingView, error) {
	sql, args := buildListQuery(plan, after)

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to list bookings", err)
	}
	defer rows.Close()

	out := make([]*queries.BookingView, 0, plan.FetchLimit())
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to scan booking", err)
		}
		v, err := r.decode(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to iterate bookings", err)
	}
	return out, nil
}

func (r *BookingReadStore) decode(raw []byte) (*queries.BookingView, error) {
	var doc document.Booking
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindDecode, "failed to decode booking document", err)
	}
	v, err := doc.ToView()
	if err != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindDecode, "failed to map booking document", err)
	}
	return v, nil
}

// buildListQuery renders a plan as one keyset query. Every ordering key
// shares the plan's direction, so resuming after the pivots is a single
// row comparison.
func buildListQuery(plan queries.Plan, after []any) (string, []any) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if len(plan.Statuses) > 0 {
		statuses := make([]string, len(plan.Statuses))
		for i, s := range plan.Statuses {
			statuses[i] = s.String()
		}
		where = append(where, "status = ANY("+arg(statuses)+")")
	}

	switch plan.Range.Kind {
	case queries.RangeTextPrefix:
		col := bookingColumns[plan.Range.Field]
		where = append(where, col+" >= "+arg(plan.Range.Lower), col+" < "+arg(plan.Range.Upper))
	case queries.RangeDate:
		col := bookingColumns[plan.Range.Field]
		if plan.Range.From != nil {
			where = append(where, col+" >= "+arg(*plan.Range.From))
		}
		if plan.Range.To != nil {
			where = append(where, col+" <= "+arg(*plan.Range.To))
		}
	}

	cols := make([]string, len(plan.Ordering))
	for i, f := range plan.Ordering {
		cols[i] = bookingColumns[f]
	}

	if len(after) > 0 {
		op := "<"
		if plan.Direction == queries.Asc {
			op = ">"
		}
		placeholders := make([]string, len(after))
		for i, v := range after {
			placeholders[i] = arg(v)
		}
		where = append(where, "("+strings.Join(cols, ", ")+") "+op+" ("+strings.Join(placeholders, ", ")+")")
	}

	dir := " DESC"
	if plan.Direction == queries.Asc {
		dir = " ASC"
	}
	order := make([]string, len(cols))
	for i, c := range cols {
		order[i] = c + dir
	}

	var sb strings.Builder
	sb.WriteString("SELECT doc FROM bookings")
	if len(where) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(where, " AND "))
	}
	sb.WriteString(" ORDER BY ")
	sb.WriteString(strings.Join(order, ", "))
	sb.WriteString(" LIMIT ")
	sb.WriteString(arg(plan.FetchLimit()))
	return sb.String(), args
}
