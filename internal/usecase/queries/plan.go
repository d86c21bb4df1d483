package queries

import (
	"strings"
	"time"

	"treatment-booking/internal/domain/booking"
	"treatment-booking/internal/pkg/errs"
	"treatment-booking/internal/pkg/textkey"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	// MaxInValues mirrors the document store's limit on "in" predicates.
	MaxInValues = 10
)

const (
	NoticeDateFilterIgnored = "from/to were ignored because q takes precedence"
	NoticeStatusTruncated   = "status filter was truncated to its first 10 values"
)

var (
	ErrInvalidSortField     = errs.InvalidArgument("invalid_sort_field", "sortBy is not a sortable field")
	ErrInvalidSortDirection = errs.InvalidArgument("invalid_sort_direction", "direction must be asc or desc")
	ErrInvalidDateRange     = errs.InvalidArgument("invalid_date_range", "from must not be after to")
)

// Field is a logical booking field a listing can sort or range-filter on.
// Each adapter maps it to its own column or document path.
type Field string

const (
	FieldCreatedAt Field = "createdAt"
	FieldUpdatedAt Field = "updatedAt"
	FieldArrivalAt Field = "arrivalAt"
	// FieldName is the case-folded contact name.
	FieldName   Field = "name"
	FieldStatus Field = "status"
	FieldID     Field = "id"
)

var sortableFields = map[Field]struct{}{
	FieldCreatedAt: {},
	FieldUpdatedAt: {},
	FieldArrivalAt: {},
	FieldName:      {},
	FieldStatus:    {},
}

func (f Field) IsTimestamp() bool {
	switch f {
	case FieldCreatedAt, FieldUpdatedAt, FieldArrivalAt:
		return true
	default:
		return false
	}
}

func ParseSortField(s string) (Field, error) {
	if s == "" {
		return FieldCreatedAt, nil
	}
	f := Field(s)
	if _, ok := sortableFields[f]; !ok {
		return "", ErrInvalidSortField.With("sortBy", s)
	}
	return f, nil
}

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

func ParseDirection(s string) (Direction, error) {
	switch Direction(strings.ToLower(s)) {
	case "", Desc:
		return Desc, nil
	case Asc:
		return Asc, nil
	default:
		return "", ErrInvalidSortDirection.With("direction", s)
	}
}

type RangeKind string

const (
	RangeNone       RangeKind = "none"
	RangeTextPrefix RangeKind = "textPrefix"
	RangeDate       RangeKind = "dateRange"
)

// Range is the single inequality predicate of a listing. Text prefixes are
// half-open [Lower, Upper); date bounds are inclusive and either may be nil.
type Range struct {
	Kind  RangeKind
	Field Field
	Lower string
	Upper string
	From  *time.Time
	To    *time.Time
}

type ListParams struct {
	Statuses  []string
	Q         string
	From      *time.Time
	To        *time.Time
	SortBy    string
	Direction string
	PageSize  int
	PageToken string
}

// Plan is the store-agnostic shape of one listing query. Adapters translate
// it into SQL, a BSON filter or an in-memory predicate.
type Plan struct {
	Statuses  []booking.Status
	Range     Range
	SortBy    Field
	Direction Direction
	// Ordering always starts with the range field when there is one and
	// ends with FieldID.
	Ordering []Field
	PageSize int
	Notices  []string
}

func (p Plan) ExpectedPivotCount() int {
	return len(p.Ordering)
}

// FetchLimit is one more than the page size so a next page is detected
// without counting.
func (p Plan) FetchLimit() int {
	return p.PageSize + 1
}

func BuildPlan(params ListParams) (Plan, error) {
	sortBy, err := ParseSortField(params.SortBy)
	if err != nil {
		return Plan{}, err
	}
	dir, err := ParseDirection(params.Direction)
	if err != nil {
		return Plan{}, err
	}

	plan := Plan{
		SortBy:    sortBy,
		Direction: dir,
		PageSize:  ValidatePageSize(params.PageSize),
		Range:     Range{Kind: RangeNone},
	}

	statuses, truncated, err := parseStatuses(params.Statuses)
	if err != nil {
		return Plan{}, err
	}
	plan.Statuses = statuses
	if truncated {
		plan.Notices = append(plan.Notices, NoticeStatusTruncated)
	}

	hasDates := params.From != nil || params.To != nil
	q := strings.TrimSpace(params.Q)
	switch {
	case q != "":
		lower, upper := textkey.PrefixBounds(q)
		plan.Range = Range{Kind: RangeTextPrefix, Field: FieldName, Lower: lower, Upper: upper}
		if hasDates {
			plan.Notices = append(plan.Notices, NoticeDateFilterIgnored)
		}
	case hasDates:
		if params.From != nil && params.To != nil && params.From.After(*params.To) {
			return Plan{}, ErrInvalidDateRange.
				With("from", params.From.UTC().Format(time.RFC3339Nano)).
				With("to", params.To.UTC().Format(time.RFC3339Nano))
		}
		plan.Range = Range{Kind: RangeDate, Field: FieldCreatedAt, From: utcPtr(params.From), To: utcPtr(params.To)}
	}

	plan.Ordering = orderingChain(plan.Range, sortBy)
	return plan, nil
}

func orderingChain(r Range, sortBy Field) []Field {
	chain := make([]Field, 0, 3)
	if r.Kind != RangeNone {
		chain = append(chain, r.Field)
	}
	if r.Kind == RangeNone || sortBy != r.Field {
		chain = append(chain, sortBy)
	}
	return append(chain, FieldID)
}

// parseStatuses keeps the first MaxInValues alternatives, as the store
// would reject a longer "in" list, then validates and dedupes them.
func parseStatuses(raw []string) ([]booking.Status, bool, error) {
	values := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			values = append(values, s)
		}
	}
	truncated := len(values) > MaxInValues
	if truncated {
		values = values[:MaxInValues]
	}

	var out []booking.Status
	seen := make(map[booking.Status]struct{}, len(values))
	for _, s := range values {
		st, err := booking.ParseStatus(s)
		if err != nil {
			return nil, false, err
		}
		if _, dup := seen[st]; dup {
			continue
		}
		seen[st] = struct{}{}
		out = append(out, st)
	}
	return out, truncated, nil
}

func ValidatePageSize(size int) int {
	if size <= 0 {
		return DefaultPageSize
	}
	if size > MaxPageSize {
		return MaxPageSize
	}
	return size
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
