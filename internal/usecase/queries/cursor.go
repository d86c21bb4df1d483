package queries

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"math"
	"slices"
	"strings"
	"time"

	"treatment-booking/internal/pkg/errs"

	"github.com/google/uuid"
)

const CursorVersionV1 = "v1"

var (
	ErrInvalidPageToken  = errs.InvalidArgument("invalid_page_token", "page token is malformed")
	ErrPageTokenMismatch = errs.InvalidArgument("page_token_mismatch", "page token does not match the current query")
)

// Cursor is the decoded form of a page token. Pivots hold one value per
// field of the ordering chain that produced it; timestamps travel as epoch
// milliseconds. Ordering names that chain; tokens without it are checked by
// shape only.
type Cursor struct {
	Version   string    `json:"v"`
	RangeKind RangeKind `json:"k"`
	Ordering  []Field   `json:"o,omitempty"`
	Pivots    []any     `json:"p"`
}

func EncodeCursor(c Cursor) (string, error) {
	if c.Version == "" {
		c.Version = CursorVersionV1
	}
	raw, err := json.Marshal(c)
	if err != nil {
		return "", errs.Wrap(err, "encode page token")
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

var stdToURL = strings.NewReplacer("+", "-", "/", "_")

// DecodeCursor accepts standard and URL-safe base64, padded or not.
func DecodeCursor(token string) (Cursor, error) {
	normalized := stdToURL.Replace(strings.TrimRight(strings.TrimSpace(token), "="))
	raw, err := base64.RawURLEncoding.DecodeString(normalized)
	if err != nil {
		return Cursor{}, ErrInvalidPageToken.Wrap(err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var c Cursor
	if err := dec.Decode(&c); err != nil {
		return Cursor{}, ErrInvalidPageToken.Wrap(err)
	}
	if c.Version == "" || c.Pivots == nil {
		return Cursor{}, ErrInvalidPageToken
	}
	return c, nil
}

// Revive checks the cursor against the plan and converts each pivot to the
// type the stores compare with: time.Time for timestamp fields, uuid.UUID
// for the id and string for the rest.
func (c Cursor) Revive(plan Plan) ([]any, error) {
	if c.Version != CursorVersionV1 {
		return nil, ErrPageTokenMismatch.
			With("expectedVersion", CursorVersionV1).
			With("receivedVersion", c.Version)
	}
	// every shape mismatch names both pivot counts
	mismatch := ErrPageTokenMismatch.
		With("expected", plan.ExpectedPivotCount()).
		With("received", len(c.Pivots))
	if len(c.Pivots) != plan.ExpectedPivotCount() {
		return nil, mismatch
	}
	if c.RangeKind != plan.Range.Kind {
		return nil, mismatch.
			With("expectedRange", string(plan.Range.Kind)).
			With("receivedRange", string(c.RangeKind))
	}
	if c.Ordering != nil && !slices.Equal(c.Ordering, plan.Ordering) {
		return nil, mismatch.
			With("expectedOrdering", plan.Ordering).
			With("receivedOrdering", c.Ordering)
	}

	out := make([]any, len(c.Pivots))
	for i, field := range plan.Ordering {
		v, err := revivePivot(field, c.Pivots[i])
		if err != nil {
			return nil, ErrInvalidPageToken.
				With("position", i).
				With("field", string(field)).
				Wrap(err)
		}
		out[i] = v
	}
	return out, nil
}

func revivePivot(field Field, raw any) (any, error) {
	switch {
	case field.IsTimestamp():
		return reviveTime(raw)
	case field == FieldID:
		s, ok := raw.(string)
		if !ok {
			return nil, errs.New("id pivot is not a string")
		}
		return uuid.Parse(s)
	default:
		s, ok := raw.(string)
		if !ok {
			return nil, errs.New("pivot is not a string")
		}
		return s, nil
	}
}

// reviveTime reads epoch milliseconds, RFC 3339 strings and
// {seconds, nanoseconds} objects.
func reviveTime(raw any) (time.Time, error) {
	switch v := raw.(type) {
	case json.Number:
		if ms, err := v.Int64(); err == nil {
			return time.UnixMilli(ms).UTC(), nil
		}
		f, err := v.Float64()
		if err != nil {
			return time.Time{}, err
		}
		return fromFloatMillis(f), nil
	case float64:
		return fromFloatMillis(v), nil
	case int64:
		return time.UnixMilli(v).UTC(), nil
	case int:
		return time.UnixMilli(int64(v)).UTC(), nil
	case string:
		t, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return time.Time{}, err
		}
		return t.UTC(), nil
	case map[string]any:
		secs, ok := firstNumber(v, "seconds", "_seconds")
		if !ok {
			return time.Time{}, errs.New("timestamp object without seconds")
		}
		nanos, _ := firstNumber(v, "nanoseconds", "_nanoseconds", "nanos")
		return time.Unix(int64(secs), int64(nanos)).UTC(), nil
	default:
		return time.Time{}, errs.Newf("unsupported timestamp pivot %T", raw)
	}
}

func fromFloatMillis(f float64) time.Time {
	ms := int64(math.Round(f))
	return time.UnixMilli(ms).UTC()
}

func firstNumber(m map[string]any, keys ...string) (float64, bool) {
	for _, k := range keys {
		switch n := m[k].(type) {
		case json.Number:
			if f, err := n.Float64(); err == nil {
				return f, true
			}
		case float64:
			return n, true
		}
	}
	return 0, false
}

// PivotsFromView reads the ordering-chain values off the last record of a
// page.
func PivotsFromView(v *BookingView, plan Plan) []any {
	out := make([]any, len(plan.Ordering))
	for i, field := range plan.Ordering {
		switch field {
		case FieldCreatedAt:
			out[i] = v.CreatedAt.UnixMilli()
		case FieldUpdatedAt:
			out[i] = v.UpdatedAt.UnixMilli()
		case FieldArrivalAt:
			out[i] = v.ArrivalAt.UnixMilli()
		case FieldName:
			out[i] = v.SearchKey
		case FieldStatus:
			out[i] = v.Status
		case FieldID:
			out[i] = v.ID.String()
		}
	}
	return out
}

func NextCursor(v *BookingView, plan Plan) Cursor {
	return Cursor{
		Version:   CursorVersionV1,
		RangeKind: plan.Range.Kind,
		Ordering:  slices.Clone(plan.Ordering),
		Pivots:    PivotsFromView(v, plan),
	}
}
