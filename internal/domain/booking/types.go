package booking

import (
	"slices"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCanceled  Status = "canceled"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCanceled:
		return true
	default:
		return false
	}
}

func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.IsValid() {
		return "", ErrInvalidStatus.With("status", s)
	}
	return st, nil
}

func AllStatuses() []Status {
	return []Status{StatusPending, StatusConfirmed, StatusCanceled}
}

// canceled is terminal: the only way out of it is back into it.
var allowedTransitions = map[Status][]Status{
	StatusPending:   {StatusPending, StatusConfirmed, StatusCanceled},
	StatusConfirmed: {StatusConfirmed, StatusCanceled},
	StatusCanceled:  {StatusCanceled},
}

func CanTransition(from, to Status) bool {
	allowed, ok := allowedTransitions[from]
	if !ok {
		return false
	}
	return slices.Contains(allowed, to)
}

func AssertTransition(from, to Status) error {
	if !to.IsValid() {
		return ErrInvalidStatus.With("status", to.String())
	}
	if !CanTransition(from, to) {
		return ErrInvalidTransition.
			With("from", from.String()).
			With("to", to.String())
	}
	return nil
}
