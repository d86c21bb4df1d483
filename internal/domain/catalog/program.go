package catalog

import (
	"github.com/google/uuid"
)

// ProgramOption is one bookable duration of a program with its price in
// minor currency units.
type ProgramOption struct {
	DurationMinutes int
	Price           int64
}

// Program is a treatment program as owned by the catalog service. The
// booking core only reads it to freeze snapshots.
type Program struct {
	ID       uuid.UUID
	Name     string
	Currency string
	Options  []ProgramOption
}

// Option looks up the option with exactly the given duration.
func (p Program) Option(durationMinutes int) (ProgramOption, bool) {
	for _, o := range p.Options {
		if o.DurationMinutes == durationMinutes {
			return o, true
		}
	}
	return ProgramOption{}, false
}

func (p Program) Durations() []int {
	out := make([]int, len(p.Options))
	for i, o := range p.Options {
		out[i] = o.DurationMinutes
	}
	return out
}
