package resolver

import (
	"fmt"

	"boxtrack/internal/ledger"
	"boxtrack/pkg/boxid"
	custom_error "boxtrack/pkg/errors"
)

// Resolver expands a prefix/serial range or an explicit id list into per-box
// move-or-assign calls against the ledger store.
type Resolver struct {
	store ledger.Store
}

func NewResolver(store ledger.Store) *Resolver {
	return &Resolver{store: store}
}

type Failure struct {
	BoxID string `json:"boxid"`
	Err   string `json:"err"`
}

// Outcome reports a bulk operation. A non-empty Fails list is a partial
// failure, not an overall one.
type Outcome struct {
	Moved int       `json:"moved"`
	Fails []Failure `json:"fails"`
}

// MoveRange moves every known box sharing boxID's prefix whose trailing
// numeric serial falls within [start, end]. Ids with a non-numeric trailing
// serial never match; they are skipped, not reported as errors. A NotFoundError
// is returned when nothing matches at all.
func (r *Resolver) MoveRange(boxID string, start, end int, toLoc, operator, reason string) (*Outcome, error) {
	prefix := boxid.PrefixOf(boxID)

	ids, err := r.store.BoxIDsByPrefix(prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve range for prefix %s: %w", prefix, err)
	}

	var matched []string
	for _, id := range ids {
		serial, ok := boxid.SerialNumber(id)
		if !ok {
			continue
		}
		if serial >= start && serial <= end {
			matched = append(matched, id)
		}
	}
	if len(matched) == 0 {
		return nil, custom_error.NewNotFoundError("no boxes in range for prefix %s", prefix)
	}

	return r.moveAll(matched, toLoc, operator, reason), nil
}

// MoveBulk applies move-or-assign to an explicit id list, continuing past
// individual failures.
func (r *Resolver) MoveBulk(boxIDs []string, toLoc, operator, reason string) (*Outcome, error) {
	if len(boxIDs) == 0 {
		return nil, custom_error.NewValidationError("boxids empty")
	}

	return r.moveAll(boxIDs, toLoc, operator, reason), nil
}

func (r *Resolver) moveAll(boxIDs []string, toLoc, operator, reason string) *Outcome {
	outcome := &Outcome{Fails: []Failure{}}

	for _, id := range boxIDs {
		if err := r.moveOrAssign(id, toLoc, operator, reason); err != nil {
			outcome.Fails = append(outcome.Fails, Failure{BoxID: id, Err: err.Error()})
			continue
		}
		outcome.Moved++
	}

	return outcome
}

// moveOrAssign labels the transition INITIAL when the box has no current
// location; the write itself is identical either way.
func (r *Resolver) moveOrAssign(boxID, toLoc, operator, reason string) error {
	_, hasLocation, err := r.store.CurrentLocation(boxID)
	if err != nil {
		return err
	}

	if hasLocation {
		return r.store.Move(boxID, toLoc, operator, reason)
	}

	return r.store.AssignInitial(boxID, toLoc, operator, ledger.ReasonInitial)
}
