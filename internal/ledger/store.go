package ledger

import (
	"time"

	custom_error "boxtrack/pkg/errors"
	"boxtrack/pkg/models"
)

const (
	ReasonInitial = "INITIAL"
	ReasonMove    = "MOVE"
)

const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 200

	DefaultLocationsLimit = 2000
	DefaultSearchLimit    = 10000
	MaxQueryLimit         = 10000

	DefaultScansLimit = 50
	MaxScansLimit     = 500
)

// Store is the single storage handle for the process. It is selected once at
// startup (embedded SQLite or networked Postgres) and owns the box projection,
// the move-history ledger and the scan log; nothing else writes those tables.
type Store interface {
	Ping() error

	// CurrentLocation returns the box's current location. The bool is false
	// when the box has no record or its location is null/empty; that is a
	// normal outcome, not an error.
	CurrentLocation(boxID string) (string, bool, error)

	// History returns up to limit ledger entries, most recent first. A box
	// with no history yields an empty slice.
	History(boxID string, limit int) ([]models.MoveEntry, error)

	// AssignInitial and Move are the same write (history append + projection
	// upsert in one transaction) and differ only in the default reason label.
	AssignInitial(boxID, toLoc, operator, reason string) error
	Move(boxID, toLoc, operator, reason string) error

	DistinctLocations(limit int) ([]string, error)

	// FindByID returns nil (with nil error) when no record matches; a record
	// with a null location is a found record.
	FindByID(boxID string) (*models.Box, error)

	Search(idSubstring, locationPrefix string, limit int) ([]models.Box, error)
	FindByPrefix(prefix string) ([]models.Box, error)
	BoxIDsByPrefix(prefix string) ([]string, error)

	RecordScan(scan models.ScanRequest) error
	RecentScans(boxID string, limit int) ([]models.ScanEvent, error)
}

func defaultReason(reason, fallback string) string {
	if reason == "" {
		return fallback
	}
	return reason
}

func validateMove(boxID, toLoc string) error {
	if boxID == "" {
		return custom_error.NewValidationError("boxid is required")
	}
	if toLoc == "" {
		return custom_error.NewValidationError("to_loc is required")
	}
	return nil
}

func clampLimit(limit, fallback, max int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > max {
		return max
	}
	return limit
}

func nowString() string {
	return time.Now().Format("2006-01-02 15:04:05")
}

// nullable maps an empty string to SQL NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
