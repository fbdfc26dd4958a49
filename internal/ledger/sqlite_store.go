package ledger

import (
	"database/sql"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"

	custom_error "boxtrack/pkg/errors"
	"boxtrack/pkg/models"
)

// SQLiteStore is the embedded backend. Its schema is fixed and always present
// (provisioned by database.InitSQLiteSchema on boot), so unlike the Postgres
// backend it never probes for the projection table.
type SQLiteStore struct {
	db    *sql.DB
	goquD *goqu.Database
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{
		db:    db,
		goquD: goqu.New("sqlite3", db),
	}
}

func (s *SQLiteStore) Ping() error {
	var one int
	if err := s.db.QueryRow("SELECT 1").Scan(&one); err != nil {
		return custom_error.WrapStorageError("database unreachable", err)
	}
	return nil
}

func (s *SQLiteStore) CurrentLocation(boxID string) (string, bool, error) {
	var loc sql.NullString
	found, err := s.goquD.From("boxid_log").
		Select("Location").
		Where(goqu.Ex{"BoxID": boxID}).
		Limit(1).
		Executor().
		ScanVal(&loc)
	if err != nil {
		return "", false, custom_error.WrapStorageError("failed to read current location", err)
	}
	if !found || !loc.Valid || loc.String == "" {
		return "", false, nil
	}

	return loc.String, true, nil
}

func (s *SQLiteStore) History(boxID string, limit int) ([]models.MoveEntry, error) {
	limit = clampLimit(limit, DefaultHistoryLimit, MaxHistoryLimit)

	var entries []models.MoveEntry
	err := s.goquD.From("box_move_log").
		Select("FromLoc", "ToLoc", "MovedAt", "Operator", "Reason").
		Where(goqu.Ex{"BoxID": boxID}).
		Order(goqu.C("id").Desc()).
		Limit(uint(limit)).
		Executor().
		ScanStructs(&entries)
	if err != nil {
		return nil, custom_error.WrapStorageError("failed to read move history", err)
	}
	if entries == nil {
		entries = []models.MoveEntry{}
	}

	return entries, nil
}

func (s *SQLiteStore) AssignInitial(boxID, toLoc, operator, reason string) error {
	return s.recordMove(boxID, toLoc, operator, defaultReason(reason, ReasonInitial))
}

func (s *SQLiteStore) Move(boxID, toLoc, operator, reason string) error {
	return s.recordMove(boxID, toLoc, operator, defaultReason(reason, ReasonMove))
}

// recordMove captures the current location, appends a ledger entry and
// upserts the projection, all in one transaction.
func (s *SQLiteStore) recordMove(boxID, toLoc, operator, reason string) error {
	if err := validateMove(boxID, toLoc); err != nil {
		return err
	}
	now := nowString()

	err := withTransaction(s.goquD, func(tx *goqu.TxDatabase) error {
		var loc sql.NullString
		found, err := tx.From("boxid_log").
			Select("Location").
			Where(goqu.Ex{"BoxID": boxID}).
			Limit(1).
			Executor().
			ScanVal(&loc)
		if err != nil {
			return fmt.Errorf("failed to read current location: %w", err)
		}

		var fromLoc any
		if found && loc.Valid && loc.String != "" {
			fromLoc = loc.String
		}

		if _, err := tx.Insert("box_move_log").
			Rows(goqu.Record{
				"BoxID":    boxID,
				"FromLoc":  fromLoc,
				"ToLoc":    toLoc,
				"MovedAt":  now,
				"Operator": nullable(operator),
				"Reason":   reason,
			}).
			Executor().
			Exec(); err != nil {
			return fmt.Errorf("failed to insert move history: %w", err)
		}

		result, err := tx.Update("boxid_log").
			Set(goqu.Record{"Location": toLoc, "UpdatedAt": now}).
			Where(goqu.Ex{"BoxID": boxID}).
			Executor().
			Exec()
		if err != nil {
			return fmt.Errorf("failed to update current location: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to check rows affected: %w", err)
		}
		if affected == 0 {
			if _, err := tx.Insert("boxid_log").
				Rows(goqu.Record{
					"BoxID":     boxID,
					"Location":  toLoc,
					"Status":    "OK",
					"CreatedAt": now,
					"UpdatedAt": now,
				}).
				Executor().
				Exec(); err != nil {
				return fmt.Errorf("failed to create box record: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return custom_error.WrapStorageError("move failed for "+boxID, err)
	}

	return nil
}

func (s *SQLiteStore) DistinctLocations(limit int) ([]string, error) {
	limit = clampLimit(limit, DefaultLocationsLimit, MaxQueryLimit)

	var locations []string
	err := s.goquD.From("boxid_log").
		Select("Location").
		Distinct().
		Where(
			goqu.C("Location").IsNotNull(),
			goqu.C("Location").Neq(""),
		).
		Order(goqu.C("Location").Asc()).
		Limit(uint(limit)).
		Executor().
		ScanVals(&locations)
	if err != nil {
		return nil, custom_error.WrapStorageError("failed to list locations", err)
	}
	if locations == nil {
		locations = []string{}
	}

	return locations, nil
}

func (s *SQLiteStore) FindByID(boxID string) (*models.Box, error) {
	var box models.Box
	found, err := s.boxDataset().
		Where(goqu.Ex{"BoxID": boxID}).
		Limit(1).
		Executor().
		ScanStruct(&box)
	if err != nil {
		return nil, custom_error.WrapStorageError("failed to fetch box", err)
	}
	if !found {
		return nil, nil
	}

	return &box, nil
}

func (s *SQLiteStore) Search(idSubstring, locationPrefix string, limit int) ([]models.Box, error) {
	limit = clampLimit(limit, DefaultSearchLimit, MaxQueryLimit)

	query := s.boxDataset()
	if idSubstring != "" {
		query = query.Where(goqu.C("BoxID").Like("%" + idSubstring + "%"))
	}
	if locationPrefix != "" {
		query = query.Where(goqu.C("Location").Like(locationPrefix + "%"))
	}
	query = query.
		Order(
			goqu.L("COALESCE(UpdatedAt, CreatedAt)").Desc(),
			goqu.C("BoxID").Desc(),
		).
		Limit(uint(limit))

	var boxes []models.Box
	if err := query.Executor().ScanStructs(&boxes); err != nil {
		return nil, custom_error.WrapStorageError("failed to search boxes", err)
	}
	if boxes == nil {
		boxes = []models.Box{}
	}

	return boxes, nil
}

func (s *SQLiteStore) FindByPrefix(prefix string) ([]models.Box, error) {
	var boxes []models.Box
	err := s.boxDataset().
		Where(goqu.C("BoxID").Like(prefix + "%")).
		Order(goqu.C("BoxID").Asc()).
		Executor().
		ScanStructs(&boxes)
	if err != nil {
		return nil, custom_error.WrapStorageError("failed to scan boxes by prefix", err)
	}
	if boxes == nil {
		boxes = []models.Box{}
	}

	return boxes, nil
}

func (s *SQLiteStore) BoxIDsByPrefix(prefix string) ([]string, error) {
	var ids []string
	err := s.goquD.From("boxid_log").
		Select("BoxID").
		Where(goqu.C("BoxID").Like(prefix + "%")).
		Order(goqu.C("BoxID").Asc()).
		Executor().
		ScanVals(&ids)
	if err != nil {
		return nil, custom_error.WrapStorageError("failed to scan box ids", err)
	}

	return ids, nil
}

func (s *SQLiteStore) RecordScan(scan models.ScanRequest) error {
	if scan.BoxID == "" || scan.Location == "" {
		return custom_error.NewValidationError("boxid and location are required")
	}

	_, err := s.goquD.Insert("box_moves").
		Rows(goqu.Record{
			"BoxID":     scan.BoxID,
			"Location":  scan.Location,
			"Operator":  nullable(scan.Operator),
			"Warehouse": nullable(scan.Warehouse),
			"CreatedAt": nowString(),
		}).
		Executor().
		Exec()
	if err != nil {
		return custom_error.WrapStorageError("failed to record scan", err)
	}

	return nil
}

func (s *SQLiteStore) RecentScans(boxID string, limit int) ([]models.ScanEvent, error) {
	limit = clampLimit(limit, DefaultScansLimit, MaxScansLimit)

	query := s.goquD.From("box_moves").
		Select("Id", "BoxID", "Location", "Operator", "Warehouse", "CreatedAt")
	if boxID != "" {
		query = query.Where(goqu.Ex{"BoxID": boxID})
	}
	query = query.Order(goqu.C("Id").Desc()).Limit(uint(limit))

	var scans []models.ScanEvent
	if err := query.Executor().ScanStructs(&scans); err != nil {
		return nil, custom_error.WrapStorageError("failed to read scans", err)
	}
	if scans == nil {
		scans = []models.ScanEvent{}
	}

	return scans, nil
}

func (s *SQLiteStore) boxDataset() *goqu.SelectDataset {
	return s.goquD.From("boxid_log").
		Select(
			"BoxID",
			"ItemCode",
			"Qty",
			"Location",
			goqu.COALESCE(goqu.C("Status"), goqu.V("OK")).As("Status"),
			goqu.COALESCE(goqu.C("UpdatedAt"), goqu.C("CreatedAt")).As("UpdatedAt"),
		)
}
