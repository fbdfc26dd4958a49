package ledger

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"

	"boxtrack/internal/config"
	custom_error "boxtrack/pkg/errors"
	"boxtrack/pkg/models"
)

// PostgresStore is the networked backend. The boxes table name and its
// id/location column names are configurable and may point at a table owned by
// another system, so their presence is probed once at construction; when the
// probe fails, moves are still logged to move_log and the current-location
// projection is silently skipped.
type PostgresStore struct {
	db    *sql.DB
	goquD *goqu.Database
	cfg   config.Config

	projectionAvailable bool
	hasUpdatedAt        bool
}

func NewPostgresStore(db *sql.DB, cfg config.Config) (*PostgresStore, error) {
	s := &PostgresStore{
		db:    db,
		goquD: goqu.New("postgres", db),
		cfg:   cfg,
	}

	if err := s.probeCapabilities(); err != nil {
		return nil, fmt.Errorf("failed to probe boxes table: %w", err)
	}
	if !s.projectionAvailable {
		log.Printf("Warning: table %q with columns %q/%q not found, location projection disabled.\n",
			cfg.BoxesTable, cfg.BoxesIDColumn, cfg.BoxesLocColumn)
	}

	return s, nil
}

func (s *PostgresStore) probeCapabilities() error {
	tableOK, err := s.tableExists(s.cfg.BoxesTable)
	if err != nil {
		return err
	}
	if !tableOK {
		return nil
	}

	idOK, err := s.columnExists(s.cfg.BoxesTable, s.cfg.BoxesIDColumn)
	if err != nil {
		return err
	}
	locOK, err := s.columnExists(s.cfg.BoxesTable, s.cfg.BoxesLocColumn)
	if err != nil {
		return err
	}
	s.projectionAvailable = idOK && locOK

	s.hasUpdatedAt, err = s.columnExists(s.cfg.BoxesTable, "updated_at")
	if err != nil {
		return err
	}

	return nil
}

func (s *PostgresStore) tableExists(table string) (bool, error) {
	var one int
	err := s.db.QueryRow(
		`SELECT 1 FROM information_schema.tables WHERE table_name = $1 LIMIT 1`,
		table,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *PostgresStore) columnExists(table, column string) (bool, error) {
	var one int
	err := s.db.QueryRow(
		`SELECT 1 FROM information_schema.columns WHERE table_name = $1 AND column_name = $2 LIMIT 1`,
		table, column,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *PostgresStore) Ping() error {
	var one int
	if err := s.db.QueryRow("SELECT 1").Scan(&one); err != nil {
		return custom_error.WrapStorageError("database unreachable", err)
	}
	return nil
}

func (s *PostgresStore) CurrentLocation(boxID string) (string, bool, error) {
	if !s.projectionAvailable {
		return "", false, nil
	}

	var loc sql.NullString
	found, err := s.goquD.From(s.cfg.BoxesTable).
		Select(goqu.C(s.cfg.BoxesLocColumn)).
		Where(goqu.Ex{s.cfg.BoxesIDColumn: boxID}).
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

func (s *PostgresStore) History(boxID string, limit int) ([]models.MoveEntry, error) {
	limit = clampLimit(limit, DefaultHistoryLimit, MaxHistoryLimit)

	var entries []models.MoveEntry
	err := s.goquD.From("move_log").
		Select(
			goqu.C("from_location").As("FromLoc"),
			goqu.C("to_location").As("ToLoc"),
			goqu.C("moved_at").As("MovedAt"),
			goqu.C("moved_by").As("Operator"),
			goqu.C("note").As("Reason"),
		).
		Where(goqu.Ex{"box_id": boxID}).
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

func (s *PostgresStore) AssignInitial(boxID, toLoc, operator, reason string) error {
	return s.recordMove(boxID, toLoc, operator, defaultReason(reason, ReasonInitial))
}

func (s *PostgresStore) Move(boxID, toLoc, operator, reason string) error {
	return s.recordMove(boxID, toLoc, operator, defaultReason(reason, ReasonMove))
}

func (s *PostgresStore) recordMove(boxID, toLoc, operator, reason string) error {
	if err := validateMove(boxID, toLoc); err != nil {
		return err
	}

	err := withTransaction(s.goquD, func(tx *goqu.TxDatabase) error {
		var fromLoc any
		if s.projectionAvailable {
			var loc sql.NullString
			found, err := tx.From(s.cfg.BoxesTable).
				Select(goqu.C(s.cfg.BoxesLocColumn)).
				Where(goqu.Ex{s.cfg.BoxesIDColumn: boxID}).
				Limit(1).
				Executor().
				ScanVal(&loc)
			if err != nil {
				return fmt.Errorf("failed to read current location: %w", err)
			}
			if found && loc.Valid && loc.String != "" {
				fromLoc = loc.String
			}
		}

		if _, err := tx.Insert("move_log").
			Rows(goqu.Record{
				"box_id":        boxID,
				"from_location": fromLoc,
				"to_location":   toLoc,
				"moved_by":      nullable(operator),
				"note":          reason,
			}).
			Executor().
			Exec(); err != nil {
			return fmt.Errorf("failed to insert move history: %w", err)
		}

		if s.projectionAvailable {
			if err := s.upsertLocation(tx, boxID, toLoc); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return custom_error.WrapStorageError("move failed for "+boxID, err)
	}

	return nil
}

func (s *PostgresStore) upsertLocation(tx *goqu.TxDatabase, boxID, toLoc string) error {
	update := goqu.Record{s.cfg.BoxesLocColumn: toLoc}
	if s.hasUpdatedAt {
		update["updated_at"] = goqu.L("NOW()")
	}

	_, err := tx.Insert(s.cfg.BoxesTable).
		Rows(goqu.Record{
			s.cfg.BoxesIDColumn:  boxID,
			s.cfg.BoxesLocColumn: toLoc,
		}).
		OnConflict(goqu.DoUpdate(s.cfg.BoxesIDColumn, update)).
		Executor().
		Exec()
	if err != nil {
		return fmt.Errorf("failed to upsert current location: %w", err)
	}

	return nil
}

func (s *PostgresStore) DistinctLocations(limit int) ([]string, error) {
	limit = clampLimit(limit, DefaultLocationsLimit, MaxQueryLimit)

	var locations []string
	err := s.goquD.From(s.cfg.BoxesTable).
		Select(goqu.C(s.cfg.BoxesLocColumn)).
		Distinct().
		Where(
			goqu.C(s.cfg.BoxesLocColumn).IsNotNull(),
			goqu.C(s.cfg.BoxesLocColumn).Neq(""),
		).
		Order(goqu.C(s.cfg.BoxesLocColumn).Asc()).
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

func (s *PostgresStore) FindByID(boxID string) (*models.Box, error) {
	var box models.Box
	found, err := s.boxDataset().
		Where(goqu.Ex{s.cfg.BoxesIDColumn: boxID}).
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

func (s *PostgresStore) Search(idSubstring, locationPrefix string, limit int) ([]models.Box, error) {
	limit = clampLimit(limit, DefaultSearchLimit, MaxQueryLimit)

	query := s.boxDataset()
	if idSubstring != "" {
		query = query.Where(goqu.C(s.cfg.BoxesIDColumn).Like("%" + idSubstring + "%"))
	}
	if locationPrefix != "" {
		query = query.Where(goqu.C(s.cfg.BoxesLocColumn).Like(locationPrefix + "%"))
	}
	query = query.
		Order(
			goqu.L("COALESCE(updated_at, created_at)").Desc(),
			goqu.C(s.cfg.BoxesIDColumn).Desc(),
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

func (s *PostgresStore) FindByPrefix(prefix string) ([]models.Box, error) {
	var boxes []models.Box
	err := s.boxDataset().
		Where(goqu.C(s.cfg.BoxesIDColumn).Like(prefix + "%")).
		Order(goqu.C(s.cfg.BoxesIDColumn).Asc()).
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

func (s *PostgresStore) BoxIDsByPrefix(prefix string) ([]string, error) {
	var ids []string
	err := s.goquD.From(s.cfg.BoxesTable).
		Select(goqu.C(s.cfg.BoxesIDColumn)).
		Where(goqu.C(s.cfg.BoxesIDColumn).Like(prefix + "%")).
		Order(goqu.C(s.cfg.BoxesIDColumn).Asc()).
		Executor().
		ScanVals(&ids)
	if err != nil {
		return nil, custom_error.WrapStorageError("failed to scan box ids", err)
	}

	return ids, nil
}

func (s *PostgresStore) RecordScan(scan models.ScanRequest) error {
	if scan.BoxID == "" || scan.Location == "" {
		return custom_error.NewValidationError("boxid and location are required")
	}

	_, err := s.goquD.Insert("box_moves").
		Rows(goqu.Record{
			"box_id":    scan.BoxID,
			"location":  scan.Location,
			"operator":  nullable(scan.Operator),
			"warehouse": nullable(scan.Warehouse),
		}).
		Executor().
		Exec()
	if err != nil {
		return custom_error.WrapStorageError("failed to record scan", err)
	}

	return nil
}

func (s *PostgresStore) RecentScans(boxID string, limit int) ([]models.ScanEvent, error) {
	limit = clampLimit(limit, DefaultScansLimit, MaxScansLimit)

	query := s.goquD.From("box_moves").
		Select(
			goqu.C("id").As("Id"),
			goqu.C("box_id").As("BoxID"),
			goqu.C("location").As("Location"),
			goqu.C("operator").As("Operator"),
			goqu.C("warehouse").As("Warehouse"),
			goqu.C("created_at").As("CreatedAt"),
		)
	if boxID != "" {
		query = query.Where(goqu.Ex{"box_id": boxID})
	}
	query = query.Order(goqu.C("id").Desc()).Limit(uint(limit))

	var scans []models.ScanEvent
	if err := query.Executor().ScanStructs(&scans); err != nil {
		return nil, custom_error.WrapStorageError("failed to read scans", err)
	}
	if scans == nil {
		scans = []models.ScanEvent{}
	}

	return scans, nil
}

func (s *PostgresStore) boxDataset() *goqu.SelectDataset {
	return s.goquD.From(s.cfg.BoxesTable).
		Select(
			goqu.C(s.cfg.BoxesIDColumn).As("BoxID"),
			goqu.C("item_code").As("ItemCode"),
			goqu.C("qty").As("Qty"),
			goqu.C(s.cfg.BoxesLocColumn).As("Location"),
			goqu.COALESCE(goqu.C("status"), goqu.V("OK")).As("Status"),
			goqu.COALESCE(goqu.C("updated_at"), goqu.C("created_at")).As("UpdatedAt"),
		)
}
