package database

import (
	"database/sql"
	"time"

	"storemon/app/internal/models"

	_ "modernc.org/sqlite"
)

// Store wraps the sqlite connection. Every operation takes the store
// explicitly; there is no package-level connection.
type Store struct {
	db *sql.DB
}

// Open opens the database at path and creates the schema
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// sqlite allows a single writer; one pooled connection also keeps
	// :memory: databases stable across calls.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.EnsureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying connection
func (s *Store) Close() error {
	return s.db.Close()
}

// EnsureSchema creates all necessary database tables
func (s *Store) EnsureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS store_status (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  store_id INTEGER NOT NULL,
  timestamp_utc INTEGER NOT NULL,
  status TEXT NOT NULL,
  UNIQUE(store_id, timestamp_utc)
);
CREATE INDEX IF NOT EXISTS idx_status_store ON store_status(store_id);
CREATE INDEX IF NOT EXISTS idx_status_ts ON store_status(timestamp_utc);

CREATE TABLE IF NOT EXISTS business_hours (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  store_id INTEGER NOT NULL,
  day_of_week INTEGER NOT NULL,
  start_time_local TEXT NOT NULL,
  end_time_local TEXT NOT NULL,
  UNIQUE(store_id, day_of_week, start_time_local)
);
CREATE INDEX IF NOT EXISTS idx_hours_store ON business_hours(store_id);

CREATE TABLE IF NOT EXISTS timezones (
  store_id INTEGER PRIMARY KEY,
  timezone_str TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS reports (
  id TEXT PRIMARY KEY,
  status TEXT NOT NULL,
  created_at TEXT NOT NULL DEFAULT (datetime('now'))
);
`)
	return err
}

// Begin starts a transaction for bulk ingestion
func (s *Store) Begin() (*sql.Tx, error) {
	return s.db.Begin()
}

// UpsertStatus records one status poll. Re-ingesting the same
// (store, timestamp) pair overwrites the status, last write wins.
func UpsertStatus(tx *sql.Tx, storeID int64, ts time.Time, status string) error {
	_, err := tx.Exec(`INSERT INTO store_status (store_id, timestamp_utc, status)
		VALUES (?, ?, ?)
		ON CONFLICT(store_id, timestamp_utc) DO UPDATE SET status=excluded.status`,
		storeID, ts.UTC().Unix(), status)
	return err
}

// UpsertBusinessHours records one open interval for a store's local day.
// A store may carry several intervals per day; the interval start keys
// the upsert so re-ingestion stays idempotent.
func UpsertBusinessHours(tx *sql.Tx, r models.BusinessHoursRule) error {
	_, err := tx.Exec(`INSERT INTO business_hours (store_id, day_of_week, start_time_local, end_time_local)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(store_id, day_of_week, start_time_local) DO UPDATE SET end_time_local=excluded.end_time_local`,
		r.StoreID, r.DayOfWeek, r.StartTimeLocal, r.EndTimeLocal)
	return err
}

// UpsertTimezone records a store's timezone, last write wins
func UpsertTimezone(tx *sql.Tx, storeID int64, tzStr string) error {
	_, err := tx.Exec(`INSERT INTO timezones (store_id, timezone_str)
		VALUES (?, ?)
		ON CONFLICT(store_id) DO UPDATE SET timezone_str=excluded.timezone_str`,
		storeID, tzStr)
	return err
}

// ObservationsBetween returns a store's polls with timestamp_utc in
// [from, to], ascending
func (s *Store) ObservationsBetween(storeID int64, from, to time.Time) ([]models.StatusObservation, error) {
	rows, err := s.db.Query(`SELECT store_id, timestamp_utc, status
		FROM store_status
		WHERE store_id = ? AND timestamp_utc BETWEEN ? AND ?
		ORDER BY timestamp_utc ASC`,
		storeID, from.UTC().Unix(), to.UTC().Unix())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.StatusObservation
	for rows.Next() {
		var o models.StatusObservation
		var ts int64
		if err := rows.Scan(&o.StoreID, &ts, &o.Status); err != nil {
			return nil, err
		}
		o.Timestamp = time.Unix(ts, 0).UTC()
		out = append(out, o)
	}
	return out, rows.Err()
}

// DistinctStoreIDs returns every store id with at least one poll
func (s *Store) DistinctStoreIDs() ([]int64, error) {
	rows, err := s.db.Query(`SELECT DISTINCT store_id FROM store_status ORDER BY store_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// MaxObservationTime returns the latest poll timestamp across all stores.
// ok is false when no polls exist at all.
func (s *Store) MaxObservationTime() (t time.Time, ok bool, err error) {
	var ts sql.NullInt64
	err = s.db.QueryRow(`SELECT MAX(timestamp_utc) FROM store_status`).Scan(&ts)
	if err != nil {
		return time.Time{}, false, err
	}
	if !ts.Valid {
		return time.Time{}, false, nil
	}
	return time.Unix(ts.Int64, 0).UTC(), true, nil
}

// BusinessHoursFor returns all stored open intervals for a store.
// An empty slice means the store has no rules (open 24/7).
func (s *Store) BusinessHoursFor(storeID int64) ([]models.BusinessHoursRule, error) {
	rows, err := s.db.Query(`SELECT store_id, day_of_week, start_time_local, end_time_local
		FROM business_hours WHERE store_id = ?
		ORDER BY day_of_week, start_time_local`, storeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.BusinessHoursRule
	for rows.Next() {
		var r models.BusinessHoursRule
		if err := rows.Scan(&r.StoreID, &r.DayOfWeek, &r.StartTimeLocal, &r.EndTimeLocal); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// TimezoneFor returns a store's timezone identifier, or "" when none is
// stored
func (s *Store) TimezoneFor(storeID int64) (string, error) {
	var tz string
	err := s.db.QueryRow(`SELECT timezone_str FROM timezones WHERE store_id = ?`, storeID).Scan(&tz)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return tz, nil
}

// CreateReport persists a new report job in the Running state. The row
// is committed before the caller learns the id, so a poll issued right
// after trigger never sees a missing job.
func (s *Store) CreateReport(id string) error {
	_, err := s.db.Exec(`INSERT INTO reports (id, status) VALUES (?, ?)`,
		id, models.ReportRunning)
	return err
}

// ReportStatus returns a job's status. found is false for unknown ids.
func (s *Store) ReportStatus(id string) (status string, found bool, err error) {
	err = s.db.QueryRow(`SELECT status FROM reports WHERE id = ?`, id).Scan(&status)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return status, true, nil
}

// SetReportStatus moves a job to a terminal state
func (s *Store) SetReportStatus(id, status string) error {
	_, err := s.db.Exec(`UPDATE reports SET status = ? WHERE id = ?`, status, id)
	return err
}
