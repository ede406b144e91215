// Package ingest bulk-loads the source CSV feeds into the database.
// Each file loads in a single transaction: a bad row rolls the whole
// file back and leaves previously ingested data untouched.
package ingest

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"storemon/app/internal/database"
	"storemon/app/internal/models"
)

// Source CSV file names inside the data directory.
const (
	StatusFile        = "store_status.csv"
	BusinessHoursFile = "business_hours.csv"
	TimezoneFile      = "timezones.csv"
)

// Accepted timestamp layouts for the status feed.
var timestampLayouts = []string{
	"2006-01-02 15:04:05.999999999 UTC",
	"2006-01-02 15:04:05 UTC",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// LoadAll ingests all three feeds from dataDir. Missing files are
// skipped; a malformed file is an error.
func LoadAll(db *database.Store, dataDir string) error {
	if err := loadFile(db, filepath.Join(dataDir, StatusFile), loadStatusRow); err != nil {
		return err
	}
	if err := loadFile(db, filepath.Join(dataDir, BusinessHoursFile), loadBusinessHoursRow); err != nil {
		return err
	}
	return loadFile(db, filepath.Join(dataDir, TimezoneFile), loadTimezoneRow)
}

// rowLoader ingests one record given the file's header-to-index map.
type rowLoader func(tx *sql.Tx, cols map[string]int, rec []string) error

func loadFile(db *database.Store, path string, load rowLoader) error {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		log.Printf("ingest: %s not found, skipping", path)
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return fmt.Errorf("%s: reading header: %w", path, err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}

	n := 0
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("%s: row %d: %w", path, n+1, err)
		}
		if err := load(tx, cols, rec); err != nil {
			tx.Rollback()
			return fmt.Errorf("%s: row %d: %w", path, n+1, err)
		}
		n++
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	log.Printf("ingest: loaded %d rows from %s", n, path)
	return nil
}

func loadStatusRow(tx *sql.Tx, cols map[string]int, rec []string) error {
	storeID, err := field(cols, rec, "store_id")
	if err != nil {
		return err
	}
	id, err := strconv.ParseInt(storeID, 10, 64)
	if err != nil {
		return err
	}
	status, err := field(cols, rec, "status")
	if err != nil {
		return err
	}
	tsStr, err := field(cols, rec, "timestamp_utc")
	if err != nil {
		return err
	}
	ts, err := parseTimestamp(tsStr)
	if err != nil {
		return err
	}
	return database.UpsertStatus(tx, id, ts, strings.TrimSpace(status))
}

func loadBusinessHoursRow(tx *sql.Tx, cols map[string]int, rec []string) error {
	storeID, err := field(cols, rec, "store_id")
	if err != nil {
		return err
	}
	id, err := strconv.ParseInt(storeID, 10, 64)
	if err != nil {
		return err
	}

	// The feed has shipped this column as both "day" and "dayOfWeek".
	day, err := field(cols, rec, "day")
	if err != nil {
		day, err = field(cols, rec, "dayOfWeek")
	}
	if err != nil {
		return err
	}
	dow, err := strconv.Atoi(strings.TrimSpace(day))
	if err != nil {
		return err
	}
	if dow < 0 || dow > 6 {
		return fmt.Errorf("day_of_week %d out of range", dow)
	}

	start, err := field(cols, rec, "start_time_local")
	if err != nil {
		return err
	}
	end, err := field(cols, rec, "end_time_local")
	if err != nil {
		return err
	}

	return database.UpsertBusinessHours(tx, models.BusinessHoursRule{
		StoreID:        id,
		DayOfWeek:      dow,
		StartTimeLocal: strings.TrimSpace(start),
		EndTimeLocal:   strings.TrimSpace(end),
	})
}

func loadTimezoneRow(tx *sql.Tx, cols map[string]int, rec []string) error {
	storeID, err := field(cols, rec, "store_id")
	if err != nil {
		return err
	}
	id, err := strconv.ParseInt(storeID, 10, 64)
	if err != nil {
		return err
	}
	tz, err := field(cols, rec, "timezone_str")
	if err != nil {
		return err
	}
	return database.UpsertTimezone(tx, id, strings.TrimSpace(tz))
}

func field(cols map[string]int, rec []string, name string) (string, error) {
	i, ok := cols[name]
	if !ok || i >= len(rec) {
		return "", fmt.Errorf("missing column %q", name)
	}
	return rec[i], nil
}

func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
