package artifact

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"

	"storemon/app/internal/models"
)

// Header is the fixed column order of every report CSV.
var Header = []string{
	"store_id",
	"uptime_last_hour", "uptime_last_day", "uptime_last_week",
	"downtime_last_hour", "downtime_last_day", "downtime_last_week",
}

// Store keeps one CSV per report id in a directory. Files are written to
// a temp name and renamed into place, so a file that exists is always a
// complete artifact.
type Store struct {
	dir string
}

// New creates the artifact directory if needed
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Store{dir: dir}, nil
}

// Path returns the on-disk location for a report id
func (s *Store) Path(id string) string {
	return filepath.Join(s.dir, id+".csv")
}

// Write stores the report rows for id, replacing any prior content
func (s *Store) Write(id string, rows []models.ReportRow) error {
	tmp, err := os.CreateTemp(s.dir, id+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(Header); err != nil {
		tmp.Close()
		return err
	}
	for _, r := range rows {
		rec := []string{
			strconv.FormatInt(r.StoreID, 10),
			formatHours(r.UptimeLastHour),
			formatHours(r.UptimeLastDay),
			formatHours(r.UptimeLastWeek),
			formatHours(r.DowntimeLastHour),
			formatHours(r.DowntimeLastDay),
			formatHours(r.DowntimeLastWeek),
		}
		if err := w.Write(rec); err != nil {
			tmp.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), s.Path(id))
}

// Exists reports whether a complete artifact is on disk for id
func (s *Store) Exists(id string) bool {
	info, err := os.Stat(s.Path(id))
	return err == nil && !info.IsDir()
}

// Read returns the artifact bytes for id
func (s *Store) Read(id string) ([]byte, error) {
	return os.ReadFile(s.Path(id))
}

func formatHours(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
