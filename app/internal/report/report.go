package report

import (
	"errors"
	"log"
	"time"

	"storemon/app/internal/artifact"
	"storemon/app/internal/database"
	"storemon/app/internal/models"
	"storemon/app/internal/uptime"

	"github.com/google/uuid"
)

// DefaultTimezone is used for stores with no timezone row.
const DefaultTimezone = "America/Chicago"

// ErrNoObservations means a report was triggered against an empty
// observation store, so no reference instant exists.
var ErrNoObservations = errors.New("no status observations ingested")

// Generator owns the report-job lifecycle: it creates job rows, runs the
// per-store computation in the background and writes the CSV artifact.
type Generator struct {
	db        *database.Store
	artifacts *artifact.Store
}

// NewGenerator wires a generator to its stores
func NewGenerator(db *database.Store, artifacts *artifact.Store) *Generator {
	return &Generator{db: db, artifacts: artifacts}
}

// Trigger allocates a job, persists it as Running and starts the
// computation in the background. The returned id is already durable:
// polling it immediately cannot miss the row.
func (g *Generator) Trigger() (string, error) {
	id := uuid.NewString()
	if err := g.db.CreateReport(id); err != nil {
		return "", err
	}
	go g.run(id)
	return id, nil
}

// Status returns a job's persisted state. found is false for ids that
// were never triggered.
func (g *Generator) Status(id string) (status string, found bool, err error) {
	return g.db.ReportStatus(id)
}

// run computes one report end to end. Every failure is absorbed here and
// recorded as the job's terminal Error state; the trigger caller has
// already returned and never sees it.
func (g *Generator) run(id string) {
	log.Printf("report %s: generation started", id)

	rows, err := g.Build()
	if err == nil {
		err = g.artifacts.Write(id, rows)
	}
	if err != nil {
		log.Printf("report %s: generation failed: %v", id, err)
		if serr := g.db.SetReportStatus(id, models.ReportError); serr != nil {
			log.Printf("report %s: failed to record error state: %v", id, serr)
		}
		return
	}

	if err := g.db.SetReportStatus(id, models.ReportComplete); err != nil {
		log.Printf("report %s: failed to record completion: %v", id, err)
		return
	}
	log.Printf("report %s: generated %d rows", id, len(rows))
}

// Build computes the report rows for every known store.
//
// The dataset has no live clock, so "now" is the newest poll timestamp
// across all stores, computed once and shared by every store and window
// so the whole report describes one consistent instant.
func (g *Generator) Build() ([]models.ReportRow, error) {
	now, ok, err := g.db.MaxObservationTime()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNoObservations
	}

	storeIDs, err := g.db.DistinctStoreIDs()
	if err != nil {
		return nil, err
	}

	rows := make([]models.ReportRow, 0, len(storeIDs))
	for _, storeID := range storeIDs {
		row, err := g.buildStore(storeID, now)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// buildStore computes one store's six metrics: uptime and downtime over
// the trailing hour, day and week.
func (g *Generator) buildStore(storeID int64, now time.Time) (models.ReportRow, error) {
	tzStr, err := g.db.TimezoneFor(storeID)
	if err != nil {
		return models.ReportRow{}, err
	}
	if tzStr == "" {
		tzStr = DefaultTimezone
	}
	loc, err := time.LoadLocation(tzStr)
	if err != nil {
		return models.ReportRow{}, err
	}

	rules, err := g.db.BusinessHoursFor(storeID)
	if err != nil {
		return models.ReportRow{}, err
	}

	row := models.ReportRow{StoreID: storeID}
	windows := []struct {
		span time.Duration
		up   *float64
		down *float64
	}{
		{time.Hour, &row.UptimeLastHour, &row.DowntimeLastHour},
		{24 * time.Hour, &row.UptimeLastDay, &row.DowntimeLastDay},
		{7 * 24 * time.Hour, &row.UptimeLastWeek, &row.DowntimeLastWeek},
	}

	for _, w := range windows {
		start := now.Add(-w.span)
		obs, err := g.db.ObservationsBetween(storeID, start, now)
		if err != nil {
			return models.ReportRow{}, err
		}
		up, down, err := uptime.Compute(obs, rules, loc, start, now)
		if err != nil {
			return models.ReportRow{}, err
		}
		*w.up = uptime.Round2(up)
		*w.down = uptime.Round2(down)
	}

	return row, nil
}
