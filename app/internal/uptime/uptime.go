// Package uptime estimates how long a store was up and down inside a
// time window from sparse status polls.
//
// Polls are treated as a step function: a store's status is assumed to
// hold from one poll until the next one that lands inside business
// hours. Polls outside business hours are skipped entirely and neither
// open nor close an interval.
package uptime

import (
	"fmt"
	"math"
	"time"

	"storemon/app/internal/models"
)

// fullDayRules is the synthetic 24/7 schedule used when a store has no
// stored business hours.
func fullDayRules(storeID int64) []models.BusinessHoursRule {
	rules := make([]models.BusinessHoursRule, 0, 7)
	for day := 0; day < 7; day++ {
		rules = append(rules, models.BusinessHoursRule{
			StoreID:        storeID,
			DayOfWeek:      day,
			StartTimeLocal: "00:00:00",
			EndTimeLocal:   "23:59:59",
		})
	}
	return rules
}

// localDay maps Go's Sunday-first weekday to the data's Monday=0 encoding
func localDay(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// secondsOfDay returns the wall-clock time of t as seconds since local
// midnight
func secondsOfDay(t time.Time) int {
	return t.Hour()*3600 + t.Minute()*60 + t.Second()
}

// parseClock parses a "15:04:05" local time into seconds since midnight
func parseClock(s string) (int, error) {
	t, err := time.Parse("15:04:05", s)
	if err != nil {
		return 0, fmt.Errorf("bad business-hours time %q: %w", s, err)
	}
	return secondsOfDay(t), nil
}

// qualifies reports whether the poll's local instant falls inside any of
// the store's open intervals for that day. Bounds are inclusive, and one
// matching rule is enough even when rules overlap.
func qualifies(local time.Time, rules []models.BusinessHoursRule) (bool, error) {
	day := localDay(local)
	secs := secondsOfDay(local)

	for _, r := range rules {
		if r.DayOfWeek != day {
			continue
		}
		start, err := parseClock(r.StartTimeLocal)
		if err != nil {
			return false, err
		}
		end, err := parseClock(r.EndTimeLocal)
		if err != nil {
			return false, err
		}
		if start <= secs && secs <= end {
			return true, nil
		}
	}
	return false, nil
}

// Compute walks a store's polls inside [windowStart, windowEnd] and
// returns the estimated uptime and downtime in hours.
//
// obs must be ascending by timestamp and already restricted to the
// window. Each gap between consecutive qualifying polls is attributed to
// the earlier poll's status, and the last qualifying poll is extended to
// windowEnd. With no qualifying polls both results are zero: no data
// earns no credit either way.
//
// Results keep full precision; round for presentation with Round2.
func Compute(obs []models.StatusObservation, rules []models.BusinessHoursRule, loc *time.Location, windowStart, windowEnd time.Time) (upHours, downHours float64, err error) {
	if len(rules) == 0 {
		var storeID int64
		if len(obs) > 0 {
			storeID = obs[0].StoreID
		}
		rules = fullDayRules(storeID)
	}

	var up, down time.Duration
	var lastStatus string
	var lastTS time.Time

	for _, o := range obs {
		ok, err := qualifies(o.Timestamp.In(loc), rules)
		if err != nil {
			return 0, 0, err
		}
		if !ok {
			continue
		}

		if lastStatus != "" {
			d := o.Timestamp.Sub(lastTS)
			if lastStatus == models.StatusActive {
				up += d
			} else {
				down += d
			}
		}
		lastStatus = o.Status
		lastTS = o.Timestamp
	}

	// The last qualifying poll holds until the window closes.
	if lastStatus != "" {
		d := windowEnd.Sub(lastTS)
		if lastStatus == models.StatusActive {
			up += d
		} else {
			down += d
		}
	}

	return up.Hours(), down.Hours(), nil
}

// Round2 rounds to 2 decimal places for presentation
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
