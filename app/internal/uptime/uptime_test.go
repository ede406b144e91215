package uptime

import (
	"math"
	"testing"
	"time"

	"storemon/app/internal/models"
)

// 2023-01-23 is a Monday.
var monday = time.Date(2023, 1, 23, 0, 0, 0, 0, time.UTC)

func obs(t time.Time, status string) models.StatusObservation {
	return models.StatusObservation{StoreID: 1, Timestamp: t, Status: status}
}

func rule(day int, start, end string) models.BusinessHoursRule {
	return models.BusinessHoursRule{StoreID: 1, DayOfWeek: day, StartTimeLocal: start, EndTimeLocal: end}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

// --------------- Compute: empty / single observation ---------------

func TestCompute_NoObservations(t *testing.T) {
	up, down, err := Compute(nil, nil, time.UTC, monday, monday.Add(time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if up != 0 || down != 0 {
		t.Errorf("expected (0, 0), got (%v, %v)", up, down)
	}
}

func TestCompute_SingleActive(t *testing.T) {
	start := monday
	end := monday.Add(time.Hour)
	at := monday.Add(15 * time.Minute)

	up, down, err := Compute([]models.StatusObservation{obs(at, models.StatusActive)}, nil, time.UTC, start, end)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(up, 0.75) {
		t.Errorf("uptime = %v, want 0.75", up)
	}
	if down != 0 {
		t.Errorf("downtime = %v, want 0", down)
	}
}

func TestCompute_SingleInactive(t *testing.T) {
	start := monday
	end := monday.Add(time.Hour)
	at := monday.Add(30 * time.Minute)

	up, down, err := Compute([]models.StatusObservation{obs(at, models.StatusInactive)}, nil, time.UTC, start, end)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if up != 0 {
		t.Errorf("uptime = %v, want 0", up)
	}
	if !almostEqual(down, 0.5) {
		t.Errorf("downtime = %v, want 0.5", down)
	}
}

// --------------- Compute: forward fill ---------------

func TestCompute_ForwardFill(t *testing.T) {
	start := monday
	end := monday.Add(time.Hour)
	observations := []models.StatusObservation{
		obs(monday.Add(10*time.Minute), models.StatusActive),
		obs(monday.Add(40*time.Minute), models.StatusInactive),
	}

	up, down, err := Compute(observations, nil, time.UTC, start, end)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// active holds 10m -> 40m, inactive holds 40m -> end
	if !almostEqual(up, 0.5) {
		t.Errorf("uptime = %v, want 0.5", up)
	}
	if !almostEqual(down, 1.0/3.0) {
		t.Errorf("downtime = %v, want %v", down, 1.0/3.0)
	}
}

func TestCompute_HalfHourSplit(t *testing.T) {
	// The worked example: inactive at t0, active at t0+30m, one-hour
	// window ending t0+60m, open 24/7 -> 0.50 up, 0.50 down.
	start := monday
	end := monday.Add(time.Hour)
	observations := []models.StatusObservation{
		obs(monday, models.StatusInactive),
		obs(monday.Add(30*time.Minute), models.StatusActive),
	}

	up, down, err := Compute(observations, nil, time.UTC, start, end)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if Round2(up) != 0.50 {
		t.Errorf("uptime = %v, want 0.50", Round2(up))
	}
	if Round2(down) != 0.50 {
		t.Errorf("downtime = %v, want 0.50", Round2(down))
	}
}

// --------------- Compute: business-hours qualification ---------------

func TestCompute_NonQualifyingSkipped(t *testing.T) {
	// Monday and Tuesday 09:00-17:00. A poll at Monday 18:00 falls
	// outside and must not break the chain between the two qualifying
	// polls around it.
	rules := []models.BusinessHoursRule{
		rule(0, "09:00:00", "17:00:00"),
		rule(1, "09:00:00", "17:00:00"),
	}
	start := monday
	end := monday.Add(48 * time.Hour)

	qualifyingOnly := []models.StatusObservation{
		obs(monday.Add(10*time.Hour), models.StatusActive),   // Mon 10:00
		obs(monday.Add(34*time.Hour), models.StatusInactive), // Tue 10:00
	}
	withNoise := []models.StatusObservation{
		qualifyingOnly[0],
		obs(monday.Add(18*time.Hour), models.StatusInactive), // Mon 18:00, outside hours
		qualifyingOnly[1],
	}

	up1, down1, err := Compute(qualifyingOnly, rules, time.UTC, start, end)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	up2, down2, err := Compute(withNoise, rules, time.UTC, start, end)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(up1, up2) || !almostEqual(down1, down2) {
		t.Errorf("noise changed the result: (%v, %v) vs (%v, %v)", up1, down1, up2, down2)
	}
}

func TestCompute_AllOutsideBusinessHours(t *testing.T) {
	rules := []models.BusinessHoursRule{rule(0, "09:00:00", "17:00:00")}
	observations := []models.StatusObservation{
		obs(monday.Add(2*time.Hour), models.StatusActive), // Mon 02:00
		obs(monday.Add(5*time.Hour), models.StatusActive), // Mon 05:00
	}

	up, down, err := Compute(observations, rules, time.UTC, monday, monday.Add(8*time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if up != 0 || down != 0 {
		t.Errorf("expected (0, 0) with no qualifying polls, got (%v, %v)", up, down)
	}
}

func TestCompute_InclusiveBounds(t *testing.T) {
	rules := []models.BusinessHoursRule{rule(0, "09:00:00", "17:00:00")}
	observations := []models.StatusObservation{
		obs(monday.Add(9*time.Hour), models.StatusActive),  // exactly 09:00:00
		obs(monday.Add(17*time.Hour), models.StatusActive), // exactly 17:00:00
	}

	up, _, err := Compute(observations, rules, time.UTC, monday, monday.Add(18*time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Both polls qualify: 8h between them plus 1h tail.
	if !almostEqual(up, 9) {
		t.Errorf("uptime = %v, want 9", up)
	}
}

func TestCompute_MultipleRulesSameDay(t *testing.T) {
	// Two disjoint intervals on Monday; a poll inside either qualifies.
	rules := []models.BusinessHoursRule{
		rule(0, "08:00:00", "12:00:00"),
		rule(0, "14:00:00", "18:00:00"),
	}
	observations := []models.StatusObservation{
		obs(monday.Add(9*time.Hour), models.StatusActive),  // first interval
		obs(monday.Add(15*time.Hour), models.StatusActive), // second interval
	}

	up, _, err := Compute(observations, rules, time.UTC, monday, monday.Add(16*time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(up, 7) {
		t.Errorf("uptime = %v, want 7", up)
	}
}

func TestCompute_DefaultMatchesExplicit247(t *testing.T) {
	explicit := make([]models.BusinessHoursRule, 0, 7)
	for d := 0; d < 7; d++ {
		explicit = append(explicit, rule(d, "00:00:00", "23:59:59"))
	}
	observations := []models.StatusObservation{
		obs(monday.Add(3*time.Hour), models.StatusActive),
		obs(monday.Add(12*time.Hour), models.StatusInactive),
	}
	start := monday
	end := monday.Add(24 * time.Hour)

	up1, down1, err := Compute(observations, nil, time.UTC, start, end)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	up2, down2, err := Compute(observations, explicit, time.UTC, start, end)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(up1, up2) || !almostEqual(down1, down2) {
		t.Errorf("default rules differ from explicit 24/7: (%v, %v) vs (%v, %v)", up1, down1, up2, down2)
	}
}

// --------------- Compute: timezone handling ---------------

func TestCompute_LocalDayShift(t *testing.T) {
	chicago, err := time.LoadLocation("America/Chicago")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}

	// 00:30 UTC Monday is 18:30 Sunday in Chicago. A Sunday-only
	// schedule must qualify it; a Monday-only one must not.
	at := monday.Add(30 * time.Minute)
	observations := []models.StatusObservation{obs(at, models.StatusActive)}
	end := monday.Add(time.Hour)

	up, _, err := Compute(observations, []models.BusinessHoursRule{rule(6, "00:00:00", "23:59:59")}, chicago, monday, end)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(up, 0.5) {
		t.Errorf("Sunday schedule should qualify the poll, uptime = %v", up)
	}

	up, _, err = Compute(observations, []models.BusinessHoursRule{rule(0, "00:00:00", "23:59:59")}, chicago, monday, end)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if up != 0 {
		t.Errorf("Monday schedule should not qualify the poll, uptime = %v", up)
	}
}

// --------------- Compute: malformed rules ---------------

func TestCompute_BadRuleTime(t *testing.T) {
	rules := []models.BusinessHoursRule{rule(0, "9am", "17:00:00")}
	observations := []models.StatusObservation{obs(monday.Add(10*time.Hour), models.StatusActive)}

	_, _, err := Compute(observations, rules, time.UTC, monday, monday.Add(time.Hour))
	if err == nil {
		t.Fatal("expected error for malformed rule time")
	}
}

// --------------- Round2 ---------------

func TestRound2(t *testing.T) {
	cases := []struct{ in, want float64 }{
		{0.5, 0.5},
		{1.0 / 3.0, 0.33},
		{2.0 / 3.0, 0.67},
		{0.005, 0.01},
		{0, 0},
	}
	for _, c := range cases {
		if got := Round2(c.in); got != c.want {
			t.Errorf("Round2(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}
