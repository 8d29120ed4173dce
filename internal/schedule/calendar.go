package schedule

import "time"

// Business-calendar arithmetic for cohort timelines. Dates are treated as
// local calendar days; there is no time-zone handling.

// BlockSpan is the slice of a cohort timeline one module block occupies,
// in 1-based business-day offsets from the cohort start.
type BlockSpan struct {
	StartDayOffset int
	DurationDays   int
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func isWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// NormalizeToBusinessDay advances a date day-by-day until it lands on a
// weekday. Idempotent on dates that are already business days.
func NormalizeToBusinessDay(t time.Time) time.Time {
	d := dateOnly(t)
	for isWeekend(d) {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

// AddBusinessDays advances exactly offset weekday increments from the
// normalized start; weekend days are skipped and do not count.
func AddBusinessDays(t time.Time, offset int) time.Time {
	d := NormalizeToBusinessDay(t)
	moved := 0
	for moved < offset {
		d = d.AddDate(0, 0, 1)
		if !isWeekend(d) {
			moved++
		}
	}
	return d
}

// TotalSpanDays is the number of business days a block sequence occupies:
// the max of start_day_offset + duration_days - 1, minimum 1 when empty.
func TotalSpanDays(blocks []BlockSpan) int {
	total := 1
	for _, b := range blocks {
		if end := b.StartDayOffset + b.DurationDays - 1; end > total {
			total = end
		}
	}
	return total
}

// CohortBusinessDates returns the ordered business-day dates a cohort
// occupies, starting from the normalized start date.
func CohortBusinessDates(start time.Time, blocks []BlockSpan) []time.Time {
	total := TotalSpanDays(blocks)
	dates := make([]time.Time, 0, total)
	for day := 0; day < total; day++ {
		dates = append(dates, AddBusinessDays(start, day))
	}
	return dates
}

// DateKey is the map key used for occupancy set intersection.
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}
