package query

import (
	"errors"
	"sort"
	"time"

	"metersim/internal/store"
)

// ErrUnknownRange reports a time_range value outside the supported set.
var ErrUnknownRange = errors.New("invalid time range")

// Service answers usage queries over materialized daily records.
type Service struct {
	store *store.Store
}

// New builds a query service over the given store.
func New(st *store.Store) *Service {
	return &Service{store: st}
}

// Row is one reading loaded from daily detail.
type Row struct {
	When  time.Time
	Value float64
}

// DateRange expands a named range into the calendar days it covers,
// relative to the simulation's current date.
func DateRange(timeRange string, now time.Time) ([]time.Time, error) {
	day := func(t time.Time) time.Time {
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	}

	switch timeRange {
	case "today":
		return []time.Time{day(now)}, nil
	case "last_7_days":
		dates := make([]time.Time, 0, 7)
		for i := 6; i >= 0; i-- {
			dates = append(dates, day(now).AddDate(0, 0, -i))
		}
		return dates, nil
	case "this_month":
		dates := make([]time.Time, 0, now.Day())
		for d := 1; d <= now.Day(); d++ {
			dates = append(dates, time.Date(now.Year(), now.Month(), d, 0, 0, 0, 0, now.Location()))
		}
		return dates, nil
	case "last_month":
		firstOfThis := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		lastMonthEnd := firstOfThis.AddDate(0, 0, -1)
		dates := make([]time.Time, 0, lastMonthEnd.Day())
		for d := 1; d <= lastMonthEnd.Day(); d++ {
			dates = append(dates, time.Date(lastMonthEnd.Year(), lastMonthEnd.Month(), d, 0, 0, 0, 0, now.Location()))
		}
		return dates, nil
	default:
		return nil, ErrUnknownRange
	}
}

// LoadMeterData collects one meter's readings across the given days.
// Days without a record, or records the meter does not appear in, are
// skipped.
func (s *Service) LoadMeterData(meterID string, dates []time.Time) ([]Row, error) {
	var rows []Row
	for _, date := range dates {
		record, ok, err := s.store.LoadDaily(date)
		if err != nil || !ok {
			continue
		}
		series, ok := record[meterID]
		if !ok {
			continue
		}
		for _, point := range series.Readings {
			when, err := time.ParseInLocation(
				store.DateLayout+" "+store.ClockLayout,
				series.Date+" "+point.Time,
				time.UTC,
			)
			if err != nil {
				continue
			}
			rows = append(rows, Row{When: when, Value: point.Value})
		}
	}
	return rows, nil
}

// UsageResult is the computed usage series for one meter and range.
type UsageResult struct {
	Labels       []string  `json:"dates"`
	Usage        []float64 `json:"usage"`
	TotalUsage   float64   `json:"total_usage"`
	AverageUsage float64   `json:"average_usage"`
}

// Usage turns raw cumulative readings into per-interval usage, grouped
// by half-hour label for the "today" range and by date otherwise.
// Negative diffs (meter resets) are clamped to zero.
func Usage(rows []Row, timeRange string) UsageResult {
	sort.Slice(rows, func(i, j int) bool { return rows[i].When.Before(rows[j].When) })

	grouped := make(map[string]float64)
	var labels []string
	prev := 0.0
	for i, row := range rows {
		usage := 0.0
		if i > 0 {
			usage = row.Value - prev
			if usage < 0 {
				usage = 0
			}
		}
		prev = row.Value

		var label string
		if timeRange == "today" {
			label = row.When.Format(store.ClockLayout)
		} else {
			label = row.When.Format(store.DateLayout)
		}
		if _, ok := grouped[label]; !ok {
			labels = append(labels, label)
		}
		grouped[label] += usage
	}
	sort.Strings(labels)

	result := UsageResult{Labels: labels, Usage: make([]float64, 0, len(labels))}
	total := 0.0
	for _, label := range labels {
		v := round3(grouped[label])
		result.Usage = append(result.Usage, v)
		total += v
	}
	result.TotalUsage = round3(total)
	if len(result.Usage) > 0 {
		result.AverageUsage = round3(total / float64(len(result.Usage)))
	}
	return result
}

// MeterExists reports whether the meter appears in recent daily detail:
// the last seven days first, then any record in the current month.
func (s *Service) MeterExists(meterID string, now time.Time) bool {
	for i := 0; i < 7; i++ {
		record, ok, err := s.store.LoadDaily(now.AddDate(0, 0, -i))
		if err != nil || !ok {
			continue
		}
		if _, ok := record[meterID]; ok {
			return true
		}
	}

	files, err := s.store.MonthFiles(now)
	if err != nil {
		return false
	}
	for _, path := range files {
		record, err := s.store.LoadDailyFile(path)
		if err != nil {
			continue
		}
		if _, ok := record[meterID]; ok {
			return true
		}
	}
	return false
}
