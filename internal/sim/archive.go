package sim

import (
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"metersim/internal/store"
)

// archiveMonth runs when the walk crosses into the first day of a
// month. It totals the month two months back: that lag guarantees the
// archived month's trailing days were fully materialized before totals
// are computed. Consumption is last minus first reading across the
// month's daily records. Afterwards, daily detail older than the
// previous month is pruned.
func (e *Engine) archiveMonth(boundary time.Time) error {
	firstOfCurrent := time.Date(boundary.Year(), boundary.Month(), 1, 0, 0, 0, 0, boundary.Location())
	lastMonthFirst := firstOfCurrent.AddDate(0, -1, 0)
	monthToProcess := lastMonthFirst.AddDate(0, -1, 0)

	if monthToProcess.Before(store.Epoch) {
		return nil
	}

	files, err := e.store.MonthFiles(monthToProcess)
	if err != nil {
		return err
	}

	firstVals := make(map[string]float64)
	lastVals := make(map[string]float64)
	for _, path := range files {
		record, err := e.store.LoadDailyFile(path)
		if err != nil {
			return err
		}
		for meterID, series := range record {
			readings := append([]store.ReadingPoint(nil), series.Readings...)
			sort.SliceStable(readings, func(i, j int) bool {
				return readings[i].Time < readings[j].Time
			})
			if len(readings) == 0 {
				continue
			}
			if _, ok := firstVals[meterID]; !ok {
				firstVals[meterID] = readings[0].Value
			}
			lastVals[meterID] = readings[len(readings)-1].Value
		}
	}

	totals, err := e.store.LoadMonthlyTotals()
	if err != nil {
		return err
	}

	monthKey := monthToProcess.Format(store.MonthKeyLayout)
	archived := 0
	for meterID, first := range firstVals {
		last, ok := lastVals[meterID]
		if !ok {
			continue
		}
		if totals[meterID] == nil {
			totals[meterID] = make(map[string]float64)
		}
		totals[meterID][monthKey] = round3(last - first)
		archived++
	}

	if err := e.store.SaveMonthlyTotals(totals); err != nil {
		return err
	}

	e.log.WithFields(logrus.Fields{
		"month":  monthKey,
		"meters": archived,
	}).Info("monthly totals archived")

	return e.store.PruneDailyBefore(lastMonthFirst)
}
