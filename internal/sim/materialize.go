package sim

import (
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"metersim/internal/store"
)

// flushDaily materializes the pending buffer into the daily record for
// the given date, then clears the buffer. An empty buffer is a no-op
// with no I/O. A record already on disk for the same day is replaced,
// not merged; the walk structure guarantees each day flushes once per
// run.
func (e *Engine) flushDaily(date time.Time) error {
	if len(e.pending) == 0 {
		return nil
	}

	record := store.DailyRecord{}
	for _, r := range e.pending {
		series, ok := record[r.MeterID]
		if !ok {
			series = store.DaySeries{Date: date.Format(store.DateLayout)}
		}
		series.Readings = append(series.Readings, store.ReadingPoint{
			Time:  r.ReadingTime.Format(store.ClockLayout),
			Value: round3(r.MeterValue),
		})
		record[r.MeterID] = series
	}

	for meterID, series := range record {
		sort.SliceStable(series.Readings, func(i, j int) bool {
			return series.Readings[i].Time < series.Readings[j].Time
		})
		record[meterID] = series
	}

	if err := e.store.WriteDaily(date, record); err != nil {
		return err
	}

	e.log.WithFields(logrus.Fields{
		"date":     date.Format(store.DateLayout),
		"meters":   len(record),
		"readings": len(e.pending),
	}).Debug("daily record written")

	e.pending = e.pending[:0]
	return nil
}
