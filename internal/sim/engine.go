package sim

import (
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"

	"metersim/internal/store"
)

// blackout processing happens at hour 0; readings resume at hour 1.
const (
	readingInterval = 30 * time.Minute
	blackoutEndHour = 1
)

// Engine drives the simulation: it advances the clock, synthesizes
// readings and materializes daily and monthly records. One engine per
// process; collection runs must be serialized by the caller because the
// latest-value table and pending buffer carry state across steps
// without locking.
type Engine struct {
	store *store.Store
	log   *logrus.Logger
	rng   *rand.Rand

	// latest holds each meter's unrounded running total; pending holds
	// readings generated but not yet flushed to a daily record.
	latest  map[string]float64
	pending []store.Reading
}

// New builds an engine over the given store. A nil rng selects an
// entropy-seeded source; tests inject a fixed seed.
func New(st *store.Store, logger *logrus.Logger, rng *rand.Rand) *Engine {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Engine{
		store:  st,
		log:    logger,
		rng:    rng,
		latest: make(map[string]float64),
	}
}

// CurrentTime returns the persisted simulation time.
func (e *Engine) CurrentTime() (time.Time, error) {
	return e.store.CurrentTime()
}

// RegisterMeter appends a new account stamped with the current
// simulation time. The meter starts with a zero running total and a
// zero reading queued at registration time.
func (e *Engine) RegisterMeter(meterID, area, dwelling string) (store.Account, error) {
	accounts, err := e.store.LoadAccounts()
	if err != nil {
		return store.Account{}, err
	}
	for _, acc := range accounts {
		if acc.MeterID == meterID {
			return store.Account{}, ErrDuplicateMeter
		}
	}

	now, err := e.store.CurrentTime()
	if err != nil {
		return store.Account{}, err
	}

	account := store.Account{
		MeterID:      meterID,
		Area:         area,
		Dwelling:     dwelling,
		RegisterTime: now.Format(store.TimeLayout),
	}
	accounts = append(accounts, account)
	if err := e.store.SaveAccounts(accounts); err != nil {
		return store.Account{}, err
	}

	e.latest[meterID] = 0
	e.pending = append(e.pending, store.Reading{
		MeterID:     meterID,
		ReadingTime: now,
		MeterValue:  0,
	})

	e.log.WithFields(logrus.Fields{
		"meter_id": meterID,
		"area":     area,
		"dwelling": dwelling,
	}).Info("meter registered")

	return account, nil
}

// CollectResult summarizes one completed collection run.
type CollectResult struct {
	From    string          `json:"from"`
	To      string          `json:"to"`
	Count   int             `json:"readings_count"`
	Sample  []store.Reading `json:"sample_readings"`
	NewTime string          `json:"new_time"`
}

// Collect advances the clock by the given unit and amount, generating
// readings for every registered meter along the way. The clock is
// persisted only after the whole walk succeeds.
func (e *Engine) Collect(unit string, amount int) (CollectResult, error) {
	accounts, err := e.store.LoadAccounts()
	if err != nil {
		return CollectResult{}, err
	}
	if len(accounts) == 0 {
		return CollectResult{}, ErrNoAccounts
	}

	current, err := e.store.CurrentTime()
	if err != nil {
		return CollectResult{}, err
	}
	next, err := Advance(current, unit, amount)
	if err != nil {
		return CollectResult{}, err
	}

	e.log.WithFields(logrus.Fields{
		"from":   current.Format(store.TimeLayout),
		"to":     next.Format(store.TimeLayout),
		"unit":   unit,
		"amount": amount,
	}).Info("collecting readings")

	var all []store.Reading
	if next.Sub(current) <= 24*time.Hour {
		all, err = e.generateWindow(current, next, accounts)
		if err != nil {
			return CollectResult{}, err
		}
	} else {
		// Day-by-day decomposition keeps each walk bounded however
		// large the requested span is.
		for windowStart := current; windowStart.Before(next); windowStart = windowStart.Add(24 * time.Hour) {
			windowEnd := windowStart.Add(24 * time.Hour)
			if windowEnd.After(next) {
				windowEnd = next
			}
			readings, err := e.generateWindow(windowStart, windowEnd, accounts)
			if err != nil {
				return CollectResult{}, err
			}
			all = append(all, readings...)
		}
	}

	if err := e.store.SaveCurrentTime(next); err != nil {
		return CollectResult{}, err
	}

	sample := all
	if len(sample) > 3 {
		sample = sample[:3]
	}
	return CollectResult{
		From:    current.Format(store.TimeLayout),
		To:      next.Format(store.TimeLayout),
		Count:   len(all),
		Sample:  sample,
		NewTime: next.Format(store.TimeLayout),
	}, nil
}

// generateWindow walks a single window of at most 24 hours at the
// 30-minute cadence. The cursor starts at the top of the window's hour;
// hour 0 is the maintenance blackout, where the just-ended day is
// materialized and, on the first of a month, the monthly archive runs.
func (e *Engine) generateWindow(start, end time.Time, accounts []store.Account) ([]store.Reading, error) {
	var out []store.Reading
	cursor := start.Truncate(time.Hour)

	for !cursor.After(end) {
		if cursor.Hour() == 0 {
			justEnded := cursor.Add(-time.Minute)
			if !dayOf(justEnded).Before(store.Epoch) {
				if err := e.flushDaily(justEnded); err != nil {
					return nil, err
				}
			}
			if cursor.Day() == 1 {
				if err := e.archiveMonth(cursor); err != nil {
					return nil, err
				}
			}
			cursor = time.Date(cursor.Year(), cursor.Month(), cursor.Day(), blackoutEndHour, 0, 0, 0, cursor.Location())
			continue
		}

		candidate := cursor.Add(readingInterval)
		if candidate.After(end) || candidate.Hour() == 0 {
			break
		}

		for _, acc := range accounts {
			value := e.latest[acc.MeterID] + e.rng.Float64()
			e.latest[acc.MeterID] = value
			reading := store.Reading{
				MeterID:     acc.MeterID,
				ReadingTime: candidate,
				MeterValue:  round3(value),
			}
			out = append(out, reading)
			e.pending = append(e.pending, reading)
		}
		cursor = candidate
	}

	// A window that ends mid-day never crosses a blackout, so flush
	// whatever accumulated, keyed to the buffer's last entry.
	if len(e.pending) > 0 {
		if err := e.flushDaily(e.pending[len(e.pending)-1].ReadingTime); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Reset clears all durable and in-memory state back to the epoch.
func (e *Engine) Reset() error {
	if err := e.store.Reset(); err != nil {
		e.log.WithError(err).Error("reset failed")
		return err
	}
	e.latest = make(map[string]float64)
	e.pending = nil
	e.log.Info("system reset to epoch")
	return nil
}

func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
