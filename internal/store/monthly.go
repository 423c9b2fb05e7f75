package store

import (
	"encoding/json"
	"os"
)

// LoadMonthlyTotals reads the running monthly totals. A missing file
// yields an empty map.
func (s *Store) LoadMonthlyTotals() (MonthlyTotals, error) {
	data, err := os.ReadFile(s.monthlyFile)
	if os.IsNotExist(err) {
		return MonthlyTotals{}, nil
	}
	if err != nil {
		return nil, err
	}

	var totals MonthlyTotals
	if err := json.Unmarshal(data, &totals); err != nil {
		return MonthlyTotals{}, nil
	}
	return totals, nil
}

// SaveMonthlyTotals writes the full monthly totals store.
func (s *Store) SaveMonthlyTotals(totals MonthlyTotals) error {
	return writeJSON(s.monthlyFile, totals)
}

// Reset clears all durable state: daily and monthly storage are removed
// and recreated, the account list is emptied and the clock returns to
// the epoch. Best effort; the first failure is returned without
// rollback.
func (s *Store) Reset() error {
	for _, dir := range []string{s.dailyDir, s.monthlyDir} {
		if err := os.RemoveAll(dir); err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	if err := s.SaveAccounts([]Account{}); err != nil {
		return err
	}
	return s.SaveCurrentTime(Epoch)
}
