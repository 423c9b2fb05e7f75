package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// MonthDir returns the per-month directory holding daily records for the
// given date, e.g. daily_readings/202405.
func (s *Store) MonthDir(date time.Time) string {
	return filepath.Join(s.dailyDir, date.Format(MonthDirLayout))
}

// DailyPath returns the record path for one day, e.g.
// daily_readings/202405/readings_20240501.json.
func (s *Store) DailyPath(date time.Time) string {
	return filepath.Join(s.MonthDir(date), fmt.Sprintf("readings_%s.json", date.Format("20060102")))
}

// WriteDaily persists one day's record, creating the month directory as
// needed. An existing record for the same day is overwritten.
func (s *Store) WriteDaily(date time.Time, record DailyRecord) error {
	return writeJSON(s.DailyPath(date), record)
}

// LoadDaily reads one day's record. The second return value reports
// whether a record exists for that day.
func (s *Store) LoadDaily(date time.Time) (DailyRecord, bool, error) {
	record, err := s.loadDailyFile(s.DailyPath(date))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return record, true, nil
}

// MonthFiles lists the daily record paths for a month in date order.
// A missing month directory yields an empty list.
func (s *Store) MonthFiles(month time.Time) ([]string, error) {
	dir := s.MonthDir(month)
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// LoadDailyFile reads a daily record from an explicit path, as returned
// by MonthFiles.
func (s *Store) LoadDailyFile(path string) (DailyRecord, error) {
	return s.loadDailyFile(path)
}

func (s *Store) loadDailyFile(path string) (DailyRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var record DailyRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return record, nil
}

// PruneDailyBefore deletes every month directory whose month starts
// before the boundary. Directory names that do not parse as YYYYMM are
// skipped.
func (s *Store) PruneDailyBefore(boundary time.Time) error {
	entries, err := os.ReadDir(s.dailyDir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		monthStart, err := time.ParseInLocation(MonthDirLayout, entry.Name(), time.UTC)
		if err != nil {
			continue
		}
		if monthStart.Before(boundary) {
			if err := os.RemoveAll(filepath.Join(s.dailyDir, entry.Name())); err != nil {
				return err
			}
		}
	}
	return nil
}
