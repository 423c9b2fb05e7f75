package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Layouts shared by the durable files and the HTTP layer.
const (
	TimeLayout     = "2006-01-02T15:04:05"
	DateLayout     = "2006-01-02"
	ClockLayout    = "15:04"
	MonthDirLayout = "200601"
	MonthKeyLayout = "2006-01"
)

// Epoch is the simulation start; the clock is created at this value and
// no daily detail exists before it.
var Epoch = time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)

// Account is one registered meter.
type Account struct {
	MeterID      string `json:"meter_ID"`
	Area         string `json:"area"`
	Dwelling     string `json:"dwelling"`
	RegisterTime string `json:"register_time"`
}

// Reading is a single generated meter reading.
type Reading struct {
	MeterID     string    `json:"meter_ID"`
	ReadingTime time.Time `json:"reading_time"`
	MeterValue  float64   `json:"meter_value"`
}

// ReadingPoint is one (time-of-day, value) entry inside a daily record.
type ReadingPoint struct {
	Time  string  `json:"time"`
	Value float64 `json:"value"`
}

// DaySeries is one meter's ordered readings for a single day.
type DaySeries struct {
	Date     string         `json:"date"`
	Readings []ReadingPoint `json:"readings"`
}

// DailyRecord maps meter ID to that meter's series for one day.
type DailyRecord = map[string]DaySeries

// MonthlyTotals maps meter ID to per-month ("YYYY-MM") consumption.
type MonthlyTotals = map[string]map[string]float64

// Store provides access to the durable simulation state rooted at a
// single data directory.
type Store struct {
	dataDir      string
	accountsFile string
	clockFile    string
	dailyDir     string
	monthlyDir   string
	monthlyFile  string
}

// Open prepares the data directory tree and returns a Store.
func Open(dataDir string) (*Store, error) {
	s := &Store{
		dataDir:      dataDir,
		accountsFile: filepath.Join(dataDir, "all_account.json"),
		clockFile:    filepath.Join(dataDir, "current_time.json"),
		dailyDir:     filepath.Join(dataDir, "daily_readings"),
		monthlyDir:   filepath.Join(dataDir, "month_readings"),
	}
	s.monthlyFile = filepath.Join(s.monthlyDir, "month_readings.json")

	for _, dir := range []string{s.dataDir, s.dailyDir, s.monthlyDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return s, nil
}

// DataDir returns the root data directory.
func (s *Store) DataDir() string {
	return s.dataDir
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
