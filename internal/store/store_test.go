package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(t.TempDir())
	require.NoError(t, err)
	return st
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestClockFirstAccessCreatesEpoch(t *testing.T) {
	st := newTestStore(t)

	now, err := st.CurrentTime()
	require.NoError(t, err)
	assert.Equal(t, Epoch, now)

	// The file must exist after first access.
	_, err = os.Stat(filepath.Join(st.DataDir(), "current_time.json"))
	assert.NoError(t, err)
}

func TestClockRoundTrip(t *testing.T) {
	st := newTestStore(t)

	want := time.Date(2024, time.July, 15, 13, 30, 0, 0, time.UTC)
	require.NoError(t, st.SaveCurrentTime(want))

	got, err := st.CurrentTime()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestClockMalformedDegradesToEpoch(t *testing.T) {
	st := newTestStore(t)
	path := filepath.Join(st.DataDir(), "current_time.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	got, err := st.CurrentTime()
	require.NoError(t, err)
	assert.Equal(t, Epoch, got)
}

func TestAccountsMissingAndMalformed(t *testing.T) {
	st := newTestStore(t)

	accounts, err := st.LoadAccounts()
	require.NoError(t, err)
	assert.Empty(t, accounts)

	path := filepath.Join(st.DataDir(), "all_account.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"oops": true}`), 0o644))

	accounts, err = st.LoadAccounts()
	require.NoError(t, err)
	assert.Empty(t, accounts)
}

func TestAccountsRoundTrip(t *testing.T) {
	st := newTestStore(t)

	want := []Account{
		{MeterID: "M001", Area: "north", Dwelling: "apartment", RegisterTime: "2024-05-01T00:00:00"},
		{MeterID: "M002", Area: "south", Dwelling: "house", RegisterTime: "2024-05-02T10:00:00"},
	}
	require.NoError(t, st.SaveAccounts(want))

	got, err := st.LoadAccounts()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestDailyRecordPathAndOverwrite(t *testing.T) {
	st := newTestStore(t)
	d := day(2024, time.May, 1)

	assert.Equal(t,
		filepath.Join(st.DataDir(), "daily_readings", "202405", "readings_20240501.json"),
		st.DailyPath(d))

	first := DailyRecord{"M001": {Date: "2024-05-01", Readings: []ReadingPoint{{Time: "01:30", Value: 1}}}}
	require.NoError(t, st.WriteDaily(d, first))

	second := DailyRecord{"M002": {Date: "2024-05-01", Readings: []ReadingPoint{{Time: "02:00", Value: 2}}}}
	require.NoError(t, st.WriteDaily(d, second))

	got, ok, err := st.LoadDaily(d)
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotContains(t, got, "M001", "daily write replaces, not merges")
	assert.Contains(t, got, "M002")
}

func TestMonthFilesSortedByDate(t *testing.T) {
	st := newTestStore(t)

	record := DailyRecord{"M001": {Date: "x", Readings: nil}}
	require.NoError(t, st.WriteDaily(day(2024, time.May, 20), record))
	require.NoError(t, st.WriteDaily(day(2024, time.May, 3), record))
	require.NoError(t, st.WriteDaily(day(2024, time.May, 11), record))

	paths, err := st.MonthFiles(day(2024, time.May, 1))
	require.NoError(t, err)
	require.Len(t, paths, 3)
	assert.Contains(t, paths[0], "readings_20240503.json")
	assert.Contains(t, paths[1], "readings_20240511.json")
	assert.Contains(t, paths[2], "readings_20240520.json")

	paths, err = st.MonthFiles(day(2024, time.June, 1))
	require.NoError(t, err)
	assert.Empty(t, paths)
}

func TestPruneDailyBefore(t *testing.T) {
	st := newTestStore(t)

	record := DailyRecord{"M001": {Date: "x", Readings: nil}}
	require.NoError(t, st.WriteDaily(day(2024, time.May, 1), record))
	require.NoError(t, st.WriteDaily(day(2024, time.June, 1), record))
	require.NoError(t, st.WriteDaily(day(2024, time.July, 1), record))

	// A directory that does not parse as YYYYMM must be skipped.
	junk := filepath.Join(st.DataDir(), "daily_readings", "notamonth")
	require.NoError(t, os.MkdirAll(junk, 0o755))

	require.NoError(t, st.PruneDailyBefore(day(2024, time.July, 1)))

	_, err := os.Stat(st.MonthDir(day(2024, time.May, 1)))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(st.MonthDir(day(2024, time.June, 1)))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(st.MonthDir(day(2024, time.July, 1)))
	assert.NoError(t, err)
	_, err = os.Stat(junk)
	assert.NoError(t, err)
}

func TestMonthlyTotalsMissingFile(t *testing.T) {
	st := newTestStore(t)

	totals, err := st.LoadMonthlyTotals()
	require.NoError(t, err)
	assert.Empty(t, totals)
}

func TestResetClearsEverything(t *testing.T) {
	st := newTestStore(t)

	require.NoError(t, st.SaveAccounts([]Account{{MeterID: "M001"}}))
	require.NoError(t, st.SaveCurrentTime(day(2024, time.August, 1)))
	require.NoError(t, st.WriteDaily(day(2024, time.May, 1), DailyRecord{"M001": {Date: "2024-05-01"}}))
	require.NoError(t, st.SaveMonthlyTotals(MonthlyTotals{"M001": {"2024-05": 1}}))

	require.NoError(t, st.Reset())

	accounts, err := st.LoadAccounts()
	require.NoError(t, err)
	assert.Empty(t, accounts)

	now, err := st.CurrentTime()
	require.NoError(t, err)
	assert.Equal(t, Epoch, now)

	_, ok, err := st.LoadDaily(day(2024, time.May, 1))
	require.NoError(t, err)
	assert.False(t, ok)

	totals, err := st.LoadMonthlyTotals()
	require.NoError(t, err)
	assert.Empty(t, totals)
}
