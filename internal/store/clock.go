package store

import (
	"encoding/json"
	"os"
	"time"
)

type clockFile struct {
	CurrentTime string `json:"current_time"`
}

// CurrentTime returns the persisted simulation time. On first access the
// clock file is created at the epoch. Malformed content degrades to the
// epoch rather than failing.
func (s *Store) CurrentTime() (time.Time, error) {
	data, err := os.ReadFile(s.clockFile)
	if os.IsNotExist(err) {
		if err := s.SaveCurrentTime(Epoch); err != nil {
			return time.Time{}, err
		}
		return Epoch, nil
	}
	if err != nil {
		return time.Time{}, err
	}

	var cf clockFile
	if err := json.Unmarshal(data, &cf); err != nil {
		return Epoch, nil
	}
	t, err := time.ParseInLocation(TimeLayout, cf.CurrentTime, time.UTC)
	if err != nil {
		return Epoch, nil
	}
	return t, nil
}

// SaveCurrentTime persists the simulation time.
func (s *Store) SaveCurrentTime(t time.Time) error {
	return writeJSON(s.clockFile, clockFile{CurrentTime: t.Format(TimeLayout)})
}
