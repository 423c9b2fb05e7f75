package query

import (
	"math"
	"sort"
)

// AreaSummary is one area's consumption rollup for a single month.
type AreaSummary struct {
	Area             string  `json:"area"`
	Month            string  `json:"month"`
	TotalConsumption float64 `json:"total_consumption"`
	MeterCount       int     `json:"meter_count"`
}

// AreaSummaries joins accounts with archived monthly totals and sums
// consumption per area for the given "YYYY-MM" key. Areas with no
// archived consumption for the month still appear with a zero total.
func (s *Service) AreaSummaries(monthKey string) ([]AreaSummary, error) {
	accounts, err := s.store.LoadAccounts()
	if err != nil {
		return nil, err
	}
	totals, err := s.store.LoadMonthlyTotals()
	if err != nil {
		return nil, err
	}

	byArea := make(map[string]*AreaSummary)
	for _, acc := range accounts {
		summary, ok := byArea[acc.Area]
		if !ok {
			summary = &AreaSummary{Area: acc.Area, Month: monthKey}
			byArea[acc.Area] = summary
		}
		summary.MeterCount++
		if months, ok := totals[acc.MeterID]; ok {
			summary.TotalConsumption += months[monthKey]
		}
	}

	out := make([]AreaSummary, 0, len(byArea))
	for _, summary := range byArea {
		summary.TotalConsumption = round3(summary.TotalConsumption)
		out = append(out, *summary)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Area < out[j].Area })
	return out, nil
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
