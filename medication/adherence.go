package medication

import "github.com/Rullyopus4/IMO-MANTAP/model"

// AdherenceStats summarizes a patient's logged dose outcomes. A zero
// Total means there is no data yet, which callers must present as
// distinct from a genuine 0% rate.
type AdherenceStats struct {
	Rate   int `json:"rate" example:"67"`
	Taken  int `json:"taken" example:"2"`
	Missed int `json:"missed" example:"1"`
	Total  int `json:"total" example:"3"`
}

// HasData reports whether any records were aggregated.
func (s AdherenceStats) HasData() bool {
	return s.Total > 0
}

// Adherence computes the taken/total percentage over the given records,
// rounded half-up to the nearest integer. With no records the rate is 0
// and HasData reports false.
func Adherence(records []model.MedicationRecord) AdherenceStats {
	stats := AdherenceStats{Total: len(records)}
	if stats.Total == 0 {
		return stats
	}

	for _, record := range records {
		if record.Taken {
			stats.Taken++
		}
	}
	stats.Missed = stats.Total - stats.Taken
	stats.Rate = int(float64(stats.Taken)/float64(stats.Total)*100 + 0.5)
	return stats
}
