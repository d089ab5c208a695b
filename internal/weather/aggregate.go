package weather

import (
	"math"
	"sort"
	"time"
)

const day = 24 * time.Hour

// PopularCities groups records by case-folded city and ranks them by count.
// Ties keep the order in which each city first appears in records, so callers
// passing the newest-first log get the most recently searched city first.
func PopularCities(records []SearchRecord, topN int) []PopularCity {
	if topN <= 0 {
		topN = DefaultTopCities
	}

	index := make(map[string]int)
	ranked := make([]PopularCity, 0)
	for _, r := range records {
		key := r.CityKey()
		if i, ok := index[key]; ok {
			ranked[i].SearchCount++
			continue
		}
		index[key] = len(ranked)
		ranked = append(ranked, PopularCity{City: key, SearchCount: 1})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].SearchCount > ranked[j].SearchCount
	})

	if len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked
}

// ComputeStats derives summary statistics over the retained window only.
// records must be ordered newest-first, as returned by HistoryStore.All.
// The per-day average divides by the age of the oldest retained record, so it
// drifts from a lifetime average once eviction has dropped older searches.
func ComputeStats(records []SearchRecord, now time.Time) Stats {
	total := len(records)
	if total == 0 {
		return Stats{}
	}

	unique := make(map[string]struct{}, total)
	cutoff := now.Add(-day)
	recent := 0
	for _, r := range records {
		unique[r.CityKey()] = struct{}{}
		if r.Timestamp.After(cutoff) {
			recent++
		}
	}

	oldest := records[total-1].Timestamp
	return Stats{
		TotalSearches:         total,
		UniqueCities:          len(unique),
		SearchesLast24Hours:   recent,
		AverageSearchesPerDay: float64(total) / float64(max(1, daysSince(oldest, now))),
	}
}

// daysSince returns the ceiling of whole days between then and now.
func daysSince(then, now time.Time) int {
	elapsed := now.Sub(then)
	if elapsed < 0 {
		elapsed = -elapsed
	}
	return int(math.Ceil(float64(elapsed) / float64(day)))
}
