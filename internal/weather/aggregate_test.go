package weather

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var now = time.Date(2025, 8, 8, 12, 0, 0, 0, time.UTC)

// newestFirst builds records the way a HistoryStore returns them: the last
// argument is treated as the most recent search.
func newestFirst(cities ...string) []SearchRecord {
	out := make([]SearchRecord, len(cities))
	for i, c := range cities {
		out[len(cities)-1-i] = SearchRecord{ID: int64(i + 1), City: c, Timestamp: now}
	}
	return out
}

func TestPopularCitiesCountsAndOrders(t *testing.T) {
	got := PopularCities(newestFirst("A", "A", "B"), 10)
	assert.Equal(t, []PopularCity{{City: "a", SearchCount: 2}, {City: "b", SearchCount: 1}}, got)
}

func TestPopularCitiesFoldsCase(t *testing.T) {
	got := PopularCities(newestFirst("London", "LONDON", "london", "Paris"), 0)
	assert.Equal(t, []PopularCity{{City: "london", SearchCount: 3}, {City: "paris", SearchCount: 1}}, got)
}

func TestPopularCitiesTiesKeepLogOrder(t *testing.T) {
	// Log order (newest first) is C, B, A.
	got := PopularCities(newestFirst("A", "B", "C"), 10)
	assert.Equal(t, []string{"c", "b", "a"}, []string{got[0].City, got[1].City, got[2].City})
}

func TestPopularCitiesTopN(t *testing.T) {
	got := PopularCities(newestFirst("a", "b", "c", "d", "d"), 2)
	assert.Len(t, got, 2)
	assert.Equal(t, "d", got[0].City)
}

func TestPopularCitiesEmpty(t *testing.T) {
	got := PopularCities(nil, 10)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestComputeStatsEmpty(t *testing.T) {
	assert.Equal(t, Stats{}, ComputeStats(nil, now))
}

func TestComputeStats(t *testing.T) {
	records := []SearchRecord{
		{City: "Paris", Timestamp: now.Add(-time.Hour)},
		{City: "paris", Timestamp: now.Add(-23 * time.Hour)},
		{City: "Berlin", Timestamp: now.Add(-25 * time.Hour)},
		{City: "Rome", Timestamp: now.Add(-50 * time.Hour)},
	}

	got := ComputeStats(records, now)
	assert.Equal(t, 4, got.TotalSearches)
	assert.Equal(t, 3, got.UniqueCities)
	assert.Equal(t, 2, got.SearchesLast24Hours)
	// Oldest is 50h old: ceil(50/24) = 3 days.
	assert.InDelta(t, 4.0/3.0, got.AverageSearchesPerDay, 1e-9)
}

func TestComputeStatsSameDayDividesByOne(t *testing.T) {
	records := []SearchRecord{
		{City: "Oslo", Timestamp: now},
		{City: "Oslo", Timestamp: now},
	}
	got := ComputeStats(records, now)
	assert.Equal(t, 2.0, got.AverageSearchesPerDay)
}

func TestComputeStatsExcludesExactly24HoursOld(t *testing.T) {
	records := []SearchRecord{{City: "Lima", Timestamp: now.Add(-24 * time.Hour)}}
	got := ComputeStats(records, now)
	assert.Zero(t, got.SearchesLast24Hours)
	assert.Equal(t, 1.0, got.AverageSearchesPerDay)
}

func TestClockIDsStrictlyIncrease(t *testing.T) {
	fixed := func() time.Time { return now }
	ids := NewClockIDs(fixed)

	first := ids.Next()
	second := ids.Next()
	assert.Equal(t, now.UnixMilli(), first)
	assert.Equal(t, first+1, second)
}
