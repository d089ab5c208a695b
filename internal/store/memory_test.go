package store

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

func record(id int64, city string) weather.SearchRecord {
	return weather.SearchRecord{
		ID:        id,
		City:      city,
		Timestamp: time.Unix(id, 0).UTC(),
		Weather:   weather.WeatherSnapshot{Temperature: 20, Description: "clear sky", Humidity: 50, WindSpeed: 2},
		ClientTag: "test",
	}
}

func ids(records []weather.SearchRecord) []int64 {
	out := make([]int64, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func TestAppendIsNewestFirst(t *testing.T) {
	s := NewMemoryStore(10)
	s.Append(record(1, "Paris"))
	s.Append(record(2, "Berlin"))
	s.Append(record(3, "Rome"))

	assert.Equal(t, []int64{3, 2, 1}, ids(s.All()))
	assert.Equal(t, 3, s.Len())
}

func TestAppendEvictsOldestBeyondCapacity(t *testing.T) {
	s := NewMemoryStore(weather.MaxHistory)
	for i := 1; i <= 250; i++ {
		s.Append(record(int64(i), fmt.Sprintf("city-%d", i)))
	}

	all := s.All()
	require.Len(t, all, weather.MaxHistory)
	assert.Equal(t, int64(250), all[0].ID)
	assert.Equal(t, int64(151), all[len(all)-1].ID)
	for i := 1; i < len(all); i++ {
		assert.Greater(t, all[i-1].ID, all[i].ID, "records must stay newest-first")
	}
}

func TestNewMemoryStoreDefaultsCapacity(t *testing.T) {
	assert.Equal(t, weather.MaxHistory, NewMemoryStore(0).Cap())
	assert.Equal(t, weather.MaxHistory, NewMemoryStore(-5).Cap())
	assert.Equal(t, 3, NewMemoryStore(3).Cap())
}

func TestQueryCaseInsensitiveContains(t *testing.T) {
	s := NewMemoryStore(10)
	s.Append(record(1, "London"))
	s.Append(record(2, "Paris"))
	s.Append(record(3, "LONDON"))
	s.Append(record(4, "New London"))

	got, total := s.Query(weather.HistoryFilter{CityContains: "lon"})
	assert.Equal(t, 3, total)
	assert.Equal(t, []int64{4, 3, 1}, ids(got))

	upper, _ := s.Query(weather.HistoryFilter{CityContains: "LON"})
	assert.Equal(t, ids(got), ids(upper))
}

func TestQueryLimit(t *testing.T) {
	s := NewMemoryStore(50)
	for i := 1; i <= 30; i++ {
		s.Append(record(int64(i), "Oslo"))
	}

	got, total := s.Query(weather.HistoryFilter{})
	assert.Equal(t, 30, total)
	require.Len(t, got, weather.DefaultHistoryLimit)
	assert.Equal(t, int64(30), got[0].ID)

	got, _ = s.Query(weather.HistoryFilter{Limit: 3})
	assert.Equal(t, []int64{30, 29, 28}, ids(got))
}

func TestQueryNoMatchReturnsEmpty(t *testing.T) {
	s := NewMemoryStore(10)
	s.Append(record(1, "Madrid"))

	got, total := s.Query(weather.HistoryFilter{CityContains: "tokyo"})
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Zero(t, total)
}

func TestQueryDoesNotMutate(t *testing.T) {
	s := NewMemoryStore(10)
	s.Append(record(1, "Lima"))
	s.Append(record(2, "Quito"))

	got, _ := s.Query(weather.HistoryFilter{})
	got[0].City = "changed"

	assert.Equal(t, "Quito", s.All()[0].City)
}

func TestClearIsIdempotent(t *testing.T) {
	s := NewMemoryStore(5)
	for i := 1; i <= 7; i++ {
		s.Append(record(int64(i), "Cairo"))
	}

	s.Clear()
	assert.Empty(t, s.All())
	s.Clear()
	assert.Empty(t, s.All())
	assert.Zero(t, s.Len())

	s.Append(record(8, "Accra"))
	assert.Equal(t, []int64{8}, ids(s.All()))
}

func TestConcurrentAppendAndRead(t *testing.T) {
	s := NewMemoryStore(weather.MaxHistory)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				s.Append(record(int64(w*1000+i), "Lagos"))
				_ = s.All()
				_, _ = s.Query(weather.HistoryFilter{CityContains: "lag", Limit: 5})
			}
		}(w)
	}
	wg.Wait()

	assert.Equal(t, weather.MaxHistory, s.Len())
}
