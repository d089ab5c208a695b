package weather_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-dashboard/internal/cache"
	"github.com/i474232898/weather-dashboard/internal/store"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

type fakeProvider struct {
	name    string
	calls   int
	err     error
	known   map[string]weather.CurrentWeather
	suggest []weather.Suggestion
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Current(_ context.Context, city string) (weather.CurrentWeather, error) {
	f.calls++
	if f.err != nil {
		return weather.CurrentWeather{}, f.err
	}
	w, ok := f.known[strings.ToLower(city)]
	if !ok {
		return weather.CurrentWeather{}, fmt.Errorf("%w: %s", weather.ErrCityNotFound, city)
	}
	return w, nil
}

func (f *fakeProvider) Suggest(_ context.Context, _ string, _ int) ([]weather.Suggestion, error) {
	f.calls++
	return f.suggest, f.err
}

func newFake() *fakeProvider {
	return &fakeProvider{
		name: "fake",
		known: map[string]weather.CurrentWeather{
			"london": {City: "London", Temperature: 14.2, Description: "light rain", Humidity: 81, WindSpeed: 4.1},
			"paris":  {City: "Paris", Temperature: 19.5, Description: "clear sky", Humidity: 40, WindSpeed: 1.5},
		},
	}
}

var fixedNow = time.Date(2025, 8, 8, 9, 30, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func TestSearchRecordsSnapshot(t *testing.T) {
	mem := store.NewMemoryStore(10)
	svc := weather.NewService(mem, []weather.Provider{newFake()}, weather.WithClock(clock))

	res, err := svc.Search(context.Background(), "  London ", "curl/8.0")
	require.NoError(t, err)
	assert.Equal(t, "London", res.Weather.City)

	all := mem.All()
	require.Len(t, all, 1)
	assert.Equal(t, res.SearchID, all[0].ID)
	assert.Equal(t, "London", all[0].City)
	assert.Equal(t, fixedNow, all[0].Timestamp)
	assert.Equal(t, "curl/8.0", all[0].ClientTag)
	assert.Equal(t, weather.WeatherSnapshot{Temperature: 14.2, Description: "light rain", Humidity: 81, WindSpeed: 4.1}, all[0].Weather)
}

func TestSearchDefaultsClientTag(t *testing.T) {
	mem := store.NewMemoryStore(10)
	svc := weather.NewService(mem, []weather.Provider{newFake()}, weather.WithClock(clock))

	_, err := svc.Search(context.Background(), "Paris", "")
	require.NoError(t, err)
	assert.Equal(t, "Unknown", mem.All()[0].ClientTag)
}

func TestSearchEmptyCity(t *testing.T) {
	fake := newFake()
	svc := weather.NewService(store.NewMemoryStore(10), []weather.Provider{fake})

	_, err := svc.Search(context.Background(), "   ", "ua")
	assert.ErrorIs(t, err, weather.ErrBadRequest)
	assert.Zero(t, fake.calls)
}

func TestSearchFailureLeavesHistoryUnchanged(t *testing.T) {
	mem := store.NewMemoryStore(10)
	svc := weather.NewService(mem, []weather.Provider{newFake()})

	_, err := svc.Search(context.Background(), "Paris", "ua")
	require.NoError(t, err)

	_, err = svc.Search(context.Background(), "Zzzzznotacity", "ua")
	assert.ErrorIs(t, err, weather.ErrCityNotFound)
	assert.Equal(t, 1, mem.Len())
}

func TestSearchFallsBackWhenUnavailable(t *testing.T) {
	down := &fakeProvider{name: "down", err: fmt.Errorf("%w: 503", weather.ErrUpstreamUnavailable)}
	up := newFake()
	svc := weather.NewService(store.NewMemoryStore(10), []weather.Provider{down, up})

	res, err := svc.Search(context.Background(), "paris", "ua")
	require.NoError(t, err)
	assert.Equal(t, "fake", res.Provider)
	assert.Equal(t, 1, down.calls)
}

func TestSearchDoesNotFallBackOnCredentialError(t *testing.T) {
	bad := &fakeProvider{name: "bad", err: weather.ErrInvalidCredential}
	up := newFake()
	svc := weather.NewService(store.NewMemoryStore(10), []weather.Provider{bad, up})

	_, err := svc.Search(context.Background(), "paris", "ua")
	assert.ErrorIs(t, err, weather.ErrInvalidCredential)
	assert.Zero(t, up.calls)
}

func TestSearchWithoutProviders(t *testing.T) {
	svc := weather.NewService(store.NewMemoryStore(10), nil)
	_, err := svc.Search(context.Background(), "paris", "ua")
	assert.ErrorIs(t, err, weather.ErrUpstreamUnavailable)
}

func TestSearchUsesCacheButStillRecords(t *testing.T) {
	fake := newFake()
	mem := store.NewMemoryStore(10)
	c := cache.New[weather.CurrentWeather](16, time.Minute)
	svc := weather.NewService(mem, []weather.Provider{fake}, weather.WithCache(c))

	first, err := svc.Search(context.Background(), "London", "ua")
	require.NoError(t, err)
	second, err := svc.Search(context.Background(), "LONDON", "ua")
	require.NoError(t, err)

	assert.False(t, first.Cached)
	assert.True(t, second.Cached)
	assert.Equal(t, 1, fake.calls)
	assert.Equal(t, 2, mem.Len())
	assert.NotEqual(t, first.SearchID, second.SearchID)
}

func TestWarmFillsCacheWithoutRecording(t *testing.T) {
	fake := newFake()
	mem := store.NewMemoryStore(10)
	c := cache.New[weather.CurrentWeather](16, time.Minute)
	svc := weather.NewService(mem, []weather.Provider{fake}, weather.WithCache(c))

	require.NoError(t, svc.Warm(context.Background(), "Paris"))
	assert.Zero(t, mem.Len())

	_, ok := c.Get("paris")
	assert.True(t, ok)
}

func TestPopularAndStatsOverStore(t *testing.T) {
	mem := store.NewMemoryStore(10)
	svc := weather.NewService(mem, []weather.Provider{newFake()}, weather.WithClock(clock))

	for _, city := range []string{"London", "london", "Paris"} {
		_, err := svc.Search(context.Background(), city, "ua")
		require.NoError(t, err)
	}

	assert.Equal(t, []weather.PopularCity{{City: "london", SearchCount: 2}, {City: "paris", SearchCount: 1}}, svc.Popular(10))

	stats := svc.Stats()
	assert.Equal(t, weather.Stats{TotalSearches: 3, UniqueCities: 2, SearchesLast24Hours: 3, AverageSearchesPerDay: 3}, stats)

	svc.Clear()
	assert.Equal(t, weather.Stats{}, svc.Stats())
	assert.Zero(t, svc.Total())
}

func TestSuggestShortQuerySkipsUpstream(t *testing.T) {
	fake := newFake()
	svc := weather.NewService(store.NewMemoryStore(10), []weather.Provider{fake})

	got, err := svc.Suggest(context.Background(), " l ", 5)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Zero(t, fake.calls)
}

func TestSuggestDelegates(t *testing.T) {
	fake := newFake()
	fake.suggest = []weather.Suggestion{{Name: "London", Country: "GB"}}
	svc := weather.NewService(store.NewMemoryStore(10), []weather.Provider{fake})

	got, err := svc.Suggest(context.Background(), "lon", 5)
	require.NoError(t, err)
	assert.Equal(t, fake.suggest, got)
}

func TestForecastNotSupported(t *testing.T) {
	svc := weather.NewService(store.NewMemoryStore(10), []weather.Provider{newFake()})
	_, err := svc.Forecast(context.Background(), "London", 3)
	assert.ErrorIs(t, err, weather.ErrNotSupported)
}
