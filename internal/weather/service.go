package weather

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	// MinSuggestQueryLen is the shortest query forwarded to a geocoding provider.
	MinSuggestQueryLen = 2
	// DefaultSuggestLimit caps suggestions when the caller does not.
	DefaultSuggestLimit = 5
)

// Service orchestrates upstream providers, the lookup cache and the search history.
type Service struct {
	store     HistoryStore
	providers []Provider
	cache     LookupCache
	ids       IDSource
	now       func() time.Time
}

// Option customises a Service.
type Option func(*Service)

// WithCache enables caching of current-conditions lookups.
func WithCache(c LookupCache) Option {
	return func(s *Service) { s.cache = c }
}

// WithClock overrides the time source used for record timestamps and stats.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDs overrides the record id source.
func WithIDs(ids IDSource) Option {
	return func(s *Service) { s.ids = ids }
}

// NewService creates a new Service. Providers are tried in order; the next one
// is consulted only when the previous is unavailable.
func NewService(store HistoryStore, providers []Provider, opts ...Option) *Service {
	s := &Service{
		store:     store,
		providers: providers,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.ids == nil {
		s.ids = NewClockIDs(s.now)
	}
	return s
}

// SearchResult is the outcome of a recorded search.
type SearchResult struct {
	Weather  CurrentWeather
	SearchID int64
	Provider string
	Cached   bool
}

// Search fetches current conditions for city and, on success, appends a record
// to the history. The store is not touched until the upstream call returns, and
// a failed lookup leaves it unchanged.
func (s *Service) Search(ctx context.Context, city, clientTag string) (SearchResult, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return SearchResult{}, fmt.Errorf("%w: city is required", ErrBadRequest)
	}
	if clientTag == "" {
		clientTag = "Unknown"
	}

	w, provider, cached, err := s.lookup(ctx, city)
	if err != nil {
		log.Warn().Err(err).Str("city", city).Msg("weather search failed")
		return SearchResult{}, err
	}

	record := SearchRecord{
		ID:        s.ids.Next(),
		City:      city,
		Timestamp: s.now().UTC(),
		Weather:   w.Snapshot(),
		ClientTag: clientTag,
	}
	s.store.Append(record)

	log.Info().
		Str("city", city).
		Int64("search_id", record.ID).
		Str("provider", provider).
		Bool("cached", cached).
		Int("retained", s.store.Len()).
		Msg("weather search recorded")

	return SearchResult{
		Weather:  w,
		SearchID: record.ID,
		Provider: provider,
		Cached:   cached,
	}, nil
}

// Warm refreshes the lookup cache for city without recording a search.
func (s *Service) Warm(ctx context.Context, city string) error {
	city = strings.TrimSpace(city)
	if city == "" {
		return fmt.Errorf("%w: city is required", ErrBadRequest)
	}
	w, _, err := s.fetchCurrent(ctx, city)
	if err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.Add(FoldCity(city), w)
	}
	return nil
}

func (s *Service) lookup(ctx context.Context, city string) (CurrentWeather, string, bool, error) {
	key := FoldCity(city)
	if s.cache != nil {
		if w, ok := s.cache.Get(key); ok {
			return w, "cache", true, nil
		}
	}

	w, provider, err := s.fetchCurrent(ctx, city)
	if err != nil {
		return CurrentWeather{}, "", false, err
	}
	if s.cache != nil {
		s.cache.Add(key, w)
	}
	return w, provider, false, nil
}

func (s *Service) fetchCurrent(ctx context.Context, city string) (CurrentWeather, string, error) {
	if len(s.providers) == 0 {
		return CurrentWeather{}, "", fmt.Errorf("%w: no weather providers configured", ErrUpstreamUnavailable)
	}

	var lastErr error
	for _, p := range s.providers {
		w, err := p.Current(ctx, city)
		if err == nil {
			return w, p.Name(), nil
		}
		lastErr = fmt.Errorf("%s: %w", p.Name(), err)
		if !errors.Is(err, ErrUpstreamUnavailable) {
			// Not found and bad credentials are definitive answers.
			return CurrentWeather{}, "", lastErr
		}
		log.Debug().Err(err).Str("provider", p.Name()).Str("city", city).Msg("provider unavailable, trying next")
	}
	return CurrentWeather{}, "", lastErr
}

// Forecast returns up to days daily forecasts for city, excluding today.
func (s *Service) Forecast(ctx context.Context, city string, days int) (Forecast, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return Forecast{}, fmt.Errorf("%w: city is required", ErrBadRequest)
	}
	if days <= 0 {
		return Forecast{}, fmt.Errorf("%w: days must be greater than zero", ErrBadRequest)
	}

	var lastErr error = ErrNotSupported
	for _, p := range s.providers {
		fp, ok := p.(ForecastProvider)
		if !ok {
			continue
		}
		f, err := fp.Forecast(ctx, city, days)
		if err == nil {
			return f, nil
		}
		lastErr = fmt.Errorf("%s: %w", p.Name(), err)
		if !errors.Is(err, ErrUpstreamUnavailable) {
			return Forecast{}, lastErr
		}
	}
	return Forecast{}, lastErr
}

// Suggest returns geocoding matches for a partial city name. Queries shorter
// than MinSuggestQueryLen return no suggestions without calling upstream.
func (s *Service) Suggest(ctx context.Context, query string, limit int) ([]Suggestion, error) {
	query = strings.TrimSpace(query)
	if len([]rune(query)) < MinSuggestQueryLen {
		return []Suggestion{}, nil
	}
	if limit <= 0 {
		limit = DefaultSuggestLimit
	}

	var lastErr error = ErrNotSupported
	for _, p := range s.providers {
		sp, ok := p.(SuggestProvider)
		if !ok {
			continue
		}
		out, err := sp.Suggest(ctx, query, limit)
		if err == nil {
			if out == nil {
				out = []Suggestion{}
			}
			return out, nil
		}
		lastErr = fmt.Errorf("%s: %w", p.Name(), err)
		if !errors.Is(err, ErrUpstreamUnavailable) {
			return nil, lastErr
		}
	}
	return nil, lastErr
}

// History delegates to the store.
func (s *Service) History(filter HistoryFilter) ([]SearchRecord, int) {
	return s.store.Query(filter)
}

// Popular ranks the retained searches by case-folded city.
func (s *Service) Popular(topN int) []PopularCity {
	return PopularCities(s.store.All(), topN)
}

// Stats summarises the retained searches as of now.
func (s *Service) Stats() Stats {
	return ComputeStats(s.store.All(), s.now())
}

// Clear empties the history.
func (s *Service) Clear() {
	s.store.Clear()
	log.Info().Msg("search history cleared")
}

// Total returns the number of retained searches.
func (s *Service) Total() int {
	return s.store.Len()
}
