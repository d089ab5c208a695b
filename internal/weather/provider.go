package weather

import (
	"context"
)

// Provider abstracts an upstream weather source (e.g. OpenWeatherMap).
// Implementations normalize provider payloads and return errors wrapping
// ErrCityNotFound, ErrInvalidCredential or ErrUpstreamUnavailable.
type Provider interface {
	Name() string
	Current(ctx context.Context, city string) (CurrentWeather, error)
}

// ForecastProvider is implemented by providers that can return a daily forecast.
type ForecastProvider interface {
	Forecast(ctx context.Context, city string, days int) (Forecast, error)
}

// SuggestProvider is implemented by providers with a geocoding endpoint.
type SuggestProvider interface {
	Suggest(ctx context.Context, query string, limit int) ([]Suggestion, error)
}

// HistoryStore is the contract the in-memory search history (and any future
// persistent store) must satisfy. Operations never fail on well-formed input.
type HistoryStore interface {
	Append(record SearchRecord)
	Query(filter HistoryFilter) (records []SearchRecord, total int)
	Clear()
	All() []SearchRecord
	Len() int
}

// LookupCache caches normalized current conditions by case-folded city.
type LookupCache interface {
	Get(key string) (CurrentWeather, bool)
	Add(key string, value CurrentWeather)
}

// IDSource yields unique, increasing record ids.
type IDSource interface {
	Next() int64
}
