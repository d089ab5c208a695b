package weather

import (
	"strings"
	"time"
)

// Condition represents a normalized high-level weather condition.
type Condition string

const (
	ConditionUnknown Condition = "unknown"
	ConditionClear   Condition = "clear"
	ConditionCloudy  Condition = "cloudy"
	ConditionRain    Condition = "rain"
	ConditionSnow    Condition = "snow"
	ConditionStorm   Condition = "storm"
	ConditionMist    Condition = "mist"
)

// CurrentWeather is the normalized current-conditions payload returned to clients.
type CurrentWeather struct {
	City        string    `json:"city"`
	Country     string    `json:"country,omitempty"`
	Temperature float64   `json:"temperature"` // Celsius
	FeelsLike   float64   `json:"feelsLike"`
	Description string    `json:"description"`
	Icon        string    `json:"icon,omitempty"`
	Condition   Condition `json:"condition"`
	Humidity    int       `json:"humidity"`  // percent
	WindSpeed   float64   `json:"windSpeed"` // m/s
	Visibility  int       `json:"visibility,omitempty"`
	ObservedAt  time.Time `json:"observedAt"` // always UTC
}

// Snapshot returns the point-in-time copy stored with a search record.
func (w CurrentWeather) Snapshot() WeatherSnapshot {
	return WeatherSnapshot{
		Temperature: w.Temperature,
		Description: w.Description,
		Humidity:    w.Humidity,
		WindSpeed:   w.WindSpeed,
	}
}

// WeatherSnapshot is the subset of conditions copied into a SearchRecord.
type WeatherSnapshot struct {
	Temperature float64 `json:"temperature"`
	Description string  `json:"description"`
	Humidity    int     `json:"humidity"`
	WindSpeed   float64 `json:"windSpeed"`
}

// SearchRecord is one successful weather search. Records are never mutated
// after they are appended to a HistoryStore.
type SearchRecord struct {
	ID        int64           `json:"id"`
	City      string          `json:"city"`
	Timestamp time.Time       `json:"timestamp"`
	Weather   WeatherSnapshot `json:"weather"`
	ClientTag string          `json:"clientTag,omitempty"`
}

// CityKey returns the case-folded city used for grouping and comparison.
func (r SearchRecord) CityKey() string {
	return FoldCity(r.City)
}

// FoldCity lowercases a city name for grouping.
func FoldCity(city string) string {
	return strings.ToLower(city)
}

// DailyForecast is one day of a multi-day forecast, in the city's local calendar.
type DailyForecast struct {
	Date        string    `json:"date"` // YYYY-MM-DD
	Day         string    `json:"day"`  // Mon, Tue, ...
	High        float64   `json:"high"`
	Low         float64   `json:"low"`
	Description string    `json:"description"`
	Icon        string    `json:"icon,omitempty"`
	Condition   Condition `json:"condition"`
}

// Forecast is ordered by Date ascending.
type Forecast struct {
	City    string          `json:"city"`
	Country string          `json:"country,omitempty"`
	Days    []DailyForecast `json:"days"`
}

// Suggestion is a geocoding match for a partial city query.
type Suggestion struct {
	Name    string  `json:"name"`
	State   string  `json:"state,omitempty"`
	Country string  `json:"country"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// Label renders the suggestion as "Name, State, Country".
func (s Suggestion) Label() string {
	parts := []string{s.Name}
	if s.State != "" {
		parts = append(parts, s.State)
	}
	if s.Country != "" {
		parts = append(parts, s.Country)
	}
	return strings.Join(parts, ", ")
}

// PopularCity is one entry of the popularity ranking.
type PopularCity struct {
	City        string `json:"city"`
	SearchCount int    `json:"searchCount"`
}

// Stats summarises the retained search window.
type Stats struct {
	TotalSearches         int     `json:"totalSearches"`
	UniqueCities          int     `json:"uniqueCities"`
	SearchesLast24Hours   int     `json:"searchesLast24Hours"`
	AverageSearchesPerDay float64 `json:"averageSearchesPerDay"`
}

// HistoryFilter narrows a history query.
type HistoryFilter struct {
	CityContains string
	Limit        int // <= 0 means DefaultHistoryLimit
}

const (
	// MaxHistory is the default capacity of the search history.
	MaxHistory = 100
	// DefaultHistoryLimit is applied when a query does not set a limit.
	DefaultHistoryLimit = 10
	// DefaultTopCities is the default size of the popularity ranking.
	DefaultTopCities = 10
)
