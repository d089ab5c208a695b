package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

const (
	DefaultOpenMeteoBaseURL  = "https://api.open-meteo.com/v1"
	DefaultOpenMeteoGeoURL   = "https://geocoding-api.open-meteo.com/v1"
	openMeteoMaxForecastDays = 15
)

// OpenMeteoProvider implements weather.Provider, weather.ForecastProvider and
// weather.SuggestProvider for Open-Meteo. It needs no API key; city names are
// resolved through the Open-Meteo geocoding API first.
type OpenMeteoProvider struct {
	name    string
	baseURL string
	geoURL  string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
	now     func() time.Time
}

// NewOpenMeteoProvider creates a provider. Empty URLs select the public hosts.
func NewOpenMeteoProvider(client *http.Client, baseURL, geoURL string) *OpenMeteoProvider {
	if baseURL == "" {
		baseURL = DefaultOpenMeteoBaseURL
	}
	if geoURL == "" {
		geoURL = DefaultOpenMeteoGeoURL
	}
	return &OpenMeteoProvider{
		name:    "openmeteo",
		baseURL: baseURL,
		geoURL:  geoURL,
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: DefaultBackoff,
		},
		circuit: newCircuitBreaker("openmeteo"),
		now:     time.Now,
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

func (p *OpenMeteoProvider) get(ctx context.Context, rawURL string, values url.Values, out interface{}) error {
	buildRequest := func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, rawURL+"?"+values.Encode(), nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode open-meteo response: %v", weather.ErrUpstreamUnavailable, err)
	}
	return nil
}

// openMeteoPlace is one element of the geocoding "results" array.
type openMeteoPlace struct {
	Name        string  `json:"name"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	CountryCode string  `json:"country_code"`
	Admin1      string  `json:"admin1"`
}

func (p *OpenMeteoProvider) geocode(ctx context.Context, query string, count int) ([]openMeteoPlace, error) {
	values := url.Values{}
	values.Set("name", query)
	values.Set("count", strconv.Itoa(count))
	values.Set("format", "json")

	var payload struct {
		Results []openMeteoPlace `json:"results"`
	}
	if err := p.get(ctx, p.geoURL+"/search", values, &payload); err != nil {
		return nil, err
	}
	return payload.Results, nil
}

func (p *OpenMeteoProvider) resolve(ctx context.Context, city string) (openMeteoPlace, error) {
	places, err := p.geocode(ctx, city, 1)
	if err != nil {
		return openMeteoPlace{}, err
	}
	if len(places) == 0 {
		return openMeteoPlace{}, fmt.Errorf("%w: %s", weather.ErrCityNotFound, city)
	}
	return places[0], nil
}

// openMeteoCurrent is the /forecast response schema with current= fields.
type openMeteoCurrent struct {
	UTCOffsetSeconds int `json:"utc_offset_seconds"`
	Current          struct {
		Time                string  `json:"time"` // local, "2006-01-02T15:04"
		Temperature2m       float64 `json:"temperature_2m"`
		ApparentTemperature float64 `json:"apparent_temperature"`
		RelativeHumidity2m  int     `json:"relative_humidity_2m"`
		WindSpeed10m        float64 `json:"wind_speed_10m"`
		WeatherCode         int     `json:"weather_code"`
	} `json:"current"`
}

func (p *OpenMeteoProvider) Current(ctx context.Context, city string) (weather.CurrentWeather, error) {
	place, err := p.resolve(ctx, city)
	if err != nil {
		return weather.CurrentWeather{}, err
	}

	values := p.coordinates(place)
	values.Set("current", "temperature_2m,apparent_temperature,relative_humidity_2m,wind_speed_10m,weather_code")

	var payload openMeteoCurrent
	if err := p.get(ctx, p.baseURL+"/forecast", values, &payload); err != nil {
		return weather.CurrentWeather{}, err
	}
	return normalizeOpenMeteoCurrent(place, payload, p.now()), nil
}

func normalizeOpenMeteoCurrent(place openMeteoPlace, payload openMeteoCurrent, now time.Time) weather.CurrentWeather {
	zone := time.FixedZone("", payload.UTCOffsetSeconds)
	observed, err := time.ParseInLocation("2006-01-02T15:04", payload.Current.Time, zone)
	if err != nil {
		observed = now
	}

	code := payload.Current.WeatherCode
	return weather.CurrentWeather{
		City:        place.Name,
		Country:     place.CountryCode,
		Temperature: payload.Current.Temperature2m,
		FeelsLike:   payload.Current.ApparentTemperature,
		Description: describeOpenMeteoCode(code),
		Condition:   mapOpenMeteoCondition(code),
		Humidity:    payload.Current.RelativeHumidity2m,
		WindSpeed:   payload.Current.WindSpeed10m,
		ObservedAt:  observed.UTC(),
	}
}

// openMeteoDaily is the /forecast response schema with daily= fields.
type openMeteoDaily struct {
	UTCOffsetSeconds int `json:"utc_offset_seconds"`
	Daily            struct {
		Time        []string  `json:"time"`
		TempMax     []float64 `json:"temperature_2m_max"`
		TempMin     []float64 `json:"temperature_2m_min"`
		WeatherCode []int     `json:"weather_code"`
	} `json:"daily"`
}

func (p *OpenMeteoProvider) Forecast(ctx context.Context, city string, days int) (weather.Forecast, error) {
	if days > openMeteoMaxForecastDays {
		days = openMeteoMaxForecastDays
	}
	place, err := p.resolve(ctx, city)
	if err != nil {
		return weather.Forecast{}, err
	}

	values := p.coordinates(place)
	values.Set("daily", "temperature_2m_max,temperature_2m_min,weather_code")
	values.Set("forecast_days", strconv.Itoa(days+1))

	var payload openMeteoDaily
	if err := p.get(ctx, p.baseURL+"/forecast", values, &payload); err != nil {
		return weather.Forecast{}, err
	}
	return normalizeOpenMeteoForecast(place, payload, p.now(), days), nil
}

func normalizeOpenMeteoForecast(place openMeteoPlace, payload openMeteoDaily, now time.Time, days int) weather.Forecast {
	zone := time.FixedZone("", payload.UTCOffsetSeconds)
	d := payload.Daily

	slots := make([]forecastSlot, 0, len(d.Time))
	for i, date := range d.Time {
		if i >= len(d.TempMax) || i >= len(d.TempMin) || i >= len(d.WeatherCode) {
			break
		}
		local, err := time.ParseInLocation(time.DateOnly, date, zone)
		if err != nil {
			continue
		}
		slots = append(slots, forecastSlot{
			Local:       local.Add(12 * time.Hour),
			TempMax:     d.TempMax[i],
			TempMin:     d.TempMin[i],
			Description: capitalize(describeOpenMeteoCode(d.WeatherCode[i])),
			Condition:   mapOpenMeteoCondition(d.WeatherCode[i]),
		})
	}

	return weather.Forecast{
		City:    place.Name,
		Country: place.CountryCode,
		Days:    dailyFromSlots(slots, now.In(zone), days),
	}
}

func (p *OpenMeteoProvider) Suggest(ctx context.Context, query string, limit int) ([]weather.Suggestion, error) {
	places, err := p.geocode(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	out := make([]weather.Suggestion, 0, len(places))
	for _, pl := range places {
		out = append(out, weather.Suggestion{
			Name:    pl.Name,
			State:   pl.Admin1,
			Country: pl.CountryCode,
			Lat:     pl.Latitude,
			Lon:     pl.Longitude,
		})
	}
	return out, nil
}

func (p *OpenMeteoProvider) coordinates(place openMeteoPlace) url.Values {
	values := url.Values{}
	values.Set("latitude", strconv.FormatFloat(place.Latitude, 'f', 4, 64))
	values.Set("longitude", strconv.FormatFloat(place.Longitude, 'f', 4, 64))
	values.Set("timezone", "auto")
	values.Set("wind_speed_unit", "ms")
	return values
}

func mapOpenMeteoCondition(code int) weather.Condition {
	// Mapping based on WMO weather interpretation codes (simplified).
	switch {
	case code == 0:
		return weather.ConditionClear
	case code >= 1 && code <= 3:
		return weather.ConditionCloudy
	case code == 45 || code == 48:
		return weather.ConditionMist
	case (code >= 51 && code <= 67) || (code >= 80 && code <= 82):
		return weather.ConditionRain
	case (code >= 71 && code <= 77) || code == 85 || code == 86:
		return weather.ConditionSnow
	case code >= 95:
		return weather.ConditionStorm
	default:
		return weather.ConditionUnknown
	}
}

func describeOpenMeteoCode(code int) string {
	switch {
	case code == 0:
		return "clear sky"
	case code == 1:
		return "mainly clear"
	case code == 2:
		return "partly cloudy"
	case code == 3:
		return "overcast"
	case code == 45 || code == 48:
		return "fog"
	case code >= 51 && code <= 57:
		return "drizzle"
	case code >= 61 && code <= 67:
		return "rain"
	case code >= 71 && code <= 77:
		return "snow"
	case code >= 80 && code <= 82:
		return "rain showers"
	case code == 85 || code == 86:
		return "snow showers"
	case code >= 95:
		return "thunderstorm"
	default:
		return "unknown"
	}
}
