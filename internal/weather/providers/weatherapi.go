package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

// DefaultWeatherAPIBaseURL is the public WeatherAPI.com endpoint root.
const DefaultWeatherAPIBaseURL = "https://api.weatherapi.com/v1"

// WeatherAPIProvider implements weather.Provider, weather.ForecastProvider and
// weather.SuggestProvider for WeatherAPI.com.
type WeatherAPIProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
	now     func() time.Time
}

// NewWeatherAPIProvider creates a provider. An empty baseURL selects
// DefaultWeatherAPIBaseURL.
func NewWeatherAPIProvider(client *http.Client, apiKey, baseURL string) *WeatherAPIProvider {
	if baseURL == "" {
		baseURL = DefaultWeatherAPIBaseURL
	}
	return &WeatherAPIProvider{
		name:    "weatherapi",
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: DefaultBackoff,
		},
		circuit: newCircuitBreaker("weatherapi"),
		now:     time.Now,
	}
}

func (p *WeatherAPIProvider) Name() string {
	return p.name
}

func (p *WeatherAPIProvider) get(ctx context.Context, path string, values url.Values, out interface{}) error {
	if p.apiKey == "" {
		return fmt.Errorf("%w: weatherapi api key is not configured", weather.ErrInvalidCredential)
	}
	values.Set("key", p.apiKey)

	buildRequest := func(ctx context.Context) (*http.Request, error) {
		u := fmt.Sprintf("%s%s?%s", p.baseURL, path, values.Encode())
		return http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s: %v", weather.ErrUpstreamUnavailable, path, err)
	}
	return nil
}

type weatherAPICondition struct {
	Text string `json:"text"`
	Icon string `json:"icon"`
}

type weatherAPILocation struct {
	Name      string `json:"name"`
	Country   string `json:"country"`
	Localtime string `json:"localtime"` // "2006-01-02 15:04"
}

// weatherAPICurrent is the /current.json response schema.
type weatherAPICurrent struct {
	Location weatherAPILocation `json:"location"`
	Current  struct {
		LastUpdatedEpoch int64               `json:"last_updated_epoch"`
		TempC            float64             `json:"temp_c"`
		FeelsLikeC       float64             `json:"feelslike_c"`
		Humidity         int                 `json:"humidity"`
		WindKph          float64             `json:"wind_kph"`
		VisKm            float64             `json:"vis_km"`
		Condition        weatherAPICondition `json:"condition"`
	} `json:"current"`
}

func (p *WeatherAPIProvider) Current(ctx context.Context, city string) (weather.CurrentWeather, error) {
	values := url.Values{}
	values.Set("q", city)

	var payload weatherAPICurrent
	if err := p.get(ctx, "/current.json", values, &payload); err != nil {
		return weather.CurrentWeather{}, err
	}
	return normalizeWeatherAPICurrent(city, payload, p.now()), nil
}

func normalizeWeatherAPICurrent(query string, payload weatherAPICurrent, now time.Time) weather.CurrentWeather {
	name := payload.Location.Name
	if name == "" {
		name = query
	}
	observed := now.UTC()
	if payload.Current.LastUpdatedEpoch > 0 {
		observed = time.Unix(payload.Current.LastUpdatedEpoch, 0).UTC()
	}

	return weather.CurrentWeather{
		City:        name,
		Country:     payload.Location.Country,
		Temperature: payload.Current.TempC,
		FeelsLike:   payload.Current.FeelsLikeC,
		Description: strings.ToLower(payload.Current.Condition.Text),
		Icon:        payload.Current.Condition.Icon,
		Condition:   conditionFromText(payload.Current.Condition.Text),
		Humidity:    payload.Current.Humidity,
		// Convert wind from kph to m/s.
		WindSpeed:  payload.Current.WindKph / 3.6,
		Visibility: int(payload.Current.VisKm * 1000),
		ObservedAt: observed,
	}
}

// weatherAPIForecast is the /forecast.json response schema.
type weatherAPIForecast struct {
	Location weatherAPILocation `json:"location"`
	Forecast struct {
		ForecastDay []struct {
			Date string `json:"date"`
			Day  struct {
				MaxTempC  float64             `json:"maxtemp_c"`
				MinTempC  float64             `json:"mintemp_c"`
				Condition weatherAPICondition `json:"condition"`
			} `json:"day"`
		} `json:"forecastday"`
	} `json:"forecast"`
}

func (p *WeatherAPIProvider) Forecast(ctx context.Context, city string, days int) (weather.Forecast, error) {
	values := url.Values{}
	values.Set("q", city)
	// The first forecast day is today, which is dropped.
	values.Set("days", strconv.Itoa(days+1))

	var payload weatherAPIForecast
	if err := p.get(ctx, "/forecast.json", values, &payload); err != nil {
		return weather.Forecast{}, err
	}
	return normalizeWeatherAPIForecast(city, payload, p.now(), days)
}

func normalizeWeatherAPIForecast(query string, payload weatherAPIForecast, now time.Time, days int) (weather.Forecast, error) {
	if len(payload.Forecast.ForecastDay) == 0 {
		return weather.Forecast{}, fmt.Errorf("%w: no forecast entries for %q", weather.ErrCityNotFound, query)
	}

	today := now.UTC()
	if lt, err := time.Parse("2006-01-02 15:04", payload.Location.Localtime); err == nil {
		today = lt
	}

	slots := make([]forecastSlot, 0, len(payload.Forecast.ForecastDay))
	for _, fd := range payload.Forecast.ForecastDay {
		date, err := time.Parse(time.DateOnly, fd.Date)
		if err != nil {
			continue
		}
		slots = append(slots, forecastSlot{
			Local:       date.Add(12 * time.Hour),
			TempMax:     fd.Day.MaxTempC,
			TempMin:     fd.Day.MinTempC,
			Description: fd.Day.Condition.Text,
			Icon:        fd.Day.Condition.Icon,
			Condition:   conditionFromText(fd.Day.Condition.Text),
		})
	}

	name := payload.Location.Name
	if name == "" {
		name = query
	}
	return weather.Forecast{
		City:    name,
		Country: payload.Location.Country,
		Days:    dailyFromSlots(slots, today, days),
	}, nil
}

// weatherAPISearch is one element of the /search.json response.
type weatherAPISearch struct {
	Name    string  `json:"name"`
	Region  string  `json:"region"`
	Country string  `json:"country"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

func (p *WeatherAPIProvider) Suggest(ctx context.Context, query string, limit int) ([]weather.Suggestion, error) {
	values := url.Values{}
	values.Set("q", query)

	var payload []weatherAPISearch
	if err := p.get(ctx, "/search.json", values, &payload); err != nil {
		return nil, err
	}

	out := make([]weather.Suggestion, 0, min(limit, len(payload)))
	for _, s := range payload {
		if len(out) >= limit {
			break
		}
		out = append(out, weather.Suggestion{
			Name:    s.Name,
			State:   s.Region,
			Country: s.Country,
			Lat:     s.Lat,
			Lon:     s.Lon,
		})
	}
	return out, nil
}
