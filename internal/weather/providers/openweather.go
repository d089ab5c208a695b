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

// DefaultOpenWeatherBaseURL is the public OpenWeatherMap host.
const DefaultOpenWeatherBaseURL = "https://api.openweathermap.org"

// openWeatherMaxForecastDays is the reach of the free 5 day / 3 hour forecast.
const openWeatherMaxForecastDays = 5

// OpenWeatherProvider implements weather.Provider, weather.ForecastProvider and
// weather.SuggestProvider for OpenWeatherMap.
type OpenWeatherProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
	now     func() time.Time
}

// NewOpenWeatherProvider creates a provider. An empty baseURL selects
// DefaultOpenWeatherBaseURL.
func NewOpenWeatherProvider(client *http.Client, apiKey, baseURL string) *OpenWeatherProvider {
	if baseURL == "" {
		baseURL = DefaultOpenWeatherBaseURL
	}
	return &OpenWeatherProvider{
		name:    "openweathermap",
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: DefaultBackoff,
		},
		circuit: newCircuitBreaker("openweather"),
		now:     time.Now,
	}
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

func (p *OpenWeatherProvider) get(ctx context.Context, path string, values url.Values, out interface{}) error {
	if p.apiKey == "" {
		return fmt.Errorf("%w: openweather api key is not configured", weather.ErrInvalidCredential)
	}
	values.Set("appid", p.apiKey)

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

// openWeatherCondition is the shared "weather" array element.
type openWeatherCondition struct {
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// openWeatherCurrent is the /data/2.5/weather response schema.
type openWeatherCurrent struct {
	Name       string `json:"name"`
	Dt         int64  `json:"dt"`
	Visibility int    `json:"visibility"`
	Sys        struct {
		Country string `json:"country"`
	} `json:"sys"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Weather []openWeatherCondition `json:"weather"`
}

func (p *OpenWeatherProvider) Current(ctx context.Context, city string) (weather.CurrentWeather, error) {
	values := url.Values{}
	values.Set("q", city)
	values.Set("units", "metric")

	var payload openWeatherCurrent
	if err := p.get(ctx, "/data/2.5/weather", values, &payload); err != nil {
		return weather.CurrentWeather{}, err
	}
	return normalizeOpenWeatherCurrent(city, payload, p.now())
}

// normalizeOpenWeatherCurrent is the only place an OpenWeatherMap current
// payload is turned into a weather.CurrentWeather.
func normalizeOpenWeatherCurrent(query string, payload openWeatherCurrent, now time.Time) (weather.CurrentWeather, error) {
	if len(payload.Weather) == 0 {
		return weather.CurrentWeather{}, fmt.Errorf("%w: response for %q has no conditions", weather.ErrUpstreamUnavailable, query)
	}

	name := payload.Name
	if name == "" {
		name = query
	}
	observed := now.UTC()
	if payload.Dt > 0 {
		observed = time.Unix(payload.Dt, 0).UTC()
	}

	cond := payload.Weather[0]
	return weather.CurrentWeather{
		City:        name,
		Country:     payload.Sys.Country,
		Temperature: payload.Main.Temp,
		FeelsLike:   payload.Main.FeelsLike,
		Description: cond.Description,
		Icon:        cond.Icon,
		Condition:   mapOpenWeatherCondition(cond.Main),
		Humidity:    payload.Main.Humidity,
		WindSpeed:   payload.Wind.Speed,
		Visibility:  payload.Visibility,
		ObservedAt:  observed,
	}, nil
}

// openWeatherForecast is the /data/2.5/forecast response schema.
type openWeatherForecast struct {
	List []struct {
		Dt   int64 `json:"dt"`
		Main struct {
			TempMin float64 `json:"temp_min"`
			TempMax float64 `json:"temp_max"`
		} `json:"main"`
		Weather []openWeatherCondition `json:"weather"`
	} `json:"list"`
	City struct {
		Name     string `json:"name"`
		Country  string `json:"country"`
		Timezone int    `json:"timezone"` // seconds east of UTC
	} `json:"city"`
}

func (p *OpenWeatherProvider) Forecast(ctx context.Context, city string, days int) (weather.Forecast, error) {
	if days > openWeatherMaxForecastDays {
		days = openWeatherMaxForecastDays
	}

	values := url.Values{}
	values.Set("q", city)
	values.Set("units", "metric")

	var payload openWeatherForecast
	if err := p.get(ctx, "/data/2.5/forecast", values, &payload); err != nil {
		return weather.Forecast{}, err
	}
	return normalizeOpenWeatherForecast(city, payload, p.now(), days)
}

func normalizeOpenWeatherForecast(query string, payload openWeatherForecast, now time.Time, days int) (weather.Forecast, error) {
	if len(payload.List) == 0 {
		return weather.Forecast{}, fmt.Errorf("%w: no forecast entries for %q", weather.ErrCityNotFound, query)
	}

	zone := time.FixedZone(payload.City.Name, payload.City.Timezone)
	slots := make([]forecastSlot, 0, len(payload.List))
	for _, item := range payload.List {
		slot := forecastSlot{
			Local:     time.Unix(item.Dt, 0).In(zone),
			TempMax:   item.Main.TempMax,
			TempMin:   item.Main.TempMin,
			Condition: weather.ConditionUnknown,
		}
		if len(item.Weather) > 0 {
			slot.Description = capitalize(item.Weather[0].Description)
			slot.Icon = item.Weather[0].Icon
			slot.Condition = mapOpenWeatherCondition(item.Weather[0].Main)
		}
		slots = append(slots, slot)
	}

	name := payload.City.Name
	if name == "" {
		name = query
	}
	return weather.Forecast{
		City:    name,
		Country: payload.City.Country,
		Days:    dailyFromSlots(slots, now.In(zone), days),
	}, nil
}

// openWeatherGeo is one element of the /geo/1.0/direct response.
type openWeatherGeo struct {
	Name    string  `json:"name"`
	State   string  `json:"state"`
	Country string  `json:"country"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

func (p *OpenWeatherProvider) Suggest(ctx context.Context, query string, limit int) ([]weather.Suggestion, error) {
	values := url.Values{}
	values.Set("q", query)
	values.Set("limit", strconv.Itoa(limit))

	var payload []openWeatherGeo
	if err := p.get(ctx, "/geo/1.0/direct", values, &payload); err != nil {
		return nil, err
	}

	out := make([]weather.Suggestion, 0, len(payload))
	for _, g := range payload {
		out = append(out, weather.Suggestion{
			Name:    g.Name,
			State:   g.State,
			Country: g.Country,
			Lat:     g.Lat,
			Lon:     g.Lon,
		})
	}
	return out, nil
}

func mapOpenWeatherCondition(main string) weather.Condition {
	switch main {
	case "Clear":
		return weather.ConditionClear
	case "Clouds":
		return weather.ConditionCloudy
	case "Rain", "Drizzle":
		return weather.ConditionRain
	case "Snow":
		return weather.ConditionSnow
	case "Thunderstorm":
		return weather.ConditionStorm
	case "Mist", "Fog", "Haze", "Smoke", "Dust":
		return weather.ConditionMist
	default:
		return weather.ConditionUnknown
	}
}
