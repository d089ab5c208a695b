package providers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"sort"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-dashboard/internal/common"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

// BackoffConfig controls exponential backoff behaviour.
type BackoffConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// HTTPClientConfig bundles HTTP client and resilience settings.
type HTTPClientConfig struct {
	Client  *http.Client
	Backoff BackoffConfig
}

// DefaultBackoff is used by every provider constructor.
var DefaultBackoff = BackoffConfig{
	MaxRetries:      3,
	InitialInterval: 500 * time.Millisecond,
	MaxInterval:     5 * time.Second,
}

var (
	errNoHTTPClient  = errors.New("http client not configured")
	errInvalidConfig = errors.New("invalid backoff configuration")
)

// newCircuitBreaker counts only upstream outages as failures; a missing city
// or a rejected key says nothing about provider health.
func newCircuitBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
		IsSuccessful: func(err error) bool {
			return err == nil || !errors.Is(err, weather.ErrUpstreamUnavailable)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
		},
	})
}

// classifyStatus maps a provider HTTP status to the weather error taxonomy.
func classifyStatus(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return fmt.Errorf("%w: status %d", weather.ErrInvalidCredential, code)
	case code == http.StatusNotFound || code == http.StatusBadRequest:
		return fmt.Errorf("%w: status %d", weather.ErrCityNotFound, code)
	case code == http.StatusTooManyRequests:
		return fmt.Errorf("%w: rate limited", weather.ErrUpstreamUnavailable)
	case code >= 500:
		return fmt.Errorf("%w: server error %d", weather.ErrUpstreamUnavailable, code)
	default:
		return fmt.Errorf("%w: unexpected status code %d", weather.ErrUpstreamUnavailable, code)
	}
}

// doRequestWithResilience executes the HTTP request with retries, exponential backoff,
// and a circuit breaker. Only ErrUpstreamUnavailable failures are retried.
// On success the caller owns the response body.
func doRequestWithResilience(
	ctx context.Context,
	cfg HTTPClientConfig,
	cb *gobreaker.CircuitBreaker,
	buildRequest func(ctx context.Context) (*http.Request, error),
) (*http.Response, error) {
	if cfg.Client == nil {
		return nil, errNoHTTPClient
	}
	if cfg.Backoff.MaxRetries < 0 || cfg.Backoff.InitialInterval <= 0 {
		return nil, errInvalidConfig
	}

	var attempt int
	for {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %v", weather.ErrUpstreamUnavailable, ctx.Err())
		}

		req, err := buildRequest(ctx)
		if err != nil {
			return nil, err
		}

		result, err := cb.Execute(func() (interface{}, error) {
			resp, execErr := cfg.Client.Do(req)
			if execErr != nil {
				return nil, fmt.Errorf("%w: %v", weather.ErrUpstreamUnavailable, execErr)
			}
			if statusErr := classifyStatus(resp.StatusCode); statusErr != nil {
				io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
				resp.Body.Close()
				return nil, statusErr
			}
			return resp, nil
		})

		if err == nil {
			resp, ok := result.(*http.Response)
			if !ok {
				return nil, fmt.Errorf("unexpected result type from circuit breaker")
			}
			return resp, nil
		}

		// If circuit is open, propagate immediately.
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: circuit breaker open: %v", weather.ErrUpstreamUnavailable, err)
		}
		if !errors.Is(err, weather.ErrUpstreamUnavailable) || attempt >= cfg.Backoff.MaxRetries {
			return nil, err
		}

		delay := cfg.Backoff.InitialInterval * time.Duration(math.Pow(2, float64(attempt)))
		if delay > cfg.Backoff.MaxInterval && cfg.Backoff.MaxInterval > 0 {
			delay = cfg.Backoff.MaxInterval
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("%w: %v", weather.ErrUpstreamUnavailable, ctx.Err())
		case <-timer.C:
		}

		attempt++
	}
}

// forecastSlot is one forecast sample in the city's local time.
type forecastSlot struct {
	Local       time.Time
	TempMax     float64
	TempMin     float64
	Description string
	Icon        string
	Condition   weather.Condition
}

// dailyFromSlots groups samples by local calendar date, skips today and keeps
// at most days entries. The description comes from the sample closest to noon.
func dailyFromSlots(slots []forecastSlot, today time.Time, days int) []weather.DailyForecast {
	type bucket struct {
		day      weather.DailyForecast
		noonDist time.Duration
	}

	todayKey := today.Format(time.DateOnly)
	buckets := make(map[string]*bucket)
	for _, s := range slots {
		key := s.Local.Format(time.DateOnly)
		if key == todayKey {
			continue
		}
		noon := time.Date(s.Local.Year(), s.Local.Month(), s.Local.Day(), 12, 0, 0, 0, s.Local.Location())
		dist := s.Local.Sub(noon).Abs()

		b, ok := buckets[key]
		if !ok {
			buckets[key] = &bucket{
				day: weather.DailyForecast{
					Date:        key,
					Day:         s.Local.Weekday().String()[:3],
					High:        s.TempMax,
					Low:         s.TempMin,
					Description: s.Description,
					Icon:        s.Icon,
					Condition:   s.Condition,
				},
				noonDist: dist,
			}
			continue
		}
		b.day.High = math.Max(b.day.High, s.TempMax)
		b.day.Low = math.Min(b.day.Low, s.TempMin)
		if dist < b.noonDist {
			b.noonDist = dist
			b.day.Description = s.Description
			b.day.Icon = s.Icon
			b.day.Condition = s.Condition
		}
	}

	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]weather.DailyForecast, 0, min(days, len(keys)))
	for _, k := range keys {
		if len(out) >= days {
			break
		}
		out = append(out, buckets[k].day)
	}
	return out
}

// capitalize upper-cases the first letter of a provider description.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}

// conditionFromText maps a free-text description onto a Condition.
func conditionFromText(text string) weather.Condition {
	switch {
	case text == "":
		return weather.ConditionUnknown
	case common.HasAnyFold(text, "thunder", "storm"):
		return weather.ConditionStorm
	case common.HasAnyFold(text, "snow", "sleet", "blizzard"):
		return weather.ConditionSnow
	case common.HasAnyFold(text, "rain", "shower", "drizzle"):
		return weather.ConditionRain
	case common.HasAnyFold(text, "mist", "fog", "haze"):
		return weather.ConditionMist
	case common.HasAnyFold(text, "cloud", "overcast"):
		return weather.ConditionCloudy
	case common.HasAnyFold(text, "sunny", "clear"):
		return weather.ConditionClear
	default:
		return weather.ConditionUnknown
	}
}
