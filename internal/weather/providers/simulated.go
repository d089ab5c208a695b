package providers

import (
	"context"
	"strings"
	"time"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

// SimulatedName is reported by SimulatedProvider.Name.
const SimulatedName = "simulated"

// SimulatedProvider returns fixed demo conditions for any city. It stands in
// when no provider credential is configured.
type SimulatedProvider struct {
	now func() time.Time
}

func NewSimulatedProvider() *SimulatedProvider {
	return &SimulatedProvider{now: time.Now}
}

func (p *SimulatedProvider) Name() string {
	return SimulatedName
}

func (p *SimulatedProvider) Current(ctx context.Context, city string) (weather.CurrentWeather, error) {
	if err := ctx.Err(); err != nil {
		return weather.CurrentWeather{}, err
	}
	return weather.CurrentWeather{
		City:        strings.TrimSpace(city),
		Temperature: 22.5,
		FeelsLike:   22.5,
		Description: "partly cloudy",
		Icon:        "02d",
		Condition:   weather.ConditionCloudy,
		Humidity:    65,
		WindSpeed:   3.2,
		Visibility:  10000,
		ObservedAt:  p.now().UTC(),
	}, nil
}

func (p *SimulatedProvider) Forecast(ctx context.Context, city string, days int) (weather.Forecast, error) {
	if err := ctx.Err(); err != nil {
		return weather.Forecast{}, err
	}
	today := p.now().UTC()
	out := weather.Forecast{City: strings.TrimSpace(city)}
	for i := 1; i <= days; i++ {
		d := today.AddDate(0, 0, i)
		out.Days = append(out.Days, weather.DailyForecast{
			Date:        d.Format(time.DateOnly),
			Day:         d.Weekday().String()[:3],
			High:        24 + float64(i%3),
			Low:         15 + float64(i%2),
			Description: "Partly cloudy",
			Icon:        "02d",
			Condition:   weather.ConditionCloudy,
		})
	}
	return out, nil
}
