package httpapi

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/i474232898/weather-dashboard/internal/weather"
	"github.com/i474232898/weather-dashboard/internal/weather/providers"
)

var validate = validator.New()

// SimulatedNote accompanies search results produced without a live provider.
const SimulatedNote = "Using simulated data. Configure an OpenWeatherMap API key for live weather."

// RegisterRoutes wires the HTTP handlers into router, usually a group mounted at
// the configured API prefix.
func RegisterRoutes(router fiber.Router, service *weather.Service) {
	router.Post("/search", func(c *fiber.Ctx) error {
		var req searchRequest
		if err := c.BodyParser(&req); err != nil {
			return fail(c, fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return fail(c, fiber.StatusBadRequest, "City is required")
		}

		clientTag := c.Get(fiber.HeaderUserAgent)
		res, err := service.Search(c.UserContext(), req.City, clientTag)
		if err != nil {
			return respondError(c, err)
		}

		body := fiber.Map{
			"success":  true,
			"weather":  res.Weather,
			"searchId": res.SearchID,
		}
		if res.Provider == providers.SimulatedName {
			body["note"] = SimulatedNote
		}
		return c.JSON(body)
	})

	router.Get("/history", func(c *fiber.Ctx) error {
		var q historyQuery
		if err := q.bind(c); err != nil {
			return fail(c, fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(q); err != nil {
			return fail(c, fiber.StatusBadRequest, "limit must be a positive integer")
		}

		records, total := service.History(weather.HistoryFilter{
			CityContains: q.City,
			Limit:        q.Limit,
		})
		return c.JSON(fiber.Map{
			"success": true,
			"total":   total,
			"history": records,
		})
	})

	router.Get("/popular", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"success":       true,
			"popularCities": service.Popular(weather.DefaultTopCities),
		})
	})

	router.Get("/stats", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"success": true,
			"stats":   service.Stats(),
		})
	})

	router.Delete("/history", func(c *fiber.Ctx) error {
		service.Clear()
		return c.JSON(fiber.Map{
			"success": true,
			"message": "Search history cleared",
		})
	})

	router.Get("/forecast", func(c *fiber.Ctx) error {
		q := forecastQuery{
			City: c.Query("city"),
			Days: c.QueryInt("days", 5),
		}
		if err := validate.Struct(q); err != nil {
			return fail(c, fiber.StatusBadRequest, "city is required and days must be between 1 and 5")
		}

		forecast, err := service.Forecast(c.UserContext(), q.City, q.Days)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{
			"success":  true,
			"forecast": forecast,
		})
	})

	router.Get("/suggest", func(c *fiber.Ctx) error {
		q := suggestQuery{
			Query: c.Query("q"),
			Limit: c.QueryInt("limit", weather.DefaultSuggestLimit),
		}
		if err := validate.Struct(q); err != nil {
			return fail(c, fiber.StatusBadRequest, "limit must be between 1 and 10")
		}

		suggestions, err := service.Suggest(c.UserContext(), q.Query, q.Limit)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{
			"success":     true,
			"suggestions": suggestions,
		})
	})
}

type searchRequest struct {
	City string `json:"city" validate:"required"`
}

// historyQuery holds query parameters for the history endpoint.
type historyQuery struct {
	City  string
	Limit int `validate:"min=1"`
}

func (h *historyQuery) bind(c *fiber.Ctx) error {
	h.City = c.Query("city")
	h.Limit = weather.DefaultHistoryLimit
	if c.Query("limit") == "" {
		return nil
	}
	limit := c.QueryInt("limit", 0)
	if limit == 0 {
		return errors.New("limit must be a positive integer")
	}
	h.Limit = limit
	return nil
}

type forecastQuery struct {
	City string `validate:"required"`
	Days int    `validate:"min=1,max=5"`
}

type suggestQuery struct {
	Query string
	Limit int `validate:"min=1,max=10"`
}

// StatusFor translates a service error into an HTTP status code.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, weather.ErrBadRequest):
		return fiber.StatusBadRequest
	case errors.Is(err, weather.ErrCityNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, weather.ErrInvalidCredential):
		return fiber.StatusBadGateway
	case errors.Is(err, weather.ErrUpstreamUnavailable):
		return fiber.StatusServiceUnavailable
	case errors.Is(err, weather.ErrNotSupported):
		return fiber.StatusNotImplemented
	default:
		return fiber.StatusInternalServerError
	}
}

func respondError(c *fiber.Ctx, err error) error {
	status := StatusFor(err)
	msg := publicMessage(err, status)
	log.Warn().
		Err(err).
		Int("status", status).
		Interface("request_id", c.Locals("requestid")).
		Msg("request failed")
	return fail(c, status, msg)
}

// publicMessage keeps upstream details out of client responses.
func publicMessage(err error, status int) string {
	switch status {
	case fiber.StatusBadRequest:
		return err.Error()
	case fiber.StatusNotFound:
		return "City not found"
	case fiber.StatusBadGateway:
		return "Weather provider rejected the API credential"
	case fiber.StatusServiceUnavailable:
		return "Weather provider is unavailable, please try again later"
	case fiber.StatusNotImplemented:
		return "Not supported by the configured weather providers"
	default:
		return "Failed to fetch weather data"
	}
}

func fail(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error":   msg,
	})
}
