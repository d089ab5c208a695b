package client

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpapi "github.com/i474232898/weather-dashboard/internal/api/http"
	"github.com/i474232898/weather-dashboard/internal/store"
	"github.com/i474232898/weather-dashboard/internal/weather"
	"github.com/i474232898/weather-dashboard/internal/weather/providers"
)

// fiberTransport routes client requests straight into an in-process Fiber app.
type fiberTransport struct {
	app *fiber.App
}

func (f fiberTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return f.app.Test(req, -1)
}

func newBackedClient(t *testing.T) *Client {
	t.Helper()
	svc := weather.NewService(store.NewMemoryStore(weather.MaxHistory), []weather.Provider{providers.NewSimulatedProvider()})
	app := fiber.New()
	httpapi.RegisterRoutes(app.Group("/api/weather"), svc)

	return New("http://backend.test/api/weather/", &http.Client{Transport: fiberTransport{app: app}})
}

func TestClientRoundTrip(t *testing.T) {
	c := newBackedClient(t)
	ctx := context.Background()

	res, err := c.Search(ctx, "Lisbon")
	require.NoError(t, err)
	assert.Equal(t, "Lisbon", res.Get("weather.city").String())
	assert.True(t, res.Get("note").Exists())

	_, err = c.Search(ctx, "lisbon")
	require.NoError(t, err)

	hist, err := c.History(ctx, "LIS", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), hist.Get("total").Int())
	assert.Len(t, hist.Get("history").Array(), 1)
	assert.Equal(t, "weather-cli", hist.Get("history.0.clientTag").String())

	pop, err := c.Popular(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), pop.Get("popularCities.0.searchCount").Int())

	stats, err := c.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Get("stats.uniqueCities").Int())

	fc, err := c.Forecast(ctx, "Lisbon", 2)
	require.NoError(t, err)
	assert.Len(t, fc.Get("forecast.days").Array(), 2)

	_, err = c.ClearHistory(ctx)
	require.NoError(t, err)
	stats, err = c.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.Get("stats.totalSearches").Int())
}

func TestClientSurfacesAPIError(t *testing.T) {
	c := newBackedClient(t)

	_, err := c.Search(context.Background(), "  ")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.NotEmpty(t, apiErr.Message)
}

func TestClientSuggestDecodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/weather/suggest", r.URL.Path)
		assert.Equal(t, "Spr", r.URL.Query().Get("q"))
		w.Write([]byte(`{"success":true,"suggestions":[
			{"name":"Springfield","state":"Illinois","country":"US","lat":39.8,"lon":-89.6},
			{"name":"Springfield","state":"Missouri","country":"US","lat":37.2,"lon":-93.3}
		]}`))
	}))
	defer srv.Close()

	c := New(srv.URL+"/api/weather", srv.Client())
	got, err := c.Suggest(context.Background(), "Spr", 5)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Springfield, Missouri, US", got[1].Label())
}

func TestClientRejectsNonJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer srv.Close()

	_, err := New(srv.URL, srv.Client()).Stats(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
}

func TestRenderers(t *testing.T) {
	c := newBackedClient(t)
	ctx := context.Background()

	res, err := c.Search(ctx, "Oslo")
	require.NoError(t, err)

	var buf bytes.Buffer
	RenderSearch(&buf, res)
	assert.Contains(t, buf.String(), "Oslo")
	assert.Contains(t, buf.String(), "22.5°C")
	assert.Contains(t, buf.String(), "note:")

	buf.Reset()
	hist, err := c.History(ctx, "", 0)
	require.NoError(t, err)
	RenderHistory(&buf, hist)
	assert.Contains(t, buf.String(), "1 of 1 matching searches")
	assert.Contains(t, buf.String(), "partly cloudy")

	buf.Reset()
	pop, err := c.Popular(ctx)
	require.NoError(t, err)
	RenderPopular(&buf, pop)
	assert.Contains(t, buf.String(), "1.")

	buf.Reset()
	stats, err := c.Stats(ctx)
	require.NoError(t, err)
	RenderStats(&buf, stats)
	assert.Contains(t, buf.String(), "Average per day")
}
