package main

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/i474232898/weather-dashboard/internal/config"
	"github.com/i474232898/weather-dashboard/internal/weather/providers"
)

func providerNames(cfg *config.AppConfig) []string {
	var names []string
	for _, p := range buildProviders(cfg, http.DefaultClient) {
		names = append(names, p.Name())
	}
	return names
}

func TestBuildProvidersSimulatedWithoutKeys(t *testing.T) {
	cfg := &config.AppConfig{Providers: []string{"openweathermap", "weatherapi"}}
	assert.Equal(t, []string{providers.SimulatedName}, providerNames(cfg))
}

func TestBuildProvidersSkipsMissingKeys(t *testing.T) {
	cfg := &config.AppConfig{
		Providers:     []string{"openweathermap", "weatherapi", "openmeteo"},
		WeatherAPIKey: "k",
	}
	assert.Equal(t, []string{"weatherapi", "openmeteo"}, providerNames(cfg))
}
