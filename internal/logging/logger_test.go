package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitWriterJSON(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	var buf bytes.Buffer
	InitWriter(&buf, "weather-dashboard", "production", "warn")

	log.Info().Msg("dropped")
	log.Warn().Str("city", "Oslo").Msg("kept")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "kept", entry["message"])
	assert.Equal(t, "weather-dashboard", entry["service"])
	assert.Equal(t, "Oslo", entry["city"])
}

func TestInitWriterUnknownLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, "svc", "production", "chatty")
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}
