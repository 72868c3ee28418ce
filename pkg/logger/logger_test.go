package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetOutputJSON(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, "json")
	SetLevel("debug")
	t.Cleanup(func() {
		SetLevel("info")
		SetFormat("console")
	})

	Component("scheduler").Debug().Int64("user_id", 7).Msg("sweep")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "scheduler", entry["component"])
	assert.Equal(t, "spivot", entry["service"])
	assert.Equal(t, float64(7), entry["user_id"])
}

func TestSetLevelFallsBackToInfo(t *testing.T) {
	SetLevel("loud")
	t.Cleanup(func() { SetLevel("info") })
	assert.Equal(t, zerolog.InfoLevel, Log.GetLevel())
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}
