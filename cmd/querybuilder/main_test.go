package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBootstrapLogger(t *testing.T) {
	var buf bytes.Buffer
	l := newBootstrapLogger(&buf)

	l.Error().Str("step", "config").Msg("failed to load config")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "error", line["level"])
	assert.Equal(t, "querybuilder", line["service"])
	assert.Equal(t, "config", line["step"])
	assert.Contains(t, line, "time")
}
