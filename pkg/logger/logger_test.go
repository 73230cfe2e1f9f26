package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, "info", "json")

	log.Info("server started", "port", "3000")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "server started", entry["msg"])
	assert.Equal(t, "3000", entry["port"])
	assert.Equal(t, "INFO", entry["level"])
}

func TestTextFormat(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, "info", "text")

	log.Warn("cache unavailable")

	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "cache unavailable")
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, "warn", "json")

	log.Debug("not emitted")
	log.Info("not emitted either")
	assert.Zero(t, buf.Len())

	log.Error("emitted")
	assert.Contains(t, buf.String(), "emitted")
}

func TestWithAttachesAttributes(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, "info", "json").With("service", "leadpipe-api")

	log.Info("request", "status", "200")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "leadpipe-api", entry["service"])
	assert.Equal(t, "200", entry["status"])
}
