package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("json handler filters by level", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := New(&buf, "warn", "JSON")
		require.NoError(t, err)

		logger.Info("dropped")
		logger.Warn("kept", "game", "g1")

		var line map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
		assert.Equal(t, "kept", line["msg"])
		assert.Equal(t, "g1", line["game"])
	})

	t.Run("text handler", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := New(&buf, "debug", "text")
		require.NoError(t, err)
		logger.Debug("hello", "column", 3)
		assert.Contains(t, buf.String(), "column=3")
	})

	t.Run("bad input", func(t *testing.T) {
		_, err := New(&bytes.Buffer{}, "loud", "text")
		assert.ErrorContains(t, err, "invalid log level")
		_, err = New(&bytes.Buffer{}, "info", "xml")
		assert.ErrorContains(t, err, "invalid log format")
	})
}
