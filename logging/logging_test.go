package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/codetix2020-hash/finanzasmarketing-sub001/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	log, closer, err := New(config.LoggingConfig{
		Level:    "info",
		Format:   "json",
		Output:   "file",
		FilePath: path,
		MaxSize:  1,
	}, "production")
	require.NoError(t, err)

	log.Debug("hidden")
	log.Info("event recorded", zap.String("organization_id", "org-1"))
	_ = log.Sync()
	require.NoError(t, closer.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "event recorded", entry["msg"])
	assert.Equal(t, "org-1", entry["organization_id"])
	assert.Equal(t, "production", entry["environment"])
	assert.Contains(t, entry, "timestamp")
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	_, _, err := New(config.LoggingConfig{Level: "loud", Output: "stdout"}, "development")
	assert.Error(t, err)

	_, _, err = New(config.LoggingConfig{Level: "info", Output: "syslog"}, "development")
	assert.Error(t, err)
}

func TestNewStdout(t *testing.T) {
	log, closer, err := New(config.LoggingConfig{Level: "debug", Format: "text", Output: "stdout", EnableCaller: true}, "development")
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zap.DebugLevel))
	assert.NoError(t, closer.Close())
}
