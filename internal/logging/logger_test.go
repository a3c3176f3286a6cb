package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithComponentAddsField(t *testing.T) {
	var buf bytes.Buffer
	closer := Configure(Config{Level: "debug", Output: &buf})
	defer closer.Close()

	log := WithComponent("session")
	log.Info().Int("pid", 42).Msg("guest launched")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "session", entry["component"])
	assert.Equal(t, "guest launched", entry["message"])
	assert.EqualValues(t, 42, entry["pid"])
}

func TestUnknownLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	closer := Configure(Config{Level: "chatty", Output: &buf})
	defer closer.Close()

	log := Base()
	log.Debug().Msg("hidden")
	log.Info().Msg("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
}

func TestFileOutput(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	closer := Configure(Config{Dir: dir})
	log := Base()
	log.Warn().Msg("embedding failed")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(filepath.Join(dir, FileName))
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "embedding failed"))
}
