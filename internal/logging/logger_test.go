package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	cfgpkg "github.com/moffa90/go-hella/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"INFO":    zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
	}
	for in, want := range tests {
		got, err := parseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := parseLevel("bogus")
	assert.ErrorContains(t, err, `unknown log level "bogus"`)
}

func TestInitLoggerRejectsUnknownSettings(t *testing.T) {
	_, err := InitLogger(cfgpkg.LoggingConfig{Level: "loud"})
	assert.Error(t, err)

	_, err = InitLogger(cfgpkg.LoggingConfig{Level: "info", Format: "xml"})
	assert.ErrorContains(t, err, `unknown log format "xml"`)

	l, err := InitLogger(cfgpkg.LoggingConfig{})
	require.NoError(t, err)
	assert.NotNil(t, l)
}

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	l, err := newLogger(cfgpkg.LoggingConfig{Level: "warn", Format: "json"}, &buf)
	require.NoError(t, err)

	l.Info("dropped")
	l.Warn("kept", zap.String("address", "0x41"))
	require.NoError(t, l.Sync())

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "kept", entry["msg"])
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "0x41", entry["address"])
}

func TestNewLoggerFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hella.log")
	var console bytes.Buffer
	l, err := newLogger(cfgpkg.LoggingConfig{
		Level:  "info",
		Format: "console",
		File:   cfgpkg.LumberjackConfig{Filename: path, MaxSizeMB: 1},
	}, &console)
	require.NoError(t, err)

	l.Info("bus opened")
	require.NoError(t, l.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "bus opened")
	assert.Contains(t, console.String(), "bus opened")
}

func TestForActuator(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := ForActuator(zap.New(core))

	l.Debug("memory", "address", "0x22", "value", "0x43")
	l.Warn("writing dangerous address", "address", "0x41")
	l.Error("no acknowledgment", "op", "ping")
	l.Info("session closed")

	entries := logs.All()
	require.Len(t, entries, 4)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, "0x22", entries[0].ContextMap()["address"])
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, "ping", entries[2].ContextMap()["op"])
	assert.Equal(t, "session closed", entries[3].Message)
}
