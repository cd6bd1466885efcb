// internal/observability/logger_test.go
package observability

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/xkilldash9x/outbreak-cli/internal/config"
)

// -- Test Helper Functions --

// lockedBuffer is a goroutine safe sink for the console core.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) Sync() error { return nil }

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func initToBuffer(t *testing.T, cfg config.LoggerConfig) *lockedBuffer {
	t.Helper()
	ResetForTest()
	t.Cleanup(ResetForTest)
	sink := &lockedBuffer{}
	Initialize(cfg, zapcore.AddSync(sink))
	return sink
}

// -- Test Cases --

func TestInitialize(t *testing.T) {
	t.Run("should initialize console logger with colors", func(t *testing.T) {
		sink := initToBuffer(t, config.LoggerConfig{
			Level:       "debug",
			Format:      "console",
			ServiceName: "outbreak",
			Colors:      config.ColorConfig{Info: "green"},
		})

		GetLogger().Named("trials").Info("Trial progress", zap.Int("completed", 3))
		Sync()

		output := sink.String()
		assert.Contains(t, output, "Trial progress")
		assert.Contains(t, output, colorMap["green"]+"INFO"+colorReset, "Info level should be colorized green")
		assert.Contains(t, output, "outbreak.trials.", "component names carry a trailing dot")
		assert.Contains(t, output, `"completed": 3`)
	})

	t.Run("should leave uncolored levels plain", func(t *testing.T) {
		sink := initToBuffer(t, config.LoggerConfig{Level: "debug", Format: "console"})
		GetLogger().Debug("plain")
		Sync()

		assert.Contains(t, sink.String(), "DEBUG")
		assert.NotContains(t, sink.String(), colorReset)
	})

	t.Run("should initialize json logger", func(t *testing.T) {
		sink := initToBuffer(t, config.LoggerConfig{
			Level:       "info",
			Format:      "json",
			ServiceName: "JSONTest",
		})
		GetLogger().Warn("This is a JSON message.", zap.String("key", "value"))
		Sync()

		var logEntry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(sink.String()), &logEntry), "Log output should be valid JSON")

		assert.Equal(t, "WARN", logEntry["level"])
		assert.Equal(t, "JSONTest", logEntry["logger"])
		assert.Equal(t, "This is a JSON message.", logEntry["msg"])
		assert.Equal(t, "value", logEntry["key"])
	})

	t.Run("should honour the configured level", func(t *testing.T) {
		sink := initToBuffer(t, config.LoggerConfig{Level: "warn", Format: "json"})
		GetLogger().Info("hidden")
		GetLogger().Error("shown")
		Sync()

		assert.NotContains(t, sink.String(), "hidden")
		assert.Contains(t, sink.String(), "shown")
	})

	t.Run("should fall back to info on an unknown level", func(t *testing.T) {
		sink := initToBuffer(t, config.LoggerConfig{Level: "chatty", Format: "json"})
		GetLogger().Debug("hidden")
		Sync()

		assert.Contains(t, sink.String(), "Unknown log level")
		assert.NotContains(t, sink.String(), "hidden")
	})

	t.Run("should write to a log file if configured", func(t *testing.T) {
		logPath := filepath.Join(t.TempDir(), "outbreak.log")
		initToBuffer(t, config.LoggerConfig{
			Level:   "debug",
			Format:  "console",
			LogFile: logPath,
			MaxSize: 1,
		})
		GetLogger().Error("This should go to the file.")
		Sync()

		content, err := os.ReadFile(logPath)
		require.NoError(t, err)
		assert.Contains(t, string(content), "This should go to the file.")
		// The file sink is always JSON regardless of console format.
		firstLine := strings.SplitN(string(content), "\n", 2)[0]
		assert.True(t, json.Valid([]byte(firstLine)), "file entries must be JSON: %s", firstLine)
	})

	t.Run("should only initialize once", func(t *testing.T) {
		sink := initToBuffer(t, config.LoggerConfig{Level: "info", Format: "json", ServiceName: "First"})
		logger1 := GetLogger()

		Initialize(config.LoggerConfig{Level: "debug", ServiceName: "Second"}, zapcore.AddSync(&lockedBuffer{}))
		logger2 := GetLogger()

		assert.Same(t, logger1, logger2)
		logger2.Info("test")
		Sync()

		assert.Contains(t, sink.String(), "First")
		assert.NotContains(t, sink.String(), "Second")
	})
}

func TestGetLogger(t *testing.T) {
	t.Run("should return a fallback logger if not initialized", func(t *testing.T) {
		ResetForTest()
		logger := GetLogger()
		require.NotNil(t, logger)
		assert.Nil(t, globalLogger.Load(), "the fallback is never stored globally")
	})

	t.Run("should return the global logger after initialization", func(t *testing.T) {
		initToBuffer(t, config.LoggerConfig{Level: "info", ServiceName: "GlobalTest"})
		assert.Same(t, globalLogger.Load(), GetLogger())
	})
}
