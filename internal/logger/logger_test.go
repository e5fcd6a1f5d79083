package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func newBufferedJSONLogger(buf *bytes.Buffer) *zap.Logger {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(buf),
		zapcore.DebugLevel,
	)
	return zap.New(core, zap.Fields(zap.String("service", serviceName)))
}

func TestProperty_ToyEventsAreStructured(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("log entries are JSON with level, timestamp, message and fields", prop.ForAll(
		func(message string, toyID string, level string) bool {
			var buf bytes.Buffer
			logger := newBufferedJSONLogger(&buf)

			fields := []zap.Field{zap.String("toy_id", toyID)}
			switch level {
			case "debug":
				logger.Debug(message, fields...)
			case "warn":
				logger.Warn(message, fields...)
			case "error":
				logger.Error(message, fields...)
			default:
				logger.Info(message, fields...)
			}

			var entry map[string]interface{}
			if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
				return false
			}

			for _, key := range []string{"level", "timestamp", "msg", "service", "toy_id"} {
				if _, ok := entry[key]; !ok {
					return false
				}
			}

			return entry["msg"] == message && entry["toy_id"] == toyID && entry["level"] == level
		},
		gen.AlphaString(),
		gen.Identifier(),
		gen.OneConstOf("debug", "info", "warn", "error"),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestNew_Environments(t *testing.T) {
	for _, env := range []string{"production", "development", "test"} {
		logger, err := New(env, "")
		if err != nil {
			t.Fatalf("New(%q) returned error: %v", env, err)
		}
		if logger == nil {
			t.Fatalf("New(%q) returned nil logger", env)
		}
	}
}

func TestNew_LevelOverride(t *testing.T) {
	logger, err := New("production", "warn")
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}

	if logger.Core().Enabled(zapcore.InfoLevel) {
		t.Error("info level should be disabled when LOG_LEVEL=warn")
	}
	if !logger.Core().Enabled(zapcore.WarnLevel) {
		t.Error("warn level should be enabled when LOG_LEVEL=warn")
	}
}

func TestNew_InvalidLevelKeepsDefault(t *testing.T) {
	logger, err := New("production", "loud")
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}

	if !logger.Core().Enabled(zapcore.InfoLevel) {
		t.Error("production default level should be info")
	}
}
