package logger

import (
	"testing"

	"github.com/deppfellow/adboard/internal/config"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNewLoggerService_WithoutLicenseKey(t *testing.T) {
	ls := NewLoggerService(config.DefaultObservabilityConfig())

	assert.NotNil(t, ls)
	assert.Nil(t, ls.GetApplication())
	assert.NotPanics(t, ls.Shutdown)
}

func TestLoggerService_NilSafe(t *testing.T) {
	var ls *LoggerService

	assert.Nil(t, ls.GetApplication())
	assert.NotPanics(t, ls.Shutdown)
}

func TestNewLoggerWithConfig_Level(t *testing.T) {
	cfg := config.DefaultObservabilityConfig()
	cfg.Logging.Level = "warn"

	l := NewLoggerWithConfig(cfg)
	assert.Equal(t, zerolog.WarnLevel, l.GetLevel())

	l = NewLogger("error", true)
	assert.Equal(t, zerolog.ErrorLevel, l.GetLevel())
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zerolog.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zerolog.InfoLevel, parseLevel("chatty"))
}

func TestGetPgxTraceLogLevel(t *testing.T) {
	assert.Equal(t, int(tracelog.LogLevelDebug), GetPgxTraceLogLevel(zerolog.DebugLevel))
	assert.Equal(t, int(tracelog.LogLevelWarn), GetPgxTraceLogLevel(zerolog.WarnLevel))
	assert.Equal(t, int(tracelog.LogLevelNone), GetPgxTraceLogLevel(zerolog.Disabled))
}

func TestWithTraceContext_NoTransaction(t *testing.T) {
	base := zerolog.Nop()
	assert.Equal(t, base, WithTraceContext(base, nil))
}
