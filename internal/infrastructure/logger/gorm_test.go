package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func TestGormLogger_Trace(t *testing.T) {
	query := func() (string, int64) { return "SELECT * FROM items", 3 }

	tests := []struct {
		name    string
		level   gormlogger.LogLevel
		begin   time.Time
		err     error
		wantMsg string
		wantLvl zapcore.Level
	}{
		{"error", gormlogger.Warn, time.Now(), errors.New("boom"), "SQL error", zapcore.ErrorLevel},
		{"slow", gormlogger.Warn, time.Now().Add(-time.Second), nil, "Slow SQL", zapcore.WarnLevel},
		{"query at info", gormlogger.Info, time.Now(), nil, "SQL query", zapcore.DebugLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, recorded := observer.New(zapcore.DebugLevel)
			l := NewGormLogger(zap.New(core), tt.level, 200*time.Millisecond)

			l.Trace(WithRequestID(context.Background(), "req-7"), tt.begin, query, tt.err)

			require.Len(t, recorded.All(), 1)
			entry := recorded.All()[0]
			assert.Equal(t, tt.wantMsg, entry.Message)
			assert.Equal(t, tt.wantLvl, entry.Level)
			assert.Equal(t, "req-7", entry.ContextMap()["request_id"])
			assert.Equal(t, int64(3), entry.ContextMap()["rows"])
		})
	}
}

func TestGormLogger_SkipsQuietCases(t *testing.T) {
	query := func() (string, int64) { return "SELECT 1", 1 }
	core, recorded := observer.New(zapcore.DebugLevel)
	l := NewGormLogger(zap.New(core), gormlogger.Warn, 200*time.Millisecond)

	l.Trace(context.Background(), time.Now(), query, gormlogger.ErrRecordNotFound)
	l.Trace(context.Background(), time.Now(), query, nil)
	l.LogMode(gormlogger.Silent).Trace(context.Background(), time.Now(), query, errors.New("boom"))

	assert.Empty(t, recorded.All())
}

func TestGormLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, GormLevel("silent"))
	assert.Equal(t, gormlogger.Error, GormLevel("error"))
	assert.Equal(t, gormlogger.Info, GormLevel("debug"))
	assert.Equal(t, gormlogger.Warn, GormLevel("warn"))
	assert.Equal(t, gormlogger.Warn, GormLevel(""))
}
