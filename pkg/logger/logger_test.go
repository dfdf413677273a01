package logger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apperrors "github.com/creatorhub/support-backend/pkg/errors"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestNewZapLogger_Levels(t *testing.T) {
	tests := []struct {
		level    string
		expected zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"warn", zapcore.WarnLevel},
		{"", zapcore.InfoLevel},
		{"nonsense", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logger, err := NewZapLogger(Config{Level: tt.level, Output: "stderr"})
			assert.NoError(t, err)
			assert.True(t, logger.Core().Enabled(tt.expected))
			if tt.expected > zapcore.DebugLevel {
				assert.False(t, logger.Core().Enabled(tt.expected-1))
			}
		})
	}
}

func TestWithEchoLogger_WritesPublicMessageOnly(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	e := echo.New()
	WithEchoLogger(e, zap.New(core))

	e.POST("/create-razorpay-order", func(c echo.Context) error {
		return apperrors.NewAppError(apperrors.ErrProvider, "Failed to create order",
			apperrors.New("razorpay: BAD_REQUEST_ERROR Authentication failed"))
	})

	req := httptest.NewRequest(http.MethodPost, "/create-razorpay-order", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Failed to create order"}`, rec.Body.String())

	entries := logs.FilterMessage("HTTP error").All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
		assert.Contains(t, entries[0].ContextMap()["error"], "Authentication failed")
		assert.Equal(t, apperrors.ErrProvider, entries[0].ContextMap()["error_code"])
	}
}

func TestWithEchoLogger_UnknownRoute(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	e := echo.New()
	WithEchoLogger(e, zap.New(core))

	req := httptest.NewRequest(http.MethodGet, "/missing", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Not Found"}`, rec.Body.String())

	entries := logs.FilterMessage("HTTP error").All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
		assert.Equal(t, apperrors.ErrNotFound, entries[0].ContextMap()["error_code"])
	}
}

func TestMaskHeaders(t *testing.T) {
	masked := maskHeaders(map[string][]string{
		"Authorization":   {"Bearer eyJhbGciOiJIUzI1NiJ9.payload.signature"},
		"Idempotency-Key": {"order-key-0001"},
	})

	assert.Equal(t, "Bearer eyJ...ature", masked["Authorization"])
	assert.Equal(t, "order-key-0001", masked["Idempotency-Key"])

	short := maskHeaders(map[string][]string{"Authorization": {"Bearer x"}})
	assert.Equal(t, "[MASKED]", short["Authorization"])
}

func TestGormLogger_Trace(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewGormLogger(zap.New(core), gormlogger.Warn, 10*time.Millisecond, true)
	sql := func() (string, int64) { return "SELECT 1", 1 }

	l.Trace(context.Background(), time.Now(), sql, gorm.ErrRecordNotFound)
	assert.Equal(t, 0, logs.Len())

	l.Trace(context.Background(), time.Now().Add(-time.Second), sql, nil)
	assert.Equal(t, 1, logs.FilterMessage("Slow query").Len())

	l.Trace(context.Background(), time.Now(), sql, assert.AnError)
	assert.Equal(t, 1, logs.FilterMessage("Query failed").Len())

	silent := l.LogMode(gormlogger.Silent)
	silent.Trace(context.Background(), time.Now(), sql, assert.AnError)
	assert.Equal(t, 2, logs.Len())
}
