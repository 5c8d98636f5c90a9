package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/team-todo-api/internal/constants"
	"github.com/yukikurage/team-todo-api/internal/logger"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observedLogger() (*logger.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return logger.FromZap(zap.New(core), "test"), logs
}

func TestRequestLogger_TagsAuthenticatedUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	log, logs := observedLogger()

	router := gin.New()
	router.Use(RequestLogger(log))
	router.GET("/todos", func(c *gin.Context) {
		c.Set(constants.ContextKeyUserID, uint64(42))
		RequestLog(c, log).Info("handler ran")
		c.Status(http.StatusNotFound)
	})

	req := httptest.NewRequest(http.MethodGet, "/todos", nil)
	req.Header.Set(constants.HeaderRequestID, "req-1")
	router.ServeHTTP(httptest.NewRecorder(), req)

	entries := logs.All()
	require.Len(t, entries, 2)
	for _, entry := range entries {
		fields := entry.ContextMap()
		assert.Equal(t, "req-1", fields["request_id"], entry.Message)
		assert.EqualValues(t, 42, fields["user_id"], entry.Message)
	}
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
}

func TestRequestLog_AnonymousRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	log, logs := observedLogger()

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	RequestLog(c, log).Info("no user yet")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.NotContains(t, fields, "user_id")
	assert.NotContains(t, fields, "request_id")
}
