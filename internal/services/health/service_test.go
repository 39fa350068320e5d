package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusWithSQLAndRedis(t *testing.T) {
	conn, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	mock.ExpectPing()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	svc := NewService(SQL("database", conn), Redis("cache", rdb))
	report := svc.Status(context.Background())

	assert.True(t, report.OK)
	assert.Equal(t, map[string]string{"database": StateUp, "cache": StateUp}, report.Checks)
	require.NoError(t, mock.ExpectationsWereMet())
	assert.Equal(t, []string{"cache", "database"}, svc.Names())
}

func TestStatusReportsDownAndDisabled(t *testing.T) {
	svc := NewService(
		Disabled("database"),
		Checker{Name: "cache", Check: func(context.Context) error { return errors.New("dial tcp: refused") }},
	)
	report := svc.Status(context.Background())

	assert.False(t, report.OK)
	assert.Equal(t, StateDisabled, report.Checks["database"])
	assert.Equal(t, StateDown, report.Checks["cache"])
}

func TestRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r, NewService(Disabled("database")))

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"status":"ok","service":"hairalyzer-api"}`, resp.Body.String())

	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"ok":true,"checks":{"database":"disabled"}}`, resp.Body.String())

	down := gin.New()
	RegisterRoutes(down, NewService(Checker{Name: "database", Check: func(context.Context) error { return errors.New("down") }}))
	resp = httptest.NewRecorder()
	down.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
}
