package web_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitos/fib_bracket/internal/domain"
	"github.com/vitos/fib_bracket/internal/usecase"
	"github.com/vitos/fib_bracket/internal/web"
	"go.uber.org/zap"
)

type MockRunRepo struct {
	Runs     []*domain.Run
	Err      error
	GotLimit int
}

func (m *MockRunRepo) SaveRun(ctx context.Context, run *domain.Run) (int64, error) {
	m.Runs = append(m.Runs, run)
	return int64(len(m.Runs)), nil
}

func (m *MockRunRepo) GetRun(ctx context.Context, id int64) (*domain.Run, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	for _, r := range m.Runs {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *MockRunRepo) ListRuns(ctx context.Context, limit int) ([]*domain.Run, error) {
	m.GotLimit = limit
	return m.Runs, m.Err
}

func newTestServer(repo *MockRunRepo) http.Handler {
	planner := usecase.NewOrderPlanner("GOLD.i#", 0.01)
	return web.NewServer(0, repo, planner, zap.NewNop()).Handler()
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandleLevels(t *testing.T) {
	h := newTestServer(&MockRunRepo{})

	rec := get(t, h, "/api/levels?high=2740&low=2750")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body struct {
		Prices     domain.PricePair   `json:"prices"`
		Levels     []domain.Level     `json:"levels"`
		Trade      domain.TradeLevels `json:"trade"`
		Orders     domain.OrderPair   `json:"orders"`
		Degenerate bool               `json:"degenerate"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	assert.Equal(t, domain.PricePair{High: 2750, Low: 2740}, body.Prices)
	require.Len(t, body.Levels, 5)
	assert.Equal(t, 2755.0, body.Levels[0].Price)
	assert.Equal(t, domain.MultAbove, body.Levels[0].Multiplier)
	assert.Equal(t, 2735.0, body.Levels[4].Price)
	assert.Equal(t, 2745.0, body.Trade.Entry)

	assert.Equal(t, domain.SideBuyStop, body.Orders.Buy.Side)
	assert.Equal(t, "GOLD.i#", body.Orders.Buy.Symbol)
	assert.Equal(t, 2755.0, body.Orders.Buy.TakeProfit)
	assert.Equal(t, 2745.0, body.Orders.Buy.StopLoss)
	assert.Equal(t, 0.01, body.Orders.Buy.Volume)
	assert.Equal(t, 2735.0, body.Orders.Sell.TakeProfit)
	assert.False(t, body.Degenerate)
}

func TestHandleLevels_BadInput(t *testing.T) {
	h := newTestServer(&MockRunRepo{})

	for _, target := range []string{
		"/api/levels",
		"/api/levels?high=abc&low=2740",
		"/api/levels?high=2750",
		"/api/levels?high=NaN&low=2740",
		"/api/levels?high=2750&low=-Inf",
		"/api/levels?high=1e308&low=-1e308",
	} {
		rec := get(t, h, target)
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
		assert.NotEmpty(t, rec.Body.String(), target)
	}
}

func TestHandleListRuns(t *testing.T) {
	repo := &MockRunRepo{Runs: []*domain.Run{
		{ID: 2, Mode: domain.ModeParallel, Symbol: "GOLD.i#", CreatedAt: time.Unix(1767592800, 0).UTC()},
		{ID: 1, Mode: domain.ModeChartOnly, Symbol: "GOLD.i#", CreatedAt: time.Unix(1767591000, 0).UTC()},
	}}
	h := newTestServer(repo)

	rec := get(t, h, "/api/runs?limit=5")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, repo.GotLimit)

	var runs []domain.Run
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &runs))
	require.Len(t, runs, 2)
	assert.Equal(t, int64(2), runs[0].ID)

	get(t, h, "/api/runs")
	assert.Equal(t, 20, repo.GotLimit)

	rec = get(t, h, "/api/runs?limit=-1")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleListRuns_Empty(t *testing.T) {
	rec := get(t, newTestServer(&MockRunRepo{}), "/api/runs")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestHandleListRuns_StoreError(t *testing.T) {
	rec := get(t, newTestServer(&MockRunRepo{Err: errors.New("disk I/O error")}), "/api/runs")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHandleGetRun(t *testing.T) {
	repo := &MockRunRepo{Runs: []*domain.Run{{ID: 7, Mode: domain.ModeSequential}}}
	h := newTestServer(repo)

	rec := get(t, h, "/api/runs/7")
	require.Equal(t, http.StatusOK, rec.Code)
	var run domain.Run
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &run))
	assert.Equal(t, domain.ModeSequential, run.Mode)

	assert.Equal(t, http.StatusNotFound, get(t, h, "/api/runs/8").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, h, "/api/runs/x").Code)
}

func TestHandleStatus(t *testing.T) {
	rec := get(t, newTestServer(&MockRunRepo{}), "/status")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
