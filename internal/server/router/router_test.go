package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shankarelec/stocktrack/internal/auth"
	"github.com/shankarelec/stocktrack/internal/config"
	inventoryrepo "github.com/shankarelec/stocktrack/internal/repository/inventory"
	"github.com/shankarelec/stocktrack/internal/server/handlers"
	"github.com/shankarelec/stocktrack/internal/service/sales"
	"github.com/shankarelec/stocktrack/internal/service/stock"
	"github.com/shankarelec/stocktrack/internal/service/views"
)

type testApp struct {
	engine *gin.Engine
	store  *stock.Store
	token  string
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	provider := auth.NewProvider(config.AuthConfig{
		Username:  "operator",
		Password:  "secret",
		JWTSecret: "router-test-key",
		TokenTTL:  time.Hour,
	}, nil)

	repo := inventoryrepo.NewMemoryRepository()
	store := stock.NewStore(repo, nil)
	watcher := stock.NewWatcher(repo, store.Sync(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	t.Cleanup(watcher.Stop)
	go store.Run(ctx)

	unsubscribe := provider.OnAuthChange(func(user *auth.User) {
		if user != nil {
			watcher.Start()
			return
		}
		watcher.Stop()
	})
	t.Cleanup(unsubscribe)

	projector := views.NewProjector(time.UTC, 90)
	aggregator := sales.NewAggregator(time.UTC)

	inventoryHandler := handlers.NewInventoryHandler(store, projector, aggregator, nil, time.UTC, nil)
	authHandler := handlers.NewAuthHandler(provider, nil)
	engine := New(inventoryHandler, authHandler, provider, nil)

	app := &testApp{engine: engine, store: store}
	app.token = app.login(t)
	return app
}

func (a *testApp) login(t *testing.T) string {
	t.Helper()

	rec := a.do(t, http.MethodPost, "/api/login", map[string]any{
		"username": "operator",
		"password": "secret",
	}, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(t, body.Token)
	return body.Token
}

func (a *testApp) do(t *testing.T, method, path string, payload any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Buffer
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewBuffer(raw)
	} else {
		body = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	a.engine.ServeHTTP(rec, req)
	return rec
}

type listResponse struct {
	View  string `json:"view"`
	Count int    `json:"count"`
	Units []struct {
		ID          string `json:"id"`
		Model       string `json:"model"`
		Status      string `json:"status"`
		DaysInStock int    `json:"daysInStock"`
		Overdue     bool   `json:"overdue"`
	} `json:"units"`
}

func (a *testApp) listCurrent(t *testing.T) listResponse {
	t.Helper()

	rec := a.do(t, http.MethodGet, "/api/inventory?view=current", nil, a.token)
	require.Equal(t, http.StatusOK, rec.Code)

	var body listResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func today() string {
	return time.Now().UTC().Format("2006-01-02")
}

func yesterday() string {
	return time.Now().UTC().AddDate(0, 0, -1).Format("2006-01-02")
}

func TestDataRoutesRequireSession(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodGet, "/api/inventory", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = app.do(t, http.MethodGet, "/api/inventory", nil, "bogus-token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodPost, "/api/login", map[string]any{
		"username": "operator",
		"password": "nope",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateAppearsInCurrentStock(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodPost, "/api/inventory", map[string]any{
		"model":        "Galaxy S24",
		"variant":      "256GB Black",
		"imei":         "356789012345678",
		"quantity":     1,
		"purchaseDate": today(),
	}, app.token)
	require.Equal(t, http.StatusCreated, rec.Code)

	require.Eventually(t, func() bool {
		return app.listCurrent(t).Count == 1
	}, time.Second, 10*time.Millisecond)

	body := app.listCurrent(t)
	assert.Equal(t, "Galaxy S24", body.Units[0].Model)
	assert.Equal(t, "IN_STOCK", body.Units[0].Status)
	assert.Equal(t, 0, body.Units[0].DaysInStock)
	assert.False(t, body.Units[0].Overdue)
}

func TestCreateWithEmptyIMEIFails(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodPost, "/api/inventory", map[string]any{
		"model":        "Galaxy S24",
		"variant":      "256GB Black",
		"imei":         "",
		"quantity":     1,
		"purchaseDate": today(),
	}, app.token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Nothing reached the snapshot.
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, app.listCurrent(t).Count)
}

func TestSellYesterdayShowsInYesterdayWindow(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodPost, "/api/inventory", map[string]any{
		"model":        "Galaxy A15",
		"variant":      "128GB Blue",
		"imei":         "351111222233334",
		"quantity":     1,
		"purchaseDate": today(),
	}, app.token)
	require.Equal(t, http.StatusCreated, rec.Code)

	require.Eventually(t, func() bool {
		return app.listCurrent(t).Count == 1
	}, time.Second, 10*time.Millisecond)
	id := app.listCurrent(t).Units[0].ID

	rec = app.do(t, http.MethodPost, fmt.Sprintf("/api/inventory/%s/sell", id), map[string]any{
		"date": yesterday(),
	}, app.token)
	require.Equal(t, http.StatusNoContent, rec.Code)

	require.Eventually(t, func() bool {
		return app.listCurrent(t).Count == 0
	}, time.Second, 10*time.Millisecond)

	var salesBody struct {
		Units  []struct{ ID string } `json:"units"`
		Counts struct {
			Today       int `json:"today"`
			Yesterday   int `json:"yesterday"`
			MonthToDate int `json:"mtd"`
		} `json:"counts"`
	}

	rec = app.do(t, http.MethodGet, "/api/sales?window=YESTERDAY", nil, app.token)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &salesBody))
	assert.Len(t, salesBody.Units, 1)
	assert.Equal(t, 1, salesBody.Counts.Yesterday)

	rec = app.do(t, http.MethodGet, "/api/sales?window=TODAY", nil, app.token)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &salesBody))
	assert.Empty(t, salesBody.Units)
}

func TestSellTwiceConflicts(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodPost, "/api/inventory", map[string]any{
		"model":        "Pixel 8",
		"variant":      "128GB",
		"imei":         "359999888877776",
		"quantity":     1,
		"purchaseDate": today(),
	}, app.token)
	require.Equal(t, http.StatusCreated, rec.Code)

	require.Eventually(t, func() bool {
		return app.listCurrent(t).Count == 1
	}, time.Second, 10*time.Millisecond)
	id := app.listCurrent(t).Units[0].ID

	rec = app.do(t, http.MethodPost, fmt.Sprintf("/api/inventory/%s/sell", id), map[string]any{
		"date": today(),
	}, app.token)
	require.Equal(t, http.StatusNoContent, rec.Code)

	require.Eventually(t, func() bool {
		return app.listCurrent(t).Count == 0
	}, time.Second, 10*time.Millisecond)

	rec = app.do(t, http.MethodPost, fmt.Sprintf("/api/inventory/%s/return", id), map[string]any{
		"date": today(),
	}, app.token)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestSellUnknownUnit(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodPost, "/api/inventory/nope/sell", map[string]any{
		"date": today(),
	}, app.token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSellWithoutDateFails(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodPost, "/api/inventory/whatever/sell", map[string]any{}, app.token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSalesWindowValidation(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodGet, "/api/sales?window=LAST_WEEK", nil, app.token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExportUnavailableWithoutConfiguration(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodPost, "/api/export", nil, app.token)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestLogoutRevokesSession(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodPost, "/api/logout", nil, app.token)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = app.do(t, http.MethodGet, "/api/inventory", nil, app.token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
