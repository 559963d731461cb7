package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DreamFulFil/Automatic-Equity-Trader-sub005/src/execution"
	"github.com/DreamFulFil/Automatic-Equity-Trader-sub005/src/portfolio"
	"github.com/DreamFulFil/Automatic-Equity-Trader-sub005/src/risk"
)

func testDeps() Deps {
	state := portfolio.NewState(100000)
	state.ApplyFill("AAPL", 100, 150, "TECHNOLOGY")
	state.MarkPrice("AAPL", 155)

	analytics := execution.NewAnalytics()
	analytics.Observe(execution.Record{Symbol: "AAPL", Side: "BUY", ExpectedPrice: 150, FillPrice: 150.15, Filled: true})

	return Deps{
		State:     state,
		PnL:       portfolio.NewPnLTracker(5000, 15000, 3000),
		Limits:    risk.NewLimitsManager(risk.DefaultLimits()),
		Analytics: analytics,
	}
}

func doRequest(t *testing.T, deps Deps, method, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	router := NewRouter(deps)
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealthcheck(t *testing.T) {
	rec := doRequest(t, testDeps(), http.MethodGet, "/healthcheck", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestPositionsEndpoint(t *testing.T) {
	rec := doRequest(t, testDeps(), http.MethodGet, "/positions", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Equity    float64 `json:"equity"`
		Positions []struct {
			Symbol   string `json:"symbol"`
			Quantity int64  `json:"quantity"`
		} `json:"positions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))

	// 100 shares marked from 150 to 155: +500 unrealized.
	assert.InDelta(t, 100500, payload.Equity, 0.001)
	require.Len(t, payload.Positions, 1)
	assert.Equal(t, "AAPL", payload.Positions[0].Symbol)
	assert.Equal(t, int64(100), payload.Positions[0].Quantity)
}

func TestPnLEndpoint(t *testing.T) {
	deps := testDeps()
	deps.PnL.RecordPnL(-1200)

	rec := doRequest(t, deps, http.MethodGet, "/pnl", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.InDelta(t, -1200, payload["daily_pnl"].(float64), 0.001)
	assert.Equal(t, false, payload["halted"])
}

func TestSlippageEndpoint(t *testing.T) {
	rec := doRequest(t, testDeps(), http.MethodGet, "/slippage/AAPL", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var stats execution.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.Fills)
	assert.InDelta(t, 10.0, stats.MeanSlippage, 0.001)
}

func TestGetRiskSettings(t *testing.T) {
	rec := doRequest(t, testDeps(), http.MethodGet, "/risk/settings", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var limits risk.Limits
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &limits))
	assert.Equal(t, int64(1000), limits.MaxSharesPerTrade)
}

func TestPutRiskSettingsUpdatesLimits(t *testing.T) {
	deps := testDeps()
	body := []byte(`{
		"max_shares_per_trade": 500,
		"daily_loss_limit": 2500,
		"weekly_loss_limit": 10000,
		"intraday_loss_limit": 1500,
		"max_sector_exposure_pct": 0.15,
		"max_adv_participation_pct": 0.03,
		"min_average_daily_volume": 200000,
		"updated_by": "ops"
	}`)

	rec := doRequest(t, deps, http.MethodPut, "/risk/settings", body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(500), deps.Limits.Current().MaxSharesPerTrade)
	assert.InDelta(t, 0.15, deps.Limits.Current().MaxSectorExposurePct, 0.0001)
}

func TestPutRiskSettingsRejectsInvalid(t *testing.T) {
	deps := testDeps()
	body := []byte(`{"max_sector_exposure_pct": 7.5}`)

	rec := doRequest(t, deps, http.MethodPut, "/risk/settings", body)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	// Last known good limits survive.
	assert.InDelta(t, 0.20, deps.Limits.Current().MaxSectorExposurePct, 0.0001)
}

func TestPutRiskSettingsBadPayload(t *testing.T) {
	rec := doRequest(t, testDeps(), http.MethodPut, "/risk/settings", []byte("{bad"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAllocationPreview(t *testing.T) {
	deps := testDeps()
	body := []byte(`{"weights":{"AAPL":0.5,"MSFT":0.3}}`)

	rec := doRequest(t, deps, http.MethodPost, "/allocation/preview", body)
	require.Equal(t, http.StatusOK, rec.Code)

	var plan struct {
		Actions []struct {
			Symbol   string `json:"symbol"`
			Quantity int64  `json:"quantity"`
		} `json:"actions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &plan))
	// MSFT has no price marked, so only AAPL sizes.
	require.Len(t, plan.Actions, 1)
	assert.Equal(t, "AAPL", plan.Actions[0].Symbol)
}

func TestAllocationPreviewBadPayload(t *testing.T) {
	rec := doRequest(t, testDeps(), http.MethodPost, "/allocation/preview", []byte(`{}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestManualHaltToggle(t *testing.T) {
	deps := testDeps()

	rec := doRequest(t, deps, http.MethodPost, "/risk/halt", []byte(`{"halt":true}`))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, deps.PnL.TradingHalted())
	assert.Equal(t, "manual_stop", deps.PnL.HaltReason())

	rec = doRequest(t, deps, http.MethodPost, "/risk/halt", []byte(`{"halt":false}`))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, deps.PnL.TradingHalted())
}
