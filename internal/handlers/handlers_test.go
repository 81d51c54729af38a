package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"odds-arb-calculator/internal/alerts"
	"odds-arb-calculator/internal/arb"
	"odds-arb-calculator/internal/market"
	"odds-arb-calculator/internal/odds"
	"odds-arb-calculator/internal/scenarios"
	"odds-arb-calculator/pkg/models"
)

func newTestServer(t *testing.T, store *scenarios.Store) *httptest.Server {
	t.Helper()
	h := NewHandler(20, store, alerts.NewNotifier(time.Minute))
	srv := httptest.NewServer(NewRouter(h, RouterOptions{RequestTimeout: 5 * time.Second}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestStore(t *testing.T) *scenarios.Store {
	t.Helper()
	store, err := scenarios.NewStore(filepath.Join(t.TempDir(), "scenarios.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func do(t *testing.T, srv *httptest.Server, method, path string, body any) (*http.Response, []byte) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, srv.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out bytes.Buffer
	_, err = out.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp, out.Bytes()
}

func scenarioBInputs() arb.RawInputs {
	return arb.RawInputs{
		SportsbookOdds: "2.2",
		SportsbookMax:  "2500",
		NotionalFee:    "0",
		ProfitFee:      "0",
		YesPrice:       "0.60",
		NoPrice:        "0.40",
		NoQuantity:     "8000",
	}
}

func TestHealthCheck(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, body := do(t, srv, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"healthy","service":"oddscalc"}`, string(body))
}

func TestConvertOdds(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, body := do(t, srv, http.MethodPost, "/api/v1/odds/convert",
		models.ConvertRequest{Format: "american", Value: "150"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var view models.ConversionView
	require.NoError(t, json.Unmarshal(body, &view))
	assert.Equal(t, odds.OutcomeApplied, view.Outcome)
	assert.InDelta(t, 0.4, float64(view.Probability), 1e-12)
	assert.InDelta(t, 40.0, float64(view.State.Percentage.Display), 1e-9)
	assert.InDelta(t, 2.5, float64(view.State.Decimal.Display), 1e-9)
	assert.Equal(t, "3/2", view.State.Fractional.Fraction)
}

func TestConvertOddsRejectedKeepsSiblings(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, body := do(t, srv, http.MethodPost, "/api/v1/odds/convert",
		models.ConvertRequest{Format: "american", Value: "0"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var view models.ConversionView
	require.NoError(t, json.Unmarshal(body, &view))
	assert.Equal(t, odds.OutcomeRejected, view.Outcome)
	assert.NotEmpty(t, view.Error)
	assert.True(t, view.State.American.Valid)
	assert.InDelta(t, -110.0, float64(view.State.American.Display), 1e-9)

	// Siblings still show the -110 starting position.
	assert.True(t, view.State.Percentage.Valid)
	assert.InDelta(t, 52.38, float64(view.State.Percentage.Display), 1e-9)
	assert.Equal(t, "10/11", view.State.Fractional.Fraction)
}

func TestConvertOddsWithState(t *testing.T) {
	srv := newTestServer(t, nil)

	conv := odds.NewConverter()
	conv.Set(odds.FormatDecimal, "3")

	state := models.NewStateView(conv.State())
	_, body := do(t, srv, http.MethodPost, "/api/v1/odds/convert",
		models.ConvertRequest{Format: "fractional", Value: "two", State: &state})

	var view models.ConversionView
	require.NoError(t, json.Unmarshal(body, &view))
	assert.Equal(t, odds.OutcomeRejected, view.Outcome)
	assert.InDelta(t, 3.0, float64(view.State.Decimal.Display), 1e-9)
	assert.InDelta(t, 33.33, float64(view.State.Percentage.Display), 1e-9)
}

func TestConvertOddsEchoedState(t *testing.T) {
	srv := newTestServer(t, nil)

	_, body := do(t, srv, http.MethodPost, "/api/v1/odds/convert",
		models.ConvertRequest{Format: "american", Value: "150"})
	var first struct {
		State json.RawMessage `json:"state"`
	}
	require.NoError(t, json.Unmarshal(body, &first))

	// The response state goes back verbatim with a rejected edit.
	resp, body := do(t, srv, http.MethodPost, "/api/v1/odds/convert", map[string]any{
		"format": "american",
		"value":  "0",
		"state":  first.State,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var view models.ConversionView
	require.NoError(t, json.Unmarshal(body, &view))
	assert.Equal(t, odds.OutcomeRejected, view.Outcome)
	assert.InDelta(t, 150.0, float64(view.State.American.Display), 1e-9)
	assert.InDelta(t, 40.0, float64(view.State.Percentage.Display), 1e-9)
	assert.Equal(t, "3/2", view.State.Fractional.Fraction)

	// A later edit derives from the echoed state, including its fraction.
	resp, body = do(t, srv, http.MethodPost, "/api/v1/odds/convert", map[string]any{
		"format": "percentage",
		"value":  "",
		"state":  first.State,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &view))
	assert.Equal(t, "3/2", view.State.Fractional.Fraction)

	resp, _ = do(t, srv, http.MethodPost, "/api/v1/odds/convert", map[string]any{
		"format": "american",
		"value":  "150",
		"state":  map[string]any{"fractional": map[string]any{"fraction": "3/0", "valid": true}},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestConvertOddsBadRequests(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, _ := do(t, srv, http.MethodPost, "/api/v1/odds/convert",
		models.ConvertRequest{Format: "roman", Value: "1"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, srv, http.MethodPost, "/api/v1/odds/convert", models.ConvertRequest{Value: "1"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/v1/odds/convert", bytes.NewBufferString("{"))
	require.NoError(t, err)
	raw, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	raw.Body.Close()
	assert.Equal(t, http.StatusBadRequest, raw.StatusCode)
}

func TestCalculateArbDefaults(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, body := do(t, srv, http.MethodPost, "/api/v1/arb", map[string]any{})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out models.ArbResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, arb.DefaultRawInputs(), out.Inputs)
	assert.Equal(t, arb.StateNoArb, out.Result.State)
	assert.False(t, out.Result.IsArb)
	assert.Zero(t, float64(out.Result.Profit))
	assert.Nil(t, out.Mirror)

	assert.Empty(t, out.Warnings)
	assert.Equal(t, odds.VigProportional, out.Market.Method)
	assert.InDelta(t, 0.0, float64(out.Market.Overround), 1e-9)
	assert.True(t, out.Market.FairValid)
	assert.InDelta(t, 0.52, float64(out.Market.FairYes), 1e-9)
}

func TestCalculateArbFound(t *testing.T) {
	srv := newTestServer(t, nil)

	_, body := do(t, srv, http.MethodPost, "/api/v1/arb", models.ArbRequest{RawInputs: scenarioBInputs()})

	var out models.ArbResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, arb.StateArbFound, out.Result.State)
	assert.InDelta(t, 5500, float64(out.Result.K), 1e-6)
	assert.InDelta(t, 2200, float64(out.Result.StakeA), 1e-6)
	assert.InDelta(t, 2500, float64(out.Result.StakeNotA), 1e-6)
	assert.InDelta(t, 800, float64(out.Result.Profit), 1e-6)
	assert.InDelta(t, 14.545, float64(out.Result.EdgePct), 0.001)
	assert.Equal(t, "20", out.Inputs.BufferBps)
}

func TestCalculateArbUnusableLegEncodesNull(t *testing.T) {
	srv := newTestServer(t, nil)

	in := scenarioBInputs()
	in.NoPrice = "0"
	resp, body := do(t, srv, http.MethodPost, "/api/v1/arb", models.ArbRequest{RawInputs: in})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(body, &raw))
	result := raw["result"].(map[string]any)
	sideA := result["side_a"].(map[string]any)
	assert.Nil(t, sideA["cost"])
	assert.Equal(t, false, sideA["usable"])
	assert.Nil(t, result["edge"])
	assert.Equal(t, string(arb.StateNoArb), result["state"])

	warnings := raw["warnings"].([]any)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "NO leg:")
}

func TestCalculateArbDerivesMissingPrice(t *testing.T) {
	srv := newTestServer(t, nil)

	in := scenarioBInputs()
	in.YesPrice = ""
	_, body := do(t, srv, http.MethodPost, "/api/v1/arb", models.ArbRequest{RawInputs: in, VigMethod: "power"})

	var out models.ArbResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, "0.60", out.Inputs.YesPrice)
	assert.Equal(t, odds.VigPower, out.Market.Method)
	assert.True(t, out.Market.FairValid)
	assert.InDelta(t, 0.60, float64(out.Market.FairYes), 1e-6)

	resp, _ := do(t, srv, http.MethodPost, "/api/v1/arb", models.ArbRequest{VigMethod: "shin"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCalculateArbNoLevels(t *testing.T) {
	srv := newTestServer(t, nil)

	req := models.ArbRequest{
		RawInputs: scenarioBInputs(),
		NoLevels: []market.Level{
			{Price: 0.45, Quantity: 10000},
			{Price: 0.40, Quantity: 3000},
			{Price: 0.40, Quantity: 2000},
		},
	}
	_, body := do(t, srv, http.MethodPost, "/api/v1/arb", req)

	var out models.ArbResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, arb.StateArbFound, out.Result.State)
	assert.InDelta(t, 5000, float64(out.Result.SideA.MaxPayout), 1e-9)
	assert.InDelta(t, 5000, float64(out.Result.K), 1e-9)
}

func TestCalculateArbMirror(t *testing.T) {
	srv := newTestServer(t, nil)

	req := models.ArbRequest{
		RawInputs: scenarioBInputs(),
		Mirror:    &models.MirrorRequest{Format: "decimal", Odds: "1.5", MaxStake: "1000"},
	}
	_, body := do(t, srv, http.MethodPost, "/api/v1/arb", req)

	var out models.ArbResponse
	require.NoError(t, json.Unmarshal(body, &out))
	require.NotNil(t, out.Mirror)
	// YES at 0.60 on the market plus 1/1.5 on the book costs more than $1.
	assert.Equal(t, arb.StateNoArb, out.Mirror.State)
	assert.InDelta(t, 0.60, float64(out.Mirror.SideA.Cost), 1e-9)

	resp, _ := do(t, srv, http.MethodPost, "/api/v1/arb", map[string]any{"mirror": map[string]any{}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestScenariosDisabled(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, _ := do(t, srv, http.MethodGet, "/api/v1/scenarios", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestScenarioLifecycle(t *testing.T) {
	srv := newTestServer(t, newTestStore(t))

	resp, body := do(t, srv, http.MethodGet, "/api/v1/scenarios", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[]`, string(body))

	resp, _ = do(t, srv, http.MethodPost, "/api/v1/scenarios", models.CreateScenarioRequest{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = do(t, srv, http.MethodPost, "/api/v1/scenarios",
		models.CreateScenarioRequest{Name: "  longshot  ", Inputs: scenarioBInputs()})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created scenarios.Scenario
	require.NoError(t, json.Unmarshal(body, &created))
	assert.Equal(t, "longshot", created.Name)
	assert.Equal(t, "20", created.Inputs.BufferBps)
	assert.Equal(t, "6000", created.Inputs.YesQuantity)

	resp, body = do(t, srv, http.MethodGet, "/api/v1/scenarios/"+created.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got scenarios.Scenario
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, created.Inputs, got.Inputs)

	resp, body = do(t, srv, http.MethodGet, "/api/v1/scenarios/"+created.ID+"/evaluate", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var eval models.ArbResponse
	require.NoError(t, json.Unmarshal(body, &eval))
	assert.Equal(t, arb.StateArbFound, eval.Result.State)
	assert.InDelta(t, 800, float64(eval.Result.Profit), 1e-6)

	resp, body = do(t, srv, http.MethodGet, "/api/v1/scenarios/"+created.ID+"/evaluate?vig=power", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &eval))
	assert.Equal(t, odds.VigPower, eval.Market.Method)

	resp, _ = do(t, srv, http.MethodGet, "/api/v1/scenarios/"+created.ID+"/evaluate?vig=shin", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, srv, http.MethodDelete, "/api/v1/scenarios/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = do(t, srv, http.MethodGet, "/api/v1/scenarios/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = do(t, srv, http.MethodDelete, "/api/v1/scenarios/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
