package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"odds-arb-calculator/internal/alerts"
	"odds-arb-calculator/internal/arb"
	"odds-arb-calculator/internal/logging"
	"odds-arb-calculator/internal/market"
	"odds-arb-calculator/internal/odds"
	"odds-arb-calculator/internal/scenarios"
	"odds-arb-calculator/pkg/models"
)

// Handler contains dependencies for HTTP handlers
type Handler struct {
	bufferBps float64
	store     *scenarios.Store // nil when presets are disabled
	notifier  *alerts.Notifier
	validate  *validator.Validate
	log       *logrus.Entry
}

// NewHandler creates a new handler. store may be nil.
func NewHandler(bufferBps float64, store *scenarios.Store, notifier *alerts.Notifier) *Handler {
	return &Handler{
		bufferBps: bufferBps,
		store:     store,
		notifier:  notifier,
		validate:  validator.New(),
		log:       logging.WithComponent("http"),
	}
}

// HealthCheck returns service health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "oddscalc",
	})
}

// ConvertOdds applies one field edit and returns all four representations.
// The caller may send back the previous state so a rejected edit leaves the
// other fields as they were.
func (h *Handler) ConvertOdds(w http.ResponseWriter, r *http.Request) {
	var req models.ConvertRequest
	if !h.decode(w, r, &req) {
		return
	}

	format, err := odds.ParseFormat(req.Format)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	conv := odds.NewConverter()
	if req.State != nil {
		state, err := req.State.ToState()
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		conv = odds.NewConverterFromState(state)
	}

	c := conv.Set(format, req.Value)
	respondJSON(w, http.StatusOK, models.NewConversionView(c))
}

// CalculateArb prices the two legs and sizes the position.
func (h *Handler) CalculateArb(w http.ResponseWriter, r *http.Request) {
	var req models.ArbRequest
	if !h.decode(w, r, &req) {
		return
	}

	raw := h.withDefaults(req.RawInputs)
	in := arb.ParseInputs(raw)
	if len(req.NoLevels) > 0 {
		if best, ok := market.BestLevel(req.NoLevels); ok {
			in.Book.No = best
		}
	}

	resp := h.evaluate("http", raw, in, odds.VigMethod(req.VigMethod))
	if req.Mirror != nil {
		mirrored := in.Mirrored(arb.ParseSportsbook(req.Mirror.Format, req.Mirror.Odds, req.Mirror.MaxStake))
		res := arb.Compute(mirrored)
		h.notifier.AlertArb("http-mirror", res)
		view := models.NewResultView(res)
		resp.Mirror = &view
	}

	respondJSON(w, http.StatusOK, resp)
}

// ListScenarios returns all saved scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	if !h.requireStore(w) {
		return
	}
	list, err := h.store.List()
	if err != nil {
		h.log.WithError(err).Error("listing scenarios")
		respondError(w, http.StatusInternalServerError, "failed to list scenarios")
		return
	}
	if list == nil {
		list = []scenarios.Scenario{}
	}
	respondJSON(w, http.StatusOK, list)
}

// CreateScenario saves a named set of inputs.
func (h *Handler) CreateScenario(w http.ResponseWriter, r *http.Request) {
	if !h.requireStore(w) {
		return
	}
	var req models.CreateScenarioRequest
	if !h.decode(w, r, &req) {
		return
	}

	sc, err := h.store.Save(scenarios.Scenario{
		Name:   strings.TrimSpace(req.Name),
		Notes:  req.Notes,
		Inputs: h.withDefaults(req.Inputs),
	})
	if err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.log.WithError(err).Error("saving scenario")
		respondError(w, http.StatusInternalServerError, "failed to save scenario")
		return
	}

	h.log.WithFields(logrus.Fields{"id": sc.ID, "name": sc.Name}).Info("Scenario saved")
	respondJSON(w, http.StatusCreated, sc)
}

// GetScenario returns one scenario.
func (h *Handler) GetScenario(w http.ResponseWriter, r *http.Request) {
	sc, ok := h.loadScenario(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, sc)
}

// DeleteScenario removes one scenario.
func (h *Handler) DeleteScenario(w http.ResponseWriter, r *http.Request) {
	if !h.requireStore(w) {
		return
	}
	id := chi.URLParam(r, "id")
	if err := h.store.Delete(id); err != nil {
		h.storeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// EvaluateScenario recomputes a saved scenario against its stored inputs.
func (h *Handler) EvaluateScenario(w http.ResponseWriter, r *http.Request) {
	sc, ok := h.loadScenario(w, r)
	if !ok {
		return
	}
	method := odds.VigMethod(r.URL.Query().Get("vig"))
	switch method {
	case "", odds.VigProportional, odds.VigPower:
	default:
		respondError(w, http.StatusBadRequest, fmt.Sprintf("unknown vig method %q", method))
		return
	}

	raw := h.withDefaults(sc.Inputs)
	respondJSON(w, http.StatusOK, h.evaluate("scenario:"+sc.ID, raw, arb.ParseInputs(raw), method))
}

func (h *Handler) evaluate(source string, raw arb.RawInputs, in arb.Inputs, method odds.VigMethod) models.ArbResponse {
	res := arb.Compute(in)
	h.notifier.AlertArb(source, res)
	return models.NewArbResponse(raw, in, res, method)
}

// withDefaults fills omitted fields, deriving a missing YES or NO price from
// the other and taking the buffer from configuration.
func (h *Handler) withDefaults(raw arb.RawInputs) arb.RawInputs {
	if raw.BufferBps == "" {
		raw.BufferBps = strconv.FormatFloat(h.bufferBps, 'f', -1, 64)
	}
	return raw.SyncComplement().WithDefaults()
}

func (h *Handler) loadScenario(w http.ResponseWriter, r *http.Request) (scenarios.Scenario, bool) {
	if !h.requireStore(w) {
		return scenarios.Scenario{}, false
	}
	sc, err := h.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		h.storeError(w, err)
		return scenarios.Scenario{}, false
	}
	return sc, true
}

func (h *Handler) requireStore(w http.ResponseWriter) bool {
	if h.store == nil {
		respondError(w, http.StatusServiceUnavailable, "scenario storage is disabled")
		return false
	}
	return true
}

func (h *Handler) storeError(w http.ResponseWriter, err error) {
	if errors.Is(err, scenarios.ErrNotFound) {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	h.log.WithError(err).Error("scenario store")
	respondError(w, http.StatusInternalServerError, "scenario store error")
}

// decode reads and validates a JSON body, writing a 400 on failure.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return false
	}
	return true
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
