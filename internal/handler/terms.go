package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"lend/internal/application"
	"lend/internal/terms"
	pkgerrors "lend/pkg/errors"
	"lend/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
)

type TermsHandler struct {
	engine    *terms.Engine
	apps      *application.Service
	validator *validator.Validator
	logger    Logger
}

func NewTermsHandler(engine *terms.Engine, apps *application.Service, val *validator.Validator, log Logger) *TermsHandler {
	return &TermsHandler{engine: engine, apps: apps, validator: val, logger: log}
}

type quoteRequest struct {
	Principal            decimal.Decimal `json:"principal" validate:"required"`
	DayRatePercent       decimal.Decimal `json:"day_rate_percent" validate:"required"`
	Days                 int             `json:"days" validate:"required,min=1"`
	ProcessingFeePercent decimal.Decimal `json:"processing_fee_percent" validate:"required"`
	Installments         int             `json:"installments" validate:"omitempty,min=1,max=12"`
}

// Quote prices a prospective loan.
func (h *TermsHandler) Quote(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if errs := h.validator.ValidateStructured(&req); errs != nil {
		h.respondValidationErrors(w, errs)
		return
	}
	if req.Installments < 1 {
		req.Installments = 1
	}

	quote, err := h.engine.Compute(req.Principal, req.DayRatePercent, req.Days, req.ProcessingFeePercent, req.Installments)
	if err != nil {
		h.respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	h.respondJSON(w, http.StatusOK, quote)
}

type emiRequest struct {
	Principal         decimal.Decimal `json:"principal" validate:"required"`
	AnnualRatePercent decimal.Decimal `json:"annual_rate_percent" validate:"required"`
	Months            int             `json:"months" validate:"required,min=1,max=120"`
}

// EMI returns the illustrative amortized monthly figure. Display only; the
// authoritative cost comes from Quote.
func (h *TermsHandler) EMI(w http.ResponseWriter, r *http.Request) {
	var req emiRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if errs := h.validator.ValidateStructured(&req); errs != nil {
		h.respondValidationErrors(w, errs)
		return
	}

	emi := terms.IllustrativeEMI(req.Principal, req.AnnualRatePercent, req.Months)
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"emi":    emi,
		"months": req.Months,
	})
}

// KFS builds the key-facts sheet for a disbursed application.
func (h *TermsHandler) KFS(w http.ResponseWriter, r *http.Request) {
	applicationID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid application id")
		return
	}

	app, err := h.apps.Find(r.Context(), applicationID)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrApplicationNotFound) {
			h.respondError(w, http.StatusNotFound, "application not found")
			return
		}
		h.logger.Error("Failed to load application for KFS", map[string]interface{}{"error": err.Error()})
		h.respondError(w, http.StatusInternalServerError, "Failed to build KFS")
		return
	}

	kfs, err := h.engine.BuildKFS(app)
	if err != nil {
		h.respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	h.respondJSON(w, http.StatusOK, kfs)
}

func (h *TermsHandler) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func (h *TermsHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}

func (h *TermsHandler) respondValidationErrors(w http.ResponseWriter, errs map[string]string) {
	h.respondJSON(w, http.StatusBadRequest, map[string]interface{}{"errors": errs})
}
