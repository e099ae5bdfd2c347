package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"lend/internal/application"
	"lend/internal/middleware"
	pkgerrors "lend/pkg/errors"
	"lend/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
)

// Logger is the logging capability handlers need.
type Logger interface {
	Info(message string, fields map[string]interface{})
	Warn(message string, fields map[string]interface{})
	Error(message string, fields map[string]interface{})
}

type ApplicationHandler struct {
	service   *application.Service
	validator *validator.Validator
	logger    Logger
}

func NewApplicationHandler(service *application.Service, val *validator.Validator, log Logger) *ApplicationHandler {
	return &ApplicationHandler{service: service, validator: val, logger: log}
}

type submitApplicationRequest struct {
	Principal    decimal.Decimal `json:"principal" validate:"required"`
	Purpose      string          `json:"purpose" validate:"required,min=3,max=200"`
	Installments int             `json:"installments" validate:"omitempty,min=1,max=12"`
}

// Submit opens a new loan application for the authenticated user.
func (h *ApplicationHandler) Submit(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req submitApplicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if errs := h.validator.ValidateStructured(&req); errs != nil {
		h.respondValidationErrors(w, errs)
		return
	}

	app, err := h.service.Submit(r.Context(), userID, req.Principal, req.Purpose, req.Installments)
	if err != nil {
		h.respondSubmitError(w, userID, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, app)
}

// respondSubmitError maps business errors to structured responses; holds
// carry the full verdict so the client can render a specific message.
func (h *ApplicationHandler) respondSubmitError(w http.ResponseWriter, userID uuid.UUID, err error) {
	var holdErr *application.HoldError
	if errors.As(err, &holdErr) {
		h.respondJSON(w, http.StatusConflict, map[string]interface{}{
			"error": "application blocked",
			"hold":  holdErr.Info,
		})
		return
	}

	switch {
	case errors.Is(err, pkgerrors.ErrActiveApplicationExists):
		h.respondError(w, http.StatusConflict, "an application is already in progress")
	case errors.Is(err, pkgerrors.ErrLimitExceeded):
		h.respondError(w, http.StatusUnprocessableEntity, "requested amount exceeds the loan limit")
	case errors.Is(err, pkgerrors.ErrInvalidPrincipal):
		h.respondError(w, http.StatusUnprocessableEntity, "requested amount must be positive")
	case errors.Is(err, pkgerrors.ErrUserNotFound), errors.Is(err, pkgerrors.ErrUserDeleted):
		h.respondError(w, http.StatusNotFound, "user not found")
	default:
		h.logger.Error("Application submission failed", map[string]interface{}{
			"error":   err.Error(),
			"user_id": userID.String(),
		})
		h.respondError(w, http.StatusInternalServerError, "Failed to submit application")
	}
}

// List returns the authenticated user's applications, most recent first.
func (h *ApplicationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	apps, err := h.service.List(r.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to list applications", map[string]interface{}{"error": err.Error()})
		h.respondError(w, http.StatusInternalServerError, "Failed to list applications")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"applications": apps,
		"total":        len(apps),
	})
}

type updateStepRequest struct {
	Step string `json:"step" validate:"required,min=1,max=50"`
}

// UpdateStep records form progress on an application.
func (h *ApplicationHandler) UpdateStep(w http.ResponseWriter, r *http.Request) {
	applicationID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid application id")
		return
	}

	var req updateStepRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if errs := h.validator.ValidateStructured(&req); errs != nil {
		h.respondValidationErrors(w, errs)
		return
	}

	if err := h.service.UpdateStep(r.Context(), applicationID, req.Step); err != nil {
		if errors.Is(err, pkgerrors.ErrApplicationNotFound) {
			h.respondError(w, http.StatusNotFound, "application not found")
			return
		}
		h.logger.Error("Failed to update step", map[string]interface{}{"error": err.Error()})
		h.respondError(w, http.StatusInternalServerError, "Failed to update step")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]string{"step": req.Step})
}

// QuoteExtension prices the next due-date extension without applying it.
func (h *ApplicationHandler) QuoteExtension(w http.ResponseWriter, r *http.Request) {
	applicationID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid application id")
		return
	}

	quote, err := h.service.QuoteExtension(r.Context(), applicationID, time.Now().UTC())
	if err != nil {
		h.respondExtensionError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, quote)
}

// ApplyExtension applies the next due-date extension.
func (h *ApplicationHandler) ApplyExtension(w http.ResponseWriter, r *http.Request) {
	applicationID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid application id")
		return
	}

	quote, err := h.service.ApplyExtension(r.Context(), applicationID, time.Now().UTC())
	if err != nil {
		h.respondExtensionError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, quote)
}

func (h *ApplicationHandler) respondExtensionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, pkgerrors.ErrApplicationNotFound):
		h.respondError(w, http.StatusNotFound, "application not found")
	case errors.Is(err, pkgerrors.ErrExtensionLimitReached):
		h.respondError(w, http.StatusConflict, "extension limit reached")
	case errors.Is(err, pkgerrors.ErrLoanNotDisbursed):
		h.respondError(w, http.StatusConflict, "loan has not been disbursed")
	case errors.Is(err, pkgerrors.ErrInvalidExtensionIndex):
		h.respondError(w, http.StatusUnprocessableEntity, "invalid extension")
	default:
		h.logger.Error("Extension failed", map[string]interface{}{"error": err.Error()})
		h.respondError(w, http.StatusInternalServerError, "Failed to process extension")
	}
}

// Dashboard returns the cached home-screen summary.
func (h *ApplicationHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	d, err := h.service.GetDashboard(r.Context(), userID)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrUserNotFound) {
			h.respondError(w, http.StatusNotFound, "user not found")
			return
		}
		h.logger.Error("Failed to build dashboard", map[string]interface{}{"error": err.Error()})
		h.respondError(w, http.StatusInternalServerError, "Failed to load dashboard")
		return
	}

	h.respondJSON(w, http.StatusOK, d)
}

func (h *ApplicationHandler) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func (h *ApplicationHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}

func (h *ApplicationHandler) respondValidationErrors(w http.ResponseWriter, errs map[string]string) {
	h.respondJSON(w, http.StatusBadRequest, map[string]interface{}{"errors": errs})
}
