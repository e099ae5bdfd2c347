package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"lend/internal/domain"
	"lend/internal/eligibility"
	"lend/internal/middleware"
	pkgerrors "lend/pkg/errors"
	"lend/pkg/validator"
)

type EligibilityHandler struct {
	service   *eligibility.Service
	users     eligibility.UserRepository
	validator *validator.Validator
	logger    Logger
}

func NewEligibilityHandler(service *eligibility.Service, users eligibility.UserRepository, val *validator.Validator, log Logger) *EligibilityHandler {
	return &EligibilityHandler{service: service, users: users, validator: val, logger: log}
}

// Evaluate re-runs the eligibility rules for the authenticated user and
// persists the verdict. Called after profile completion or profile edits.
func (h *EligibilityHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	decision, err := h.service.EvaluateProfile(r.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, pkgerrors.ErrUserNotFound), errors.Is(err, pkgerrors.ErrUserDeleted):
			h.respondError(w, http.StatusNotFound, "user not found")
		default:
			h.logger.Error("Eligibility evaluation failed", map[string]interface{}{
				"error":   err.Error(),
				"user_id": userID.String(),
			})
			h.respondError(w, http.StatusInternalServerError, "Failed to evaluate eligibility")
		}
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"eligibility_status": decision.Eligibility,
		"loan_limit":         decision.LoanLimit,
		"hold":               decision.Hold,
		"rejected":           decision.Rejected,
		"reason":             decision.Reason,
	})
}

// HoldStatus returns the structured hold verdict for the authenticated user.
func (h *EligibilityHandler) HoldStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	user, err := h.users.FindByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrUserNotFound) {
			h.respondError(w, http.StatusNotFound, "user not found")
			return
		}
		h.logger.Error("Failed to load user", map[string]interface{}{"error": err.Error()})
		h.respondError(w, http.StatusInternalServerError, "Failed to load hold status")
		return
	}

	info := h.service.HoldStatus(user, time.Now().UTC())
	h.respondJSON(w, http.StatusOK, info)
}

type graduationRequest struct {
	GraduationStatus domain.GraduationStatus `json:"graduation_status" validate:"required,oneof=not_graduated graduated"`
	GraduationDate   *time.Time              `json:"graduation_date,omitempty"`
}

// UpdateGraduation applies the one-way student upsell.
func (h *EligibilityHandler) UpdateGraduation(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req graduationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if errs := h.validator.ValidateStructured(&req); errs != nil {
		h.respondValidationErrors(w, errs)
		return
	}

	graduatedAt := time.Now().UTC()
	if req.GraduationDate != nil {
		graduatedAt = *req.GraduationDate
	}

	newLimit, err := h.service.UpdateGraduationStatus(r.Context(), userID, req.GraduationStatus, graduatedAt)
	if err != nil {
		switch {
		case errors.Is(err, pkgerrors.ErrGraduationDowngrade):
			h.respondError(w, http.StatusConflict, "graduation status cannot be reverted")
		case errors.Is(err, pkgerrors.ErrGraduationNotStudent):
			h.respondError(w, http.StatusUnprocessableEntity, "graduation applies to student accounts only")
		case errors.Is(err, pkgerrors.ErrUserNotFound):
			h.respondError(w, http.StatusNotFound, "user not found")
		default:
			h.logger.Error("Graduation update failed", map[string]interface{}{
				"error":   err.Error(),
				"user_id": userID.String(),
			})
			h.respondError(w, http.StatusInternalServerError, "Failed to update graduation status")
		}
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{"new_loan_limit": newLimit})
}

func (h *EligibilityHandler) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func (h *EligibilityHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}

func (h *EligibilityHandler) respondValidationErrors(w http.ResponseWriter, errs map[string]string) {
	h.respondJSON(w, http.StatusBadRequest, map[string]interface{}{"errors": errs})
}
