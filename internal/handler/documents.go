package handler

import (
	"encoding/json"
	"net/http"

	"lend/internal/documents"
	"lend/internal/gate"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type DocumentsHandler struct {
	validations gate.ValidationSource
	uploads     gate.DocumentSource
	logger      Logger
}

func NewDocumentsHandler(validations gate.ValidationSource, uploads gate.DocumentSource, log Logger) *DocumentsHandler {
	return &DocumentsHandler{validations: validations, uploads: uploads, logger: log}
}

// Pending resolves the latest need_document request against uploads on
// file. Fetch errors degrade to "nothing pending": the gate owns the same
// fail-open policy and a document check must never block the user.
func (h *DocumentsHandler) Pending(w http.ResponseWriter, r *http.Request) {
	applicationID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid application id")
		return
	}

	actions, err := h.validations.GetValidationHistory(r.Context(), applicationID)
	if err != nil {
		h.logger.Warn("Validation history fetch failed, treating as no pending documents", map[string]interface{}{
			"error":          err.Error(),
			"application_id": applicationID.String(),
		})
		h.respondJSON(w, http.StatusOK, map[string]interface{}{"pending": []string{}, "all_satisfied": true})
		return
	}

	requested := documents.LatestRequest(actions)
	if len(requested) == 0 {
		h.respondJSON(w, http.StatusOK, map[string]interface{}{"pending": []string{}, "all_satisfied": true})
		return
	}

	uploads, err := h.uploads.GetUploadedDocuments(r.Context(), applicationID)
	if err != nil {
		h.logger.Warn("Uploaded documents fetch failed, treating as no pending documents", map[string]interface{}{
			"error":          err.Error(),
			"application_id": applicationID.String(),
		})
		h.respondJSON(w, http.StatusOK, map[string]interface{}{"pending": []string{}, "all_satisfied": true})
		return
	}

	pending := documents.Pending(requested, uploads)
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"requested":     requested,
		"pending":       pending,
		"all_satisfied": len(pending) == 0,
	})
}

func (h *DocumentsHandler) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func (h *DocumentsHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
