package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"clipmemo-sync-server/internal/domain"
	"clipmemo-sync-server/internal/middleware"
	"clipmemo-sync-server/internal/service"
	"clipmemo-sync-server/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

type ClipHandler struct {
	service  *service.ClipboardService
	validate *validator.Validate
}

func NewClipHandler(service *service.ClipboardService) *ClipHandler {
	return &ClipHandler{
		service:  service,
		validate: validator.New(),
	}
}

func (h *ClipHandler) Record(w http.ResponseWriter, r *http.Request) {
	var req domain.RecordClipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.JSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
		return
	}

	if err := h.validate.Struct(req); err != nil {
		response.JSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	userID := middleware.GetUserID(r)

	clip, err := h.service.Record(userID, &req)
	if err != nil {
		response.JSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to record clip"})
		return
	}

	response.JSON(w, http.StatusCreated, clip)
}

func (h *ClipHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			response.JSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid limit"})
			return
		}
		limit = parsed
	}

	clips, err := h.service.List(userID, domain.Category(r.URL.Query().Get("category")), limit)
	if err != nil {
		if err.Error() == "unknown category" {
			response.JSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		response.JSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to list clips"})
		return
	}

	response.JSON(w, http.StatusOK, clips)
}

// Correct stores the user's category override for a misclassified clip.
func (h *ClipHandler) Correct(w http.ResponseWriter, r *http.Request) {
	clipID := mux.Vars(r)["id"]
	if clipID == "" {
		response.JSON(w, http.StatusBadRequest, map[string]string{"error": "Clip ID is required"})
		return
	}

	var req domain.CorrectClipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.JSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
		return
	}

	if err := h.validate.Struct(req); err != nil {
		response.JSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	userID := middleware.GetUserID(r)

	clip, err := h.service.Correct(userID, clipID, req.Category)
	if err != nil {
		if err.Error() == "unauthorized: clip does not belong to user" {
			response.JSON(w, http.StatusForbidden, map[string]string{"error": err.Error()})
			return
		}
		if err.Error() == "unknown category" {
			response.JSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		response.JSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to correct clip"})
		return
	}

	response.JSON(w, http.StatusOK, clip)
}

func (h *ClipHandler) Delete(w http.ResponseWriter, r *http.Request) {
	clipID := mux.Vars(r)["id"]
	if clipID == "" {
		response.JSON(w, http.StatusBadRequest, map[string]string{"error": "Clip ID is required"})
		return
	}

	userID := middleware.GetUserID(r)

	if err := h.service.Delete(userID, clipID); err != nil {
		if err.Error() == "unauthorized: clip does not belong to user" {
			response.JSON(w, http.StatusForbidden, map[string]string{"error": err.Error()})
			return
		}
		response.JSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to delete clip"})
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "Clip deleted successfully"})
}

// Prune drops the caller's expired temporary clips.
func (h *ClipHandler) Prune(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)

	deleted, err := h.service.Prune(userID)
	if err != nil {
		response.JSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to prune clips"})
		return
	}

	response.JSON(w, http.StatusOK, map[string]int{"deleted": deleted})
}

// SuggestMemo pre-fills a save-as-memo form from an existing clip.
func (h *ClipHandler) SuggestMemo(w http.ResponseWriter, r *http.Request) {
	clipID := mux.Vars(r)["id"]
	if clipID == "" {
		response.JSON(w, http.StatusBadRequest, map[string]string{"error": "Clip ID is required"})
		return
	}

	userID := middleware.GetUserID(r)

	suggestion, err := h.service.SuggestMemo(userID, clipID)
	if err != nil {
		if err.Error() == "unauthorized: clip does not belong to user" {
			response.JSON(w, http.StatusForbidden, map[string]string{"error": err.Error()})
			return
		}
		response.JSON(w, http.StatusNotFound, map[string]string{"error": "Clip not found"})
		return
	}

	response.JSON(w, http.StatusOK, suggestion)
}
