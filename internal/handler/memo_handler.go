package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"clipmemo-sync-server/internal/domain"
	"clipmemo-sync-server/internal/middleware"
	"clipmemo-sync-server/internal/service"
	"clipmemo-sync-server/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

type MemoHandler struct {
	service  *service.MemoService
	validate *validator.Validate
}

func NewMemoHandler(service *service.MemoService) *MemoHandler {
	return &MemoHandler{
		service:  service,
		validate: validator.New(),
	}
}

func (h *MemoHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateMemoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.JSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
		return
	}

	if err := h.validate.Struct(req); err != nil {
		response.JSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	userID := middleware.GetUserID(r)

	memo, err := h.service.Create(userID, &req)
	if err != nil {
		if err.Error() == "unknown category" {
			response.JSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		response.JSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to create memo"})
		return
	}

	response.JSON(w, http.StatusCreated, memo)
}

// List returns the user's memos. ?category= narrows to one category and
// ?favorites=true narrows to favorites.
func (h *MemoHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)

	var (
		memos []*domain.MemoResponse
		err   error
	)

	switch {
	case r.URL.Query().Get("favorites") == "true":
		memos, err = h.service.ListFavorites(userID)
	case r.URL.Query().Get("category") != "":
		memos, err = h.service.ListByCategory(userID, domain.Category(r.URL.Query().Get("category")))
	default:
		memos, err = h.service.List(userID)
	}

	if err != nil {
		if err.Error() == "unknown category" {
			response.JSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		response.JSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to list memos"})
		return
	}

	response.JSON(w, http.StatusOK, memos)
}

func (h *MemoHandler) Get(w http.ResponseWriter, r *http.Request) {
	memoID := mux.Vars(r)["id"]
	if memoID == "" {
		response.JSON(w, http.StatusBadRequest, map[string]string{"error": "Memo ID is required"})
		return
	}

	userID := middleware.GetUserID(r)

	memo, err := h.service.GetByID(userID, memoID)
	if err != nil {
		if err.Error() == "unauthorized: memo does not belong to user" {
			response.JSON(w, http.StatusForbidden, map[string]string{"error": err.Error()})
			return
		}
		response.JSON(w, http.StatusNotFound, map[string]string{"error": "Memo not found"})
		return
	}

	response.JSON(w, http.StatusOK, memo)
}

func (h *MemoHandler) Update(w http.ResponseWriter, r *http.Request) {
	memoID := mux.Vars(r)["id"]
	if memoID == "" {
		response.JSON(w, http.StatusBadRequest, map[string]string{"error": "Memo ID is required"})
		return
	}

	var req domain.UpdateMemoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.JSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
		return
	}

	userID := middleware.GetUserID(r)

	memo, err := h.service.Update(userID, memoID, &req)
	if err != nil {
		if err.Error() == "unauthorized: memo does not belong to user" {
			response.JSON(w, http.StatusForbidden, map[string]string{"error": err.Error()})
			return
		}
		var conflictErr *service.ConflictError
		if errors.As(err, &conflictErr) {
			response.JSON(w, http.StatusConflict, map[string]interface{}{
				"error":          "version_conflict",
				"server_version": conflictErr.ServerVersion,
				"client_version": conflictErr.ClientVersion,
				"server":         conflictErr.Server,
			})
			return
		}
		if err.Error() == "unknown category" {
			response.JSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		response.JSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to update memo"})
		return
	}

	response.JSON(w, http.StatusOK, memo)
}

func (h *MemoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	memoID := mux.Vars(r)["id"]
	if memoID == "" {
		response.JSON(w, http.StatusBadRequest, map[string]string{"error": "Memo ID is required"})
		return
	}

	userID := middleware.GetUserID(r)
	deviceID := r.URL.Query().Get("device_id")

	if err := h.service.Delete(userID, memoID, deviceID); err != nil {
		if err.Error() == "unauthorized: memo does not belong to user" {
			response.JSON(w, http.StatusForbidden, map[string]string{"error": err.Error()})
			return
		}
		response.JSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to delete memo"})
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "Memo deleted successfully"})
}

// Favorite sets or clears the memo's favorite flag.
func (h *MemoHandler) Favorite(w http.ResponseWriter, r *http.Request) {
	memoID := mux.Vars(r)["id"]
	if memoID == "" {
		response.JSON(w, http.StatusBadRequest, map[string]string{"error": "Memo ID is required"})
		return
	}

	var req struct {
		IsFavorite bool   `json:"is_favorite"`
		DeviceID   string `json:"device_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.JSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
		return
	}

	userID := middleware.GetUserID(r)

	memo, err := h.service.Update(userID, memoID, &domain.UpdateMemoRequest{
		IsFavorite: &req.IsFavorite,
		DeviceID:   req.DeviceID,
	})
	if err != nil {
		if err.Error() == "unauthorized: memo does not belong to user" {
			response.JSON(w, http.StatusForbidden, map[string]string{"error": err.Error()})
			return
		}
		response.JSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to update favorite"})
		return
	}

	response.JSON(w, http.StatusOK, memo)
}

// Touch bumps the memo's clip counter. Clients call this when the memo's
// value is copied without going through Render.
func (h *MemoHandler) Touch(w http.ResponseWriter, r *http.Request) {
	memoID := mux.Vars(r)["id"]
	if memoID == "" {
		response.JSON(w, http.StatusBadRequest, map[string]string{"error": "Memo ID is required"})
		return
	}

	userID := middleware.GetUserID(r)
	deviceID := r.URL.Query().Get("device_id")

	memo, err := h.service.Touch(userID, memoID, deviceID)
	if err != nil {
		if err.Error() == "unauthorized: memo does not belong to user" {
			response.JSON(w, http.StatusForbidden, map[string]string{"error": err.Error()})
			return
		}
		response.JSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to record memo use"})
		return
	}

	response.JSON(w, http.StatusOK, memo)
}

func (h *MemoHandler) Render(w http.ResponseWriter, r *http.Request) {
	memoID := mux.Vars(r)["id"]
	if memoID == "" {
		response.JSON(w, http.StatusBadRequest, map[string]string{"error": "Memo ID is required"})
		return
	}

	var req domain.RenderMemoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.JSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
		return
	}

	userID := middleware.GetUserID(r)

	rendered, err := h.service.Render(userID, memoID, &req)
	if err != nil {
		if err.Error() == "unauthorized: memo does not belong to user" {
			response.JSON(w, http.StatusForbidden, map[string]string{"error": err.Error()})
			return
		}
		var unresolvedErr *service.UnresolvedPlaceholdersError
		if errors.As(err, &unresolvedErr) {
			response.JSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
				"error":      "unresolved_placeholders",
				"unresolved": unresolvedErr.Placeholders,
			})
			return
		}
		response.JSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to render memo"})
		return
	}

	response.JSON(w, http.StatusOK, rendered)
}

// Placeholders returns the memo's custom placeholders with their value
// histories so the client can offer previous inputs.
func (h *MemoHandler) Placeholders(w http.ResponseWriter, r *http.Request) {
	memoID := mux.Vars(r)["id"]
	if memoID == "" {
		response.JSON(w, http.StatusBadRequest, map[string]string{"error": "Memo ID is required"})
		return
	}

	userID := middleware.GetUserID(r)

	histories, err := h.service.Placeholders(userID, memoID)
	if err != nil {
		if err.Error() == "unauthorized: memo does not belong to user" {
			response.JSON(w, http.StatusForbidden, map[string]string{"error": err.Error()})
			return
		}
		response.JSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to load placeholders"})
		return
	}

	response.JSON(w, http.StatusOK, histories)
}

func (h *MemoHandler) Versions(w http.ResponseWriter, r *http.Request) {
	memoID := mux.Vars(r)["id"]
	if memoID == "" {
		response.JSON(w, http.StatusBadRequest, map[string]string{"error": "Memo ID is required"})
		return
	}

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

	versions, err := h.service.Versions(userID, memoID, limit)
	if err != nil {
		if err.Error() == "unauthorized: memo does not belong to user" {
			response.JSON(w, http.StatusForbidden, map[string]string{"error": err.Error()})
			return
		}
		response.JSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to load versions"})
		return
	}

	response.JSON(w, http.StatusOK, versions)
}
