package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"clipmemo-sync-server/internal/domain"
	"clipmemo-sync-server/internal/middleware"
	"clipmemo-sync-server/internal/service"
	"clipmemo-sync-server/pkg/response"
)

type SyncHandler struct {
	syncService *service.SyncService
}

func NewSyncHandler(syncService *service.SyncService) *SyncHandler {
	return &SyncHandler{
		syncService: syncService,
	}
}

func (h *SyncHandler) ProcessSync(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)
	if userID == "" {
		response.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req domain.SyncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.syncService.ProcessSyncRequest(userID, req.DeviceID, &req)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	response.JSON(w, http.StatusOK, res)
}

func (h *SyncHandler) GetChanges(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)
	if userID == "" {
		response.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	sinceParam := r.URL.Query().Get("since")
	var since time.Time
	if sinceParam != "" {
		var err error
		since, err = time.Parse(time.RFC3339, sinceParam)
		if err != nil {
			response.Error(w, http.StatusBadRequest, "invalid since parameter")
			return
		}
	}

	changes, err := h.syncService.GetChangesSince(userID, since)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	response.JSON(w, http.StatusOK, map[string]interface{}{
		"changes":   changes,
		"sync_time": time.Now(),
	})
}
