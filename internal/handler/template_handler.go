package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"clipmemo-sync-server/internal/classifier"
	"clipmemo-sync-server/internal/domain"
	"clipmemo-sync-server/internal/service"
	"clipmemo-sync-server/pkg/response"

	"github.com/go-playground/validator/v10"
)

// TemplateHandler serves the stateless text tools: placeholder extraction,
// ad-hoc substitution, value history, and classification. The keyboard
// extension hits these without loading full memos.
type TemplateHandler struct {
	service  *service.TemplateService
	validate *validator.Validate
}

func NewTemplateHandler(service *service.TemplateService) *TemplateHandler {
	return &TemplateHandler{
		service:  service,
		validate: validator.New(),
	}
}

func (h *TemplateHandler) Extract(w http.ResponseWriter, r *http.Request) {
	var req domain.ExtractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.JSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
		return
	}

	response.JSON(w, http.StatusOK, h.service.Extract(req.Text))
}

func (h *TemplateHandler) Substitute(w http.ResponseWriter, r *http.Request) {
	var req domain.SubstituteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.JSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
		return
	}

	if err := h.validate.Struct(req); err != nil {
		response.JSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	result, err := h.service.Substitute(&req)
	if err != nil {
		var unresolvedErr *service.UnresolvedPlaceholdersError
		if errors.As(err, &unresolvedErr) {
			response.JSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
				"error":      "unresolved_placeholders",
				"unresolved": unresolvedErr.Placeholders,
			})
			return
		}
		response.JSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to substitute"})
		return
	}

	response.JSON(w, http.StatusOK, result)
}

func (h *TemplateHandler) CommitValue(w http.ResponseWriter, r *http.Request) {
	var req domain.CommitValueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.JSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
		return
	}

	if err := h.validate.Struct(req); err != nil {
		response.JSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	if err := h.service.CommitValue(&req); err != nil {
		response.JSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to save value"})
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "Value saved"})
}

func (h *TemplateHandler) History(w http.ResponseWriter, r *http.Request) {
	placeholder := r.URL.Query().Get("placeholder")
	if placeholder == "" {
		response.JSON(w, http.StatusBadRequest, map[string]string{"error": "Placeholder is required"})
		return
	}

	response.JSON(w, http.StatusOK, map[string]interface{}{
		"placeholder": placeholder,
		"values":      h.service.HistoricalValues(placeholder),
	})
}

func (h *TemplateHandler) Classify(w http.ResponseWriter, r *http.Request) {
	var req domain.ClassifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.JSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
		return
	}

	result := classifier.Classify(req.Text)

	response.JSON(w, http.StatusOK, domain.ClassifyResponse{
		Category:      result.Category,
		Confidence:    result.Confidence,
		IsSecure:      result.Category.SecureByDefault(),
		CategoryIcon:  result.Category.Icon(),
		CategoryColor: result.Category.Color(),
	})
}
