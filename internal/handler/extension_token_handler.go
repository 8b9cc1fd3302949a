package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"clipmemo-sync-server/internal/domain"
	"clipmemo-sync-server/internal/service"
	"clipmemo-sync-server/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

type ExtensionTokenHandler struct {
	tokenService *service.ExtensionTokenService
	validator    *validator.Validate
}

func NewExtensionTokenHandler(tokenService *service.ExtensionTokenService) *ExtensionTokenHandler {
	return &ExtensionTokenHandler{
		tokenService: tokenService,
		validator:    validator.New(),
	}
}

func (h *ExtensionTokenHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.ExtensionLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	tokenResp, err := h.tokenService.LoginAndCreateToken(&req)
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}
	clientIP := getClientIP(r)
	h.tokenService.UpdateLastUsed(tokenResp.ID, clientIP)

	response.Success(w, tokenResp)
}

func (h *ExtensionTokenHandler) Validate(w http.ResponseWriter, r *http.Request) {
	token := extractExtensionToken(r)
	if token == "" {
		response.Unauthorized(w, "Extension token required")
		return
	}

	user, extToken, err := h.tokenService.ValidateToken(token)
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	// Update last used
	clientIP := getClientIP(r)
	h.tokenService.UpdateLastUsed(extToken.ID, clientIP)

	response.Success(w, map[string]interface{}{
		"valid":  true,
		"user":   user,
		"scopes": extToken.Scopes,
	})
}

func (h *ExtensionTokenHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("user_id").(string)

	var req domain.CreateExtensionTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	tokenResp, err := h.tokenService.CreateToken(userID, &req)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	response.Created(w, tokenResp)
}

func (h *ExtensionTokenHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("user_id").(string)

	tokens, err := h.tokenService.GetTokens(userID)
	if err != nil {
		response.InternalError(w, err.Error())
		return
	}

	response.Success(w, map[string]interface{}{
		"tokens": tokens,
		"count":  len(tokens),
	})
}

func (h *ExtensionTokenHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("user_id").(string)
	tokenID := mux.Vars(r)["id"]

	token, err := h.tokenService.GetToken(userID, tokenID)
	if err != nil {
		response.NotFound(w, err.Error())
		return
	}

	response.Success(w, token)
}

func (h *ExtensionTokenHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("user_id").(string)
	tokenID := mux.Vars(r)["id"]

	if err := h.tokenService.RevokeToken(userID, tokenID); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	response.Success(w, map[string]string{
		"message": "Token revoked successfully",
	})
}

func (h *ExtensionTokenHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("user_id").(string)
	tokenID := mux.Vars(r)["id"]

	if err := h.tokenService.DeleteToken(userID, tokenID); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	response.Success(w, map[string]string{
		"message": "Token deleted successfully",
	})
}

func extractExtensionToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}

	token := parts[1]
	if !strings.HasPrefix(token, "cmk_") {
		return ""
	}

	return token
}

func getClientIP(r *http.Request) string {
	xff := r.Header.Get("X-Forwarded-For")
	if xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}

	xri := r.Header.Get("X-Real-IP")
	if xri != "" {
		return xri
	}

	// Fall back to RemoteAddr
	return strings.Split(r.RemoteAddr, ":")[0]
}
