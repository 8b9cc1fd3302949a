package middleware

import (
	"context"
	"net/http"
	"strings"

	"clipmemo-sync-server/internal/service"
	"clipmemo-sync-server/pkg/response"
)

func ExtensionAuthMiddleware(tokenService *service.ExtensionTokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

			if r.Method == "OPTIONS" {
				next.ServeHTTP(w, r)
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				response.Unauthorized(w, "Authorization header required")
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				response.Unauthorized(w, "Invalid authorization header format")
				return
			}

			token := parts[1]

			if !strings.HasPrefix(token, "cmk_") {
				response.Unauthorized(w, "Invalid extension token format. Expected cmk_xxxxx")
				return
			}

			user, extToken, err := tokenService.ValidateToken(token)
			if err != nil {
				response.Unauthorized(w, "Invalid or revoked extension token")
				return
			}

			go func() {
				clientIP := getClientIPFromRequest(r)
				tokenService.UpdateLastUsed(extToken.ID, clientIP)
			}()

			// Add user info to context
			ctx := context.WithValue(r.Context(), "user_id", user.ID)
			ctx = context.WithValue(ctx, "user", user)
			ctx = context.WithValue(ctx, "extension_token", extToken)
			ctx = context.WithValue(ctx, "extension_token_id", extToken.ID)
			ctx = context.WithValue(ctx, "extension_scopes", extToken.Scopes)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func ExtensionScopeMiddleware(requiredScope string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

			if r.Method == "OPTIONS" {
				next.ServeHTTP(w, r)
				return
			}

			scopes, ok := r.Context().Value("extension_scopes").([]string)
			if !ok {
				response.Forbidden(w, "Extension token scopes not found")
				return
			}

			hasScope := false
			for _, scope := range scopes {
				if scope == requiredScope {
					hasScope = true
					break
				}
			}

			if !hasScope {
				response.Forbidden(w, "Extension token does not have required scope: "+requiredScope)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func getClientIPFromRequest(r *http.Request) string {

	// Check X-Forwarded-For header first (for proxies)
	xff := r.Header.Get("X-Forwarded-For")
	if xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}

	xri := r.Header.Get("X-Real-IP")
	if xri != "" {
		return xri
	}

	return strings.Split(r.RemoteAddr, ":")[0]
}
