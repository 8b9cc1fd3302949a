package domain

import "time"

// ExtensionToken is a long-lived token the keyboard extension uses instead
// of a short JWT. Extensions run sandboxed and cannot drive the interactive
// refresh flow, so they authenticate with a scoped `cmk_` token.
type ExtensionToken struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	Name        string     `json:"name"`
	Token       string     `json:"token"`
	TokenPrefix string     `json:"token_prefix"`
	Scopes      []string   `json:"scopes"`
	LastUsedAt  *time.Time `json:"last_used_at,omitempty"`
	LastUsedIP  string     `json:"last_used_ip,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	RevokedAt   *time.Time `json:"revoked_at,omitempty"`
	IsRevoked   bool       `json:"is_revoked"`
}

type ExtensionTokenPublic struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	TokenPrefix string     `json:"token_prefix"`
	Scopes      []string   `json:"scopes"`
	LastUsedAt  *time.Time `json:"last_used_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	IsRevoked   bool       `json:"is_revoked"`
}

type CreateExtensionTokenRequest struct {
	Name   string   `json:"name" validate:"required,min=1,max=100"`
	Scopes []string `json:"scopes"`
}

type CreateExtensionTokenResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Token       string    `json:"token"`
	TokenPrefix string    `json:"token_prefix"`
	Scopes      []string  `json:"scopes"`
	CreatedAt   time.Time `json:"created_at"`
	Message     string    `json:"message"`
}

type ExtensionLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Name     string `json:"name" validate:"required,min=1,max=100"`
}

type ValidateExtensionTokenRequest struct {
	Token string `json:"token" validate:"required"`
}

const (
	ScopeMemosRead   = "memos:read"
	ScopeMemosRender = "memos:render"
	ScopeClipsWrite  = "clips:write"
	ScopeValuesRead  = "values:read"
	ScopeValuesWrite = "values:write"
)

func DefaultExtensionScopes() []string {
	return []string{
		ScopeMemosRead,
		ScopeMemosRender,
		ScopeClipsWrite,
		ScopeValuesRead,
		ScopeValuesWrite,
	}
}

func (t *ExtensionToken) ToPublic() *ExtensionTokenPublic {
	return &ExtensionTokenPublic{
		ID:          t.ID,
		Name:        t.Name,
		TokenPrefix: t.TokenPrefix,
		Scopes:      t.Scopes,
		LastUsedAt:  t.LastUsedAt,
		CreatedAt:   t.CreatedAt,
		IsRevoked:   t.IsRevoked,
	}
}
