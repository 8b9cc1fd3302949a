package service

import (
	"strings"
	"testing"
	"time"

	"clipmemo-sync-server/internal/domain"
)

type mockTokenRepo struct {
	tokens map[string]*domain.ExtensionToken
}

func newMockTokenRepo() *mockTokenRepo {
	return &mockTokenRepo{tokens: make(map[string]*domain.ExtensionToken)}
}

func (m *mockTokenRepo) Create(token *domain.ExtensionToken) error {
	m.tokens[token.ID] = token
	return nil
}

func (m *mockTokenRepo) FindByID(id string) (*domain.ExtensionToken, error) {
	if token, exists := m.tokens[id]; exists {
		return token, nil
	}
	return nil, &userNotFoundError{}
}

func (m *mockTokenRepo) FindByToken(hashedToken string) (*domain.ExtensionToken, error) {
	for _, token := range m.tokens {
		if token.Token == hashedToken && !token.IsRevoked {
			return token, nil
		}
	}
	return nil, &userNotFoundError{}
}

func (m *mockTokenRepo) FindByUserID(userID string) ([]*domain.ExtensionToken, error) {
	var tokens []*domain.ExtensionToken
	for _, token := range m.tokens {
		if token.UserID == userID {
			tokens = append(tokens, token)
		}
	}
	return tokens, nil
}

func (m *mockTokenRepo) UpdateLastUsed(id string, ip string) error {
	if token, exists := m.tokens[id]; exists {
		now := time.Now()
		token.LastUsedAt = &now
		token.LastUsedIP = ip
	}
	return nil
}

func (m *mockTokenRepo) Revoke(id string) error {
	if token, exists := m.tokens[id]; exists {
		now := time.Now()
		token.IsRevoked = true
		token.RevokedAt = &now
	}
	return nil
}

func (m *mockTokenRepo) Delete(id string) error {
	delete(m.tokens, id)
	return nil
}

func newTestTokenService() (*ExtensionTokenService, *mockUserRepository) {
	userRepo := newMockUserRepository()
	userRepo.users["user1"] = &domain.User{
		ID:       "user1",
		Email:    "hong@example.com",
		Username: "hong",
	}
	return NewExtensionTokenService(newMockTokenRepo(), userRepo), userRepo
}

func TestExtensionTokenService_CreateToken(t *testing.T) {
	service, _ := newTestTokenService()

	resp, err := service.CreateToken("user1", &domain.CreateExtensionTokenRequest{
		Name: "iphone keyboard",
	})
	if err != nil {
		t.Fatalf("CreateToken() error = %v", err)
	}

	if !strings.HasPrefix(resp.Token, "cmk_") {
		t.Errorf("token should carry the cmk_ prefix, got %s", resp.Token[:8])
	}
	if len(resp.Token) != 4+64 {
		t.Errorf("token length = %d, want 68", len(resp.Token))
	}
	if !strings.HasPrefix(resp.Token, resp.TokenPrefix) {
		t.Error("token prefix should match the start of the plain token")
	}
	if len(resp.Scopes) != len(domain.DefaultExtensionScopes()) {
		t.Errorf("expected default scopes, got %v", resp.Scopes)
	}
}

func TestExtensionTokenService_ValidateToken(t *testing.T) {
	service, _ := newTestTokenService()

	resp, _ := service.CreateToken("user1", &domain.CreateExtensionTokenRequest{
		Name: "mac menubar",
	})

	user, token, err := service.ValidateToken(resp.Token)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if user.ID != "user1" {
		t.Errorf("user ID = %s, want user1", user.ID)
	}
	if user.Password != "" {
		t.Error("validated user should not carry a password")
	}
	if token.Token == resp.Token {
		t.Error("stored token should be hashed, not the plain token")
	}

	if _, _, err := service.ValidateToken("cmk_bogus"); err == nil {
		t.Error("expected error for unknown token")
	}
}

func TestExtensionTokenService_ValidateTokenWithScope(t *testing.T) {
	service, _ := newTestTokenService()

	resp, _ := service.CreateToken("user1", &domain.CreateExtensionTokenRequest{
		Name:   "read only",
		Scopes: []string{domain.ScopeMemosRead},
	})

	if _, _, err := service.ValidateTokenWithScope(resp.Token, domain.ScopeMemosRead); err != nil {
		t.Errorf("expected granted scope to validate, got %v", err)
	}
	if _, _, err := service.ValidateTokenWithScope(resp.Token, domain.ScopeClipsWrite); err == nil {
		t.Error("expected missing scope to be rejected")
	}
}

func TestExtensionTokenService_RevokeToken(t *testing.T) {
	service, _ := newTestTokenService()

	resp, _ := service.CreateToken("user1", &domain.CreateExtensionTokenRequest{
		Name: "old phone",
	})

	if err := service.RevokeToken("user2", resp.ID); err == nil {
		t.Error("expected unauthorized error for foreign token")
	}

	if err := service.RevokeToken("user1", resp.ID); err != nil {
		t.Fatalf("RevokeToken() error = %v", err)
	}

	if _, _, err := service.ValidateToken(resp.Token); err == nil {
		t.Error("revoked token should not validate")
	}
}
