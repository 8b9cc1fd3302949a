package service

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"clipmemo-sync-server/internal/domain"
	"clipmemo-sync-server/internal/repository"
	"clipmemo-sync-server/pkg/hash"

	"github.com/google/uuid"
)

type ExtensionTokenService struct {
	tokenRepo repository.ExtensionTokenRepository
	userRepo  repository.UserRepository
}

func NewExtensionTokenService(tokenRepo repository.ExtensionTokenRepository, userRepo repository.UserRepository) *ExtensionTokenService {
	return &ExtensionTokenService{
		tokenRepo: tokenRepo,
		userRepo:  userRepo,
	}
}

// generateSecureToken creates a cryptographically secure random token
// Format: cmk_<random 64 hex chars>
func generateSecureToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return "cmk_" + hex.EncodeToString(bytes), nil
}

// hashToken creates a SHA256 hash of the token for storage
func hashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

// LoginAndCreateToken authenticates a user and mints a new extension token.
// The keyboard extension cannot run the interactive refresh flow, so it
// exchanges credentials for a long-lived scoped token once.
func (s *ExtensionTokenService) LoginAndCreateToken(req *domain.ExtensionLoginRequest) (*domain.CreateExtensionTokenResponse, error) {
	user, err := s.userRepo.FindByEmail(req.Email)
	if err != nil {
		return nil, fmt.Errorf("invalid credentials")
	}

	if err := hash.Compare(user.Password, req.Password); err != nil {
		return nil, fmt.Errorf("invalid credentials")
	}

	createReq := &domain.CreateExtensionTokenRequest{
		Name:   req.Name,
		Scopes: domain.DefaultExtensionScopes(),
	}

	return s.CreateToken(user.ID, createReq)
}

// CreateToken creates a new extension token for a user (requires authentication)
func (s *ExtensionTokenService) CreateToken(userID string, req *domain.CreateExtensionTokenRequest) (*domain.CreateExtensionTokenResponse, error) {
	_, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, fmt.Errorf("user not found")
	}

	plainToken, err := generateSecureToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	hashedToken := hashToken(plainToken)

	scopes := req.Scopes
	if len(scopes) == 0 {
		scopes = domain.DefaultExtensionScopes()
	}

	token := &domain.ExtensionToken{
		ID:          uuid.New().String(),
		UserID:      userID,
		Name:        req.Name,
		Token:       hashedToken,
		TokenPrefix: plainToken[:12], // "cmk_" + first 8 chars of random
		Scopes:      scopes,
		CreatedAt:   time.Now(),
		IsRevoked:   false,
	}

	if err := s.tokenRepo.Create(token); err != nil {
		return nil, fmt.Errorf("failed to create token: %w", err)
	}

	return &domain.CreateExtensionTokenResponse{
		ID:          token.ID,
		Name:        token.Name,
		Token:       plainToken, // Return the plain token ONLY ONCE
		TokenPrefix: token.TokenPrefix,
		Scopes:      token.Scopes,
		CreatedAt:   token.CreatedAt,
		Message:     "Token created successfully. Store it safely - it won't be shown again!",
	}, nil
}

// ValidateToken validates an extension token and returns the associated user
func (s *ExtensionTokenService) ValidateToken(plainToken string) (*domain.User, *domain.ExtensionToken, error) {
	hashedToken := hashToken(plainToken)

	token, err := s.tokenRepo.FindByToken(hashedToken)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid or revoked token")
	}

	if token.IsRevoked {
		return nil, nil, fmt.Errorf("token has been revoked")
	}

	user, err := s.userRepo.FindByID(token.UserID)
	if err != nil {
		return nil, nil, fmt.Errorf("user not found")
	}

	user.Password = ""

	return user, token, nil
}

// ValidateTokenWithScope validates a token and checks for a specific scope
func (s *ExtensionTokenService) ValidateTokenWithScope(plainToken string, requiredScope string) (*domain.User, *domain.ExtensionToken, error) {
	user, token, err := s.ValidateToken(plainToken)
	if err != nil {
		return nil, nil, err
	}

	hasScope := false
	for _, scope := range token.Scopes {
		if scope == requiredScope {
			hasScope = true
			break
		}
	}

	if !hasScope {
		return nil, nil, fmt.Errorf("token does not have required scope: %s", requiredScope)
	}

	return user, token, nil
}

// GetTokens returns all tokens for a user (public view, no hashes)
func (s *ExtensionTokenService) GetTokens(userID string) ([]*domain.ExtensionTokenPublic, error) {
	tokens, err := s.tokenRepo.FindByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get tokens: %w", err)
	}

	public := make([]*domain.ExtensionTokenPublic, len(tokens))
	for i, t := range tokens {
		public[i] = t.ToPublic()
	}

	return public, nil
}

// GetToken returns one token by ID, checking ownership
func (s *ExtensionTokenService) GetToken(userID, tokenID string) (*domain.ExtensionTokenPublic, error) {
	token, err := s.tokenRepo.FindByID(tokenID)
	if err != nil {
		return nil, fmt.Errorf("token not found")
	}

	if token.UserID != userID {
		return nil, fmt.Errorf("unauthorized: token does not belong to user")
	}

	return token.ToPublic(), nil
}

// RevokeToken revokes a token, checking ownership
func (s *ExtensionTokenService) RevokeToken(userID, tokenID string) error {
	token, err := s.tokenRepo.FindByID(tokenID)
	if err != nil {
		return fmt.Errorf("token not found")
	}

	if token.UserID != userID {
		return fmt.Errorf("unauthorized: token does not belong to user")
	}

	return s.tokenRepo.Revoke(tokenID)
}

// DeleteToken deletes a token permanently, checking ownership
func (s *ExtensionTokenService) DeleteToken(userID, tokenID string) error {
	token, err := s.tokenRepo.FindByID(tokenID)
	if err != nil {
		return fmt.Errorf("token not found")
	}

	if token.UserID != userID {
		return fmt.Errorf("unauthorized: token does not belong to user")
	}

	return s.tokenRepo.Delete(tokenID)
}

// UpdateLastUsed records token usage metadata
func (s *ExtensionTokenService) UpdateLastUsed(tokenID, ip string) error {
	return s.tokenRepo.UpdateLastUsed(tokenID, ip)
}
