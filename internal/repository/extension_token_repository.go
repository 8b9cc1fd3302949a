package repository

import (
	"context"
	"fmt"
	"time"

	"clipmemo-sync-server/internal/domain"

	"github.com/go-kivik/kivik/v4"
)

type ExtensionTokenRepository interface {
	Create(token *domain.ExtensionToken) error
	FindByID(id string) (*domain.ExtensionToken, error)
	FindByToken(hashedToken string) (*domain.ExtensionToken, error)
	FindByUserID(userID string) ([]*domain.ExtensionToken, error)
	UpdateLastUsed(id string, ip string) error
	Revoke(id string) error
	Delete(id string) error
}

type extensionTokenRepository struct {
	client *kivik.Client
	dbName string
}

func NewExtensionTokenRepository(client *kivik.Client, dbName string) ExtensionTokenRepository {
	return &extensionTokenRepository{
		client: client,
		dbName: dbName,
	}
}

func (r *extensionTokenRepository) Create(token *domain.ExtensionToken) error {
	db := r.client.DB(r.dbName)

	docID := fmt.Sprintf("ext_token:%s", token.ID)
	_, err := db.Put(context.Background(), docID, token)
	if err != nil {
		return fmt.Errorf("failed to create extension token: %w", err)
	}

	return nil
}

func (r *extensionTokenRepository) FindByID(id string) (*domain.ExtensionToken, error) {
	db := r.client.DB(r.dbName)

	docID := fmt.Sprintf("ext_token:%s", id)
	row := db.Get(context.Background(), docID)

	var token domain.ExtensionToken
	if err := row.ScanDoc(&token); err != nil {
		return nil, fmt.Errorf("extension token not found: %w", err)
	}

	return &token, nil
}

func (r *extensionTokenRepository) FindByToken(hashedToken string) (*domain.ExtensionToken, error) {
	db := r.client.DB(r.dbName)

	query := map[string]interface{}{
		"selector": map[string]interface{}{
			"token":      hashedToken,
			"is_revoked": false,
		},
		"limit": 1,
	}

	rows := db.Find(context.Background(), query)
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to query extension token: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, fmt.Errorf("extension token not found or revoked")
	}

	var token domain.ExtensionToken
	if err := rows.ScanDoc(&token); err != nil {
		return nil, fmt.Errorf("failed to scan extension token: %w", err)
	}

	return &token, nil
}

func (r *extensionTokenRepository) FindByUserID(userID string) ([]*domain.ExtensionToken, error) {
	db := r.client.DB(r.dbName)

	query := map[string]interface{}{
		"selector": map[string]interface{}{
			"user_id": userID,
		},
		"sort": []map[string]string{
			{"created_at": "desc"},
		},
	}

	rows := db.Find(context.Background(), query)
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to query extension tokens: %w", err)
	}
	defer rows.Close()

	var tokens []*domain.ExtensionToken
	for rows.Next() {
		var token domain.ExtensionToken
		if err := rows.ScanDoc(&token); err != nil {
			return nil, fmt.Errorf("failed to scan extension token: %w", err)
		}
		tokens = append(tokens, &token)
	}

	return tokens, nil
}

func (r *extensionTokenRepository) UpdateLastUsed(id string, ip string) error {
	token, err := r.FindByID(id)
	if err != nil {
		return err
	}

	now := time.Now()
	token.LastUsedAt = &now
	token.LastUsedIP = ip

	db := r.client.DB(r.dbName)
	docID := fmt.Sprintf("ext_token:%s", id)
	_, err = db.Put(context.Background(), docID, token)
	if err != nil {
		return fmt.Errorf("failed to update extension token: %w", err)
	}

	return nil
}

func (r *extensionTokenRepository) Revoke(id string) error {
	token, err := r.FindByID(id)
	if err != nil {
		return err
	}

	now := time.Now()
	token.IsRevoked = true
	token.RevokedAt = &now

	db := r.client.DB(r.dbName)
	docID := fmt.Sprintf("ext_token:%s", id)
	_, err = db.Put(context.Background(), docID, token)
	if err != nil {
		return fmt.Errorf("failed to revoke extension token: %w", err)
	}

	return nil
}

func (r *extensionTokenRepository) Delete(id string) error {
	db := r.client.DB(r.dbName)
	docID := fmt.Sprintf("ext_token:%s", id)

	row := db.Get(context.Background(), docID)
	var doc map[string]interface{}
	if err := row.ScanDoc(&doc); err != nil {
		return fmt.Errorf("extension token not found: %w", err)
	}

	rev, ok := doc["_rev"].(string)
	if !ok {
		return fmt.Errorf("failed to get document revision")
	}

	_, err := db.Delete(context.Background(), docID, rev)
	if err != nil {
		return fmt.Errorf("failed to delete extension token: %w", err)
	}

	return nil
}
