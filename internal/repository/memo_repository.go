package repository

import (
	"context"
	"fmt"
	"time"

	"clipmemo-sync-server/internal/domain"

	"github.com/go-kivik/kivik/v4"
)

type MemoRepository interface {
	Create(memo *domain.Memo) error
	FindByID(id string) (*domain.Memo, error)
	List(userID string) ([]*domain.Memo, error)
	ListByCategory(userID string, category domain.Category) ([]*domain.Memo, error)
	ListFavorites(userID string) ([]*domain.Memo, error)
	Update(memo *domain.Memo) error
	Delete(id string) error
}

type memoRepository struct {
	client *kivik.Client
	dbName string
}

func NewMemoRepository(client *kivik.Client, dbName string) MemoRepository {
	return &memoRepository{
		client: client,
		dbName: dbName,
	}
}

func (r *memoRepository) Create(memo *domain.Memo) error {
	db := r.client.DB(r.dbName)

	docID := fmt.Sprintf("memo:%s", memo.ID)
	_, err := db.Put(context.Background(), docID, memo)
	if err != nil {
		return fmt.Errorf("failed to create memo: %w", err)
	}

	return nil
}

func (r *memoRepository) FindByID(id string) (*domain.Memo, error) {
	db := r.client.DB(r.dbName)

	docID := fmt.Sprintf("memo:%s", id)
	row := db.Get(context.Background(), docID)

	var memo domain.Memo
	if err := row.ScanDoc(&memo); err != nil {
		return nil, fmt.Errorf("failed to find memo: %w", err)
	}

	return &memo, nil
}

func (r *memoRepository) List(userID string) ([]*domain.Memo, error) {
	return r.find(map[string]interface{}{
		"user_id": userID,
		"value":   map[string]interface{}{"$exists": true},
	})
}

func (r *memoRepository) ListByCategory(userID string, category domain.Category) ([]*domain.Memo, error) {
	return r.find(map[string]interface{}{
		"user_id":  userID,
		"category": string(category),
		"value":    map[string]interface{}{"$exists": true},
	})
}

func (r *memoRepository) ListFavorites(userID string) ([]*domain.Memo, error) {
	return r.find(map[string]interface{}{
		"user_id":     userID,
		"is_favorite": true,
		"value":       map[string]interface{}{"$exists": true},
	})
}

func (r *memoRepository) find(selector map[string]interface{}) ([]*domain.Memo, error) {
	db := r.client.DB(r.dbName)

	rows := db.Find(context.Background(), map[string]interface{}{"selector": selector})
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list memos: %w", err)
	}
	defer rows.Close()

	var memos []*domain.Memo
	for rows.Next() {
		var memo domain.Memo
		if err := rows.ScanDoc(&memo); err != nil {
			continue
		}
		memos = append(memos, &memo)
	}

	return memos, nil
}

func (r *memoRepository) Update(memo *domain.Memo) error {
	db := r.client.DB(r.dbName)
	docID := fmt.Sprintf("memo:%s", memo.ID)

	var existingDoc map[string]interface{}
	row := db.Get(context.Background(), docID)
	if err := row.ScanDoc(&existingDoc); err != nil {
		return fmt.Errorf("failed to fetch existing memo for update: %w", err)
	}

	existingDoc["title"] = memo.Title
	existingDoc["value"] = memo.Value
	existingDoc["category"] = memo.Category
	existingDoc["is_secure"] = memo.IsSecure
	existingDoc["is_template"] = memo.IsTemplate
	existingDoc["is_favorite"] = memo.IsFavorite
	existingDoc["template_variables"] = memo.TemplateVariables
	existingDoc["clip_count"] = memo.ClipCount
	existingDoc["last_edited"] = time.Now()
	existingDoc["last_edit_device"] = memo.LastEditDevice
	existingDoc["version"] = memo.Version // Service should increment this
	existingDoc["is_deleted"] = memo.IsDeleted

	_, err := db.Put(context.Background(), docID, existingDoc)
	if err != nil {
		return fmt.Errorf("failed to update memo: %w", err)
	}

	return nil
}

func (r *memoRepository) Delete(id string) error {
	db := r.client.DB(r.dbName)
	docID := fmt.Sprintf("memo:%s", id)

	var existingDoc map[string]interface{}
	row := db.Get(context.Background(), docID)
	if err := row.ScanDoc(&existingDoc); err != nil {
		return err
	}

	existingDoc["is_deleted"] = true
	existingDoc["last_edited"] = time.Now()

	if v, ok := existingDoc["version"].(float64); ok {
		existingDoc["version"] = int64(v) + 1
	}

	_, err := db.Put(context.Background(), docID, existingDoc)
	if err != nil {
		return fmt.Errorf("failed to delete memo: %w", err)
	}

	return nil
}
