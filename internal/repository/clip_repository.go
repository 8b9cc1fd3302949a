package repository

import (
	"context"
	"fmt"
	"time"

	"clipmemo-sync-server/internal/domain"

	"github.com/go-kivik/kivik/v4"
)

type ClipRepository interface {
	Create(clip *domain.Clip) error
	FindByID(id string) (*domain.Clip, error)
	List(userID string, limit int) ([]*domain.Clip, error)
	Update(clip *domain.Clip) error
	Delete(id string) error
	DeleteTemporaryBefore(userID string, cutoff time.Time) (int, error)
}

type clipRepository struct {
	client *kivik.Client
	dbName string
}

func NewClipRepository(client *kivik.Client, dbName string) ClipRepository {
	return &clipRepository{
		client: client,
		dbName: dbName,
	}
}

func (r *clipRepository) Create(clip *domain.Clip) error {
	db := r.client.DB(r.dbName)

	docID := fmt.Sprintf("clip:%s", clip.ID)
	_, err := db.Put(context.Background(), docID, clip)
	if err != nil {
		return fmt.Errorf("failed to create clip: %w", err)
	}

	return nil
}

func (r *clipRepository) FindByID(id string) (*domain.Clip, error) {
	db := r.client.DB(r.dbName)

	docID := fmt.Sprintf("clip:%s", id)
	row := db.Get(context.Background(), docID)

	var clip domain.Clip
	if err := row.ScanDoc(&clip); err != nil {
		return nil, fmt.Errorf("failed to find clip: %w", err)
	}

	return &clip, nil
}

func (r *clipRepository) List(userID string, limit int) ([]*domain.Clip, error) {
	db := r.client.DB(r.dbName)

	query := map[string]interface{}{
		"selector": map[string]interface{}{
			"user_id":   userID,
			"copied_at": map[string]interface{}{"$exists": true},
		},
	}
	if limit > 0 {
		query["limit"] = limit
	}

	rows := db.Find(context.Background(), query)
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list clips: %w", err)
	}
	defer rows.Close()

	var clips []*domain.Clip
	for rows.Next() {
		var clip domain.Clip
		if err := rows.ScanDoc(&clip); err != nil {
			continue
		}
		clips = append(clips, &clip)
	}

	return clips, nil
}

func (r *clipRepository) Update(clip *domain.Clip) error {
	db := r.client.DB(r.dbName)
	docID := fmt.Sprintf("clip:%s", clip.ID)

	var existingDoc map[string]interface{}
	row := db.Get(context.Background(), docID)
	if err := row.ScanDoc(&existingDoc); err != nil {
		return fmt.Errorf("failed to fetch existing clip for update: %w", err)
	}

	existingDoc["is_temporary"] = clip.IsTemporary
	if clip.CorrectedCategory != nil {
		existingDoc["corrected_category"] = *clip.CorrectedCategory
	} else {
		existingDoc["corrected_category"] = nil
	}

	_, err := db.Put(context.Background(), docID, existingDoc)
	if err != nil {
		return fmt.Errorf("failed to update clip: %w", err)
	}

	return nil
}

func (r *clipRepository) Delete(id string) error {
	db := r.client.DB(r.dbName)
	docID := fmt.Sprintf("clip:%s", id)

	row := db.Get(context.Background(), docID)
	var existingDoc map[string]interface{}
	if err := row.ScanDoc(&existingDoc); err != nil {
		return err
	}

	rev, ok := existingDoc["_rev"].(string)
	if !ok {
		return fmt.Errorf("failed to get document revision")
	}

	if _, err := db.Delete(context.Background(), docID, rev); err != nil {
		return fmt.Errorf("failed to delete clip: %w", err)
	}

	return nil
}

func (r *clipRepository) DeleteTemporaryBefore(userID string, cutoff time.Time) (int, error) {
	clips, err := r.List(userID, 0)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, clip := range clips {
		if clip.IsTemporary && clip.CopiedAt.Before(cutoff) {
			if err := r.Delete(clip.ID); err != nil {
				continue
			}
			removed++
		}
	}

	return removed, nil
}
