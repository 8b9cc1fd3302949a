package service

import (
	"errors"
	"time"

	"clipmemo-sync-server/internal/classifier"
	"clipmemo-sync-server/internal/domain"
	"clipmemo-sync-server/internal/repository"

	"github.com/google/uuid"
)

// DefaultClipRetention is how long temporary clips survive before Prune
// removes them.
const DefaultClipRetention = 24 * time.Hour

type ClipboardService struct {
	repo        repository.ClipRepository
	retention   time.Duration
	syncService *SyncService
}

func NewClipboardService(repo repository.ClipRepository, retention time.Duration, syncService *SyncService) *ClipboardService {
	if retention <= 0 {
		retention = DefaultClipRetention
	}
	return &ClipboardService{
		repo:        repo,
		retention:   retention,
		syncService: syncService,
	}
}

// Record stores one copied text and labels it with the classifier's guess.
func (s *ClipboardService) Record(userID string, req *domain.RecordClipRequest) (*domain.ClipResponse, error) {
	result := classifier.Classify(req.Content)

	clip := &domain.Clip{
		ID:               uuid.New().String(),
		UserID:           userID,
		Content:          req.Content,
		CopiedAt:         time.Now(),
		IsTemporary:      req.IsTemporary,
		DetectedCategory: result.Category,
		Confidence:       result.Confidence,
		DeviceID:         req.DeviceID,
	}

	if err := s.repo.Create(clip); err != nil {
		return nil, err
	}

	response := clip.ToResponse()

	if s.syncService != nil {
		s.syncService.BroadcastClipAdded(userID, req.DeviceID, response)
	}

	return response, nil
}

// List returns the user's clipboard history, optionally filtered by the
// effective category (user corrections win over detections).
func (s *ClipboardService) List(userID string, category domain.Category, limit int) ([]*domain.ClipResponse, error) {
	if category != "" && !category.IsValid() {
		return nil, errors.New("unknown category")
	}

	clips, err := s.repo.List(userID, limit)
	if err != nil {
		return nil, err
	}

	var responses []*domain.ClipResponse
	for _, clip := range clips {
		if category != "" && clip.EffectiveCategory() != category {
			continue
		}
		responses = append(responses, clip.ToResponse())
	}

	return responses, nil
}

// Correct records the user's category override for one clip.
func (s *ClipboardService) Correct(userID, clipID string, category domain.Category) (*domain.ClipResponse, error) {
	if !category.IsValid() {
		return nil, errors.New("unknown category")
	}

	clip, err := s.ownedClip(userID, clipID)
	if err != nil {
		return nil, err
	}

	clip.CorrectedCategory = &category
	if err := s.repo.Update(clip); err != nil {
		return nil, err
	}

	return clip.ToResponse(), nil
}

func (s *ClipboardService) Delete(userID, clipID string) error {
	if _, err := s.ownedClip(userID, clipID); err != nil {
		return err
	}
	return s.repo.Delete(clipID)
}

// Prune removes the user's temporary clips older than the retention window
// and returns how many were dropped.
func (s *ClipboardService) Prune(userID string) (int, error) {
	cutoff := time.Now().Add(-s.retention)
	return s.repo.DeleteTemporaryBefore(userID, cutoff)
}

// SuggestMemo pre-fills a save-as-memo form from a clip. The corrected
// category, when present, always beats the detected one.
func (s *ClipboardService) SuggestMemo(userID, clipID string) (*domain.MemoSuggestion, error) {
	clip, err := s.ownedClip(userID, clipID)
	if err != nil {
		return nil, err
	}

	category := clip.EffectiveCategory()
	return &domain.MemoSuggestion{
		Value:         clip.Content,
		Category:      category,
		IsSecure:      category.SecureByDefault(),
		CategoryIcon:  category.Icon(),
		CategoryColor: category.Color(),
	}, nil
}

func (s *ClipboardService) ownedClip(userID, clipID string) (*domain.Clip, error) {
	clip, err := s.repo.FindByID(clipID)
	if err != nil {
		return nil, err
	}
	if clip.UserID != userID {
		return nil, errors.New("unauthorized: clip does not belong to user")
	}
	return clip, nil
}
