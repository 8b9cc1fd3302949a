package service

import (
	"errors"
	"fmt"
	"log"
	"time"

	"clipmemo-sync-server/internal/classifier"
	"clipmemo-sync-server/internal/domain"
	"clipmemo-sync-server/internal/repository"
	"clipmemo-sync-server/internal/template"

	"github.com/google/uuid"
)

type MemoService struct {
	repo        repository.MemoRepository
	versionRepo repository.MemoVersionRepository
	engine      *template.Engine
	syncService *SyncService
}

func NewMemoService(
	repo repository.MemoRepository,
	versionRepo repository.MemoVersionRepository,
	engine *template.Engine,
	syncService *SyncService,
) *MemoService {
	return &MemoService{
		repo:        repo,
		versionRepo: versionRepo,
		engine:      engine,
		syncService: syncService,
	}
}

func (s *MemoService) Create(userID string, req *domain.CreateMemoRequest) (*domain.MemoResponse, error) {
	memoID := uuid.New().String()
	now := time.Now()

	category := req.Category
	isSecure := false
	if category == "" {
		// No category chosen: let the classifier suggest one from the content.
		result := classifier.Classify(req.Value)
		category = result.Category
		isSecure = category.SecureByDefault()
	} else if !category.IsValid() {
		return nil, errors.New("unknown category")
	} else {
		isSecure = category.SecureByDefault()
	}
	if req.IsSecure != nil {
		isSecure = *req.IsSecure
	}

	memo := &domain.Memo{
		ID:                memoID,
		UserID:            userID,
		Title:             req.Title,
		Value:             req.Value,
		Category:          category,
		IsSecure:          isSecure,
		IsTemplate:        req.IsTemplate,
		TemplateVariables: discoverVariables(req.Value, req.IsTemplate),
		CreatedAt:         now,
		LastEdited:        now,
		IsDeleted:         false,
		Version:           1,
		LastEditDevice:    req.DeviceID,
	}

	if err := s.repo.Create(memo); err != nil {
		return nil, err
	}

	response := memo.ToResponse()

	if s.syncService != nil {
		s.syncService.BroadcastMemoUpdate(userID, req.DeviceID, response)
	}

	return response, nil
}

func (s *MemoService) List(userID string) ([]*domain.MemoResponse, error) {
	memos, err := s.repo.List(userID)
	if err != nil {
		return nil, err
	}
	return toResponses(memos), nil
}

func (s *MemoService) ListByCategory(userID string, category domain.Category) ([]*domain.MemoResponse, error) {
	if !category.IsValid() {
		return nil, errors.New("unknown category")
	}
	memos, err := s.repo.ListByCategory(userID, category)
	if err != nil {
		return nil, err
	}
	return toResponses(memos), nil
}

func (s *MemoService) ListFavorites(userID string) ([]*domain.MemoResponse, error) {
	memos, err := s.repo.ListFavorites(userID)
	if err != nil {
		return nil, err
	}
	return toResponses(memos), nil
}

func (s *MemoService) GetByID(userID, memoID string) (*domain.MemoResponse, error) {
	memo, err := s.ownedMemo(userID, memoID)
	if err != nil {
		return nil, err
	}
	return memo.ToResponse(), nil
}

func (s *MemoService) Update(userID, memoID string, req *domain.UpdateMemoRequest) (*domain.MemoResponse, error) {
	memo, err := s.ownedMemo(userID, memoID)
	if err != nil {
		return nil, err
	}

	if req.ExpectedVersion != nil && *req.ExpectedVersion != memo.Version {
		return nil, &ConflictError{
			MemoID:        memo.ID,
			ServerVersion: memo.Version,
			ClientVersion: *req.ExpectedVersion,
			Server:        memo.ToResponse(),
		}
	}

	if s.versionRepo != nil {
		if err := s.versionRepo.SaveVersion(memo); err != nil {
			log.Printf("failed to snapshot memo %s before update: %v", memo.ID, err)
		}
	}

	contentChanged := false
	if req.Title != nil {
		memo.Title = *req.Title
	}
	if req.Value != nil {
		memo.Value = *req.Value
		contentChanged = true
	}
	if req.Category != nil {
		if !req.Category.IsValid() {
			return nil, errors.New("unknown category")
		}
		memo.Category = *req.Category
	}
	if req.IsSecure != nil {
		memo.IsSecure = *req.IsSecure
	}
	if req.IsTemplate != nil {
		memo.IsTemplate = *req.IsTemplate
		contentChanged = true
	}
	if req.IsFavorite != nil {
		memo.IsFavorite = *req.IsFavorite
	}
	if req.IsDeleted != nil {
		memo.IsDeleted = *req.IsDeleted
	}

	if contentChanged {
		memo.TemplateVariables = discoverVariables(memo.Value, memo.IsTemplate)
	}

	memo.LastEdited = time.Now()
	memo.Version++
	memo.LastEditDevice = req.DeviceID

	if err := s.repo.Update(memo); err != nil {
		return nil, err
	}

	response := memo.ToResponse()

	if s.syncService != nil {
		s.syncService.BroadcastMemoUpdate(userID, req.DeviceID, response)
	}

	return response, nil
}

func (s *MemoService) Delete(userID, memoID, deviceID string) error {
	memo, err := s.ownedMemo(userID, memoID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(memoID); err != nil {
		return err
	}

	if s.syncService != nil {
		s.syncService.BroadcastMemoDelete(userID, deviceID, memoID, memo.Version+1)
	}

	return nil
}

// Touch records one use of the memo: the clip counter goes up and other
// devices learn about it through the usual version bump.
func (s *MemoService) Touch(userID, memoID, deviceID string) (*domain.MemoResponse, error) {
	memo, err := s.ownedMemo(userID, memoID)
	if err != nil {
		return nil, err
	}

	memo.ClipCount++
	memo.Version++
	memo.LastEditDevice = deviceID

	if err := s.repo.Update(memo); err != nil {
		return nil, err
	}

	response := memo.ToResponse()

	if s.syncService != nil {
		s.syncService.BroadcastMemoUpdate(userID, deviceID, response)
	}

	return response, nil
}

// Render produces the memo's deliverable text: automatic variables resolve
// from the clock, custom placeholders from the supplied values, and anything
// still missing stays verbatim. In strict mode missing values are an error
// instead. A successful render counts as a use.
func (s *MemoService) Render(userID, memoID string, req *domain.RenderMemoRequest) (*domain.RenderMemoResponse, error) {
	memo, err := s.ownedMemo(userID, memoID)
	if err != nil {
		return nil, err
	}

	text := memo.Value
	unresolved := template.Unresolved(text, req.Values)
	if req.Strict && len(unresolved) > 0 {
		return nil, &UnresolvedPlaceholdersError{Placeholders: unresolved}
	}

	rendered := s.engine.Substitute(text, req.Values)

	var warnings []string
	for placeholder, value := range req.Values {
		if err := s.engine.CommitValue(placeholder, value); err != nil {
			warnings = append(warnings, fmt.Sprintf("failed to save value for %s: %v", placeholder, err))
		}
	}

	if req.DeviceID != "" {
		if _, err := s.Touch(userID, memoID, req.DeviceID); err != nil {
			log.Printf("failed to record memo use after render: %v", err)
		}
	}

	return &domain.RenderMemoResponse{
		Rendered:   rendered,
		Unresolved: unresolved,
		Warnings:   warnings,
	}, nil
}

// Placeholders returns the memo's custom placeholders with their recorded
// value histories, ready for the client's fill-in flow.
func (s *MemoService) Placeholders(userID, memoID string) (map[string][]string, error) {
	memo, err := s.ownedMemo(userID, memoID)
	if err != nil {
		return nil, err
	}

	histories := make(map[string][]string)
	for _, placeholder := range template.ExtractPlaceholders(memo.Value) {
		histories[placeholder] = s.engine.HistoricalValues(placeholder)
	}

	return histories, nil
}

func (s *MemoService) Versions(userID, memoID string, limit int) ([]*domain.MemoVersion, error) {
	if _, err := s.ownedMemo(userID, memoID); err != nil {
		return nil, err
	}
	if s.versionRepo == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}
	return s.versionRepo.GetVersions(memoID, limit)
}

func (s *MemoService) ownedMemo(userID, memoID string) (*domain.Memo, error) {
	memo, err := s.repo.FindByID(memoID)
	if err != nil {
		return nil, err
	}
	if memo.UserID != userID {
		return nil, errors.New("unauthorized: memo does not belong to user")
	}
	return memo, nil
}

// discoverVariables recomputes the cached placeholder list. Non-template
// memos cache none.
func discoverVariables(value string, isTemplate bool) []string {
	if !isTemplate {
		return nil
	}
	return template.ExtractPlaceholders(value)
}

// toResponses skips soft-deleted memos. The repository keeps them visible
// so sync can emit delete operations, but list endpoints hide them.
func toResponses(memos []*domain.Memo) []*domain.MemoResponse {
	var responses []*domain.MemoResponse
	for _, m := range memos {
		if m.IsDeleted {
			continue
		}
		responses = append(responses, m.ToResponse())
	}
	return responses
}
