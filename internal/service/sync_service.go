package service

import (
	"encoding/json"
	"time"

	"clipmemo-sync-server/internal/domain"
	"clipmemo-sync-server/internal/repository"
	"clipmemo-sync-server/internal/websocket"
)

type SyncService struct {
	memoRepo     repository.MemoRepository
	metadataRepo repository.SyncMetadataRepository
	wsManager    *websocket.Manager
}

func NewSyncService(
	memoRepo repository.MemoRepository,
	metadataRepo repository.SyncMetadataRepository,
	wsManager *websocket.Manager,
) *SyncService {
	return &SyncService{
		memoRepo:     memoRepo,
		metadataRepo: metadataRepo,
		wsManager:    wsManager,
	}
}

func (s *SyncService) ProcessSyncRequest(userID, deviceID string, req *domain.SyncRequest) (*domain.SyncResponse, error) {
	memos, err := s.memoRepo.List(userID)
	if err != nil {
		return nil, err
	}

	var changes []*domain.MemoChange

	for _, memo := range memos {
		clientVersion, exists := req.MemoVersions[memo.ID]

		if !exists || clientVersion < memo.Version {
			operation := "update"
			if memo.IsDeleted {
				operation = "delete"
			}

			changes = append(changes, &domain.MemoChange{
				MemoID:    memo.ID,
				Operation: operation,
				Version:   memo.Version,
				Memo:      memo.ToResponse(),
			})
		}
	}

	syncTime := time.Now()
	if err := s.metadataRepo.UpdateLastSync(userID, deviceID, syncTime); err != nil {
		return nil, err
	}

	for memoID, version := range req.MemoVersions {
		if err := s.metadataRepo.UpdateMemoVersion(userID, deviceID, memoID, version); err != nil {
			continue
		}
	}

	return &domain.SyncResponse{
		Changes:  changes,
		SyncTime: syncTime,
		HasMore:  false,
	}, nil
}

func (s *SyncService) GetChangesSince(userID string, since time.Time) ([]*domain.MemoChange, error) {
	memos, err := s.memoRepo.List(userID)
	if err != nil {
		return nil, err
	}

	var changes []*domain.MemoChange

	for _, memo := range memos {
		if memo.LastEdited.After(since) {
			operation := "update"
			if memo.IsDeleted {
				operation = "delete"
			}

			changes = append(changes, &domain.MemoChange{
				MemoID:    memo.ID,
				Operation: operation,
				Version:   memo.Version,
				Memo:      memo.ToResponse(),
			})
		}
	}

	return changes, nil
}

func (s *SyncService) BroadcastMemoUpdate(userID, deviceID string, memo *domain.MemoResponse) error {
	data, err := json.Marshal(memo)
	if err != nil {
		return err
	}

	msg, err := websocket.NewMessage(websocket.TypeMemoUpdate, &websocket.MemoUpdatePayload{
		MemoID:     memo.ID,
		Version:    memo.Version,
		Memo:       data,
		LastEdited: memo.LastEdited,
		DeviceID:   deviceID,
	})
	if err != nil {
		return err
	}

	return s.wsManager.BroadcastToUser(userID, msg, deviceID)
}

func (s *SyncService) BroadcastMemoDelete(userID, deviceID, memoID string, version int64) error {
	msg, err := websocket.NewMessage(websocket.TypeMemoDelete, &websocket.MemoDeletePayload{
		MemoID:   memoID,
		Version:  version,
		DeviceID: deviceID,
	})
	if err != nil {
		return err
	}

	return s.wsManager.BroadcastToUser(userID, msg, deviceID)
}

func (s *SyncService) BroadcastClipAdded(userID, deviceID string, clip *domain.ClipResponse) error {
	data, err := json.Marshal(clip)
	if err != nil {
		return err
	}

	msg, err := websocket.NewMessage(websocket.TypeClipAdded, &websocket.ClipAddedPayload{
		ClipID:   clip.ID,
		Clip:     data,
		CopiedAt: clip.CopiedAt,
		DeviceID: deviceID,
	})
	if err != nil {
		return err
	}

	return s.wsManager.BroadcastToUser(userID, msg, deviceID)
}
