package domain

import "time"

type SyncMetadata struct {
	UserID       string           `json:"user_id"`
	DeviceID     string           `json:"device_id"`
	LastSyncTime time.Time        `json:"last_sync_time"`
	MemoVersions map[string]int64 `json:"memo_versions"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

type SyncRequest struct {
	DeviceID     string           `json:"device_id" validate:"required"`
	LastSyncTime time.Time        `json:"last_sync_time"`
	MemoVersions map[string]int64 `json:"memo_versions"`
}

type SyncResponse struct {
	Changes  []*MemoChange `json:"changes"`
	SyncTime time.Time     `json:"sync_time"`
	HasMore  bool          `json:"has_more"`
}

type MemoChange struct {
	MemoID    string        `json:"memo_id"`
	Operation string        `json:"operation"`
	Version   int64         `json:"version"`
	Memo      *MemoResponse `json:"memo,omitempty"`
}
