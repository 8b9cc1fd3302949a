package websocket

import (
	"encoding/json"
	"time"
)

type MessageType string

const (
	TypeSyncRequest  MessageType = "sync_request"
	TypeSyncResponse MessageType = "sync_response"
	TypeMemoUpdate   MessageType = "memo_update"
	TypeMemoDelete   MessageType = "memo_delete"
	TypeClipAdded    MessageType = "clip_added"
	TypeAck          MessageType = "ack"
	TypePing         MessageType = "ping"
	TypePong         MessageType = "pong"
)

type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

type SyncRequestPayload struct {
	DeviceID     string           `json:"device_id"`
	LastSyncTime time.Time        `json:"last_sync_time"`
	MemoVersions map[string]int64 `json:"memo_versions"`
}

type SyncResponsePayload struct {
	Changes  []MemoChange `json:"changes"`
	HasMore  bool         `json:"has_more"`
	SyncTime time.Time    `json:"sync_time"`
}

type MemoChange struct {
	MemoID    string          `json:"memo_id"`
	Operation string          `json:"operation"`
	Version   int64           `json:"version"`
	Data      json.RawMessage `json:"data,omitempty"`
}

type MemoUpdatePayload struct {
	MemoID     string          `json:"memo_id"`
	Version    int64           `json:"version"`
	Memo       json.RawMessage `json:"memo"`
	LastEdited time.Time       `json:"last_edited"`
	DeviceID   string          `json:"device_id"`
}

type MemoDeletePayload struct {
	MemoID   string `json:"memo_id"`
	Version  int64  `json:"version"`
	DeviceID string `json:"device_id"`
}

type ClipAddedPayload struct {
	ClipID   string          `json:"clip_id"`
	Clip     json.RawMessage `json:"clip"`
	CopiedAt time.Time       `json:"copied_at"`
	DeviceID string          `json:"device_id"`
}

type AckPayload struct {
	MessageID string `json:"message_id"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
}

func NewMessage(msgType MessageType, payload interface{}) (*Message, error) {
	var payloadBytes json.RawMessage
	if payload != nil {
		bytes, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		payloadBytes = bytes
	}

	return &Message{
		Type:      msgType,
		Timestamp: time.Now(),
		Payload:   payloadBytes,
	}, nil
}

func (m *Message) UnmarshalPayload(v interface{}) error {
	if m.Payload == nil {
		return nil
	}
	return json.Unmarshal(m.Payload, v)
}
