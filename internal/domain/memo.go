package domain

import "time"

type Memo struct {
	ID       string   `json:"id"`
	UserID   string   `json:"user_id"`
	Title    string   `json:"title"`
	Value    string   `json:"value"`
	Category Category `json:"category"`

	IsSecure   bool `json:"is_secure"`
	IsTemplate bool `json:"is_template"`
	IsFavorite bool `json:"is_favorite"`

	// TemplateVariables caches the custom placeholders discovered in Value.
	// Recomputed whenever Value or IsTemplate changes.
	TemplateVariables []string `json:"template_variables"`

	ClipCount      int64     `json:"clip_count"`
	CreatedAt      time.Time `json:"created_at"`
	LastEdited     time.Time `json:"last_edited"`
	IsDeleted      bool      `json:"is_deleted"`
	Version        int64     `json:"version"`
	LastEditDevice string    `json:"last_edit_device"`
}

type CreateMemoRequest struct {
	Title      string   `json:"title" validate:"required,max=200"`
	Value      string   `json:"value" validate:"required"`
	Category   Category `json:"category"`
	IsSecure   *bool    `json:"is_secure"`
	IsTemplate bool     `json:"is_template"`
	DeviceID   string   `json:"device_id" validate:"required"`
}

type UpdateMemoRequest struct {
	Title           *string   `json:"title"`
	Value           *string   `json:"value"`
	Category        *Category `json:"category"`
	IsSecure        *bool     `json:"is_secure"`
	IsTemplate      *bool     `json:"is_template"`
	IsFavorite      *bool     `json:"is_favorite"`
	IsDeleted       *bool     `json:"is_deleted"`
	ExpectedVersion *int64    `json:"expected_version"`
	DeviceID        string    `json:"device_id"`
}

type MemoResponse struct {
	ID                string    `json:"id"`
	Title             string    `json:"title"`
	Value             string    `json:"value"`
	Category          Category  `json:"category"`
	CategoryIcon      string    `json:"category_icon"`
	CategoryColor     string    `json:"category_color"`
	IsSecure          bool      `json:"is_secure"`
	IsTemplate        bool      `json:"is_template"`
	IsFavorite        bool      `json:"is_favorite"`
	TemplateVariables []string  `json:"template_variables"`
	ClipCount         int64     `json:"clip_count"`
	CreatedAt         time.Time `json:"created_at"`
	LastEdited        time.Time `json:"last_edited"`
	IsDeleted         bool      `json:"is_deleted"`
	Version           int64     `json:"version"`
	LastEditDevice    string    `json:"last_edit_device"`
}

func (m *Memo) ToResponse() *MemoResponse {
	return &MemoResponse{
		ID:                m.ID,
		Title:             m.Title,
		Value:             m.Value,
		Category:          m.Category,
		CategoryIcon:      m.Category.Icon(),
		CategoryColor:     m.Category.Color(),
		IsSecure:          m.IsSecure,
		IsTemplate:        m.IsTemplate,
		IsFavorite:        m.IsFavorite,
		TemplateVariables: m.TemplateVariables,
		ClipCount:         m.ClipCount,
		CreatedAt:         m.CreatedAt,
		LastEdited:        m.LastEdited,
		IsDeleted:         m.IsDeleted,
		Version:           m.Version,
		LastEditDevice:    m.LastEditDevice,
	}
}

// MemoVersion is a snapshot of a memo taken before an update, kept so
// clients can show edit history per memo.
type MemoVersion struct {
	ID        string    `json:"_id"`
	MemoID    string    `json:"memo_id"`
	Version   int64     `json:"version"`
	Title     string    `json:"title"`
	Value     string    `json:"value"`
	Category  Category  `json:"category"`
	DeviceID  string    `json:"device_id"`
	CreatedAt time.Time `json:"created_at"`
}

// RenderMemoRequest asks for a memo's value with placeholders substituted.
type RenderMemoRequest struct {
	Values   map[string]string `json:"values"`
	Strict   bool              `json:"strict"`
	DeviceID string            `json:"device_id"`
}

type RenderMemoResponse struct {
	Rendered   string   `json:"rendered"`
	Unresolved []string `json:"unresolved,omitempty"`
	// Warnings reports side effects that failed without blocking the
	// render, such as a value-history save error.
	Warnings []string `json:"warnings,omitempty"`
}
