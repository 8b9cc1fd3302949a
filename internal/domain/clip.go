package domain

import "time"

// Clip is one clipboard history entry. DetectedCategory and Confidence come
// from the classifier at record time; CorrectedCategory is an optional user
// override and, when present, wins for display and save-as-memo suggestions.
type Clip struct {
	ID                string    `json:"id"`
	UserID            string    `json:"user_id"`
	Content           string    `json:"content"`
	CopiedAt          time.Time `json:"copied_at"`
	IsTemporary       bool      `json:"is_temporary"`
	DetectedCategory  Category  `json:"detected_category"`
	Confidence        float64   `json:"confidence"`
	CorrectedCategory *Category `json:"corrected_category,omitempty"`
	DeviceID          string    `json:"device_id"`
}

// EffectiveCategory returns the user-corrected category when set, otherwise
// the classifier's detection.
func (c *Clip) EffectiveCategory() Category {
	if c.CorrectedCategory != nil {
		return *c.CorrectedCategory
	}
	return c.DetectedCategory
}

type RecordClipRequest struct {
	Content     string `json:"content" validate:"required"`
	IsTemporary bool   `json:"is_temporary"`
	DeviceID    string `json:"device_id" validate:"required"`
}

type CorrectClipRequest struct {
	Category Category `json:"category" validate:"required"`
}

type ClipResponse struct {
	ID            string    `json:"id"`
	Content       string    `json:"content"`
	CopiedAt      time.Time `json:"copied_at"`
	IsTemporary   bool      `json:"is_temporary"`
	Category      Category  `json:"category"`
	CategoryIcon  string    `json:"category_icon"`
	CategoryColor string    `json:"category_color"`
	Confidence    float64   `json:"confidence"`
	IsCorrected   bool      `json:"is_corrected"`
	DeviceID      string    `json:"device_id"`
}

func (c *Clip) ToResponse() *ClipResponse {
	cat := c.EffectiveCategory()
	return &ClipResponse{
		ID:            c.ID,
		Content:       c.Content,
		CopiedAt:      c.CopiedAt,
		IsTemporary:   c.IsTemporary,
		Category:      cat,
		CategoryIcon:  cat.Icon(),
		CategoryColor: cat.Color(),
		Confidence:    c.Confidence,
		IsCorrected:   c.CorrectedCategory != nil,
		DeviceID:      c.DeviceID,
	}
}

// MemoSuggestion is what the client pre-fills when saving a clip as a memo.
type MemoSuggestion struct {
	Value         string   `json:"value"`
	Category      Category `json:"category"`
	IsSecure      bool     `json:"is_secure"`
	CategoryIcon  string   `json:"category_icon"`
	CategoryColor string   `json:"category_color"`
}
