package domain

import "time"

// PlaceholderHistory is the persisted value history for one placeholder
// name, shared across every memo using that placeholder. Values are kept in
// acceptance order, oldest first.
type PlaceholderHistory struct {
	Placeholder string    `json:"placeholder"`
	Values      []string  `json:"values"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type CommitValueRequest struct {
	Placeholder string `json:"placeholder" validate:"required"`
	Value       string `json:"value" validate:"required"`
}

type ExtractRequest struct {
	Text string `json:"text"`
}

type ExtractResponse struct {
	Placeholders []string `json:"placeholders"`
}

type SubstituteRequest struct {
	Text   string            `json:"text" validate:"required"`
	Values map[string]string `json:"values"`
	Strict bool              `json:"strict"`
}

type SubstituteResponse struct {
	Rendered   string   `json:"rendered"`
	Unresolved []string `json:"unresolved,omitempty"`
}

type ClassifyRequest struct {
	Text string `json:"text"`
}

type ClassifyResponse struct {
	Category      Category `json:"category"`
	Confidence    float64  `json:"confidence"`
	IsSecure      bool     `json:"is_secure"`
	CategoryIcon  string   `json:"category_icon"`
	CategoryColor string   `json:"category_color"`
}
