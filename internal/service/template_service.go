package service

import (
	"clipmemo-sync-server/internal/domain"
	"clipmemo-sync-server/internal/template"
)

// TemplateService exposes the placeholder engine to ad-hoc callers (the
// keyboard extension mostly): classify-free extraction, substitution of
// arbitrary text, and the shared value history.
type TemplateService struct {
	engine *template.Engine
}

func NewTemplateService(engine *template.Engine) *TemplateService {
	return &TemplateService{engine: engine}
}

func (s *TemplateService) Extract(text string) *domain.ExtractResponse {
	return &domain.ExtractResponse{
		Placeholders: template.ExtractPlaceholders(text),
	}
}

func (s *TemplateService) Substitute(req *domain.SubstituteRequest) (*domain.SubstituteResponse, error) {
	unresolved := template.Unresolved(req.Text, req.Values)
	if req.Strict && len(unresolved) > 0 {
		return nil, &UnresolvedPlaceholdersError{Placeholders: unresolved}
	}

	return &domain.SubstituteResponse{
		Rendered:   s.engine.Substitute(req.Text, req.Values),
		Unresolved: unresolved,
	}, nil
}

func (s *TemplateService) CommitValue(req *domain.CommitValueRequest) error {
	return s.engine.CommitValue(req.Placeholder, req.Value)
}

func (s *TemplateService) HistoricalValues(placeholder string) []string {
	return s.engine.HistoricalValues(placeholder)
}
