package service

import (
	"errors"
	"testing"

	"clipmemo-sync-server/internal/domain"
	"clipmemo-sync-server/internal/template"
)

func newTestTemplateService() (*TemplateService, *mapValueStore) {
	store := newMapValueStore()
	engine := template.NewEngine(store, testClock, 0)
	return NewTemplateService(engine), store
}

func TestTemplateService_Extract(t *testing.T) {
	service, _ := newTestTemplateService()

	resp := service.Extract("{이름}님, {날짜}에 {장소}에서 뵙겠습니다")

	want := []string{"{이름}", "{장소}"}
	if len(resp.Placeholders) != len(want) {
		t.Fatalf("placeholders = %v, want %v", resp.Placeholders, want)
	}
	for i, p := range want {
		if resp.Placeholders[i] != p {
			t.Errorf("placeholders[%d] = %q, want %q", i, resp.Placeholders[i], p)
		}
	}
}

func TestTemplateService_Substitute(t *testing.T) {
	service, _ := newTestTemplateService()

	resp, err := service.Substitute(&domain.SubstituteRequest{
		Text:   "{이름}님, 오늘은 {날짜}입니다",
		Values: map[string]string{"{이름}": "김철수"},
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	want := "김철수님, 오늘은 2026년 3월 15일입니다"
	if resp.Rendered != want {
		t.Errorf("rendered = %q, want %q", resp.Rendered, want)
	}
}

func TestTemplateService_SubstituteStrict(t *testing.T) {
	service, _ := newTestTemplateService()

	_, err := service.Substitute(&domain.SubstituteRequest{
		Text:   "{이름}님, {회사} 안내",
		Values: map[string]string{"{이름}": "김철수"},
		Strict: true,
	})

	var unresolved *UnresolvedPlaceholdersError
	if !errors.As(err, &unresolved) {
		t.Fatalf("expected UnresolvedPlaceholdersError, got %v", err)
	}
	if len(unresolved.Placeholders) != 1 || unresolved.Placeholders[0] != "{회사}" {
		t.Errorf("unresolved = %v, want [{회사}]", unresolved.Placeholders)
	}
}

func TestTemplateService_CommitAndHistory(t *testing.T) {
	service, _ := newTestTemplateService()

	service.CommitValue(&domain.CommitValueRequest{Placeholder: "{이름}", Value: "김철수"})
	service.CommitValue(&domain.CommitValueRequest{Placeholder: "{이름}", Value: "이영희"})
	service.CommitValue(&domain.CommitValueRequest{Placeholder: "{이름}", Value: "김철수"})

	history := service.HistoricalValues("{이름}")
	if len(history) != 2 {
		t.Fatalf("expected 2 distinct values, got %v", history)
	}
	if history[0] != "김철수" || history[1] != "이영희" {
		t.Errorf("history = %v", history)
	}
}
