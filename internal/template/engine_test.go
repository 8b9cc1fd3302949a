package template

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"
	"time"
)

type memoryStore struct {
	mu     sync.Mutex
	values map[string][]string
	getErr error
	setErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{values: make(map[string][]string)}
}

func (s *memoryStore) Get(placeholder string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	return append([]string(nil), s.values[placeholder]...), nil
}

func (s *memoryStore) Set(placeholder string, values []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.setErr != nil {
		return s.setErr
	}
	s.values[placeholder] = append([]string(nil), values...)
	return nil
}

func fixedClock() time.Time {
	return time.Date(2026, time.March, 15, 9, 30, 0, 0, time.UTC)
}

func TestExtractPlaceholders(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"no placeholders", "그냥 일반 텍스트입니다", nil},
		{"single custom", "{이름}님 안녕하세요", []string{"{이름}"}},
		{"automatic excluded", "안녕하세요 {이름}님, {날짜}에 뵙겠습니다", []string{"{이름}"}},
		{"all automatic excluded", "{날짜} {시간} {년} {월} {일}", nil},
		{"dedup keeps first-seen order", "{회사} {이름} {회사} {이름} {직급}", []string{"{회사}", "{이름}", "{직급}"}},
		{"unmatched brace is plain text", "중괄호 { 하나는 무시", nil},
		{"empty braces not a token", "{} 안에 아무것도 없음", nil},
		{"mixed", "{시간}에 {장소}에서 {이름}님과 {장소} 답사", []string{"{장소}", "{이름}"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractPlaceholders(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractPlaceholders(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestResolveAutomatic(t *testing.T) {
	now := fixedClock()

	got := ResolveAutomatic("오늘은 {날짜}, 지금은 {시간}", now)
	want := "오늘은 2026년 3월 15일, 지금은 09:30"
	if got != want {
		t.Errorf("ResolveAutomatic = %q, want %q", got, want)
	}

	got = ResolveAutomatic("{년}/{월}/{일}", now)
	if got != "2026/3/15" {
		t.Errorf("ResolveAutomatic numerals = %q, want 2026/3/15", got)
	}
}

func TestResolveAutomaticIdempotent(t *testing.T) {
	now := fixedClock()
	texts := []string{
		"{날짜}에 만나요",
		"{시간} {년} {월} {일}",
		"자동 변수 없는 텍스트",
		"{이름}님, {날짜}까지 부탁드립니다",
	}
	for _, text := range texts {
		once := ResolveAutomatic(text, now)
		twice := ResolveAutomatic(once, now)
		if once != twice {
			t.Errorf("ResolveAutomatic not idempotent for %q: %q != %q", text, once, twice)
		}
	}
}

func TestResolveCustom(t *testing.T) {
	got := ResolveCustom("{이름}님 안녕하세요", map[string]string{"{이름}": "김철수"})
	if got != "김철수님 안녕하세요" {
		t.Errorf("ResolveCustom = %q, want 김철수님 안녕하세요", got)
	}

	// Missing value leaves the token verbatim.
	got = ResolveCustom("{이름}님 {회사}에서", map[string]string{"{이름}": "김철수"})
	if got != "김철수님 {회사}에서" {
		t.Errorf("ResolveCustom = %q, want 김철수님 {회사}에서", got)
	}

	// One value replaces every occurrence.
	got = ResolveCustom("{이름}, {이름}, 또 {이름}", map[string]string{"{이름}": "이영희"})
	if got != "이영희, 이영희, 또 이영희" {
		t.Errorf("ResolveCustom replace-all = %q", got)
	}
}

func TestResolveCustomValueTokensStayLiteral(t *testing.T) {
	// A supplied value that contains a placeholder token is inserted as-is,
	// regardless of which other values are supplied.
	values := map[string]string{
		"{서명}": "{이름} 드림",
		"{이름}": "김철수",
	}

	for i := 0; i < 50; i++ {
		got := ResolveCustom("안내문 {서명}", values)
		if got != "안내문 {이름} 드림" {
			t.Fatalf("ResolveCustom = %q, want 안내문 {이름} 드림", got)
		}
	}
}

func TestSubstituteNeverFails(t *testing.T) {
	engine := NewEngine(newMemoryStore(), fixedClock, 0)

	texts := []string{"", "{", "}", "{미정}", "{날짜} {미정}", "평범한 텍스트"}
	valueSets := []map[string]string{nil, {}, {"{다른}": "값"}}

	for _, text := range texts {
		for _, values := range valueSets {
			got := engine.Substitute(text, values)
			_ = got
		}
	}

	got := engine.Substitute("{이름}님, {날짜}에 뵙겠습니다", map[string]string{"{이름}": "김철수"})
	want := "김철수님, 2026년 3월 15일에 뵙겠습니다"
	if got != want {
		t.Errorf("Substitute = %q, want %q", got, want)
	}
}

func TestUnresolved(t *testing.T) {
	missing := Unresolved("{이름}님 {회사}에서 {날짜}에", map[string]string{"{이름}": "김철수"})
	if !reflect.DeepEqual(missing, []string{"{회사}"}) {
		t.Errorf("Unresolved = %v, want [{회사}]", missing)
	}

	if missing := Unresolved("자유 텍스트", nil); missing != nil {
		t.Errorf("Unresolved on plain text = %v, want nil", missing)
	}
}

func TestCommitValueDedup(t *testing.T) {
	store := newMemoryStore()
	engine := NewEngine(store, fixedClock, 0)

	if err := engine.CommitValue("{이름}", "김철수"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := engine.CommitValue("{이름}", "김철수"); err != nil {
		t.Fatalf("expected no error on duplicate, got %v", err)
	}
	engine.CommitValue("{이름}", "이영희")

	values := engine.HistoricalValues("{이름}")
	if !reflect.DeepEqual(values, []string{"김철수", "이영희"}) {
		t.Errorf("history = %v, want [김철수 이영희]", values)
	}
}

func TestCommitValueIgnoresAutomatic(t *testing.T) {
	store := newMemoryStore()
	engine := NewEngine(store, fixedClock, 0)

	engine.CommitValue("{날짜}", "2026년 3월 15일")
	engine.CommitValue("{시간}", "09:30")

	if len(store.values) != 0 {
		t.Errorf("automatic placeholders were stored: %v", store.values)
	}
}

func TestCommitValueHistoryLimit(t *testing.T) {
	store := newMemoryStore()
	engine := NewEngine(store, fixedClock, 3)

	for i := 1; i <= 5; i++ {
		engine.CommitValue("{이름}", fmt.Sprintf("사람%d", i))
	}

	values := engine.HistoricalValues("{이름}")
	want := []string{"사람3", "사람4", "사람5"}
	if !reflect.DeepEqual(values, want) {
		t.Errorf("capped history = %v, want %v", values, want)
	}
}

func TestHistoricalValuesFailedLoadReadsEmpty(t *testing.T) {
	store := newMemoryStore()
	store.getErr = errors.New("decode error")
	engine := NewEngine(store, fixedClock, 0)

	if values := engine.HistoricalValues("{이름}"); values != nil {
		t.Errorf("expected empty history on load failure, got %v", values)
	}
}

func TestCommitValueSaveFailurePropagates(t *testing.T) {
	store := newMemoryStore()
	store.setErr = errors.New("disk full")
	engine := NewEngine(store, fixedClock, 0)

	if err := engine.CommitValue("{이름}", "김철수"); err == nil {
		t.Error("expected save failure to propagate")
	}
}

func TestCommitValueConcurrentSameKey(t *testing.T) {
	store := newMemoryStore()
	engine := NewEngine(store, fixedClock, 100)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			engine.CommitValue("{이름}", fmt.Sprintf("사람%d", i%5))
		}(i)
	}
	wg.Wait()

	values := engine.HistoricalValues("{이름}")
	if len(values) != 5 {
		t.Errorf("expected 5 distinct values after concurrent commits, got %d: %v", len(values), values)
	}
	seen := make(map[string]bool)
	for _, v := range values {
		if seen[v] {
			t.Errorf("duplicate value %q in history", v)
		}
		seen[v] = true
	}
}
