// Package template implements the memo placeholder engine. A placeholder is
// a {name} token inside memo text. Five reserved names resolve automatically
// from the clock; every other name resolves from a caller-chosen value
// backed by a per-placeholder history of previously accepted values.
// Substitution never fails: tokens without a value stay verbatim.
package template

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"
)

// placeholderRe matches one {name} token: an opening brace, one or more
// non-brace characters, a closing brace. Nested braces are not supported.
var placeholderRe = regexp.MustCompile(`\{[^}]+\}`)

// The reserved automatic placeholder names. They are never solicited from
// the user and never stored in value history.
const (
	TokenDate  = "{날짜}"
	TokenTime  = "{시간}"
	TokenYear  = "{년}"
	TokenMonth = "{월}"
	TokenDay   = "{일}"
)

var automaticTokens = map[string]bool{
	TokenDate:  true,
	TokenTime:  true,
	TokenYear:  true,
	TokenMonth: true,
	TokenDay:   true,
}

// IsAutomatic reports whether token is one of the reserved automatic
// placeholder names.
func IsAutomatic(token string) bool {
	return automaticTokens[token]
}

// ExtractPlaceholders returns the custom placeholder tokens in text,
// deduplicated in first-seen order. Automatic tokens are excluded.
// Malformed brace sequences are plain text, not an error.
func ExtractPlaceholders(text string) []string {
	seen := make(map[string]bool)
	var placeholders []string
	for _, token := range placeholderRe.FindAllString(text, -1) {
		if automaticTokens[token] || seen[token] {
			continue
		}
		seen[token] = true
		placeholders = append(placeholders, token)
	}
	return placeholders
}

// ResolveAutomatic replaces every reserved automatic token in text with its
// value at the given time. It is idempotent: a second pass finds no
// reserved tokens left and returns its input unchanged.
func ResolveAutomatic(text string, now time.Time) string {
	if !strings.Contains(text, "{") {
		return text
	}
	replacer := strings.NewReplacer(
		TokenDate, fmt.Sprintf("%d년 %d월 %d일", now.Year(), int(now.Month()), now.Day()),
		TokenTime, now.Format("15:04"),
		TokenYear, fmt.Sprintf("%d", now.Year()),
		TokenMonth, fmt.Sprintf("%d", int(now.Month())),
		TokenDay, fmt.Sprintf("%d", now.Day()),
	)
	return replacer.Replace(text)
}

// ResolveCustom replaces every occurrence of each placeholder that has an
// entry in values. Placeholders without an entry stay verbatim; callers that
// need full resolution check Unresolved themselves. Replacement walks the
// placeholders of the input text in first-seen order, so a supplied value
// that itself contains a placeholder token is inserted literally.
func ResolveCustom(text string, values map[string]string) string {
	for _, placeholder := range ExtractPlaceholders(text) {
		value, ok := values[placeholder]
		if !ok {
			continue
		}
		text = strings.ReplaceAll(text, placeholder, value)
	}
	return text
}

// Unresolved returns the custom placeholders in text that have no entry in
// values, in first-seen order.
func Unresolved(text string, values map[string]string) []string {
	var missing []string
	for _, placeholder := range ExtractPlaceholders(text) {
		if _, ok := values[placeholder]; !ok {
			missing = append(missing, placeholder)
		}
	}
	return missing
}

// ValueStore is the persistence boundary for placeholder value history.
// Get returns the history for one placeholder name, oldest first; Set
// replaces it. Implementations decide durability; the engine treats a Get
// failure as an empty history so interactive use never blocks on a corrupt
// store.
type ValueStore interface {
	Get(placeholder string) ([]string, error)
	Set(placeholder string, values []string) error
}

// DefaultHistoryLimit caps how many values one placeholder accumulates.
// The oldest value is dropped once the cap is reached.
const DefaultHistoryLimit = 50

// Clock supplies the current time for automatic token resolution.
type Clock func() time.Time

// Engine binds the pure substitution functions to a value store and clock.
type Engine struct {
	store        ValueStore
	now          Clock
	historyLimit int

	mu       sync.Mutex
	keyLocks map[string]*sync.Mutex
}

// NewEngine creates an Engine over the given store. A nil clock defaults to
// time.Now, a non-positive limit to DefaultHistoryLimit.
func NewEngine(store ValueStore, now Clock, historyLimit int) *Engine {
	if now == nil {
		now = time.Now
	}
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	return &Engine{
		store:        store,
		now:          now,
		historyLimit: historyLimit,
		keyLocks:     make(map[string]*sync.Mutex),
	}
}

// Substitute applies automatic resolution, then custom values. Unresolved
// custom tokens stay verbatim.
func (e *Engine) Substitute(text string, values map[string]string) string {
	return ResolveCustom(ResolveAutomatic(text, e.now()), values)
}

// CommitValue appends value to the history for placeholder unless it is
// already present. Automatic placeholders are never recorded. Appends to the
// same placeholder are serialized with a per-key lock; appends to different
// placeholders are independent.
func (e *Engine) CommitValue(placeholder, value string) error {
	if automaticTokens[placeholder] || value == "" {
		return nil
	}

	lock := e.keyLock(placeholder)
	lock.Lock()
	defer lock.Unlock()

	values, err := e.store.Get(placeholder)
	if err != nil {
		// Corrupt or missing history starts over empty.
		values = nil
	}

	for _, v := range values {
		if v == value {
			return nil
		}
	}

	values = append(values, value)
	if len(values) > e.historyLimit {
		values = values[len(values)-e.historyLimit:]
	}

	if err := e.store.Set(placeholder, values); err != nil {
		return fmt.Errorf("failed to save value history for %s: %w", placeholder, err)
	}
	return nil
}

// HistoricalValues returns the recorded history for placeholder, oldest
// first. A failed load reads as empty.
func (e *Engine) HistoricalValues(placeholder string) []string {
	values, err := e.store.Get(placeholder)
	if err != nil {
		return nil
	}
	return values
}

func (e *Engine) keyLock(placeholder string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	lock, ok := e.keyLocks[placeholder]
	if !ok {
		lock = &sync.Mutex{}
		e.keyLocks[placeholder] = lock
	}
	return lock
}
