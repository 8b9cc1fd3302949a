package service

import (
	"fmt"

	"clipmemo-sync-server/internal/domain"
)

// ConflictError is returned when an update carries an expected version that
// no longer matches the server's memo. Server carries the winning state so
// the client can merge or retry.
type ConflictError struct {
	MemoID        string
	ServerVersion int64
	ClientVersion int64
	Server        *domain.MemoResponse
}

func (e *ConflictError) Error() string {
	return "version conflict detected"
}

// UnresolvedPlaceholdersError is returned by strict rendering when the memo
// still contains custom placeholders without values.
type UnresolvedPlaceholdersError struct {
	Placeholders []string
}

func (e *UnresolvedPlaceholdersError) Error() string {
	return fmt.Sprintf("unresolved placeholders: %v", e.Placeholders)
}
