package ledger

import (
	"errors"
	"fmt"

	"contourqa/internal/failure"
)

var (
	// ErrEntryNotFound is returned when an id does not resolve.
	ErrEntryNotFound = fmt.Errorf("%w: audit entry", failure.ErrNotFound)
	// ErrNoPayload is returned by Replay for entries without a scan snapshot.
	ErrNoPayload = fmt.Errorf("%w: audit entry has no scan payload", failure.ErrNotFound)
	// ErrRelatedNotFound is returned by Append when RelatedEntryID does not resolve.
	ErrRelatedNotFound = fmt.Errorf("%w: related audit entry", failure.ErrNotFound)
	// ErrInvalidDraft is returned when a draft lacks an actor or action.
	ErrInvalidDraft = fmt.Errorf("%w: audit draft", failure.ErrValidation)
	// ErrSchemaMismatch indicates the database schema version doesn't match the expected version.
	ErrSchemaMismatch = errors.New("schema version mismatch")
)

func persistenceError(operation string, err error) error {
	return failure.Wrap(failure.ErrPersistence, "ledger", operation, "", err)
}
