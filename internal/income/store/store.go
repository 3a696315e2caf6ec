// Package store persists income records and their lookup mappings. Two
// implementations exist: PostgresStore for production and InMemoryStore for
// unit tests. Both return sentinel.ErrNotFound for absent records so services
// can branch without knowing the backend.
package store

import (
	"context"
	"time"

	"inntektlager/internal/income/models"
	"inntektlager/pkg/domain"
)

// Store is the persistence boundary of the income module.
//
// Insert writes the record and its lookup mapping in one transaction, so a
// canonical mapping is never observable without its backing record. There is
// deliberately no uniqueness on the lookup key: concurrent misses for the
// same key may both insert, and LookupLatest resolves to the newest mapping.
type Store interface {
	// LookupLatest resolves a key to its canonical (most recently mapped)
	// record. A key with a national id also matches mappings stored without
	// one; a key without a national id wildcards it.
	LookupLatest(ctx context.Context, key models.LookupKey) (*models.IncomeRecord, error)

	// GetByID loads a record directly, bypassing lookup canonicality.
	GetByID(ctx context.Context, id domain.RecordID) (*models.IncomeRecord, error)

	// Insert stores a new record and maps the key to it.
	Insert(ctx context.Context, key models.LookupKey, record *models.IncomeRecord) error

	// MarkUsed sets the used flag. Idempotent: marking an already-used record
	// reports updated=false with no error. The flag never reverts.
	MarkUsed(ctx context.Context, id domain.RecordID) (updated bool, err error)

	// DeleteExpired removes records created before cutoff that are neither
	// used nor manually edited, returning the number removed. The predicate
	// is per-record; a newer record for the same key never shields an old one.
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}
