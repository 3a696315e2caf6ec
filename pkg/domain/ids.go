// Package domain holds the shared value types of the income store: typed
// identifiers and the year-month unit the earnings window is expressed in.
// Parsing happens at trust boundaries; everything past a boundary works with
// the typed forms.
package domain

import (
	"crypto/rand"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	dErrors "inntektlager/pkg/domain-errors"
)

// RecordID identifies a stored income record. It is a ULID: 128 bits,
// time-ordered, encoded as 26 characters of Crockford base-32, so ids sort
// lexicographically in creation order.
type RecordID string

// NewRecordID generates a fresh record id for the given creation time.
func NewRecordID(t time.Time) RecordID {
	return RecordID(ulid.MustNew(ulid.Timestamp(t), rand.Reader).String())
}

// ParseRecordID validates the 26-character ULID format. Malformed ids are
// rejected here, before any store query is attempted.
func ParseRecordID(raw string) (RecordID, error) {
	if len(raw) != ulid.EncodedSize {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "record id must be %d characters", ulid.EncodedSize)
	}
	parsed, err := ulid.ParseStrict(raw)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInvalidInput, "malformed record id")
	}
	return RecordID(parsed.String()), nil
}

func (id RecordID) String() string { return string(id) }

// Time extracts the creation timestamp embedded in the id.
func (id RecordID) Time() time.Time {
	parsed, err := ulid.ParseStrict(string(id))
	if err != nil {
		return time.Time{}
	}
	return time.UnixMilli(int64(parsed.Time())).UTC()
}

// ActorID identifies the person whose income is being resolved.
type ActorID string

// ParseActorID rejects empty or whitespace-only actor ids.
func ParseActorID(raw string) (ActorID, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "actor id is required")
	}
	return ActorID(trimmed), nil
}

func (id ActorID) String() string { return string(id) }

// NationalID is the optional eleven-digit national identity number.
type NationalID string

// ParseNationalID accepts an empty value (the id is optional in lookup keys)
// and otherwise requires exactly eleven digits.
func ParseNationalID(raw string) (NationalID, error) {
	if raw == "" {
		return "", nil
	}
	if len(raw) != 11 {
		return "", dErrors.New(dErrors.CodeInvalidInput, "national id must be 11 digits")
	}
	for _, r := range raw {
		if r < '0' || r > '9' {
			return "", dErrors.New(dErrors.CodeInvalidInput, "national id must be 11 digits")
		}
	}
	return NationalID(raw), nil
}

func (id NationalID) String() string { return string(id) }

// IsZero reports whether the optional national id is absent.
func (id NationalID) IsZero() bool { return id == "" }
