// Package models defines the income module's storage and projection types.
package models

import (
	"time"

	"inntektlager/internal/income/classify"
	"inntektlager/pkg/domain"
	dErrors "inntektlager/pkg/domain-errors"
)

// MaxJustificationLength caps the free-text justification on manual edits.
const MaxJustificationLength = 1024

// LookupKey addresses a cached income record. NationalID is optional; when
// absent the lookup wildcards it. Multiple records may exist for the same
// actor across contexts or recalculated dates; the newest mapping wins.
type LookupKey struct {
	ActorID         domain.ActorID
	NationalID      domain.NationalID
	ContextID       string
	ContextType     string
	CalculationDate time.Time
}

// Validate rejects keys that cannot address anything.
func (k LookupKey) Validate() error {
	if k.ActorID == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "actor id is required")
	}
	if k.ContextID == "" || k.ContextType == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "context id and type are required")
	}
	if k.CalculationDate.IsZero() {
		return dErrors.New(dErrors.CodeInvalidInput, "calculation date is required")
	}
	return nil
}

// ManualEdit carries the editor identity and optional justification attached
// to a manually corrected record.
type ManualEdit struct {
	EditedBy      string
	Justification string
}

// Validate enforces the manual-edit invariants: a non-empty editor and a
// justification no longer than MaxJustificationLength characters.
func (e ManualEdit) Validate() error {
	if e.EditedBy == "" {
		return dErrors.New(dErrors.CodeValidation, "manual edit requires an editor identity")
	}
	if len(e.Justification) > MaxJustificationLength {
		return dErrors.Newf(dErrors.CodeValidation, "justification exceeds %d characters", MaxJustificationLength)
	}
	return nil
}

// IncomeRecord is the unit of storage. Created on write-through and never
// updated afterwards except the Used flag, which only moves false to true.
type IncomeRecord struct {
	ID             domain.RecordID
	Payload        Payload
	Used           bool
	ManuallyEdited bool
	EditedBy       string
	Justification  string
	CreatedAt      time.Time
}

// Payload is the structured income document as received from the external
// source, one entry list per calendar month.
type Payload struct {
	ActorID domain.ActorID `json:"aktoerId"`
	Months  []MonthEntries `json:"arbeidsInntektMaaned"`
}

// Validate checks the fields the store and projection depend on. Unknown
// upstream fields are tolerated; absence of required ones is not.
func (p Payload) Validate() error {
	if p.ActorID == "" {
		return dErrors.New(dErrors.CodeValidation, "payload missing actor id")
	}
	for _, m := range p.Months {
		if m.Month == (domain.Month{}) {
			return dErrors.New(dErrors.CodeValidation, "payload month entry missing year-month")
		}
	}
	return nil
}

// MonthEntries groups the raw entries reported for one calendar month.
type MonthEntries struct {
	Month   domain.Month     `json:"aarMaaned"`
	Entries []classify.Entry `json:"inntektListe"`
}

// ClassifiedEntry is one amount with its resolved benefit income class.
type ClassifiedEntry struct {
	Amount      float64              `json:"beloep"`
	IncomeClass classify.IncomeClass `json:"inntektKlasse"`
}

// ClassifiedIncomeMonth is the derived projection of one month. Never persisted.
type ClassifiedIncomeMonth struct {
	Month   domain.Month      `json:"aarMaaned"`
	Entries []ClassifiedEntry `json:"klassifiserteInntekter"`
}

// ClassifiedResult is what Resolve returns: the canonical record id plus the
// classified projection of its payload over the earnings period.
type ClassifiedResult struct {
	RecordID        domain.RecordID         `json:"inntektsId"`
	ManuallyEdited  bool                    `json:"manueltRedigert"`
	LastClosedMonth domain.Month            `json:"sisteAvsluttendeMaaned"`
	FirstMonth      domain.Month            `json:"foersteMaaned"`
	Months          []ClassifiedIncomeMonth `json:"maaneder"`
}
