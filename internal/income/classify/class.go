// Package classify maps raw income entries from the external source onto the
// small set of benefit-relevant income classes. The mapping is a deterministic
// table lookup resolved in order of specificity: a qualifier-specific row
// first, then the plain type+description row, then unmapped.
package classify

// IncomeClass is a benefit-relevant income class. The wire values are the
// Norwegian class names used by downstream entitlement calculation.
type IncomeClass string

const (
	ClassEmployment                 IncomeClass = "ARBEIDSINNTEKT"
	ClassFishing                    IncomeClass = "FANGST_FISKE"
	ClassSchemePay                  IncomeClass = "TILTAKSLOENN"
	ClassUnemploymentBenefit        IncomeClass = "DAGPENGER"
	ClassUnemploymentBenefitFishing IncomeClass = "DAGPENGER_FANGST_FISKE"
	ClassSickPay                    IncomeClass = "SYKEPENGER"
	ClassSickPayFishing             IncomeClass = "SYKEPENGER_FANGST_FISKE"
	ClassParentalBenefit            IncomeClass = "FORELDREPENGER"
	ClassPregnancyBenefit           IncomeClass = "SVANGERSKAPSPENGER"
	ClassCareBenefit                IncomeClass = "OMSORGSPENGER"
	ClassAttendanceBenefit          IncomeClass = "PLEIEPENGER"
	ClassTrainingBenefit            IncomeClass = "OPPLAERINGSPENGER"
	ClassUnmapped                   IncomeClass = "UKLASSIFISERT"
)

// DescriptionCode is the normalized form of an external description code.
// Together with the income class it uniquely identifies the external
// (type, description, qualifier) triple it was derived from.
type DescriptionCode string

// CodeUnknown is returned for entries with no canonical classification.
const CodeUnknown DescriptionCode = "UKJENT"

// Entry is a raw income entry as reported by the external source. Qualifier
// is the optional special earning circumstance attached to the entry.
type Entry struct {
	Amount      float64 `json:"beloep"`
	IncomeType  string  `json:"inntektType"`
	Description string  `json:"beskrivelse"`
	Qualifier   string  `json:"spesielleInntjeningsforhold,omitempty"`
}

// ExternalCode is the external wire triple recovered by the reverse mapping.
type ExternalCode struct {
	IncomeType  string
	Description string
	Qualifier   string
}

// Raw income types as used on the wire.
const (
	TypeWage          = "LOENNSINNTEKT"
	TypeBusiness      = "NAERINGSINNTEKT"
	TypePublicBenefit = "YTELSE_FRA_OFFENTLIGE"
	TypePension       = "PENSJON_ELLER_TRYGD"
)

// Special earning circumstance qualifiers with classification significance.
// Any other qualifier value is treated exactly as if no qualifier were set.
const (
	QualifierFishingCrew      = "hyreTilMannskapPaaFiskeBaat"
	QualifierEmploymentScheme = "loennVedArbeidsmarkedstiltak"
)
