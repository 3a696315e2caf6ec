package classify

import "fmt"

type forwardKey struct {
	incomeType  string
	description string
	qualifier   string
}

type reverseKey struct {
	class IncomeClass
	code  DescriptionCode
}

var (
	forward = map[forwardKey]row{}
	reverse = map[reverseKey]ExternalCode{}
)

func init() {
	for _, r := range table {
		fk := forwardKey{r.incomeType, r.description, r.qualifier}
		if _, dup := forward[fk]; dup {
			panic(fmt.Sprintf("classify: duplicate table row %+v", fk))
		}
		forward[fk] = r

		rk := reverseKey{r.class, r.code}
		if _, dup := reverse[rk]; dup {
			panic(fmt.Sprintf("classify: reverse mapping not unique for %s/%s", r.class, r.code))
		}
		reverse[rk] = ExternalCode{
			IncomeType:  r.incomeType,
			Description: r.description,
			Qualifier:   r.qualifier,
		}
	}
}

// Classify resolves a raw entry to its income class and normalized description
// code. Resolution order: the qualifier-specific row if the entry carries a
// qualifier the table knows, otherwise the plain type+description row,
// otherwise unmapped. Unknown qualifiers resolve identically to no qualifier;
// that equivalence is part of the contract, not an error.
func Classify(e Entry) (IncomeClass, DescriptionCode) {
	if e.Qualifier != "" {
		if r, ok := forward[forwardKey{e.IncomeType, e.Description, e.Qualifier}]; ok {
			return r.class, r.code
		}
	}
	if r, ok := forward[forwardKey{e.IncomeType, e.Description, ""}]; ok {
		return r.class, r.code
	}
	return ClassUnmapped, CodeUnknown
}

// Reverse maps an income class and normalized code back to the external wire
// triple. For every canonically classified code this is a left inverse of
// Classify, which is what re-serialization of stored records relies on.
func Reverse(class IncomeClass, code DescriptionCode) (ExternalCode, bool) {
	ext, ok := reverse[reverseKey{class, code}]
	return ext, ok
}
