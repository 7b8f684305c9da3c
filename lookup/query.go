package lookup

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

const (
	brandNameField   = "openfda.brand_name"
	genericNameField = "openfda.generic_name"
)

var phraseEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// NewLookupQuery trims and NFC-normalizes rawName. It fails with EmptyInput
// when nothing is left.
func NewLookupQuery(rawName string) (LookupQuery, error) {
	name := norm.NFC.String(strings.TrimSpace(rawName))
	if name == "" {
		return LookupQuery{}, errEmptyInput()
	}
	return LookupQuery{RawName: name}, nil
}

// Name returns the trimmed product name.
func (q LookupQuery) Name() string {
	return q.RawName
}

// BuildQuery turns a product name into a descriptor matching either the brand
// or the generic name, limited to a single result. The name is embedded as an
// escaped quoted phrase, so quotes and backslashes cannot alter the expression.
func BuildQuery(rawName string) (ExternalQueryDescriptor, error) {
	q, err := NewLookupQuery(rawName)
	if err != nil {
		return ExternalQueryDescriptor{}, err
	}
	return q.Descriptor(), nil
}

// Descriptor builds the external query for an already validated name.
func (q LookupQuery) Descriptor() ExternalQueryDescriptor {
	phrase := `"` + phraseEscaper.Replace(q.RawName) + `"`
	return ExternalQueryDescriptor{
		SearchExpression: fmt.Sprintf("%s:%s OR %s:%s", brandNameField, phrase, genericNameField, phrase),
		ResultLimit:      1,
	}
}
