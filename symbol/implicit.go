package symbol

import (
	"unicode"

	"github.com/pkg/errors"

	"github.com/fortgo/fortgo/token"
)

// ImplicitRules stores implicit typing rules for a scope
type ImplicitRules struct {
	IsNone      bool            // IMPLICIT NONE specified?
	LetterTypes [26]token.Token // Type for each letter A-Z (Undefined = no rule)
	LetterKinds [26]int         // Kind for each letter (0 = default)
}

// Copy creates a deep copy of ImplicitRules
func (ir *ImplicitRules) Copy() *ImplicitRules {
	if ir == nil {
		return nil
	}
	newRules := &ImplicitRules{
		IsNone: ir.IsNone,
	}
	copy(newRules.LetterTypes[:], ir.LetterTypes[:])
	copy(newRules.LetterKinds[:], ir.LetterKinds[:])
	return newRules
}

// TypeForName determines the type for an identifier based on implicit
// typing rules. It returns an error when IMPLICIT NONE is active or the
// name has no rule.
func (ir *ImplicitRules) TypeForName(name string) (*ResolvedType, error) {
	if name == "" {
		return nil, errors.New("cannot apply implicit type to empty name")
	}
	if ir.IsNone {
		return nil, errors.Errorf("variable %s used without declaration (IMPLICIT NONE active)", name)
	}

	firstLetter := unicode.ToUpper(rune(name[0]))
	if firstLetter < 'A' || firstLetter > 'Z' {
		return nil, errors.Errorf("identifier %s does not start with a letter", name)
	}

	idx := firstLetter - 'A'
	base := ir.LetterTypes[idx]
	if base == token.Undefined {
		return nil, errors.Errorf("no implicit type defined for letter %c", firstLetter)
	}
	return &ResolvedType{Base: base, Kind: ir.LetterKinds[idx]}, nil
}

// defaultImplicitRules returns the default Fortran 77/90 implicit typing
// rules: I-N are INTEGER, A-H and O-Z are REAL.
func defaultImplicitRules() *ImplicitRules {
	rules := &ImplicitRules{}

	for ch := 'A'; ch <= 'H'; ch++ {
		rules.LetterTypes[ch-'A'] = token.REAL
	}
	for ch := 'I'; ch <= 'N'; ch++ {
		rules.LetterTypes[ch-'A'] = token.INTEGER
	}
	for ch := 'O'; ch <= 'Z'; ch++ {
		rules.LetterTypes[ch-'A'] = token.REAL
	}

	return rules
}
