package token

// Token identifies a Fortran keyword, operator, or literal class carried on
// tree nodes. The middle tier never lexes source text, so the set here is
// limited to what declarations and expressions reference.
type Token int

// List of all tokens referenced by the tree representation.
// When adding a new token add it in between blocks since we use comparison
// functions to check properties of tokens.
const (
	// Not to be used in code. Is to catch uninitialized tokens.
	Undefined Token = iota

	// ==================== KEYWORDS ====================

	// Type declaration keywords
	INTEGER
	REAL
	COMPLEX
	LOGICAL
	CHARACTER
	DOUBLEPRECISION

	// Attribute keywords
	PARAMETER
	DIMENSION
	ALLOCATABLE
	POINTER
	TARGET
	OPTIONAL
	SAVE
	EXTERNAL
	INTRINSIC
	INTENT
	RECURSIVE
	ELEMENTAL
	PURE

	// ==================== OPERATORS ====================

	// Arithmetic operators
	Plus
	Minus
	Asterisk
	Slash
	DoubleStar

	// Assignment operators
	Equals
	PointerAssign

	// Relational operators
	EQ
	NE
	LT
	LE
	GT
	GE

	// Logical operators
	AND
	OR
	NOT
	EQV
	NEQV

	// String operator
	StringConcat

	numToks
)

var tokenNames = [numToks]string{
	Undefined:       "<undefined>",
	INTEGER:         "INTEGER",
	REAL:            "REAL",
	COMPLEX:         "COMPLEX",
	LOGICAL:         "LOGICAL",
	CHARACTER:       "CHARACTER",
	DOUBLEPRECISION: "DOUBLE PRECISION",
	PARAMETER:       "PARAMETER",
	DIMENSION:       "DIMENSION",
	ALLOCATABLE:     "ALLOCATABLE",
	POINTER:         "POINTER",
	TARGET:          "TARGET",
	OPTIONAL:        "OPTIONAL",
	SAVE:            "SAVE",
	EXTERNAL:        "EXTERNAL",
	INTRINSIC:       "INTRINSIC",
	INTENT:          "INTENT",
	RECURSIVE:       "RECURSIVE",
	ELEMENTAL:       "ELEMENTAL",
	PURE:            "PURE",
	Plus:            "+",
	Minus:           "-",
	Asterisk:        "*",
	Slash:           "/",
	DoubleStar:      "**",
	Equals:          "=",
	PointerAssign:   "=>",
	EQ:              ".EQ.",
	NE:              ".NE.",
	LT:              ".LT.",
	LE:              ".LE.",
	GT:              ".GT.",
	GE:              ".GE.",
	AND:             ".AND.",
	OR:              ".OR.",
	NOT:             ".NOT.",
	EQV:             ".EQV.",
	NEQV:            ".NEQV.",
	StringConcat:    "//",
}

func (tok Token) String() string {
	if tok < 0 || tok >= numToks {
		return "<illegal>"
	}
	return tokenNames[tok]
}

// IsTypeKeyword returns true for intrinsic type specification keywords.
func (tok Token) IsTypeKeyword() bool {
	return tok >= INTEGER && tok <= DOUBLEPRECISION
}

// IsAttributeKeyword returns true for declaration attribute keywords.
func (tok Token) IsAttributeKeyword() bool {
	return tok >= PARAMETER && tok <= PURE
}

// IsRelational returns true for comparison operators.
func (tok Token) IsRelational() bool {
	return tok >= EQ && tok <= GE
}

// IsLogicalOp returns true for logical operators.
func (tok Token) IsLogicalOp() bool {
	return tok >= AND && tok <= NEQV
}
