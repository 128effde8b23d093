package sat

import "fmt"

// Literal represents a literal, which either represent a boolean variable or
// its negation.
type Literal int

// PositiveLiteral returns the positive literal of variable v.
func PositiveLiteral(v int) Literal {
	return Literal(v * 2)
}

// NegativeLiteral returns the negative literal of variable v.
func NegativeLiteral(v int) Literal {
	return Literal(v*2 + 1)
}

// VarID returns the ID of the literal's variable.
func (l Literal) VarID() int {
	return int(l) / 2
}

// IsPositive returns true if and only if the literal represent the value of
// its boolean variable (i.e. not its negation)
func (l Literal) IsPositive() bool {
	return l&1 == 0
}

// Opposite returns the opposite literal.
func (l Literal) Opposite() Literal {
	return l ^ 1
}

func (l Literal) String() string {
	if l.IsPositive() {
		return fmt.Sprintf("%d", l.VarID())
	} else {
		return fmt.Sprintf("!%d", l.VarID())
	}
}

// DIMACS returns l in 1-based signed DIMACS form, suitable for CNF/clause
// file output (simplified-CNF and learned-clause dumps).
func (l Literal) DIMACS() int {
	if l.IsPositive() {
		return l.VarID() + 1
	}
	return -(l.VarID() + 1)
}

// FromDIMACS converts a 1-based signed DIMACS literal into its internal
// representation. It panics on 0, which DIMACS reserves as a clause
// terminator and is never a valid literal.
func FromDIMACS(l int) Literal {
	if l == 0 {
		panic("sat: DIMACS literal 0 is a terminator, not a literal")
	}
	if l > 0 {
		return PositiveLiteral(l - 1)
	}
	return NegativeLiteral(-l - 1)
}
