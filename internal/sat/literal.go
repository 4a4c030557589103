package sat

import "fmt"

// Variable is a dense, 0-based identifier for a boolean variable. Variables
// are created monotonically by NewVariable and are never destroyed during
// solving.
type Variable int32

// Literal is the signed form of a Variable: the variable index shifted left
// by one, with the low bit carrying the sign. The complementary literal
// differs only in that low bit. Watch-list indexing depends on this
// encoding, so it must never change.
type Literal int32

// PositiveLiteral returns the literal asserting that v is true.
func PositiveLiteral(v Variable) Literal {
	return Literal(v) << 1
}

// NegativeLiteral returns the literal asserting that v is false.
func NegativeLiteral(v Variable) Literal {
	return PositiveLiteral(v) ^ 1
}

// Var returns the variable l refers to.
func (l Literal) Var() Variable {
	return Variable(l >> 1)
}

// IsPositive reports whether l asserts its variable rather than its negation.
func (l Literal) IsPositive() bool {
	return l&1 == 0
}

// Opposite returns the complementary literal.
func (l Literal) Opposite() Literal {
	return l ^ 1
}

func (l Literal) String() string {
	if l.IsPositive() {
		return fmt.Sprintf("%d", int(l.Var())+1)
	}
	return fmt.Sprintf("-%d", int(l.Var())+1)
}

// litNone is the sentinel literal used where "no literal" must be
// represented (e.g. decide's result when every variable is assigned).
const litNone Literal = -1
