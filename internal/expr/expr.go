// Package expr implements Vortex's Expression IR: a small pure-function
// tree evaluated either against a materialized Array (via internal/compute
// kernels) or against an Array's Statistics for pruning (spec.md §4.5).
package expr

import (
	"fmt"
	"strings"

	"github.com/vortexdb/vortex/internal/dtype"
)

// Kind discriminates the Expr sum type.
type Kind uint8

const (
	KindIdentity Kind = iota
	KindLiteral
	KindGetItem
	KindNot
	KindBinary
)

// BinaryOp names one of the binary operators an Expr node may carry.
type BinaryOp uint8

const (
	OpAnd BinaryOp = iota
	OpOr
	OpEq
	OpNotEq
	OpGt
	OpGtEq
	OpLt
	OpLtEq
)

func (op BinaryOp) String() string {
	switch op {
	case OpAnd:
		return "and"
	case OpOr:
		return "or"
	case OpEq:
		return "eq"
	case OpNotEq:
		return "neq"
	case OpGt:
		return "gt"
	case OpGtEq:
		return "gteq"
	case OpLt:
		return "lt"
	case OpLtEq:
		return "lteq"
	default:
		return "unknown"
	}
}

// isComparison reports whether op is one of the relational operators
// (as opposed to the boolean connectives And/Or).
func (op BinaryOp) isComparison() bool { return op != OpAnd && op != OpOr }

// Expr is a node in Vortex's expression tree. Expressions are pure and
// immutable; the zero value is not valid, use the constructors below.
type Expr struct {
	kind Kind

	literal *dtype.Scalar // Literal
	path    []string      // GetItem: dotted path, already split

	child *Expr // GetItem, Not
	lhs   *Expr // Binary
	rhs   *Expr // Binary
	op    BinaryOp
}

// Identity returns the expression that evaluates to its input unchanged.
func Identity() *Expr { return &Expr{kind: KindIdentity} }

// Literal returns a constant-valued expression.
func Literal(s *dtype.Scalar) *Expr { return &Expr{kind: KindLiteral, literal: s} }

// GetItem projects a dotted field path out of child's Struct-typed result.
func GetItem(child *Expr, path string) *Expr {
	return &Expr{kind: KindGetItem, child: child, path: strings.Split(path, ".")}
}

// Not negates a boolean-valued expression.
func Not(child *Expr) *Expr { return &Expr{kind: KindNot, child: child} }

// Binary combines lhs and rhs with op.
func Binary(op BinaryOp, lhs, rhs *Expr) *Expr {
	return &Expr{kind: KindBinary, op: op, lhs: lhs, rhs: rhs}
}

// And, Or, Eq, NotEq, Gt, GtEq, Lt, LtEq are Binary convenience constructors.
func And(lhs, rhs *Expr) *Expr   { return Binary(OpAnd, lhs, rhs) }
func Or(lhs, rhs *Expr) *Expr    { return Binary(OpOr, lhs, rhs) }
func Eq(lhs, rhs *Expr) *Expr    { return Binary(OpEq, lhs, rhs) }
func NotEq(lhs, rhs *Expr) *Expr { return Binary(OpNotEq, lhs, rhs) }
func Gt(lhs, rhs *Expr) *Expr    { return Binary(OpGt, lhs, rhs) }
func GtEq(lhs, rhs *Expr) *Expr  { return Binary(OpGtEq, lhs, rhs) }
func Lt(lhs, rhs *Expr) *Expr    { return Binary(OpLt, lhs, rhs) }
func LtEq(lhs, rhs *Expr) *Expr  { return Binary(OpLtEq, lhs, rhs) }

// Kind reports which alternative of the sum type e is.
func (e *Expr) Kind() Kind { return e.kind }

// Path returns the dotted field path of a GetItem node, already split.
func (e *Expr) Path() []string { return e.path }

func (e *Expr) String() string {
	switch e.kind {
	case KindIdentity:
		return "_"
	case KindLiteral:
		return fmt.Sprintf("%v", e.literal)
	case KindGetItem:
		return fmt.Sprintf("%s.%s", e.child, strings.Join(e.path, "."))
	case KindNot:
		return fmt.Sprintf("not(%s)", e.child)
	case KindBinary:
		return fmt.Sprintf("(%s %s %s)", e.lhs, e.op, e.rhs)
	default:
		return "invalid"
	}
}
