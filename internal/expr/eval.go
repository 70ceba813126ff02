package expr

import (
	"fmt"

	"github.com/vortexdb/vortex/internal/array"
	"github.com/vortexdb/vortex/internal/compute"
	"github.com/vortexdb/vortex/internal/dtype"
)

var errUnsupportedOp = fmt.Errorf("expr: unsupported binary op")

// Evaluate runs e against a materialized Array by recursive descent,
// dispatching leaf operations to internal/compute kernels (spec.md §4.5).
func Evaluate(e *Expr, a *array.Array) (*array.Array, error) {
	switch e.kind {
	case KindIdentity:
		return a, nil

	case KindLiteral:
		return array.NewConstant(e.literal.DType(), e.literal, a.Length())

	case KindGetItem:
		base, err := Evaluate(e.child, a)
		if err != nil {
			return nil, err
		}
		return getItem(base, e.path)

	case KindNot:
		v, err := Evaluate(e.child, a)
		if err != nil {
			return nil, err
		}
		return compute.Invert(v)

	case KindBinary:
		lhs, err := Evaluate(e.lhs, a)
		if err != nil {
			return nil, err
		}
		rhs, err := Evaluate(e.rhs, a)
		if err != nil {
			return nil, err
		}
		return evalBinary(e.op, lhs, rhs)

	default:
		return nil, fmt.Errorf("expr: Evaluate: invalid expression kind %d", e.kind)
	}
}

func getItem(base *array.Array, path []string) (*array.Array, error) {
	cur := base
	for _, name := range path {
		canon, err := cur.IntoCanonical()
		if err != nil {
			return nil, err
		}
		phys := canon.DType().PhysicalDType()
		if phys.Kind() != dtype.KindStruct {
			return nil, fmt.Errorf("expr: GetItem: %w: %q is not a struct field", compute.ErrDTypeMismatch, name)
		}
		idx := -1
		for i, f := range phys.Fields() {
			if f.Name == name {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, fmt.Errorf("expr: GetItem: %w: no field %q", compute.ErrInvalidArgument, name)
		}
		cur = canon.Child(idx)
	}
	return cur, nil
}

func evalBinary(op BinaryOp, lhs, rhs *array.Array) (*array.Array, error) {
	switch op {
	case OpAnd:
		return compute.And(lhs, rhs)
	case OpOr:
		return compute.Or(lhs, rhs)
	case OpEq:
		return compute.Compare(lhs, rhs, compute.Eq)
	case OpNotEq:
		return compute.Compare(lhs, rhs, compute.NotEq)
	case OpGt:
		return compute.Compare(lhs, rhs, compute.Gt)
	case OpGtEq:
		return compute.Compare(lhs, rhs, compute.GtEq)
	case OpLt:
		return compute.Compare(lhs, rhs, compute.Lt)
	case OpLtEq:
		return compute.Compare(lhs, rhs, compute.LtEq)
	default:
		return nil, errUnsupportedOp
	}
}
