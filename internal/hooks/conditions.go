package hooks

import (
	"fmt"
	"strconv"
	"strings"

	"hook-engine/internal/common/errors"
)

// Condition operators. All clauses of a condition tree are AND-ed; the first
// false short-circuits. Evaluation never panics and never returns an error:
// anything that cannot be evaluated resolves to false.
const (
	OpEq       = "=="
	OpNe       = "!="
	OpGt       = ">"
	OpGte      = ">="
	OpLt       = "<"
	OpLte      = "<="
	OpIn       = "in"
	OpNotIn    = "not_in"
	OpContains = "contains"
)

var validOperators = map[string]bool{
	OpEq: true, OpNe: true,
	OpGt: true, OpGte: true, OpLt: true, OpLte: true,
	OpIn: true, OpNotIn: true, OpContains: true,
}

// clause is one parsed field constraint: every op in ops must hold for the
// context value of field.
type clause struct {
	field string
	ops   []operatorTest
}

type operatorTest struct {
	op      string
	operand interface{}
}

// ConditionSet is a condition tree parsed once from its stored JSON shape,
// ready to evaluate against event contexts.
type ConditionSet struct {
	clauses []clause
}

// ParseConditions converts the stored map shape into a ConditionSet. A nil
// or empty tree parses to a set that matches everything. Parsing is
// tolerant: unknown operators are kept and resolve to false at evaluation,
// matching the engine's degrade-to-not-matched error policy.
func ParseConditions(raw map[string]interface{}) *ConditionSet {
	cs := &ConditionSet{}
	if len(raw) == 0 {
		return cs
	}

	for field, spec := range raw {
		c := clause{field: field}
		if opMap, ok := spec.(map[string]interface{}); ok {
			for op, operand := range opMap {
				c.ops = append(c.ops, operatorTest{op: op, operand: operand})
			}
		} else {
			// A plain literal is shorthand for equality
			c.ops = append(c.ops, operatorTest{op: OpEq, operand: spec})
		}
		cs.clauses = append(cs.clauses, c)
	}

	return cs
}

// ValidateConditions checks a condition tree for unknown operators. Used at
// hook create/update time so that admins get an immediate error instead of a
// rule that silently never matches.
func ValidateConditions(raw map[string]interface{}) error {
	for field, spec := range raw {
		opMap, ok := spec.(map[string]interface{})
		if !ok {
			continue // literal equality
		}
		for op := range opMap {
			if !validOperators[op] {
				return errors.ValidationError(fmt.Sprintf("unknown condition operator %q for field %q", op, field))
			}
		}
	}
	return nil
}

// EvaluateConditions parses and evaluates a raw condition tree in one call.
// An absent tree always matches.
func EvaluateConditions(raw map[string]interface{}, eventCtx map[string]interface{}) bool {
	return ParseConditions(raw).Evaluate(eventCtx)
}

// Evaluate applies the condition set to an event context. Pure, no I/O.
// A field missing from the context makes its clause false rather than an
// error.
func (cs *ConditionSet) Evaluate(eventCtx map[string]interface{}) bool {
	for _, c := range cs.clauses {
		value, present := eventCtx[c.field]
		if !present {
			return false
		}
		for _, test := range c.ops {
			if !evaluateOperator(test.op, value, test.operand) {
				return false
			}
		}
	}
	return true
}

func evaluateOperator(op string, value, operand interface{}) bool {
	switch op {
	case OpEq:
		return valuesEqual(value, operand)
	case OpNe:
		return !valuesEqual(value, operand)
	case OpGt, OpGte, OpLt, OpLte:
		cmp, ok := compareValues(value, operand)
		if !ok {
			return false
		}
		switch op {
		case OpGt:
			return cmp > 0
		case OpGte:
			return cmp >= 0
		case OpLt:
			return cmp < 0
		default:
			return cmp <= 0
		}
	case OpIn:
		return valueInSet(value, operand)
	case OpNotIn:
		return !valueInSet(value, operand)
	case OpContains:
		return strings.Contains(stringify(value), stringify(operand))
	default:
		return false
	}
}

// valuesEqual compares numerically when both sides coerce to float64 (JSON
// decoding yields float64 for all numbers), otherwise by string form.
func valuesEqual(a, b interface{}) bool {
	if na, okA := toFloat64(a); okA {
		if nb, okB := toFloat64(b); okB {
			return na == nb
		}
	}
	return stringify(a) == stringify(b)
}

// compareValues orders two values: numerically when both are numeric,
// lexicographically when both are strings. Anything else is not comparable.
func compareValues(a, b interface{}) (int, bool) {
	na, okA := toFloat64(a)
	nb, okB := toFloat64(b)
	if okA && okB {
		switch {
		case na < nb:
			return -1, true
		case na > nb:
			return 1, true
		default:
			return 0, true
		}
	}

	sa, okA := a.(string)
	sb, okB := b.(string)
	if okA && okB {
		return strings.Compare(sa, sb), true
	}

	return 0, false
}

func valueInSet(value, operand interface{}) bool {
	switch set := operand.(type) {
	case []interface{}:
		for _, item := range set {
			if valuesEqual(value, item) {
				return true
			}
		}
		return false
	case []string:
		for _, item := range set {
			if valuesEqual(value, item) {
				return true
			}
		}
		return false
	default:
		// A scalar operand is treated as a single-element set
		return valuesEqual(value, operand)
	}
}

func toFloat64(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case int32:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint64:
		return float64(v), true
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f, true
		}
		return 0, false
	default:
		return 0, false
	}
}

func stringify(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}
