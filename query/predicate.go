package query

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/goliatone/go-tenant-cache/tenant"
)

// Predicate is a node in the backend-agnostic filter tree produced by the
// builder. Backends translate the tree into their native query form; the
// in-process evaluator in this package interprets it directly.
type Predicate interface {
	// Describe returns a textual form of the node for debugging and logging.
	Describe() string
}

// AndNode is the conjunction of its parts, evaluated left-to-right.
type AndNode struct {
	Parts []Predicate
}

// OrNode is the disjunction of its parts, evaluated left-to-right.
type OrNode struct {
	Parts []Predicate
}

// NotNode negates its inner predicate.
type NotNode struct {
	Inner Predicate
}

// CondNode is a single field condition leaf.
type CondNode struct {
	Cond Condition
}

// MatchNode is an opaque predicate leaf used when a specification has no
// declarative field form. Fn receives the candidate entity.
type MatchNode struct {
	Desc string
	Fn   func(candidate any) bool
}

// And combines predicates into a conjunction, flattening nil parts.
func And(parts ...Predicate) Predicate {
	kept := make([]Predicate, 0, len(parts))
	for _, p := range parts {
		if p != nil {
			kept = append(kept, p)
		}
	}
	switch len(kept) {
	case 0:
		return nil
	case 1:
		return kept[0]
	}
	return &AndNode{Parts: kept}
}

// Or combines predicates into a disjunction, flattening nil parts.
func Or(parts ...Predicate) Predicate {
	kept := make([]Predicate, 0, len(parts))
	for _, p := range parts {
		if p != nil {
			kept = append(kept, p)
		}
	}
	switch len(kept) {
	case 0:
		return nil
	case 1:
		return kept[0]
	}
	return &OrNode{Parts: kept}
}

// Not negates a predicate.
func Not(inner Predicate) Predicate {
	if inner == nil {
		return nil
	}
	return &NotNode{Inner: inner}
}

// Cond builds a single field-condition leaf.
func Cond(field string, op Operator, value any) Predicate {
	return &CondNode{Cond: Condition{Field: field, Operator: op, Value: value}}
}

func (n *AndNode) Describe() string {
	parts := make([]string, len(n.Parts))
	for i, p := range n.Parts {
		parts[i] = p.Describe()
	}
	return "(" + strings.Join(parts, " AND ") + ")"
}

func (n *OrNode) Describe() string {
	parts := make([]string, len(n.Parts))
	for i, p := range n.Parts {
		parts[i] = p.Describe()
	}
	return "(" + strings.Join(parts, " OR ") + ")"
}

func (n *NotNode) Describe() string {
	return "NOT(" + n.Inner.Describe() + ")"
}

func (n *CondNode) Describe() string {
	return fmt.Sprintf("%s %s %v", n.Cond.Field, n.Cond.Operator, n.Cond.Value)
}

func (n *MatchNode) Describe() string {
	if n.Desc == "" {
		return "match(<predicate>)"
	}
	return "match(" + n.Desc + ")"
}

// tenantFields is satisfied by entities that expose their scoping identifiers
// directly. The repository package's TenantScoped interface satisfies it.
type tenantFields interface {
	GetTenantID() tenant.TenantID
	GetOrganizationID() *tenant.OrganizationID
	GetDepartmentID() *tenant.DepartmentID
}

// Eval interprets a predicate tree against a candidate entity. The reserved
// tenant fields are resolved through the entity's scoping getters; any other
// field is resolved by reflection over exported struct fields.
func Eval(p Predicate, candidate any) bool {
	if p == nil {
		return true
	}
	switch n := p.(type) {
	case *AndNode:
		for _, part := range n.Parts {
			if !Eval(part, candidate) {
				return false
			}
		}
		return true
	case *OrNode:
		for _, part := range n.Parts {
			if Eval(part, candidate) {
				return true
			}
		}
		return false
	case *NotNode:
		return !Eval(n.Inner, candidate)
	case *CondNode:
		return evalCondition(n.Cond, candidate)
	case *MatchNode:
		return n.Fn(candidate)
	}
	return false
}

func evalCondition(cond Condition, candidate any) bool {
	value, ok := fieldValue(cond.Field, candidate)
	if !ok {
		return false
	}
	return compare(cond.Operator, value, cond.Value)
}

// fieldValue resolves a condition field on the candidate. Reserved tenant
// fields come from the scoping getters; everything else falls back to a
// case-insensitive match against exported struct field names.
func fieldValue(field string, candidate any) (any, bool) {
	if tf, ok := candidate.(tenantFields); ok {
		switch field {
		case FieldTenantID:
			return tf.GetTenantID().String(), true
		case FieldOrganizationID:
			if org := tf.GetOrganizationID(); org != nil {
				return org.String(), true
			}
			return nil, false
		case FieldDepartmentID:
			if dept := tf.GetDepartmentID(); dept != nil {
				return dept.String(), true
			}
			return nil, false
		}
	}

	rv := reflect.ValueOf(candidate)
	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, false
	}

	rt := rv.Type()
	normalized := normalizeField(field)
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		if normalizeField(sf.Name) == normalized {
			return rv.Field(i).Interface(), true
		}
	}
	return nil, false
}

// normalizeField lowercases and strips underscores so "display_name" matches
// the exported field DisplayName.
func normalizeField(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), "_", "")
}

func compare(op Operator, actual, expected any) bool {
	switch op {
	case OpEq:
		return equalValues(actual, expected)
	case OpNotEq:
		return !equalValues(actual, expected)
	case OpGt, OpGte, OpLt, OpLte:
		return compareOrdered(op, actual, expected)
	case OpIn:
		rv := reflect.ValueOf(expected)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return false
		}
		for i := 0; i < rv.Len(); i++ {
			if equalValues(actual, rv.Index(i).Interface()) {
				return true
			}
		}
		return false
	case OpContains:
		return strings.Contains(fmt.Sprintf("%v", actual), fmt.Sprintf("%v", expected))
	}
	return false
}

// equalValues compares loosely across numeric kinds so an int64 field matches
// an int condition value; everything else compares by string form.
func equalValues(actual, expected any) bool {
	if af, aok := asFloat(actual); aok {
		if ef, eok := asFloat(expected); eok {
			return af == ef
		}
	}
	return fmt.Sprintf("%v", actual) == fmt.Sprintf("%v", expected)
}

func compareOrdered(op Operator, actual, expected any) bool {
	af, aok := asFloat(actual)
	ef, eok := asFloat(expected)
	var cmp int
	if aok && eok {
		switch {
		case af < ef:
			cmp = -1
		case af > ef:
			cmp = 1
		}
	} else {
		as, es := fmt.Sprintf("%v", actual), fmt.Sprintf("%v", expected)
		cmp = strings.Compare(as, es)
	}
	switch op {
	case OpGt:
		return cmp > 0
	case OpGte:
		return cmp >= 0
	case OpLt:
		return cmp < 0
	case OpLte:
		return cmp <= 0
	}
	return false
}

func asFloat(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}
