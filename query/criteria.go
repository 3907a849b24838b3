// Package query converts specifications and declarative criteria into
// backend-agnostic query options, injecting tenant filters whenever a tenant
// context is supplied. The tenant filter is merged with logical AND and is
// never optional when a context is present; cross-tenant queries must go
// through the repository's explicit cross-tenant operation, not through
// filter omission.
package query

// Operator names a field comparison in a condition.
type Operator string

// Supported condition operators.
const (
	OpEq       Operator = "eq"
	OpNotEq    Operator = "neq"
	OpGt       Operator = "gt"
	OpGte      Operator = "gte"
	OpLt       Operator = "lt"
	OpLte      Operator = "lte"
	OpIn       Operator = "in"
	OpContains Operator = "contains"
)

// Reserved field names the tenant filter is expressed against.
const (
	FieldTenantID       = "tenant_id"
	FieldOrganizationID = "organization_id"
	FieldDepartmentID   = "department_id"
)

// Condition is a single field comparison.
type Condition struct {
	Field    string
	Operator Operator
	Value    any
}

// Sort orders results by a field.
type Sort struct {
	Field string
	Desc  bool
}

// Pagination selects a page window. Page is 1-based.
type Pagination struct {
	Page  int
	Limit int
}

// Criteria is a declarative, backend-agnostic description of filter, sort,
// pagination and projection conditions. Conditions are combined with AND in
// the order given.
type Criteria struct {
	Conditions []Condition
	Sorts      []Sort
	Pagination *Pagination
	Fields     []string
}

// Where appends an AND condition and returns the updated criteria value.
// Criteria composition copies, it never mutates the receiver's slices in place.
func (c Criteria) Where(field string, op Operator, value any) Criteria {
	conditions := make([]Condition, 0, len(c.Conditions)+1)
	conditions = append(conditions, c.Conditions...)
	conditions = append(conditions, Condition{Field: field, Operator: op, Value: value})
	c.Conditions = conditions
	return c
}

// OrderBy appends a sort rule and returns the updated criteria value.
func (c Criteria) OrderBy(field string, desc bool) Criteria {
	sorts := make([]Sort, 0, len(c.Sorts)+1)
	sorts = append(sorts, c.Sorts...)
	sorts = append(sorts, Sort{Field: field, Desc: desc})
	c.Sorts = sorts
	return c
}

// Paginate sets the page window and returns the updated criteria value.
func (c Criteria) Paginate(page, limit int) Criteria {
	c.Pagination = &Pagination{Page: page, Limit: limit}
	return c
}

// Select sets the field projection and returns the updated criteria value.
func (c Criteria) Select(fields ...string) Criteria {
	c.Fields = append([]string(nil), fields...)
	return c
}
