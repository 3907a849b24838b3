package query

import (
	"github.com/goliatone/go-tenant-cache/specification"
	"github.com/goliatone/go-tenant-cache/tenant"
)

// Options is the backend-agnostic output of the builder: a filter tree plus
// auxiliary flags. Where is nil when nothing filters the result set.
type Options struct {
	Entity     string
	Where      Predicate
	Sorts      []Sort
	Pagination *Pagination
	Fields     []string

	// TenantScoped reports whether a tenant filter was merged into Where.
	TenantScoped bool
}

// BuildFromSpecification converts a specification into query options. The
// specification has no declarative field form, so it becomes an opaque match
// leaf; when a tenant context is supplied the tenant filter is ANDed in and
// can never be omitted through this entry point.
func BuildFromSpecification[T any](spec specification.Specification[T], entityName string, tc *tenant.Context) Options {
	opts := Options{Entity: entityName}
	if spec != nil {
		opts.Where = &MatchNode{
			Desc: spec.Description(),
			Fn: func(candidate any) bool {
				v, ok := candidate.(T)
				return ok && spec.IsSatisfiedBy(v)
			},
		}
	}
	return applyTenantFilter(opts, tc)
}

// BuildFromCriteria converts declarative criteria into query options,
// merging the tenant filter when a context is supplied.
func BuildFromCriteria(criteria Criteria, tc *tenant.Context) Options {
	opts := Options{
		Sorts:  append([]Sort(nil), criteria.Sorts...),
		Fields: append([]string(nil), criteria.Fields...),
	}
	if criteria.Pagination != nil {
		p := *criteria.Pagination
		opts.Pagination = &p
	}
	if len(criteria.Conditions) > 0 {
		parts := make([]Predicate, 0, len(criteria.Conditions))
		for _, cond := range criteria.Conditions {
			parts = append(parts, &CondNode{Cond: cond})
		}
		opts.Where = And(parts...)
	}
	return applyTenantFilter(opts, tc)
}

// applyTenantFilter merges the context's tenant filter into the options with
// logical AND: AND(existing, tenantFilter), or the filter alone when no
// predicate exists yet.
func applyTenantFilter(opts Options, tc *tenant.Context) Options {
	filter := TenantFilter(tc)
	if filter == nil {
		return opts
	}
	if opts.Where != nil {
		opts.Where = And(opts.Where, filter)
	} else {
		opts.Where = filter
	}
	opts.TenantScoped = true
	return opts
}

// TenantFilter builds the three-tiered scoping predicate for a context:
// tenant id equality always, organization and department equality only when
// the context carries them. Returns nil when no context is supplied.
func TenantFilter(tc *tenant.Context) Predicate {
	if tc == nil {
		return nil
	}
	parts := []Predicate{
		Cond(FieldTenantID, OpEq, tc.TenantID().String()),
	}
	if org := tc.OrganizationID(); org != nil {
		parts = append(parts, Cond(FieldOrganizationID, OpEq, org.String()))
	}
	if dept := tc.DepartmentID(); dept != nil {
		parts = append(parts, Cond(FieldDepartmentID, OpEq, dept.String()))
	}
	return And(parts...)
}
