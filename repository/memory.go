package repository

import (
	"context"
	"sort"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/goliatone/go-tenant-cache/query"
	"github.com/goliatone/go-tenant-cache/specification"
	"github.com/goliatone/go-tenant-cache/tenant"
)

// Memory is an in-process Repository backed by a concurrent map. It enforces
// the same scoping rules a storage-backed implementation would: every scoped
// read runs the query builder's tenant-filter injection against the stored
// entities.
type Memory[T TenantScoped] struct {
	entity  string
	entries *xsync.MapOf[string, T]
}

// Interface assertion to ensure Memory implements Repository[T].
var _ Repository[TenantScoped] = (*Memory[TenantScoped])(nil)

// NewMemory creates an empty in-memory repository. entityName is the logical
// entity name used in query options and error payloads, e.g. "account".
func NewMemory[T TenantScoped](entityName string) *Memory[T] {
	return &Memory[T]{
		entity:  entityName,
		entries: xsync.NewMapOf[string, T](),
	}
}

// EntityName returns the logical entity name the repository was created with.
func (r *Memory[T]) EntityName() string { return r.entity }

// FindByID reads one entity scoped by the ambient tenant context.
func (r *Memory[T]) FindByID(ctx context.Context, id string) (T, bool, error) {
	tc, ok := tenant.FromContext(ctx)
	if !ok {
		var zero T
		return zero, false, NewMissingContextError("FindByID", r.entity)
	}
	return r.FindByIDWithContext(ctx, id, tc)
}

// FindByIDWithContext reads one entity scoped by an explicit context. An
// entity outside the context's scope is indistinguishable from an absent one.
func (r *Memory[T]) FindByIDWithContext(ctx context.Context, id string, tc *tenant.Context) (T, bool, error) {
	var zero T
	if tc == nil {
		return zero, false, NewMissingContextError("FindByIDWithContext", r.entity)
	}
	entity, ok := r.entries.Load(id)
	if !ok || !query.Eval(query.TenantFilter(tc), entity) {
		return zero, false, nil
	}
	return entity, true, nil
}

// FindByIDCrossTenant reads one entity regardless of tenant. It fails with an
// isolation error, never a silent scoped fallback, when the context lacks the
// cross-tenant flag or the cross-tenant read permission.
func (r *Memory[T]) FindByIDCrossTenant(ctx context.Context, id string, tc *tenant.Context) (T, bool, error) {
	var zero T
	if tc == nil {
		return zero, false, NewMissingContextError("FindByIDCrossTenant", r.entity)
	}
	if !tc.IsCrossTenant() || !tc.HasPermission(tenant.PermissionCrossTenantRead) {
		return zero, false, NewIsolationError("FindByIDCrossTenant", r.entity, "cross-tenant access requires the cross-tenant flag and permission")
	}
	entity, ok := r.entries.Load(id)
	if !ok {
		return zero, false, nil
	}
	return entity, true, nil
}

// FindAllByContext lists every entity visible to the context.
func (r *Memory[T]) FindAllByContext(ctx context.Context, tc *tenant.Context) ([]T, error) {
	if tc == nil {
		return nil, NewMissingContextError("FindAllByContext", r.entity)
	}
	return r.findWhere(query.BuildFromCriteria(query.Criteria{}, tc)), nil
}

// FindBySpecification lists entities matching the specification within the
// context's scope.
func (r *Memory[T]) FindBySpecification(ctx context.Context, spec specification.Specification[T], tc *tenant.Context) ([]T, error) {
	if tc == nil {
		return nil, NewMissingContextError("FindBySpecification", r.entity)
	}
	return r.findWhere(query.BuildFromSpecification(spec, r.entity, tc)), nil
}

// FindByCriteria lists entities matching the criteria within the context's scope.
func (r *Memory[T]) FindByCriteria(ctx context.Context, criteria query.Criteria, tc *tenant.Context) ([]T, error) {
	if tc == nil {
		return nil, NewMissingContextError("FindByCriteria", r.entity)
	}
	return r.findWhere(query.BuildFromCriteria(criteria, tc)), nil
}

// FindByTenant lists entities of the given tenant.
func (r *Memory[T]) FindByTenant(ctx context.Context, id tenant.TenantID, tc *tenant.Context) ([]T, error) {
	if tc == nil {
		return nil, NewMissingContextError("FindByTenant", r.entity)
	}
	if !tc.CanAccessTenant(id) {
		return nil, NewIsolationError("FindByTenant", r.entity, "context may not access the requested tenant")
	}
	if id.Equals(tc.TenantID()) {
		return r.findWhere(query.BuildFromCriteria(query.Criteria{}, tc)), nil
	}
	// Permitted cross-tenant listing: filter on the requested tenant alone.
	criteria := query.Criteria{}.Where(query.FieldTenantID, query.OpEq, id.String())
	return r.findWhere(query.BuildFromCriteria(criteria, nil)), nil
}

// FindByOrganization lists entities of exactly the given organization.
// Entities of descendant organizations are not included. The filter is built
// from the requested identifier, not the context's own scope: a context scoped
// to a parent organization may read a child it has access to, and its own
// organization equality would exclude every child entity.
func (r *Memory[T]) FindByOrganization(ctx context.Context, id tenant.OrganizationID, tc *tenant.Context) ([]T, error) {
	if tc == nil {
		return nil, NewMissingContextError("FindByOrganization", r.entity)
	}
	if !tc.CanAccessOrganization(id) {
		return nil, NewIsolationError("FindByOrganization", r.entity, "context may not access the requested organization")
	}
	criteria := query.Criteria{}.
		Where(query.FieldTenantID, query.OpEq, id.Tenant().String()).
		Where(query.FieldOrganizationID, query.OpEq, id.String())
	return r.findWhere(query.BuildFromCriteria(criteria, nil)), nil
}

// FindByDepartment lists entities of exactly the given department. The filter
// carries the owning organization as well, so departments with equal values
// under different organizations never alias.
func (r *Memory[T]) FindByDepartment(ctx context.Context, id tenant.DepartmentID, tc *tenant.Context) ([]T, error) {
	if tc == nil {
		return nil, NewMissingContextError("FindByDepartment", r.entity)
	}
	if !tc.CanAccessDepartment(id) {
		return nil, NewIsolationError("FindByDepartment", r.entity, "context may not access the requested department")
	}
	criteria := query.Criteria{}.
		Where(query.FieldTenantID, query.OpEq, id.Tenant().String()).
		Where(query.FieldOrganizationID, query.OpEq, id.Organization().String()).
		Where(query.FieldDepartmentID, query.OpEq, id.String())
	return r.findWhere(query.BuildFromCriteria(criteria, nil)), nil
}

// Save persists an entity under the ambient tenant context. Saving an entity
// of a foreign tenant without the cross-tenant write permission is an
// isolation violation; a version regression on a Versioned entity is a conflict.
func (r *Memory[T]) Save(ctx context.Context, entity T) error {
	tc, ok := tenant.FromContext(ctx)
	if !ok {
		return NewMissingContextError("Save", r.entity)
	}
	if !tc.CanWriteTenant(entity.GetTenantID()) {
		return NewIsolationError("Save", r.entity, "entity belongs to a tenant the context may not write to")
	}
	if stored, exists := r.entries.Load(entity.GetID()); exists {
		if err := checkVersion(r.entity, stored, entity); err != nil {
			return err
		}
	}
	r.entries.Store(entity.GetID(), entity)
	return nil
}

// Delete removes an entity visible to the ambient tenant context. An absent
// or out-of-scope entity makes the delete a no-op.
func (r *Memory[T]) Delete(ctx context.Context, id string) error {
	tc, ok := tenant.FromContext(ctx)
	if !ok {
		return NewMissingContextError("Delete", r.entity)
	}
	entity, exists := r.entries.Load(id)
	if !exists || !query.Eval(query.TenantFilter(tc), entity) {
		return nil
	}
	r.entries.Delete(id)
	return nil
}

// Exists reports whether an entity is visible to the ambient tenant context.
func (r *Memory[T]) Exists(ctx context.Context, id string) (bool, error) {
	tc, ok := tenant.FromContext(ctx)
	if !ok {
		return false, NewMissingContextError("Exists", r.entity)
	}
	entity, exists := r.entries.Load(id)
	return exists && query.Eval(query.TenantFilter(tc), entity), nil
}

// BelongsToTenant reports whether the entity is owned by the tenant. The
// ambient tenant context must be able to access the queried tenant; otherwise
// the check would be an existence oracle for foreign tenants' entities.
func (r *Memory[T]) BelongsToTenant(ctx context.Context, id string, scope tenant.TenantID) (bool, error) {
	tc, ok := tenant.FromContext(ctx)
	if !ok {
		return false, NewMissingContextError("BelongsToTenant", r.entity)
	}
	if !tc.CanAccessTenant(scope) {
		return false, NewIsolationError("BelongsToTenant", r.entity, "context may not access the requested tenant")
	}
	entity, ok := r.entries.Load(id)
	return ok && entity.GetTenantID().Equals(scope), nil
}

// BelongsToOrganization reports whether the entity is owned by exactly the
// organization. The ambient tenant context must be able to access the queried
// organization.
func (r *Memory[T]) BelongsToOrganization(ctx context.Context, id string, scope tenant.OrganizationID) (bool, error) {
	tc, ok := tenant.FromContext(ctx)
	if !ok {
		return false, NewMissingContextError("BelongsToOrganization", r.entity)
	}
	if !tc.CanAccessOrganization(scope) {
		return false, NewIsolationError("BelongsToOrganization", r.entity, "context may not access the requested organization")
	}
	entity, ok := r.entries.Load(id)
	if !ok {
		return false, nil
	}
	org := entity.GetOrganizationID()
	return org != nil && org.Equals(scope), nil
}

// BelongsToDepartment reports whether the entity is owned by exactly the
// department. The ambient tenant context must be able to access the queried
// department.
func (r *Memory[T]) BelongsToDepartment(ctx context.Context, id string, scope tenant.DepartmentID) (bool, error) {
	tc, ok := tenant.FromContext(ctx)
	if !ok {
		return false, NewMissingContextError("BelongsToDepartment", r.entity)
	}
	if !tc.CanAccessDepartment(scope) {
		return false, NewIsolationError("BelongsToDepartment", r.entity, "context may not access the requested department")
	}
	entity, ok := r.entries.Load(id)
	if !ok {
		return false, nil
	}
	dept := entity.GetDepartmentID()
	return dept != nil && dept.Equals(scope), nil
}

// CountByTenant counts entities of the given tenant visible to tc.
func (r *Memory[T]) CountByTenant(ctx context.Context, id tenant.TenantID, tc *tenant.Context) (int, error) {
	found, err := r.FindByTenant(ctx, id, tc)
	return len(found), err
}

// CountByOrganization counts entities of exactly the given organization.
func (r *Memory[T]) CountByOrganization(ctx context.Context, id tenant.OrganizationID, tc *tenant.Context) (int, error) {
	found, err := r.FindByOrganization(ctx, id, tc)
	return len(found), err
}

// CountByDepartment counts entities of exactly the given department.
func (r *Memory[T]) CountByDepartment(ctx context.Context, id tenant.DepartmentID, tc *tenant.Context) (int, error) {
	found, err := r.FindByDepartment(ctx, id, tc)
	return len(found), err
}

// findWhere evaluates built query options against the stored entities.
// Results are ordered by entity ID before sort rules apply, so paging is
// deterministic without an explicit sort.
func (r *Memory[T]) findWhere(opts query.Options) []T {
	matched := make([]T, 0)
	r.entries.Range(func(_ string, entity T) bool {
		if query.Eval(opts.Where, entity) {
			matched = append(matched, entity)
		}
		return true
	})
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].GetID() < matched[j].GetID()
	})
	query.ApplySort(matched, opts.Sorts)
	return query.ApplyPagination(matched, opts.Pagination)
}

// checkVersion enforces optimistic concurrency for Versioned entities: a save
// must carry either the stored version (no concurrent writer) or the next one.
func checkVersion(entityName string, stored, incoming any) error {
	sv, ok := stored.(Versioned)
	if !ok {
		return nil
	}
	iv, ok := incoming.(Versioned)
	if !ok {
		return nil
	}
	if iv.GetVersion() != sv.GetVersion() && iv.GetVersion() != sv.GetVersion()+1 {
		id := ""
		if ts, ok := incoming.(TenantScoped); ok {
			id = ts.GetID()
		}
		return &ConflictError{Entity: entityName, ID: id, Expected: sv.GetVersion() + 1, Actual: iv.GetVersion()}
	}
	return nil
}
