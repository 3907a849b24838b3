// Package repository defines the tenant-isolated data-access contract: every
// read and write is scoped to the caller's tenant context, and the only
// operation that crosses the tenant boundary is the explicit, permission
// checked FindByIDCrossTenant. It also provides an in-memory reference
// implementation used in tests and as the inner store behind the cached
// decorator.
package repository

import (
	"context"

	"github.com/goliatone/go-tenant-cache/query"
	"github.com/goliatone/go-tenant-cache/specification"
	"github.com/goliatone/go-tenant-cache/tenant"
)

// TenantScoped is the entity surface the repository needs to enforce scoping.
// Every stored entity exposes its identity and owning scope identifiers.
type TenantScoped interface {
	GetID() string
	GetTenantID() tenant.TenantID
	GetOrganizationID() *tenant.OrganizationID
	GetDepartmentID() *tenant.DepartmentID
}

// Versioned is implemented by entities that participate in optimistic
// concurrency control. Callers bump the version before saving; a save whose
// version does not follow the stored version fails with a ConflictError.
type Versioned interface {
	GetVersion() int64
}

// Repository is the sole data-access surface callers above this layer should
// use. Scoped reads resolve the caller's tenant context either from the
// request context (FindByID, Exists, Save, Delete) or from an explicit
// argument; there is no operation returning unscoped data except
// FindByIDCrossTenant, which fails with an isolation error when the context
// lacks the cross-tenant flag or permission.
//
// Absence of a matching entity is not an error: single-entity reads return
// the zero value and found=false.
type Repository[T TenantScoped] interface {
	// FindByID reads one entity scoped by the tenant context carried in ctx.
	FindByID(ctx context.Context, id string) (T, bool, error)

	// FindByIDWithContext reads one entity scoped by an explicit context.
	FindByIDWithContext(ctx context.Context, id string, tc *tenant.Context) (T, bool, error)

	// FindByIDCrossTenant reads one entity across tenant boundaries. It fails
	// with an isolation error unless tc carries both the cross-tenant flag
	// and the cross-tenant read permission; it never degrades to a scoped read.
	FindByIDCrossTenant(ctx context.Context, id string, tc *tenant.Context) (T, bool, error)

	// FindAllByContext lists every entity visible to the context.
	FindAllByContext(ctx context.Context, tc *tenant.Context) ([]T, error)

	// FindBySpecification lists entities matching the specification, with the
	// context's tenant filter always ANDed in.
	FindBySpecification(ctx context.Context, spec specification.Specification[T], tc *tenant.Context) ([]T, error)

	// FindByCriteria lists entities matching declarative criteria, with the
	// context's tenant filter always ANDed in.
	FindByCriteria(ctx context.Context, criteria query.Criteria, tc *tenant.Context) ([]T, error)

	// FindByTenant lists entities of the given tenant. Accessing a tenant
	// other than the context's own requires cross-tenant permission.
	FindByTenant(ctx context.Context, id tenant.TenantID, tc *tenant.Context) ([]T, error)

	// FindByOrganization lists entities of exactly the given organization;
	// descendant organizations are not included.
	FindByOrganization(ctx context.Context, id tenant.OrganizationID, tc *tenant.Context) ([]T, error)

	// FindByDepartment lists entities of exactly the given department.
	FindByDepartment(ctx context.Context, id tenant.DepartmentID, tc *tenant.Context) ([]T, error)

	// Save persists an entity. The tenant context carried in ctx must be able
	// to access the entity's tenant.
	Save(ctx context.Context, entity T) error

	// Delete removes an entity visible to the tenant context carried in ctx.
	// Deleting an absent (or invisible) entity is a no-op.
	Delete(ctx context.Context, id string) error

	// Exists reports whether an entity is visible to the tenant context
	// carried in ctx.
	Exists(ctx context.Context, id string) (bool, error)

	// BelongsToTenant reports whether the entity is owned by the tenant. The
	// tenant context carried in ctx must be able to access the queried tenant.
	BelongsToTenant(ctx context.Context, id string, scope tenant.TenantID) (bool, error)

	// BelongsToOrganization reports whether the entity is owned by exactly
	// the organization. The tenant context carried in ctx must be able to
	// access the queried organization.
	BelongsToOrganization(ctx context.Context, id string, scope tenant.OrganizationID) (bool, error)

	// BelongsToDepartment reports whether the entity is owned by exactly the
	// department. The tenant context carried in ctx must be able to access
	// the queried department.
	BelongsToDepartment(ctx context.Context, id string, scope tenant.DepartmentID) (bool, error)

	// CountByTenant counts entities of the given tenant visible to tc.
	CountByTenant(ctx context.Context, id tenant.TenantID, tc *tenant.Context) (int, error)

	// CountByOrganization counts entities of exactly the given organization.
	CountByOrganization(ctx context.Context, id tenant.OrganizationID, tc *tenant.Context) (int, error)

	// CountByDepartment counts entities of exactly the given department.
	CountByDepartment(ctx context.Context, id tenant.DepartmentID, tc *tenant.Context) (int, error)
}
