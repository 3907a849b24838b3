// Package tenant defines the hierarchical scoping identifiers (tenant,
// organization, department) and the per-operation tenant Context used to
// enforce isolation across the repository and cache layers.
//
// Identifiers are immutable values. Parent relationships are embedded as
// value copies at construction time and validated exactly once there, so any
// identifier held by a caller is trust-worthy without re-validation and the
// parent chain is acyclic by construction.
//
// A Context captures the caller's scope and permissions for one logical
// operation. Contexts are never mutated after NewContext; use Derive to
// produce variants. Cross-tenant access requires both the cross-tenant flag
// and the PermissionCrossTenantRead permission; accessors deny (return false)
// when either is missing.
package tenant
