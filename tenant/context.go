package tenant

import (
	"context"
	"fmt"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Permissions gating the cross-tenant escape hatch. Each must be held in
// addition to the cross-tenant flag; the read grant never implies the write
// grant.
const (
	PermissionCrossTenantRead  = "cross-tenant:read"
	PermissionCrossTenantWrite = "cross-tenant:write"
)

// Context is the caller's scoping and permission snapshot for one logical
// operation. It is created once per operation via NewContext and never mutated
// afterwards; derived variants are produced by Derive.
type Context struct {
	tenantID       TenantID
	organizationID *OrganizationID
	departmentID   *DepartmentID
	crossTenant    bool
	permissions    map[string]struct{}
	userID         string
}

// Option configures a Context during construction.
type Option func(*Context)

// WithOrganization scopes the context to an organization.
func WithOrganization(id OrganizationID) Option {
	return func(c *Context) {
		clone := id.Clone()
		c.organizationID = &clone
	}
}

// WithDepartment scopes the context to a department.
func WithDepartment(id DepartmentID) Option {
	return func(c *Context) {
		clone := id.Clone()
		c.departmentID = &clone
	}
}

// WithCrossTenant marks the context as cross-tenant capable. The elevated
// permission is still required for any cross-tenant access to succeed.
func WithCrossTenant() Option {
	return func(c *Context) { c.crossTenant = true }
}

// WithPermissions grants the named permissions to the context.
func WithPermissions(names ...string) Option {
	return func(c *Context) {
		for _, name := range names {
			if name != "" {
				c.permissions[name] = struct{}{}
			}
		}
	}
}

// WithUserID records the acting user.
func WithUserID(userID string) Option {
	return func(c *Context) { c.userID = userID }
}

// NewContext builds an immutable tenant context for one logical operation.
func NewContext(tenantID TenantID, opts ...Option) *Context {
	c := &Context{
		tenantID:    tenantID,
		permissions: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Derive clones the context and applies the given options to the clone.
// The receiver is left untouched.
func (c *Context) Derive(opts ...Option) *Context {
	clone := c.Clone()
	for _, opt := range opts {
		opt(clone)
	}
	return clone
}

// Clone returns an independent deep copy of the context.
func (c *Context) Clone() *Context {
	clone := &Context{
		tenantID:    c.tenantID,
		crossTenant: c.crossTenant,
		userID:      c.userID,
		permissions: make(map[string]struct{}, len(c.permissions)),
	}
	for name := range c.permissions {
		clone.permissions[name] = struct{}{}
	}
	if c.organizationID != nil {
		org := c.organizationID.Clone()
		clone.organizationID = &org
	}
	if c.departmentID != nil {
		dept := c.departmentID.Clone()
		clone.departmentID = &dept
	}
	return clone
}

// TenantID returns the tenant the context is scoped to.
func (c *Context) TenantID() TenantID { return c.tenantID }

// OrganizationID returns a copy of the organization scope, or nil.
func (c *Context) OrganizationID() *OrganizationID {
	if c.organizationID == nil {
		return nil
	}
	org := c.organizationID.Clone()
	return &org
}

// DepartmentID returns a copy of the department scope, or nil.
func (c *Context) DepartmentID() *DepartmentID {
	if c.departmentID == nil {
		return nil
	}
	dept := c.departmentID.Clone()
	return &dept
}

// IsCrossTenant reports whether the context carries the cross-tenant flag.
func (c *Context) IsCrossTenant() bool { return c.crossTenant }

// UserID returns the acting user, or the empty string.
func (c *Context) UserID() string { return c.userID }

// Permissions returns the granted permission names in sorted order.
func (c *Context) Permissions() []string {
	names := make([]string, 0, len(c.permissions))
	for name := range c.permissions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasPermission reports whether the named permission was granted.
func (c *Context) HasPermission(name string) bool {
	_, ok := c.permissions[name]
	return ok
}

// canCrossTenant reports whether the context may escape its own tenant
// boundary: both the flag and the elevated permission are required.
func (c *Context) canCrossTenant() bool {
	return c.crossTenant && c.HasPermission(PermissionCrossTenantRead)
}

// CanAccessTenant reports whether the context may read data owned by the
// given tenant. Missing cross-tenant permission denies rather than errors;
// callers must check before invoking privileged repository operations.
func (c *Context) CanAccessTenant(id TenantID) bool {
	if c.tenantID.Equals(id) {
		return true
	}
	return c.canCrossTenant()
}

// CanWriteTenant reports whether the context may write data owned by the
// given tenant. A foreign tenant requires both the cross-tenant flag and the
// write permission; holding the read permission alone never grants a write.
func (c *Context) CanWriteTenant(id TenantID) bool {
	if c.tenantID.Equals(id) {
		return true
	}
	return c.crossTenant && c.HasPermission(PermissionCrossTenantWrite)
}

// CanAccessOrganization reports whether the context may read data owned by
// the given organization.
func (c *Context) CanAccessOrganization(id OrganizationID) bool {
	if !c.CanAccessTenant(id.Tenant()) {
		return false
	}
	if c.organizationID == nil || !c.tenantID.Equals(id.Tenant()) {
		// Tenant-wide contexts, and permitted cross-tenant access, see every
		// organization of the accessible tenant.
		return true
	}
	return c.organizationID.Equals(id) || c.organizationID.IsAncestorOf(id)
}

// CanAccessDepartment reports whether the context may read data owned by the
// given department.
func (c *Context) CanAccessDepartment(id DepartmentID) bool {
	if !c.CanAccessOrganization(id.Organization()) {
		return false
	}
	if c.departmentID == nil {
		return true
	}
	return c.departmentID.Equals(id) || c.departmentID.IsAncestorOf(id)
}

// Validate checks the structural integrity of the context: the tenant id must
// be well formed, a department scope requires an organization scope, and any
// carried scope must belong to the context's tenant.
func (c *Context) Validate() error {
	if err := validation.Validate(c.tenantID.String(), validation.Required, is.UUID); err != nil {
		return fmt.Errorf("tenant context: tenant id: %w", err)
	}
	if c.departmentID != nil && c.organizationID == nil {
		return fmt.Errorf("tenant context: department scope requires an organization scope")
	}
	if c.organizationID != nil && !c.organizationID.BelongsTo(c.tenantID) {
		return fmt.Errorf("tenant context: organization %s does not belong to tenant %s", c.organizationID, c.tenantID)
	}
	if c.departmentID != nil && c.organizationID != nil && !c.departmentID.BelongsTo(*c.organizationID) {
		return fmt.Errorf("tenant context: department %s does not belong to organization %s", c.departmentID, c.organizationID)
	}
	return nil
}

type contextKey struct{}

// WithContext attaches the tenant context to a request context so it travels
// with the logical operation.
func WithContext(ctx context.Context, tc *Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if tc == nil {
		return ctx
	}
	return context.WithValue(ctx, contextKey{}, tc)
}

// FromContext extracts the tenant context attached by WithContext.
func FromContext(ctx context.Context) (*Context, bool) {
	if ctx == nil {
		return nil, false
	}
	tc, ok := ctx.Value(contextKey{}).(*Context)
	return tc, ok
}
