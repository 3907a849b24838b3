package tenant

import (
	"fmt"

	"github.com/google/uuid"
)

// TenantID is the opaque identifier of a tenant, the root of the scoping
// hierarchy. The zero value is invalid; construct via NewTenantID or
// GenerateTenantID.
type TenantID struct {
	value string
}

// NewTenantID validates the raw value and returns a TenantID.
// The value must be UUID-shaped.
func NewTenantID(value string) (TenantID, error) {
	if _, err := uuid.Parse(value); err != nil {
		return TenantID{}, &IDError{Kind: "tenant", Value: value, Reason: "value must be a valid UUID"}
	}
	return TenantID{value: value}, nil
}

// GenerateTenantID returns a TenantID with a freshly generated value.
func GenerateTenantID() TenantID {
	return TenantID{value: uuid.NewString()}
}

// String returns the raw identifier value.
func (id TenantID) String() string { return id.value }

// IsZero reports whether the identifier is the uninitialized zero value.
func (id TenantID) IsZero() bool { return id.value == "" }

// IsValid reports whether the identifier holds a well-formed value.
func (id TenantID) IsValid() bool {
	_, err := uuid.Parse(id.value)
	return err == nil
}

// Equals reports whether both identifiers refer to the same tenant.
func (id TenantID) Equals(other TenantID) bool { return id.value == other.value }

// Clone returns a copy of the identifier. Identifiers are immutable values,
// so the copy is trivially independent.
func (id TenantID) Clone() TenantID { return id }

// OrganizationID identifies an organization within a tenant. Organizations
// may nest: the optional parent is an immutable value copy of the parent
// identifier, never a back-reference, so the chain is acyclic by construction.
type OrganizationID struct {
	value  string
	tenant TenantID
	parent *OrganizationID
}

// NewOrganizationID validates and returns an OrganizationID. Construction
// fails when the value is malformed, the tenant is invalid, or an explicit
// parent belongs to a different tenant. The parent invariant is enforced
// once here, so held identifiers never need re-validation.
func NewOrganizationID(value string, owner TenantID, parent *OrganizationID) (OrganizationID, error) {
	if value == "" {
		return OrganizationID{}, &IDError{Kind: "organization", Value: value, Reason: "value must not be empty"}
	}
	if !owner.IsValid() {
		return OrganizationID{}, &IDError{Kind: "organization", Value: value, Reason: "owning tenant is not valid"}
	}
	id := OrganizationID{value: value, tenant: owner}
	if parent != nil {
		if !parent.tenant.Equals(owner) {
			return OrganizationID{}, &IDError{
				Kind:   "organization",
				Value:  value,
				Reason: fmt.Sprintf("parent organization %q belongs to tenant %s, not %s", parent.value, parent.tenant, owner),
			}
		}
		p := parent.Clone()
		id.parent = &p
	}
	return id, nil
}

// String returns the raw identifier value.
func (id OrganizationID) String() string { return id.value }

// IsZero reports whether the identifier is the uninitialized zero value.
func (id OrganizationID) IsZero() bool { return id.value == "" }

// IsValid reports whether the identifier and its owning tenant are well formed.
func (id OrganizationID) IsValid() bool { return id.value != "" && id.tenant.IsValid() }

// Tenant returns the owning tenant identifier.
func (id OrganizationID) Tenant() TenantID { return id.tenant }

// Parent returns a copy of the parent identifier, or nil for a root organization.
func (id OrganizationID) Parent() *OrganizationID {
	if id.parent == nil {
		return nil
	}
	p := id.parent.Clone()
	return &p
}

// Equals reports whether both identifiers refer to the same organization
// within the same tenant.
func (id OrganizationID) Equals(other OrganizationID) bool {
	return id.value == other.value && id.tenant.Equals(other.tenant)
}

// BelongsTo reports whether the organization is owned by the given tenant.
func (id OrganizationID) BelongsTo(owner TenantID) bool { return id.tenant.Equals(owner) }

// IsAncestorOf walks other's parent chain and reports whether this
// organization appears in it. Cost is O(depth of other).
func (id OrganizationID) IsAncestorOf(other OrganizationID) bool {
	for p := other.parent; p != nil; p = p.parent {
		if id.Equals(*p) {
			return true
		}
	}
	return false
}

// IsDescendantOf reports whether other appears in this organization's parent chain.
func (id OrganizationID) IsDescendantOf(other OrganizationID) bool {
	return other.IsAncestorOf(id)
}

// Clone deep-copies the identifier including its parent chain.
func (id OrganizationID) Clone() OrganizationID {
	clone := OrganizationID{value: id.value, tenant: id.tenant}
	if id.parent != nil {
		p := id.parent.Clone()
		clone.parent = &p
	}
	return clone
}

// DepartmentID identifies a department within an organization. Departments may
// nest beneath the same organization; the parent is an immutable value copy.
type DepartmentID struct {
	value        string
	organization OrganizationID
	parent       *DepartmentID
}

// NewDepartmentID validates and returns a DepartmentID. Construction fails
// when the value is malformed, the organization is invalid, or an explicit
// parent department belongs to a different organization.
func NewDepartmentID(value string, owner OrganizationID, parent *DepartmentID) (DepartmentID, error) {
	if value == "" {
		return DepartmentID{}, &IDError{Kind: "department", Value: value, Reason: "value must not be empty"}
	}
	if !owner.IsValid() {
		return DepartmentID{}, &IDError{Kind: "department", Value: value, Reason: "owning organization is not valid"}
	}
	id := DepartmentID{value: value, organization: owner}
	if parent != nil {
		if !parent.organization.Equals(owner) {
			return DepartmentID{}, &IDError{
				Kind:   "department",
				Value:  value,
				Reason: fmt.Sprintf("parent department %q belongs to organization %s, not %s", parent.value, parent.organization, owner),
			}
		}
		p := parent.Clone()
		id.parent = &p
	}
	return id, nil
}

// String returns the raw identifier value.
func (id DepartmentID) String() string { return id.value }

// IsZero reports whether the identifier is the uninitialized zero value.
func (id DepartmentID) IsZero() bool { return id.value == "" }

// IsValid reports whether the identifier and its owning organization are well formed.
func (id DepartmentID) IsValid() bool { return id.value != "" && id.organization.IsValid() }

// Organization returns the owning organization identifier.
func (id DepartmentID) Organization() OrganizationID { return id.organization.Clone() }

// Tenant returns the tenant that ultimately owns this department.
func (id DepartmentID) Tenant() TenantID { return id.organization.tenant }

// Parent returns a copy of the parent identifier, or nil for a root department.
func (id DepartmentID) Parent() *DepartmentID {
	if id.parent == nil {
		return nil
	}
	p := id.parent.Clone()
	return &p
}

// Equals reports whether both identifiers refer to the same department within
// the same organization.
func (id DepartmentID) Equals(other DepartmentID) bool {
	return id.value == other.value && id.organization.Equals(other.organization)
}

// BelongsTo reports whether the department is owned by the given organization.
func (id DepartmentID) BelongsTo(owner OrganizationID) bool {
	return id.organization.Equals(owner)
}

// IsAncestorOf walks other's parent chain and reports whether this department
// appears in it.
func (id DepartmentID) IsAncestorOf(other DepartmentID) bool {
	for p := other.parent; p != nil; p = p.parent {
		if id.Equals(*p) {
			return true
		}
	}
	return false
}

// IsDescendantOf reports whether other appears in this department's parent chain.
func (id DepartmentID) IsDescendantOf(other DepartmentID) bool {
	return other.IsAncestorOf(id)
}

// Clone deep-copies the identifier including its parent chain.
func (id DepartmentID) Clone() DepartmentID {
	clone := DepartmentID{value: id.value, organization: id.organization.Clone()}
	if id.parent != nil {
		p := id.parent.Clone()
		clone.parent = &p
	}
	return clone
}

// IDError reports a failed identifier construction.
type IDError struct {
	Kind   string // "tenant", "organization" or "department"
	Value  string
	Reason string
}

// Error implements the error interface.
func (e *IDError) Error() string {
	return fmt.Sprintf("invalid %s id %q: %s", e.Kind, e.Value, e.Reason)
}
