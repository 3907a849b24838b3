// Package testsupport provides shared fixtures for the repository, cache and
// decorator test suites: identifier builders that fail the test on invalid
// input, and a tenant-scoped Account entity.
package testsupport

import (
	"testing"

	"github.com/goliatone/go-tenant-cache/tenant"
)

// Stable UUID-shaped values for deterministic test tenants.
const (
	TenantAlphaID = "11111111-1111-4111-8111-111111111111"
	TenantBetaID  = "22222222-2222-4222-8222-222222222222"
)

// MustTenantID builds a TenantID or fails the test.
func MustTenantID(t *testing.T, value string) tenant.TenantID {
	t.Helper()
	id, err := tenant.NewTenantID(value)
	if err != nil {
		t.Fatalf("failed to build tenant id %q: %v", value, err)
	}
	return id
}

// MustOrganizationID builds an OrganizationID or fails the test.
func MustOrganizationID(t *testing.T, value string, owner tenant.TenantID, parent *tenant.OrganizationID) tenant.OrganizationID {
	t.Helper()
	id, err := tenant.NewOrganizationID(value, owner, parent)
	if err != nil {
		t.Fatalf("failed to build organization id %q: %v", value, err)
	}
	return id
}

// MustDepartmentID builds a DepartmentID or fails the test.
func MustDepartmentID(t *testing.T, value string, owner tenant.OrganizationID, parent *tenant.DepartmentID) tenant.DepartmentID {
	t.Helper()
	id, err := tenant.NewDepartmentID(value, owner, parent)
	if err != nil {
		t.Fatalf("failed to build department id %q: %v", value, err)
	}
	return id
}

// Account is the entity used across the test suites. It implements the
// repository's TenantScoped and Versioned interfaces.
type Account struct {
	ID             string
	TenantID       tenant.TenantID
	OrganizationID *tenant.OrganizationID
	DepartmentID   *tenant.DepartmentID
	Name           string
	Email          string
	Active         bool
	Balance        int64
	Version        int64
}

// NewAccount builds an active account owned by the given tenant.
func NewAccount(id string, owner tenant.TenantID) *Account {
	return &Account{
		ID:       id,
		TenantID: owner,
		Name:     "account " + id,
		Email:    id + "@example.com",
		Active:   true,
		Version:  1,
	}
}

// InOrganization scopes the account to an organization and returns it.
func (a *Account) InOrganization(org tenant.OrganizationID) *Account {
	clone := org.Clone()
	a.OrganizationID = &clone
	return a
}

// InDepartment scopes the account to a department and returns it.
func (a *Account) InDepartment(dept tenant.DepartmentID) *Account {
	clone := dept.Clone()
	a.DepartmentID = &clone
	return a
}

func (a *Account) GetID() string { return a.ID }

func (a *Account) GetTenantID() tenant.TenantID { return a.TenantID }

func (a *Account) GetOrganizationID() *tenant.OrganizationID { return a.OrganizationID }

func (a *Account) GetDepartmentID() *tenant.DepartmentID { return a.DepartmentID }

func (a *Account) GetVersion() int64 { return a.Version }
