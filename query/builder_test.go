package query

import (
	"testing"

	"github.com/goliatone/go-tenant-cache/pkg/testsupport"
	"github.com/goliatone/go-tenant-cache/specification"
	"github.com/goliatone/go-tenant-cache/tenant"
)

func mustTenant(t *testing.T, value string) tenant.TenantID {
	t.Helper()
	id, err := tenant.NewTenantID(value)
	if err != nil {
		t.Fatalf("NewTenantID(%q) failed: %v", value, err)
	}
	return id
}

// andParts unwraps the top-level conjunction of a predicate.
func andParts(t *testing.T, p Predicate) []Predicate {
	t.Helper()
	and, ok := p.(*AndNode)
	if !ok {
		t.Fatalf("expected *AndNode at top level, got %T (%s)", p, p.Describe())
	}
	return and.Parts
}

// findCond locates a field-equality condition anywhere beneath AND nodes.
func findCond(p Predicate, field string) *CondNode {
	switch n := p.(type) {
	case *CondNode:
		if n.Cond.Field == field {
			return n
		}
	case *AndNode:
		for _, part := range n.Parts {
			if found := findCond(part, field); found != nil {
				return found
			}
		}
	}
	return nil
}

func TestBuildFromCriteriaInjectsTenantFilter(t *testing.T) {
	owner := mustTenant(t, testsupport.TenantAlphaID)
	tc := tenant.NewContext(owner)

	criteria := Criteria{}.Where("active", OpEq, true)
	opts := BuildFromCriteria(criteria, tc)

	if !opts.TenantScoped {
		t.Fatal("options must be marked tenant scoped")
	}
	parts := andParts(t, opts.Where)
	if len(parts) != 2 {
		t.Fatalf("expected AND(existing, tenantFilter), got %d parts: %s", len(parts), opts.Where.Describe())
	}

	cond := findCond(parts[1], FieldTenantID)
	if cond == nil {
		t.Fatalf("tenant filter missing from %s", opts.Where.Describe())
	}
	if cond.Cond.Operator != OpEq || cond.Cond.Value != owner.String() {
		t.Fatalf("tenant filter must be an equality on the context tenant, got %+v", cond.Cond)
	}
}

func TestBuildFromCriteriaWithoutContext(t *testing.T) {
	criteria := Criteria{}.Where("active", OpEq, true)
	opts := BuildFromCriteria(criteria, nil)

	if opts.TenantScoped {
		t.Fatal("options without a context must not claim tenant scoping")
	}
	if findCond(opts.Where, FieldTenantID) != nil {
		t.Fatal("no tenant filter without a context")
	}
}

func TestBuildFromEmptyCriteriaUsesFilterAlone(t *testing.T) {
	owner := mustTenant(t, testsupport.TenantAlphaID)
	opts := BuildFromCriteria(Criteria{}, tenant.NewContext(owner))

	if findCond(opts.Where, FieldTenantID) == nil {
		t.Fatal("tenant filter must become the sole predicate")
	}
}

func TestTenantFilterThreeTiers(t *testing.T) {
	owner := mustTenant(t, testsupport.TenantAlphaID)
	org, err := tenant.NewOrganizationID("org-1", owner, nil)
	if err != nil {
		t.Fatalf("organization: %v", err)
	}
	dept, err := tenant.NewDepartmentID("dept-1", org, nil)
	if err != nil {
		t.Fatalf("department: %v", err)
	}

	tests := []struct {
		name     string
		tc       *tenant.Context
		wantOrg  bool
		wantDept bool
	}{
		{name: "tenant only", tc: tenant.NewContext(owner)},
		{name: "with organization", tc: tenant.NewContext(owner, tenant.WithOrganization(org)), wantOrg: true},
		{
			name:     "with department",
			tc:       tenant.NewContext(owner, tenant.WithOrganization(org), tenant.WithDepartment(dept)),
			wantOrg:  true,
			wantDept: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter := TenantFilter(tt.tc)
			if findCond(filter, FieldTenantID) == nil {
				t.Fatal("tenant condition is always present")
			}
			if got := findCond(filter, FieldOrganizationID) != nil; got != tt.wantOrg {
				t.Fatalf("organization condition presence = %v, want %v", got, tt.wantOrg)
			}
			if got := findCond(filter, FieldDepartmentID) != nil; got != tt.wantDept {
				t.Fatalf("department condition presence = %v, want %v", got, tt.wantDept)
			}
		})
	}
}

func TestBuildFromSpecification(t *testing.T) {
	owner := mustTenant(t, testsupport.TenantAlphaID)
	other := mustTenant(t, testsupport.TenantBetaID)
	tc := tenant.NewContext(owner)

	activeSpec := specification.New("active", func(a *testsupport.Account) bool { return a.Active })
	opts := BuildFromSpecification(activeSpec, "account", tc)

	if opts.Entity != "account" {
		t.Fatalf("expected entity name, got %q", opts.Entity)
	}

	mine := testsupport.NewAccount("u1", owner)
	inactive := testsupport.NewAccount("u2", owner)
	inactive.Active = false
	foreign := testsupport.NewAccount("u3", other)

	if !Eval(opts.Where, mine) {
		t.Fatal("matching entity of the context tenant must pass")
	}
	if Eval(opts.Where, inactive) {
		t.Fatal("non-matching entity must fail the specification leaf")
	}
	if Eval(opts.Where, foreign) {
		t.Fatal("entity of another tenant must fail the injected filter even when the specification matches")
	}
}

func TestEvalOperators(t *testing.T) {
	owner := mustTenant(t, testsupport.TenantAlphaID)
	acct := testsupport.NewAccount("u1", owner)
	acct.Balance = 250
	acct.Name = "primary account"

	tests := []struct {
		name string
		pred Predicate
		want bool
	}{
		{name: "eq", pred: Cond("balance", OpEq, 250), want: true},
		{name: "neq", pred: Cond("balance", OpNotEq, 250), want: false},
		{name: "gt", pred: Cond("balance", OpGt, 100), want: true},
		{name: "gte boundary", pred: Cond("balance", OpGte, 250), want: true},
		{name: "lt", pred: Cond("balance", OpLt, 100), want: false},
		{name: "in", pred: Cond("name", OpIn, []string{"other", "primary account"}), want: true},
		{name: "contains", pred: Cond("name", OpContains, "primary"), want: true},
		{name: "unknown field", pred: Cond("missing", OpEq, 1), want: false},
		{name: "not", pred: Not(Cond("balance", OpEq, 250)), want: false},
		{name: "or", pred: Or(Cond("balance", OpEq, 1), Cond("balance", OpEq, 250)), want: true},
		{name: "nil predicate", pred: nil, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Eval(tt.pred, acct); got != tt.want {
				t.Fatalf("Eval = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestApplySortAndPagination(t *testing.T) {
	owner := mustTenant(t, testsupport.TenantAlphaID)
	accounts := []*testsupport.Account{}
	for i, balance := range []int64{30, 10, 20, 40} {
		a := testsupport.NewAccount(string(rune('a'+i)), owner)
		a.Balance = balance
		accounts = append(accounts, a)
	}

	ApplySort(accounts, []Sort{{Field: "balance", Desc: true}})
	if accounts[0].Balance != 40 || accounts[3].Balance != 10 {
		t.Fatalf("descending sort failed: %v", balances(accounts))
	}

	page := ApplyPagination(accounts, &Pagination{Page: 2, Limit: 2})
	if len(page) != 2 || page[0].Balance != 20 {
		t.Fatalf("pagination window wrong: %v", balances(page))
	}

	empty := ApplyPagination(accounts, &Pagination{Page: 9, Limit: 2})
	if len(empty) != 0 {
		t.Fatal("out-of-range page must be empty")
	}

	all := ApplyPagination(accounts, nil)
	if len(all) != len(accounts) {
		t.Fatal("nil pagination returns everything")
	}
}

func TestBuildFromCriteriaDetachesPagination(t *testing.T) {
	criteria := Criteria{}.Paginate(1, 10)
	opts := BuildFromCriteria(criteria, nil)

	criteria.Pagination.Page = 7
	criteria.Pagination.Limit = 99

	if opts.Pagination == nil || opts.Pagination.Page != 1 || opts.Pagination.Limit != 10 {
		t.Fatalf("built options must not share the caller's pagination, got %+v", opts.Pagination)
	}
}

func balances(accounts []*testsupport.Account) []int64 {
	out := make([]int64, len(accounts))
	for i, a := range accounts {
		out[i] = a.Balance
	}
	return out
}
