package authz

import (
	"fmt"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestAuthz(t *testing.T) *Service {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:authz_%s?mode=memory&cache=shared", name)), &gorm.Config{})
	require.NoError(t, err)
	svc, err := NewService(db)
	require.NoError(t, err)
	return svc
}

type decision struct {
	obj   string
	act   string
	allow bool
}

func checkDecisions(t *testing.T, svc *Service, adminID uint, cases []decision) {
	t.Helper()
	for _, tc := range cases {
		got, err := svc.EnforceAdmin(adminID, tc.obj, tc.act)
		require.NoError(t, err, "%s %s", tc.act, tc.obj)
		assert.Equal(t, tc.allow, got, "%s %s", tc.act, tc.obj)
	}
}

func TestEnforceAdminThroughRole(t *testing.T) {
	svc := newTestAuthz(t)
	require.NoError(t, svc.GrantRolePolicy("catalog", "/admin/products/:id", "get"))
	require.NoError(t, svc.SetAdminRoles(7, []string{"catalog"}))

	checkDecisions(t, svc, 7, []decision{
		{obj: "/api/v1/admin/products/42", act: "GET", allow: true},
		{obj: "admin/products/42", act: " get ", allow: true},
		{obj: "/api/v1/admin/products/42", act: "POST", allow: false},
		{obj: "/api/v1/admin/orders/1", act: "GET", allow: false},
	})
	checkDecisions(t, svc, 8, []decision{
		{obj: "/api/v1/admin/products/42", act: "GET", allow: false},
	})
}

func TestSetAdminRolesReplacesPreviousAssignment(t *testing.T) {
	svc := newTestAuthz(t)
	require.NoError(t, svc.GrantRolePolicy("finance_ops", "/admin/wallets/:user_id/status", "PATCH"))
	require.NoError(t, svc.GrantRolePolicy("support", "/admin/orders", "GET"))

	require.NoError(t, svc.SetAdminRoles(3, []string{"finance_ops", "support"}))
	roles, err := svc.GetAdminRoles(3)
	require.NoError(t, err)
	assert.Equal(t, []string{"role:finance_ops", "role:support"}, roles)

	require.NoError(t, svc.SetAdminRoles(3, []string{"role:support"}))
	roles, err = svc.GetAdminRoles(3)
	require.NoError(t, err)
	assert.Equal(t, []string{"role:support"}, roles)

	checkDecisions(t, svc, 3, []decision{
		{obj: "/admin/orders", act: "GET", allow: true},
		{obj: "/admin/wallets/9/status", act: "PATCH", allow: false},
	})
}

func TestRevokeRolePolicyTakesEffect(t *testing.T) {
	svc := newTestAuthz(t)
	require.NoError(t, svc.GrantRolePolicy("ops", "/admin/returns/:id/approve", "POST"))
	require.NoError(t, svc.SetAdminRoles(5, []string{"ops"}))
	checkDecisions(t, svc, 5, []decision{{obj: "/admin/returns/11/approve", act: "POST", allow: true}})

	require.NoError(t, svc.RevokeRolePolicy("ops", "/api/v1/admin/returns/:id/approve", "post"))
	checkDecisions(t, svc, 5, []decision{{obj: "/admin/returns/11/approve", act: "POST", allow: false}})

	policies, err := svc.GetRolePolicies("ops")
	require.NoError(t, err)
	assert.Empty(t, policies)

	// 撤销后角色仍然存在
	roles, err := svc.ListRoles()
	require.NoError(t, err)
	assert.Contains(t, roles, "role:ops")
}

func TestGetAdminPoliciesMergesRoles(t *testing.T) {
	svc := newTestAuthz(t)
	require.NoError(t, svc.GrantRolePolicy("a", "/admin/orders", "GET"))
	require.NoError(t, svc.GrantRolePolicy("b", "/admin/orders", "GET"))
	require.NoError(t, svc.GrantRolePolicy("b", "/admin/coupons", "*"))
	require.NoError(t, svc.SetAdminRoles(2, []string{"a", "b"}))

	policies, err := svc.GetAdminPolicies(2)
	require.NoError(t, err)
	require.Len(t, policies, 3)
	for _, p := range policies {
		assert.True(t, strings.HasPrefix(p.Subject, rolePrefix), p.Subject)
	}
	checkDecisions(t, svc, 2, []decision{
		{obj: "/admin/coupons", act: "DELETE", allow: true},
	})
}

func TestAuthzInputValidation(t *testing.T) {
	svc := newTestAuthz(t)

	assert.ErrorIs(t, svc.GrantRolePolicy("ops", "/admin/orders", "  "), ErrActionRequired)
	assert.ErrorIs(t, svc.RevokeRolePolicy("ops", "/admin/orders", ""), ErrActionRequired)
	assert.ErrorIs(t, svc.GrantRolePolicy(" ", "/admin/orders", "GET"), ErrRoleRequired)
	assert.ErrorIs(t, svc.SetAdminRoles(0, []string{"ops"}), ErrAdminRequired)
	assert.ErrorIs(t, svc.SetAdminRoles(1, []string{"__anchor__"}), ErrReservedRole)
	_, err := svc.GetAdminRoles(0)
	assert.ErrorIs(t, err, ErrAdminRequired)

	var nilSvc *Service
	_, err = nilSvc.EnforceAdmin(1, "/admin/orders", "GET")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestNormalizeHelpers(t *testing.T) {
	objects := map[string]string{
		"/api/v1/admin/products/:id": "/admin/products/:id",
		"admin/orders":               "/admin/orders",
		"/api/v1":                    "/",
		"/api/v10/admin":             "/api/v10/admin",
	}
	for in, want := range objects {
		assert.Equal(t, want, NormalizeObject(in), in)
	}

	role, err := NormalizeRole(" order ops ")
	require.NoError(t, err)
	assert.Equal(t, "role:order_ops", role)
	role, err = NormalizeRole("role:finance")
	require.NoError(t, err)
	assert.Equal(t, "role:finance", role)

	assert.Equal(t, "PATCH", NormalizeAction(" patch"))
}

func TestBootstrapBuiltinRolesMatrix(t *testing.T) {
	svc := newTestAuthz(t)
	require.NoError(t, svc.BootstrapBuiltinRoles())
	// 重复执行不应报错
	require.NoError(t, svc.BootstrapBuiltinRoles())

	roles, err := svc.ListRoles()
	require.NoError(t, err)
	for _, seed := range BuiltinRoleSeeds() {
		assert.Contains(t, roles, rolePrefix+seed.Role)
	}

	require.NoError(t, svc.SetAdminRoles(10, []string{"order_manager"}))
	checkDecisions(t, svc, 10, []decision{
		{obj: "/api/v1/admin/products", act: "GET", allow: true},
		{obj: "/api/v1/admin/orders/7/items/3/cancel", act: "POST", allow: true},
		{obj: "/api/v1/admin/returns/4/approve", act: "POST", allow: true},
		{obj: "/api/v1/admin/products", act: "POST", allow: false},
		{obj: "/api/v1/admin/wallets/9/status", act: "PATCH", allow: false},
	})

	require.NoError(t, svc.SetAdminRoles(11, []string{"finance"}))
	checkDecisions(t, svc, 11, []decision{
		{obj: "/api/v1/admin/wallets/9/status", act: "PATCH", allow: true},
		{obj: "/api/v1/admin/orders/7/items/3/cancel", act: "POST", allow: false},
	})
}

func TestDeleteRoleRespectsImmutability(t *testing.T) {
	svc := newTestAuthz(t)
	require.NoError(t, svc.BootstrapBuiltinRoles())

	for _, seed := range BuiltinRoleSeeds() {
		assert.True(t, IsImmutableRole(seed.Role), seed.Role)
		assert.ErrorIs(t, svc.DeleteRole(seed.Role), ErrImmutableRole)
	}

	require.NoError(t, svc.GrantRolePolicy("temp", "/admin/orders", "GET"))
	require.NoError(t, svc.SetAdminRoles(4, []string{"temp"}))
	require.NoError(t, svc.DeleteRole("temp"))

	roles, err := svc.ListRoles()
	require.NoError(t, err)
	assert.NotContains(t, roles, "role:temp")
	checkDecisions(t, svc, 4, []decision{{obj: "/admin/orders", act: "GET", allow: false}})
}
