package authz

import "fmt"

// RoleSeed 预置角色定义
type RoleSeed struct {
	Role      string
	Inherits  []string
	Policies  []Policy
	Immutable bool
}

// BuiltinRoleSeeds 系统预置角色矩阵
func BuiltinRoleSeeds() []RoleSeed {
	return []RoleSeed{
		{
			Role: "readonly_auditor",
			Policies: []Policy{
				{Object: "/admin/*", Action: "GET"},
			},
			Immutable: true,
		},
		{
			Role:     "catalog_manager",
			Inherits: []string{"readonly_auditor"},
			Policies: []Policy{
				{Object: "/admin/categories", Action: "*"},
				{Object: "/admin/categories/:id", Action: "*"},
				{Object: "/admin/products", Action: "*"},
				{Object: "/admin/products/:id", Action: "*"},
				{Object: "/admin/products/:id/variants", Action: "POST"},
				{Object: "/admin/variants/:id", Action: "PUT"},
				{Object: "/admin/offers", Action: "*"},
				{Object: "/admin/offers/:id", Action: "*"},
				{Object: "/admin/offers/:id/deactivate", Action: "POST"},
				{Object: "/admin/coupons", Action: "*"},
				{Object: "/admin/coupons/:id", Action: "*"},
			},
			Immutable: true,
		},
		{
			Role:     "order_manager",
			Inherits: []string{"readonly_auditor"},
			Policies: []Policy{
				{Object: "/admin/orders/:id/items/:item_id/status", Action: "PATCH"},
				{Object: "/admin/orders/:id/items/:item_id/cancel", Action: "POST"},
				{Object: "/admin/returns/:id/approve", Action: "POST"},
				{Object: "/admin/returns/:id/reject", Action: "POST"},
			},
			Immutable: true,
		},
		{
			Role:     "finance",
			Inherits: []string{"readonly_auditor"},
			Policies: []Policy{
				{Object: "/admin/wallets/:user_id/status", Action: "PATCH"},
				{Object: "/admin/referral-offers", Action: "*"},
				{Object: "/admin/referral-offers/:id", Action: "*"},
				{Object: "/admin/referrals/retry", Action: "POST"},
				{Object: "/admin/users/:id/status", Action: "PATCH"},
			},
			Immutable: true,
		},
	}
}

// IsImmutableRole 判断是否为不可删除的预置角色
func IsImmutableRole(role string) bool {
	normalized, err := NormalizeRole(role)
	if err != nil {
		return false
	}
	for _, seed := range BuiltinRoleSeeds() {
		if seed.Immutable && rolePrefix+seed.Role == normalized {
			return true
		}
	}
	return false
}

// BootstrapBuiltinRoles 登记预置角色、继承关系与默认策略，可重复执行
func (s *Service) BootstrapBuiltinRoles() error {
	if err := s.ready(); err != nil {
		return err
	}
	for _, seed := range BuiltinRoleSeeds() {
		if err := s.applySeed(seed); err != nil {
			return fmt.Errorf("bootstrap role %s failed: %w", seed.Role, err)
		}
	}
	return nil
}

func (s *Service) applySeed(seed RoleSeed) error {
	role, err := s.EnsureRole(seed.Role)
	if err != nil {
		return err
	}
	for _, parent := range seed.Inherits {
		parentRole, err := s.EnsureRole(parent)
		if err != nil {
			return err
		}
		if _, err := s.enforcer.AddNamedGroupingPolicy(groupType, role, parentRole); err != nil {
			return fmt.Errorf("link parent %s: %w", parentRole, err)
		}
	}
	for _, policy := range seed.Policies {
		if err := s.GrantRolePolicy(role, policy.Object, policy.Action); err != nil {
			return err
		}
	}
	return nil
}
