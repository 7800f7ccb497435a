package authz

import (
	"fmt"

	"github.com/printdesk/printdesk/internal/platform/httpx"
)

// Invariant is a resource-specific predicate evaluated after the role and
// ownership checks. A non-nil error denies the request even when the role
// check already passed.
type Invariant func(p Principal, t Target) error

// Rule decides who may perform one (resource, action) pair.
type Rule struct {
	AllowedRoles  []Role
	OwnerOverride bool
	Invariants    []Invariant
}

type ruleKey struct {
	resource Resource
	action   Action
}

// Gate is the process-wide policy table. It is built once at startup and
// never mutated afterwards; Authorize is a pure function of its inputs.
type Gate struct {
	rules map[ruleKey]Rule
}

// NewGate builds the static rule table covering every protected operation.
func NewGate() *Gate {
	g := &Gate{rules: make(map[ruleKey]Rule)}

	anyRole := []Role{RoleAdmin, RoleStaff, RoleCustomer}
	staffUp := []Role{RoleAdmin, RoleStaff}
	adminOnly := []Role{RoleAdmin}

	g.add(ResourceOrder, ActionCreate, Rule{AllowedRoles: anyRole})
	g.add(ResourceOrder, ActionView, Rule{AllowedRoles: staffUp, OwnerOverride: true})
	g.add(ResourceOrder, ActionViewAll, Rule{AllowedRoles: staffUp})
	g.add(ResourceOrder, ActionEdit, Rule{AllowedRoles: staffUp})
	g.add(ResourceOrder, ActionDelete, Rule{AllowedRoles: adminOnly, OwnerOverride: true})

	g.add(ResourceMessage, ActionCreate, Rule{AllowedRoles: anyRole})
	g.add(ResourceMessage, ActionView, Rule{AllowedRoles: staffUp, OwnerOverride: true})
	g.add(ResourceMessage, ActionViewAll, Rule{AllowedRoles: staffUp})
	g.add(ResourceMessage, ActionRespond, Rule{AllowedRoles: staffUp})

	g.add(ResourceNotification, ActionView, Rule{AllowedRoles: adminOnly, OwnerOverride: true})
	g.add(ResourceNotification, ActionEdit, Rule{OwnerOverride: true})

	g.add(ResourceProduct, ActionCreate, Rule{AllowedRoles: adminOnly})
	g.add(ResourceProduct, ActionEdit, Rule{AllowedRoles: adminOnly})
	g.add(ResourceProduct, ActionDelete, Rule{AllowedRoles: adminOnly})

	g.add(ResourceUser, ActionView, Rule{AllowedRoles: adminOnly})
	g.add(ResourceUser, ActionDelete, Rule{
		AllowedRoles: adminOnly,
		Invariants:   []Invariant{TargetNotAdmin, NotSelf},
	})

	g.add(ResourceInventory, ActionView, Rule{AllowedRoles: staffUp})
	g.add(ResourceInventory, ActionAdjust, Rule{AllowedRoles: staffUp})

	g.add(ResourceUpload, ActionCreate, Rule{AllowedRoles: anyRole})
	g.add(ResourceUpload, ActionDelete, Rule{AllowedRoles: adminOnly, OwnerOverride: true})

	return g
}

func (g *Gate) add(res Resource, act Action, rule Rule) {
	g.rules[ruleKey{resource: res, action: act}] = rule
}

// Pairs lists every (resource, action) pair the table covers. Used by tests
// to assert the table is total over the operations handlers perform.
func (g *Gate) Pairs() [][2]string {
	pairs := make([][2]string, 0, len(g.rules))
	for k := range g.rules {
		pairs = append(pairs, [2]string{string(k.resource), string(k.action)})
	}
	return pairs
}

// Authorize decides whether principal may perform action on the resource
// described by target. Checks run in a fixed order: role, then ownership
// override, then invariants. Invariants run even when the role check passed,
// so rules like "cannot delete an administrator" bind admins too.
func (g *Gate) Authorize(p Principal, res Resource, act Action, t Target) error {
	rule, ok := g.rules[ruleKey{resource: res, action: act}]
	if !ok {
		// No implicit allow: an unregistered operation is a deny.
		return fmt.Errorf("%w: no policy for %s.%s", httpx.ErrForbidden, res, act)
	}

	allowed := roleAllowed(p.Role, rule.AllowedRoles)
	if !allowed && rule.OwnerOverride && t.OwnerID != 0 && t.OwnerID == p.ID {
		allowed = true
	}
	if !allowed {
		return fmt.Errorf("%w: role %s may not %s %s", httpx.ErrForbidden, p.Role, act, res)
	}

	for _, inv := range rule.Invariants {
		if err := inv(p, t); err != nil {
			return err
		}
	}
	return nil
}

func roleAllowed(role Role, allowed []Role) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}

// TargetNotAdmin denies operations whose target account holds the ADMIN role.
func TargetNotAdmin(p Principal, t Target) error {
	if t.TargetRole == RoleAdmin {
		return fmt.Errorf("%w: administrator accounts cannot be targeted", httpx.ErrForbidden)
	}
	return nil
}

// NotSelf denies operations where the principal targets their own account.
func NotSelf(p Principal, t Target) error {
	if t.TargetID != 0 && t.TargetID == p.ID {
		return fmt.Errorf("%w: cannot target your own account", httpx.ErrForbidden)
	}
	return nil
}
