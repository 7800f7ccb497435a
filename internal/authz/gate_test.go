package authz

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/printdesk/printdesk/internal/platform/httpx"
)

func TestRoleCheck(t *testing.T) {
	g := NewGate()

	admin := Principal{ID: 1, Role: RoleAdmin}
	staff := Principal{ID: 2, Role: RoleStaff}
	customer := Principal{ID: 3, Role: RoleCustomer}

	require.NoError(t, g.Authorize(admin, ResourceProduct, ActionCreate, Target{}))
	require.ErrorIs(t, g.Authorize(staff, ResourceProduct, ActionCreate, Target{}), httpx.ErrForbidden)
	require.ErrorIs(t, g.Authorize(customer, ResourceProduct, ActionCreate, Target{}), httpx.ErrForbidden)

	require.NoError(t, g.Authorize(staff, ResourceOrder, ActionViewAll, Target{}))
	require.ErrorIs(t, g.Authorize(customer, ResourceOrder, ActionViewAll, Target{}), httpx.ErrForbidden)

	require.NoError(t, g.Authorize(customer, ResourceMessage, ActionCreate, Target{}))
}

func TestOwnerOverride(t *testing.T) {
	g := NewGate()
	customer := Principal{ID: 7, Role: RoleCustomer}

	require.NoError(t, g.Authorize(customer, ResourceOrder, ActionView, Target{OwnerID: 7}))
	require.ErrorIs(t, g.Authorize(customer, ResourceOrder, ActionView, Target{OwnerID: 8}), httpx.ErrForbidden)

	// A zero owner never matches, even against a zero principal ID.
	nobody := Principal{ID: 0, Role: RoleCustomer}
	require.ErrorIs(t, g.Authorize(nobody, ResourceOrder, ActionView, Target{}), httpx.ErrForbidden)
}

func TestUserDeleteInvariants(t *testing.T) {
	g := NewGate()
	admin := Principal{ID: 1, Role: RoleAdmin}

	// Invariants bind even when the role check passed.
	err := g.Authorize(admin, ResourceUser, ActionDelete, Target{TargetID: 2, TargetRole: RoleAdmin})
	require.ErrorIs(t, err, httpx.ErrForbidden)

	err = g.Authorize(admin, ResourceUser, ActionDelete, Target{TargetID: 1, TargetRole: RoleCustomer})
	require.ErrorIs(t, err, httpx.ErrForbidden)

	require.NoError(t, g.Authorize(admin, ResourceUser, ActionDelete, Target{TargetID: 2, TargetRole: RoleCustomer}))

	staff := Principal{ID: 5, Role: RoleStaff}
	require.ErrorIs(t, g.Authorize(staff, ResourceUser, ActionDelete, Target{TargetID: 2, TargetRole: RoleCustomer}), httpx.ErrForbidden)
}

func TestUnknownPairDenied(t *testing.T) {
	g := NewGate()
	admin := Principal{ID: 1, Role: RoleAdmin}
	err := g.Authorize(admin, Resource("widget"), ActionCreate, Target{})
	require.ErrorIs(t, err, httpx.ErrForbidden)
}

func TestRuleTableTotality(t *testing.T) {
	// Every (resource, action) pair handlers rely on must resolve to a rule.
	used := [][2]string{
		{"order", "create"}, {"order", "view"}, {"order", "view_all"},
		{"order", "edit"}, {"order", "delete"},
		{"message", "create"}, {"message", "view"}, {"message", "view_all"}, {"message", "respond"},
		{"notification", "view"}, {"notification", "edit"},
		{"product", "create"}, {"product", "edit"}, {"product", "delete"},
		{"user", "view"}, {"user", "delete"},
		{"inventory", "view"}, {"inventory", "adjust"},
		{"upload", "create"}, {"upload", "delete"},
	}

	g := NewGate()
	registered := make(map[[2]string]bool)
	for _, pair := range g.Pairs() {
		registered[pair] = true
	}
	for _, pair := range used {
		require.True(t, registered[pair], "missing rule for %s.%s", pair[0], pair[1])
	}
	require.Len(t, registered, len(used), "rule table has entries no handler uses")
}

func TestInvariantOrderingReportsSpecificReason(t *testing.T) {
	g := NewGate()
	admin := Principal{ID: 1, Role: RoleAdmin}

	err := g.Authorize(admin, ResourceUser, ActionDelete, Target{TargetID: 2, TargetRole: RoleAdmin})
	require.Error(t, err)
	require.Contains(t, err.Error(), "administrator")

	err = g.Authorize(admin, ResourceUser, ActionDelete, Target{TargetID: 1, TargetRole: RoleAdmin})
	// First failing invariant wins; the rule lists TargetNotAdmin first.
	require.Contains(t, err.Error(), "administrator")

	var forbidden error = httpx.ErrForbidden
	require.True(t, errors.Is(err, forbidden))
}
