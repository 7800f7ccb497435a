// Package authz centralises request authorization: resolving the acting
// principal from a credential and deciding allow/deny for each operation.
package authz

// Role is the coarse permission level attached to a user account.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleStaff    Role = "STAFF"
	RoleCustomer Role = "CUSTOMER"
)

// Valid reports whether the role belongs to the canonical set.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleStaff, RoleCustomer:
		return true
	}
	return false
}

// Principal describes the authenticated actor for the current request. It is
// resolved fresh per request and never persisted.
type Principal struct {
	ID    int64
	Email string
	Role  Role
}

// Resource identifies a protected resource kind.
type Resource string

const (
	ResourceOrder        Resource = "order"
	ResourceMessage      Resource = "message"
	ResourceNotification Resource = "notification"
	ResourceProduct      Resource = "product"
	ResourceUser         Resource = "user"
	ResourceInventory    Resource = "inventory"
	ResourceUpload       Resource = "upload"
)

// Action identifies an operation on a resource kind.
type Action string

const (
	ActionView    Action = "view"
	ActionViewAll Action = "view_all"
	ActionCreate  Action = "create"
	ActionEdit    Action = "edit"
	ActionDelete  Action = "delete"
	ActionRespond Action = "respond"
	ActionAdjust  Action = "adjust"
)

// Target carries the attributes of the acted-on resource that rules may
// inspect: the owning user and, for user-management operations, the target
// account itself.
type Target struct {
	OwnerID    int64
	TargetID   int64
	TargetRole Role
}
