package model

type Role string

const (
	RoleCustomer Role = "customer"
	RoleOperator Role = "operator"
	RoleAdmin    Role = "admin"
)

// Actor is the caller identity supplied by the upstream identity
// collaborator. The engine trusts it and never re-derives it.
type Actor struct {
	UserID           string
	Role             Role
	OwnedResourceIDs []string
}

// Privileged reports whether the actor may perform operator-only
// transitions (confirm, complete).
func (a Actor) Privileged() bool {
	return a.Role == RoleOperator || a.Role == RoleAdmin
}

func (a Actor) Owns(resourceID string) bool {
	for _, id := range a.OwnedResourceIDs {
		if id == resourceID {
			return true
		}
	}
	return false
}
