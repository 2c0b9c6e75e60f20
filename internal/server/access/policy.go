// Package access decides whether an authenticated caller may act on a target
// account. Every function here is pure.
package access

import (
	"fmt"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/server/models"
)

// Identity is the verified caller of a request.
type Identity struct {
	UserName string
	Role     models.Role
}

// Scope selects the rule applied to a profile operation.
type Scope int

const (
	// ScopeSelf permits callers to act only on their own record.
	ScopeSelf Scope = iota
	// ScopeAdmin additionally permits ADMIN callers to act on any record.
	ScopeAdmin
)

func (s Scope) String() string {
	switch s {
	case ScopeSelf:
		return "self"
	case ScopeAdmin:
		return "admin"
	default:
		return fmt.Sprintf("scope(%d)", int(s))
	}
}

// CanAccessSelf reports whether caller is target.
func CanAccessSelf(caller, target string) bool {
	return caller == target
}

// CanAccessAdmin reports whether a caller holding role may act on target.
func CanAccessAdmin(role models.Role, caller, target string) bool {
	switch role {
	case models.RoleAdmin:
		return true
	case models.RoleUser:
		return CanAccessSelf(caller, target)
	default:
		return false
	}
}

// CanListUsers reports whether role may enumerate every account.
func CanListUsers(role models.Role) bool {
	switch role {
	case models.RoleAdmin:
		return true
	case models.RoleUser:
		return false
	default:
		return false
	}
}

// Authorize applies scope to id and target, returning common.ErrorForbidden
// on denial.
func Authorize(scope Scope, id Identity, target string) error {
	var ok bool
	switch scope {
	case ScopeSelf:
		ok = CanAccessSelf(id.UserName, target)
	case ScopeAdmin:
		ok = CanAccessAdmin(id.Role, id.UserName, target)
	}
	if !ok {
		return fmt.Errorf("%w: %s may not access %s (%s scope)", common.ErrorForbidden, id.UserName, target, scope)
	}
	return nil
}
