// Package authz holds the pure authorization policy: given an actor and an
// action on a resource it returns allow or deny. It never touches storage;
// callers fetch whatever ownership data a decision needs.
package authz

import (
	"github.com/Shadow-TermDev/whats-links-backend/internal/models"
)

// Actor is the authenticated identity performing an operation. A zero ID
// means unauthenticated.
type Actor struct {
	ID       int64
	Username string
	Role     string
}

func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

type Action int

const (
	ActionRegister Action = iota
	ActionLogin
	ActionChangeUsername
	ActionListProfiles
	ActionDeleteAccount
	ActionListCategories
	ActionCreateCategory
	ActionDeleteCategoryByName
	ActionDeleteCategoryByID
	ActionSubmitLink
	ActionListLinks
	ActionDeleteLink
)

// Resource carries the ownership data a decision may need. OwnerID is nil
// when the resource has no recorded owner.
type Resource struct {
	OwnerID *int64
}

// Deny reasons.
const (
	ReasonUnauthenticated = "unauthenticated"
	ReasonAdminRequired   = "admin_required"
	ReasonNotOwner        = "not_owner"
	ReasonAdminProtected  = "admin_protected"
)

type Decision struct {
	Allowed bool
	Reason  string
}

func Allow() Decision {
	return Decision{Allowed: true}
}

func Deny(reason string) Decision {
	return Decision{Reason: reason}
}

// Decide applies the policy rules in priority order:
//  1. Registration and login require no prior authentication.
//  2. Everything else requires an authenticated actor.
//  3. Category creation and deletion-by-name are admin-only.
//  4. Category deletion-by-id is owner-or-admin.
//  5. Link deletion is open to any authenticated actor; ownership is enforced
//     by the delete predicate itself, so a non-owned id is a silent no-op.
//  6. Account self-deletion is blocked for admins.
//  7. Username change and profile listing are open to any authenticated actor.
func Decide(actor Actor, action Action, resource Resource) Decision {
	switch action {
	case ActionRegister, ActionLogin:
		return Allow()
	}

	if actor.ID == 0 {
		return Deny(ReasonUnauthenticated)
	}

	switch action {
	case ActionCreateCategory, ActionDeleteCategoryByName:
		if !actor.IsAdmin() {
			return Deny(ReasonAdminRequired)
		}
	case ActionDeleteCategoryByID:
		if actor.IsAdmin() {
			return Allow()
		}
		if resource.OwnerID == nil || *resource.OwnerID != actor.ID {
			return Deny(ReasonNotOwner)
		}
	case ActionDeleteAccount:
		if actor.IsAdmin() {
			return Deny(ReasonAdminProtected)
		}
	}

	return Allow()
}
