package models

// PermissionAction is an operation one user may perform on another.
type PermissionAction string

const (
	ActionView       PermissionAction = "view"
	ActionCreate     PermissionAction = "create"
	ActionEdit       PermissionAction = "edit"
	ActionDeactivate PermissionAction = "deactivate"
)

// RolePermissions lists, per acting role and action, the target roles allowed.
// STAFF and CLIENT manage nobody but themselves.
var RolePermissions = map[UserRole]map[PermissionAction][]UserRole{
	RoleAdmin: {
		ActionView:       {RoleAdmin, RoleApprover, RoleOwner, RoleStaff, RoleClient},
		ActionCreate:     {RoleAdmin, RoleApprover, RoleOwner, RoleStaff},
		ActionEdit:       {RoleAdmin, RoleApprover, RoleOwner, RoleStaff},
		ActionDeactivate: {RoleAdmin, RoleApprover, RoleOwner, RoleStaff, RoleClient},
	},
	RoleApprover: {
		ActionView:       {RoleOwner, RoleStaff},
		ActionCreate:     {RoleOwner, RoleStaff},
		ActionEdit:       {RoleOwner, RoleStaff},
		ActionDeactivate: {RoleOwner, RoleStaff},
	},
	RoleOwner: {
		ActionView:       {RoleStaff},
		ActionCreate:     {RoleStaff},
		ActionEdit:       {RoleStaff},
		ActionDeactivate: {RoleStaff},
	},
}

// CanManage reports whether actor may perform action on a user with the target role.
func CanManage(actor UserRole, action PermissionAction, target UserRole) bool {
	for _, allowed := range RolePermissions[actor][action] {
		if allowed == target {
			return true
		}
	}
	return false
}

// ManageableRoles returns the target roles actor may perform action on.
func ManageableRoles(actor UserRole, action PermissionAction) []UserRole {
	roles := RolePermissions[actor][action]
	out := make([]UserRole, len(roles))
	copy(out, roles)
	return out
}
