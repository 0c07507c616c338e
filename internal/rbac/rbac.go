package rbac

// Role constants
const (
	RoleOwner   = "owner"
	RoleManager = "manager"
	RoleAgent   = "agent"
)

// Permission constants
const (
	PermViewQueue      = "view_queue"
	PermResolveAction  = "resolve_action"
	PermManageSettings = "manage_settings"
	PermManageProfile  = "manage_profile"
	PermManageContacts = "manage_contacts"
	PermChat           = "chat"
)

// RolePermissions defines what each role can do.
var RolePermissions = map[string][]string{
	RoleOwner: {
		PermViewQueue, PermResolveAction, PermManageSettings, PermManageProfile,
		PermManageContacts, PermChat,
	},
	RoleManager: {
		PermViewQueue, PermResolveAction, PermManageContacts, PermChat,
		// Manager CANNOT: PermManageSettings, PermManageProfile
	},
	RoleAgent: {
		PermViewQueue, PermManageContacts, PermChat,
	},
}

// HasPermission checks if a role has a specific permission.
func HasPermission(role, permission string) bool {
	perms, ok := RolePermissions[role]
	if !ok {
		return false
	}
	for _, p := range perms {
		if p == permission {
			return true
		}
	}
	return false
}

func IsKnownRole(role string) bool {
	_, ok := RolePermissions[role]
	return ok
}

// IsOwnerOnly reports whether only owners hold permission.
func IsOwnerOnly(permission string) bool {
	return permission == PermManageSettings || permission == PermManageProfile
}
