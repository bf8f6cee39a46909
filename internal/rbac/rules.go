package rbac

const (
	RoleStudent       = "student"
	RoleAdministrator = "administrator"
)

// Default policy.
var RolePermissions = map[string][]string{
	RoleStudent: {
		"state:view",
		"state:change",
		"question:view",
		"result:submit",
		"result:view-own",
		"answer:view-own",
	},
	RoleAdministrator: {
		"*", // everything
	},
}
