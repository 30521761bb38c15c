// Package permission maps user roles to the actions they may perform.
package permission

// Role is one of the fixed user categories.
type Role = string

const (
	Admin     Role = "admin"
	Manager   Role = "manager"
	Developer Role = "developer"
	Designer  Role = "designer"
)

// Roles lists every known role.
var Roles = []Role{Admin, Manager, Developer, Designer}

// Permission is a named action a role may be allowed to perform.
type Permission string

const (
	ViewProjects  Permission = "view_projects"
	CreateProject Permission = "create_project"
	EditProject   Permission = "edit_project"
	DeleteProject Permission = "delete_project"
	ViewTasks     Permission = "view_tasks"
	CreateTask    Permission = "create_task"
	EditTask      Permission = "edit_task"
	DeleteTask    Permission = "delete_task"
	AssignTask    Permission = "assign_task"
	Comment       Permission = "comment"
	ViewUsers     Permission = "view_users"
	ManageUsers   Permission = "manage_users"
)

var table = map[Role][]Permission{
	Admin: {
		ViewProjects, CreateProject, EditProject, DeleteProject,
		ViewTasks, CreateTask, EditTask, DeleteTask, AssignTask,
		Comment, ViewUsers, ManageUsers,
	},
	Manager: {
		ViewProjects, CreateProject, EditProject,
		ViewTasks, CreateTask, EditTask, AssignTask,
		Comment, ViewUsers,
	},
	Developer: {
		ViewProjects,
		ViewTasks, CreateTask, EditTask,
		Comment, ViewUsers,
	},
	Designer: {
		ViewProjects,
		ViewTasks, EditTask,
		Comment, ViewUsers,
	},
}

// IsValidRole reports whether role is one of Roles.
func IsValidRole(role string) bool {
	_, ok := table[role]
	return ok
}

// For returns a copy of the permission set of role. Unknown roles get an
// empty, non-nil set.
func For(role string) []Permission {
	perms := table[role]
	out := make([]Permission, len(perms))
	copy(out, perms)
	return out
}

// Has reports whether role grants p.
func Has(role string, p Permission) bool {
	for _, granted := range table[role] {
		if granted == p {
			return true
		}
	}
	return false
}

// HasAll reports whether role grants every permission in ps. An empty list is
// trivially satisfied.
func HasAll(role string, ps ...Permission) bool {
	for _, p := range ps {
		if !Has(role, p) {
			return false
		}
	}
	return true
}

// HasAny reports whether role grants at least one permission in ps.
func HasAny(role string, ps ...Permission) bool {
	for _, p := range ps {
		if Has(role, p) {
			return true
		}
	}
	return false
}
