package authz

import "github.com/taskhive/engine/internal/models"

// Capability is a requested permission on a project-scoped resource.
type Capability string

const (
	CapView          Capability = "view"
	CapEditTask      Capability = "edit_task"
	CapManageProject Capability = "manage_project"
	CapManageMembers Capability = "manage_members"
)

// roleRank orders roles for permission purposes: owner > admin > member > viewer.
var roleRank = map[string]int{
	models.RoleViewer: 1,
	models.RoleMember: 2,
	models.RoleAdmin:  3,
	models.RoleOwner:  4,
}

// minRank is the minimum role rank granting each capability.
var minRank = map[Capability]int{
	CapView:          roleRank[models.RoleViewer],
	CapEditTask:      roleRank[models.RoleMember],
	CapManageProject: roleRank[models.RoleAdmin],
	CapManageMembers: roleRank[models.RoleAdmin],
}

// CanOnProject decides whether the actor holds cap on the given project.
// Inputs are already-resolved rows; the function is pure and side-effect free.
// The project owner holds every capability regardless of any membership row;
// otherwise the decision comes from the membership role alone, and the
// absence of a membership denies everything, including view.
func CanOnProject(actorID uint, project *models.Project, membership *models.ProjectMember, cap Capability) bool {
	if project == nil {
		return false
	}
	if project.OwnerID == actorID {
		return true
	}
	if membership == nil || membership.UserID != actorID || membership.ProjectID != project.ID {
		return false
	}
	return roleRank[membership.Role] >= minRank[cap]
}

// CanOnTask decides whether the actor holds cap on a task. A projectless
// task is personal: its direct owner holds every capability and no one else
// holds any. A project task defers to the project decision.
func CanOnTask(actorID uint, task *models.Task, project *models.Project, membership *models.ProjectMember, cap Capability) bool {
	if task == nil {
		return false
	}
	if task.ProjectID == nil {
		return task.OwnerID == actorID
	}
	return CanOnProject(actorID, project, membership, cap)
}

// RoleOf returns the actor's effective role on a project, or "" if none.
// Ownership outranks any membership row.
func RoleOf(actorID uint, project *models.Project, membership *models.ProjectMember) string {
	if project == nil {
		return ""
	}
	if project.OwnerID == actorID {
		return models.RoleOwner
	}
	if membership == nil || membership.UserID != actorID || membership.ProjectID != project.ID {
		return ""
	}
	return membership.Role
}
