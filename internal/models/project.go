package models

import "time"

// Project status values
const (
	ProjectStatusPlanning   = "PLANNING"
	ProjectStatusInProgress = "IN_PROGRESS"
	ProjectStatusCompleted  = "COMPLETED"
	ProjectStatusOnHold     = "ON_HOLD"
)

// Project member roles (project_members.role)
const (
	ProjectRoleImplementer = "implementer"
	ProjectRoleFollower    = "follower"
)

// Project represents a project as read by the deadline queries.
// Manager, Implementers and Followers are joined in by the store.
type Project struct {
	ID           int64          `json:"id"`
	Name         string         `json:"name"`
	Code         string         `json:"code"`
	EndDate      *time.Time     `json:"end_date,omitempty"` // nullable: projects without a deadline are skipped
	Status       string         `json:"status"`
	ManagerID    int64          `json:"manager_id"`
	Manager      NotifyTarget   `json:"manager"`
	Implementers []NotifyTarget `json:"implementers,omitempty"`
	Followers    []NotifyTarget `json:"followers,omitempty"`
}
