package model

import "fmt"

// RoleID is the numeric role identifier carried in sessions and stored on users.
type RoleID int

// Role identifiers shared with existing deployments. RoleSuperAdmin is the
// env-configured credential and has no row in the roles table.
const (
	RoleGuest      RoleID = -1
	RoleSuperAdmin RoleID = 0
	RoleSuperuser  RoleID = 211
	RoleAdmin      RoleID = 212
	RoleDoctor     RoleID = 213
	RolePatient    RoleID = 216
)

var roleNames = map[RoleID]string{
	RoleGuest:      "guest",
	RoleSuperAdmin: "superadmin",
	RoleSuperuser:  "superadmin",
	RoleAdmin:      "admin",
	RoleDoctor:     "doctor",
	RolePatient:    "patient",
}

// Name returns the rule-table name for the role, or "" for unknown ids.
func (r RoleID) Name() string {
	return roleNames[r]
}

// Valid reports whether r is one of the known role ids.
func (r RoleID) Valid() bool {
	_, ok := roleNames[r]
	return ok
}

// Assignable reports whether a stored user may carry this role.
func (r RoleID) Assignable() bool {
	return r.Valid() && r != RoleSuperAdmin
}

func (r RoleID) String() string {
	if name := r.Name(); name != "" {
		return fmt.Sprintf("%s(%d)", name, int(r))
	}
	return fmt.Sprintf("unknown(%d)", int(r))
}

// Role is a row in the roles table.
type Role struct {
	ID          RoleID `db:"id" json:"id"`
	Name        string `db:"name" json:"name"`
	Description string `db:"description" json:"description"`
}

// RolePermission is a persisted grant for a role.
type RolePermission struct {
	RoleID    RoleID `db:"role_id" json:"role_id"`
	Subject   string `db:"subject" json:"subject" binding:"required"`
	Action    string `db:"action" json:"action" binding:"required"`
	CanAccess int    `db:"can_access" json:"can_access" binding:"oneof=0 1"`
}

type ReplaceGrantsRequest struct {
	Grants []RolePermission `json:"grants" binding:"dive"`
}
