package models

import "time"

type Role string

const (
	RoleMember      Role = "member"
	RoleScrumMaster Role = "scrumMaster"
	RoleLeader      Role = "leader"
	RoleAdmin       Role = "admin"
	RoleAuditor     Role = "auditor"
)

// ValidRoles lists every assignable role.
var ValidRoles = []Role{RoleMember, RoleScrumMaster, RoleLeader, RoleAdmin, RoleAuditor}

// IsValid reports whether r is a known role.
func (r Role) IsValid() bool {
	for _, v := range ValidRoles {
		if r == v {
			return true
		}
	}
	return false
}

// CrossTeam reports whether the role may act on any team, not just its own.
func (r Role) CrossTeam() bool {
	return r == RoleAdmin || r == RoleAuditor
}

// UserStats holds the activity counters fed by task mutations and the voice
// tracker.
type UserStats struct {
	SecondsInCall  int `json:"secondsInCall"`
	TasksAssigned  int `json:"tasksAssigned"`
	TasksCompleted int `json:"tasksCompleted"`
}

type User struct {
	ID           string    `json:"id"`
	Nickname     string    `json:"nickname"`
	Role         Role      `json:"role"`
	Team         string    `json:"team"`
	TokenHash    string    `json:"tokenHash"`
	Stats        UserStats `json:"stats"`
	LastActivity time.Time `json:"lastActivity,omitempty"`
}

// UsersDocument is the whole persisted users store.
type UsersDocument struct {
	SchemaVersion int              `json:"schemaVersion"`
	Users         map[string]*User `json:"users"`
}

// NewUsersDocument returns an empty document at the current schema version.
func NewUsersDocument() *UsersDocument {
	return &UsersDocument{SchemaVersion: SchemaVersion, Users: map[string]*User{}}
}

// FindByNickname returns the user with the given display name, or nil.
func (d *UsersDocument) FindByNickname(nickname string) *User {
	for _, u := range d.Users {
		if u.Nickname == nickname {
			return u
		}
	}
	return nil
}

// TeamMembers returns every user belonging to the named team.
func (d *UsersDocument) TeamMembers(team string) []*User {
	var members []*User
	for _, u := range d.Users {
		if u.Team == team {
			members = append(members, u)
		}
	}
	return members
}
