package models

import "strings"

// Role is one of the values stored in user_roles.role.
type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
	RoleAdmin   Role = "admin"
)

// rolePriority orders roles when a user holds more than one; higher wins.
var rolePriority = map[Role]int{
	RolePatient: 1,
	RoleDoctor:  2,
	RoleAdmin:   3,
}

// ParseRole normalizes a role name and reports whether it is known.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	_, ok := rolePriority[r]
	return r, ok
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	_, ok := rolePriority[r]
	return ok
}

// Display returns the capitalized form shown on dashboards.
func (r Role) Display() string {
	switch r {
	case RoleDoctor:
		return "Doctor"
	case RoleAdmin:
		return "Admin"
	default:
		return "Patient"
	}
}

// EffectiveRole picks the highest-priority known role: admin beats doctor
// beats patient. Users without any known role are patients.
func EffectiveRole(roles []Role) Role {
	best := RolePatient
	bestRank := 0
	for _, r := range roles {
		if rank, ok := rolePriority[r]; ok && rank > bestRank {
			best, bestRank = r, rank
		}
	}
	return best
}

// UserRole defines a role granted to a user.
type UserRole struct {
	ID     uint   `json:"id" gorm:"primaryKey"`
	UserID string `json:"user_id" gorm:"type:uuid;uniqueIndex:idx_user_roles_user_role;not null"`
	Role   Role   `json:"role" gorm:"type:varchar(16);uniqueIndex:idx_user_roles_user_role;not null"`
}
