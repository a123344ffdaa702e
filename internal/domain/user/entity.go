package user

import "time"

type Role string

const (
	RoleAdmin    Role = "admin"    // Receives movement alerts
	RoleEmployee Role = "employee" // Regular employee
)

type User struct {
	ID    string
	Name  string
	Email string
	Role  Role

	// GeofenceEnabled is the per-user geofence override. nil follows the
	// global setting, false opts the user out.
	GeofenceEnabled *bool
	ShiftID         *string
	IsActive        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsAdmin checks if user is an administrator
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// GeofenceOptedOut reports whether the user explicitly disabled geofencing.
func (u *User) GeofenceOptedOut() bool {
	return u.GeofenceEnabled != nil && !*u.GeofenceEnabled
}

// DisplayName falls back to the email when no name is set.
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}
