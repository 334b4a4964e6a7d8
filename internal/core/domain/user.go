package domain

import (
	"strings"
	"time"
)

// Role is the kind of participant behind a user id.
type Role string

const (
	RoleStudent    Role = "student"
	RoleShopkeeper Role = "shopkeeper"
)

// ParseRole normalises a user-supplied role. Both the singular and the plural
// form are accepted because older clients request /users/type/students.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "student", "students":
		return RoleStudent, nil
	case "shopkeeper", "shopkeepers":
		return RoleShopkeeper, nil
	default:
		return "", ErrInvalidRole
	}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleShopkeeper
}

// User is a participant of the chat. It is created on first login and only
// its LastSeen (and, last writer wins, Name/Role/Email) change afterwards.
type User struct {
	ID        string    `json:"userId"`
	Name      string    `json:"name"`
	Role      Role      `json:"userType"`
	Email     string    `json:"email,omitempty"`
	LastSeen  time.Time `json:"lastSeen"`
	CreatedAt time.Time `json:"createdAt"`
}
