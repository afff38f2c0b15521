package session

import (
	"strings"

	"github.com/pkg/errors"
)

// Roles
const (
	RoleStudent Role = "Student"
	RoleTeacher Role = "Teacher"
	RoleHOD     Role = "HOD"
)

var (
	AllRoles = []Role{RoleStudent, RoleTeacher, RoleHOD}

	ErrUnknownRole = errors.New("unknown role")
)

type Role string

func (r Role) IsValid() bool {
	for _, role := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}

// ParseRole matches `s` case-insensitively against AllRoles.
func ParseRole(s string) (Role, error) {
	s = strings.TrimSpace(s)
	for _, role := range AllRoles {
		if strings.EqualFold(s, string(role)) {
			return role, nil
		}
	}
	return "", errors.Wrapf(ErrUnknownRole, "%q", s)
}

// Session is the logged in user of a profile. Only one is active at a time.
type Session struct {
	Role Role   `json:"role"`
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (s Session) IsStudent() bool { return s.Role == RoleStudent }
func (s Session) IsTeacher() bool { return s.Role == RoleTeacher }
func (s Session) IsHOD() bool     { return s.Role == RoleHOD }
