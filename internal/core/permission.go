package core

import (
	"fmt"
	"strings"
)

// PermissionLevel is the ordered authorization tier for a session.
// Guest is the zero value and the failure default.
type PermissionLevel int

const (
	PermissionGuest PermissionLevel = iota
	PermissionStandard
	PermissionAdmin
)

func (p PermissionLevel) String() string {
	switch p {
	case PermissionStandard:
		return "standard"
	case PermissionAdmin:
		return "admin"
	default:
		return "guest"
	}
}

// AtLeast reports whether p grants at least the given level.
func (p PermissionLevel) AtLeast(level PermissionLevel) bool {
	return p >= level
}

func ParsePermissionLevel(s string) (PermissionLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "guest":
		return PermissionGuest, nil
	case "standard":
		return PermissionStandard, nil
	case "admin":
		return PermissionAdmin, nil
	default:
		return PermissionGuest, fmt.Errorf("unknown permission level %q", s)
	}
}
