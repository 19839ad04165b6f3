// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"errors"
	"strings"
)

// Role is a user role. Roles form a total order: RoleUser < RoleAdmin.
type Role string

// User roles.
const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ErrUnknownRole is returned by ParseRole for strings that name no role.
var ErrUnknownRole = errors.New("unknown role")

// ValidRoles contains all valid user roles.
var ValidRoles = []Role{RoleUser, RoleAdmin}

// ParseRole parses a role from external input. Matching is
// case-insensitive; surrounding whitespace is ignored.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(RoleUser):
		return RoleUser, nil
	case string(RoleAdmin):
		return RoleAdmin, nil
	default:
		return "", ErrUnknownRole
	}
}

// Level returns the role's position in the role hierarchy.
// Unknown roles have level 0 and never satisfy a role requirement.
func (r Role) Level() int {
	switch r {
	case RoleAdmin:
		return 2
	case RoleUser:
		return 1
	default:
		return 0
	}
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r.Level() > 0
}

// AtLeast reports whether r satisfies a minimum role requirement.
// An unknown role satisfies nothing.
func (r Role) AtLeast(min Role) bool {
	return r.Valid() && r.Level() >= min.Level()
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}
