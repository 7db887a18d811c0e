// Package identity resolves the signed-in user behind a browser session.
//
// Every view reads the current user through one Sessions value, which caches
// the session collaborator's answer per token and forgets it on logout.
package identity

import (
	"context"
	"errors"
	"slices"
)

// ErrUnauthenticated means the session collaborator reports no user.
var ErrUnauthenticated = errors.New("unauthenticated")

// Roles that may see instructor views.
var instructorRoles = []string{"teacher", "instructor", "admin"}

// User is the signed-in learner or instructor.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role"`
}

// IsInstructor reports whether the user may see struggle alerts.
func (u User) IsInstructor() bool {
	return slices.Contains(instructorRoles, u.Role)
}

// Provider looks up the user for a session token.
type Provider interface {
	CurrentUser(ctx context.Context, token string) (User, error)
}
