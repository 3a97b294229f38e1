/* models.go
 * This file contains the structs and constants that are shared between sub packages
 * Authors: Zachary Bower
 */

package shared

// Role is the capability claim carried on a user identity.
// An empty role means the user has no elevated capability.
type Role string

const (
	RoleNone   Role = ""
	RoleLeader Role = "leader"
	RoleAdmin  Role = "admin"
)

// Valid reports whether r is one of the assignable roles.
// RoleNone counts as valid because it is an assignment target (it clears the claim).
func (r Role) Valid() bool {
	return r == RoleNone || r == RoleLeader || r == RoleAdmin
}

// User identifies an authenticated principal making a request
type User struct {
	UID   string
	Email string
	Role  Role
}

// CanClaim reports whether the user's role permits submitting claims
func (u User) CanClaim() bool {
	return u.Role == RoleLeader || u.Role == RoleAdmin
}
