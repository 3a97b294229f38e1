/* identity.go
 * Contains the identity/claims oracle: principal lookup by uid or email and the
 * role claim read/write. Only the "role" claim belongs to this system; any other
 * claims on a principal are preserved untouched.
 * Authors: Zachary Bower
 */

package identity

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"qrhunt/api/shared"
)

// Principal is one user identity as the oracle sees it
type Principal struct {
	UID    string            `bson:"_id"`
	Email  string            `bson:"email"`
	Claims map[string]string `bson:"claims,omitempty"`
}

// Role returns the principal's role claim, RoleNone when absent
func (p Principal) Role() shared.Role {
	return shared.Role(p.Claims["role"])
}

// Oracle defines the identity operations the rest of the system consumes.
// This allows for mocking in tests.
type Oracle interface {
	ResolveByUID(uid string) (Principal, error)
	ResolveByEmail(email string) (Principal, error)
	SetRoleClaim(uid string, role shared.Role) error
}

// Directory is the Oracle implementation backed by the users collection
type Directory struct {
	Users *mongo.Collection
}

// Ensure Directory implements Oracle
var _ Oracle = (*Directory)(nil)

// NewDirectory creates a Directory over the given database
func NewDirectory(db *mongo.Database) *Directory {
	return &Directory{Users: db.Collection("users")}
}

// ResolveByUID looks a principal up by uid
// Preconditions: Receives receiver pointer for Directory and a uid
// Postconditions: Returns the Principal, a coded user-not-found error if no
// such user exists, or another error if it occurs
func (d *Directory) ResolveByUID(uid string) (Principal, error) {
	var p Principal
	err := d.Users.FindOne(context.TODO(), bson.M{"_id": uid}).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Principal{}, shared.NewError(shared.CodeUserNotFound, "no user with uid %q", uid)
		}
		return Principal{}, fmt.Errorf("error fetching user from db: %w", err)
	}
	return p, nil
}

// ResolveByEmail looks a principal up by email
// Preconditions: Receives receiver pointer for Directory and an email address
// Postconditions: Returns the Principal, a coded user-not-found error if no
// such user exists, or another error if it occurs
func (d *Directory) ResolveByEmail(email string) (Principal, error) {
	var p Principal
	err := d.Users.FindOne(context.TODO(), bson.M{"email": email}).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Principal{}, shared.NewError(shared.CodeUserNotFound, "no user with email %q", email)
		}
		return Principal{}, fmt.Errorf("error fetching user from db: %w", err)
	}
	return p, nil
}

// SetRoleClaim writes or clears the role claim on a principal. Other claims
// are not touched.
// Preconditions: Receives receiver pointer for Directory, a uid and the role;
// RoleNone removes the claim entirely
// Postconditions: The principal's role claim matches the given role, or a
// coded user-not-found error if the principal does not exist
func (d *Directory) SetRoleClaim(uid string, role shared.Role) error {
	var update bson.M
	if role == shared.RoleNone {
		update = bson.M{"$unset": bson.M{"claims.role": ""}}
	} else {
		update = bson.M{"$set": bson.M{"claims.role": string(role)}}
	}

	res, err := d.Users.UpdateOne(context.TODO(), bson.M{"_id": uid}, update)
	if err != nil {
		return fmt.Errorf("failed to update role claim: %w", err)
	}
	if res.MatchedCount == 0 {
		return shared.NewError(shared.CodeUserNotFound, "no user with uid %q", uid)
	}
	return nil
}
