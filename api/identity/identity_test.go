/* identity_test.go
 * Contains unit tests for identity.go
 * AI-Generated
 */

package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"qrhunt/api/shared"
)

func userDoc(uid, email, role string) bson.D {
	doc := bson.D{
		{Key: "_id", Value: uid},
		{Key: "email", Value: email},
	}
	if role != "" {
		doc = append(doc, bson.E{Key: "claims", Value: bson.D{{Key: "role", Value: role}}})
	}
	return doc
}

// region Resolve tests

func TestResolveByUID_Success(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("finds user and reads role claim", func(mt *mtest.T) {
		dir := &Directory{Users: mt.Coll}
		mt.AddMockResponses(mtest.CreateCursorResponse(1, "test.users", mtest.FirstBatch,
			userDoc("uid-1", "leader@example.com", "leader")))

		p, err := dir.ResolveByUID("uid-1")
		require.NoError(t, err)
		assert.Equal(t, "uid-1", p.UID)
		assert.Equal(t, "leader@example.com", p.Email)
		assert.Equal(t, shared.RoleLeader, p.Role())
	})
}

func TestResolveByUID_NotFound(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("returns user-not-found", func(mt *mtest.T) {
		dir := &Directory{Users: mt.Coll}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.users", mtest.FirstBatch))

		_, err := dir.ResolveByUID("uid-gone")
		require.Error(t, err)
		assert.Equal(t, shared.CodeUserNotFound, shared.CodeOf(err))
	})
}

func TestResolveByEmail_Success(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("finds user without role claim", func(mt *mtest.T) {
		dir := &Directory{Users: mt.Coll}
		mt.AddMockResponses(mtest.CreateCursorResponse(1, "test.users", mtest.FirstBatch,
			userDoc("uid-2", "someone@example.com", "")))

		p, err := dir.ResolveByEmail("someone@example.com")
		require.NoError(t, err)
		assert.Equal(t, "uid-2", p.UID)
		assert.Equal(t, shared.RoleNone, p.Role())
	})
}

// endregion

// region SetRoleClaim tests

func TestSetRoleClaim_Set(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("sets the role claim", func(mt *mtest.T) {
		dir := &Directory{Users: mt.Coll}
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}))

		assert.NoError(t, dir.SetRoleClaim("uid-1", shared.RoleAdmin))
	})
}

func TestSetRoleClaim_Clear(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("clears the role claim for RoleNone", func(mt *mtest.T) {
		dir := &Directory{Users: mt.Coll}
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}))

		assert.NoError(t, dir.SetRoleClaim("uid-1", shared.RoleNone))
	})
}

func TestSetRoleClaim_UserMissing(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("returns user-not-found when nothing matched", func(mt *mtest.T) {
		dir := &Directory{Users: mt.Coll}
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}))

		err := dir.SetRoleClaim("uid-gone", shared.RoleLeader)
		require.Error(t, err)
		assert.Equal(t, shared.CodeUserNotFound, shared.CodeOf(err))
	})
}

// endregion
