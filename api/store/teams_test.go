/* teams_test.go
 * Contains unit tests for teams.go
 * AI-Generated
 */

package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"qrhunt/api/shared"
)

// mockedStore builds a Store whose collections all point at the mocked
// collection, so responses are consumed in the order tests queue them
func mockedStore(mt *mtest.T) *Store {
	s := &Store{Client: mt.Client, Database: mt.DB}
	s.Collections.Matches = mt.Coll
	s.Collections.Groups = mt.Coll
	s.Collections.Locations = mt.Coll
	s.Collections.Teams = mt.Coll
	s.Collections.Claims = mt.Coll
	s.Collections.Settings = mt.Coll
	s.Collections.Leaderboard = mt.Coll
	return s
}

func teamDoc(team Team) bson.D {
	return bson.D{
		{Key: "_id", Value: team.ID},
		{Key: "name", Value: team.Name},
		{Key: "leader_email", Value: team.LeaderEmail},
		{Key: "team_tag", Value: team.TeamTag},
		{Key: "score", Value: team.Score},
		{Key: "match_id", Value: team.MatchID},
		{Key: "group_id", Value: team.GroupID},
	}
}

// region GetTeam tests

func TestGetTeam_Success(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("successfully fetches team", func(mt *mtest.T) {
		store := mockedStore(mt)
		sample := SampleTeam()
		mt.AddMockResponses(mtest.CreateCursorResponse(1, "test.teams", mtest.FirstBatch, teamDoc(sample)))

		team, err := store.GetTeam("team-1")
		require.NoError(t, err)
		assert.Equal(t, "team-1", team.ID)
		assert.Equal(t, "Torchbearers", team.Name)
		assert.Equal(t, "TAG-1", team.TeamTag)
	})
}

func TestGetTeam_NotFound(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("returns coded error when team missing", func(mt *mtest.T) {
		store := mockedStore(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.teams", mtest.FirstBatch))

		_, err := store.GetTeam("team-missing")
		require.Error(t, err)
		assert.Equal(t, shared.CodeNotFound, shared.CodeOf(err))
	})
}

// endregion

// region UpsertTeamProvision tests

func TestUpsertTeamProvision_CreatesNewTeam(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("inserts team on first provision", func(mt *mtest.T) {
		store := mockedStore(mt)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "test.teams", mtest.FirstBatch), // lookup misses
			mtest.CreateSuccessResponse(),                                 // insert ack
		)

		created, err := store.UpsertTeamProvision("team-1", SampleProvision(), time.Now())
		require.NoError(t, err)
		assert.True(t, created)
	})
}

func TestUpsertTeamProvision_UpdatesExistingTeam(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("updates metadata without insert", func(mt *mtest.T) {
		store := mockedStore(mt)
		mt.AddMockResponses(
			// cursor ID 0 so the FindOne cursor does not consume the update ack
			mtest.CreateCursorResponse(0, "test.teams", mtest.FirstBatch, teamDoc(SampleTeam())),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}),
		)

		created, err := store.UpsertTeamProvision("team-1", SampleProvision(), time.Now())
		require.NoError(t, err)
		assert.False(t, created)
	})
}

// endregion

// region UpdateTeamAssignment tests

func TestUpdateTeamAssignment_Success(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("moves team to new group", func(mt *mtest.T) {
		store := mockedStore(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}))

		err := store.UpdateTeamAssignment("team-1", "match-2", "Other Match", "group-2", "Evening Wave", time.Now())
		assert.NoError(t, err)
	})
}

func TestUpdateTeamAssignment_TeamMissing(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("returns not-found when nothing matched", func(mt *mtest.T) {
		store := mockedStore(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}))

		err := store.UpdateTeamAssignment("team-gone", "match-2", "Other Match", "group-2", "Evening Wave", time.Now())
		require.Error(t, err)
		assert.Equal(t, shared.CodeNotFound, shared.CodeOf(err))
	})
}

// endregion
