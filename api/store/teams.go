/* teams.go
 * Contains the methods for interacting with the teams collection
 * Authors: Zachary Bower
 */

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"qrhunt/api/shared"
)

// TeamProvision holds the fields a leader-role grant writes onto a team document
type TeamProvision struct {
	Name        string
	TeamTag     string
	LeaderEmail string
	MatchID     string
	MatchName   string
	GroupID     string
	GroupName   string
}

// GetTeam does a DB lookup for the team owned by the given leader uid
// Preconditions: Receives receiver pointer for Store and a team id
// Postconditions: Returns the Team, a coded not-found error if no such team
// exists, or another error if it occurs
func (s *Store) GetTeam(teamID string) (Team, error) {
	var team Team
	err := s.Collections.Teams.FindOne(context.TODO(), bson.M{"_id": teamID}).Decode(&team)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Team{}, shared.NewError(shared.CodeNotFound, "team %q does not exist", teamID)
		}
		return Team{}, fmt.Errorf("error fetching team from db: %w", err)
	}
	return team, nil
}

// UpsertTeamProvision creates or updates the team document for a leader.
// The upsert is idempotent: a repeat call for the same leader updates metadata
// only and never resets the score or the solved ledger.
// Preconditions: Receives receiver pointer for Store, the owning leader's uid,
// the provision fields and the current time
// Postconditions: Team document exists with the given metadata; score and
// created_at are set only on first creation. Returns whether a new team was
// created, or an error if it occurs
func (s *Store) UpsertTeamProvision(teamID string, prov TeamProvision, now time.Time) (bool, error) {
	// Attempt to find an existing document
	var existing Team
	err := s.Collections.Teams.FindOne(context.TODO(), bson.M{"_id": teamID}).Decode(&existing)
	notFound := errors.Is(err, mongo.ErrNoDocuments)

	if err != nil && !notFound {
		return false, fmt.Errorf("lookup for existing team failed: %w", err)
	}

	meta := bson.M{
		"name":         prov.Name,
		"team_tag":     prov.TeamTag,
		"leader_email": prov.LeaderEmail,
		"match_id":     prov.MatchID,
		"match_name":   prov.MatchName,
		"group_id":     prov.GroupID,
		"group_name":   prov.GroupName,
		"updated_at":   now,
	}

	// The leader does not have a team yet so we create a new document
	if notFound {
		team := Team{
			ID:          teamID,
			Name:        prov.Name,
			TeamTag:     prov.TeamTag,
			LeaderEmail: prov.LeaderEmail,
			MatchID:     prov.MatchID,
			MatchName:   prov.MatchName,
			GroupID:     prov.GroupID,
			GroupName:   prov.GroupName,
			Score:       0,
			Solved:      map[string]SolvedEntry{},
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if _, err := s.Collections.Teams.InsertOne(context.TODO(), team); err != nil {
			return false, fmt.Errorf("failed to insert new team: %w", err)
		}
		return true, nil
	}

	// Else update the team's metadata
	_, err = s.Collections.Teams.UpdateOne(context.TODO(), bson.M{"_id": teamID}, bson.M{"$set": meta})
	if err != nil {
		return false, fmt.Errorf("failed to update existing team: %w", err)
	}
	return false, nil
}

// UpdateTeamAssignment moves an existing team to a different match/group
// Preconditions: Receives receiver pointer for Store, the team id and the
// validated match/group ids and display names
// Postconditions: Team document references the new match and group, or a
// coded not-found error if the team does not exist
func (s *Store) UpdateTeamAssignment(teamID, matchID, matchName, groupID, groupName string, now time.Time) error {
	update := bson.M{"$set": bson.M{
		"match_id":   matchID,
		"match_name": matchName,
		"group_id":   groupID,
		"group_name": groupName,
		"updated_at": now,
	}}

	res, err := s.Collections.Teams.UpdateOne(context.TODO(), bson.M{"_id": teamID}, update)
	if err != nil {
		return fmt.Errorf("failed to update team assignment: %w", err)
	}
	if res.MatchedCount == 0 {
		return shared.NewError(shared.CodeNotFound, "team %q does not exist", teamID)
	}
	return nil
}
