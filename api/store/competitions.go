/* competitions.go
 * Contains the methods for interacting with the matches and groups collections
 * Authors: Zachary Bower
 */

package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"qrhunt/api/shared"
)

// GetMatch does a DB lookup for one match
// Preconditions: Receives receiver pointer for Store and a match id
// Postconditions: Returns the Match, a coded not-found error if it does not
// exist, or another error if it occurs
func (s *Store) GetMatch(matchID string) (Match, error) {
	var match Match
	err := s.Collections.Matches.FindOne(context.TODO(), bson.M{"_id": matchID}).Decode(&match)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Match{}, shared.NewError(shared.CodeNotFound, "match %q does not exist", matchID)
		}
		return Match{}, fmt.Errorf("error fetching match from db: %w", err)
	}
	return match, nil
}

// GetGroup does a DB lookup for one group
// Preconditions: Receives receiver pointer for Store and a group id
// Postconditions: Returns the Group, a coded not-found error if it does not
// exist, or another error if it occurs
func (s *Store) GetGroup(groupID string) (Group, error) {
	var group Group
	err := s.Collections.Groups.FindOne(context.TODO(), bson.M{"_id": groupID}).Decode(&group)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Group{}, shared.NewError(shared.CodeNotFound, "group %q does not exist", groupID)
		}
		return Group{}, fmt.Errorf("error fetching group from db: %w", err)
	}
	return group, nil
}

// UpsertMatch creates or replaces a match document
// Preconditions: Receives receiver pointer for Store and the Match to store
// Postconditions: Match document matches the given value, or an error if it occurs
func (s *Store) UpsertMatch(match Match) error {
	if match.ID == "" || match.Name == "" {
		return shared.NewError(shared.CodeInvalidArgument, "match id and name are required")
	}

	opts := options.Replace().SetUpsert(true)
	_, err := s.Collections.Matches.ReplaceOne(context.TODO(), bson.M{"_id": match.ID}, match, opts)
	if err != nil {
		return fmt.Errorf("failed to upsert match: %w", err)
	}
	return nil
}

// DeleteMatch removes a match. Deletion is rejected while any group still
// references the match.
// Preconditions: Receives receiver pointer for Store and a match id
// Postconditions: Match document is removed, or a coded failed-precondition
// error if groups reference it, or a coded not-found error if it does not exist
func (s *Store) DeleteMatch(matchID string) error {
	count, err := s.Collections.Groups.CountDocuments(context.TODO(), bson.M{"match_id": matchID})
	if err != nil {
		return fmt.Errorf("failed to count groups for match: %w", err)
	}
	if count > 0 {
		return shared.NewError(shared.CodeFailedPrecondition, "match %q still has %d group(s)", matchID, count)
	}

	res, err := s.Collections.Matches.DeleteOne(context.TODO(), bson.M{"_id": matchID})
	if err != nil {
		return fmt.Errorf("failed to delete match: %w", err)
	}
	if res.DeletedCount == 0 {
		return shared.NewError(shared.CodeNotFound, "match %q does not exist", matchID)
	}
	return nil
}

// UpsertGroup creates or replaces a group document. The owning match must exist.
// Preconditions: Receives receiver pointer for Store and the Group to store
// Postconditions: Group document matches the given value, or a coded error if
// the group is invalid or its match does not exist
func (s *Store) UpsertGroup(group Group) error {
	if group.ID == "" || group.Name == "" || group.MatchID == "" {
		return shared.NewError(shared.CodeInvalidArgument, "group id, name and match id are required")
	}
	if _, err := s.GetMatch(group.MatchID); err != nil {
		if shared.IsCode(err, shared.CodeNotFound) {
			return shared.NewError(shared.CodeInvalidArgument, "group references unknown match %q", group.MatchID)
		}
		return err
	}

	opts := options.Replace().SetUpsert(true)
	_, err := s.Collections.Groups.ReplaceOne(context.TODO(), bson.M{"_id": group.ID}, group, opts)
	if err != nil {
		return fmt.Errorf("failed to upsert group: %w", err)
	}
	return nil
}

// DeleteGroup removes a group document
// Preconditions: Receives receiver pointer for Store and a group id
// Postconditions: Group document is removed, or a coded not-found error if it
// does not exist
func (s *Store) DeleteGroup(groupID string) error {
	res, err := s.Collections.Groups.DeleteOne(context.TODO(), bson.M{"_id": groupID})
	if err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}
	if res.DeletedCount == 0 {
		return shared.NewError(shared.CodeNotFound, "group %q does not exist", groupID)
	}
	return nil
}
