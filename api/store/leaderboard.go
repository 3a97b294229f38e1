/* leaderboard.go
 * Contains the methods for interacting with the public leaderboard singleton
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

// FetchLeaderboard returns the public leaderboard snapshot from the db
// Preconditions: Receives receiver pointer for Store
// Postconditions: Returns the Leaderboard, a coded not-found error if no
// snapshot has been published yet, or another error if it occurs
func (s *Store) FetchLeaderboard() (Leaderboard, error) {
	var lb Leaderboard
	err := s.Collections.Leaderboard.FindOne(context.TODO(), bson.M{"_id": LeaderboardDocID}).Decode(&lb)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Leaderboard{}, shared.NewError(shared.CodeNotFound, "no leaderboard snapshot has been published")
		}
		return Leaderboard{}, fmt.Errorf("failed to fetch leaderboard from database: %w", err)
	}
	return lb, nil
}

// StoreLeaderboard wholesale-replaces the public leaderboard snapshot.
// Concurrent refreshes race benignly: last writer wins and every candidate
// snapshot is a complete, consistent document.
// Preconditions: Receives receiver pointer for Store and the Leaderboard value to store
// Postconditions: The singleton snapshot equals the given value, or an error
// if it occurs
func (s *Store) StoreLeaderboard(lb Leaderboard) error {
	if lb.SchemaVersion == 0 {
		return fmt.Errorf("leaderboard snapshot is missing a schema version")
	}
	lb.ID = LeaderboardDocID

	opts := options.Replace().SetUpsert(true)
	_, err := s.Collections.Leaderboard.ReplaceOne(context.TODO(), bson.M{"_id": LeaderboardDocID}, lb, opts)
	if err != nil {
		return fmt.Errorf("failed to store leaderboard: %w", err)
	}
	return nil
}
