/* claims.go
 * Contains the claim transaction: the one operation in the system that needs strict
 * mutual exclusion. The team read, the scoring decision, the team update and the audit
 * record insert commit together or not at all. Two concurrent claims for the same
 * (team, location) are serialized by the server's write-conflict handling: the loser's
 * retry re-reads the updated solved ledger and the decision rejects it.
 * Authors: Zachary Bower
 */

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ClaimApply is the write set an accepted claim commits
type ClaimApply struct {
	Points   int
	SolvedAt time.Time
}

// ClaimDecideFunc decides one claim from the transaction's read snapshot.
// Either document pointer is nil when the document does not exist. A returned
// error aborts the transaction without writing anything.
type ClaimDecideFunc func(team *Team, location *Location) (ClaimApply, error)

// RunClaimTransaction reads the team and location as of one snapshot, runs the
// decision, and atomically applies the score increment, the solved ledger
// entry and the audit record.
// Preconditions: Receives a context, the claimant's team id, the location id,
// the caller's role for the audit record, and the decision function
// Postconditions: Returns the applied write set, or the decision's error, or a
// transaction error; on any error no write is applied
func (s *Store) RunClaimTransaction(ctx context.Context, teamID, locationID, processedBy string, decide ClaimDecideFunc) (ClaimApply, error) {
	session, err := s.Client.StartSession()
	if err != nil {
		return ClaimApply{}, fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	result, err := session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		var team *Team
		var t Team
		err := s.Collections.Teams.FindOne(sessCtx, bson.M{"_id": teamID}).Decode(&t)
		switch {
		case err == nil:
			team = &t
		case errors.Is(err, mongo.ErrNoDocuments):
			// decision handles the missing team
		default:
			return nil, fmt.Errorf("error fetching team in transaction: %w", err)
		}

		var location *Location
		var loc Location
		err = s.Collections.Locations.FindOne(sessCtx, bson.M{"_id": locationID}).Decode(&loc)
		switch {
		case err == nil:
			location = &loc
		case errors.Is(err, mongo.ErrNoDocuments):
			// decision handles the missing location
		default:
			return nil, fmt.Errorf("error fetching location in transaction: %w", err)
		}

		apply, err := decide(team, location)
		if err != nil {
			return nil, err
		}

		update := bson.M{
			"$inc": bson.M{"score": apply.Points},
			"$set": bson.M{
				"solved." + locationID: SolvedEntry{At: apply.SolvedAt, Points: apply.Points},
				"updated_at":           apply.SolvedAt,
			},
		}
		if _, err := s.Collections.Teams.UpdateOne(sessCtx, bson.M{"_id": teamID}, update); err != nil {
			return nil, fmt.Errorf("failed to apply claim to team: %w", err)
		}

		record := ClaimRecord{
			ID:          uuid.NewString(),
			TeamID:      teamID,
			LocationID:  locationID,
			Points:      apply.Points,
			ProcessedAt: apply.SolvedAt,
			ProcessedBy: processedBy,
		}
		if _, err := s.Collections.Claims.InsertOne(sessCtx, record); err != nil {
			return nil, fmt.Errorf("failed to insert claim record: %w", err)
		}

		return apply, nil
	})
	if err != nil {
		return ClaimApply{}, err
	}
	return result.(ClaimApply), nil
}

// ListClaims returns the audit records for one team, newest first
// Preconditions: Receives receiver pointer for Store and a team id
// Postconditions: Returns slice of ClaimRecords, or an error if it occurs
func (s *Store) ListClaims(teamID string) ([]ClaimRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "processed_at", Value: -1}})
	cursor, err := s.Collections.Claims.Find(context.TODO(), bson.M{"team_id": teamID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch claim records: %w", err)
	}
	var records []ClaimRecord
	if err := cursor.All(context.TODO(), &records); err != nil {
		return nil, fmt.Errorf("failed to decode claim records: %w", err)
	}
	return records, nil
}
