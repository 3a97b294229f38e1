/* locations.go
 * Contains the methods for interacting with the locations collection
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

// GetLocation does a DB lookup for one location
// Preconditions: Receives receiver pointer for Store and a location id
// Postconditions: Returns the Location, a coded not-found error if it does
// not exist, or another error if it occurs
func (s *Store) GetLocation(locationID string) (Location, error) {
	var loc Location
	err := s.Collections.Locations.FindOne(context.TODO(), bson.M{"_id": locationID}).Decode(&loc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Location{}, shared.NewError(shared.CodeNotFound, "location %q does not exist", locationID)
		}
		return Location{}, fmt.Errorf("error fetching location from db: %w", err)
	}
	return loc, nil
}

// ListLocations returns every location document
// Preconditions: Receives receiver pointer for Store
// Postconditions: Returns slice of Locations, or an error if it occurs
func (s *Store) ListLocations() ([]Location, error) {
	var locations []Location
	if err := findAll(s.Collections.Locations, &locations); err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}
	return locations, nil
}

// UpsertLocation creates or replaces a location document. Non-positive
// difficulty or base points are rejected at write time; claim scoring still
// clamps defensively for documents that predate this check.
// Preconditions: Receives receiver pointer for Store and the Location to store
// Postconditions: Location document matches the given value, or a coded
// invalid-argument error if the location is misconfigured
func (s *Store) UpsertLocation(loc Location) error {
	if loc.ID == "" || loc.Title == "" || loc.BoxKeyword == "" {
		return shared.NewError(shared.CodeInvalidArgument, "location id, title and box keyword are required")
	}
	if loc.Difficulty <= 0 {
		return shared.NewError(shared.CodeInvalidArgument, "location difficulty must be positive, got %v", loc.Difficulty)
	}
	if loc.BasePoints <= 0 {
		return shared.NewError(shared.CodeInvalidArgument, "location base points must be positive, got %v", loc.BasePoints)
	}

	opts := options.Replace().SetUpsert(true)
	_, err := s.Collections.Locations.ReplaceOne(context.TODO(), bson.M{"_id": loc.ID}, loc, opts)
	if err != nil {
		return fmt.Errorf("failed to upsert location: %w", err)
	}
	return nil
}

// DeleteLocation removes a location document. Solved ledger entries pointing
// at it are kept; aggregation attributes them to the unassigned bucket.
// Preconditions: Receives receiver pointer for Store and a location id
// Postconditions: Location document is removed, or a coded not-found error if
// it does not exist
func (s *Store) DeleteLocation(locationID string) error {
	res, err := s.Collections.Locations.DeleteOne(context.TODO(), bson.M{"_id": locationID})
	if err != nil {
		return fmt.Errorf("failed to delete location: %w", err)
	}
	if res.DeletedCount == 0 {
		return shared.NewError(shared.CodeNotFound, "location %q does not exist", locationID)
	}
	return nil
}
