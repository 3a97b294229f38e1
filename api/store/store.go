/* store.go
 * Contains the store struct and NewStore function. The methods for this package were split
 * by collection: competitions.go (matches and groups), locations.go, teams.go, claims.go,
 * settings.go and leaderboard.go each contain the methods for that part of the database.
 * Authors: Zachary Bower
 */

package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	Client      *mongo.Client
	Database    *mongo.Database
	Collections struct {
		Matches     *mongo.Collection
		Groups      *mongo.Collection
		Locations   *mongo.Collection
		Teams       *mongo.Collection
		Claims      *mongo.Collection
		Settings    *mongo.Collection
		Leaderboard *mongo.Collection
	}
}

// Function for initialising Store. Sets up the db connection and collection handles
// Preconditions: Receives strings containing dbName and mongoURI
// Postconditions: Returns pointer to the Store object, or error if it occurs
func NewStore(dbName string, mongoURI string) (*Store, error) {
	if dbName == "" {
		return nil, fmt.Errorf("dbName cannot be empty")
	}

	client, err := mongo.Connect(context.TODO(), options.Client().ApplyURI(mongoURI))
	if err != nil {
		return nil, err
	}
	db := client.Database(dbName)

	s := &Store{
		Client:   client,
		Database: db,
	}
	s.Collections.Matches = db.Collection("matches")
	s.Collections.Groups = db.Collection("groups")
	s.Collections.Locations = db.Collection("locations")
	s.Collections.Teams = db.Collection("teams")
	s.Collections.Claims = db.Collection("claims")
	s.Collections.Settings = db.Collection("settings")
	s.Collections.Leaderboard = db.Collection("leaderboard")
	return s, nil
}

// LoadSnapshot reads everything the leaderboard build needs in one pass
// Preconditions: Receives receiver pointer for Store
// Postconditions: Returns a Snapshot of all matches, groups, teams, locations and
// settings, or an error if it occurs
func (s *Store) LoadSnapshot() (Snapshot, error) {
	var snap Snapshot

	if err := findAll(s.Collections.Matches, &snap.Matches); err != nil {
		return Snapshot{}, fmt.Errorf("failed to load matches: %w", err)
	}
	if err := findAll(s.Collections.Groups, &snap.Groups); err != nil {
		return Snapshot{}, fmt.Errorf("failed to load groups: %w", err)
	}
	if err := findAll(s.Collections.Teams, &snap.Teams); err != nil {
		return Snapshot{}, fmt.Errorf("failed to load teams: %w", err)
	}
	if err := findAll(s.Collections.Locations, &snap.Locations); err != nil {
		return Snapshot{}, fmt.Errorf("failed to load locations: %w", err)
	}

	settings, err := s.GetSettings()
	if err != nil {
		return Snapshot{}, err
	}
	snap.Settings = settings

	return snap, nil
}

// findAll decodes every document of a collection into out (a pointer to a slice)
func findAll(coll *mongo.Collection, out interface{}) error {
	cursor, err := coll.Find(context.TODO(), bson.M{})
	if err != nil {
		return err
	}
	return cursor.All(context.TODO(), out)
}
