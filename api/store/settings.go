/* settings.go
 * Contains the methods for interacting with the runtime settings singleton
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
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GetSettings reads the runtime settings singleton. A missing document is not
// an error: it decodes to the zero value, meaning nothing is configured yet.
// Callers must read settings fresh on every evaluation, never cache them.
// Preconditions: Receives receiver pointer for Store
// Postconditions: Returns the Settings singleton or its zero value, or an
// error if it occurs
func (s *Store) GetSettings() (Settings, error) {
	var settings Settings
	err := s.Collections.Settings.FindOne(context.TODO(), bson.M{"_id": SettingsDocID}).Decode(&settings)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Settings{ID: SettingsDocID}, nil
		}
		return Settings{}, fmt.Errorf("error fetching settings from db: %w", err)
	}
	return settings, nil
}

// SetFreezeOverride flips the manual freeze flag on the settings singleton
// Preconditions: Receives receiver pointer for Store and the desired flag value
// Postconditions: Settings singleton exists with freeze_override set, or an
// error if it occurs
func (s *Store) SetFreezeOverride(frozen bool) error {
	opts := options.Update().SetUpsert(true)
	update := bson.M{"$set": bson.M{"freeze_override": frozen}}
	_, err := s.Collections.Settings.UpdateOne(context.TODO(), bson.M{"_id": SettingsDocID}, update, opts)
	if err != nil {
		return fmt.Errorf("failed to set freeze override: %w", err)
	}
	return nil
}

// UpdateEventWindow replaces the event milestones on the settings singleton.
// A nil timestamp clears that milestone.
// Preconditions: Receives receiver pointer for Store and the three milestones
// Postconditions: Settings singleton exists with the given milestones, or an
// error if it occurs
func (s *Store) UpdateEventWindow(eventStart, freezeAt, eventEnd *time.Time) error {
	opts := options.Update().SetUpsert(true)
	update := bson.M{"$set": bson.M{
		"event_start": eventStart,
		"freeze_at":   freezeAt,
		"event_end":   eventEnd,
	}}
	_, err := s.Collections.Settings.UpdateOne(context.TODO(), bson.M{"_id": SettingsDocID}, update, opts)
	if err != nil {
		return fmt.Errorf("failed to update event window: %w", err)
	}
	return nil
}
