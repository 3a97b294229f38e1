/* store_interface.go
 * Contains the Store interface for dependency injection and testing
 * Authors: Zachary Bower
 */

package store

import (
	"context"
	"time"
)

// Interface defines the methods that Store implements.
// This allows for mocking in tests.
type Interface interface {
	// Teams
	GetTeam(teamID string) (Team, error)
	UpsertTeamProvision(teamID string, prov TeamProvision, now time.Time) (bool, error)
	UpdateTeamAssignment(teamID, matchID, matchName, groupID, groupName string, now time.Time) error

	// Matches and groups
	GetMatch(matchID string) (Match, error)
	GetGroup(groupID string) (Group, error)
	UpsertMatch(match Match) error
	DeleteMatch(matchID string) error
	UpsertGroup(group Group) error
	DeleteGroup(groupID string) error

	// Locations
	GetLocation(locationID string) (Location, error)
	ListLocations() ([]Location, error)
	UpsertLocation(loc Location) error
	DeleteLocation(locationID string) error

	// Claims
	RunClaimTransaction(ctx context.Context, teamID, locationID, processedBy string, decide ClaimDecideFunc) (ClaimApply, error)
	ListClaims(teamID string) ([]ClaimRecord, error)

	// Settings
	GetSettings() (Settings, error)
	SetFreezeOverride(frozen bool) error
	UpdateEventWindow(eventStart, freezeAt, eventEnd *time.Time) error

	// Leaderboard
	LoadSnapshot() (Snapshot, error)
	FetchLeaderboard() (Leaderboard, error)
	StoreLeaderboard(lb Leaderboard) error

	// Getter methods for accessing fields
	GetClient() interface{ Disconnect(context.Context) error }
}

// Ensure Store implements Interface
var _ Interface = (*Store)(nil)

// GetClient returns the MongoDB client
func (s *Store) GetClient() interface{ Disconnect(context.Context) error } {
	return s.Client
}
