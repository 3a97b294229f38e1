/* models.go
 * This file contains the structs that map to DB documents. Every inbound document is
 * decoded into one of these explicit shapes at the boundary; nothing downstream reads
 * raw bson. Collections: matches, groups, locations, teams, claims, settings (singleton),
 * leaderboard (singleton).
 * Authors: Zachary Bower
 */

package store

import (
	"time"
)

// Match is the top level competition bracket. Deletion is blocked while any
// group still references it.
type Match struct {
	ID       string `bson:"_id" json:"id"`
	Name     string `bson:"name" json:"name"`
	Order    int    `bson:"order" json:"order"`
	IsActive bool   `bson:"is_active" json:"is_active"`
}

// Group defines a scoring window inside a match. StartAt is the elapsed-time
// baseline for its teams' rankings.
type Group struct {
	ID       string     `bson:"_id" json:"id"`
	MatchID  string     `bson:"match_id" json:"match_id"`
	Name     string     `bson:"name" json:"name"`
	Order    int        `bson:"order" json:"order"`
	StartAt  *time.Time `bson:"start_at,omitempty" json:"start_at,omitempty"`
	EndAt    *time.Time `bson:"end_at,omitempty" json:"end_at,omitempty"`
	IsActive bool       `bson:"is_active" json:"is_active"`
}

// Location represents one physical puzzle box. MatchID gates which teams may
// legitimately claim it; empty means the box is not bound to a match.
type Location struct {
	ID         string  `bson:"_id" json:"id"`
	MatchID    string  `bson:"match_id,omitempty" json:"match_id,omitempty"`
	Title      string  `bson:"title" json:"title"`
	Difficulty float64 `bson:"difficulty" json:"difficulty"`
	BasePoints float64 `bson:"base_points" json:"base_points"`
	BoxKeyword string  `bson:"box_keyword" json:"box_keyword"`
	IsActive   bool    `bson:"is_active" json:"is_active"`
}

// SolvedEntry records one accepted claim inside a team's solved ledger
type SolvedEntry struct {
	At     time.Time `bson:"at"`
	Points int       `bson:"points"`
}

// Team is keyed by the owning leader's uid. Solved is the append-only ledger
// of accepted claims; a location present in it is never scored again. Score is
// a denormalized monotonic counter kept in sync by the claim transaction.
type Team struct {
	ID          string                 `bson:"_id"`
	Name        string                 `bson:"name"`
	LeaderEmail string                 `bson:"leader_email"`
	TeamTag     string                 `bson:"team_tag"`
	Score       int                    `bson:"score"`
	MatchID     string                 `bson:"match_id,omitempty"`
	MatchName   string                 `bson:"match_name,omitempty"`
	GroupID     string                 `bson:"group_id,omitempty"`
	GroupName   string                 `bson:"group_name,omitempty"`
	Solved      map[string]SolvedEntry `bson:"solved,omitempty"`
	CreatedAt   time.Time              `bson:"created_at"`
	UpdatedAt   time.Time              `bson:"updated_at"`
}

// ClaimRecord is the immutable audit entry written alongside every accepted claim
type ClaimRecord struct {
	ID          string    `bson:"_id" json:"id"`
	TeamID      string    `bson:"team_id" json:"team_id"`
	LocationID  string    `bson:"location_id" json:"location_id"`
	Points      int       `bson:"points" json:"points"`
	ProcessedAt time.Time `bson:"processed_at" json:"processed_at"`
	ProcessedBy string    `bson:"processed_by" json:"processed_by"`
}

// Settings is the runtime settings singleton driving phase computation
type Settings struct {
	ID             string     `bson:"_id"`
	EventStart     *time.Time `bson:"event_start,omitempty"`
	FreezeAt       *time.Time `bson:"freeze_at,omitempty"`
	EventEnd       *time.Time `bson:"event_end,omitempty"`
	FreezeOverride bool       `bson:"freeze_override"`
}

// Snapshot is one consistent read of everything the aggregator needs
type Snapshot struct {
	Matches   []Match
	Groups    []Group
	Teams     []Team
	Locations []Location
	Settings  Settings
}

// LeaderboardEntry is one ranked team inside a group
type LeaderboardEntry struct {
	Rank           int        `bson:"rank" json:"rank"`
	TeamID         string     `bson:"team_id" json:"team_id"`
	TeamName       string     `bson:"team_name" json:"team_name"`
	Score          int        `bson:"score" json:"score"`
	SolvedCount    int        `bson:"solved_count" json:"solved_count"`
	LastSolveAt    *time.Time `bson:"last_solve_at,omitempty" json:"last_solve_at,omitempty"`
	ElapsedSeconds *int64     `bson:"elapsed_seconds,omitempty" json:"elapsed_seconds,omitempty"`
}

// LeaderboardGroup holds the ranked entries of one group. Fallback marks the
// synthetic unassigned bucket.
type LeaderboardGroup struct {
	ID       string             `bson:"id" json:"id"`
	Name     string             `bson:"name" json:"name"`
	Order    int                `bson:"order" json:"order"`
	Fallback bool               `bson:"fallback,omitempty" json:"fallback,omitempty"`
	Entries  []LeaderboardEntry `bson:"entries" json:"entries"`
}

// LeaderboardMatch holds one match's ordered groups
type LeaderboardMatch struct {
	ID       string             `bson:"id" json:"id"`
	Name     string             `bson:"name" json:"name"`
	Order    int                `bson:"order" json:"order"`
	Fallback bool               `bson:"fallback,omitempty" json:"fallback,omitempty"`
	Groups   []LeaderboardGroup `bson:"groups" json:"groups"`
}

// Leaderboard is the public snapshot singleton. It is regenerated wholesale
// after every scoring or assignment mutation, never patched in place.
type Leaderboard struct {
	ID               string             `bson:"_id" json:"-"`
	SchemaVersion    int                `bson:"schema_version" json:"schema_version"`
	Matches          []LeaderboardMatch `bson:"matches" json:"matches"`
	Masked           bool               `bson:"masked" json:"masked"`
	UnassignedNotice bool               `bson:"unassigned_notice" json:"unassigned_notice"`
	UpdatedAt        time.Time          `bson:"updated_at" json:"updated_at"`
}

// LeaderboardSchemaVersion is bumped whenever the snapshot shape changes
const LeaderboardSchemaVersion = 2

// Singleton document IDs
const (
	SettingsDocID    = "runtime"
	LeaderboardDocID = "public"
)
