/* test_helpers.go
 * Contains test helper functions and sample data builders for store package tests
 * Authors: Zachary Bower
 */

package store

import (
	"time"
)

// SampleMatch returns a match document for testing
func SampleMatch() Match {
	return Match{ID: "match-1", Name: "City Match", Order: 1, IsActive: true}
}

// SampleGroup returns a group owned by SampleMatch for testing
func SampleGroup() Group {
	start := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	return Group{
		ID:       "group-1",
		MatchID:  "match-1",
		Name:     "Morning Wave",
		Order:    1,
		StartAt:  &start,
		IsActive: true,
	}
}

// SampleLocation returns a location document for testing
func SampleLocation() Location {
	return Location{
		ID:         "loc-1",
		MatchID:    "match-1",
		Title:      "Old Mill",
		Difficulty: 2,
		BasePoints: 100,
		BoxKeyword: "lantern",
		IsActive:   true,
	}
}

// SampleTeam returns a team document with an empty solved ledger for testing
func SampleTeam() Team {
	now := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	return Team{
		ID:          "team-1",
		Name:        "Torchbearers",
		LeaderEmail: "leader@example.com",
		TeamTag:     "TAG-1",
		MatchID:     "match-1",
		MatchName:   "City Match",
		GroupID:     "group-1",
		GroupName:   "Morning Wave",
		Solved:      map[string]SolvedEntry{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// SampleProvision returns provisioning fields matching SampleTeam
func SampleProvision() TeamProvision {
	return TeamProvision{
		Name:        "Torchbearers",
		TeamTag:     "TAG-1",
		LeaderEmail: "leader@example.com",
		MatchID:     "match-1",
		MatchName:   "City Match",
		GroupID:     "group-1",
		GroupName:   "Morning Wave",
	}
}
