/* leaderboard.go
 * Contains the full leaderboard build: a deterministic function from one snapshot of
 * matches, groups, teams, locations and runtime settings to the ranked public document.
 * It is recomputed wholesale after every scoring or assignment mutation; there is no
 * incremental update path.
 * Authors: Zachary Bower
 */

package logic

import (
	"math"
	"sort"
	"time"

	"qrhunt/api/store"
)

// Fallback bucket identity used in the output document for teams and solves
// whose match or group reference cannot be resolved
const (
	FallbackMatchID    = "unassigned"
	FallbackGroupID    = "unassigned"
	FallbackBucketName = "Unassigned"
)

// matchStats accumulates one team's solves attributed to one match
type matchStats struct {
	points      int
	solvedCount int
	lastSolveAt *time.Time
}

// groupRef is a team's resolved target group. Fallback is an explicit variant
// rather than a sentinel string comparison at every call site.
type groupRef struct {
	group    store.Group
	fallback bool
}

// BuildLeaderboard computes the public snapshot from one consistent read of
// the competition state. Two runs over the same snapshot produce identical
// output, including tie ordering.
func BuildLeaderboard(snap store.Snapshot, now time.Time) store.Leaderboard {
	matchByID := make(map[string]store.Match, len(snap.Matches))
	for _, m := range snap.Matches {
		matchByID[m.ID] = m
	}

	// Groups referencing a missing match are orphaned: excluded from the
	// output, and their teams fall back to the unassigned bucket.
	groupByID := make(map[string]store.Group, len(snap.Groups))
	groupsByMatch := make(map[string][]store.Group)
	unassignedNotice := false
	for _, g := range snap.Groups {
		if _, ok := matchByID[g.MatchID]; !ok {
			unassignedNotice = true
			continue
		}
		groupByID[g.ID] = g
		groupsByMatch[g.MatchID] = append(groupsByMatch[g.MatchID], g)
	}

	// Each solved location's points are attributed to the match that owns the
	// location now, not at scoring time. Locations without a resolvable match
	// attribute to the fallback match.
	locationMatch := make(map[string]string, len(snap.Locations))
	for _, loc := range snap.Locations {
		if _, ok := matchByID[loc.MatchID]; loc.MatchID != "" && ok {
			locationMatch[loc.ID] = loc.MatchID
		} else {
			locationMatch[loc.ID] = FallbackMatchID
		}
	}

	entriesByGroup := make(map[string][]store.LeaderboardEntry)
	fallbackEntries := []store.LeaderboardEntry{}
	for _, team := range snap.Teams {
		stats, totals := partitionSolves(team, locationMatch)
		if _, ok := stats[FallbackMatchID]; ok {
			unassignedNotice = true
		}

		target, ok := resolveTargetGroup(team, groupByID, matchByID)
		if !ok {
			unassignedNotice = true
		}

		entry := buildEntry(team, target, stats, totals)
		if target.fallback {
			fallbackEntries = append(fallbackEntries, entry)
		} else {
			entriesByGroup[target.group.ID] = append(entriesByGroup[target.group.ID], entry)
		}
	}

	matches := assembleMatches(snap.Matches, groupsByMatch, entriesByGroup)
	if len(fallbackEntries) > 0 {
		rankEntries(fallbackEntries)
		matches = append(matches, store.LeaderboardMatch{
			ID:       FallbackMatchID,
			Name:     FallbackBucketName,
			Fallback: true,
			Groups: []store.LeaderboardGroup{{
				ID:       FallbackGroupID,
				Name:     FallbackBucketName,
				Fallback: true,
				Entries:  fallbackEntries,
			}},
		})
	}

	return store.Leaderboard{
		ID:               store.LeaderboardDocID,
		SchemaVersion:    store.LeaderboardSchemaVersion,
		Matches:          matches,
		Masked:           IsMasked(snap.Settings, now),
		UnassignedNotice: unassignedNotice,
		UpdatedAt:        now,
	}
}

// IsMasked reports whether the public leaderboard should be hidden by
// consumers. Masking is a transport flag only; standings are still computed
// and stored in full.
func IsMasked(settings store.Settings, now time.Time) bool {
	if settings.FreezeOverride {
		return true
	}
	if settings.FreezeAt == nil || settings.EventEnd == nil {
		return false
	}
	return !now.Before(*settings.FreezeAt) && now.Before(*settings.EventEnd)
}

// partitionSolves splits a team's solved ledger by the match owning each
// location, and also accumulates the overall totals across all solves
func partitionSolves(team store.Team, locationMatch map[string]string) (map[string]*matchStats, *matchStats) {
	stats := make(map[string]*matchStats)
	totals := &matchStats{}
	for locID, entry := range team.Solved {
		matchID, ok := locationMatch[locID]
		if !ok {
			// Solved location has since been deleted
			matchID = FallbackMatchID
		}
		s := stats[matchID]
		if s == nil {
			s = &matchStats{}
			stats[matchID] = s
		}
		s.add(entry)
		totals.add(entry)
	}
	return stats, totals
}

func (s *matchStats) add(entry store.SolvedEntry) {
	s.points += entry.Points
	s.solvedCount++
	at := entry.At
	if s.lastSolveAt == nil || at.After(*s.lastSolveAt) {
		s.lastSolveAt = &at
	}
}

// resolveTargetGroup finds the group a team is displayed under. A missing or
// unresolvable group lands the team in the fallback bucket; ok reports
// whether the team's own assignment resolved.
func resolveTargetGroup(team store.Team, groupByID map[string]store.Group, matchByID map[string]store.Match) (groupRef, bool) {
	if team.GroupID == "" {
		return groupRef{fallback: true}, false
	}
	g, ok := groupByID[team.GroupID]
	if !ok {
		return groupRef{fallback: true}, false
	}
	if _, ok := matchByID[g.MatchID]; !ok {
		return groupRef{fallback: true}, false
	}
	return groupRef{group: g}, true
}

// buildEntry computes a team's displayed figures for its target group: the
// stats of the group's owning match, falling back to the team's overall
// totals when nothing was recorded for that match
func buildEntry(team store.Team, target groupRef, stats map[string]*matchStats, totals *matchStats) store.LeaderboardEntry {
	owningMatch := FallbackMatchID
	if !target.fallback {
		owningMatch = target.group.MatchID
	}

	s := stats[owningMatch]
	if s == nil {
		s = totals
	}

	entry := store.LeaderboardEntry{
		TeamID:      team.ID,
		TeamName:    team.Name,
		Score:       s.points,
		SolvedCount: s.solvedCount,
		LastSolveAt: s.lastSolveAt,
	}

	if !target.fallback && target.group.StartAt != nil && s.lastSolveAt != nil {
		elapsed := int64(math.Round(s.lastSolveAt.Sub(*target.group.StartAt).Seconds()))
		if elapsed < 0 {
			elapsed = 0
		}
		entry.ElapsedSeconds = &elapsed
	}

	return entry
}

// assembleMatches orders groups within matches and matches overall, dropping
// matches that ended up with zero groups
func assembleMatches(matches []store.Match, groupsByMatch map[string][]store.Group, entriesByGroup map[string][]store.LeaderboardEntry) []store.LeaderboardMatch {
	sorted := make([]store.Match, len(matches))
	copy(sorted, matches)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Order != sorted[j].Order {
			return sorted[i].Order < sorted[j].Order
		}
		return sorted[i].ID < sorted[j].ID
	})

	out := []store.LeaderboardMatch{}
	for _, m := range sorted {
		groups := groupsByMatch[m.ID]
		if len(groups) == 0 {
			continue
		}
		sort.Slice(groups, func(i, j int) bool {
			if groups[i].Order != groups[j].Order {
				return groups[i].Order < groups[j].Order
			}
			return groups[i].ID < groups[j].ID
		})

		lm := store.LeaderboardMatch{ID: m.ID, Name: m.Name, Order: m.Order}
		for _, g := range groups {
			entries := entriesByGroup[g.ID]
			if entries == nil {
				entries = []store.LeaderboardEntry{}
			}
			rankEntries(entries)
			lm.Groups = append(lm.Groups, store.LeaderboardGroup{
				ID:      g.ID,
				Name:    g.Name,
				Order:   g.Order,
				Entries: entries,
			})
		}
		out = append(out, lm)
	}
	return out
}

// rankEntries sorts one group's entries into their final ranking and assigns
// ranks. The ordering is total: score desc, then elapsed time asc with
// non-null beating null, then earlier last solve with null last, then team
// name, then team id.
func rankEntries(entries []store.LeaderboardEntry) {
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.ElapsedSeconds != nil || b.ElapsedSeconds != nil {
			if a.ElapsedSeconds == nil {
				return false
			}
			if b.ElapsedSeconds == nil {
				return true
			}
			if *a.ElapsedSeconds != *b.ElapsedSeconds {
				return *a.ElapsedSeconds < *b.ElapsedSeconds
			}
		}
		if a.LastSolveAt != nil || b.LastSolveAt != nil {
			if a.LastSolveAt == nil {
				return false
			}
			if b.LastSolveAt == nil {
				return true
			}
			if !a.LastSolveAt.Equal(*b.LastSolveAt) {
				return a.LastSolveAt.Before(*b.LastSolveAt)
			}
		}
		if a.TeamName != b.TeamName {
			return a.TeamName < b.TeamName
		}
		return a.TeamID < b.TeamID
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
}
