/* leaderboard_test.go
 * Contains unit tests for leaderboard.go
 * AI-Generated
 */

package logic

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qrhunt/api/store"
)

var t0 = time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

// baseSnapshot builds one match with one group starting at t0, two locations
// and no teams. Tests add teams on top.
func baseSnapshot() store.Snapshot {
	return store.Snapshot{
		Matches: []store.Match{
			{ID: "match-1", Name: "City Match", Order: 1, IsActive: true},
		},
		Groups: []store.Group{
			{ID: "group-1", MatchID: "match-1", Name: "Morning Wave", Order: 1, StartAt: ts(t0), IsActive: true},
		},
		Locations: []store.Location{
			{ID: "loc-1", MatchID: "match-1", Title: "Old Mill", Difficulty: 1, BasePoints: 50, IsActive: true},
			{ID: "loc-2", MatchID: "match-1", Title: "Clock Tower", Difficulty: 2, BasePoints: 100, IsActive: true},
		},
	}
}

func team(id, name string, solved map[string]store.SolvedEntry) store.Team {
	return store.Team{
		ID:      id,
		Name:    name,
		MatchID: "match-1",
		GroupID: "group-1",
		Solved:  solved,
	}
}

// region BuildLeaderboard tests

func TestBuildLeaderboard_ElapsedAndScore(t *testing.T) {
	snap := baseSnapshot()
	snap.Teams = []store.Team{
		team("team-a", "Alpha", map[string]store.SolvedEntry{
			"loc-1": {At: t0.Add(90 * time.Second), Points: 50},
		}),
	}

	lb := BuildLeaderboard(snap, t0.Add(time.Hour))
	require.Len(t, lb.Matches, 1)
	require.Len(t, lb.Matches[0].Groups, 1)
	entries := lb.Matches[0].Groups[0].Entries
	require.Len(t, entries, 1)

	assert.Equal(t, 50, entries[0].Score)
	assert.Equal(t, 1, entries[0].SolvedCount)
	require.NotNil(t, entries[0].ElapsedSeconds)
	assert.Equal(t, int64(90), *entries[0].ElapsedSeconds)
	assert.Equal(t, 1, entries[0].Rank)
	assert.False(t, lb.UnassignedNotice)
}

func TestBuildLeaderboard_Ranking(t *testing.T) {
	snap := baseSnapshot()
	snap.Teams = []store.Team{
		// 200 points, slower
		team("team-a", "Alpha", map[string]store.SolvedEntry{
			"loc-2": {At: t0.Add(40 * time.Minute), Points: 200},
		}),
		// 200 points, faster: outranks Alpha on elapsed time
		team("team-b", "Bravo", map[string]store.SolvedEntry{
			"loc-2": {At: t0.Add(20 * time.Minute), Points: 200},
		}),
		// 250 points: top regardless of time
		team("team-c", "Charlie", map[string]store.SolvedEntry{
			"loc-1": {At: t0.Add(50 * time.Minute), Points: 50},
			"loc-2": {At: t0.Add(55 * time.Minute), Points: 200},
		}),
		// never solved anything: ranked last, no elapsed time
		team("team-d", "Delta", nil),
	}

	lb := BuildLeaderboard(snap, t0.Add(time.Hour))
	entries := lb.Matches[0].Groups[0].Entries
	require.Len(t, entries, 4)

	assert.Equal(t, []string{"Charlie", "Bravo", "Alpha", "Delta"}, names(entries))
	for i, e := range entries {
		assert.Equal(t, i+1, e.Rank)
	}
	assert.Nil(t, entries[3].ElapsedSeconds)
	assert.Nil(t, entries[3].LastSolveAt)
}

func TestBuildLeaderboard_NameTiebreak(t *testing.T) {
	snap := baseSnapshot()
	snap.Teams = []store.Team{
		team("team-b", "Bravo", nil),
		team("team-a", "Alpha", nil),
	}

	lb := BuildLeaderboard(snap, t0)
	assert.Equal(t, []string{"Alpha", "Bravo"}, names(lb.Matches[0].Groups[0].Entries))
}

func TestBuildLeaderboard_Deterministic(t *testing.T) {
	snap := baseSnapshot()
	snap.Teams = []store.Team{
		team("team-a", "Alpha", map[string]store.SolvedEntry{
			"loc-1": {At: t0.Add(10 * time.Minute), Points: 50},
			"loc-2": {At: t0.Add(30 * time.Minute), Points: 200},
		}),
		team("team-b", "Bravo", map[string]store.SolvedEntry{
			"loc-1": {At: t0.Add(5 * time.Minute), Points: 50},
		}),
	}
	now := t0.Add(time.Hour)

	first := BuildLeaderboard(snap, now)
	second := BuildLeaderboard(snap, now)
	assert.Equal(t, first, second)
}

func TestBuildLeaderboard_UnassignedTeam(t *testing.T) {
	snap := baseSnapshot()
	unassigned := team("team-x", "Wanderers", map[string]store.SolvedEntry{
		"loc-1": {At: t0.Add(time.Minute), Points: 50},
	})
	unassigned.MatchID = ""
	unassigned.GroupID = ""
	snap.Teams = []store.Team{unassigned}

	lb := BuildLeaderboard(snap, t0.Add(time.Hour))
	assert.True(t, lb.UnassignedNotice)

	require.Len(t, lb.Matches, 2)
	fallback := lb.Matches[1]
	assert.True(t, fallback.Fallback)
	assert.Equal(t, FallbackMatchID, fallback.ID)
	require.Len(t, fallback.Groups, 1)
	assert.True(t, fallback.Groups[0].Fallback)

	entries := fallback.Groups[0].Entries
	require.Len(t, entries, 1)
	assert.Equal(t, "Wanderers", entries[0].TeamName)
	// Overall totals are displayed because the solves attribute to a real match
	assert.Equal(t, 50, entries[0].Score)
	// No elapsed time in the fallback bucket: there is no startAt baseline
	assert.Nil(t, entries[0].ElapsedSeconds)
}

func TestBuildLeaderboard_DanglingGroupReference(t *testing.T) {
	snap := baseSnapshot()
	lost := team("team-x", "Lost", nil)
	lost.GroupID = "group-gone"
	snap.Teams = []store.Team{lost}

	lb := BuildLeaderboard(snap, t0)
	assert.True(t, lb.UnassignedNotice)
	require.Len(t, lb.Matches, 2)
	assert.True(t, lb.Matches[1].Fallback)
}

func TestBuildLeaderboard_OrphanedGroupExcluded(t *testing.T) {
	snap := baseSnapshot()
	snap.Groups = append(snap.Groups, store.Group{
		ID: "group-orphan", MatchID: "match-gone", Name: "Orphans", Order: 2,
	})
	orphan := team("team-o", "Orphaned", nil)
	orphan.GroupID = "group-orphan"
	snap.Teams = []store.Team{orphan}

	lb := BuildLeaderboard(snap, t0)
	assert.True(t, lb.UnassignedNotice)
	// The orphaned group never appears under match-1
	require.Len(t, lb.Matches, 2)
	assert.Equal(t, "match-1", lb.Matches[0].ID)
	require.Len(t, lb.Matches[0].Groups, 1)
	assert.Equal(t, "group-1", lb.Matches[0].Groups[0].ID)
	// Its team lands in the fallback bucket
	assert.True(t, lb.Matches[1].Fallback)
	assert.Equal(t, "Orphaned", lb.Matches[1].Groups[0].Entries[0].TeamName)
}

func TestBuildLeaderboard_MatchWithoutGroupsOmitted(t *testing.T) {
	snap := baseSnapshot()
	snap.Matches = append(snap.Matches, store.Match{ID: "match-empty", Name: "Empty", Order: 2})

	lb := BuildLeaderboard(snap, t0)
	require.Len(t, lb.Matches, 1)
	assert.Equal(t, "match-1", lb.Matches[0].ID)
}

func TestBuildLeaderboard_OrderedMatchesAndGroups(t *testing.T) {
	snap := store.Snapshot{
		Matches: []store.Match{
			{ID: "match-2", Name: "Second", Order: 2},
			{ID: "match-1", Name: "First", Order: 1},
		},
		Groups: []store.Group{
			{ID: "group-1b", MatchID: "match-1", Name: "B", Order: 2},
			{ID: "group-1a", MatchID: "match-1", Name: "A", Order: 1},
			{ID: "group-2a", MatchID: "match-2", Name: "C", Order: 1},
		},
	}

	lb := BuildLeaderboard(snap, t0)
	require.Len(t, lb.Matches, 2)
	assert.Equal(t, "match-1", lb.Matches[0].ID)
	assert.Equal(t, "match-2", lb.Matches[1].ID)
	assert.Equal(t, "group-1a", lb.Matches[0].Groups[0].ID)
	assert.Equal(t, "group-1b", lb.Matches[0].Groups[1].ID)
}

func TestBuildLeaderboard_CrossMatchAttribution(t *testing.T) {
	// A location re-assigned to another match re-attributes its historical
	// points to that match at aggregation time
	snap := baseSnapshot()
	snap.Matches = append(snap.Matches, store.Match{ID: "match-2", Name: "Other", Order: 2})
	snap.Groups = append(snap.Groups, store.Group{ID: "group-2", MatchID: "match-2", Name: "Evening", Order: 1})
	snap.Locations[1].MatchID = "match-2" // loc-2 moved after scoring

	snap.Teams = []store.Team{
		team("team-a", "Alpha", map[string]store.SolvedEntry{
			"loc-1": {At: t0.Add(10 * time.Minute), Points: 50},
			"loc-2": {At: t0.Add(20 * time.Minute), Points: 200},
		}),
	}

	lb := BuildLeaderboard(snap, t0.Add(time.Hour))
	entries := lb.Matches[0].Groups[0].Entries
	require.Len(t, entries, 1)
	// Only loc-1 still counts toward match-1's standings
	assert.Equal(t, 50, entries[0].Score)
	assert.Equal(t, 1, entries[0].SolvedCount)
}

func TestBuildLeaderboard_DeletedLocationFallsBack(t *testing.T) {
	snap := baseSnapshot()
	snap.Teams = []store.Team{
		team("team-a", "Alpha", map[string]store.SolvedEntry{
			"loc-gone": {At: t0.Add(10 * time.Minute), Points: 75},
		}),
	}

	lb := BuildLeaderboard(snap, t0.Add(time.Hour))
	assert.True(t, lb.UnassignedNotice)
	// Team keeps its group; displayed figures fall back to overall totals
	// because nothing attributes to match-1 anymore
	entries := lb.Matches[0].Groups[0].Entries
	require.Len(t, entries, 1)
	assert.Equal(t, 75, entries[0].Score)
}

// endregion

// region IsMasked tests

func TestIsMasked_FreezeOverride(t *testing.T) {
	assert.True(t, IsMasked(store.Settings{FreezeOverride: true}, t0))

	// Override wins regardless of any configured window
	settings := store.Settings{
		FreezeOverride: true,
		FreezeAt:       ts(t0.Add(time.Hour)),
		EventEnd:       ts(t0.Add(2 * time.Hour)),
	}
	assert.True(t, IsMasked(settings, t0))
}

func TestIsMasked_FreezeWindow(t *testing.T) {
	freeze := t0.Add(time.Hour)
	end := t0.Add(2 * time.Hour)
	settings := store.Settings{FreezeAt: ts(freeze), EventEnd: ts(end)}

	assert.False(t, IsMasked(settings, t0))
	assert.True(t, IsMasked(settings, freeze))
	assert.True(t, IsMasked(settings, freeze.Add(time.Minute)))
	assert.False(t, IsMasked(settings, end))
	assert.False(t, IsMasked(settings, end.Add(time.Minute)))
}

func TestIsMasked_IncompleteWindow(t *testing.T) {
	assert.False(t, IsMasked(store.Settings{}, t0))
	assert.False(t, IsMasked(store.Settings{FreezeAt: ts(t0.Add(-time.Hour))}, t0))
	assert.False(t, IsMasked(store.Settings{EventEnd: ts(t0.Add(time.Hour))}, t0))
}

// endregion

func names(entries []store.LeaderboardEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.TeamName
	}
	return out
}
