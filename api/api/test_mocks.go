/* test_mocks.go
 * Contains mock structures and interfaces for testing the API package
 * Authors: Zachary Bower
 */

package api

import (
	"context"
	"sort"
	"time"

	"qrhunt/api/identity"
	"qrhunt/api/shared"
	"qrhunt/api/store"
)

// MockStore implements the store.Interface for testing
type MockStore struct {
	// Storage for mock data
	Teams     map[string]store.Team
	Matches   map[string]store.Match
	Groups    map[string]store.Group
	Locations map[string]store.Location
	Claims    []store.ClaimRecord
	Settings  store.Settings
	Snapshot  *store.Leaderboard

	// Counters for asserting refresh behaviour
	StoreLeaderboardCalls int

	// Error injection for testing error paths
	LoadSnapshotError     error
	StoreLeaderboardError error
	UpsertTeamError       error
	SetFreezeError        error
}

// NewMockStore creates a new MockStore with a match, group, location and team
// wired together
func NewMockStore() *MockStore {
	return &MockStore{
		Teams:     map[string]store.Team{"team-1": sampleTeam()},
		Matches:   map[string]store.Match{"match-1": {ID: "match-1", Name: "City Match", Order: 1, IsActive: true}},
		Groups:    map[string]store.Group{"group-1": {ID: "group-1", MatchID: "match-1", Name: "Morning Wave", Order: 1, IsActive: true}},
		Locations: map[string]store.Location{"loc-1": sampleLocation()},
	}
}

func sampleTeam() store.Team {
	return store.Team{
		ID:      "team-1",
		Name:    "Torchbearers",
		TeamTag: "TAG-1",
		MatchID: "match-1",
		GroupID: "group-1",
		Solved:  map[string]store.SolvedEntry{},
	}
}

func sampleLocation() store.Location {
	return store.Location{
		ID:         "loc-1",
		MatchID:    "match-1",
		Title:      "Old Mill",
		Difficulty: 2,
		BasePoints: 100,
		BoxKeyword: "lantern",
		IsActive:   true,
	}
}

func (m *MockStore) GetTeam(teamID string) (store.Team, error) {
	team, ok := m.Teams[teamID]
	if !ok {
		return store.Team{}, shared.NewError(shared.CodeNotFound, "team %q does not exist", teamID)
	}
	return team, nil
}

func (m *MockStore) UpsertTeamProvision(teamID string, prov store.TeamProvision, now time.Time) (bool, error) {
	if m.UpsertTeamError != nil {
		return false, m.UpsertTeamError
	}
	existing, ok := m.Teams[teamID]
	if !ok {
		m.Teams[teamID] = store.Team{
			ID:          teamID,
			Name:        prov.Name,
			TeamTag:     prov.TeamTag,
			LeaderEmail: prov.LeaderEmail,
			MatchID:     prov.MatchID,
			MatchName:   prov.MatchName,
			GroupID:     prov.GroupID,
			GroupName:   prov.GroupName,
			Solved:      map[string]store.SolvedEntry{},
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		return true, nil
	}
	existing.Name = prov.Name
	existing.TeamTag = prov.TeamTag
	existing.LeaderEmail = prov.LeaderEmail
	existing.MatchID = prov.MatchID
	existing.MatchName = prov.MatchName
	existing.GroupID = prov.GroupID
	existing.GroupName = prov.GroupName
	existing.UpdatedAt = now
	m.Teams[teamID] = existing
	return false, nil
}

func (m *MockStore) UpdateTeamAssignment(teamID, matchID, matchName, groupID, groupName string, now time.Time) error {
	team, ok := m.Teams[teamID]
	if !ok {
		return shared.NewError(shared.CodeNotFound, "team %q does not exist", teamID)
	}
	team.MatchID = matchID
	team.MatchName = matchName
	team.GroupID = groupID
	team.GroupName = groupName
	team.UpdatedAt = now
	m.Teams[teamID] = team
	return nil
}

func (m *MockStore) GetMatch(matchID string) (store.Match, error) {
	match, ok := m.Matches[matchID]
	if !ok {
		return store.Match{}, shared.NewError(shared.CodeNotFound, "match %q does not exist", matchID)
	}
	return match, nil
}

func (m *MockStore) GetGroup(groupID string) (store.Group, error) {
	group, ok := m.Groups[groupID]
	if !ok {
		return store.Group{}, shared.NewError(shared.CodeNotFound, "group %q does not exist", groupID)
	}
	return group, nil
}

func (m *MockStore) UpsertMatch(match store.Match) error {
	m.Matches[match.ID] = match
	return nil
}

func (m *MockStore) DeleteMatch(matchID string) error {
	for _, g := range m.Groups {
		if g.MatchID == matchID {
			return shared.NewError(shared.CodeFailedPrecondition, "match %q still has groups", matchID)
		}
	}
	if _, ok := m.Matches[matchID]; !ok {
		return shared.NewError(shared.CodeNotFound, "match %q does not exist", matchID)
	}
	delete(m.Matches, matchID)
	return nil
}

func (m *MockStore) UpsertGroup(group store.Group) error {
	if _, ok := m.Matches[group.MatchID]; !ok {
		return shared.NewError(shared.CodeInvalidArgument, "group references unknown match %q", group.MatchID)
	}
	m.Groups[group.ID] = group
	return nil
}

func (m *MockStore) DeleteGroup(groupID string) error {
	if _, ok := m.Groups[groupID]; !ok {
		return shared.NewError(shared.CodeNotFound, "group %q does not exist", groupID)
	}
	delete(m.Groups, groupID)
	return nil
}

func (m *MockStore) GetLocation(locationID string) (store.Location, error) {
	loc, ok := m.Locations[locationID]
	if !ok {
		return store.Location{}, shared.NewError(shared.CodeNotFound, "location %q does not exist", locationID)
	}
	return loc, nil
}

func (m *MockStore) ListLocations() ([]store.Location, error) {
	var out []store.Location
	for _, loc := range m.Locations {
		out = append(out, loc)
	}
	return out, nil
}

func (m *MockStore) UpsertLocation(loc store.Location) error {
	if loc.Difficulty <= 0 || loc.BasePoints <= 0 {
		return shared.NewError(shared.CodeInvalidArgument, "location numbers must be positive")
	}
	m.Locations[loc.ID] = loc
	return nil
}

func (m *MockStore) DeleteLocation(locationID string) error {
	if _, ok := m.Locations[locationID]; !ok {
		return shared.NewError(shared.CodeNotFound, "location %q does not exist", locationID)
	}
	delete(m.Locations, locationID)
	return nil
}

// RunClaimTransaction mimics the real transaction against the in-memory maps:
// the decision sees the current team and location, and an accepted claim
// applies the same writes the store would
func (m *MockStore) RunClaimTransaction(ctx context.Context, teamID, locationID, processedBy string, decide store.ClaimDecideFunc) (store.ClaimApply, error) {
	var team *store.Team
	if t, ok := m.Teams[teamID]; ok {
		copied := t
		team = &copied
	}
	var location *store.Location
	if l, ok := m.Locations[locationID]; ok {
		copied := l
		location = &copied
	}

	apply, err := decide(team, location)
	if err != nil {
		return store.ClaimApply{}, err
	}

	updated := m.Teams[teamID]
	if updated.Solved == nil {
		updated.Solved = map[string]store.SolvedEntry{}
	}
	updated.Score += apply.Points
	updated.Solved[locationID] = store.SolvedEntry{At: apply.SolvedAt, Points: apply.Points}
	updated.UpdatedAt = apply.SolvedAt
	m.Teams[teamID] = updated

	m.Claims = append(m.Claims, store.ClaimRecord{
		TeamID:      teamID,
		LocationID:  locationID,
		Points:      apply.Points,
		ProcessedAt: apply.SolvedAt,
		ProcessedBy: processedBy,
	})
	return apply, nil
}

func (m *MockStore) ListClaims(teamID string) ([]store.ClaimRecord, error) {
	var out []store.ClaimRecord
	for _, rec := range m.Claims {
		if rec.TeamID == teamID {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProcessedAt.After(out[j].ProcessedAt) })
	return out, nil
}

func (m *MockStore) GetSettings() (store.Settings, error) {
	return m.Settings, nil
}

func (m *MockStore) SetFreezeOverride(frozen bool) error {
	if m.SetFreezeError != nil {
		return m.SetFreezeError
	}
	m.Settings.FreezeOverride = frozen
	return nil
}

func (m *MockStore) UpdateEventWindow(eventStart, freezeAt, eventEnd *time.Time) error {
	m.Settings.EventStart = eventStart
	m.Settings.FreezeAt = freezeAt
	m.Settings.EventEnd = eventEnd
	return nil
}

func (m *MockStore) LoadSnapshot() (store.Snapshot, error) {
	if m.LoadSnapshotError != nil {
		return store.Snapshot{}, m.LoadSnapshotError
	}
	var snap store.Snapshot
	for _, v := range m.Matches {
		snap.Matches = append(snap.Matches, v)
	}
	for _, v := range m.Groups {
		snap.Groups = append(snap.Groups, v)
	}
	for _, v := range m.Teams {
		snap.Teams = append(snap.Teams, v)
	}
	for _, v := range m.Locations {
		snap.Locations = append(snap.Locations, v)
	}
	snap.Settings = m.Settings
	return snap, nil
}

func (m *MockStore) FetchLeaderboard() (store.Leaderboard, error) {
	if m.Snapshot == nil {
		return store.Leaderboard{}, shared.NewError(shared.CodeNotFound, "no leaderboard snapshot has been published")
	}
	return *m.Snapshot, nil
}

func (m *MockStore) StoreLeaderboard(lb store.Leaderboard) error {
	m.StoreLeaderboardCalls++
	if m.StoreLeaderboardError != nil {
		return m.StoreLeaderboardError
	}
	m.Snapshot = &lb
	return nil
}

func (m *MockStore) GetClient() interface{ Disconnect(context.Context) error } {
	return noopClient{}
}

type noopClient struct{}

func (noopClient) Disconnect(context.Context) error { return nil }

// Ensure MockStore implements the store interface
var _ store.Interface = (*MockStore)(nil)

// MockOracle implements identity.Oracle for testing
type MockOracle struct {
	Users map[string]identity.Principal // keyed by uid

	// Error injection
	SetRoleClaimError error
}

// NewMockOracle creates a MockOracle with one admin and one plain user
func NewMockOracle() *MockOracle {
	return &MockOracle{
		Users: map[string]identity.Principal{
			"uid-admin":  {UID: "uid-admin", Email: "admin@example.com", Claims: map[string]string{"role": "admin"}},
			"uid-leader": {UID: "uid-leader", Email: "leader@example.com", Claims: map[string]string{}},
		},
	}
}

func (m *MockOracle) ResolveByUID(uid string) (identity.Principal, error) {
	p, ok := m.Users[uid]
	if !ok {
		return identity.Principal{}, shared.NewError(shared.CodeUserNotFound, "no user with uid %q", uid)
	}
	return p, nil
}

func (m *MockOracle) ResolveByEmail(email string) (identity.Principal, error) {
	for _, p := range m.Users {
		if p.Email == email {
			return p, nil
		}
	}
	return identity.Principal{}, shared.NewError(shared.CodeUserNotFound, "no user with email %q", email)
}

func (m *MockOracle) SetRoleClaim(uid string, role shared.Role) error {
	if m.SetRoleClaimError != nil {
		return m.SetRoleClaimError
	}
	p, ok := m.Users[uid]
	if !ok {
		return shared.NewError(shared.CodeUserNotFound, "no user with uid %q", uid)
	}
	if p.Claims == nil {
		p.Claims = map[string]string{}
	}
	if role == shared.RoleNone {
		delete(p.Claims, "role")
	} else {
		p.Claims["role"] = string(role)
	}
	m.Users[uid] = p
	return nil
}

// Ensure MockOracle implements the oracle interface
var _ identity.Oracle = (*MockOracle)(nil)
