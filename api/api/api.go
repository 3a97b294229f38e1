/* api.go
 * This file contains the public methods for interacting with this package. For consistent
 * results, functions should only be called from this file, not the sub packages for store,
 * logic and identity. Every scoring or assignment mutation ends with a leaderboard refresh;
 * refresh failures after a committed mutation are logged, never surfaced to the caller.
 * Authors: Zachary Bower
 */

package api

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/lithammer/fuzzysearch/fuzzy"
	qrcode "github.com/skip2/go-qrcode"

	"qrhunt/api/identity"
	"qrhunt/api/logic"
	"qrhunt/api/shared"
	"qrhunt/api/store"
	"qrhunt/api/token"
)

const qrImageSize = 256

// API provides methods for interacting with the scavenger hunt data layer
type API struct {
	Store    store.Interface
	Identity identity.Oracle
	Tokens   *token.Codec
}

// NewAPI creates a new API instance with the provided configuration. An empty
// tokenSecret is tolerated at startup; operations that need the codec fail
// with a failed-precondition until one is configured.
func NewAPI(dbName string, mongoURI string, tokenSecret string) (*API, error) {
	if dbName == "" {
		return nil, fmt.Errorf("dbName is required")
	}

	s, err := store.NewStore(dbName, mongoURI)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}

	a := &API{
		Store:    s,
		Identity: identity.NewDirectory(s.Database),
	}
	if tokenSecret != "" {
		codec, err := token.NewCodec(tokenSecret)
		if err != nil {
			return nil, err
		}
		a.Tokens = codec
	}
	return a, nil
}

// ProcessClaim validates and scores one submission for the caller's team.
// The caller identity comes from the authenticated principal, never from the
// payload. All validation happens before any write; the score update, solved
// ledger entry and audit record commit atomically.
func (a *API) ProcessClaim(ctx context.Context, caller shared.User, tok, keyword, teamTag string) (ClaimResult, error) {
	if !caller.CanClaim() {
		return ClaimResult{}, shared.NewError(shared.CodePermissionDenied, "claims require the leader or admin role")
	}
	if tok == "" || keyword == "" || teamTag == "" {
		return ClaimResult{}, shared.NewError(shared.CodeInvalidArgument, "token, keyword and team tag are all required")
	}
	if a.Tokens == nil {
		return ClaimResult{}, shared.NewError(shared.CodeFailedPrecondition, "claim token secret is not configured")
	}

	claims, err := a.Tokens.Verify(tok, time.Now())
	if err != nil {
		return ClaimResult{}, err
	}

	apply, err := a.Store.RunClaimTransaction(ctx, caller.UID, claims.LocationID, string(caller.Role),
		func(team *store.Team, location *store.Location) (store.ClaimApply, error) {
			ws, err := logic.DecideClaim(logic.ClaimReadSet{
				Team:       team,
				Location:   location,
				LocationID: claims.LocationID,
				Keyword:    keyword,
				TeamTag:    teamTag,
				Now:        time.Now(),
			})
			if err != nil {
				return store.ClaimApply{}, err
			}
			return store.ClaimApply{Points: ws.Points, SolvedAt: ws.SolvedAt}, nil
		})
	if err != nil {
		return ClaimResult{}, err
	}

	// The score is already durable; the public view catches up asynchronously
	go a.refreshLogged("claim")

	return ClaimResult{
		LocationID:    claims.LocationID,
		PointsAwarded: apply.Points,
		ProcessedAt:   apply.SolvedAt,
	}, nil
}

// SetUserRole grants or revokes the leader/admin capability on a user and,
// for leader grants, provisions the user's team. Repeat calls update team
// metadata only and never reset score or solved history.
func (a *API) SetUserRole(in SetRoleInput) (SetRoleResult, error) {
	result, err := a.applyRoleChange(in)
	if err != nil {
		return SetRoleResult{}, err
	}
	a.refreshLogged("role change")
	return result, nil
}

// applyRoleChange performs one role assignment without triggering a refresh,
// so bulk import can batch its refresh at the end
func (a *API) applyRoleChange(in SetRoleInput) (SetRoleResult, error) {
	if !in.Role.Valid() {
		return SetRoleResult{}, shared.NewError(shared.CodeInvalidArgument, "role must be leader, admin or none")
	}

	var principal identity.Principal
	var err error
	switch {
	case in.UID != "":
		principal, err = a.Identity.ResolveByUID(in.UID)
	case in.Email != "":
		principal, err = a.Identity.ResolveByEmail(in.Email)
	default:
		return SetRoleResult{}, shared.NewError(shared.CodeInvalidArgument, "a target uid or email is required")
	}
	if err != nil {
		return SetRoleResult{}, err
	}

	teamUpdated := false
	if in.Role == shared.RoleLeader {
		if in.TeamName == "" || in.TeamTag == "" || in.MatchID == "" || in.GroupID == "" {
			return SetRoleResult{}, shared.NewError(shared.CodeInvalidArgument, "leader role requires team name, team tag, match id and group id")
		}
		match, group, err := a.validateMatchGroup(in.MatchID, in.GroupID)
		if err != nil {
			return SetRoleResult{}, err
		}

		prov := store.TeamProvision{
			Name:        in.TeamName,
			TeamTag:     in.TeamTag,
			LeaderEmail: principal.Email,
			MatchID:     match.ID,
			MatchName:   match.Name,
			GroupID:     group.ID,
			GroupName:   group.Name,
		}
		if _, err := a.Store.UpsertTeamProvision(principal.UID, prov, time.Now()); err != nil {
			return SetRoleResult{}, err
		}
		teamUpdated = true
	}

	if err := a.Identity.SetRoleClaim(principal.UID, in.Role); err != nil {
		return SetRoleResult{}, err
	}

	return SetRoleResult{
		UID:         principal.UID,
		Email:       principal.Email,
		Role:        in.Role,
		TeamUpdated: teamUpdated,
	}, nil
}

// BulkImportUsers processes rows independently: a failing row is recorded and
// skipped, never aborting the rest of the batch. Rows run sequentially and
// exactly one leaderboard refresh happens after the batch.
func (a *API) BulkImportUsers(rows []SetRoleInput) (ImportResult, error) {
	if len(rows) == 0 {
		return ImportResult{}, shared.NewError(shared.CodeInvalidArgument, "no rows to import")
	}

	result := ImportResult{Errors: []ImportRowError{}}
	for i, row := range rows {
		if _, err := a.applyRoleChange(row); err != nil {
			result.FailureCount++
			result.Errors = append(result.Errors, ImportRowError{
				Index:   i,
				Code:    shared.CodeOf(err),
				Message: err.Error(),
			})
			continue
		}
		result.SuccessCount++
	}

	a.refreshLogged("bulk import")
	return result, nil
}

// SetTeamGroup re-assigns an existing team to a different match/group
func (a *API) SetTeamGroup(teamID, matchID, groupID string) error {
	if teamID == "" || matchID == "" || groupID == "" {
		return shared.NewError(shared.CodeInvalidArgument, "team id, match id and group id are required")
	}
	if _, err := a.Store.GetTeam(teamID); err != nil {
		return err
	}
	match, group, err := a.validateMatchGroup(matchID, groupID)
	if err != nil {
		return err
	}

	if err := a.Store.UpdateTeamAssignment(teamID, match.ID, match.Name, group.ID, group.Name, time.Now()); err != nil {
		return err
	}
	a.refreshLogged("team re-assignment")
	return nil
}

// validateMatchGroup checks both referenced documents exist and agree
func (a *API) validateMatchGroup(matchID, groupID string) (store.Match, store.Group, error) {
	match, err := a.Store.GetMatch(matchID)
	if err != nil {
		if shared.IsCode(err, shared.CodeNotFound) {
			return store.Match{}, store.Group{}, shared.NewError(shared.CodeInvalidArgument, "match %q does not exist", matchID)
		}
		return store.Match{}, store.Group{}, err
	}
	group, err := a.Store.GetGroup(groupID)
	if err != nil {
		if shared.IsCode(err, shared.CodeNotFound) {
			return store.Match{}, store.Group{}, shared.NewError(shared.CodeInvalidArgument, "group %q does not exist", groupID)
		}
		return store.Match{}, store.Group{}, err
	}
	if group.MatchID != match.ID {
		return store.Match{}, store.Group{}, shared.NewError(shared.CodeInvalidArgument, "group %q does not belong to match %q", groupID, matchID)
	}
	return match, group, nil
}

// GenerateLocationQR issues a signed claim token for a location and renders
// it as a QR code PNG
func (a *API) GenerateLocationQR(locationID string, expiresAt time.Time) (QRResult, error) {
	if locationID == "" {
		return QRResult{}, shared.NewError(shared.CodeInvalidArgument, "location id is required")
	}
	if !expiresAt.After(time.Now()) {
		return QRResult{}, shared.NewError(shared.CodeInvalidArgument, "expiry must be in the future")
	}
	if a.Tokens == nil {
		return QRResult{}, shared.NewError(shared.CodeFailedPrecondition, "claim token secret is not configured")
	}

	if _, err := a.Store.GetLocation(locationID); err != nil {
		return QRResult{}, err
	}

	tok, nonce, err := a.Tokens.Issue(locationID, expiresAt)
	if err != nil {
		return QRResult{}, err
	}

	png, err := qrcode.Encode(tok, qrcode.Medium, qrImageSize)
	if err != nil {
		return QRResult{}, fmt.Errorf("failed to render qr code: %w", err)
	}

	return QRResult{
		Token:     tok,
		Nonce:     nonce,
		PNGBase64: base64.StdEncoding.EncodeToString(png),
	}, nil
}

// SearchLocations matches a query against location titles, best match first.
// Used by admins to find the right box before issuing a QR code.
func (a *API) SearchLocations(query string) ([]store.Location, error) {
	if strings.TrimSpace(query) == "" {
		return nil, shared.NewError(shared.CodeInvalidArgument, "search query is required")
	}

	locations, err := a.Store.ListLocations()
	if err != nil {
		return nil, err
	}

	// Lowercase both sides for better matching, keep a lookup back to the
	// original documents
	byTitle := make(map[string][]store.Location)
	var titles []string
	for _, loc := range locations {
		lower := strings.ToLower(loc.Title)
		byTitle[lower] = append(byTitle[lower], loc)
		titles = append(titles, lower)
	}

	ranks := fuzzy.RankFind(strings.ToLower(query), titles)
	sort.Sort(ranks)

	var matched []store.Location
	seen := make(map[string]bool)
	for _, r := range ranks {
		for _, loc := range byTitle[r.Target] {
			if !seen[loc.ID] {
				seen[loc.ID] = true
				matched = append(matched, loc)
			}
		}
	}
	return matched, nil
}

// ListTeamClaims returns a team's claim audit trail
func (a *API) ListTeamClaims(teamID string) ([]store.ClaimRecord, error) {
	if teamID == "" {
		return nil, shared.NewError(shared.CodeInvalidArgument, "team id is required")
	}
	if _, err := a.Store.GetTeam(teamID); err != nil {
		return nil, err
	}
	return a.Store.ListClaims(teamID)
}

// SetFreezeState flips the manual freeze override and refreshes the snapshot
// so the masked flag propagates immediately
func (a *API) SetFreezeState(frozen bool) error {
	if err := a.Store.SetFreezeOverride(frozen); err != nil {
		return err
	}
	a.refreshLogged("freeze toggle")
	return nil
}

// UpdateEventWindow replaces the event milestones and refreshes the snapshot
func (a *API) UpdateEventWindow(eventStart, freezeAt, eventEnd *time.Time) error {
	if eventStart != nil && eventEnd != nil && !eventEnd.After(*eventStart) {
		return shared.NewError(shared.CodeInvalidArgument, "event end must be after event start")
	}
	if err := a.Store.UpdateEventWindow(eventStart, freezeAt, eventEnd); err != nil {
		return err
	}
	a.refreshLogged("event window change")
	return nil
}

// RefreshLeaderboard recomputes the public snapshot from full current state
// and wholesale-replaces the stored document
func (a *API) RefreshLeaderboard() error {
	snap, err := a.Store.LoadSnapshot()
	if err != nil {
		return err
	}
	lb := logic.BuildLeaderboard(snap, time.Now())
	return a.Store.StoreLeaderboard(lb)
}

// GetLeaderboard returns the public snapshot, computing the first one on
// demand if nothing has been published yet
func (a *API) GetLeaderboard() (store.Leaderboard, error) {
	lb, err := a.Store.FetchLeaderboard()
	if err == nil {
		return lb, nil
	}
	if !shared.IsCode(err, shared.CodeNotFound) {
		return store.Leaderboard{}, err
	}

	if err := a.RefreshLeaderboard(); err != nil {
		return store.Leaderboard{}, err
	}
	return a.Store.FetchLeaderboard()
}

// EventPhase evaluates the current event phase from fresh settings
func (a *API) EventPhase() (logic.PhaseInfo, error) {
	settings, err := a.Store.GetSettings()
	if err != nil {
		return logic.PhaseInfo{}, err
	}
	return logic.EvaluatePhase(settings, time.Now()), nil
}

// Admin CRUD passthroughs. Each structural change refreshes the snapshot so
// the public view never references stale matches, groups or locations.

func (a *API) UpsertMatch(match store.Match) error {
	if err := a.Store.UpsertMatch(match); err != nil {
		return err
	}
	a.refreshLogged("match upsert")
	return nil
}

func (a *API) DeleteMatch(matchID string) error {
	if err := a.Store.DeleteMatch(matchID); err != nil {
		return err
	}
	a.refreshLogged("match delete")
	return nil
}

func (a *API) UpsertGroup(group store.Group) error {
	if err := a.Store.UpsertGroup(group); err != nil {
		return err
	}
	a.refreshLogged("group upsert")
	return nil
}

func (a *API) DeleteGroup(groupID string) error {
	if err := a.Store.DeleteGroup(groupID); err != nil {
		return err
	}
	a.refreshLogged("group delete")
	return nil
}

func (a *API) UpsertLocation(loc store.Location) error {
	if err := a.Store.UpsertLocation(loc); err != nil {
		return err
	}
	a.refreshLogged("location upsert")
	return nil
}

func (a *API) DeleteLocation(locationID string) error {
	if err := a.Store.DeleteLocation(locationID); err != nil {
		return err
	}
	a.refreshLogged("location delete")
	return nil
}

// refreshLogged refreshes the leaderboard and logs failures instead of
// returning them: the triggering mutation already committed
func (a *API) refreshLogged(reason string) {
	if err := a.RefreshLeaderboard(); err != nil {
		log.Printf("leaderboard refresh after %s failed: %v", reason, err)
	}
}
