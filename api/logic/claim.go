/* claim.go
 * Contains the claim decision: a pure function from the transaction's read snapshot to
 * either the writes to apply or a coded rejection. The store runs this inside the claim
 * transaction; tests run it directly.
 * Authors: Zachary Bower
 */

package logic

import (
	"math"
	"time"

	"qrhunt/api/shared"
	"qrhunt/api/store"
)

// ClaimReadSet is everything the claim transaction read before deciding
type ClaimReadSet struct {
	Team       *store.Team     // nil if the team document does not exist
	Location   *store.Location // nil if the location document does not exist
	LocationID string
	Keyword    string
	TeamTag    string
	Now        time.Time
}

// ClaimWriteSet is the writes an accepted claim applies atomically
type ClaimWriteSet struct {
	Points   int
	SolvedAt time.Time
}

// DecideClaim validates one submission against the read snapshot.
// Every rejection happens before any write. The check order matters: match
// and secret checks run before location state and the solved ledger.
func DecideClaim(rs ClaimReadSet) (ClaimWriteSet, error) {
	if rs.Team == nil {
		return ClaimWriteSet{}, shared.NewError(shared.CodeFailedPrecondition, "no team is registered for this account")
	}
	if rs.Location == nil {
		return ClaimWriteSet{}, shared.NewError(shared.CodeNotFound, "location %q does not exist", rs.LocationID)
	}

	if rs.Team.MatchID != "" && rs.Location.MatchID != "" && rs.Team.MatchID != rs.Location.MatchID {
		return ClaimWriteSet{}, shared.NewError(shared.CodePermissionDenied, "this location belongs to a different match")
	}

	if rs.TeamTag != rs.Team.TeamTag || rs.Keyword != rs.Location.BoxKeyword {
		return ClaimWriteSet{}, shared.NewError(shared.CodePermissionDenied, "keyword or team tag does not match")
	}

	if !rs.Location.IsActive {
		return ClaimWriteSet{}, shared.NewError(shared.CodeFailedPrecondition, "location %q is not active", rs.Location.ID)
	}

	if _, solved := rs.Team.Solved[rs.Location.ID]; solved {
		return ClaimWriteSet{}, shared.NewError(shared.CodeAlreadyExists, "location %q has already been solved by this team", rs.Location.ID)
	}

	points, err := ComputePoints(rs.Location.BasePoints, rs.Location.Difficulty)
	if err != nil {
		return ClaimWriteSet{}, err
	}

	return ClaimWriteSet{Points: points, SolvedAt: rs.Now}, nil
}

// ComputePoints derives the award for a location. Difficulty at or below zero
// is clamped to 1 so a misconfigured box still scores its base value; a
// non-positive or non-finite base is a server misconfiguration.
func ComputePoints(basePoints, difficulty float64) (int, error) {
	if math.IsNaN(basePoints) || math.IsInf(basePoints, 0) || basePoints <= 0 {
		return 0, shared.NewError(shared.CodeFailedPrecondition, "location base points %v is not a positive number", basePoints)
	}
	if difficulty <= 0 || math.IsNaN(difficulty) {
		difficulty = 1
	}
	points := int(math.Round(basePoints * difficulty))
	if points < 0 {
		points = 0
	}
	return points, nil
}
