/* models.go
 * Contains the input and result structs for the API facade operations
 * Authors: Zachary Bower
 */

package api

import (
	"time"

	"qrhunt/api/shared"
)

// ClaimResult is returned for an accepted claim
type ClaimResult struct {
	LocationID    string    `json:"location_id"`
	PointsAwarded int       `json:"points_awarded"`
	ProcessedAt   time.Time `json:"processed_at"`
}

// SetRoleInput identifies a target principal (by uid or email) and the role to
// apply. The team fields are required when the role is leader.
type SetRoleInput struct {
	UID      string      `json:"uid,omitempty"`
	Email    string      `json:"email,omitempty"`
	Role     shared.Role `json:"role"`
	TeamName string      `json:"team_name,omitempty"`
	TeamTag  string      `json:"team_tag,omitempty"`
	MatchID  string      `json:"match_id,omitempty"`
	GroupID  string      `json:"group_id,omitempty"`
}

// SetRoleResult reports the applied role change
type SetRoleResult struct {
	UID         string      `json:"uid"`
	Email       string      `json:"email"`
	Role        shared.Role `json:"role"`
	TeamUpdated bool        `json:"team_updated"`
}

// ImportRowError records why one bulk import row was skipped
type ImportRowError struct {
	Index   int         `json:"index"`
	Code    shared.Code `json:"code"`
	Message string      `json:"message"`
}

// ImportResult accumulates the outcome of a bulk user import
type ImportResult struct {
	SuccessCount int              `json:"success_count"`
	FailureCount int              `json:"failure_count"`
	Errors       []ImportRowError `json:"errors"`
}

// QRResult carries a freshly issued claim token and its rendered QR code
type QRResult struct {
	Token     string `json:"token"`
	Nonce     string `json:"nonce"`
	PNGBase64 string `json:"png_base64"`
}
