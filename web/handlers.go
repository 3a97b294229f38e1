/* handlers.go
 * Contains the HTTP handlers for the hunt API. Handlers decode JSON, call into the
 * api package and translate coded errors to HTTP statuses. Claim submissions pass
 * through a shared rate limiter before touching the database.
 * Authors: Zachary Bower
 */

package web

import (
	"encoding/json"
	"net/http"
	"time"

	"qrhunt/api/api"
	"qrhunt/api/shared"
	"qrhunt/api/store"
)

// routes binds handler methods that have access to s.api
func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/claim", s.requireAuth(s.ClaimHandler))

	mux.HandleFunc("POST /api/admin/users/role", s.requireAdmin(s.SetRoleHandler))
	mux.HandleFunc("POST /api/admin/users/import", s.requireAdmin(s.ImportHandler))
	mux.HandleFunc("POST /api/admin/teams/group", s.requireAdmin(s.TeamGroupHandler))
	mux.HandleFunc("GET /api/admin/teams/{id}/claims", s.requireAdmin(s.TeamClaimsHandler))
	mux.HandleFunc("POST /api/admin/locations/qr", s.requireAdmin(s.QRHandler))
	mux.HandleFunc("GET /api/admin/locations/search", s.requireAdmin(s.SearchHandler))
	mux.HandleFunc("POST /api/admin/freeze", s.requireAdmin(s.FreezeHandler))
	mux.HandleFunc("POST /api/admin/event-window", s.requireAdmin(s.EventWindowHandler))
	mux.HandleFunc("POST /api/admin/matches", s.requireAdmin(s.MatchHandler))
	mux.HandleFunc("DELETE /api/admin/matches/{id}", s.requireAdmin(s.DeleteMatchHandler))
	mux.HandleFunc("POST /api/admin/groups", s.requireAdmin(s.GroupHandler))
	mux.HandleFunc("DELETE /api/admin/groups/{id}", s.requireAdmin(s.DeleteGroupHandler))
	mux.HandleFunc("POST /api/admin/locations", s.requireAdmin(s.LocationHandler))
	mux.HandleFunc("DELETE /api/admin/locations/{id}", s.requireAdmin(s.DeleteLocationHandler))

	mux.HandleFunc("GET /api/leaderboard", s.requireAuth(s.LeaderboardHandler))
	mux.HandleFunc("GET /api/phase", s.PhaseHandler)
	mux.HandleFunc("GET /health", s.HealthHandler)

	return mux
}

type errorBody struct {
	Code    shared.Code `json:"code"`
	Message string      `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	code := shared.CodeConfigError
	switch status {
	case http.StatusBadRequest:
		code = shared.CodeInvalidArgument
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusTooManyRequests:
		code = shared.CodePermissionDenied
	case http.StatusNotFound:
		code = shared.CodeNotFound
	}
	writeJSON(w, status, errorBody{Code: code, Message: message})
}

// writeAPIError maps a coded error to an HTTP status and a public error body.
// Token codes collapse to the generic codes so the body never reveals which
// check a forged token failed.
func writeAPIError(w http.ResponseWriter, err error) {
	code := shared.CodeOf(err)

	status := http.StatusInternalServerError
	switch code {
	case shared.CodeInvalidArgument, shared.CodeMalformedToken:
		status = http.StatusBadRequest
	case shared.CodePermissionDenied, shared.CodeBadSignature, shared.CodeExpired:
		status = http.StatusForbidden
	case shared.CodeNotFound, shared.CodeUserNotFound:
		status = http.StatusNotFound
	case shared.CodeAlreadyExists:
		status = http.StatusConflict
	case shared.CodeFailedPrecondition:
		status = http.StatusPreconditionFailed
	}

	switch code {
	case shared.CodeMalformedToken:
		code = shared.CodeInvalidArgument
	case shared.CodeBadSignature, shared.CodeExpired:
		code = shared.CodePermissionDenied
	}

	writeJSON(w, status, errorBody{Code: code, Message: err.Error()})
}

// ClaimRequest is the request body for claim submissions
type ClaimRequest struct {
	Token   string `json:"token"`
	Keyword string `json:"keyword"`
	TeamTag string `json:"teamTag"`
}

// ClaimHandler scores one claim submission for the caller's team
func (s *Server) ClaimHandler(w http.ResponseWriter, req *http.Request, caller shared.User) {
	if !s.claimLimiter.Allow() {
		writeError(w, http.StatusTooManyRequests, "too many claim attempts, slow down")
		return
	}
	defer req.Body.Close()

	var body ClaimRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := s.api.ProcessClaim(req.Context(), caller, body.Token, body.Keyword, body.TeamTag)
	if err != nil {
		writeAPIError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// SetRoleHandler grants or revokes a role, provisioning the team for leaders
func (s *Server) SetRoleHandler(w http.ResponseWriter, req *http.Request, _ shared.User) {
	defer req.Body.Close()

	var body api.SetRoleInput
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := s.api.SetUserRole(body)
	if err != nil {
		writeAPIError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// ImportHandler runs a bulk role import, row failures reported per row
func (s *Server) ImportHandler(w http.ResponseWriter, req *http.Request, _ shared.User) {
	defer req.Body.Close()

	var rows []api.SetRoleInput
	if err := json.NewDecoder(req.Body).Decode(&rows); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := s.api.BulkImportUsers(rows)
	if err != nil {
		writeAPIError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// TeamGroupRequest is the request body for team re-assignment
type TeamGroupRequest struct {
	TeamID  string `json:"teamId"`
	MatchID string `json:"matchId"`
	GroupID string `json:"groupId"`
}

// TeamGroupHandler re-assigns a team to a different match and group
func (s *Server) TeamGroupHandler(w http.ResponseWriter, req *http.Request, _ shared.User) {
	defer req.Body.Close()

	var body TeamGroupRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.api.SetTeamGroup(body.TeamID, body.MatchID, body.GroupID); err != nil {
		writeAPIError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// TeamClaimsHandler returns a team's claim audit trail
func (s *Server) TeamClaimsHandler(w http.ResponseWriter, req *http.Request, _ shared.User) {
	records, err := s.api.ListTeamClaims(req.PathValue("id"))
	if err != nil {
		writeAPIError(w, err)
		return
	}
	if records == nil {
		records = []store.ClaimRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

// QRRequest is the request body for QR code generation
type QRRequest struct {
	LocationID string    `json:"locationId"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

// QRHandler issues a signed claim token for a location as a QR code PNG
func (s *Server) QRHandler(w http.ResponseWriter, req *http.Request, _ shared.User) {
	defer req.Body.Close()

	var body QRRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := s.api.GenerateLocationQR(body.LocationID, body.ExpiresAt)
	if err != nil {
		writeAPIError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// SearchHandler fuzzy-matches location titles for admins
func (s *Server) SearchHandler(w http.ResponseWriter, req *http.Request, _ shared.User) {
	matched, err := s.api.SearchLocations(req.URL.Query().Get("q"))
	if err != nil {
		writeAPIError(w, err)
		return
	}
	if matched == nil {
		matched = []store.Location{}
	}
	writeJSON(w, http.StatusOK, matched)
}

// FreezeRequest is the request body for the freeze override
type FreezeRequest struct {
	Frozen bool `json:"frozen"`
}

// FreezeHandler flips the manual leaderboard freeze override
func (s *Server) FreezeHandler(w http.ResponseWriter, req *http.Request, _ shared.User) {
	defer req.Body.Close()

	var body FreezeRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.api.SetFreezeState(body.Frozen); err != nil {
		writeAPIError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// EventWindowRequest is the request body for the event milestones
type EventWindowRequest struct {
	EventStart *time.Time `json:"eventStart"`
	FreezeAt   *time.Time `json:"freezeAt"`
	EventEnd   *time.Time `json:"eventEnd"`
}

// EventWindowHandler replaces the event milestones
func (s *Server) EventWindowHandler(w http.ResponseWriter, req *http.Request, _ shared.User) {
	defer req.Body.Close()

	var body EventWindowRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.api.UpdateEventWindow(body.EventStart, body.FreezeAt, body.EventEnd); err != nil {
		writeAPIError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// MatchHandler upserts a match document
func (s *Server) MatchHandler(w http.ResponseWriter, req *http.Request, _ shared.User) {
	defer req.Body.Close()

	var body store.Match
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil || body.ID == "" {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.api.UpsertMatch(body); err != nil {
		writeAPIError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// DeleteMatchHandler removes a match with no remaining groups
func (s *Server) DeleteMatchHandler(w http.ResponseWriter, req *http.Request, _ shared.User) {
	if err := s.api.DeleteMatch(req.PathValue("id")); err != nil {
		writeAPIError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// GroupHandler upserts a group document
func (s *Server) GroupHandler(w http.ResponseWriter, req *http.Request, _ shared.User) {
	defer req.Body.Close()

	var body store.Group
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil || body.ID == "" {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.api.UpsertGroup(body); err != nil {
		writeAPIError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// DeleteGroupHandler removes a group
func (s *Server) DeleteGroupHandler(w http.ResponseWriter, req *http.Request, _ shared.User) {
	if err := s.api.DeleteGroup(req.PathValue("id")); err != nil {
		writeAPIError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// LocationHandler upserts a location document
func (s *Server) LocationHandler(w http.ResponseWriter, req *http.Request, _ shared.User) {
	defer req.Body.Close()

	var body store.Location
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil || body.ID == "" {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.api.UpsertLocation(body); err != nil {
		writeAPIError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// DeleteLocationHandler removes a location
func (s *Server) DeleteLocationHandler(w http.ResponseWriter, req *http.Request, _ shared.User) {
	if err := s.api.DeleteLocation(req.PathValue("id")); err != nil {
		writeAPIError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// LeaderboardHandler returns the stored public snapshot for any
// authenticated caller
func (s *Server) LeaderboardHandler(w http.ResponseWriter, req *http.Request, _ shared.User) {
	lb, err := s.api.GetLeaderboard()
	if err != nil {
		writeAPIError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lb)
}

// PhaseHandler returns the current event phase, no auth required
func (s *Server) PhaseHandler(w http.ResponseWriter, req *http.Request) {
	info, err := s.api.EventPhase()
	if err != nil {
		writeAPIError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// HealthHandler reports liveness
func (s *Server) HealthHandler(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
