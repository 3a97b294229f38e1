/* auth.go
 * Contains the bearer JWT verification for the web surface. Tokens are HS256 signed
 * with a server-held secret and carry the caller's email and role; the uid lives in
 * the registered subject claim. Role decisions always come from the token, never
 * from request payloads.
 * Authors: Zachary Bower
 */

package web

import (
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"qrhunt/api/shared"
)

// AuthClaims represents the JWT claims for an authenticated caller
type AuthClaims struct {
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Verifier validates bearer tokens for the web surface
type Verifier struct {
	secret []byte
}

// NewVerifier creates a verifier from the configured secret
func NewVerifier(secret string) (*Verifier, error) {
	if secret == "" {
		return nil, shared.NewError(shared.CodeConfigError, "jwt secret is not configured")
	}
	return &Verifier{secret: []byte(secret)}, nil
}

// GenerateToken mints a signed token for a user. Used by operator tooling and
// tests; the server itself never mints tokens on behalf of callers.
func (v *Verifier) GenerateToken(uid, email string, role shared.Role, ttl time.Duration) (string, error) {
	claims := AuthClaims{
		Email: email,
		Role:  string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uid,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(v.secret)
}

// ValidateToken validates a token string and returns the claims
func (v *Verifier) ValidateToken(tokenString string) (*AuthClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AuthClaims{}, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, shared.NewError(shared.CodePermissionDenied, "invalid or expired bearer token")
	}

	claims, ok := token.Claims.(*AuthClaims)
	if !ok {
		return nil, shared.NewError(shared.CodePermissionDenied, "invalid or expired bearer token")
	}
	return claims, nil
}

// callerFromRequest extracts and validates the bearer token, returning the
// authenticated user or nil when the request carries no valid token
func (s *Server) callerFromRequest(req *http.Request) *shared.User {
	authHeader := req.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return nil
	}

	claims, err := s.auth.ValidateToken(strings.TrimPrefix(authHeader, "Bearer "))
	if err != nil {
		return nil
	}

	return &shared.User{
		UID:   claims.Subject,
		Email: claims.Email,
		Role:  shared.Role(claims.Role),
	}
}

// requireAuth is middleware that validates the bearer token before calling
// the handler
func (s *Server) requireAuth(next func(http.ResponseWriter, *http.Request, shared.User)) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		caller := s.callerFromRequest(req)
		if caller == nil {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next(w, req, *caller)
	}
}

// requireAdmin is middleware that validates the bearer token and checks the
// admin role
func (s *Server) requireAdmin(next func(http.ResponseWriter, *http.Request, shared.User)) http.HandlerFunc {
	return s.requireAuth(func(w http.ResponseWriter, req *http.Request, caller shared.User) {
		if caller.Role != shared.RoleAdmin {
			writeError(w, http.StatusForbidden, "admin access required")
			return
		}
		next(w, req, caller)
	})
}
