/* token.go
 * Contains the codec for the claim tokens embedded in location QR codes. A token binds
 * one location to a random nonce and an expiry, and is signed so it cannot be forged,
 * replayed for a different location, or have its expiry extended without the secret.
 * Wire format: locationId|nonce|expiresAtEpochMillis|hexHmacSignature (4 fields).
 * Authors: Zachary Bower
 */

package token

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"qrhunt/api/shared"
)

const nonceBytes = 16

// Codec signs and verifies claim tokens with a server-held HMAC secret
type Codec struct {
	secret []byte
}

// NewCodec creates a codec from the configured secret. An empty secret is a
// server misconfiguration and is rejected up front rather than at issue time.
func NewCodec(secret string) (*Codec, error) {
	if secret == "" {
		return nil, shared.NewError(shared.CodeConfigError, "claim token secret is not configured")
	}
	return &Codec{secret: []byte(secret)}, nil
}

// Claims are the fields recovered from a successfully verified token
type Claims struct {
	LocationID string
	Nonce      string
	ExpiresAt  time.Time
}

// Issue generates a signed token for the given location, valid until expiresAt.
// The caller is responsible for confirming the location exists before issuing.
// It returns the token and the nonce that was embedded in it.
func (c *Codec) Issue(locationID string, expiresAt time.Time) (string, string, error) {
	if locationID == "" {
		return "", "", shared.NewError(shared.CodeInvalidArgument, "locationID is required")
	}
	if strings.Contains(locationID, "|") {
		return "", "", shared.NewError(shared.CodeInvalidArgument, "locationID must not contain '|'")
	}

	buf := make([]byte, nonceBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	nonce := hex.EncodeToString(buf)

	payload := fmt.Sprintf("%s|%s|%d", locationID, nonce, expiresAt.UnixMilli())
	return payload + "|" + c.sign(payload), nonce, nil
}

// Verify checks a token's shape, signature and expiry against now.
// It returns the embedded claims on success. Signature comparison is
// constant time; a wrong-length signature is an immediate non-match.
func (c *Codec) Verify(tok string, now time.Time) (Claims, error) {
	parts := strings.Split(tok, "|")
	if len(parts) != 4 {
		return Claims{}, shared.NewError(shared.CodeMalformedToken, "token must have exactly 4 fields, got %d", len(parts))
	}

	payload := strings.Join(parts[:3], "|")
	want, err := hex.DecodeString(c.sign(payload))
	if err != nil {
		return Claims{}, fmt.Errorf("failed to decode expected signature: %w", err)
	}
	got, err := hex.DecodeString(parts[3])
	if err != nil || len(got) != len(want) {
		return Claims{}, shared.NewError(shared.CodeBadSignature, "token signature mismatch")
	}
	if !hmac.Equal(got, want) {
		return Claims{}, shared.NewError(shared.CodeBadSignature, "token signature mismatch")
	}

	millis, err := strconv.ParseFloat(parts[2], 64)
	if err != nil || math.IsNaN(millis) || math.IsInf(millis, 0) {
		return Claims{}, shared.NewError(shared.CodeMalformedToken, "token expiry is not a number")
	}
	expiresAt := time.UnixMilli(int64(millis))
	if now.After(expiresAt) {
		return Claims{}, shared.NewError(shared.CodeExpired, "token expired at %s", expiresAt.UTC().Format(time.RFC3339))
	}

	return Claims{
		LocationID: parts[0],
		Nonce:      parts[1],
		ExpiresAt:  expiresAt,
	}, nil
}

func (c *Codec) sign(payload string) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}
