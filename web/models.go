package web

import (
	"golang.org/x/time/rate"

	"qrhunt/api/api"
)

// Config holds the configuration for the web server
type Config struct {
	Addr      string
	API       *api.API
	JWTSecret string
}

// Server is the HTTP server that handles hunt requests
type Server struct {
	api          *api.API
	auth         *Verifier
	claimLimiter *rate.Limiter
}

// Claim submissions share one limiter; a wave of duplicate scans backs off
// before it reaches the database
const (
	claimRatePerSecond = 5
	claimBurst         = 10
)

// newServer wires the handler state from the configuration
func newServer(cfg Config) (*Server, error) {
	verifier, err := NewVerifier(cfg.JWTSecret)
	if err != nil {
		return nil, err
	}
	return &Server{
		api:          cfg.API,
		auth:         verifier,
		claimLimiter: rate.NewLimiter(rate.Limit(claimRatePerSecond), claimBurst),
	}, nil
}
