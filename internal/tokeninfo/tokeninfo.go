// Package tokeninfo describes a session token for display. Tokens are opaque
// to the client; when one happens to be a JWT its registered claims are read
// without verifying the signature. Nothing here decides whether a token is
// valid; only the server's validation probe does that.
package tokeninfo

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token formats.
const (
	FormatJWT    = "jwt"
	FormatOpaque = "opaque"
)

// Info is what can be said about a token without asking the server.
type Info struct {
	Format    string
	Length    int
	Subject   string
	Issuer    string
	IssuedAt  time.Time
	ExpiresAt time.Time

	// Expired is true only for a JWT whose exp claim is in the past.
	Expired bool
}

// Inspect describes token as of now. An empty token yields the zero Info.
func Inspect(token string, now time.Time) Info {
	if token == "" {
		return Info{}
	}

	info := Info{Format: FormatOpaque, Length: len(token)}

	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return info
	}

	info.Format = FormatJWT
	info.Subject = claims.Subject
	info.Issuer = claims.Issuer

	if claims.IssuedAt != nil {
		info.IssuedAt = claims.IssuedAt.Time
	}

	if claims.ExpiresAt != nil {
		info.ExpiresAt = claims.ExpiresAt.Time
		info.Expired = !now.Before(info.ExpiresAt)
	}

	return info
}

// Redact returns a display form of token showing only its edges.
func Redact(token string) string {
	const edge = 4

	if len(token) <= 2*edge {
		return "********"
	}

	return token[:edge] + "…" + token[len(token)-edge:]
}
