package security

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dinkominfo-madiun/appcensus/internal/ports"
)

// JWTSigner implements HS256 signing for the session cookie token. The token
// carries only the opaque session identifier; all session state stays server
// side, so a leaked signing key exposes no data, only the ability to mint
// identifiers that point at nothing.
type JWTSigner struct {
	secret []byte
}

// NewJWTSigner builds a signer from the configured secret.
func NewJWTSigner(secret string) (*JWTSigner, error) {
	if len(secret) < 32 {
		return nil, errors.New("session signing secret must be at least 32 bytes")
	}
	return &JWTSigner{secret: []byte(secret)}, nil
}

// NewEphemeralJWTSigner creates an in-memory secret for local/dev use.
// Sessions do not survive a restart with an ephemeral secret.
func NewEphemeralJWTSigner() (*JWTSigner, error) {
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, err
	}
	return &JWTSigner{secret: secret}, nil
}

type sessionJWTClaims struct {
	SessionID string `json:"session_id"`
	jwt.RegisteredClaims
}

func (s *JWTSigner) Sign(claims ports.SessionClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionJWTClaims{
		SessionID: claims.SessionID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(claims.IssuedAt),
		},
	})
	return token.SignedString(s.secret)
}

func (s *JWTSigner) ParseAndValidate(raw string) (ports.SessionClaims, error) {
	parsed, err := jwt.ParseWithClaims(raw, &sessionJWTClaims{}, func(token *jwt.Token) (any, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %s", token.Method.Alg())
		}
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithLeeway(30*time.Second))
	if err != nil {
		return ports.SessionClaims{}, err
	}
	claims, ok := parsed.Claims.(*sessionJWTClaims)
	if !ok || !parsed.Valid {
		return ports.SessionClaims{}, errors.New("invalid token claims")
	}

	sessionID, err := uuid.Parse(claims.SessionID)
	if err != nil {
		return ports.SessionClaims{}, fmt.Errorf("parse session_id: %w", err)
	}
	issuedAt := time.Time{}
	if claims.IssuedAt != nil {
		issuedAt = claims.IssuedAt.Time
	}
	return ports.SessionClaims{
		SessionID: sessionID,
		IssuedAt:  issuedAt,
	}, nil
}
