package report

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken covers expired, malformed and wrongly-signed tokens.
var ErrInvalidToken = errors.New("invalid report token")

// TokenIssuer signs and verifies report download links. A token binds one
// stored report file to an expiry; nothing else grants access to a report.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenIssuer creates a token issuer with the given HMAC secret and TTL.
func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl}
}

// Issue returns a signed token for the given analysis and report file.
func (t *TokenIssuer) Issue(analysisID, fileID uuid.UUID) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": fileID.String(),
		"ana": analysisID.String(),
		"iat": now.Unix(),
		"exp": now.Add(t.ttl).Unix(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign report token: %w", err)
	}
	return signed, nil
}

// Verify validates a token and returns the analysis and file IDs it binds.
func (t *TokenIssuer) Verify(token string) (analysisID, fileID uuid.UUID, err error) {
	parsed, err := jwt.Parse(token, func(tok *jwt.Token) (any, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		return uuid.Nil, uuid.Nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, uuid.Nil, ErrInvalidToken
	}

	sub, _ := claims["sub"].(string)
	ana, _ := claims["ana"].(string)

	fileID, err = uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, uuid.Nil, ErrInvalidToken
	}
	analysisID, err = uuid.Parse(ana)
	if err != nil {
		return uuid.Nil, uuid.Nil, ErrInvalidToken
	}

	return analysisID, fileID, nil
}
