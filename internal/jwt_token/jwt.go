// Package jwttoken issues and validates caller identity tokens. A token's
// subject is the caller's ledger identity; services treat that identity the
// way contract code treats the transaction sender.
package jwttoken

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"soulbound/pkg/domain"
	dErrors "soulbound/pkg/domain-errors"
)

// CallerClaims are the JWT claims carried by caller tokens.
type CallerClaims struct {
	Identity string `json:"identity"`
	jwt.RegisteredClaims
}

// Service handles JWT creation and validation.
type Service struct {
	signingKey []byte
	issuer     string
	tokenTTL   time.Duration
}

func NewService(signingKey string, issuer string, tokenTTL time.Duration) *Service {
	return &Service{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		tokenTTL:   tokenTTL,
	}
}

// Generate mints a signed token for the given caller identity.
func (s *Service) Generate(caller domain.Identity, now time.Time) (string, error) {
	if caller.IsZero() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "caller identity required")
	}
	claims := CallerClaims{
		Identity: caller.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   caller.String(),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not sign token")
	}
	return signed, nil
}

// Validate parses a token and returns the caller identity it asserts.
func (s *Service) Validate(tokenString string) (domain.Identity, error) {
	claims := &CallerClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "unexpected signing method")
		}
		return s.signingKey, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return "", dErrors.Wrap(err, dErrors.CodeUnauthorized, "invalid or expired token")
	}

	caller, err := domain.ParseIdentity(claims.Identity)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeUnauthorized, "token carries malformed identity")
	}
	if caller.IsZero() {
		return "", dErrors.New(dErrors.CodeUnauthorized, "token carries zero identity")
	}
	return caller, nil
}
