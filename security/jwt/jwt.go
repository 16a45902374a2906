package jwt

import (
	"errors"
	"time"

	jwtstd "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenError represents JWT token related errors
type TokenError string

func (e TokenError) Error() string {
	return string(e)
}

const (
	DefaultAccessTokenExpire = 2 * time.Hour

	ErrNeedTokenProvider = TokenError("cannot sign token without token provider")
	ErrInvalidToken      = TokenError("invalid token")
	ErrTokenExpired      = TokenError("token expired")
	ErrMissingSubject    = TokenError("token has no subject")
)

// TokenManager signs and verifies HS256 access tokens. Session issuance lives
// outside this service; the signing side exists for operators and tests.
type TokenManager struct {
	key    string
	issuer string
	expire time.Duration
}

// NewTokenManager creates a new TokenManager instance
func NewTokenManager(key, issuer string, expire time.Duration) *TokenManager {
	if expire <= 0 {
		expire = DefaultAccessTokenExpire
	}
	return &TokenManager{key: key, issuer: issuer, expire: expire}
}

// validateKey validates the token key
func (jtm *TokenManager) validateKey() error {
	if jtm.key == "" {
		return ErrNeedTokenProvider
	}
	return nil
}

// GenerateAccessToken signs a token whose subject is the user id.
func (jtm *TokenManager) GenerateAccessToken(userID string) (string, error) {
	return jtm.GenerateAccessTokenWithExpiry(userID, jtm.expire)
}

// GenerateAccessTokenWithExpiry signs a token with a custom lifetime.
func (jtm *TokenManager) GenerateAccessTokenWithExpiry(userID string, expiry time.Duration) (string, error) {
	if err := jtm.validateKey(); err != nil {
		return "", err
	}
	if userID == "" {
		return "", ErrMissingSubject
	}

	now := time.Now()
	claims := jwtstd.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   userID,
		Issuer:    jtm.issuer,
		IssuedAt:  jwtstd.NewNumericDate(now),
		ExpiresAt: jwtstd.NewNumericDate(now.Add(expiry)),
	}
	return jwtstd.NewWithClaims(jwtstd.SigningMethodHS256, claims).SignedString([]byte(jtm.key))
}

// ValidateToken verifies signature, expiry and issuer and returns the claims.
func (jtm *TokenManager) ValidateToken(tokenString string) (*jwtstd.RegisteredClaims, error) {
	if err := jtm.validateKey(); err != nil {
		return nil, err
	}

	opts := []jwtstd.ParserOption{jwtstd.WithValidMethods([]string{jwtstd.SigningMethodHS256.Alg()})}
	if jtm.issuer != "" {
		opts = append(opts, jwtstd.WithIssuer(jtm.issuer))
	}

	claims := &jwtstd.RegisteredClaims{}
	token, err := jwtstd.ParseWithClaims(tokenString, claims, func(*jwtstd.Token) (any, error) {
		return []byte(jtm.key), nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwtstd.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// SubjectOf validates the token and returns its subject.
func (jtm *TokenManager) SubjectOf(tokenString string) (string, error) {
	claims, err := jtm.ValidateToken(tokenString)
	if err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", ErrMissingSubject
	}
	return claims.Subject, nil
}
