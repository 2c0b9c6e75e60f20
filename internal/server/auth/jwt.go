// Package auth issues and verifies the two stateless token kinds used by the
// account server: bearer session tokens and password-reset tokens.
//
// Both kinds are HS256 JWTs derived from one process-wide secret, but each
// purpose signs with its own key and carries its own purpose claim, so a token
// minted for one purpose never verifies as the other.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Issuer is stamped into every token and required on verification.
const Issuer = "accountkeeper"

// Purpose tags a token with the only operation it may authorize.
type Purpose string

const (
	PurposeSession Purpose = "session"
	PurposeReset   Purpose = "reset"
)

// Claims is the JWT payload shared by both token kinds.
type Claims struct {
	jwt.RegisteredClaims
	Purpose     Purpose `json:"purpose"`
	Fingerprint string  `json:"pwf,omitempty"`
}

// ResetClaims is what a verified reset token grants.
type ResetClaims struct {
	Subject     string
	Fingerprint string
	ExpiresAt   time.Time
}

// TokenService signs and verifies tokens.
type TokenService struct {
	sessionKey []byte
	resetKey   []byte
	sessionTTL time.Duration
	resetTTL   time.Duration
	now        func() time.Time
}

// NewTokenService derives per-purpose keys from secret.
func NewTokenService(secret []byte, sessionTTL, resetTTL time.Duration) *TokenService {
	return &TokenService{
		sessionKey: deriveKey(secret, PurposeSession),
		resetKey:   deriveKey(secret, PurposeReset),
		sessionTTL: sessionTTL,
		resetTTL:   resetTTL,
		now:        time.Now,
	}
}

func deriveKey(secret []byte, p Purpose) []byte {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(Issuer + "/" + string(p)))
	return mac.Sum(nil)
}

// Fingerprint condenses a password hash into the value bound into reset
// tokens. Changing the password changes the fingerprint.
func Fingerprint(passwordHash string) string {
	sum := sha256.Sum256([]byte(passwordHash))
	return hex.EncodeToString(sum[:16])
}

// SessionTTL reports how long session tokens stay valid.
func (s *TokenService) SessionTTL() time.Duration { return s.sessionTTL }

// ResetTTL reports how long reset tokens stay valid.
func (s *TokenService) ResetTTL() time.Duration { return s.resetTTL }

// IssueSessionToken mints a bearer token for subject.
func (s *TokenService) IssueSessionToken(subject string) (string, error) {
	return s.issue(subject, PurposeSession, "", s.sessionKey, s.sessionTTL)
}

// VerifySessionToken returns the subject of a valid session token.
func (s *TokenService) VerifySessionToken(token string) (string, error) {
	claims, err := s.verify(token, PurposeSession, s.sessionKey)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// IssueResetToken mints a reset token bound to subject and to the fingerprint
// of the subject's current password hash.
func (s *TokenService) IssueResetToken(subject, fingerprint string) (string, error) {
	if fingerprint == "" {
		return "", errors.New("reset token requires a password fingerprint")
	}
	return s.issue(subject, PurposeReset, fingerprint, s.resetKey, s.resetTTL)
}

// VerifyResetToken returns the claims of a valid reset token.
func (s *TokenService) VerifyResetToken(token string) (*ResetClaims, error) {
	claims, err := s.verify(token, PurposeReset, s.resetKey)
	if err != nil {
		return nil, err
	}
	if claims.Fingerprint == "" {
		return nil, common.ErrInvalidToken
	}
	return &ResetClaims{
		Subject:     claims.Subject,
		Fingerprint: claims.Fingerprint,
		ExpiresAt:   claims.ExpiresAt.Time,
	}, nil
}

func (s *TokenService) issue(subject string, p Purpose, fingerprint string, key []byte, ttl time.Duration) (string, error) {
	if subject == "" {
		return "", errors.New("token subject is empty")
	}

	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   subject,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Purpose:     p,
		Fingerprint: fingerprint,
	})

	signed, err := token.SignedString(key)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", p, err)
	}

	return signed, nil
}

func (s *TokenService) verify(tokenString string, p Purpose, key []byte) (*Claims, error) {
	if tokenString == "" {
		return nil, common.ErrTokenMissing
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !token.Valid || claims.Purpose != p || claims.Subject == "" {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
