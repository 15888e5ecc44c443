package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials covers both an unknown username and a wrong
	// password so callers cannot distinguish which occurred.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken is returned for a token that is present but malformed,
	// incorrectly signed, or expired.
	ErrInvalidToken = errors.New("invalid token")
)

// Principal is the authenticated identity carried by a verified token.
type Principal struct {
	AdminID  int64
	Username string
}

// TokenTTL is the fixed lifetime of an issued session token.
const TokenTTL = 24 * time.Hour

// AuthService issues and validates session tokens and verifies password
// digests. Token handling is a pure function of (secret, claims, clock): the
// clock is injected so expiry behavior is testable without sleeping.
type AuthService struct {
	jwtSecret []byte
	tokenTTL  time.Duration
	now       func() time.Time
}

// NewAuthService creates an AuthService signing with the given secret. A zero
// ttl selects the default TokenTTL.
func NewAuthService(jwtSecret string, ttl time.Duration) *AuthService {
	if ttl <= 0 {
		ttl = TokenTTL
	}
	return &AuthService{
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  ttl,
		now:       time.Now,
	}
}

// WithClock replaces the service's time source. Intended for tests.
func (s *AuthService) WithClock(now func() time.Time) *AuthService {
	s.now = now
	return s
}

type sessionClaims struct {
	AdminID  int64  `json:"admin_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// IssueToken creates a signed HS256 token for the given admin, expiring
// tokenTTL after issuance.
func (s *AuthService) IssueToken(adminID int64, username string) (string, error) {
	now := s.now()
	claims := sessionClaims{
		AdminID:  adminID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			Issuer:    "rosterd",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// ValidateToken verifies a bearer token and returns the embedded identity.
// Validity is purely cryptographic plus expiry; the admin's continued
// existence in storage is not re-checked.
func (s *AuthService) ValidateToken(tokenStr string) (*Principal, error) {
	claims := &sessionClaims{}

	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	return &Principal{
		AdminID:  claims.AdminID,
		Username: claims.Username,
	}, nil
}

// TTL returns the configured token lifetime.
func (s *AuthService) TTL() time.Duration {
	return s.tokenTTL
}

// HashPassword returns the bcrypt digest of a plaintext password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword compares a plaintext password against a stored bcrypt digest.
// Returns ErrInvalidCredentials on mismatch.
func CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}
