package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	gocache "github.com/patrickmn/go-cache"

	"repairshop-backend/internal/timeutil"
)

var (
	ErrInvalidToken   = errors.New("invalid or expired admin session")
	ErrSessionRevoked = errors.New("admin session revoked")
)

const adminSubject = "admin"

type Claims struct {
	jwt.RegisteredClaims
}

// SessionManager issues admin session tokens. Live session ids are kept in memory,
// so a restart or RevokeAll ends every session.
type SessionManager struct {
	secret   []byte
	ttl      time.Duration
	issuer   string
	sessions *gocache.Cache
}

// NewSessionManager uses secret when given, otherwise a random per-process key.
func NewSessionManager(secret string, ttl time.Duration, issuer string) (*SessionManager, error) {
	key := []byte(secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, err
		}
	}
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &SessionManager{
		secret:   key,
		ttl:      ttl,
		issuer:   issuer,
		sessions: gocache.New(ttl, 10*time.Minute),
	}, nil
}

// Issue starts a new admin session and returns its signed token.
func (m *SessionManager) Issue() (string, time.Time, error) {
	id, err := randomID()
	if err != nil {
		return "", time.Time{}, err
	}

	now := timeutil.Now()
	expiresAt := now.Add(m.ttl)
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id,
			Subject:   adminSubject,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	m.sessions.Set(id, expiresAt, m.ttl)
	return token, expiresAt, nil
}

// Validate verifies the token signature and that its session is still live.
func (m *SessionManager) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return m.secret, nil
	}, jwt.WithIssuer(m.issuer), jwt.WithSubject(adminSubject))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	if _, ok := m.sessions.Get(claims.ID); !ok {
		return nil, ErrSessionRevoked
	}
	return claims, nil
}

// Revoke ends one session.
func (m *SessionManager) Revoke(sessionID string) {
	m.sessions.Delete(sessionID)
}

// RevokeAll ends every session, e.g. after a password change.
func (m *SessionManager) RevokeAll() {
	m.sessions.Flush()
}

// Active returns the number of live sessions.
func (m *SessionManager) Active() int {
	return m.sessions.ItemCount()
}

func randomID() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
