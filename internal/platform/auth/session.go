package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Caller roles. Patients may only touch records owned by their own patient
// id; admins (staff accounts) are unrestricted.
const (
	RolePatient = "patient"
	RoleAdmin   = "admin"
)

// Identity is the resolved caller derived from a verified session token.
type Identity struct {
	SubjectID uuid.UUID
	Name      string
	Role      string
}

// IsAdmin reports whether the identity carries the admin role.
func (i Identity) IsAdmin() bool { return i.Role == RoleAdmin }

type sessionClaims struct {
	jwt.RegisteredClaims
	Name string `json:"name"`
	Role string `json:"role"`
}

// Sessions issues and resolves self-contained session tokens. Tokens are
// HMAC-SHA256 signed and carry the identity claims; there is no server-side
// session table, so sign-out is client-side and stale tokens simply expire.
type Sessions struct {
	secret []byte
	ttl    time.Duration
}

func NewSessions(secret string, ttl time.Duration) *Sessions {
	return &Sessions{secret: []byte(secret), ttl: ttl}
}

// TTL returns the validity window tokens are issued with.
func (s *Sessions) TTL() time.Duration { return s.ttl }

// Issue creates a signed session token for the identity.
func (s *Sessions) Issue(id Identity) (string, error) {
	if id.SubjectID == uuid.Nil {
		return "", fmt.Errorf("identity has no subject id")
	}
	if id.Role != RolePatient && id.Role != RoleAdmin {
		return "", fmt.Errorf("unknown role %q", id.Role)
	}

	now := time.Now()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.SubjectID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		Name: id.Name,
		Role: id.Role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Parse resolves a token back to an Identity. Expired, malformed, or
// tampered tokens all fail the same way.
func (s *Sessions) Parse(tokenStr string) (Identity, error) {
	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return Identity{}, fmt.Errorf("invalid session token")
	}

	subjectID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return Identity{}, fmt.Errorf("invalid session subject")
	}
	if claims.Role != RolePatient && claims.Role != RoleAdmin {
		return Identity{}, fmt.Errorf("invalid session role")
	}

	return Identity{SubjectID: subjectID, Name: claims.Name, Role: claims.Role}, nil
}
