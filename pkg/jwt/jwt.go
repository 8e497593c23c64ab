package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrTicketExpired is returned for a well formed but expired ticket
	ErrTicketExpired = errors.New("stream ticket expired")
	// ErrTicketInvalid is returned for any other validation failure
	ErrTicketInvalid = errors.New("invalid stream ticket")
)

// Manager signs and validates stream tickets
type Manager struct {
	secret string
	expiry time.Duration
	issuer string
}

// NewManager creates a new ticket manager
func NewManager(secret string, expiry time.Duration) *Manager {
	return &Manager{
		secret: secret,
		expiry: expiry,
		issuer: "interview-assistant",
	}
}

// GenerateStreamTicket signs a ticket granting access to one session stream
func (m *Manager) GenerateStreamTicket(sessionID uuid.UUID, tenantID, role string) (string, error) {
	now := time.Now()
	claims := &Claims{
		SessionID: sessionID,
		TenantID:  tenantID,
		Role:      role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    m.issuer,
			Subject:   sessionID.String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(m.secret))
}

// ValidateStreamTicket validates and parses a stream ticket
func (m *Manager) ValidateStreamTicket(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(m.secret), nil
	}, jwt.WithIssuer(m.issuer))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTicketExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTicketInvalid, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTicketInvalid
	}

	return claims, nil
}

// Expiry returns the ticket lifetime
func (m *Manager) Expiry() time.Duration {
	return m.expiry
}
