package jwt

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Stream roles
const (
	RoleCandidate = "candidate"
	RoleAgent     = "agent"
)

// Claims represents the claims of a live stream ticket
type Claims struct {
	SessionID uuid.UUID `json:"session_id"`
	TenantID  string    `json:"tenant_id"`
	Role      string    `json:"role"`
	jwt.RegisteredClaims
}
