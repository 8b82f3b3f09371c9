package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/danamoreau/strandly-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID  uuid.UUID
	SalonID *uuid.UUID
	Role    *enums.SalonRole
	JTI     string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	UserID  uuid.UUID        `json:"user_id"`
	SalonID *uuid.UUID       `json:"salon_id,omitempty"`
	Role    *enums.SalonRole `json:"salon_role,omitempty"`
	jwt.RegisteredClaims
}
