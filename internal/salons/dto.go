package salons

import (
	"time"

	"github.com/google/uuid"

	"github.com/danamoreau/strandly-backend/pkg/enums"
)

// MemberView is one row of the team roster.
type MemberView struct {
	ID         uuid.UUID              `json:"id"`
	UserID     *uuid.UUID             `json:"userId,omitempty"`
	Email      string                 `json:"email"`
	Role       enums.SalonRole        `json:"role"`
	Status     enums.InvitationStatus `json:"status"`
	InvitedAt  time.Time              `json:"invitedAt"`
	AcceptedAt *time.Time             `json:"acceptedAt,omitempty"`
}

// TeamView is the salon plus its roster.
type TeamView struct {
	SalonID   uuid.UUID    `json:"salonId"`
	Name      string       `json:"name"`
	OwnerID   uuid.UUID    `json:"ownerId"`
	SeatLimit int          `json:"seatLimit"`
	SeatCount int          `json:"seatCount"`
	Members   []MemberView `json:"members"`
}

// Invitation is returned to the owner after a successful invite.
type Invitation struct {
	MemberID    uuid.UUID       `json:"memberId"`
	Email       string          `json:"email"`
	Role        enums.SalonRole `json:"role"`
	InviteToken string          `json:"inviteToken"`
	ExpiresAt   time.Time       `json:"expiresAt"`
}

// CreateSalonParams carries the owner's salon setup input.
type CreateSalonParams struct {
	Name      string
	SeatLimit int
}

// TeamChallengeParams carries create/update input for a team challenge.
type TeamChallengeParams struct {
	Title         string
	Description   string
	PostsRequired int
	StartsAt      time.Time
	EndsAt        time.Time
}

// StylistProgressView pairs a roster member with their challenge progress.
type StylistProgressView struct {
	UserID      uuid.UUID  `json:"userId"`
	Progress    int        `json:"progress"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// TeamChallengeView is a team challenge with per-stylist progress.
type TeamChallengeView struct {
	ID            uuid.UUID             `json:"id"`
	Title         string                `json:"title"`
	Description   string                `json:"description"`
	PostsRequired int                   `json:"postsRequired"`
	StartsAt      time.Time             `json:"startsAt"`
	EndsAt        time.Time             `json:"endsAt"`
	Status        enums.ChallengeStatus `json:"status"`
	Progress      []StylistProgressView `json:"progress"`
}
