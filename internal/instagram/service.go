package instagram

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/danamoreau/strandly-backend/pkg/config"
	"github.com/danamoreau/strandly-backend/pkg/db/models"
	pkgerrors "github.com/danamoreau/strandly-backend/pkg/errors"
)

const authorizeEndpoint = "https://api.instagram.com/oauth/authorize"

// Status reflects the stored connection state for one user.
type Status struct {
	Connected    bool       `json:"connected"`
	Username     *string    `json:"username,omitempty"`
	ConnectedAt  *time.Time `json:"connectedAt,omitempty"`
	LastSyncedAt *time.Time `json:"lastSyncedAt,omitempty"`
}

// ConnectParams records a completed OAuth exchange.
type ConnectParams struct {
	IGUserID string
	Username string
}

// Service tracks per-user Instagram connection state. The OAuth token
// exchange happens in the external integration; this side stores the result
// and hands out the authorize URL.
type Service interface {
	GetStatus(ctx context.Context, userID uuid.UUID) (*Status, error)
	AuthURL(ctx context.Context, userID uuid.UUID) (string, error)
	Connect(ctx context.Context, userID uuid.UUID, params ConnectParams) (*Status, error)
	Disconnect(ctx context.Context, userID uuid.UUID) error
	MarkSynced(ctx context.Context, userID uuid.UUID) (*Status, error)
}

type service struct {
	repo Repository
	cfg  config.InstagramConfig
	now  func() time.Time
}

// NewService validates dependencies and returns the instagram service.
func NewService(repo Repository, cfg config.InstagramConfig) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "instagram repository required")
	}
	return &service{repo: repo, cfg: cfg, now: time.Now}, nil
}

func (s *service) GetStatus(ctx context.Context, userID uuid.UUID) (*Status, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	conn, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load connection")
	}
	if conn == nil {
		return &Status{}, nil
	}
	return statusFrom(conn), nil
}

func (s *service) AuthURL(ctx context.Context, userID uuid.UUID) (string, error) {
	if userID == uuid.Nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if s.cfg.ClientID == "" || s.cfg.RedirectURL == "" {
		return "", pkgerrors.New(pkgerrors.CodeDependency, "instagram oauth not configured")
	}

	query := url.Values{}
	query.Set("client_id", s.cfg.ClientID)
	query.Set("redirect_uri", s.cfg.RedirectURL)
	query.Set("response_type", "code")
	query.Set("scope", strings.ReplaceAll(s.cfg.Scopes, " ", ""))
	query.Set("state", userID.String())
	return authorizeEndpoint + "?" + query.Encode(), nil
}

func (s *service) Connect(ctx context.Context, userID uuid.UUID, params ConnectParams) (*Status, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if params.IGUserID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "instagram user id required")
	}

	conn, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load connection")
	}
	if conn == nil {
		conn = &models.InstagramConnection{UserID: userID}
	}

	now := s.now().UTC()
	conn.IGUserID = &params.IGUserID
	if params.Username != "" {
		conn.Username = &params.Username
	}
	conn.Connected = true
	conn.ConnectedAt = &now
	conn.UpdatedAt = now
	if err := s.repo.Save(ctx, conn); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save connection")
	}
	return statusFrom(conn), nil
}

func (s *service) Disconnect(ctx context.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	conn, err := s.repo.Get(ctx, userID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load connection")
	}
	if conn == nil || !conn.Connected {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "instagram is not connected")
	}

	conn.Connected = false
	conn.IGUserID = nil
	conn.Username = nil
	conn.ConnectedAt = nil
	conn.UpdatedAt = s.now().UTC()
	if err := s.repo.Save(ctx, conn); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save connection")
	}
	return nil
}

func (s *service) MarkSynced(ctx context.Context, userID uuid.UUID) (*Status, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	conn, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load connection")
	}
	if conn == nil || !conn.Connected {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "instagram is not connected")
	}

	now := s.now().UTC()
	conn.LastSyncedAt = &now
	conn.UpdatedAt = now
	if err := s.repo.Save(ctx, conn); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save connection")
	}
	return statusFrom(conn), nil
}

func statusFrom(conn *models.InstagramConnection) *Status {
	return &Status{
		Connected:    conn.Connected,
		Username:     conn.Username,
		ConnectedAt:  conn.ConnectedAt,
		LastSyncedAt: conn.LastSyncedAt,
	}
}
