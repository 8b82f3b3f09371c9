package profiles

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/danamoreau/strandly-backend/pkg/db/models"
	"github.com/danamoreau/strandly-backend/pkg/enums"
	pkgerrors "github.com/danamoreau/strandly-backend/pkg/errors"
)

// UpdateParams carries a partial profile update. Nil fields are untouched.
type UpdateParams struct {
	City               *string
	CertifiedBrands    *[]string
	ExtensionMethods   *[]string
	OfferedServices    *[]string
	PostingServices    *[]string
	Voice              *enums.Voice
	Tone               *enums.Tone
	PostingGoal        *int
	OnboardingComplete *bool
}

// Service owns the stylist profile and its service-subset invariant.
type Service interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error)
	Update(ctx context.Context, userID uuid.UUID, params UpdateParams) (*models.UserProfile, error)
	PostingServices(ctx context.Context, userID uuid.UUID) ([]string, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService validates dependencies and returns the profiles service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "profiles repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

func (s *service) Get(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	profile, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load profile")
	}
	if profile == nil {
		return defaultProfile(userID), nil
	}
	return profile, nil
}

func (s *service) Update(ctx context.Context, userID uuid.UUID, params UpdateParams) (*models.UserProfile, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	profile, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load profile")
	}
	if profile == nil {
		profile = defaultProfile(userID)
	}

	if params.City != nil {
		profile.City = *params.City
	}
	if params.CertifiedBrands != nil {
		profile.CertifiedBrands = pq.StringArray(*params.CertifiedBrands)
	}
	if params.ExtensionMethods != nil {
		profile.ExtensionMethods = pq.StringArray(*params.ExtensionMethods)
	}
	if params.OfferedServices != nil {
		if err := validateServices(*params.OfferedServices); err != nil {
			return nil, err
		}
		profile.OfferedServices = pq.StringArray(*params.OfferedServices)
	}
	if params.PostingServices != nil {
		if err := validateServices(*params.PostingServices); err != nil {
			return nil, err
		}
		// posting services must stay a subset of what the stylist offers
		for _, svc := range *params.PostingServices {
			if !contains(profile.OfferedServices, svc) {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "posting services must be offered services").
					WithDetails(map[string]string{"service": svc})
			}
		}
		profile.PostingServices = pq.StringArray(*params.PostingServices)
	}
	// dropping an offered service silently prunes it from posting services
	profile.PostingServices = intersect(profile.PostingServices, profile.OfferedServices)

	if params.Voice != nil {
		if !params.Voice.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid voice")
		}
		profile.Voice = *params.Voice
	}
	if params.Tone != nil {
		if !params.Tone.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid tone")
		}
		profile.Tone = *params.Tone
	}
	if params.PostingGoal != nil {
		if *params.PostingGoal < 1 || *params.PostingGoal > 7 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "posting goal must be between 1 and 7 per week")
		}
		profile.PostingGoal = *params.PostingGoal
	}
	if params.OnboardingComplete != nil {
		profile.OnboardingComplete = *params.OnboardingComplete
	}
	profile.UpdatedAt = s.now().UTC()

	if err := s.repo.Save(ctx, profile); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save profile")
	}
	return profile, nil
}

func (s *service) PostingServices(ctx context.Context, userID uuid.UUID) ([]string, error) {
	profile, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load profile")
	}
	if profile == nil {
		return nil, nil
	}
	return []string(profile.PostingServices), nil
}

func defaultProfile(userID uuid.UUID) *models.UserProfile {
	return &models.UserProfile{
		UserID:      userID,
		Voice:       enums.VoiceSoloStylist,
		Tone:        enums.ToneNeutral,
		PostingGoal: 3,
	}
}

func validateServices(services []string) error {
	for _, svc := range services {
		if _, err := enums.ParseServiceCategory(svc); err != nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "unknown service category").
				WithDetails(map[string]string{"service": svc})
		}
	}
	return nil
}

func contains(haystack []string, needle string) bool {
	for _, v := range haystack {
		if v == needle {
			return true
		}
	}
	return false
}

func intersect(subset, allowed []string) pq.StringArray {
	out := pq.StringArray{}
	for _, v := range subset {
		if contains(allowed, v) {
			out = append(out, v)
		}
	}
	return out
}
