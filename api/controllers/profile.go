package controllers

import (
	"net/http"

	"github.com/danamoreau/strandly-backend/api/responses"
	"github.com/danamoreau/strandly-backend/api/validators"
	"github.com/danamoreau/strandly-backend/internal/profiles"
	"github.com/danamoreau/strandly-backend/pkg/enums"
	pkgerrors "github.com/danamoreau/strandly-backend/pkg/errors"
	"github.com/danamoreau/strandly-backend/pkg/logger"
)

// UpdateProfileRequest carries a partial profile update. Omitted fields are
// left untouched; present fields replace the stored value.
type UpdateProfileRequest struct {
	City               *string   `json:"city" validate:"omitempty,max=120"`
	CertifiedBrands    *[]string `json:"certifiedBrands"`
	ExtensionMethods   *[]string `json:"extensionMethods"`
	OfferedServices    *[]string `json:"offeredServices"`
	PostingServices    *[]string `json:"postingServices"`
	Voice              *string   `json:"voice"`
	Tone               *string   `json:"tone"`
	PostingGoal        *int      `json:"postingGoal" validate:"omitempty,min=1,max=7"`
	OnboardingComplete *bool     `json:"onboardingComplete"`
}

func GetProfile(svc profiles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "profiles service unavailable"))
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		profile, err := svc.Get(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, profile)
	}
}

func UpdateProfile(svc profiles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "profiles service unavailable"))
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body UpdateProfileRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := body.toParams()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		profile, err := svc.Update(r.Context(), userID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, profile)
	}
}

func (req UpdateProfileRequest) toParams() (profiles.UpdateParams, error) {
	params := profiles.UpdateParams{
		City:               req.City,
		CertifiedBrands:    req.CertifiedBrands,
		ExtensionMethods:   req.ExtensionMethods,
		OfferedServices:    req.OfferedServices,
		PostingServices:    req.PostingServices,
		PostingGoal:        req.PostingGoal,
		OnboardingComplete: req.OnboardingComplete,
	}

	if req.Voice != nil {
		voice, err := enums.ParseVoice(*req.Voice)
		if err != nil {
			return params, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid voice")
		}
		params.Voice = &voice
	}
	if req.Tone != nil {
		tone, err := enums.ParseTone(*req.Tone)
		if err != nil {
			return params, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid tone")
		}
		params.Tone = &tone
	}

	return params, nil
}
