package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/danamoreau/strandly-backend/api/middleware"
	"github.com/danamoreau/strandly-backend/api/responses"
	"github.com/danamoreau/strandly-backend/internal/posts"
	"github.com/danamoreau/strandly-backend/pkg/enums"
	pkgerrors "github.com/danamoreau/strandly-backend/pkg/errors"
	"github.com/danamoreau/strandly-backend/pkg/logger"
)

// CalendarMonth serves the month grid. Anonymous callers get the default
// two-month window; authenticated callers get whatever their subscription
// unlocks.
func CalendarMonth(svc posts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "posts service unavailable"))
			return
		}

		month, err := strconv.Atoi(chi.URLParam(r, "month"))
		if err != nil || month < 1 || month > 12 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "month must be between 1 and 12"))
			return
		}

		params := posts.MonthViewParams{Month: month}

		if raw := middleware.UserIDFromContext(r.Context()); raw != "" {
			uid, parseErr := uuid.Parse(raw)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid user id"))
				return
			}
			params.UserID = &uid
		}

		categories, err := parseCategories(r.URL.Query().Get("categories"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params.Categories = categories

		contentTypes, err := parseContentTypes(r.URL.Query().Get("contentTypes"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params.ContentTypes = contentTypes

		result, err := svc.MonthView(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

func parseCategories(raw string) ([]enums.PostCategory, error) {
	var out []enums.PostCategory
	for _, part := range splitFacet(raw) {
		value, err := enums.ParsePostCategory(part)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category")
		}
		out = append(out, value)
	}
	return out, nil
}

func parseContentTypes(raw string) ([]enums.ContentType, error) {
	var out []enums.ContentType
	for _, part := range splitFacet(raw) {
		value, err := enums.ParseContentType(part)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid content type")
		}
		out = append(out, value)
	}
	return out, nil
}

func splitFacet(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
