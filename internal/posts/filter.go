package posts

import (
	"time"

	"github.com/danamoreau/strandly-backend/pkg/db/models"
	"github.com/danamoreau/strandly-backend/pkg/enums"
)

// Filter holds the ANDed predicates applied to the catalog. Zero-value facets
// match everything.
type Filter struct {
	Month           int
	Categories      []enums.PostCategory
	ContentTypes    []enums.ContentType
	PostingServices []string
}

// ApplyFilter returns the posts visible under the filter, preserving the
// catalog's natural (month, day, id) order. Past days are hidden only when
// the selected month is the current UTC month.
func ApplyFilter(rows []models.Post, f Filter, now time.Time) []models.Post {
	now = now.UTC()
	currentMonth := int(now.Month())
	today := now.Day()

	out := make([]models.Post, 0, len(rows))
	for _, p := range rows {
		if p.Month != f.Month {
			continue
		}
		if f.Month == currentMonth && p.Day < today {
			continue
		}
		if !matchesCategory(p, f.Categories) {
			continue
		}
		if !matchesContentType(p, f.ContentTypes) {
			continue
		}
		if !matchesService(p, f.PostingServices) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func matchesCategory(p models.Post, categories []enums.PostCategory) bool {
	if len(categories) == 0 {
		return true
	}
	for _, c := range categories {
		if p.Category == c {
			return true
		}
	}
	return false
}

func matchesContentType(p models.Post, types []enums.ContentType) bool {
	if len(types) == 0 {
		return true
	}
	for _, t := range types {
		if p.ContentType == t {
			return true
		}
	}
	return false
}

// matchesService gates on the user's posting services. Posts without a
// service category always pass, and an empty service list disables the facet.
func matchesService(p models.Post, services []string) bool {
	if p.ServiceCategory == nil {
		return true
	}
	if len(services) == 0 {
		return true
	}
	for _, s := range services {
		if string(*p.ServiceCategory) == s {
			return true
		}
	}
	return false
}
