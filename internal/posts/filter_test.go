package posts

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/danamoreau/strandly-backend/pkg/db/models"
	"github.com/danamoreau/strandly-backend/pkg/enums"
)

func post(month, day int, category enums.PostCategory, contentType enums.ContentType, service *enums.ServiceCategory) models.Post {
	return models.Post{
		ID:              uuid.New(),
		Month:           month,
		Day:             day,
		Title:           "post",
		Category:        category,
		ContentType:     contentType,
		ServiceCategory: service,
	}
}

func svcCat(v enums.ServiceCategory) *enums.ServiceCategory {
	return &v
}

func TestApplyFilterMonthMatch(t *testing.T) {
	now := time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC)
	rows := []models.Post{
		post(3, 1, enums.PostCategoryEducational, enums.ContentTypePhoto, nil),
		post(4, 1, enums.PostCategoryEducational, enums.ContentTypePhoto, nil),
	}
	got := ApplyFilter(rows, Filter{Month: 3}, now)
	if len(got) != 1 || got[0].Month != 3 {
		t.Fatalf("expected only month 3, got %v", got)
	}
}

func TestApplyFilterHidesPastDaysOnlyInCurrentMonth(t *testing.T) {
	now := time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)
	rows := []models.Post{
		post(6, 10, enums.PostCategoryEducational, enums.ContentTypePhoto, nil),
		post(6, 15, enums.PostCategoryEducational, enums.ContentTypePhoto, nil),
		post(6, 20, enums.PostCategoryEducational, enums.ContentTypePhoto, nil),
	}

	got := ApplyFilter(rows, Filter{Month: 6}, now)
	if len(got) != 2 {
		t.Fatalf("expected past day hidden, got %d posts", len(got))
	}
	if got[0].Day != 15 || got[1].Day != 20 {
		t.Fatalf("expected days [15 20], got [%d %d]", got[0].Day, got[1].Day)
	}

	// future month keeps all days
	future := []models.Post{
		post(7, 1, enums.PostCategoryEducational, enums.ContentTypePhoto, nil),
		post(7, 31, enums.PostCategoryEducational, enums.ContentTypePhoto, nil),
	}
	got = ApplyFilter(future, Filter{Month: 7}, now)
	if len(got) != 2 {
		t.Fatalf("expected no past-day rule for future month, got %d posts", len(got))
	}
}

func TestApplyFilterCategoryAndContentTypeFacets(t *testing.T) {
	now := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	rows := []models.Post{
		post(3, 1, enums.PostCategoryEducational, enums.ContentTypePhoto, nil),
		post(3, 2, enums.PostCategoryPromotional, enums.ContentTypeReel, nil),
		post(3, 3, enums.PostCategoryTrend, enums.ContentTypeReel, nil),
	}

	got := ApplyFilter(rows, Filter{Month: 3, Categories: []enums.PostCategory{enums.PostCategoryPromotional}}, now)
	if len(got) != 1 || got[0].Category != enums.PostCategoryPromotional {
		t.Fatalf("category facet failed: %v", got)
	}

	got = ApplyFilter(rows, Filter{Month: 3, ContentTypes: []enums.ContentType{enums.ContentTypeReel}}, now)
	if len(got) != 2 {
		t.Fatalf("content type facet failed, got %d posts", len(got))
	}

	// empty facets match everything
	got = ApplyFilter(rows, Filter{Month: 3}, now)
	if len(got) != 3 {
		t.Fatalf("empty facets should match all, got %d", len(got))
	}
}

func TestApplyFilterServiceGating(t *testing.T) {
	now := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	rows := []models.Post{
		post(3, 1, enums.PostCategoryEducational, enums.ContentTypePhoto, nil),
		post(3, 2, enums.PostCategoryEducational, enums.ContentTypePhoto, svcCat(enums.ServiceCategoryColoring)),
		post(3, 3, enums.PostCategoryEducational, enums.ContentTypePhoto, svcCat(enums.ServiceCategoryBridal)),
	}

	got := ApplyFilter(rows, Filter{Month: 3, PostingServices: []string{"coloring"}}, now)
	if len(got) != 2 {
		t.Fatalf("expected untagged post plus coloring, got %d", len(got))
	}

	// empty posting services disables the facet entirely
	got = ApplyFilter(rows, Filter{Month: 3, PostingServices: nil}, now)
	if len(got) != 3 {
		t.Fatalf("empty services should disable gating, got %d", len(got))
	}
}

func TestApplyFilterPreservesOrder(t *testing.T) {
	now := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	rows := []models.Post{
		post(3, 1, enums.PostCategoryEducational, enums.ContentTypePhoto, nil),
		post(3, 1, enums.PostCategoryPromotional, enums.ContentTypePhoto, nil),
		post(3, 2, enums.PostCategoryEducational, enums.ContentTypePhoto, nil),
	}
	got := ApplyFilter(rows, Filter{Month: 3}, now)
	for i := range got {
		if got[i].ID != rows[i].ID {
			t.Fatalf("order changed at index %d", i)
		}
	}
}

func TestBuildDayCells(t *testing.T) {
	rows := []models.Post{
		post(3, 1, enums.PostCategoryEducational, enums.ContentTypePhoto, nil),
		post(3, 1, enums.PostCategoryPromotional, enums.ContentTypePhoto, nil),
		post(3, 1, enums.PostCategoryTrend, enums.ContentTypePhoto, nil),
		post(3, 5, enums.PostCategoryEducational, enums.ContentTypePhoto, nil),
	}
	cells := buildDayCells(rows)
	if len(cells) != 2 {
		t.Fatalf("expected 2 cells, got %d", len(cells))
	}
	if cells[0].Day != 1 || cells[0].Overflow != 2 {
		t.Fatalf("day 1 cell wrong: %+v", cells[0])
	}
	if cells[0].Post == nil || cells[0].Post.ID != rows[0].ID {
		t.Fatal("day cell should keep the first post")
	}
	if cells[1].Day != 5 || cells[1].Overflow != 0 {
		t.Fatalf("day 5 cell wrong: %+v", cells[1])
	}
}
