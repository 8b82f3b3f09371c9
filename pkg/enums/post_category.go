package enums

import "fmt"

// PostCategory classifies a calendar post's content angle.
type PostCategory string

const (
	PostCategoryEducational     PostCategory = "educational"
	PostCategoryPromotional     PostCategory = "promotional"
	PostCategoryBehindTheScenes PostCategory = "behind_the_scenes"
	PostCategoryTransformation  PostCategory = "transformation"
	PostCategoryProductSpot     PostCategory = "product_spotlight"
	PostCategoryClientFeature   PostCategory = "client_feature"
	PostCategoryTrend           PostCategory = "trend"
	PostCategoryTutorial        PostCategory = "tutorial"
	PostCategoryCommunity       PostCategory = "community"
	PostCategorySeasonal        PostCategory = "seasonal"
)

var validPostCategories = []PostCategory{
	PostCategoryEducational,
	PostCategoryPromotional,
	PostCategoryBehindTheScenes,
	PostCategoryTransformation,
	PostCategoryProductSpot,
	PostCategoryClientFeature,
	PostCategoryTrend,
	PostCategoryTutorial,
	PostCategoryCommunity,
	PostCategorySeasonal,
}

// String implements fmt.Stringer.
func (c PostCategory) String() string {
	return string(c)
}

// IsValid reports whether the value is known.
func (c PostCategory) IsValid() bool {
	for _, candidate := range validPostCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParsePostCategory converts raw input into a PostCategory.
func ParsePostCategory(value string) (PostCategory, error) {
	for _, candidate := range validPostCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid post category %q", value)
}
