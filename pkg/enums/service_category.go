package enums

import "fmt"

// ServiceCategory names a hair service a stylist can offer and post about.
type ServiceCategory string

const (
	ServiceCategoryColoring   ServiceCategory = "coloring"
	ServiceCategoryExtensions ServiceCategory = "extensions"
	ServiceCategoryCutting    ServiceCategory = "cutting"
	ServiceCategoryStyling    ServiceCategory = "styling"
	ServiceCategoryTreatments ServiceCategory = "treatments"
	ServiceCategoryBridal     ServiceCategory = "bridal"
	ServiceCategoryBarbering  ServiceCategory = "barbering"
	ServiceCategoryTexture    ServiceCategory = "texture"
)

var validServiceCategories = []ServiceCategory{
	ServiceCategoryColoring,
	ServiceCategoryExtensions,
	ServiceCategoryCutting,
	ServiceCategoryStyling,
	ServiceCategoryTreatments,
	ServiceCategoryBridal,
	ServiceCategoryBarbering,
	ServiceCategoryTexture,
}

// String implements fmt.Stringer.
func (s ServiceCategory) String() string {
	return string(s)
}

// IsValid reports whether the value is known.
func (s ServiceCategory) IsValid() bool {
	for _, candidate := range validServiceCategories {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseServiceCategory converts raw input into a ServiceCategory.
func ParseServiceCategory(value string) (ServiceCategory, error) {
	for _, candidate := range validServiceCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid service category %q", value)
}
