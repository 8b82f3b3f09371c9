package enums

import "fmt"

// ContentType describes the media format a calendar post calls for.
type ContentType string

const (
	ContentTypePhoto    ContentType = "photo"
	ContentTypeVideo    ContentType = "video"
	ContentTypeReel     ContentType = "reel"
	ContentTypeCarousel ContentType = "carousel"
	ContentTypeStory    ContentType = "story"
	ContentTypeLive     ContentType = "live"
)

var validContentTypes = []ContentType{
	ContentTypePhoto,
	ContentTypeVideo,
	ContentTypeReel,
	ContentTypeCarousel,
	ContentTypeStory,
	ContentTypeLive,
}

// String implements fmt.Stringer.
func (c ContentType) String() string {
	return string(c)
}

// IsValid reports whether the value is known.
func (c ContentType) IsValid() bool {
	for _, candidate := range validContentTypes {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseContentType converts raw input into a ContentType.
func ParseContentType(value string) (ContentType, error) {
	for _, candidate := range validContentTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid content type %q", value)
}
