package analysis

// Category is one of the closed set of activity classifications used for
// scoring. The classifier replies in an open string space; anything outside
// the known set parses to CategoryUnknown and scores zero.
type Category string

const (
	CategoryStudy         Category = "Study"
	CategoryInfoGathering Category = "InfoGathering"
	CategoryProduction    Category = "Production"
	CategorySocialMedia   Category = "SocialMedia"
	CategoryEntertainment Category = "Entertainment"
	CategoryOther         Category = "Other"
	CategoryUnknown       Category = "Unknown"
)

// Categories lists the labels the classifier is asked to choose from.
var Categories = []Category{
	CategoryStudy,
	CategoryInfoGathering,
	CategoryProduction,
	CategorySocialMedia,
	CategoryEntertainment,
	CategoryOther,
}

func ParseCategory(s string) Category {
	switch Category(s) {
	case CategoryStudy, CategoryInfoGathering, CategoryProduction,
		CategorySocialMedia, CategoryEntertainment, CategoryOther:
		return Category(s)
	}
	return CategoryUnknown
}

// Points returns the fixed per-occurrence score for the category. The score
// is flat per present category, not weighted by minutes.
func (c Category) Points() int64 {
	switch c {
	case CategoryStudy:
		return 100
	case CategoryInfoGathering:
		return 30
	case CategoryProduction:
		return 50
	case CategorySocialMedia:
		return 20
	case CategoryEntertainment:
		return 5
	}
	return 0
}
