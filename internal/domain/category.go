package domain

// Role categories, assigned by README section.
const (
	CategorySoftware  = "Software Engineering"
	CategoryProduct   = "Product Management"
	CategoryDataAI    = "Data Science, AI & Machine Learning"
	CategoryQuant     = "Quantitative Finance"
	CategoryHardware  = "Hardware Engineering"
	CategoryUnknown   = "Unknown"
	CategoryFilterAll = "all"
)

// Categories lists every legal category value, Unknown last.
var Categories = []string{
	CategorySoftware,
	CategoryProduct,
	CategoryDataAI,
	CategoryQuant,
	CategoryHardware,
	CategoryUnknown,
}

func IsCategory(s string) bool {
	for _, c := range Categories {
		if c == s {
			return true
		}
	}
	return false
}
