package domain

import "strings"

// Category classifies a discovered document reference.
// Every Link has exactly one category.
type Category string

// Link categories.
const (
	// CategoryGenericPDF is any URL whose path ends in .pdf.
	CategoryGenericPDF Category = "generic-pdf"

	// CategoryArxivPDF is an arxiv.org/pdf/ URL.
	CategoryArxivPDF Category = "arxiv-pdf"

	// CategoryArxivAbstract is an arxiv.org/abs/ URL.
	CategoryArxivAbstract Category = "arxiv-abstract"
)

// AllCategories lists every category in a stable order.
var AllCategories = []Category{CategoryGenericPDF, CategoryArxivPDF, CategoryArxivAbstract}

// IsValid returns true if the category is recognised.
func (c Category) IsValid() bool {
	switch c {
	case CategoryGenericPDF, CategoryArxivPDF, CategoryArxivAbstract:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (c Category) String() string {
	return string(c)
}

// ParseCategory converts a configuration string into a Category.
func ParseCategory(s string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	return c, c.IsValid()
}

// Link is a normalised absolute URL discovered in a SourceFile.
type Link struct {
	// URL is the normalised URL. It is the record key.
	URL string

	// Category is the classification of the URL.
	Category Category
}

// DocumentURL returns the URL to retrieve for this link.
// Abstract pages resolve to the PDF of the same paper; every other
// category is fetched as-is.
func (l Link) DocumentURL() string {
	if l.Category != CategoryArxivAbstract {
		return l.URL
	}
	i := strings.Index(l.URL, "/abs/")
	if i < 0 {
		return l.URL
	}
	return l.URL[:i] + "/pdf/" + l.URL[i+len("/abs/"):]
}
