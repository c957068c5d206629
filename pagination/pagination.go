// Package pagination normalizes page/per_page pairs the way the GitHub API reads them.
package pagination

const (
	DefaultPage    = 1
	DefaultPerPage = 30
	MaxPerPage     = 100
)

// Normalize clamps page and perPage to the API's accepted range and returns the
// row offset of the first item on that page.
func Normalize(page, perPage int) (int, int, int) {
	if page < 1 {
		page = DefaultPage
	}

	if perPage <= 0 {
		perPage = DefaultPerPage
	} else if perPage > MaxPerPage {
		perPage = MaxPerPage
	}

	offset := (page - 1) * perPage

	return page, perPage, offset
}

func ComputeTotals(totalCount, perPage int) int {
	totalPages := 0
	if perPage > 0 {
		totalPages = (totalCount + perPage - 1) / perPage
	}

	return totalPages
}

// HasNext reports whether a page that returned count items may be followed by another.
func HasNext(count, perPage int) bool {
	return perPage > 0 && count >= perPage
}
