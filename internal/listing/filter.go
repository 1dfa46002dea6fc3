package listing

import (
	"strings"

	"golang.org/x/text/cases"
)

// Evaluate decides the visibility of every listing under c. It is total and
// pure: listings keep their order and are never modified.
func Evaluate(listings []Listing, c FilterCriteria) VisibilityResult {
	fold := cases.Fold()
	term := fold.String(c.SearchTerm)

	res := VisibilityResult{Visible: make([]bool, len(listings))}
	for i, l := range listings {
		if matches(l, c, term, fold) {
			res.Visible[i] = true
			res.VisibleCount++
		}
	}
	return res
}

// Matches reports whether a single listing satisfies c.
func Matches(l Listing, c FilterCriteria) bool {
	fold := cases.Fold()
	return matches(l, c, fold.String(c.SearchTerm), fold)
}

func matches(l Listing, c FilterCriteria, term string, fold cases.Caser) bool {
	textOK := term == "" || strings.Contains(fold.String(l.Title), term)
	locationOK := c.Location == AnyOption || l.Location == c.Location
	typeOK := c.Type == AnyOption || l.Type == c.Type
	priceOK := c.MinPrice <= l.Price && l.Price <= c.MaxPrice
	return textOK && locationOK && typeOK && priceOK
}
