// Package filter applies the user's search criteria to parsed listings.
package filter

import (
	"regexp"
	"strconv"
	"strings"

	"iv_housing/models"
	"iv_housing/price"
)

// Predicate reports whether a listing survives a stage.
type Predicate func(models.Listing) bool

// Stage is one named filter. Inactive stages let every listing through.
type Stage struct {
	Name   string
	Active bool
	Keep   Predicate
}

var firstInt = regexp.MustCompile(`\d+`)

// Stages returns the pipeline for c in its fixed order: price, beds, keyword, sublease.
func Stages(c models.FilterCriteria) []Stage {
	return []Stage{
		PriceCeiling(c.MaxPrice),
		Bedrooms(c.Bedrooms()),
		Keyword(c.Keyword),
		Sublease(c.SubleaseOnly),
	}
}

// Apply keeps the listings that pass every active stage, preserving input order.
// The input slice is not modified.
func Apply(listings []models.Listing, c models.FilterCriteria) []models.Listing {
	out := make([]models.Listing, len(listings))
	copy(out, listings)

	for _, stage := range Stages(c) {
		if !stage.Active {
			continue
		}
		out = keepIf(out, stage.Keep)
	}
	return out
}

func keepIf(listings []models.Listing, keep Predicate) []models.Listing {
	kept := make([]models.Listing, 0, len(listings))
	for _, l := range listings {
		if keep(l) {
			kept = append(kept, l)
		}
	}
	return kept
}

// PriceCeiling drops listings whose price is known and above ceiling.
// Listings with no readable price are always kept.
func PriceCeiling(ceiling int) Stage {
	return Stage{
		Name:   "price",
		Active: ceiling > 0,
		Keep: func(l models.Listing) bool {
			amount, ok := price.ToInteger(l.Price)
			return !ok || amount <= ceiling
		},
	}
}

// Bedrooms matches the selector label inside the beds text. "4+" instead needs
// the first number in the beds text to be at least 4.
func Bedrooms(sel models.BedSelector) Stage {
	keep := func(l models.Listing) bool {
		return strings.Contains(strings.ToLower(l.Beds), strings.ToLower(string(sel)))
	}
	if sel == models.BedsFourUp {
		keep = func(l models.Listing) bool {
			m := firstInt.FindString(l.Beds)
			if m == "" {
				return false
			}
			n, err := strconv.Atoi(m)
			return err == nil && n >= 4
		}
	}

	return Stage{
		Name:   "beds",
		Active: sel != "" && !strings.EqualFold(string(sel), string(models.BedsAny)),
		Keep:   keep,
	}
}

// Keyword is a case-insensitive substring search over title, address, beds and baths.
// Any non-empty keyword is active, whitespace included.
func Keyword(keyword string) Stage {
	needle := strings.ToLower(keyword)
	return Stage{
		Name:   "keyword",
		Active: needle != "",
		Keep: func(l models.Listing) bool {
			// newline separated so a match cannot span two fields
			haystack := strings.Join([]string{l.Title, l.Address, l.Beds, l.Baths}, "\n")
			return strings.Contains(strings.ToLower(haystack), needle)
		},
	}
}

// Sublease keeps listings that mention "sublease" in the title or address.
func Sublease(only bool) Stage {
	return Stage{
		Name:   "sublease",
		Active: only,
		Keep: func(l models.Listing) bool {
			return strings.Contains(strings.ToLower(l.Title), "sublease") ||
				strings.Contains(strings.ToLower(l.Address), "sublease")
		},
	}
}
