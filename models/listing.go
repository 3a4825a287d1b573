package models

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidCriteria = errors.New("invalid filter criteria")

// Listing is one advertised rental unit scraped from a source page.
// Fields hold display text exactly as found; missing fields are empty.
type Listing struct {
	Title   string `json:"title"`
	Address string `json:"address"`
	Price   string `json:"price"` // raw, e.g. "$2,450/mo"
	Beds    string `json:"beds"`  // "2 Bed", "Studio"
	Baths   string `json:"baths"`
	Link    string `json:"link"`
}

// WithLink returns a copy of the listing pointing at link.
func (l Listing) WithLink(link string) Listing {
	l.Link = link
	return l
}

// IsEmpty reports whether no field was extracted at all.
func (l Listing) IsEmpty() bool {
	return l.Title == "" && l.Address == "" && l.Price == "" &&
		l.Beds == "" && l.Baths == "" && l.Link == ""
}

type BedSelector string

const (
	BedsAny    BedSelector = "Any"
	BedsStudio BedSelector = "Studio"
	BedsOne    BedSelector = "1"
	BedsTwo    BedSelector = "2"
	BedsThree  BedSelector = "3"
	BedsFourUp BedSelector = "4+"
)

// BedSelectors lists the selector labels in display order.
var BedSelectors = []BedSelector{BedsAny, BedsStudio, BedsOne, BedsTwo, BedsThree, BedsFourUp}

// ParseBedSelector accepts a display label, case-insensitively. Empty means Any.
func ParseBedSelector(s string) (BedSelector, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return BedsAny, nil
	}
	for _, sel := range BedSelectors {
		if strings.EqualFold(s, string(sel)) {
			return sel, nil
		}
	}
	return "", fmt.Errorf("%w: unknown bedroom selector %q", ErrInvalidCriteria, s)
}

// FilterCriteria is built per request from user input.
type FilterCriteria struct {
	Keyword      string      `json:"keyword,omitempty"`
	MaxPrice     int         `json:"max_price,omitempty"` // 0 = no ceiling
	Beds         BedSelector `json:"beds,omitempty"`
	SubleaseOnly bool        `json:"sublease_only,omitempty"`
}

func (c FilterCriteria) Validate() error {
	if c.MaxPrice < 0 {
		return fmt.Errorf("%w: max price %d is negative", ErrInvalidCriteria, c.MaxPrice)
	}
	if c.Beds != "" {
		if _, err := ParseBedSelector(string(c.Beds)); err != nil {
			return err
		}
	}
	return nil
}

// Bedrooms returns the selector, treating the zero value as Any.
func (c FilterCriteria) Bedrooms() BedSelector {
	if c.Beds == "" {
		return BedsAny
	}
	return c.Beds
}
