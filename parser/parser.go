// Package parser turns a source directory page into listings.
//
// Extraction is best effort: every field is looked up on its own through a list
// of fallback selectors, so markup drift blanks individual fields instead of
// losing whole records. Parse never fails; anything unexpected yields no listings.
package parser

import (
	"fmt"
	"log"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"iv_housing/config"
	"iv_housing/models"
)

type Parser struct {
	sourceID string
	base     *url.URL

	cards   []cascadia.Selector
	title   []cascadia.Selector
	address []cascadia.Selector
	price   []cascadia.Selector
	beds    []cascadia.Selector
	baths   []cascadia.Selector
	link    []cascadia.Selector
}

// New compiles the source's selectors. An invalid selector is a config error.
func New(src *config.SourceConfig) (*Parser, error) {
	p := &Parser{sourceID: src.ID}

	if origin := src.Origin(); origin != "" {
		base, err := url.Parse(origin + "/")
		if err != nil {
			return nil, fmt.Errorf("parse origin: %w", err)
		}
		p.base = base
	}

	fields := []struct {
		name string
		sels []string
		dst  *[]cascadia.Selector
	}{
		{"card", src.Selectors.Card, &p.cards},
		{"title", src.Selectors.Title, &p.title},
		{"address", src.Selectors.Address, &p.address},
		{"price", src.Selectors.Price, &p.price},
		{"beds", src.Selectors.Beds, &p.beds},
		{"baths", src.Selectors.Baths, &p.baths},
		{"link", src.Selectors.Link, &p.link},
	}
	for _, f := range fields {
		compiled, err := compileAll(f.sels)
		if err != nil {
			return nil, fmt.Errorf("source %s %s selector: %w", src.ID, f.name, err)
		}
		*f.dst = compiled
	}

	if len(p.cards) == 0 {
		return nil, fmt.Errorf("source %s: no card selectors", src.ID)
	}
	return p, nil
}

func compileAll(sels []string) ([]cascadia.Selector, error) {
	var out []cascadia.Selector
	for _, s := range sels {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		sel, err := cascadia.Compile(s)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", s, err)
		}
		out = append(out, sel)
	}
	return out, nil
}

// Parse extracts listings in document order. Links leave the parser already
// resolved against the source origin.
func (p *Parser) Parse(html string) (listings []models.Listing) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Parser: %s: recovered from %v, returning no listings", p.sourceID, r)
			listings = nil
		}
	}()

	if strings.TrimSpace(html) == "" {
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		log.Printf("Parser: %s: unreadable document: %v", p.sourceID, err)
		return nil
	}

	cards := p.findCards(doc.Selection)
	if cards == nil {
		log.Printf("Parser: %s: no listing blocks found (markup may have changed)", p.sourceID)
		return nil
	}

	cards.Each(func(i int, card *goquery.Selection) {
		l := p.extract(card)
		if l.IsEmpty() {
			return
		}
		listings = append(listings, l.WithLink(ResolveLink(p.base, l.Link)))
	})

	log.Printf("Parser: %s: %d listings from %d blocks", p.sourceID, len(listings), cards.Length())
	return listings
}

// findCards uses the first card selector that matches anything.
func (p *Parser) findCards(root *goquery.Selection) *goquery.Selection {
	for _, sel := range p.cards {
		if found := root.FindMatcher(sel); found.Length() > 0 {
			return found
		}
	}
	return nil
}

func (p *Parser) extract(card *goquery.Selection) models.Listing {
	return models.Listing{
		Title:   firstText(card, p.title),
		Address: firstText(card, p.address),
		Price:   firstText(card, p.price),
		Beds:    firstText(card, p.beds),
		Baths:   firstText(card, p.baths),
		Link:    firstHref(card, p.link),
	}
}

func firstText(card *goquery.Selection, sels []cascadia.Selector) string {
	for _, sel := range sels {
		if text := collapse(card.FindMatcher(sel).First().Text()); text != "" {
			return text
		}
	}
	return ""
}

func firstHref(card *goquery.Selection, sels []cascadia.Selector) string {
	for _, sel := range sels {
		target := card.FindMatcher(sel).First()
		if card.IsMatcher(sel) {
			target = card
		}
		if href, ok := target.Attr("href"); ok {
			if href = strings.TrimSpace(href); href != "" {
				return href
			}
		}
	}
	return ""
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// ResolveLink makes a site-relative link absolute against base. Empty links stay
// empty and links that already carry a scheme are returned unchanged.
func ResolveLink(base *url.URL, link string) string {
	link = strings.TrimSpace(link)
	if link == "" || base == nil {
		return link
	}

	ref, err := url.Parse(link)
	if err != nil {
		return strings.TrimSuffix(base.String(), "/") + "/" + strings.TrimPrefix(link, "/")
	}
	if ref.IsAbs() {
		return link
	}
	return base.ResolveReference(ref).String()
}
