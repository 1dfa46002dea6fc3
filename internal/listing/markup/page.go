// Package markup is the HTML boundary of the listing filter: it reads listing
// cards and filter inputs from a rendered page and writes visibility back.
package markup

import (
	"context"
	"fmt"
	"io"
	"strings"

	"listing-workers/internal/listing"

	"github.com/PuerkitoBio/goquery"
)

const (
	hiddenAttr  = "hidden"
	hiddenClass = "is-hidden"
)

// Selectors locate the cards, the no-results message and the filter form.
type Selectors struct {
	Card      string
	CardTitle string
	NoResults string
	Search    string
	Location  string
	Type      string
	MinPrice  string
	MaxPrice  string
	TitleAttr string
	LocAttr   string
	TypeAttr  string
	PriceAttr string
	IDAttr    string
}

func DefaultSelectors() Selectors {
	return Selectors{
		Card:      "[data-listing]",
		CardTitle: "[data-listing-title]",
		NoResults: "[data-no-results]",
		Search:    "[data-filter-search]",
		Location:  "[data-filter-location]",
		Type:      "[data-filter-type]",
		MinPrice:  "[data-filter-min]",
		MaxPrice:  "[data-filter-max]",
		TitleAttr: "data-title",
		LocAttr:   "data-location",
		TypeAttr:  "data-type",
		PriceAttr: "data-price",
		IDAttr:    "data-id",
	}
}

// Page is a parsed listings page. Listings are read once at Load; Render and
// ResetInputs mutate the document in place.
type Page struct {
	doc      *goquery.Document
	sel      Selectors
	cards    *goquery.Selection
	listings []listing.Listing
	warnings []string
}

// Load parses r and extracts every card in document order.
func Load(r io.Reader, sel Selectors) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}

	p := &Page{doc: doc, sel: sel}
	p.cards = doc.Find(sel.Card)
	p.cards.Each(func(i int, s *goquery.Selection) {
		p.listings = append(p.listings, p.readCard(i, s))
	})
	return p, nil
}

// LoadString is Load for an in-memory page.
func LoadString(html string, sel Selectors) (*Page, error) {
	return Load(strings.NewReader(html), sel)
}

func (p *Page) readCard(i int, s *goquery.Selection) listing.Listing {
	l := listing.Listing{
		ID:       strings.TrimSpace(s.AttrOr(p.sel.IDAttr, "")),
		Location: strings.TrimSpace(s.AttrOr(p.sel.LocAttr, "")),
		Type:     strings.TrimSpace(s.AttrOr(p.sel.TypeAttr, "")),
	}

	title, ok := s.Attr(p.sel.TitleAttr)
	if !ok {
		title = s.Find(p.sel.CardTitle).First().Text()
	}
	l.Title = strings.TrimSpace(title)

	raw := s.AttrOr(p.sel.PriceAttr, "")
	price, ok := listing.ParsePrice(raw)
	switch {
	case !ok:
		p.warnings = append(p.warnings, fmt.Sprintf("card %d: price %q is not a number, using 0", i, raw))
	case price < 0:
		p.warnings = append(p.warnings, fmt.Sprintf("card %d: negative price %q, using 0", i, raw))
	default:
		l.Price = price
	}
	return l
}

// Listings returns a copy of the cards' records in document order.
func (p *Page) Listings() []listing.Listing {
	out := make([]listing.Listing, len(p.listings))
	copy(out, p.listings)
	return out
}

// Warnings lists cards whose data had to be normalized.
func (p *Page) Warnings() []string {
	return p.warnings
}

// Inputs reads the current filter form values.
func (p *Page) Inputs() listing.FilterInputs {
	return listing.FilterInputs{
		Search:   p.fieldValue(p.sel.Search),
		Location: p.fieldValue(p.sel.Location),
		Type:     p.fieldValue(p.sel.Type),
		MinPrice: p.fieldValue(p.sel.MinPrice),
		MaxPrice: p.fieldValue(p.sel.MaxPrice),
	}
}

func (p *Page) fieldValue(selector string) string {
	field := p.doc.Find(selector).First()
	if field.Length() == 0 {
		return ""
	}
	if goquery.NodeName(field) != "select" {
		return field.AttrOr("value", "")
	}

	option := field.Find("option[selected]").First()
	if option.Length() == 0 {
		option = field.Find("option").First()
	}
	if v, ok := option.Attr("value"); ok {
		return v
	}
	return strings.TrimSpace(option.Text())
}

// Render shows or hides each card and the no-results message.
func (p *Page) Render(_ context.Context, result listing.VisibilityResult) error {
	if len(result.Visible) != p.cards.Length() {
		return fmt.Errorf("%d results for %d cards", len(result.Visible), p.cards.Length())
	}

	p.cards.Each(func(i int, s *goquery.Selection) {
		setVisible(s, result.Visible[i])
	})
	setVisible(p.doc.Find(p.sel.NoResults), result.NoResults())
	return nil
}

// ResetInputs writes inputs into the filter form.
func (p *Page) ResetInputs(_ context.Context, inputs listing.FilterInputs) error {
	p.setField(p.sel.Search, inputs.Search)
	p.setField(p.sel.Location, inputs.Location)
	p.setField(p.sel.Type, inputs.Type)
	p.setField(p.sel.MinPrice, inputs.MinPrice)
	p.setField(p.sel.MaxPrice, inputs.MaxPrice)
	return nil
}

func (p *Page) setField(selector, value string) {
	field := p.doc.Find(selector).First()
	if field.Length() == 0 {
		return
	}
	if goquery.NodeName(field) != "select" {
		field.SetAttr("value", value)
		return
	}

	options := field.Find("option")
	options.RemoveAttr("selected")
	options.EachWithBreak(func(_ int, o *goquery.Selection) bool {
		v, ok := o.Attr("value")
		if !ok {
			v = strings.TrimSpace(o.Text())
		}
		if v == value {
			o.SetAttr("selected", "selected")
			return false
		}
		return true
	})
}

// HTML serializes the current document.
func (p *Page) HTML() (string, error) {
	return goquery.OuterHtml(p.doc.Selection)
}

func setVisible(s *goquery.Selection, visible bool) {
	if visible {
		s.RemoveAttr(hiddenAttr).RemoveClass(hiddenClass)
		return
	}
	s.SetAttr(hiddenAttr, "").AddClass(hiddenClass)
}
