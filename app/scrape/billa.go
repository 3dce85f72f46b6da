package scrape

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/savemoney/brochures/app/config"
)

func init() {
	Register("billa", func(store *config.Store) Adapter {
		return &BillaAdapter{store: store}
	})
}

// BillaAdapter discovers the weekly brochure on billa.bg. The promo page
// embeds a third-party viewer in an iframe; the frame document carries a
// direct PDF download link. Billa publishes a single current brochure,
// so the listing page itself is the source URL.
type BillaAdapter struct {
	store *config.Store
}

func (a *BillaAdapter) Store() string {
	return a.store.Name
}

func (a *BillaAdapter) Discover(ctx context.Context, fetcher PageFetcher) ([]Candidate, error) {
	html, err := fetcher.Fetch(ctx, a.store.URL, "iframe")
	if err != nil {
		return nil, fmt.Errorf("failed to load listing page: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse listing page: %w", err)
	}

	frameSrc, ok := doc.Find("iframe").First().Attr("src")
	if !ok || frameSrc == "" {
		return nil, fmt.Errorf("no viewer iframe on listing page")
	}

	frameURL, err := resolveURL(a.store.URL, frameSrc)
	if err != nil {
		return nil, fmt.Errorf("invalid viewer iframe src: %w", err)
	}

	frameHTML, err := fetcher.Fetch(ctx, frameURL, `a#downloadAsPdf[href$=".pdf"]`)
	if err != nil {
		return nil, fmt.Errorf("failed to load viewer frame: %w", err)
	}

	frameDoc, err := goquery.NewDocumentFromReader(strings.NewReader(frameHTML))
	if err != nil {
		return nil, fmt.Errorf("failed to parse viewer frame: %w", err)
	}

	href, ok := frameDoc.Find("a#downloadAsPdf").First().Attr("href")
	if !ok || href == "" {
		return nil, fmt.Errorf("no PDF download link in viewer frame")
	}

	pdfURL, err := resolveURL(frameURL, href)
	if err != nil {
		return nil, fmt.Errorf("invalid PDF link: %w", err)
	}

	return []Candidate{{SourceURL: a.store.URL, PDFURL: pdfURL}}, nil
}
