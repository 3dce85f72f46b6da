package scrape

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/savemoney/brochures/app/config"
)

func init() {
	Register("kaufland", func(store *config.Store) Adapter {
		return &KauflandAdapter{store: store}
	})
}

// KauflandAdapter discovers brochures on kaufland.bg. Flyer tiles link
// to an /ar/ detail path; replacing that segment yields the viewer URL,
// whose menu view links the PDF. The flyer view is loaded first: the
// viewer only populates the menu after the flyer has initialized.
type KauflandAdapter struct {
	store *config.Store
}

func (a *KauflandAdapter) Store() string {
	return a.store.Name
}

func (a *KauflandAdapter) Discover(ctx context.Context, fetcher PageFetcher) ([]Candidate, error) {
	html, err := fetcher.Fetch(ctx, a.store.URL, "a.m-flyer-tile__link")
	if err != nil {
		return nil, fmt.Errorf("failed to load listing page: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse listing page: %w", err)
	}

	var links []string
	doc.Find("a.m-flyer-tile__link").Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok || !strings.Contains(href, "/ar/") {
			return
		}
		absolute, err := resolveURL(a.store.URL, href)
		if err != nil {
			slog.Warn("Skipping malformed flyer link", "store", a.store.Name, "href", href, "error", err)
			return
		}
		links = append(links, absolute)
	})

	var candidates []Candidate
	for _, link := range uniqueStrings(links) {
		flyerURL := transformKauflandURL(link)
		if flyerURL == "" {
			slog.Warn("Skipping invalid flyer URL", "store", a.store.Name, "link", link)
			continue
		}

		menuURL := strings.Replace(flyerURL, "/view/flyer/page/1", "/view/menu/page/1", 1)

		pdfURL, err := a.resolvePDF(ctx, fetcher, flyerURL, menuURL)
		if err != nil {
			slog.Warn("Skipping brochure", "store", a.store.Name, "menu_url", menuURL, "error", err)
			continue
		}

		candidates = append(candidates, Candidate{SourceURL: menuURL, PDFURL: pdfURL})
	}

	return candidates, nil
}

// transformKauflandURL rewrites a flyer tile link into the viewer URL
// for its first page. Links without the /ar/ segment are not brochures.
func transformKauflandURL(rawURL string) string {
	if !strings.Contains(rawURL, "/ar/") {
		return ""
	}
	return strings.Replace(rawURL, "/ar/", "/view/flyer/page/1", 1)
}

func (a *KauflandAdapter) resolvePDF(ctx context.Context, fetcher PageFetcher, flyerURL, menuURL string) (string, error) {
	if _, err := fetcher.Fetch(ctx, flyerURL, "body"); err != nil {
		return "", fmt.Errorf("failed to load flyer page: %w", err)
	}

	html, err := fetcher.Fetch(ctx, menuURL, `a.menu-item__button[href$=".pdf"]`)
	if err != nil {
		return "", fmt.Errorf("failed to load menu page: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse menu page: %w", err)
	}

	href, ok := doc.Find(`a.menu-item__button[href$=".pdf"]`).First().Attr("href")
	if !ok || href == "" {
		return "", fmt.Errorf("no PDF link on menu page")
	}

	return resolveURL(menuURL, href)
}
