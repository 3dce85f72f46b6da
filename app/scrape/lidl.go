package scrape

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/savemoney/brochures/app/config"
)

func init() {
	Register("lidl", func(store *config.Store) Adapter {
		return &LidlAdapter{store: store}
	})
}

// LidlAdapter discovers brochures on lidl.bg. The listing page carries
// flyer tiles whose URLs embed a publication-period segment; the menu
// view for that segment links the downloadable PDF directly.
type LidlAdapter struct {
	store *config.Store
}

var lidlPeriodPattern = regexp.MustCompile(`broshura/([^/]+)/`)

func (a *LidlAdapter) Store() string {
	return a.store.Name
}

func (a *LidlAdapter) Discover(ctx context.Context, fetcher PageFetcher) ([]Candidate, error) {
	html, err := fetcher.Fetch(ctx, a.store.URL, "a.flyer")
	if err != nil {
		return nil, fmt.Errorf("failed to load listing page: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse listing page: %w", err)
	}

	var links []string
	doc.Find("a.flyer").Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok || !strings.Contains(href, "/broshura/") {
			return
		}
		absolute, err := resolveURL(a.store.URL, href)
		if err != nil {
			slog.Warn("Skipping malformed flyer link", "store", a.store.Name, "href", href, "error", err)
			return
		}
		links = append(links, absolute)
	})

	base, err := url.Parse(a.store.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid listing URL: %w", err)
	}

	var candidates []Candidate
	for _, link := range uniqueStrings(links) {
		match := lidlPeriodPattern.FindStringSubmatch(link)
		if match == nil || match[1] == "" {
			slog.Warn("Skipping flyer without a publication segment", "store", a.store.Name, "link", link)
			continue
		}

		menuURL := fmt.Sprintf("%s://%s/l/bg/broshura/%s/view/menu/page/1", base.Scheme, base.Host, match[1])

		pdfURL, err := a.resolvePDF(ctx, fetcher, menuURL)
		if err != nil {
			slog.Warn("Skipping brochure", "store", a.store.Name, "menu_url", menuURL, "error", err)
			continue
		}

		candidates = append(candidates, Candidate{SourceURL: menuURL, PDFURL: pdfURL})
	}

	return candidates, nil
}

func (a *LidlAdapter) resolvePDF(ctx context.Context, fetcher PageFetcher, menuURL string) (string, error) {
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
