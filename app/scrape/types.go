package scrape

import (
	"context"
	"fmt"
	"net/url"

	"github.com/savemoney/brochures/app/config"
)

// Candidate is one currently-published brochure discovered on a
// retailer's site: the page that listed it and the resolved PDF link.
type Candidate struct {
	SourceURL string
	PDFURL    string
}

// PageFetcher loads a page, waits for waitSelector to appear, and
// returns the rendered HTML. Implemented by a headless-browser session;
// tests substitute a fixture-backed fake.
type PageFetcher interface {
	Fetch(ctx context.Context, pageURL string, waitSelector string) (string, error)
}

// Adapter holds one retailer's discovery logic. Discover returns the
// deduplicated set of currently-published brochures; an empty result is
// valid. Adapters never write to the catalog or document store.
type Adapter interface {
	Store() string
	Discover(ctx context.Context, fetcher PageFetcher) ([]Candidate, error)
}

// Factory builds an adapter from a store configuration.
type Factory func(store *config.Store) Adapter

var registry = map[string]Factory{}

func Register(kind string, factory Factory) {
	registry[kind] = factory
}

// New builds the adapter for a configured store, keyed by its adapter kind.
func New(store *config.Store) (Adapter, error) {
	factory, ok := registry[store.Adapter]
	if !ok {
		return nil, fmt.Errorf("unknown adapter kind '%s' for store '%s'", store.Adapter, store.Name)
	}
	return factory(store), nil
}

// Registered reports whether an adapter kind is known.
func Registered(kind string) bool {
	_, ok := registry[kind]
	return ok
}

// resolveURL turns a possibly-relative href into an absolute URL
// against the page it was found on.
func resolveURL(pageURL, href string) (string, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("invalid page URL: %w", err)
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("invalid href: %w", err)
	}
	return base.ResolveReference(ref).String(), nil
}

// uniqueStrings removes duplicates while preserving first-seen order.
func uniqueStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	unique := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		unique = append(unique, v)
	}
	return unique
}
