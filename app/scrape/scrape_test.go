package scrape

import (
	"context"
	"errors"
	"testing"

	"github.com/savemoney/brochures/app/config"
)

// fakeFetcher serves canned HTML per URL, standing in for the browser session
type fakeFetcher struct {
	pages map[string]string
	errs  map[string]error
	calls []string
}

func (f *fakeFetcher) Fetch(ctx context.Context, pageURL string, waitSelector string) (string, error) {
	f.calls = append(f.calls, pageURL)
	if err, ok := f.errs[pageURL]; ok {
		return "", err
	}
	html, ok := f.pages[pageURL]
	if !ok {
		return "", errors.New("page not found: " + pageURL)
	}
	return html, nil
}

func storeConfig(name, adapter, url string) *config.Store {
	return &config.Store{
		Name:    name,
		Adapter: adapter,
		URL:     url,
		Settings: config.StoreSettings{
			Enabled:         true,
			RetentionDays:   7,
			Timeout:         60,
			SelectorTimeout: 15,
		},
	}
}

func TestRegistry_KnownKinds(t *testing.T) {
	for _, kind := range []string{"lidl", "kaufland", "billa"} {
		if !Registered(kind) {
			t.Errorf("Adapter kind '%s' should be registered", kind)
		}
		adapter, err := New(storeConfig("Test", kind, "https://example.com"))
		if err != nil {
			t.Errorf("New failed for kind '%s': %v", kind, err)
		}
		if adapter.Store() != "Test" {
			t.Errorf("Expected store 'Test', got '%s'", adapter.Store())
		}
	}
}

func TestRegistry_UnknownKind(t *testing.T) {
	if Registered("metro") {
		t.Error("Adapter kind 'metro' should not be registered")
	}
	if _, err := New(storeConfig("Metro", "metro", "https://example.com")); err == nil {
		t.Error("Expected error for unknown adapter kind")
	}
}

func TestLidlAdapter_Discover(t *testing.T) {
	listingURL := "https://www.lidl.bg/c/broshura/s10020060"
	menuA := "https://www.lidl.bg/l/bg/broshura/broshura-12-08/view/menu/page/1"
	menuB := "https://www.lidl.bg/l/bg/broshura/broshura-19-08/view/menu/page/1"

	fetcher := &fakeFetcher{pages: map[string]string{
		listingURL: `<html><body>
			<a class="flyer" href="https://www.lidl.bg/c/broshura/broshura-12-08/a1">one</a>
			<a class="flyer" href="https://www.lidl.bg/c/broshura/broshura-12-08/a1">duplicate</a>
			<a class="flyer" href="https://www.lidl.bg/c/broshura/broshura-19-08/a2">two</a>
			<a class="flyer" href="https://www.lidl.bg/c/akcii">not a brochure</a>
		</body></html>`,
		menuA: `<html><body><section class="menu">
			<a class="menu-item__button" href="https://endpoints.lidl.com/pdf/broshura-12-08.pdf">PDF</a>
		</section></body></html>`,
		menuB: `<html><body><section class="menu">
			<a class="menu-item__button" href="/pdf/broshura-19-08.pdf">PDF</a>
		</section></body></html>`,
	}}

	adapter, err := New(storeConfig("Lidl", "lidl", listingURL))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	candidates, err := adapter.Discover(context.Background(), fetcher)
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}

	if len(candidates) != 2 {
		t.Fatalf("Expected 2 candidates, got %d: %v", len(candidates), candidates)
	}
	if candidates[0].SourceURL != menuA {
		t.Errorf("Expected source URL '%s', got '%s'", menuA, candidates[0].SourceURL)
	}
	if candidates[0].PDFURL != "https://endpoints.lidl.com/pdf/broshura-12-08.pdf" {
		t.Errorf("Unexpected PDF URL: %s", candidates[0].PDFURL)
	}
	// Relative PDF link resolved against the menu page
	if candidates[1].PDFURL != "https://www.lidl.bg/pdf/broshura-19-08.pdf" {
		t.Errorf("Unexpected resolved PDF URL: %s", candidates[1].PDFURL)
	}
}

func TestLidlAdapter_Discover_CandidateIsolation(t *testing.T) {
	listingURL := "https://www.lidl.bg/c/broshura/s10020060"
	menuA := "https://www.lidl.bg/l/bg/broshura/broshura-12-08/view/menu/page/1"
	menuB := "https://www.lidl.bg/l/bg/broshura/broshura-19-08/view/menu/page/1"

	fetcher := &fakeFetcher{
		pages: map[string]string{
			listingURL: `<html><body>
				<a class="flyer" href="https://www.lidl.bg/c/broshura/broshura-12-08/a1">one</a>
				<a class="flyer" href="https://www.lidl.bg/c/broshura/broshura-19-08/a2">two</a>
			</body></html>`,
			menuB: `<html><body>
				<a class="menu-item__button" href="/pdf/broshura-19-08.pdf">PDF</a>
			</body></html>`,
		},
		errs: map[string]error{
			menuA: errors.New("timeout waiting for selector"),
		},
	}

	adapter, _ := New(storeConfig("Lidl", "lidl", listingURL))
	candidates, err := adapter.Discover(context.Background(), fetcher)
	if err != nil {
		t.Fatalf("Discover should not fail when one candidate fails: %v", err)
	}
	if len(candidates) != 1 {
		t.Fatalf("Expected 1 candidate, got %d", len(candidates))
	}
	if candidates[0].SourceURL != menuB {
		t.Errorf("Expected surviving candidate '%s', got '%s'", menuB, candidates[0].SourceURL)
	}
}

func TestLidlAdapter_Discover_ListingFailure(t *testing.T) {
	listingURL := "https://www.lidl.bg/c/broshura/s10020060"
	fetcher := &fakeFetcher{errs: map[string]error{listingURL: errors.New("unreachable")}}

	adapter, _ := New(storeConfig("Lidl", "lidl", listingURL))
	if _, err := adapter.Discover(context.Background(), fetcher); err == nil {
		t.Error("Expected error when the listing page is unreachable")
	}
}

func TestLidlAdapter_Discover_EmptyListing(t *testing.T) {
	listingURL := "https://www.lidl.bg/c/broshura/s10020060"
	fetcher := &fakeFetcher{pages: map[string]string{
		listingURL: `<html><body><p>No brochures this week</p></body></html>`,
	}}

	adapter, _ := New(storeConfig("Lidl", "lidl", listingURL))
	candidates, err := adapter.Discover(context.Background(), fetcher)
	if err != nil {
		t.Fatalf("Empty listing should not be an error: %v", err)
	}
	if len(candidates) != 0 {
		t.Errorf("Expected 0 candidates, got %d", len(candidates))
	}
}

func TestKauflandTransform(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"https://www.kaufland.bg/broshuri/ar/", "https://www.kaufland.bg/broshuri/view/flyer/page/1"},
		{"https://www.kaufland.bg/broshuri.html", ""},
	}
	for _, tt := range tests {
		if got := transformKauflandURL(tt.raw); got != tt.want {
			t.Errorf("transformKauflandURL(%s) = %s, want %s", tt.raw, got, tt.want)
		}
	}
}

func TestKauflandAdapter_Discover(t *testing.T) {
	listingURL := "https://www.kaufland.bg/broshuri.html"
	flyerURL := "https://www.kaufland.bg/broshuri/view/flyer/page/1"
	menuURL := "https://www.kaufland.bg/broshuri/view/menu/page/1"

	fetcher := &fakeFetcher{pages: map[string]string{
		listingURL: `<html><body>
			<a class="m-flyer-tile__link" href="https://www.kaufland.bg/broshuri/ar/">flyer</a>
			<a class="m-flyer-tile__link" href="https://www.kaufland.bg/uslugi.html">not a flyer</a>
		</body></html>`,
		flyerURL: `<html><body>viewer</body></html>`,
		menuURL: `<html><body>
			<a class="menu-item__button" href="https://media.kaufland.com/pdf/week-34.pdf">PDF</a>
		</body></html>`,
	}}

	adapter, err := New(storeConfig("Kaufland", "kaufland", listingURL))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	candidates, err := adapter.Discover(context.Background(), fetcher)
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	if len(candidates) != 1 {
		t.Fatalf("Expected 1 candidate, got %d", len(candidates))
	}
	if candidates[0].SourceURL != menuURL {
		t.Errorf("Expected source URL '%s', got '%s'", menuURL, candidates[0].SourceURL)
	}
	if candidates[0].PDFURL != "https://media.kaufland.com/pdf/week-34.pdf" {
		t.Errorf("Unexpected PDF URL: %s", candidates[0].PDFURL)
	}

	// The flyer view must be visited before the menu view
	var flyerIdx, menuIdx int
	for i, call := range fetcher.calls {
		switch call {
		case flyerURL:
			flyerIdx = i
		case menuURL:
			menuIdx = i
		}
	}
	if flyerIdx >= menuIdx {
		t.Errorf("Flyer page should be visited before the menu page, calls: %v", fetcher.calls)
	}
}

func TestKauflandAdapter_Discover_MenuFailureIsolated(t *testing.T) {
	listingURL := "https://www.kaufland.bg/broshuri.html"
	flyerURL := "https://www.kaufland.bg/broshuri/view/flyer/page/1"
	menuURL := "https://www.kaufland.bg/broshuri/view/menu/page/1"

	fetcher := &fakeFetcher{
		pages: map[string]string{
			listingURL: `<html><body>
				<a class="m-flyer-tile__link" href="https://www.kaufland.bg/broshuri/ar/">flyer</a>
			</body></html>`,
			flyerURL: `<html><body>viewer</body></html>`,
		},
		errs: map[string]error{menuURL: errors.New("timeout waiting for selector")},
	}

	adapter, _ := New(storeConfig("Kaufland", "kaufland", listingURL))
	candidates, err := adapter.Discover(context.Background(), fetcher)
	if err != nil {
		t.Fatalf("Discover should not fail when the menu page fails: %v", err)
	}
	if len(candidates) != 0 {
		t.Errorf("Expected 0 candidates, got %d", len(candidates))
	}
}

func TestBillaAdapter_Discover(t *testing.T) {
	listingURL := "https://www.billa.bg/promocii/sedmichna-broshura"
	frameURL := "https://view.publitas.com/billa/weekly-34"

	fetcher := &fakeFetcher{pages: map[string]string{
		listingURL: `<html><body>
			<iframe src="https://view.publitas.com/billa/weekly-34"></iframe>
		</body></html>`,
		frameURL: `<html><body>
			<a id="downloadAsPdf" href="/billa/weekly-34/download.pdf">Download</a>
		</body></html>`,
	}}

	adapter, err := New(storeConfig("Billa", "billa", listingURL))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	candidates, err := adapter.Discover(context.Background(), fetcher)
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	if len(candidates) != 1 {
		t.Fatalf("Expected 1 candidate, got %d", len(candidates))
	}
	// Billa's source URL is the listing page itself
	if candidates[0].SourceURL != listingURL {
		t.Errorf("Expected source URL '%s', got '%s'", listingURL, candidates[0].SourceURL)
	}
	if candidates[0].PDFURL != "https://view.publitas.com/billa/weekly-34/download.pdf" {
		t.Errorf("Unexpected PDF URL: %s", candidates[0].PDFURL)
	}
}

func TestBillaAdapter_Discover_NoIframe(t *testing.T) {
	listingURL := "https://www.billa.bg/promocii/sedmichna-broshura"
	fetcher := &fakeFetcher{pages: map[string]string{
		listingURL: `<html><body><p>maintenance</p></body></html>`,
	}}

	adapter, _ := New(storeConfig("Billa", "billa", listingURL))
	if _, err := adapter.Discover(context.Background(), fetcher); err == nil {
		t.Error("Expected error when the viewer iframe is missing")
	}
}
