package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/savemoney/brochures/app/config"
	"github.com/savemoney/brochures/app/database"
	"github.com/savemoney/brochures/app/scrape"
	"github.com/savemoney/brochures/app/storage"
)

const downloadTimeout = 60 * time.Second

// Ingester turns one retailer's discovery results into catalog and
// document store mutations. Candidates are processed independently;
// the archive-diff reconciliation runs strictly after all of them.
type Ingester struct {
	repo        database.BrochureRepository
	docs        storage.DocumentStore
	sessions    SessionFactory
	httpClient  *http.Client
	userAgent   string
	validatePDF func(data []byte) error
}

func NewIngester(repo database.BrochureRepository, docs storage.DocumentStore,
	sessions SessionFactory, httpClient *http.Client, userAgent string) *Ingester {
	return &Ingester{
		repo:        repo,
		docs:        docs,
		sessions:    sessions,
		httpClient:  httpClient,
		userAgent:   userAgent,
		validatePDF: validatePDF,
	}
}

// Run executes one retailer ingestion: discovery, per-candidate
// dedup/download/upload/insert, then archive-diff. A candidate failure
// never aborts the run; a discovery or archive-diff failure does, but
// rows inserted before the failure remain valid.
func (ing *Ingester) Run(ctx context.Context, adapter scrape.Adapter, store *config.Store) (Summary, error) {
	summary := Summary{Store: adapter.Store()}
	startedAt := time.Now()

	session, err := ing.sessions.NewSession(ctx,
		time.Duration(store.Settings.Timeout)*time.Second,
		time.Duration(store.Settings.SelectorTimeout)*time.Second)
	if err != nil {
		return summary, fmt.Errorf("failed to acquire browser session: %w", err)
	}
	defer session.Close()

	candidates, err := adapter.Discover(ctx, session)
	if err != nil {
		return summary, fmt.Errorf("discovery failed: %w", err)
	}
	summary.Discovered = len(candidates)

	retention := time.Duration(store.Settings.RetentionDays) * 24 * time.Hour

	for _, candidate := range candidates {
		inserted, err := ing.processCandidate(ctx, adapter.Store(), candidate, retention)
		if err != nil {
			summary.Failed++
			slog.Warn("Skipping brochure candidate",
				"store", adapter.Store(), "source_url", candidate.SourceURL, "error", err)
			continue
		}
		if inserted {
			summary.New++
		} else {
			summary.Skipped++
		}
	}

	archivedIDs, err := ing.archiveMissing(adapter.Store(), candidates)
	if err != nil {
		return summary, fmt.Errorf("archive-diff failed: %w", err)
	}
	summary.Archived = len(archivedIDs)

	slog.Info("Ingestion run completed",
		"store", adapter.Store(),
		"duration", time.Since(startedAt),
		"discovered", summary.Discovered,
		"new", summary.New,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
		"archived", summary.Archived)

	return summary, nil
}

// RunAll ingests every enabled store sequentially in configuration
// order. One retailer's failure is recorded in its result and does not
// prevent the remaining retailers from running.
func (ing *Ingester) RunAll(ctx context.Context, stores []*config.Store) []StoreResult {
	results := make([]StoreResult, 0, len(stores))

	for _, store := range stores {
		adapter, err := scrape.New(store)
		if err != nil {
			slog.Error("Store has no usable adapter", "store", store.Name, "error", err)
			results = append(results, StoreResult{Store: store.Name, Err: err})
			continue
		}

		summary, err := ing.Run(ctx, adapter, store)
		if err != nil {
			slog.Error("Ingestion run failed", "store", store.Name, "error", err)
		}
		results = append(results, StoreResult{Store: store.Name, Summary: summary, Err: err})
	}

	return results
}

// processCandidate reports whether a new catalog row was inserted.
// (false, nil) means the candidate was already known or already stored.
func (ing *Ingester) processCandidate(ctx context.Context, storeName string, candidate scrape.Candidate, retention time.Duration) (bool, error) {
	existing, err := ing.repo.GetBySourceURL(storeName, candidate.SourceURL)
	if err != nil {
		return false, fmt.Errorf("failed to check catalog: %w", err)
	}
	if existing != nil {
		return false, nil
	}

	data, err := ing.download(ctx, candidate.PDFURL)
	if err != nil {
		return false, fmt.Errorf("failed to download PDF: %w", err)
	}

	if err := ing.validatePDF(data); err != nil {
		return false, fmt.Errorf("downloaded document is not a valid PDF: %w", err)
	}

	now := time.Now().UTC()
	fileName := GenerateFileName(storeName, now)

	err = ing.docs.Upload(ctx, fileName, data)
	if errors.Is(err, storage.ErrObjectExists) {
		// Presumed stored by a prior run; not a failure
		slog.Debug("Document already stored", "store", storeName, "file_name", fileName)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to upload document: %w", err)
	}

	_, err = ing.repo.Insert(database.Brochure{
		StoreName:  storeName,
		SourceURL:  candidate.SourceURL,
		PDFURL:     candidate.PDFURL,
		FileName:   fileName,
		UploadedAt: now,
		ExpiresAt:  now.Add(retention),
	})
	if err != nil {
		if isUniqueViolation(err) {
			// A concurrent run inserted the same source URL between our
			// check and insert; check-then-act races are tolerated
			slog.Debug("Brochure inserted concurrently", "store", storeName, "source_url", candidate.SourceURL)
			return false, nil
		}
		return false, fmt.Errorf("failed to insert catalog row: %w", err)
	}

	return true, nil
}

// archiveMissing retires non-archived catalog rows whose source pages
// are no longer listed on the retailer's site.
func (ing *Ingester) archiveMissing(storeName string, candidates []scrape.Candidate) ([]string, error) {
	active, err := ing.repo.ListActive(storeName)
	if err != nil {
		return nil, fmt.Errorf("failed to list active brochures: %w", err)
	}

	listed := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		listed[c.SourceURL] = struct{}{}
	}

	var stale []string
	for _, b := range active {
		if _, ok := listed[b.SourceURL]; !ok {
			stale = append(stale, b.ID)
		}
	}

	if err := ing.repo.ArchiveByIDs(stale); err != nil {
		return nil, err
	}

	return stale, nil
}

func (ing *Ingester) download(ctx context.Context, pdfURL string) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, downloadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", pdfURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", ing.userAgent)

	resp, err := ing.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}

func validatePDF(data []byte) error {
	return api.Validate(bytes.NewReader(data), nil)
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
