package ingest

import (
	"context"
	"time"
)

// Session is a scoped browser resource used for one retailer run.
// Close must be called on every exit path.
type Session interface {
	Fetch(ctx context.Context, pageURL string, waitSelector string) (string, error)
	Close()
}

// SessionFactory acquires a browser session with the retailer's
// configured navigation bounds.
type SessionFactory interface {
	NewSession(ctx context.Context, navTimeout, selectorTimeout time.Duration) (Session, error)
}

// Summary describes the outcome of one retailer ingestion run.
type Summary struct {
	Store      string `json:"store"`
	Discovered int    `json:"discovered"`
	New        int    `json:"new"`
	Skipped    int    `json:"skipped"`
	Failed     int    `json:"failed"`
	Archived   int    `json:"archived"`
}

// StoreResult pairs a retailer with its run outcome inside an
// ingest-all cycle. Err is set when the whole retailer run failed;
// other retailers in the cycle are unaffected.
type StoreResult struct {
	Store   string
	Summary Summary
	Err     error
}

// SweepResult describes one expiration sweep.
type SweepResult struct {
	Count int      `json:"count"`
	IDs   []string `json:"archived_ids"`
}
