package api

import (
	"time"

	"github.com/savemoney/brochures/app/config"
	"github.com/savemoney/brochures/app/database"
	"github.com/savemoney/brochures/app/ingest"
)

type Handler struct {
	repo       database.BrochureRepository
	storeCache *config.Cache
	ingester   *ingest.Ingester
	sweeper    *ingest.Sweeper
	verifier   SessionVerifier
	scrapeHour int
	version    string
}

// BrochureResponse is the catalog row shape served to clients;
// timestamps are ISO-8601.
type BrochureResponse struct {
	ID         string `json:"id"`
	StoreName  string `json:"store_name"`
	SourceURL  string `json:"source_url"`
	PDFURL     string `json:"pdf_url"`
	FileName   string `json:"file_name"`
	UploadedAt string `json:"uploaded_at"`
	ExpiresAt  string `json:"expires_at"`
	Archived   bool   `json:"archived"`
}

func newBrochureResponse(b database.Brochure) BrochureResponse {
	return BrochureResponse{
		ID:         b.ID,
		StoreName:  b.StoreName,
		SourceURL:  b.SourceURL,
		PDFURL:     b.PDFURL,
		FileName:   b.FileName,
		UploadedAt: b.UploadedAt.UTC().Format(time.RFC3339),
		ExpiresAt:  b.ExpiresAt.UTC().Format(time.RFC3339),
		Archived:   b.Archived,
	}
}

// StoreRunResponse is one retailer's outcome within a scrape cycle.
type StoreRunResponse struct {
	Store   string         `json:"store"`
	Summary ingest.Summary `json:"summary"`
	Error   string         `json:"error,omitempty"`
}

func newStoreRunResponses(results []ingest.StoreResult) []StoreRunResponse {
	responses := make([]StoreRunResponse, 0, len(results))
	for _, r := range results {
		resp := StoreRunResponse{Store: r.Store, Summary: r.Summary}
		if r.Err != nil {
			resp.Error = r.Err.Error()
		}
		responses = append(responses, resp)
	}
	return responses
}
