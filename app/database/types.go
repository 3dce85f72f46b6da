package database

import (
	"time"
)

// Brochure is one promotional document from one retailer for one
// publication period. Rows are never deleted; lifecycle state is
// tracked through the archived flag.
type Brochure struct {
	ID         string // Database UUID
	StoreName  string // Retailer identifier from store configuration
	SourceURL  string // Retailer page that listed this brochure (dedup key)
	PDFURL     string // Resolved downloadable document reference
	FileName   string // Generated document store key, write-once
	UploadedAt time.Time
	ExpiresAt  time.Time // UploadedAt + retention window, fixed at insert
	Archived   bool
	CreatedAt  time.Time
}

// ListFilter narrows the brochure listing. Store matches store_name
// case-insensitively as a substring.
type ListFilter struct {
	Store           string
	IncludeArchived bool
}
