package database

import (
	"time"
)

type BrochureRepository interface {
	Insert(b Brochure) (string, error)

	GetByID(id string) (*Brochure, error)
	GetBySourceURL(storeName, sourceURL string) (*Brochure, error)
	List(filter ListFilter) ([]Brochure, error)
	ListActive(storeName string) ([]Brochure, error)

	ArchiveByIDs(ids []string) error
	ArchiveExpired(now time.Time) ([]string, error)

	GetBrochureCount() (int, error)
	GetActiveBrochureCount() (int, error)
}
