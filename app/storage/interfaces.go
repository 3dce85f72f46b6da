package storage

import (
	"context"
	"errors"
)

// ErrObjectExists is returned by Upload when the key is already taken.
// Uploads are write-once: an existing object is never overwritten.
var ErrObjectExists = errors.New("object already exists")

// DocumentStore is durable object storage for brochure PDFs, addressed
// by generated file names.
type DocumentStore interface {
	Upload(ctx context.Context, name string, data []byte) error
	PublicURL(name string) string
}
