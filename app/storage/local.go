package storage

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore keeps documents on the local filesystem. Used for
// development and single-node deployments.
type LocalStore struct {
	dir     string
	baseURL string
}

var _ DocumentStore = (*LocalStore)(nil)

func NewLocalStore(dir, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalStore{dir: dir, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

func (s *LocalStore) Upload(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path := filepath.Join(s.dir, filepath.Base(name))

	// O_EXCL enforces the write-once contract
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if os.IsExist(err) {
			return ErrObjectExists
		}
		return fmt.Errorf("failed to create document file: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("failed to write document file: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close document file: %w", err)
	}

	return nil
}

func (s *LocalStore) PublicURL(name string) string {
	return s.baseURL + "/documents/" + url.PathEscape(name)
}
