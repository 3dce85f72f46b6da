package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// BucketStore talks to a Supabase-style storage REST API. Objects are
// uploaded with upsert disabled, so a duplicate key comes back as an
// HTTP conflict and is mapped to ErrObjectExists.
type BucketStore struct {
	baseURL    string
	bucket     string
	serviceKey string
	httpClient *http.Client
}

var _ DocumentStore = (*BucketStore)(nil)

func NewBucketStore(baseURL, bucket, serviceKey string) *BucketStore {
	return &BucketStore{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		bucket:     bucket,
		serviceKey: serviceKey,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

func (s *BucketStore) Upload(ctx context.Context, name string, data []byte) error {
	uploadURL := fmt.Sprintf("%s/object/%s/%s", s.baseURL, s.bucket, url.PathEscape(name))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create upload request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+s.serviceKey)
	req.Header.Set("Content-Type", "application/pdf")
	req.Header.Set("x-upsert", "false")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to upload document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusConflict {
		return ErrObjectExists
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		if strings.Contains(string(body), "already exists") {
			return ErrObjectExists
		}
		return fmt.Errorf("upload failed with status %d: %s", resp.StatusCode, string(body))
	}

	return nil
}

func (s *BucketStore) PublicURL(name string) string {
	return fmt.Sprintf("%s/object/public/%s/%s", s.baseURL, s.bucket, url.PathEscape(name))
}
