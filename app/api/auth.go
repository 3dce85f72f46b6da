package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrInvalidSession marks a token the auth service rejected, as opposed
// to the auth service itself being unreachable.
var ErrInvalidSession = errors.New("invalid session")

// SessionVerifier checks a caller's session token against the external
// auth collaborator. Only the boundary lives here; token validation
// logic belongs to the auth service.
type SessionVerifier interface {
	Verify(ctx context.Context, token string) error
}

// HTTPSessionVerifier asks a remote endpoint to validate the bearer token.
type HTTPSessionVerifier struct {
	verifyURL  string
	httpClient *http.Client
}

var _ SessionVerifier = (*HTTPSessionVerifier)(nil)

func NewHTTPSessionVerifier(verifyURL string) *HTTPSessionVerifier {
	return &HTTPSessionVerifier{
		verifyURL:  verifyURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (v *HTTPSessionVerifier) Verify(ctx context.Context, token string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.verifyURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create verification request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach auth service: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return ErrInvalidSession
	default:
		return fmt.Errorf("auth service returned status %d", resp.StatusCode)
	}
}
