package entitlement

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"server/internal/domain"
)

const httpResolverDefaultTimeout = 5 * time.Second

// HTTPOptions configures an HTTPResolver.
type HTTPOptions struct {
	URL        string
	APIKey     string
	HTTPClient *http.Client
}

// HTTPResolver asks an external policy endpoint for a user's tier. The
// endpoint receives {"user_id": "..."} and answers {"tier": "free"|"premium"}.
// Every failure mode (transport, status, decode, unknown label) resolves to
// domain.ErrResolutionFailure so callers deny rather than guess.
type HTTPResolver struct {
	url    string
	apiKey string
	client *http.Client
}

func NewHTTPResolver(opts HTTPOptions) *HTTPResolver {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: httpResolverDefaultTimeout}
	}
	return &HTTPResolver{url: opts.URL, apiKey: opts.APIKey, client: client}
}

type tierLookupRequest struct {
	UserID string `json:"user_id"`
}

type tierLookupResponse struct {
	Tier string `json:"tier"`
}

func (r *HTTPResolver) ResolveTier(ctx context.Context, userID string) (domain.Tier, error) {
	body, err := json.Marshal(tierLookupRequest{UserID: userID})
	if err != nil {
		return "", fmt.Errorf("%w: encode lookup: %v", domain.ErrResolutionFailure, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: build lookup request: %v", domain.ErrResolutionFailure, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if r.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+r.apiKey)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: policy lookup unreachable: %v", domain.ErrResolutionFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: policy lookup status %d", domain.ErrResolutionFailure, resp.StatusCode)
	}

	var payload tierLookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("%w: decode lookup response: %v", domain.ErrResolutionFailure, err)
	}

	tier, ok := domain.ParseTier(payload.Tier)
	if !ok {
		return "", fmt.Errorf("%w: unknown tier label %q", domain.ErrResolutionFailure, payload.Tier)
	}
	return tier, nil
}
