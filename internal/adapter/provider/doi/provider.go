// Package doi fetches bibliographic metadata for a DOI from the
// Crossref REST API.
package doi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

const defaultBaseURL = "https://api.crossref.org/works"

// Provider resolves DOIs against the Crossref works endpoint.
type Provider struct {
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
}

// NewProvider creates a Provider with the default Crossref API URL.
func NewProvider(logger *slog.Logger) *Provider {
	return NewProviderWithURL(defaultBaseURL, logger)
}

// NewProviderWithURL creates a Provider with a custom base URL (for testing).
func NewProviderWithURL(baseURL string, logger *slog.Logger) *Provider {
	return &Provider{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		log:        logger.With("adapter", "doi"),
	}
}

// Lookup fetches the work registered under the given DOI and maps it to
// flat citation field values. Returns nil, nil if the DOI is not
// registered (HTTP 404).
func (p *Provider) Lookup(ctx context.Context, doi string) (map[string]string, error) {
	reqURL := p.baseURL + "/" + url.PathEscape(doi)

	p.log.DebugContext(ctx, "doi request", slog.String("doi", doi))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("doi: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.doWithRetry(ctx, req, doi)
	if err != nil {
		p.log.ErrorContext(ctx, "doi request failed", slog.String("doi", doi), slog.String("error", err.Error()))
		return nil, fmt.Errorf("doi: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("doi: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("doi: read body: %w", err)
	}

	var envelope apiEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("doi: decode json: %w", err)
	}

	fields := mapAPIResponse(envelope.Message)

	p.log.DebugContext(ctx, "doi response",
		slog.String("doi", doi),
		slog.Int("status", resp.StatusCode),
		slog.Int("fields", len(fields)),
	)

	return fields, nil
}

// doWithRetry executes the request with a single retry on 5xx or network errors.
func (p *Provider) doWithRetry(ctx context.Context, req *http.Request, doi string) (*http.Response, error) {
	resp, err := p.httpClient.Do(req)

	shouldRetry := err != nil || (resp != nil && resp.StatusCode >= 500)
	if !shouldRetry {
		return resp, err
	}

	// Don't retry if context is already cancelled.
	if ctx.Err() != nil {
		return resp, err
	}

	reason := "network error"
	if err == nil && resp != nil {
		reason = fmt.Sprintf("status %d", resp.StatusCode)
	}
	p.log.WarnContext(ctx, "doi retry", slog.String("doi", doi), slog.String("reason", reason))

	// Close body from the failed attempt before retrying.
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	time.Sleep(500 * time.Millisecond)

	return p.httpClient.Do(req)
}
