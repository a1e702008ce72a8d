package extraction

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Request is one document handed to an evidence provider.
type Request struct {
	Category    string `json:"category"`
	Period      string `json:"period,omitempty"`
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
	Content     []byte `json:"content"`
}

// Result is a provider's structured reading of a document. Fallback results
// carry no fields and a fixed low confidence.
type Result struct {
	Fields     map[string]any `json:"fields"`
	Confidence float64        `json:"confidence"`
	Provider   string         `json:"provider"`
	Fallback   bool           `json:"fallback"`
	Attempts   int            `json:"attempts"`
	Cause      error          `json:"-"`
}

const FallbackConfidence = 0.1

type Provider interface {
	ID() string
	Extract(ctx context.Context, req Request) (Result, error)
}

// HTTPProvider calls an extraction service that takes the document as JSON
// and answers with {"fields": {...}, "confidence": n}.
type HTTPProvider struct {
	id       string
	endpoint string
	apiKey   string
	client   *http.Client
}

func NewHTTPProvider(id, endpoint, apiKey string, client *http.Client) *HTTPProvider {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPProvider{id: id, endpoint: endpoint, apiKey: apiKey, client: client}
}

func (p *HTTPProvider) ID() string {
	return p.id
}

type providerResponse struct {
	Fields     map[string]any `json:"fields"`
	Confidence *float64       `json:"confidence"`
}

func (p *HTTPProvider) Extract(ctx context.Context, req Request) (Result, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return Result{}, NewProviderError(ErrorInternal, p.id, "encode request", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return Result{}, NewProviderError(ErrorInternal, p.id, "build request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.client.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return Result{}, NewProviderError(ErrorTimeout, p.id, "request timed out", err)
		}
		return Result{}, NewProviderError(ErrorProviderOutage, p.id, "request failed", err)
	}
	defer resp.Body.Close()

	if err := statusError(p.id, resp); err != nil {
		return Result{}, err
	}

	var out providerResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&out); err != nil {
		return Result{}, NewProviderError(ErrorBadData, p.id, "decode response", err)
	}
	if len(out.Fields) == 0 {
		return Result{}, NewProviderError(ErrorBadData, p.id, "response carried no fields", nil)
	}
	if out.Confidence == nil || *out.Confidence < 0 || *out.Confidence > 1 {
		return Result{}, NewProviderError(ErrorBadData, p.id, "confidence missing or outside [0,1]", nil)
	}

	return Result{Fields: out.Fields, Confidence: *out.Confidence, Provider: p.id}, nil
}

func statusError(id string, resp *http.Response) error {
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return NewProviderError(ErrorRateLimited, id, "rate limited", nil)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return NewProviderError(ErrorAuthentication, id, fmt.Sprintf("status %d", resp.StatusCode), nil)
	case resp.StatusCode == http.StatusGatewayTimeout || resp.StatusCode == http.StatusRequestTimeout:
		return NewProviderError(ErrorTimeout, id, fmt.Sprintf("status %d", resp.StatusCode), nil)
	case resp.StatusCode >= 500:
		return NewProviderError(ErrorProviderOutage, id, fmt.Sprintf("status %d", resp.StatusCode), nil)
	default:
		return NewProviderError(ErrorBadData, id, fmt.Sprintf("status %d", resp.StatusCode), nil)
	}
}
