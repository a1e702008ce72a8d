package extraction

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loan-marketplace/internal/config"
	"loan-marketplace/internal/pkg/apperrors"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var fastRetry = RetryConfig{MaxRetries: 2, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}

type fakeProvider struct {
	id    string
	calls atomic.Int32
	fn    func(call int) (Result, error)
}

func (f *fakeProvider) ID() string { return f.id }

func (f *fakeProvider) Extract(ctx context.Context, req Request) (Result, error) {
	n := int(f.calls.Add(1))
	return f.fn(n)
}

func TestNewProviderError_Retryable(t *testing.T) {
	tests := []struct {
		category  ErrorCategory
		retryable bool
	}{
		{ErrorTimeout, true},
		{ErrorProviderOutage, true},
		{ErrorRateLimited, true},
		{ErrorBadData, false},
		{ErrorAuthentication, false},
		{ErrorInternal, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.category), func(t *testing.T) {
			err := NewProviderError(tt.category, "p1", "boom", nil)
			assert.Equal(t, tt.retryable, IsRetryable(err))
			assert.Equal(t, tt.category, GetCategory(err))
		})
	}

	assert.False(t, IsRetryable(errors.New("plain")))
	assert.Equal(t, ErrorInternal, GetCategory(errors.New("plain")))
}

func TestHTTPProvider_Extract_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var req Request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "salary_slip", req.Category)
		assert.Equal(t, []byte("pdf-bytes"), req.Content)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"fields":{"netSalary":50000},"confidence":0.92}`))
	}))
	defer server.Close()

	p := NewHTTPProvider("ocr", server.URL, "secret", server.Client())
	res, err := p.Extract(context.Background(), Request{
		Category: "salary_slip", FileName: "slip.pdf", ContentType: "application/pdf", Content: []byte("pdf-bytes"),
	})

	require.NoError(t, err)
	assert.Equal(t, "ocr", res.Provider)
	assert.InDelta(t, 0.92, res.Confidence, 1e-9)
	assert.Equal(t, float64(50000), res.Fields["netSalary"])
}

func TestHTTPProvider_Extract_StatusMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		category ErrorCategory
	}{
		{"rate limited", http.StatusTooManyRequests, "", ErrorRateLimited},
		{"unauthorized", http.StatusUnauthorized, "", ErrorAuthentication},
		{"forbidden", http.StatusForbidden, "", ErrorAuthentication},
		{"outage", http.StatusBadGateway, "", ErrorProviderOutage},
		{"gateway timeout", http.StatusGatewayTimeout, "", ErrorTimeout},
		{"unprocessable", http.StatusUnprocessableEntity, "", ErrorBadData},
		{"malformed body", http.StatusOK, "{not json", ErrorBadData},
		{"no fields", http.StatusOK, `{"fields":{},"confidence":0.9}`, ErrorBadData},
		{"confidence out of range", http.StatusOK, `{"fields":{"a":1},"confidence":1.5}`, ErrorBadData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			p := NewHTTPProvider("ocr", server.URL, "", server.Client())
			_, err := p.Extract(context.Background(), Request{Category: "bank_statement"})

			require.Error(t, err)
			assert.Equal(t, tt.category, GetCategory(err))
		})
	}
}

func TestHTTPProvider_Extract_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(500 * time.Millisecond):
		case <-r.Context().Done():
		}
	}))
	defer server.Close()

	p := NewHTTPProvider("slow", server.URL, "", server.Client())
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := p.Extract(ctx, Request{Category: "tax_return"})

	require.Error(t, err)
	assert.Equal(t, ErrorTimeout, GetCategory(err))
	assert.True(t, IsRetryable(err))
}

func TestChain_Extract_RetriesTransientThenSucceeds(t *testing.T) {
	p := &fakeProvider{id: "primary", fn: func(call int) (Result, error) {
		if call < 3 {
			return Result{}, NewProviderError(ErrorProviderOutage, "primary", "503", nil)
		}
		return Result{Fields: map[string]any{"netSalary": 1.0}, Confidence: 0.8, Provider: "primary"}, nil
	}}

	chain := NewChain([]Provider{p}, fastRetry, time.Second, 0, newTestLogger())
	res := chain.Extract(context.Background(), Request{Category: "salary_slip"})

	assert.False(t, res.Fallback)
	assert.Equal(t, "primary", res.Provider)
	assert.Equal(t, 3, res.Attempts)
	assert.Equal(t, int32(3), p.calls.Load())
}

func TestChain_Extract_NonRetryableMovesToNextProvider(t *testing.T) {
	primary := &fakeProvider{id: "primary", fn: func(int) (Result, error) {
		return Result{}, NewProviderError(ErrorAuthentication, "primary", "401", nil)
	}}
	secondary := &fakeProvider{id: "secondary", fn: func(int) (Result, error) {
		return Result{Fields: map[string]any{"taxableIncome": 1.0}, Confidence: 0.7, Provider: "secondary"}, nil
	}}

	chain := NewChain([]Provider{primary, secondary}, fastRetry, time.Second, 0, newTestLogger())
	res := chain.Extract(context.Background(), Request{Category: "tax_return"})

	assert.Equal(t, int32(1), primary.calls.Load())
	assert.Equal(t, "secondary", res.Provider)
	assert.Equal(t, 2, res.Attempts)
	assert.False(t, res.Fallback)
}

func TestChain_Extract_AllFailReturnsFallback(t *testing.T) {
	p := &fakeProvider{id: "primary", fn: func(int) (Result, error) {
		return Result{}, NewProviderError(ErrorRateLimited, "primary", "429", nil)
	}}

	chain := NewChain([]Provider{p}, fastRetry, time.Second, 0, newTestLogger())
	res := chain.Extract(context.Background(), Request{Category: "bank_statement"})

	assert.True(t, res.Fallback)
	assert.Equal(t, FallbackConfidence, res.Confidence)
	assert.Empty(t, res.Fields)
	assert.Equal(t, 3, res.Attempts)
	assert.ErrorIs(t, res.Cause, apperrors.ErrProviderExhausted)
}

func TestChain_Extract_NoProviders(t *testing.T) {
	chain := NewChain(nil, fastRetry, time.Second, 0, newTestLogger())
	res := chain.Extract(context.Background(), Request{Category: "salary_slip"})

	assert.True(t, res.Fallback)
	assert.Equal(t, 0, res.Attempts)
	assert.ErrorIs(t, res.Cause, ErrNoProviders)
}

func TestChain_Extract_OverallDeadline(t *testing.T) {
	p := &fakeProvider{id: "slow", fn: func(int) (Result, error) {
		return Result{}, NewProviderError(ErrorTimeout, "slow", "timeout", nil)
	}}
	second := &fakeProvider{id: "never", fn: func(int) (Result, error) {
		return Result{Fields: map[string]any{"a": 1}, Confidence: 1}, nil
	}}

	retry := RetryConfig{MaxRetries: 5, BaseDelay: 50 * time.Millisecond, MaxDelay: 50 * time.Millisecond}
	chain := NewChain([]Provider{p, second}, retry, time.Second, 30*time.Millisecond, newTestLogger())

	start := time.Now()
	res := chain.Extract(context.Background(), Request{Category: "salary_slip"})

	assert.True(t, res.Fallback)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
	assert.Equal(t, int32(0), second.calls.Load())
	assert.ErrorIs(t, res.Cause, context.DeadlineExceeded)
}

func TestClientFactory_ChainIsShared(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"fields":{"netSalary":42000},"confidence":0.9}`))
	}))
	defer server.Close()

	factory := NewClientFactory(config.ExtractionConfig{
		Providers: []config.ProviderConfig{
			{Name: "missing"},
			{Name: "ocr", Endpoint: server.URL},
		},
		MaxRetries:  1,
		BaseDelay:   time.Millisecond,
		MaxDelay:    time.Millisecond,
		CallTimeout: time.Second,
	}, newTestLogger())
	defer factory.Close()

	first := factory.Chain()
	second := factory.Chain()
	require.Same(t, first, second)
	assert.Len(t, first.providers, 1)

	res := first.Extract(context.Background(), Request{Category: "salary_slip"})
	assert.False(t, res.Fallback)
	assert.Equal(t, "ocr", res.Provider)
}

func TestChain_RetryPolicy(t *testing.T) {
	chain := NewChain(nil, RetryConfig{MaxRetries: 4, BaseDelay: 10 * time.Millisecond, MaxDelay: 25 * time.Millisecond}, 0, 0, newTestLogger())
	policy := chain.retryPolicy()

	var waits []time.Duration
	for next := policy.NextBackOff(); next != backoff.Stop; next = policy.NextBackOff() {
		waits = append(waits, next)
	}

	assert.Equal(t, []time.Duration{10 * time.Millisecond, 20 * time.Millisecond, 25 * time.Millisecond, 25 * time.Millisecond}, waits)
}

func TestChain_Extract_CancelledDuringBackoff(t *testing.T) {
	p := &fakeProvider{id: "primary", fn: func(int) (Result, error) {
		return Result{}, NewProviderError(ErrorProviderOutage, "primary", "503", nil)
	}}
	retry := RetryConfig{MaxRetries: 3, BaseDelay: time.Minute, MaxDelay: time.Minute}
	chain := NewChain([]Provider{p}, retry, time.Second, 0, newTestLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	res := chain.Extract(ctx, Request{Category: "salary_slip"})

	assert.True(t, res.Fallback)
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, int32(1), p.calls.Load())
	assert.ErrorIs(t, res.Cause, context.DeadlineExceeded)
}
