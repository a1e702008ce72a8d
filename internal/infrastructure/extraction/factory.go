package extraction

import (
	"log/slog"
	"net/http"
	"sync"

	"loan-marketplace/internal/config"
)

// ClientFactory builds the provider chain on first use and hands the same
// instance to every caller afterwards.
type ClientFactory struct {
	cfg    config.ExtractionConfig
	logger *slog.Logger

	once       sync.Once
	mu         sync.Mutex
	chain      *Chain
	httpClient *http.Client
}

func NewClientFactory(cfg config.ExtractionConfig, logger *slog.Logger) *ClientFactory {
	return &ClientFactory{cfg: cfg, logger: logger}
}

func (f *ClientFactory) Chain() *Chain {
	f.once.Do(f.build)

	f.mu.Lock()
	defer f.mu.Unlock()
	return f.chain
}

func (f *ClientFactory) build() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.httpClient = &http.Client{Timeout: f.cfg.CallTimeout}
	providers := make([]Provider, 0, len(f.cfg.Providers))
	for _, pc := range f.cfg.Providers {
		if pc.Endpoint == "" {
			f.logger.Warn("Skipping extraction provider without endpoint", "provider", pc.Name)
			continue
		}
		providers = append(providers, NewHTTPProvider(pc.Name, pc.Endpoint, pc.APIKey, f.httpClient))
	}
	if len(providers) == 0 {
		f.logger.Warn("No extraction providers configured, every upload will be recorded as a fallback")
	}

	retry := RetryConfig{MaxRetries: f.cfg.MaxRetries, BaseDelay: f.cfg.BaseDelay, MaxDelay: f.cfg.MaxDelay}
	f.chain = NewChain(providers, retry, f.cfg.CallTimeout, f.cfg.OverallDeadline, f.logger)
	f.logger.Info("Extraction provider chain initialized", "providers", len(providers))
}

// Close releases idle connections held by the shared HTTP client.
func (f *ClientFactory) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.httpClient != nil {
		f.httpClient.CloseIdleConnections()
	}
}
