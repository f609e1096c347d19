package notary

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"attestd/internal/domain"
	"attestd/internal/extract"
	"attestd/internal/infra/logger"
)

const defaultFetchTimeout = 5 * time.Second

// KeyCache stores notary keys by canonical notary URL. Both the in-memory and
// redis caches satisfy it.
type KeyCache interface {
	Get(ctx context.Context, url string) (string, bool, error)
	Put(ctx context.Context, url, pem string, ttl time.Duration) error
}

// Client fetches a notary's public key from its /info endpoint.
type Client struct {
	HTTP         *http.Client
	FetchTimeout time.Duration
}

func (c *Client) FetchPublicKey(ctx context.Context, notaryURL string) (string, error) {
	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	timeout := c.FetchTimeout
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, notaryURL+"/info", nil)
	if err != nil {
		return "", err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("notary info fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("notary info fetch: status %d", resp.StatusCode)
	}
	var info map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return "", fmt.Errorf("notary info decode: %w", err)
	}
	pem, ok := extract.PublicKeyFromNotaryInfo(info)
	if !ok {
		return "", fmt.Errorf("notary info contains no public key")
	}
	return pem, nil
}

// Resolver resolves a notary public key for an attestation: payload aliases,
// then the configured fallback, then a cached /info fetch against the
// payload-declared notary URL.
type Resolver struct {
	Client      *Client
	Cache       KeyCache
	CacheTTL    time.Duration
	EnvFallback string
	Log         logger.Logger
}

func (r *Resolver) Resolve(ctx context.Context, attestation map[string]any) (pem, source string, err error) {
	if pem, ok := extract.NotaryPublicKeyPem(attestation, ""); ok {
		return pem, "attestation", nil
	}
	if fallback := strings.TrimSpace(r.EnvFallback); fallback != "" {
		return fallback, "env", nil
	}

	notaryURL, ok := extract.NotaryURL(attestation)
	if !ok || r.Client == nil {
		return "", "", domain.ErrNotaryKeyMissing
	}

	if r.Cache != nil {
		cached, hit, cacheErr := r.Cache.Get(ctx, notaryURL)
		if cacheErr != nil {
			r.logWarn("notary key cache read failed", map[string]any{"error": cacheErr.Error()})
		} else if hit {
			return cached, "cache", nil
		}
	}

	fetched, err := r.Client.FetchPublicKey(ctx, notaryURL)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", domain.ErrNotaryKeyMissing, err)
	}
	if r.Cache != nil {
		if cacheErr := r.Cache.Put(ctx, notaryURL, fetched, r.CacheTTL); cacheErr != nil {
			r.logWarn("notary key cache write failed", map[string]any{"error": cacheErr.Error()})
		}
	}
	return fetched, "notary", nil
}

func (r *Resolver) logWarn(msg string, fields map[string]any) {
	if r.Log != nil {
		r.Log.Warn(msg, fields)
	}
}
