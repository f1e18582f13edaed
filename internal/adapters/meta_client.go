package adapters

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"ornithe-installer/internal/jsondoc"
	"ornithe-installer/internal/ports"
	"ornithe-installer/internal/shared"
	"ornithe-installer/internal/types"
)

const defaultHTTPTimeout = 15 * time.Second
const defaultHTTPRetries = 1
const defaultHTTPRetryDelay = 200 * time.Millisecond
const maxHTTPRetryDelay = 2 * time.Second
const defaultCacheTTL = 5 * time.Minute
const maxErrorBody = 512

// MetaClientAdapter fetches metadata documents over HTTP. Concurrent
// requests for the same URL share one fetch and decoded results are kept
// in a session cache, so a session normally hits each URL once.
type MetaClientAdapter struct {
	httpClient *http.Client
	retries    int
	retryDelay time.Duration
	userAgent  string
	cache      *cache.Cache
	inflight   *singleflight.Group
}

type MetaClientOption func(*MetaClientAdapter)

func WithHTTPClient(client *http.Client) MetaClientOption {
	return func(a *MetaClientAdapter) {
		if client != nil {
			a.httpClient = client
		}
	}
}

func WithTimeout(timeout time.Duration) MetaClientOption {
	return func(a *MetaClientAdapter) {
		if timeout > 0 {
			a.httpClient.Timeout = timeout
		}
	}
}

// WithRetries sets the total number of attempts per request.
func WithRetries(attempts int, delay time.Duration) MetaClientOption {
	return func(a *MetaClientAdapter) {
		if attempts > 0 {
			a.retries = attempts
		}
		if delay > 0 {
			a.retryDelay = delay
		}
	}
}

// WithCacheTTL sets how long decoded documents stay cached. Zero disables
// the session cache; in-flight coalescing stays active.
func WithCacheTTL(ttl time.Duration) MetaClientOption {
	return func(a *MetaClientAdapter) {
		if ttl <= 0 {
			a.cache = nil
			return
		}
		a.cache = cache.New(ttl, 2*ttl)
	}
}

func WithUserAgent(userAgent string) MetaClientOption {
	return func(a *MetaClientAdapter) {
		a.userAgent = strings.TrimSpace(userAgent)
	}
}

func NewMetaClientAdapter(opts ...MetaClientOption) *MetaClientAdapter {
	adapter := &MetaClientAdapter{
		httpClient: &http.Client{
			Timeout: defaultHTTPTimeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        32,
				MaxIdleConnsPerHost: 8,
				IdleConnTimeout:     60 * time.Second,
			},
		},
		retries:    defaultHTTPRetries,
		retryDelay: defaultHTTPRetryDelay,
		userAgent:  "ornithe-installer",
		cache:      cache.New(defaultCacheTTL, 2*defaultCacheTTL),
		inflight:   &singleflight.Group{},
	}
	for _, opt := range opts {
		opt(adapter)
	}
	return adapter
}

// Resolve fetches and decodes every distinct descriptor concurrently. The
// first failure cancels the remaining fetches and is returned unchanged.
func (a *MetaClientAdapter) Resolve(ctx context.Context, baseURL string, descriptors ...types.Descriptor) (types.MetadataSet, error) {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		return types.MetadataSet{}, shared.InvalidError("metadata base url is empty")
	}
	distinct := map[string]types.Descriptor{}
	for _, descriptor := range descriptors {
		if descriptor == nil {
			continue
		}
		if _, ok := distinct[descriptor.Path()]; !ok {
			distinct[descriptor.Path()] = descriptor
		}
	}

	group, groupCtx := errgroup.WithContext(ctx)
	var mu sync.Mutex
	results := make(map[string]any, len(distinct))
	for path, descriptor := range distinct {
		group.Go(func() error {
			value, err := a.load(groupCtx, endpointEntry, base+path, descriptor.DecodeAny)
			if err != nil {
				return err
			}
			mu.Lock()
			results[path] = value
			mu.Unlock()
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return types.MetadataSet{}, err
	}
	log.Ctx(ctx).Debug().Str("base", base).Int("endpoints", len(results)).Msg("metadata resolved")
	return types.NewMetadataSet(base, results), nil
}

// FetchDocument fetches and parses a JSON document from an absolute URL.
func (a *MetaClientAdapter) FetchDocument(ctx context.Context, url string) (*jsondoc.Value, error) {
	value, err := a.load(ctx, documentEntry, url, func(data []byte) (any, error) {
		doc, err := jsondoc.Parse(data)
		if err != nil {
			return nil, shared.MalformedErrorWithCause(url, err)
		}
		return doc, nil
	})
	if err != nil {
		return nil, err
	}
	doc, ok := value.(*jsondoc.Value)
	if !ok {
		return nil, shared.MalformedError(url, "$", "json document")
	}
	// Callers own the returned tree; the cached copy stays pristine.
	return doc.Clone(), nil
}

// Cache and in-flight keys carry the entry kind, since one URL may be read
// both as a typed endpoint and as a plain document.
const (
	endpointEntry = "endpoint"
	documentEntry = "document"
)

// load shares one fetch per key between concurrent callers. The fetch runs
// detached from any single caller's cancellation and is bounded by the
// client timeout; each caller stops waiting when its own context ends.
func (a *MetaClientAdapter) load(ctx context.Context, kind string, url string, decode func([]byte) (any, error)) (any, error) {
	key := kind + " " + url
	if a.cache != nil {
		if cached, ok := a.cache.Get(key); ok {
			return cached, nil
		}
	}
	fetchCtx := context.WithoutCancel(ctx)
	results := a.inflight.DoChan(key, func() (any, error) {
		if a.cache != nil {
			if cached, ok := a.cache.Get(key); ok {
				return cached, nil
			}
		}
		data, err := a.fetch(fetchCtx, url)
		if err != nil {
			return nil, err
		}
		decoded, err := decode(data)
		if err != nil {
			return nil, err
		}
		if a.cache != nil {
			a.cache.SetDefault(key, decoded)
		}
		return decoded, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case result := <-results:
		if result.Shared {
			log.Ctx(ctx).Debug().Str("url", url).Msg("joined in-flight fetch")
		}
		return result.Val, result.Err
	}
}

func (a *MetaClientAdapter) fetch(ctx context.Context, url string) ([]byte, error) {
	resp, err := a.doRequest(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, shared.LookupError(fmt.Sprintf("metadata not found: %s", url))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		cause := shared.HTTPStatusError(resp.StatusCode, url)
		if trimmed := strings.TrimSpace(string(body)); trimmed != "" {
			cause = shared.HTTPStatusErrorWithBody(resp.StatusCode, url, trimmed)
		}
		return nil, shared.NetworkError("metadata request failed", cause)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, shared.NetworkError("failed to read metadata response", err)
	}
	log.Ctx(ctx).Debug().Str("url", url).Int("bytes", len(data)).Msg("fetched metadata")
	return data, nil
}

func (a *MetaClientAdapter) doRequest(ctx context.Context, url string) (*http.Response, error) {
	var lastErr error
	for attempt := 0; attempt < a.retries; attempt++ {
		if ctx.Err() != nil {
			return nil, shared.NetworkError("request canceled", ctx.Err())
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, shared.InvalidError(fmt.Sprintf("invalid metadata url %q: %v", url, err))
		}
		req.Header.Set("Accept", "application/json")
		if a.userAgent != "" {
			req.Header.Set("User-Agent", a.userAgent)
		}
		resp, err := a.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, shared.NetworkError("request canceled", ctx.Err())
			}
			lastErr = err
			if attempt < a.retries-1 {
				a.sleep(ctx, attempt)
				continue
			}
			return nil, shared.NetworkError("could not reach metadata service", err)
		}
		if (resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests) && attempt < a.retries-1 {
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			a.sleep(ctx, attempt)
			continue
		}
		return resp, nil
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("request failed")
	}
	return nil, shared.NetworkError("could not reach metadata service", lastErr)
}

func (a *MetaClientAdapter) sleep(ctx context.Context, attempt int) {
	delay := a.retryDelay * time.Duration(1<<attempt)
	if delay > maxHTTPRetryDelay {
		delay = maxHTTPRetryDelay
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

var _ ports.MetadataPort = (*MetaClientAdapter)(nil)
var _ ports.DocumentPort = (*MetaClientAdapter)(nil)
