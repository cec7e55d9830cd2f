package price

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/nergy-se/heatprice/pkg/version"
)

// Fetcher returns the raw price document found at url.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

type FetcherFunc func(ctx context.Context, url string) ([]byte, error)

func (f FetcherFunc) Fetch(ctx context.Context, url string) ([]byte, error) {
	return f(ctx, url)
}

const maxDocumentSize = 1 << 20

type HTTPFetcher struct {
	client *http.Client
	token  string
}

func NewHTTPFetcher(token string) *HTTPFetcher {
	return &HTTPFetcher{
		client: &http.Client{
			Timeout: time.Second * 30,
		},
		token: token,
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "heatprice/"+version.Commit)
	if f.token != "" {
		req.Header.Add("Authorization", f.token)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: unexpected StatusCode: %d", ErrFetch, resp.StatusCode)
	}

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %w", ErrFetch, err)
	}
	if len(b) > maxDocumentSize {
		return nil, fmt.Errorf("%w: document too large, over %d bytes", ErrFetch, maxDocumentSize)
	}
	return b, nil
}
