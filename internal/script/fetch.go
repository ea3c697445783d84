package script

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/tartampluch/go-chaldean-clock/internal/config"
)

// Fetcher retrieves script source from a remote location.
// This interface allows for mocking in tests.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (io.ReadCloser, error)
}

// HTTPFetcher implements Fetcher using the standard net/http library.
type HTTPFetcher struct {
	Client *http.Client
}

// NewHTTPFetcher creates a new instance of HTTPFetcher with configured timeouts.
func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{
		Client: &http.Client{
			Timeout: config.HTTPTimeout,
		},
	}
}

// IsRemote reports whether location is an http or https URL.
func IsRemote(location string) bool {
	u, err := url.Parse(location)
	if err != nil {
		return false
	}
	return u.Scheme == config.SchemeHTTP || u.Scheme == config.SchemeHTTPS
}

// Fetch downloads a script. Query parameters are stripped from logs since
// they may carry tokens. The body is capped at config.MaxScriptSize.
func (f *HTTPFetcher) Fetch(ctx context.Context, targetURL string) (io.ReadCloser, error) {
	u, err := url.Parse(targetURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrInvalidURL, err)
	}

	if u.Scheme != config.SchemeHTTP && u.Scheme != config.SchemeHTTPS {
		return nil, fmt.Errorf("%s: %s", config.ErrProtocol, u.Scheme)
	}

	log := slog.With(
		slog.String(config.LogKeyComponent, config.CompFetcher),
		slog.String(config.LogKeyURL, safeURL(u)),
	)

	log.Debug(config.MsgFetchStart)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrFetchRequest, err)
	}
	req.Header.Set(config.HeaderUserAgent, config.UserAgent)

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrFetchNetwork, err)
	}

	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		log.Warn(config.MsgFetchStatus,
			slog.Int(config.LogKeyStatus, resp.StatusCode),
		)
		return nil, fmt.Errorf("%s: %s", config.ErrFetchStatus, resp.Status)
	}

	log.Info(config.MsgFetchDone,
		slog.Int64(config.LogKeyLength, resp.ContentLength),
	)

	return &limitedReadCloser{
		Reader: io.LimitReader(resp.Body, config.MaxScriptSize),
		Closer: resp.Body,
	}, nil
}

func safeURL(u *url.URL) string {
	return u.Scheme + "://" + u.Host + u.Path
}

// limitedReadCloser keeps the response body closable behind a size limit.
type limitedReadCloser struct {
	io.Reader
	io.Closer
}

// RunURL downloads a script with the engine fetcher and runs it.
func (e *Engine) RunURL(ctx context.Context, targetURL string) error {
	rc, err := e.Fetcher.Fetch(ctx, targetURL)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrScriptLoad, err)
	}
	defer func() { _ = rc.Close() }()

	var src strings.Builder
	if _, err := io.Copy(&src, rc); err != nil {
		return fmt.Errorf("%s: %s: %w", config.ErrScriptLoad, config.ErrFetchRead, err)
	}
	if err := e.Run(src.String()); err != nil {
		return err
	}
	u, _ := url.Parse(targetURL) // Already validated by the fetcher
	slog.Info(config.MsgScriptLoaded,
		config.LogKeyComponent, config.CompScript,
		config.LogKeyURL, safeURL(u),
		config.LogKeyCount, len(e.defined),
	)
	return nil
}

// RunSource runs a script from a local path or an http(s) URL.
func (e *Engine) RunSource(ctx context.Context, location string) error {
	if IsRemote(location) {
		return e.RunURL(ctx, location)
	}
	return e.RunFile(location)
}
