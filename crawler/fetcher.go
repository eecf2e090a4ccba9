package crawler

import (
	"context"
	"crypto/tls"
	"fmt"
	"io/ioutil"
	"net"
	"net/http"
	"net/url"
	"time"
	"unicode/utf8"

	"github.com/searchengineplaces/webrank/crawler/privnet"
	"github.com/searchengineplaces/webrank/pipeline"
	"github.com/sirupsen/logrus"
	"golang.org/x/xerrors"
)

// Fetcher is implemented by the external collaborator that retrieves page
// content. Implementations report failures as *FetchError values; the
// crawler pipeline collapses every failure to empty content so callers never
// need to branch on the failure kind.
type Fetcher interface {
	// Fetch returns the raw content of the page at url.
	Fetch(ctx context.Context, url string) (string, error)
}

// FetchErrorKind tags the broad category of a fetch failure.
type FetchErrorKind uint8

const (
	// FetchErrorNetwork indicates a connection or protocol level failure.
	FetchErrorNetwork FetchErrorKind = iota

	// FetchErrorTimeout indicates that the fetch exceeded its deadline.
	FetchErrorTimeout

	// FetchErrorStatus indicates a non-2xx HTTP response.
	FetchErrorStatus

	// FetchErrorDecode indicates that the page content was not valid
	// UTF-8 text.
	FetchErrorDecode

	// FetchErrorBlocked indicates that the target host resolves to a
	// private network address and was refused.
	FetchErrorBlocked
)

// String implements fmt.Stringer.
func (k FetchErrorKind) String() string {
	switch k {
	case FetchErrorTimeout:
		return "timeout"
	case FetchErrorStatus:
		return "status"
	case FetchErrorDecode:
		return "decode"
	case FetchErrorBlocked:
		return "blocked"
	default:
		return "network"
	}
}

// FetchError describes a failed page fetch.
type FetchError struct {
	// The kind of failure.
	Kind FetchErrorKind

	// The URL that was being fetched.
	URL string

	cause error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	if e.cause == nil {
		return fmt.Sprintf("fetch %q: %s", e.URL, e.Kind)
	}
	return fmt.Sprintf("fetch %q: %s: %v", e.URL, e.Kind, e.cause)
}

// Unwrap returns the underlying cause of the fetch failure.
func (e *FetchError) Unwrap() error { return e.cause }

// PrivateNetworkDetector is implemented by objects that can detect whether a
// host resolves to a private network address.
type PrivateNetworkDetector interface {
	IsPrivate(host string) (bool, error)
}

// HTTPFetcherConfig encapsulates the options for creating an HTTPFetcher.
type HTTPFetcherConfig struct {
	// The HTTP client used for fetching pages. If not specified, a
	// client that skips TLS certificate verification will be used; the
	// crawler intentionally does not validate certificates.
	Client *http.Client

	// An API for detecting private network addresses. If not specified,
	// a detector for the RFC1918 ranges will be used.
	PrivateNetworkDetector PrivateNetworkDetector

	// An optional per-fetch deadline. Zero disables the deadline.
	Timeout time.Duration

	// The logger used for reporting (and absorbing) fetch failures. If
	// not defined, an output-discarding logger is used.
	Logger *logrus.Entry
}

func (cfg *HTTPFetcherConfig) validate() error {
	var err error
	if cfg.Client == nil {
		cfg.Client = &http.Client{
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			},
		}
	}
	if cfg.PrivateNetworkDetector == nil {
		cfg.PrivateNetworkDetector, err = privnet.NewDetector()
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.NewEntry(&logrus.Logger{Out: ioutil.Discard})
	}
	return err
}

// HTTPFetcher is a Fetcher implementation backed by an http.Client.
type HTTPFetcher struct {
	cfg HTTPFetcherConfig
}

// NewHTTPFetcher returns a Fetcher that retrieves pages over HTTP(S).
func NewHTTPFetcher(cfg HTTPFetcherConfig) (*HTTPFetcher, error) {
	if err := cfg.validate(); err != nil {
		return nil, xerrors.Errorf("http fetcher: config validation failed: %w", err)
	}
	return &HTTPFetcher{cfg: cfg}, nil
}

// Fetch returns the raw content of the page at pageURL. Failures are
// reported as *FetchError values and logged; they are never fatal to the
// caller.
func (f *HTTPFetcher) Fetch(ctx context.Context, pageURL string) (string, error) {
	if f.cfg.Timeout > 0 {
		var cancelFn context.CancelFunc
		ctx, cancelFn = context.WithTimeout(ctx, f.cfg.Timeout)
		defer cancelFn()
	}

	content, err := f.fetch(ctx, pageURL)
	if err != nil {
		var fetchErr *FetchError
		if xerrors.As(err, &fetchErr) {
			f.cfg.Logger.WithFields(logrus.Fields{
				"url":  pageURL,
				"kind": fetchErr.Kind.String(),
			}).Warn("page fetch failed")
		}
		return "", err
	}
	return content, nil
}

func (f *HTTPFetcher) fetch(ctx context.Context, pageURL string) (string, error) {
	if blocked, err := f.isPrivate(pageURL); err == nil && blocked {
		return "", &FetchError{Kind: FetchErrorBlocked, URL: pageURL}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", &FetchError{Kind: FetchErrorNetwork, URL: pageURL, cause: err}
	}

	res, err := f.cfg.Client.Do(req)
	if err != nil {
		return "", &FetchError{Kind: classifyTransportError(ctx, err), URL: pageURL, cause: err}
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return "", &FetchError{Kind: FetchErrorStatus, URL: pageURL, cause: xerrors.Errorf("unexpected status %d", res.StatusCode)}
	}

	body, err := ioutil.ReadAll(res.Body)
	if err != nil {
		return "", &FetchError{Kind: classifyTransportError(ctx, err), URL: pageURL, cause: err}
	}

	if !utf8.Valid(body) {
		return "", &FetchError{Kind: FetchErrorDecode, URL: pageURL}
	}

	return string(body), nil
}

func (f *HTTPFetcher) isPrivate(pageURL string) (bool, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return false, err
	}
	return f.cfg.PrivateNetworkDetector.IsPrivate(u.Hostname())
}

func classifyTransportError(ctx context.Context, err error) FetchErrorKind {
	if ctx.Err() == context.DeadlineExceeded {
		return FetchErrorTimeout
	}
	var netErr net.Error
	if xerrors.As(err, &netErr) && netErr.Timeout() {
		return FetchErrorTimeout
	}
	return FetchErrorNetwork
}

var _ pipeline.Processor = (*pageFetcher)(nil)

// pageFetcher is the pipeline stage that invokes the fetch collaborator.
// Every failure is collapsed into empty content: the page still flows
// through the rest of the pipeline so it gets marked as visited and
// recorded in the graph with no outgoing edges.
type pageFetcher struct {
	fetcher Fetcher
}

func newPageFetcher(fetcher Fetcher) *pageFetcher {
	return &pageFetcher{fetcher: fetcher}
}

// Process implements pipeline.Processor.
func (pf *pageFetcher) Process(ctx context.Context, p pipeline.Payload) (pipeline.Payload, error) {
	payload := p.(*crawlerPayload)

	content, err := pf.fetcher.Fetch(ctx, payload.URL)
	if err != nil {
		content = ""
	}
	payload.RawContent.WriteString(content)
	return payload, nil
}
