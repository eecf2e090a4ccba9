package crawler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"time"

	"golang.org/x/xerrors"
	gc "gopkg.in/check.v1"
)

var _ = gc.Suite(new(HTTPFetcherTestSuite))

type HTTPFetcherTestSuite struct {
	fetcher *HTTPFetcher
}

func (s *HTTPFetcherTestSuite) SetUpTest(c *gc.C) {
	var err error
	s.fetcher, err = NewHTTPFetcher(HTTPFetcherConfig{
		PrivateNetworkDetector: allowAllDetector{},
	})
	c.Assert(err, gc.IsNil)
}

func (s *HTTPFetcherTestSuite) TestFetchPage(c *gc.C) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("hello"))
	}))
	defer srv.Close()

	content, err := s.fetcher.Fetch(context.TODO(), srv.URL)
	c.Assert(err, gc.IsNil)
	c.Assert(content, gc.Equals, "hello")
}

func (s *HTTPFetcherTestSuite) TestFetchPageWithNonSuccessStatus(c *gc.C) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := s.fetcher.Fetch(context.TODO(), srv.URL)
	c.Assert(fetchErrorKind(c, err), gc.Equals, FetchErrorStatus)
}

func (s *HTTPFetcherTestSuite) TestFetchPageWithInvalidUTF8Content(c *gc.C) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte{0xff, 0xfe, 0xfd})
	}))
	defer srv.Close()

	_, err := s.fetcher.Fetch(context.TODO(), srv.URL)
	c.Assert(fetchErrorKind(c, err), gc.Equals, FetchErrorDecode)
}

func (s *HTTPFetcherTestSuite) TestFetchPageFromPrivateNetwork(c *gc.C) {
	fetcher, err := NewHTTPFetcher(HTTPFetcherConfig{
		PrivateNetworkDetector: denyAllDetector{},
	})
	c.Assert(err, gc.IsNil)

	_, err = fetcher.Fetch(context.TODO(), "http://169.254.169.254/latest/meta-data")
	c.Assert(fetchErrorKind(c, err), gc.Equals, FetchErrorBlocked)
}

func (s *HTTPFetcherTestSuite) TestFetchPageWithUnreachableHost(c *gc.C) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	_, err := s.fetcher.Fetch(context.TODO(), srv.URL)
	c.Assert(fetchErrorKind(c, err), gc.Equals, FetchErrorNetwork)
}

func (s *HTTPFetcherTestSuite) TestFetchPageWithTimeout(c *gc.C) {
	blockCh := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		<-blockCh
	}))
	defer srv.Close()
	defer close(blockCh)

	fetcher, err := NewHTTPFetcher(HTTPFetcherConfig{
		PrivateNetworkDetector: allowAllDetector{},
		Timeout:                100 * time.Millisecond,
	})
	c.Assert(err, gc.IsNil)

	_, err = fetcher.Fetch(context.TODO(), srv.URL)
	c.Assert(fetchErrorKind(c, err), gc.Equals, FetchErrorTimeout)
}

func (s *HTTPFetcherTestSuite) TestPageFetcherStageCollapsesErrors(c *gc.C) {
	payload := &crawlerPayload{URL: "http://unresolvable.invalid"}

	result, err := newPageFetcher(s.fetcher).Process(context.TODO(), payload)
	c.Assert(err, gc.IsNil)

	// Failed fetches still flow through the pipeline with empty content.
	got := result.(*crawlerPayload)
	c.Assert(got.RawContent.Len(), gc.Equals, 0)
	c.Assert(got.URL, gc.Equals, "http://unresolvable.invalid")
}

func fetchErrorKind(c *gc.C, err error) FetchErrorKind {
	c.Assert(err, gc.NotNil)
	var fetchErr *FetchError
	c.Assert(xerrors.As(err, &fetchErr), gc.Equals, true)
	return fetchErr.Kind
}

type allowAllDetector struct{}

func (allowAllDetector) IsPrivate(string) (bool, error) { return false, nil }

type denyAllDetector struct{}

func (denyAllDetector) IsPrivate(string) (bool, error) { return true, nil }
