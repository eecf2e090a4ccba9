// Package crawler wraps the crawler pipeline in a service that periodically
// drains the crawl frontier of the link graph.
package crawler

import (
	"context"
	"io/ioutil"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/juju/clock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	crawlerpipeline "github.com/searchengineplaces/webrank/crawler"
	"github.com/searchengineplaces/webrank/linkgraph/graph"
	"github.com/searchengineplaces/webrank/textindexer/index"
	"github.com/sirupsen/logrus"
	"golang.org/x/xerrors"
)

//go:generate mockgen -package mocks -destination mocks/mocks.go github.com/searchengineplaces/webrank/service/crawler GraphAPI,IndexAPI
//go:generate mockgen -package mocks -destination mocks/mock_iterator.go github.com/searchengineplaces/webrank/linkgraph/graph LinkIterator

var (
	promCrawledPages = promauto.NewCounter(prometheus.CounterOpts{
		Name: "webrank_crawler_crawled_pages_total",
		Help: "The total number of pages processed by the crawler pipeline",
	})
	promCrawlPasses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "webrank_crawler_passes_total",
		Help: "The total number of completed crawl passes",
	})
)

// GraphAPI defines as set of API methods for accessing the link graph.
type GraphAPI interface {
	UpsertLink(link *graph.Link) error
	UpsertEdge(edge *graph.Edge) error
	RemoveStaleEdges(fromURL string, updatedBefore time.Time) error
	Links(retrievedBefore time.Time) (graph.LinkIterator, error)
}

// IndexAPI defines a set of API methods for indexing crawled documents.
type IndexAPI interface {
	Index(doc *index.Document) error
}

// Config encapsulates the settings for configuring the web-crawler service.
type Config struct {
	// An API for managing and iterating links and edges in the link graph.
	GraphAPI GraphAPI

	// An API for indexing documents.
	IndexAPI IndexAPI

	// An API for retrieving page content. If not specified, a fetcher
	// that performs plain HTTP requests without certificate validation
	// will be used instead.
	Fetcher crawlerpipeline.Fetcher

	// A clock instance for generating time-related events. If not specified,
	// the default wall-clock will be used instead.
	Clock clock.Clock

	// The number of concurrent workers used for retrieving pages.
	FetchWorkers int

	// The time between subsequent crawler passes.
	UpdateInterval time.Duration

	// The minimum amount of time before re-crawling an already-crawled
	// page.
	ReIndexThreshold time.Duration

	// The maximum number of pages to process in a single crawl pass.
	// Zero disables the budget.
	PageBudget int

	// The logger to use. If not defined an output-discarding logger will
	// be used instead.
	Logger *logrus.Entry
}

func (cfg *Config) validate() error {
	var err error
	if cfg.GraphAPI == nil {
		err = multierror.Append(err, xerrors.Errorf("graph API has not been provided"))
	}
	if cfg.IndexAPI == nil {
		err = multierror.Append(err, xerrors.Errorf("index API has not been provided"))
	}
	if cfg.Fetcher == nil {
		var fetcherErr error
		if cfg.Fetcher, fetcherErr = crawlerpipeline.NewHTTPFetcher(crawlerpipeline.HTTPFetcherConfig{Logger: cfg.Logger}); fetcherErr != nil {
			err = multierror.Append(err, fetcherErr)
		}
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.WallClock
	}
	if cfg.FetchWorkers <= 0 {
		err = multierror.Append(err, xerrors.Errorf("invalid value for fetch workers"))
	}
	if cfg.UpdateInterval == 0 {
		err = multierror.Append(err, xerrors.Errorf("invalid value for update interval"))
	}
	if cfg.ReIndexThreshold == 0 {
		err = multierror.Append(err, xerrors.Errorf("invalid value for re-index threshold"))
	}
	if cfg.PageBudget < 0 {
		err = multierror.Append(err, xerrors.Errorf("invalid value for page budget"))
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.NewEntry(&logrus.Logger{Out: ioutil.Discard})
	}
	return err
}

// Service implements the web-crawler component of the search engine.
type Service struct {
	cfg     Config
	crawler *crawlerpipeline.Crawler
}

// NewService creates a new crawler service instance with the specified config.
func NewService(cfg Config) (*Service, error) {
	if err := cfg.validate(); err != nil {
		return nil, xerrors.Errorf("crawler service: config validation failed: %w", err)
	}

	return &Service{
		cfg: cfg,
		crawler: crawlerpipeline.NewCrawler(crawlerpipeline.Config{
			Fetcher:      cfg.Fetcher,
			Graph:        cfg.GraphAPI,
			Indexer:      cfg.IndexAPI,
			FetchWorkers: cfg.FetchWorkers,
		}),
	}, nil
}

// Name implements service.Service
func (svc *Service) Name() string { return "crawler" }

// Run implements service.Service
func (svc *Service) Run(ctx context.Context) error {
	svc.cfg.Logger.WithField("update_interval", svc.cfg.UpdateInterval.String()).Info("starting service")
	defer svc.cfg.Logger.Info("stopped service")

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-svc.cfg.Clock.After(svc.cfg.UpdateInterval):
			if err := svc.CrawlGraph(ctx); err != nil {
				return err
			}
		}
	}
}

// CrawlGraph executes a single crawl pass: it repeatedly drains the set of
// pages that are pending or due for a re-crawl until no more pages match,
// which also picks up the pages discovered while the pass was running. Each
// page is fetched at most once per pass.
func (svc *Service) CrawlGraph(ctx context.Context) error {
	passID := uuid.New()
	logger := svc.cfg.Logger.WithField("crawl_pass", passID.String())
	logger.Info("starting new crawl pass")

	startAt := svc.cfg.Clock.Now()
	retrievedBefore := startAt.Add(-svc.cfg.ReIndexThreshold)

	var totalProcessed int
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		linkIt, err := svc.cfg.GraphAPI.Links(retrievedBefore)
		if err != nil {
			return xerrors.Errorf("crawler: unable to retrieve links iterator: %w", err)
		}

		processed, err := svc.crawler.Crawl(ctx, linkIt)
		if err != nil {
			_ = linkIt.Close()
			return xerrors.Errorf("crawler: unable to complete crawling the link graph: %w", err)
		} else if err = linkIt.Close(); err != nil {
			return xerrors.Errorf("crawler: unable to complete crawling the link graph: %w", err)
		}

		if processed == 0 {
			break
		}
		totalProcessed += processed
		promCrawledPages.Add(float64(processed))

		if svc.cfg.PageBudget > 0 && totalProcessed >= svc.cfg.PageBudget {
			logger.WithField("page_budget", svc.cfg.PageBudget).Info("crawl pass reached its page budget")
			break
		}
	}

	promCrawlPasses.Inc()
	logger.WithFields(logrus.Fields{
		"processed_link_count": totalProcessed,
		"elapsed_time":         svc.cfg.Clock.Now().Sub(startAt).String(),
	}).Info("completed crawl pass")
	return nil
}
