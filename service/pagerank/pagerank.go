// Package pagerank wraps the PageRank calculator in a service that
// periodically recomputes the scores of all crawled pages and persists them
// in the text index.
package pagerank

import (
	"context"
	"io/ioutil"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/juju/clock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/searchengineplaces/webrank/linkgraph/graph"
	pr "github.com/searchengineplaces/webrank/pagerank"
	"github.com/sirupsen/logrus"
	"golang.org/x/xerrors"
)

//go:generate mockgen -package mocks -destination mocks/mocks.go github.com/searchengineplaces/webrank/service/pagerank GraphAPI,IndexAPI
//go:generate mockgen -package mocks -destination mocks/mock_iterator.go github.com/searchengineplaces/webrank/linkgraph/graph LinkIterator,EdgeIterator

var promScoredPages = promauto.NewCounter(prometheus.CounterOpts{
	Name: "webrank_pagerank_scored_pages_total",
	Help: "The total number of pages assigned a PageRank score",
})

// GraphAPI defines as set of API methods for fetching the links and edges
// from the link graph.
type GraphAPI interface {
	Links(retrievedBefore time.Time) (graph.LinkIterator, error)
	Edges() (graph.EdgeIterator, error)
}

// IndexAPI defines a set of API methods for updating PageRank scores for
// indexed documents.
type IndexAPI interface {
	UpdateScore(url string, score float64) error
}

// Config encapsulates the settings for configuring the PageRank calculator
// service.
type Config struct {
	// An API for iterating links and edges from the link graph.
	GraphAPI GraphAPI

	// An API for updating the PageRank score for indexed documents.
	IndexAPI IndexAPI

	// A clock instance for generating time-related events. If not specified,
	// the default wall-clock will be used instead.
	Clock clock.Clock

	// The damping factor for the PageRank computation. If not specified,
	// the calculator default will be used instead.
	DampingFactor float64

	// The number of score propagation rounds per pass. If not specified,
	// the calculator default will be used instead.
	Iterations int

	// The number of workers to spin up for computing PageRank scores. If
	// not specified, a default value of 1 will be used instead.
	ComputeWorkers int

	// The time between subsequent PageRank update passes.
	UpdateInterval time.Duration

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
	if cfg.Clock == nil {
		cfg.Clock = clock.WallClock
	}
	if cfg.ComputeWorkers <= 0 {
		cfg.ComputeWorkers = 1
	}
	if cfg.UpdateInterval == 0 {
		err = multierror.Append(err, xerrors.Errorf("invalid value for update interval"))
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.NewEntry(&logrus.Logger{Out: ioutil.Discard})
	}
	return err
}

// Service implements the PageRank calculator component of the search engine.
type Service struct {
	cfg Config
}

// NewService creates a new PageRank calculator service instance with the
// specified config.
func NewService(cfg Config) (*Service, error) {
	if err := cfg.validate(); err != nil {
		return nil, xerrors.Errorf("pagerank service: config validation failed: %w", err)
	}

	return &Service{cfg: cfg}, nil
}

// Name implements service.Service
func (svc *Service) Name() string { return "PageRank calculator" }

// Run implements service.Service
func (svc *Service) Run(ctx context.Context) error {
	svc.cfg.Logger.WithField("update_interval", svc.cfg.UpdateInterval.String()).Info("starting service")
	defer svc.cfg.Logger.Info("stopped service")

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-svc.cfg.Clock.After(svc.cfg.UpdateInterval):
			if err := svc.UpdateGraphScores(ctx); err != nil {
				return err
			}
		}
	}
}

// UpdateGraphScores executes a single PageRank update pass: the set of
// crawled pages and their edges is loaded into a fresh calculator, the
// scores are computed and then persisted via the index API. Pages that have
// been discovered but not yet crawled are not part of the computation; edges
// pointing at them still drain score from their source.
func (svc *Service) UpdateGraphScores(ctx context.Context) error {
	svc.cfg.Logger.Info("starting PageRank update pass")
	startAt := svc.cfg.Clock.Now()

	calculator, err := pr.NewCalculator(pr.Config{
		DampingFactor:  svc.cfg.DampingFactor,
		Iterations:     svc.cfg.Iterations,
		ComputeWorkers: svc.cfg.ComputeWorkers,
	})
	if err != nil {
		return err
	}

	tick := startAt
	numVertices, err := svc.loadLinks(calculator)
	if err != nil {
		return err
	}
	if err := svc.loadEdges(calculator); err != nil {
		return err
	}
	graphPopulateTime := svc.cfg.Clock.Now().Sub(tick)

	tick = svc.cfg.Clock.Now()
	if err := calculator.Calculate(ctx); err != nil {
		return err
	}
	scoreCalculationTime := svc.cfg.Clock.Now().Sub(tick)

	tick = svc.cfg.Clock.Now()
	if err := calculator.Scores(func(url string, score float64) error {
		return svc.cfg.IndexAPI.UpdateScore(url, score)
	}); err != nil {
		return err
	}
	scorePersistTime := svc.cfg.Clock.Now().Sub(tick)

	promScoredPages.Add(float64(numVertices))
	svc.cfg.Logger.WithFields(logrus.Fields{
		"processed_links":        numVertices,
		"graph_populate_time":    graphPopulateTime.String(),
		"score_calculation_time": scoreCalculationTime.String(),
		"score_persist_time":     scorePersistTime.String(),
		"total_pass_time":        svc.cfg.Clock.Now().Sub(startAt).String(),
	}).Info("completed PageRank update pass")
	return nil
}

func (svc *Service) loadLinks(calculator *pr.Calculator) (int, error) {
	linkIt, err := svc.cfg.GraphAPI.Links(svc.cfg.Clock.Now())
	if err != nil {
		return 0, err
	}

	var numVertices int
	for linkIt.Next() {
		link := linkIt.Link()
		// Links that are still pending a crawl are not graph vertices.
		if link.RetrievedAt.IsZero() {
			continue
		}
		calculator.AddVertex(link.URL)
		numVertices++
	}
	if err = linkIt.Error(); err != nil {
		_ = linkIt.Close()
		return 0, err
	}

	return numVertices, linkIt.Close()
}

func (svc *Service) loadEdges(calculator *pr.Calculator) error {
	edgeIt, err := svc.cfg.GraphAPI.Edges()
	if err != nil {
		return err
	}

	for edgeIt.Next() {
		edge := edgeIt.Edge()
		// Edges sourced at a page that was crawled after the link
		// snapshot was taken cannot be attached; skip them.
		if err = calculator.AddEdge(edge.Src, edge.Dst); err != nil && !xerrors.Is(err, pr.ErrUnknownEdgeSource) {
			_ = edgeIt.Close()
			return err
		}
	}
	if err = edgeIt.Error(); err != nil {
		_ = edgeIt.Close()
		return err
	}
	return edgeIt.Close()
}
