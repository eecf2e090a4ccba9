package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"
	"golang.org/x/xerrors"

	crawlerpipeline "github.com/searchengineplaces/webrank/crawler"
	"github.com/searchengineplaces/webrank/linkgraph/graph"
	memgraph "github.com/searchengineplaces/webrank/linkgraph/store/memory"
	"github.com/searchengineplaces/webrank/query"
	"github.com/searchengineplaces/webrank/service"
	"github.com/searchengineplaces/webrank/service/crawler"
	"github.com/searchengineplaces/webrank/service/frontend"
	"github.com/searchengineplaces/webrank/service/pagerank"
	memindex "github.com/searchengineplaces/webrank/textindexer/store/memory"
)

var (
	appName = "webrank"
	appSha  = "populated-at-link-time"
	logger  *logrus.Entry
)

func main() {
	host, _ := os.Hostname()
	rootLogger := logrus.New()
	rootLogger.SetFormatter(new(logrus.JSONFormatter))
	logger = rootLogger.WithFields(logrus.Fields{
		"app":  appName,
		"sha":  appSha,
		"host": host,
	})

	if err := makeApp().Run(os.Args); err != nil {
		logger.WithField("err", err).Error("shutting down due to error")
		_ = os.Stderr.Sync()
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}

func makeApp() *cli.App {
	app := cli.NewApp()
	app.Name = appName
	app.Version = appSha
	app.Usage = "Crawl a set of seed sites, score them with PageRank and serve keyword searches over the result"
	app.Flags = []cli.Flag{
		cli.StringSliceFlag{
			Name:   "seed-url",
			EnvVar: "SEED_URL",
			Usage:  "A URL to seed the crawl graph with; may be specified multiple times",
		},
		cli.StringFlag{
			Name:   "fe-listen-addr",
			Value:  ":8080",
			EnvVar: "FE_LISTEN_ADDR",
			Usage:  "The address to listen for incoming front-end requests",
		},
		cli.IntFlag{
			Name:   "results-per-page",
			Value:  10,
			EnvVar: "RESULTS_PER_PAGE",
			Usage:  "The number of entries for each result page",
		},
		cli.IntFlag{
			Name:   "max-summary-length",
			Value:  256,
			EnvVar: "MAX_SUMMARY_LENGTH",
			Usage:  "The maximum length of the summary for each matched document in characters",
		},
		cli.IntFlag{
			Name:   "crawler-num-workers",
			Value:  runtime.NumCPU(),
			EnvVar: "CRAWLER_NUM_WORKERS",
			Usage:  "The number of workers to use for crawling web pages (defaults to the number of CPUs)",
		},
		cli.DurationFlag{
			Name:   "crawler-update-interval",
			Value:  5 * time.Minute,
			EnvVar: "CRAWLER_UPDATE_INTERVAL",
			Usage:  "The time between subsequent crawler passes",
		},
		cli.DurationFlag{
			Name:   "crawler-reindex-threshold",
			Value:  7 * 24 * time.Hour,
			EnvVar: "CRAWLER_REINDEX_THRESHOLD",
			Usage:  "The minimum amount of time before re-crawling an already-visited page",
		},
		cli.DurationFlag{
			Name:   "crawler-fetch-timeout",
			EnvVar: "CRAWLER_FETCH_TIMEOUT",
			Usage:  "The deadline for each page fetch; 0 disables the deadline",
		},
		cli.IntFlag{
			Name:   "crawler-page-budget",
			EnvVar: "CRAWLER_PAGE_BUDGET",
			Usage:  "The maximum number of pages to process in a single crawl pass; 0 disables the budget",
		},
		cli.IntFlag{
			Name:   "pagerank-num-workers",
			Value:  runtime.NumCPU(),
			EnvVar: "PAGERANK_NUM_WORKERS",
			Usage:  "The number of workers to use for calculating PageRank scores (defaults to the number of CPUs)",
		},
		cli.DurationFlag{
			Name:   "pagerank-update-interval",
			Value:  time.Hour,
			EnvVar: "PAGERANK_UPDATE_INTERVAL",
			Usage:  "The time between subsequent PageRank score updates",
		},
		cli.Float64Flag{
			Name:   "pagerank-damping-factor",
			Value:  0.8,
			EnvVar: "PAGERANK_DAMPING_FACTOR",
			Usage:  "The damping factor for PageRank score calculations",
		},
		cli.IntFlag{
			Name:   "pagerank-iterations",
			Value:  10,
			EnvVar: "PAGERANK_ITERATIONS",
			Usage:  "The number of PageRank iterations to run for each score update",
		},
		cli.StringFlag{
			Name:  "query",
			Usage: "Run a single crawl and score pass, print the ranked results for the keyword and exit",
		},
		cli.IntFlag{
			Name:   "pprof-port",
			Value:  6060,
			EnvVar: "PPROF_PORT",
			Usage:  "The port for exposing pprof endpoints",
		},
	}
	app.Action = runMain
	return app
}

func runMain(appCtx *cli.Context) error {
	ctx, cancelFn := context.WithCancel(context.Background())
	defer cancelFn()

	linkGraph := memgraph.NewInMemoryGraph()
	textIndexer, err := memindex.NewInMemoryIndexer()
	if err != nil {
		return err
	}
	defer func() { _ = textIndexer.Close() }()

	if err := seedGraph(linkGraph, appCtx.StringSlice("seed-url")); err != nil {
		return err
	}

	crawlerLogger := logger.WithField("service", "crawler")
	fetcher, err := crawlerpipeline.NewHTTPFetcher(crawlerpipeline.HTTPFetcherConfig{
		Timeout: appCtx.Duration("crawler-fetch-timeout"),
		Logger:  crawlerLogger,
	})
	if err != nil {
		return err
	}

	var crawlerCfg crawler.Config
	crawlerCfg.GraphAPI = linkGraph
	crawlerCfg.IndexAPI = textIndexer
	crawlerCfg.Fetcher = fetcher
	crawlerCfg.FetchWorkers = appCtx.Int("crawler-num-workers")
	crawlerCfg.UpdateInterval = appCtx.Duration("crawler-update-interval")
	crawlerCfg.ReIndexThreshold = appCtx.Duration("crawler-reindex-threshold")
	crawlerCfg.PageBudget = appCtx.Int("crawler-page-budget")
	crawlerCfg.Logger = crawlerLogger
	crawlerSvc, err := crawler.NewService(crawlerCfg)
	if err != nil {
		return err
	}

	var pageRankCfg pagerank.Config
	pageRankCfg.GraphAPI = linkGraph
	pageRankCfg.IndexAPI = textIndexer
	pageRankCfg.ComputeWorkers = appCtx.Int("pagerank-num-workers")
	pageRankCfg.UpdateInterval = appCtx.Duration("pagerank-update-interval")
	pageRankCfg.DampingFactor = appCtx.Float64("pagerank-damping-factor")
	pageRankCfg.Iterations = appCtx.Int("pagerank-iterations")
	pageRankCfg.Logger = logger.WithField("service", "pagerank-calculator")
	pageRankSvc, err := pagerank.NewService(pageRankCfg)
	if err != nil {
		return err
	}

	if keyword := appCtx.String("query"); keyword != "" {
		return runOneShotQuery(ctx, crawlerSvc, pageRankSvc, textIndexer, keyword)
	}

	var frontendCfg frontend.Config
	frontendCfg.GraphAPI = linkGraph
	frontendCfg.IndexAPI = textIndexer
	frontendCfg.ListenAddr = appCtx.String("fe-listen-addr")
	frontendCfg.ResultsPerPage = appCtx.Int("results-per-page")
	frontendCfg.MaxSummaryLength = appCtx.Int("max-summary-length")
	frontendCfg.Logger = logger.WithField("service", "front-end")
	frontendSvc, err := frontend.NewService(frontendCfg)
	if err != nil {
		return err
	}

	// Start pprof server
	pprofListener, err := net.Listen("tcp", fmt.Sprintf(":%d", appCtx.Int("pprof-port")))
	if err != nil {
		return err
	}
	defer func() { _ = pprofListener.Close() }()

	go func() {
		logger.WithField("port", appCtx.Int("pprof-port")).Info("listening for pprof requests")
		srv := new(http.Server)
		_ = srv.Serve(pprofListener)
	}()

	// Start signal watcher
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		select {
		case s := <-sigCh:
			logger.WithField("signal", s.String()).Infof("shutting down due to signal")
			cancelFn()
		case <-ctx.Done():
		}
	}()

	return service.Group{crawlerSvc, pageRankSvc, frontendSvc}.Run(ctx)
}

// runOneShotQuery performs a single crawl and score pass over the seeded
// graph and prints the ranked matches for keyword to stdout.
func runOneShotQuery(ctx context.Context, crawlerSvc *crawler.Service, pageRankSvc *pagerank.Service, textIndexer *memindex.InMemoryIndexer, keyword string) error {
	if err := crawlerSvc.CrawlGraph(ctx); err != nil {
		return xerrors.Errorf("crawl pass failed: %w", err)
	}
	if err := pageRankSvc.UpdateGraphScores(ctx); err != nil {
		return xerrors.Errorf("score pass failed: %w", err)
	}

	engine := query.NewEngine(textIndexer, indexedRanks{idx: textIndexer})
	results, err := engine.Lookup(keyword)
	if err != nil {
		if xerrors.Is(err, query.ErrNoMatch) {
			fmt.Printf("no matches for %q\n", keyword)
			return nil
		}
		return err
	}

	for _, res := range results {
		fmt.Printf("%0.6f %s\n", res.Score, res.URL)
	}
	return nil
}

func seedGraph(linkGraph *memgraph.InMemoryGraph, seedURLs []string) error {
	for _, seedURL := range seedURLs {
		if !strings.HasPrefix(seedURL, "http://") && !strings.HasPrefix(seedURL, "https://") {
			return xerrors.Errorf("seed URL %q must use the http or https scheme", seedURL)
		}
		if err := linkGraph.UpsertLink(&graph.Link{URL: seedURL}); err != nil {
			return xerrors.Errorf("could not seed crawl graph: %w", err)
		}
	}
	return nil
}

// indexedRanks exposes the PageRank scores persisted in the text index to
// the query engine.
type indexedRanks struct {
	idx *memindex.InMemoryIndexer
}

func (r indexedRanks) ScoreOf(url string) float64 {
	doc, err := r.idx.FindByURL(url)
	if err != nil {
		return 0
	}
	return doc.PageRank
}
