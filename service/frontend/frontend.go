// Package frontend implements the web front-end of the search engine: a
// search form, a paginated results view and a page for submitting new sites
// to the crawl frontier.
package frontend

import (
	"context"
	"fmt"
	"html/template"
	"io"
	"io/ioutil"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/hashicorp/go-multierror"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/searchengineplaces/webrank/linkgraph/graph"
	"github.com/searchengineplaces/webrank/textindexer/index"
	"github.com/sirupsen/logrus"
	"golang.org/x/xerrors"
)

//go:generate mockgen -package mocks -destination mocks/mocks.go github.com/searchengineplaces/webrank/service/frontend GraphAPI,IndexAPI
//go:generate mockgen -package mocks -destination mocks/mock_iterator.go github.com/searchengineplaces/webrank/textindexer/index Iterator

const (
	indexEndpoint      = "/"
	searchEndpoint     = "/search"
	submitLinkEndpoint = "/submit/site"
	metricsEndpoint    = "/metrics"
	healthEndpoint     = "/healthz"

	defaultResultsPerPage   = 10
	defaultMaxSummaryLength = 256
)

var promSearchRequests = promauto.NewCounter(prometheus.CounterOpts{
	Name: "webrank_frontend_search_requests_total",
	Help: "The total number of search requests served by the front-end",
})

// GraphAPI is implemented by objects that can add links to the link graph.
type GraphAPI interface {
	UpsertLink(*graph.Link) error
}

// IndexAPI is implemented by objects that can search indexed documents.
type IndexAPI interface {
	Search(query index.Query) (index.Iterator, error)
}

// Config groups the settings for the front-end service.
type Config struct {
	// The link graph to register submitted sites with.
	GraphAPI GraphAPI

	// The document index that search queries run against.
	IndexAPI IndexAPI

	// The address to listen on for incoming requests.
	ListenAddr string

	// How many results to show on each page; defaults to 10.
	ResultsPerPage int

	// The maximum character length of a result summary; defaults to 256.
	MaxSummaryLength int

	// Logger for the service; a discarding logger is used when unset.
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
	if cfg.ListenAddr == "" {
		err = multierror.Append(err, xerrors.Errorf("listen address has not been specified"))
	}
	if cfg.ResultsPerPage <= 0 {
		cfg.ResultsPerPage = defaultResultsPerPage
	}
	if cfg.MaxSummaryLength <= 0 {
		cfg.MaxSummaryLength = defaultMaxSummaryLength
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.NewEntry(&logrus.Logger{Out: ioutil.Discard})
	}
	return err
}

// Service implements the front-end component of the search engine.
type Service struct {
	cfg    Config
	router *mux.Router

	// A template executor hook which tests can override.
	tplExecutor func(tpl *template.Template, w io.Writer, data map[string]interface{}) error
}

// NewService creates a new front-end service instance with the specified config.
func NewService(cfg Config) (*Service, error) {
	if err := cfg.validate(); err != nil {
		return nil, xerrors.Errorf("front-end service: config validation failed: %w", err)
	}

	svc := &Service{
		cfg:    cfg,
		router: mux.NewRouter(),
		tplExecutor: func(tpl *template.Template, w io.Writer, data map[string]interface{}) error {
			return tpl.Execute(w, data)
		},
	}
	svc.registerRoutes()
	return svc, nil
}

func (svc *Service) registerRoutes() {
	svc.router.HandleFunc(indexEndpoint, svc.handleIndexPage).Methods("GET")
	svc.router.HandleFunc(searchEndpoint, svc.handleSearch).Methods("GET")
	svc.router.HandleFunc(submitLinkEndpoint, svc.handleSubmitSite).Methods("GET", "POST")
	svc.router.Handle(metricsEndpoint, promhttp.Handler()).Methods("GET")
	svc.router.HandleFunc(healthEndpoint, svc.handleHealthCheck).Methods("GET")
	svc.router.NotFoundHandler = http.HandlerFunc(svc.handleNotFound)
}

// Name implements service.Service
func (svc *Service) Name() string { return "front-end" }

// Run implements service.Service
func (svc *Service) Run(ctx context.Context) error {
	l, err := net.Listen("tcp", svc.cfg.ListenAddr)
	if err != nil {
		return err
	}
	defer func() { _ = l.Close() }()

	srv := &http.Server{Handler: svc.router}
	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()

	svc.cfg.Logger.WithField("addr", svc.cfg.ListenAddr).Info("starting front-end server")
	if err = srv.Serve(l); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (svc *Service) handleHealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (svc *Service) handleIndexPage(w http.ResponseWriter, _ *http.Request) {
	_ = svc.tplExecutor(indexPageTemplate, w, map[string]interface{}{
		"searchEndpoint":     searchEndpoint,
		"submitLinkEndpoint": submitLinkEndpoint,
	})
}

func (svc *Service) handleNotFound(w http.ResponseWriter, _ *http.Request) {
	_ = svc.tplExecutor(msgPageTemplate, w, map[string]interface{}{
		"indexEndpoint":  indexEndpoint,
		"searchEndpoint": searchEndpoint,
		"messageTitle":   "Page not found",
		"messageContent": "Page not found.",
	})
}

func (svc *Service) renderSearchError(w http.ResponseWriter, searchTerms string) {
	w.WriteHeader(http.StatusInternalServerError)
	_ = svc.tplExecutor(msgPageTemplate, w, map[string]interface{}{
		"indexEndpoint":  indexEndpoint,
		"searchEndpoint": searchEndpoint,
		"searchTerms":    searchTerms,
		"messageTitle":   "Error",
		"messageContent": "An error occurred; please try again later.",
	})
}

func (svc *Service) handleSubmitSite(w http.ResponseWriter, r *http.Request) {
	var msg string
	defer func() {
		_ = svc.tplExecutor(submitLinkPageTemplate, w, map[string]interface{}{
			"indexEndpoint":      indexEndpoint,
			"submitLinkEndpoint": submitLinkEndpoint,
			"messageContent":     msg,
		})
	}()

	if r.Method != "POST" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if err := r.ParseForm(); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		msg = "Please provide a valid http or https URL."
		return
	}
	link, err := url.Parse(r.Form.Get("link"))
	if err != nil || (link.Scheme != "http" && link.Scheme != "https") {
		w.WriteHeader(http.StatusBadRequest)
		msg = "Please provide a valid http or https URL."
		return
	}

	// Fragments point into a page; the crawler only tracks whole pages.
	link.Fragment = ""
	if err = svc.cfg.GraphAPI.UpsertLink(&graph.Link{URL: link.String()}); err != nil {
		svc.cfg.Logger.WithField("err", err).Errorf("could not add submitted link to the crawl graph")
		w.WriteHeader(http.StatusInternalServerError)
		msg = "An error occurred while queueing the site for crawling; please try again later."
		return
	}

	msg = "The site was queued for crawling!"
}

func (svc *Service) handleSearch(w http.ResponseWriter, r *http.Request) {
	promSearchRequests.Inc()
	searchTerms := r.URL.Query().Get("q")
	offset, _ := strconv.ParseUint(r.URL.Query().Get("offset"), 10, 64)

	results, pagination, err := svc.runQuery(searchTerms, offset)
	if err != nil {
		svc.cfg.Logger.WithField("err", err).Errorf("search query execution failed")
		svc.renderSearchError(w, searchTerms)
		return
	}

	if err := svc.tplExecutor(resultsPageTemplate, w, map[string]interface{}{
		"indexEndpoint":  indexEndpoint,
		"searchEndpoint": searchEndpoint,
		"searchTerms":    searchTerms,
		"pagination":     pagination,
		"results":        results,
	}); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func (svc *Service) runQuery(searchTerms string, offset uint64) ([]searchResult, *paginationDetails, error) {
	query := index.Query{Type: index.QueryTypeMatch, Expression: searchTerms, Offset: offset}
	if strings.HasPrefix(searchTerms, `"`) && strings.HasSuffix(searchTerms, `"`) {
		query.Type = index.QueryTypePhrase
		searchTerms = strings.Trim(searchTerms, `"`)
	}

	it, err := svc.cfg.IndexAPI.Search(query)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = it.Close() }()

	// Summaries are built from the sanitized text of each document with the
	// search terms wrapped in highlight tags.
	summarizer := newMatchSummarizer(searchTerms, svc.cfg.MaxSummaryLength)
	highlighter := newMatchHighlighter(searchTerms)
	results := make([]searchResult, 0, svc.cfg.ResultsPerPage)
	for len(results) < svc.cfg.ResultsPerPage && it.Next() {
		doc := it.Document()
		summary := summarizer.MatchSummary(doc.TextContent)
		results = append(results, searchResult{
			doc:     doc,
			summary: highlighter.Highlight(template.HTMLEscapeString(summary)),
		})
	}
	if err = it.Error(); err != nil {
		return nil, nil, err
	}

	return results, svc.paginate(searchTerms, offset, len(results), int(it.TotalCount())), nil
}

func (svc *Service) paginate(searchTerms string, offset uint64, numResults, total int) *paginationDetails {
	pagination := &paginationDetails{
		From:  int(offset) + 1,
		To:    int(offset) + numResults,
		Total: total,
	}
	if offset > 0 {
		pagination.PrevLink = fmt.Sprintf("%s?q=%s", searchEndpoint, searchTerms)
		if prevOffset := int(offset) - svc.cfg.ResultsPerPage; prevOffset > 0 {
			pagination.PrevLink += fmt.Sprintf("&offset=%d", prevOffset)
		}
	}
	if nextOffset := int(offset) + numResults; nextOffset < total {
		pagination.NextLink = fmt.Sprintf("%s?q=%s&offset=%d", searchEndpoint, searchTerms, nextOffset)
	}
	return pagination
}

// paginationDetails drives the paginator component of the results template.
type paginationDetails struct {
	From     int
	To       int
	Total    int
	PrevLink string
	NextLink string
}

// searchResult pairs an index.Document with its highlighted summary for
// rendering in the results view.
type searchResult struct {
	doc     *index.Document
	summary string
}

func (r *searchResult) HighlightedSummary() template.HTML { return template.HTML(r.summary) }
func (r *searchResult) URL() string                       { return r.doc.URL }
func (r *searchResult) Title() string {
	if r.doc.Title != "" {
		return r.doc.Title
	}
	return r.doc.URL
}
