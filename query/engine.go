// Package query answers keyword queries against a populated text index and
// a set of PageRank scores.
package query

import (
	"sort"

	"github.com/searchengineplaces/webrank/textindexer/index"
	"golang.org/x/xerrors"
)

// ErrNoMatch is returned by Lookup when no indexed keyword matches the
// query. It is distinct from a query that matches keywords mapping to an
// empty result list; the latter cannot occur since every indexed keyword has
// at least one posting.
var ErrNoMatch = xerrors.New("no indexed keyword matches the query")

// IndexAPI defines the subset of the text index used for query execution.
type IndexAPI interface {
	// Postings returns an iterator over the postings of every indexed
	// keyword that contains the query as a case-insensitive substring.
	Postings(keyword string) (index.PostingIterator, error)
}

// RankAPI is implemented by objects that can report the PageRank score of a
// page.
type RankAPI interface {
	// ScoreOf returns the rank score for url or 0 if url has not been
	// assigned a score.
	ScoreOf(url string) float64
}

// RankMap is a RankAPI implementation backed by a plain map.
type RankMap map[string]float64

// ScoreOf implements RankAPI.
func (m RankMap) ScoreOf(url string) float64 { return m[url] }

// Result describes a single entry in the ordered result list for a query.
type Result struct {
	URL   string
	Score float64
}

// Engine executes keyword queries against a text index and a rank source.
type Engine struct {
	index IndexAPI
	ranks RankAPI
}

// NewEngine returns a query engine that resolves keywords via the provided
// index and orders results via the provided rank source.
func NewEngine(indexAPI IndexAPI, rankAPI RankAPI) *Engine {
	return &Engine{
		index: indexAPI,
		ranks: rankAPI,
	}
}

// Lookup returns the pages whose content matches keyword, ordered by
// descending rank score. Matching is case-insensitive and by substring: a
// query matches every indexed token that contains it. Pages without a rank
// score sort with a score of 0. If nothing matches, ErrNoMatch is returned.
func (e *Engine) Lookup(keyword string) ([]Result, error) {
	it, err := e.index.Postings(keyword)
	if err != nil {
		return nil, xerrors.Errorf("lookup %q: %w", keyword, err)
	}

	// A page may appear multiple times in the postings; each sighting
	// overwrites the previous score entry.
	scores := make(map[string]float64)
	var order []string
	for it.Next() {
		url := it.URL()
		if _, seen := scores[url]; !seen {
			order = append(order, url)
		}
		scores[url] = e.ranks.ScoreOf(url)
	}
	if err := it.Error(); err != nil {
		_ = it.Close()
		return nil, xerrors.Errorf("lookup %q: %w", keyword, err)
	}
	if err := it.Close(); err != nil {
		return nil, xerrors.Errorf("lookup %q: %w", keyword, err)
	}

	if len(order) == 0 {
		return nil, ErrNoMatch
	}

	results := make([]Result, len(order))
	for i, url := range order {
		results[i] = Result{URL: url, Score: scores[url]}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	return results, nil
}
