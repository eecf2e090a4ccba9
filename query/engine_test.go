package query_test

import (
	"testing"

	"github.com/searchengineplaces/webrank/query"
	"github.com/searchengineplaces/webrank/textindexer/index"
	memidx "github.com/searchengineplaces/webrank/textindexer/store/memory"
	gc "gopkg.in/check.v1"
	"golang.org/x/xerrors"
)

var _ = gc.Suite(new(EngineTestSuite))

func Test(t *testing.T) { gc.TestingT(t) }

type EngineTestSuite struct {
	idx *memidx.InMemoryIndexer
}

func (s *EngineTestSuite) SetUpTest(c *gc.C) {
	var err error
	s.idx, err = memidx.NewInMemoryIndexer()
	c.Assert(err, gc.IsNil)
}

func (s *EngineTestSuite) TearDownTest(c *gc.C) {
	c.Assert(s.idx.Close(), gc.IsNil)
}

func (s *EngineTestSuite) TestLookupMatchesSubstringsCaseInsensitively(c *gc.C) {
	s.indexDoc(c, "http://a.com", "written by Oktay123")
	s.indexDoc(c, "http://b.com", "nothing of note")

	engine := query.NewEngine(s.idx, query.RankMap{"http://a.com": 0.4})

	results, err := engine.Lookup("okt")
	c.Assert(err, gc.IsNil)
	c.Assert(results, gc.DeepEquals, []query.Result{
		{URL: "http://a.com", Score: 0.4},
	})
}

func (s *EngineTestSuite) TestLookupOrdersByDescendingScore(c *gc.C) {
	s.indexDoc(c, "http://low.com", "shared keyword")
	s.indexDoc(c, "http://high.com", "shared keyword")
	s.indexDoc(c, "http://mid.com", "shared keyword")

	engine := query.NewEngine(s.idx, query.RankMap{
		"http://low.com":  0.1,
		"http://high.com": 0.7,
		"http://mid.com":  0.2,
	})

	results, err := engine.Lookup("keyword")
	c.Assert(err, gc.IsNil)
	c.Assert(results, gc.DeepEquals, []query.Result{
		{URL: "http://high.com", Score: 0.7},
		{URL: "http://mid.com", Score: 0.2},
		{URL: "http://low.com", Score: 0.1},
	})
}

func (s *EngineTestSuite) TestLookupDefaultsMissingScoresToZero(c *gc.C) {
	s.indexDoc(c, "http://ranked.com", "common term")
	s.indexDoc(c, "http://unranked.com", "common term")

	engine := query.NewEngine(s.idx, query.RankMap{"http://ranked.com": 0.3})

	results, err := engine.Lookup("common")
	c.Assert(err, gc.IsNil)
	c.Assert(results, gc.DeepEquals, []query.Result{
		{URL: "http://ranked.com", Score: 0.3},
		{URL: "http://unranked.com", Score: 0},
	})
}

func (s *EngineTestSuite) TestLookupCollapsesRepeatedOccurrences(c *gc.C) {
	s.indexDoc(c, "http://a.com", "echo echo echo")

	engine := query.NewEngine(s.idx, query.RankMap{})

	results, err := engine.Lookup("echo")
	c.Assert(err, gc.IsNil)
	c.Assert(results, gc.DeepEquals, []query.Result{
		{URL: "http://a.com", Score: 0},
	})
}

func (s *EngineTestSuite) TestLookupWithoutMatches(c *gc.C) {
	s.indexDoc(c, "http://a.com", "some content")

	engine := query.NewEngine(s.idx, query.RankMap{})

	results, err := engine.Lookup("unknown-term")
	c.Assert(xerrors.Is(err, query.ErrNoMatch), gc.Equals, true)
	c.Assert(results, gc.IsNil)
}

func (s *EngineTestSuite) indexDoc(c *gc.C, url, content string) {
	c.Assert(s.idx.Index(&index.Document{URL: url, Content: content}), gc.IsNil)
}
