package crawler

import (
	"context"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/searchengineplaces/webrank/crawler/mocks"
	"github.com/searchengineplaces/webrank/linkgraph/graph"
	gc "gopkg.in/check.v1"
)

var _ = gc.Suite(new(GraphUpdaterTestSuite))

type GraphUpdaterTestSuite struct {
	graph *mocks.MockGraph
}

func (s *GraphUpdaterTestSuite) TestGraphUpdater(c *gc.C) {
	ctrl := gomock.NewController(c)
	defer ctrl.Finish()
	s.graph = mocks.NewMockGraph(ctrl)

	payload := &crawlerPayload{
		URL: "http://example.com",
		Links: []string{
			"http://example.com/foo",
			"http://example.com/bar",
		},
	}

	exp := s.graph.EXPECT()

	// We expect the crawled page to be upserted with a fresh retrieval
	// timestamp and the discovered links to be upserted without one so
	// they join the crawl frontier.
	exp.UpsertLink(linkMatcher{url: "http://example.com", notRetrievedBefore: time.Now()}).Return(nil)

	exp.UpsertLink(linkMatcher{url: "http://example.com/foo"}).Return(nil)
	exp.UpsertEdge(edgeMatcher{src: "http://example.com", dst: "http://example.com/foo"}).Return(nil)
	exp.UpsertLink(linkMatcher{url: "http://example.com/bar"}).Return(nil)
	exp.UpsertEdge(edgeMatcher{src: "http://example.com", dst: "http://example.com/bar"}).Return(nil)

	// We then expect edges not refreshed by this pass to be dropped.
	exp.RemoveStaleEdges("http://example.com", gomock.Any()).Return(nil)

	result, err := newGraphUpdater(s.graph).Process(context.TODO(), payload)
	c.Assert(err, gc.IsNil)
	c.Assert(result, gc.Equals, payload)
}

type linkMatcher struct {
	url                string
	notRetrievedBefore time.Time
}

func (m linkMatcher) Matches(x interface{}) bool {
	link, ok := x.(*graph.Link)
	if !ok || link.URL != m.url {
		return false
	}
	if m.notRetrievedBefore.IsZero() {
		return link.RetrievedAt.IsZero()
	}
	return !link.RetrievedAt.Before(m.notRetrievedBefore)
}

func (m linkMatcher) String() string {
	return "has URL " + m.url
}

type edgeMatcher struct {
	src, dst string
}

func (m edgeMatcher) Matches(x interface{}) bool {
	edge, ok := x.(*graph.Edge)
	return ok && edge.Src == m.src && edge.Dst == m.dst
}

func (m edgeMatcher) String() string {
	return "connects " + m.src + " to " + m.dst
}
