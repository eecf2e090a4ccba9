package crawler

import (
	"context"
	"time"

	"github.com/searchengineplaces/webrank/linkgraph/graph"
	"github.com/searchengineplaces/webrank/pipeline"
)

var _ pipeline.Processor = (*graphUpdater)(nil)

// graphUpdater records a crawled page and its outgoing edges in the link
// graph. Discovered destinations are upserted without a retrieval timestamp
// so they join the crawl frontier; re-discovering an already-crawled page is
// a no-op.
type graphUpdater struct {
	updater Graph
}

func newGraphUpdater(updater Graph) *graphUpdater {
	return &graphUpdater{updater: updater}
}

// Process implements pipeline.Processor.
func (u *graphUpdater) Process(_ context.Context, p pipeline.Payload) (pipeline.Payload, error) {
	payload := p.(*crawlerPayload)

	src := &graph.Link{
		URL:         payload.URL,
		RetrievedAt: time.Now(),
	}
	if err := u.updater.UpsertLink(src); err != nil {
		return nil, err
	}

	// Upsert the discovered links and create edges for them. Edges not
	// touched by this pass are stale leftovers from a previous crawl of
	// the page and get dropped below.
	removeEdgesOlderThan := time.Now()
	for _, dst := range payload.Links {
		if err := u.updater.UpsertLink(&graph.Link{URL: dst}); err != nil {
			return nil, err
		}

		if err := u.updater.UpsertEdge(&graph.Edge{Src: src.URL, Dst: dst}); err != nil {
			return nil, err
		}
	}

	if err := u.updater.RemoveStaleEdges(src.URL, removeEdgesOlderThan); err != nil {
		return nil, err
	}

	return p, nil
}
