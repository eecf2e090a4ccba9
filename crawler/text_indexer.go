package crawler

import (
	"context"

	"github.com/searchengineplaces/webrank/pipeline"
	"github.com/searchengineplaces/webrank/textindexer/index"
)

var _ pipeline.Processor = (*textIndexer)(nil)

// textIndexer feeds the crawled page into the text index. The raw content
// drives the posting tokenizer; the sanitized text is stored for snippets
// and phrase search.
type textIndexer struct {
	indexer Indexer
}

func newTextIndexer(indexer Indexer) *textIndexer {
	return &textIndexer{indexer: indexer}
}

// Process implements pipeline.Processor.
func (ti *textIndexer) Process(_ context.Context, p pipeline.Payload) (pipeline.Payload, error) {
	payload := p.(*crawlerPayload)

	doc := &index.Document{
		URL:         payload.URL,
		Title:       payload.Title,
		Content:     payload.RawContent.String(),
		TextContent: payload.TextContent,
	}

	if err := ti.indexer.Index(doc); err != nil {
		return nil, err
	}

	return p, nil
}
