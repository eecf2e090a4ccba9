package crawler

import (
	"bytes"
	"sync"
	"time"

	"github.com/searchengineplaces/webrank/pipeline"
)

var (
	_ pipeline.Payload = (*crawlerPayload)(nil)

	payloadPool = sync.Pool{
		New: func() interface{} { return new(crawlerPayload) },
	}
)

// crawlerPayload carries a single page through the crawl pipeline. Payloads
// are pooled; MarkAsProcessed returns them for reuse.
type crawlerPayload struct {
	URL         string
	RetrievedAt time.Time

	RawContent bytes.Buffer

	Links       []string
	Title       string
	TextContent string
}

// Clone implements pipeline.Payload.
func (p *crawlerPayload) Clone() pipeline.Payload {
	c := payloadPool.Get().(*crawlerPayload)
	c.URL = p.URL
	c.RetrievedAt = p.RetrievedAt
	c.Links = append([]string(nil), p.Links...)
	c.Title = p.Title
	c.TextContent = p.TextContent
	// Copy without draining the source buffer so the original payload
	// remains usable after a fan-out.
	c.RawContent.Write(p.RawContent.Bytes())
	return c
}

// MarkAsProcessed implements pipeline.Payload.
func (p *crawlerPayload) MarkAsProcessed() {
	p.URL = ""
	p.RetrievedAt = time.Time{}
	p.RawContent.Reset()
	p.Links = p.Links[:0]
	p.Title = ""
	p.TextContent = ""
	payloadPool.Put(p)
}
