package crawler

import (
	"context"
	"strings"

	"github.com/searchengineplaces/webrank/pipeline"
)

// linkMarker is the anchor-reference marker the extractor scans for. Only
// anchor hrefs are considered; other resource references (images, scripts)
// are deliberately out of scope.
const linkMarker = `<a href=`

// ExtractLinks scans markup for anchor references and returns the set of
// absolute http(s) URLs they point to, in discovery order and with
// duplicates removed.
//
// For each marker the candidate value is the text between the next pair of
// double quotes. Candidates are normalized in order: the fragment portion is
// stripped, protocol-relative values ("//host/...") get an "http:" prefix
// and non-absolute values are resolved against baseURL by concatenation
// (baseURL+path when the value starts with "/", baseURL+"/"+path otherwise).
// When baseURL is empty, relative candidates are dropped. Anything whose
// final form does not start with "http://" or "https://" is discarded, which
// filters out schemes such as mailto: and javascript:. A marker without a
// following quote pair ends the scan without emitting a candidate.
func ExtractLinks(markup, baseURL string) []string {
	var links []string
	seen := make(map[string]struct{})

	for {
		start := strings.Index(markup, linkMarker)
		if start == -1 {
			break
		}

		rest := markup[start+len(linkMarker):]
		openQuote := strings.IndexByte(rest, '"')
		if openQuote == -1 {
			break
		}
		closeQuote := strings.IndexByte(rest[openQuote+1:], '"')
		if closeQuote == -1 {
			break
		}

		candidate := rest[openQuote+1 : openQuote+1+closeQuote]
		markup = rest[openQuote+closeQuote+2:]

		link, ok := normalizeLink(candidate, baseURL)
		if !ok {
			continue
		}
		if _, dup := seen[link]; dup {
			continue
		}
		seen[link] = struct{}{}
		links = append(links, link)
	}

	return links
}

// normalizeLink applies the candidate normalization rules and reports
// whether the candidate survives the scheme filter.
func normalizeLink(candidate, baseURL string) (string, bool) {
	// Drop the fragment; anchors within a page are not separate pages.
	if i := strings.IndexByte(candidate, '#'); i != -1 {
		candidate = candidate[:i]
	}

	// Protocol-relative references inherit http.
	if strings.HasPrefix(candidate, "//") {
		candidate = "http:" + candidate
	}

	if !isAbsolute(candidate) && baseURL != "" {
		if strings.HasPrefix(candidate, "/") {
			candidate = baseURL + candidate
		} else {
			candidate = baseURL + "/" + candidate
		}
	}

	if !isAbsolute(candidate) {
		return "", false
	}
	return candidate, true
}

func isAbsolute(link string) bool {
	return strings.HasPrefix(link, "http://") || strings.HasPrefix(link, "https://")
}

var _ pipeline.Processor = (*linkExtractor)(nil)

// linkExtractor is the pipeline stage that collects the outgoing links of a
// crawled page. No base URL is supplied: only absolute links are followed
// from crawled pages.
type linkExtractor struct{}

func newLinkExtractor() *linkExtractor {
	return &linkExtractor{}
}

// Process implements pipeline.Processor.
func (le *linkExtractor) Process(_ context.Context, p pipeline.Payload) (pipeline.Payload, error) {
	payload := p.(*crawlerPayload)
	payload.Links = append(payload.Links, ExtractLinks(payload.RawContent.String(), "")...)
	return payload, nil
}
