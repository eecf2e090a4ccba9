package crawler

import (
	"context"

	gc "gopkg.in/check.v1"
)

var _ = gc.Suite(new(LinkExtractorTestSuite))

type LinkExtractorTestSuite struct{}

func (s *LinkExtractorTestSuite) TestExtractLinksWithBase(c *gc.C) {
	content := `<html><body>
<a href="/x">l</a>
<a href="https://example.com">l2</a>
</body></html>`

	got := ExtractLinks(content, "https://example.com")
	c.Assert(got, gc.DeepEquals, []string{
		"https://example.com/x",
		"https://example.com",
	})
}

func (s *LinkExtractorTestSuite) TestExtractLinksAbsoluteAndProtocolRelative(c *gc.C) {
	content := `
<html>
<body>
<a href="https://example.com"/>
<a href="//foo.com"></a>
<a href="/absolute/link"></a>

<!-- duplicates, even with fragments, should be skipped -->
<a href="https://example.com#important"/>
<a href="//foo.com"></a>
<a href="/absolute/link#some-anchor"></a>

</body>
</html>
`
	got := ExtractLinks(content, "http://test.com")
	c.Assert(got, gc.DeepEquals, []string{
		"https://example.com",
		"http://foo.com",
		"http://test.com/absolute/link",
	})
}

func (s *LinkExtractorTestSuite) TestExtractLinksResolvesByConcatenation(c *gc.C) {
	// Resolution is plain string concatenation against the base; dot
	// segments are not collapsed and the base path is not trimmed.
	content := `<a href="foo.html">link to foo</a>`

	got := ExtractLinks(content, "https://test.com/content")
	c.Assert(got, gc.DeepEquals, []string{
		"https://test.com/content/foo.html",
	})
}

func (s *LinkExtractorTestSuite) TestExtractLinksWithNonHTTPLinks(c *gc.C) {
	content := `
<html>
<body>
<a href="ftp://example.com">An FTP site</a>
<a href="mailto:someone@example.com">mail me</a>
<a href="javascript:void(0)">click</a>
</body>
</html>
`
	got := ExtractLinks(content, "")
	c.Assert(got, gc.IsNil)
}

func (s *LinkExtractorTestSuite) TestExtractLinksWithoutBaseDropsRelative(c *gc.C) {
	content := `
<a href="/local/page">local</a>
<a href="https://example.com/page">remote</a>
`
	got := ExtractLinks(content, "")
	c.Assert(got, gc.DeepEquals, []string{
		"https://example.com/page",
	})
}

func (s *LinkExtractorTestSuite) TestExtractLinksWithMalformedMarkers(c *gc.C) {
	specs := []struct {
		descr string
		input string
		exp   []string
	}{
		{
			descr: "marker without any quotes ends the scan",
			input: `<a href=foo>bar</a>`,
			exp:   nil,
		},
		{
			descr: "marker with an unterminated quote ends the scan",
			input: `<a href="https://example.com`,
			exp:   nil,
		},
		{
			descr: "valid marker before a malformed one",
			input: `<a href="https://example.com">ok</a><a href=`,
			exp:   []string{"https://example.com"},
		},
		{
			descr: "uppercase markers are not scanned",
			input: `<A HREF="https://example.com">ok</A>`,
			exp:   nil,
		},
	}

	for specIndex, spec := range specs {
		c.Logf("[spec %d] %s", specIndex, spec.descr)
		got := ExtractLinks(spec.input, "https://test.com")
		c.Assert(got, gc.DeepEquals, spec.exp)
	}
}

func (s *LinkExtractorTestSuite) TestLinkExtractorStage(c *gc.C) {
	payload := &crawlerPayload{URL: "http://test.com"}
	payload.RawContent.WriteString(`
<a href="https://example.com/foo">foo</a>
<a href="/bar">bar</a>
`)

	result, err := newLinkExtractor().Process(context.TODO(), payload)
	c.Assert(err, gc.IsNil)

	// Relative links are not followed from crawled pages.
	got := result.(*crawlerPayload)
	c.Assert(got.Links, gc.DeepEquals, []string{
		"https://example.com/foo",
	})
}
