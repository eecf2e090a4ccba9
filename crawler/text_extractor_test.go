package crawler

import (
	"context"

	gc "gopkg.in/check.v1"
)

var _ = gc.Suite(new(TextExtractorTestSuite))

type TextExtractorTestSuite struct{}

func (s *TextExtractorTestSuite) TestTextExtractor(c *gc.C) {
	payload := &crawlerPayload{URL: "http://example.com"}
	payload.RawContent.WriteString(`
<html>
<head>
<title>A      simple title</title>
</head>
<body>
Some text rich in &#128512; emojis
<a href="http://example.com/other">with a link</a>
</body>
</html>
`)

	result, err := newTextExtractor().Process(context.TODO(), payload)
	c.Assert(err, gc.IsNil)

	got := result.(*crawlerPayload)
	c.Assert(got.Title, gc.Equals, "A simple title")
	c.Assert(got.TextContent, gc.Equals, "A simple title Some text rich in \xf0\x9f\x98\x80 emojis with a link")
}

func (s *TextExtractorTestSuite) TestTextExtractorKeepsRawContent(c *gc.C) {
	raw := `<html><body><b>bold</b> text</body></html>`
	payload := &crawlerPayload{URL: "http://example.com"}
	payload.RawContent.WriteString(raw)

	result, err := newTextExtractor().Process(context.TODO(), payload)
	c.Assert(err, gc.IsNil)

	// The raw markup feeds the posting index downstream and must survive
	// sanitization intact.
	got := result.(*crawlerPayload)
	c.Assert(got.RawContent.String(), gc.Equals, raw)
	c.Assert(got.TextContent, gc.Equals, "bold text")
}
