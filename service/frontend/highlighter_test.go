package frontend

import (
	gc "gopkg.in/check.v1"
)

var _ = gc.Suite(new(HighlightTestSuite))

type HighlightTestSuite struct {
}

func (s *HighlightTestSuite) TestHighlightSentence(c *gc.C) {
	specs := []struct {
		in  string
		exp string
	}{
		{in: "Test KEYWORD1", exp: "Test <em>KEYWORD1</em>"},
		{in: "Data. KEYWORD2 lorem ipsum.KEYWORD1", exp: "Data. <em>KEYWORD2</em> lorem ipsum.<em>KEYWORD1</em>"},
		{in: "case-insensitive keyword1 match", exp: "case-insensitive <em>keyword1</em> match"},
		{in: "no match", exp: "no match"},
	}

	h := newMatchHighlighter("KEYWORD1 KEYWORD2")
	for specIndex, spec := range specs {
		c.Logf("spec %d", specIndex)
		got := h.Highlight(spec.in)
		c.Assert(got, gc.Equals, spec.exp)
	}
}

func (s *HighlightTestSuite) TestHighlightQuotedPhrase(c *gc.C) {
	h := newMatchHighlighter(`"lorem ipsum"`)
	got := h.Highlight("Bacon lorem ipsum dolor")
	c.Assert(got, gc.Equals, "Bacon <em>lorem</em> <em>ipsum</em> dolor")
}
