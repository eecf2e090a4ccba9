package frontend

import (
	gc "gopkg.in/check.v1"
)

var _ = gc.Suite(new(SummarizerTestSuite))

type SummarizerTestSuite struct {
}

func (s *SummarizerTestSuite) TestSplitSentences(c *gc.C) {
	specs := []struct {
		in  string
		exp []string
	}{
		{
			in:  "First one. Second two! Third three? tail",
			exp: []string{"First one.", "Second two!", "Third three?", "tail"},
		},
		{
			in:  "A sentence with an inline 3.14 number. Another.",
			exp: []string{"A sentence with an inline 3.14 number.", "Another."},
		},
		{
			in:  "no terminator at all",
			exp: []string{"no terminator at all"},
		},
		{
			in:  "line one.\nline two.",
			exp: []string{"line one.", "line two."},
		},
	}

	for specIndex, spec := range specs {
		c.Logf("spec %d", specIndex)
		c.Assert(splitSentences(spec.in), gc.DeepEquals, spec.exp)
	}
}

func (s *SummarizerTestSuite) TestMatchSummary(c *gc.C) {
	specs := []struct {
		descr   string
		terms   string
		content string
		exp     string
	}{
		{
			descr:   "non-adjacent matching sentences are joined with an ellipsis",
			terms:   "dolor",
			content: "Lorem ipsum. Dolor sit amet. Consectetur elit. More dolor here.",
			exp:     "Dolor sit amet. .. More dolor here.",
		},
		{
			descr:   "adjacent matching sentences are joined with a space",
			terms:   "ipsum",
			content: "Lorem ipsum. Ipsum again. No hit.",
			exp:     "Lorem ipsum. Ipsum again.",
		},
		{
			descr:   "quoted phrases are split into individual terms",
			terms:   `"sit amet"`,
			content: "Lorem ipsum. Dolor sit elsewhere. Nothing.",
			exp:     "Dolor sit elsewhere.",
		},
		{
			descr:   "falls back to the head of the content when nothing matches",
			terms:   "zzz",
			content: "Short content here.",
			exp:     "Short content here.",
		},
	}

	for specIndex, spec := range specs {
		c.Logf("spec %d: %s", specIndex, spec.descr)
		sum := newMatchSummarizer(spec.terms, 256)
		c.Assert(sum.MatchSummary(spec.content), gc.Equals, spec.exp)
	}
}

func (s *SummarizerTestSuite) TestMatchSummaryTruncation(c *gc.C) {
	sum := newMatchSummarizer("abc", 10)
	got := sum.MatchSummary("abcdefghijklmnop")
	c.Assert(got, gc.Equals, "abcdefghij...")

	sum = newMatchSummarizer("zzz", 10)
	got = sum.MatchSummary("abcdefghijklmnop")
	c.Assert(got, gc.Equals, "abcdefghij...")
}
