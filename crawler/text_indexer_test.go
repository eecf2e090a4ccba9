package crawler

import (
	"context"

	"github.com/golang/mock/gomock"
	"github.com/searchengineplaces/webrank/crawler/mocks"
	"github.com/searchengineplaces/webrank/textindexer/index"
	gc "gopkg.in/check.v1"
)

var _ = gc.Suite(new(TextIndexerTestSuite))

type TextIndexerTestSuite struct {
	indexer *mocks.MockIndexer
}

func (s *TextIndexerTestSuite) TestTextIndexer(c *gc.C) {
	ctrl := gomock.NewController(c)
	defer ctrl.Finish()
	s.indexer = mocks.NewMockIndexer(ctrl)

	payload := &crawlerPayload{
		URL:         "http://example.com",
		Title:       "some title",
		TextContent: "Lorem ipsum rolor",
	}
	payload.RawContent.WriteString(`<html><body>Lorem <b>ipsum</b> rolor</body></html>`)

	s.indexer.EXPECT().Index(docMatcher{
		url:         "http://example.com",
		title:       "some title",
		content:     `<html><body>Lorem <b>ipsum</b> rolor</body></html>`,
		textContent: "Lorem ipsum rolor",
	}).Return(nil)

	result, err := newTextIndexer(s.indexer).Process(context.TODO(), payload)
	c.Assert(err, gc.IsNil)
	c.Assert(result, gc.Equals, payload)
}

type docMatcher struct {
	url         string
	title       string
	content     string
	textContent string
}

func (m docMatcher) Matches(x interface{}) bool {
	doc, ok := x.(*index.Document)
	return ok &&
		doc.URL == m.url &&
		doc.Title == m.title &&
		doc.Content == m.content &&
		doc.TextContent == m.textContent
}

func (m docMatcher) String() string {
	return "has URL " + m.url
}
