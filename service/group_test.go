package service

import (
	"context"
	"testing"
	"time"

	"golang.org/x/xerrors"
	gc "gopkg.in/check.v1"
)

var _ = gc.Suite(new(GroupTestSuite))

func Test(t *testing.T) { gc.TestingT(t) }

type GroupTestSuite struct {
}

func (s *GroupTestSuite) TestRunStopsGroupWhenAServiceFails(c *gc.C) {
	grp := Group{
		stubService{name: "crawler"},
		stubService{name: "pagerank", err: xerrors.Errorf("graph unavailable")},
		stubService{name: "front-end"},
	}

	err := grp.Run(context.TODO())
	c.Assert(err, gc.Not(gc.IsNil))
	c.Assert(err, gc.ErrorMatches, "(?ms).*pagerank: graph unavailable.*")
}

func (s *GroupTestSuite) TestRunCollectsErrorsFromAllFailedServices(c *gc.C) {
	grp := Group{
		stubService{name: "crawler", err: xerrors.Errorf("fetch pool exhausted")},
		stubService{name: "pagerank", err: xerrors.Errorf("graph unavailable")},
		stubService{name: "front-end"},
	}

	err := grp.Run(context.TODO())
	c.Assert(err, gc.ErrorMatches, "(?ms).*crawler: fetch pool exhausted.*")
	c.Assert(err, gc.ErrorMatches, "(?ms).*pagerank: graph unavailable.*")
}

func (s *GroupTestSuite) TestRunReturnsCleanlyWhenContextExpires(c *gc.C) {
	grp := Group{
		stubService{name: "crawler"},
		stubService{name: "front-end"},
	}

	ctx, cancelFn := context.WithTimeout(context.TODO(), 200*time.Millisecond)
	defer cancelFn()
	c.Assert(grp.Run(ctx), gc.IsNil)
}

type stubService struct {
	name string
	err  error
}

func (s stubService) Name() string { return s.name }

func (s stubService) Run(ctx context.Context) error {
	if s.err != nil {
		return s.err
	}

	<-ctx.Done()
	return nil
}
