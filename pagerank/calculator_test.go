package pagerank_test

import (
	"context"
	"math"
	"math/rand"
	"strconv"
	"testing"

	"github.com/searchengineplaces/webrank/pagerank"
	gc "gopkg.in/check.v1"
	"golang.org/x/xerrors"
)

var _ = gc.Suite(new(CalculatorTestSuite))

func Test(t *testing.T) {
	// Run all gocheck test-suites
	gc.TestingT(t)
}

type edge struct {
	src, dst string
}

type spec struct {
	descr     string
	vertices  []string
	edges     []edge
	expScores map[string]float64
}

type CalculatorTestSuite struct {
}

func (s *CalculatorTestSuite) TestSymmetricPair(c *gc.C) {
	spec := spec{
		descr: `
 (A) <-> (B)

Expect the score to be split evenly between the two nodes.
`,
		vertices: []string{"A", "B"},
		edges: []edge{
			{"A", "B"},
			{"B", "A"},
		},
		expScores: map[string]float64{
			"A": 0.5,
			"B": 0.5,
		},
	}

	s.assertPageRankScores(c, spec)
}

func (s *CalculatorTestSuite) TestCycle(c *gc.C) {
	spec := spec{
		descr: `
 (A) -> (B) -> (C)
  ^             |
  |             |
  +-------------+

Expect PageRank score to be distributed evenly across the three nodes.
`,
		vertices: []string{"A", "B", "C"},
		edges: []edge{
			{"A", "B"},
			{"B", "C"},
			{"C", "A"},
		},
		expScores: map[string]float64{
			"A": 1.0 / 3.0,
			"B": 1.0 / 3.0,
			"C": 1.0 / 3.0,
		},
	}

	s.assertPageRankScores(c, spec)
}

func (s *CalculatorTestSuite) TestEmptyGraph(c *gc.C) {
	calc, err := pagerank.NewCalculator(pagerank.Config{})
	c.Assert(err, gc.IsNil)

	// Calculating an empty graph must be a no-op and must not fault.
	c.Assert(calc.Calculate(context.TODO()), gc.IsNil)

	numScored := 0
	err = calc.Scores(func(string, float64) error {
		numScored++
		return nil
	})
	c.Assert(err, gc.IsNil)
	c.Assert(numScored, gc.Equals, 0)
}

func (s *CalculatorTestSuite) TestSingleVertexWithoutLinks(c *gc.C) {
	spec := spec{
		descr: `
 (A)

A lone page without outgoing links retains only the teleport share of its
score; the rest leaks out of the system each round.
`,
		vertices: []string{"A"},
		expScores: map[string]float64{
			"A": 0.2,
		},
	}

	s.assertPageRankScores(c, spec)
}

func (s *CalculatorTestSuite) TestSingleVertexWithSelfLink(c *gc.C) {
	spec := spec{
		descr: `
 (A)--+
  ^   |
  +---+

A self-link feeds the page's own score back to it so nothing leaks.
`,
		vertices: []string{"A"},
		edges: []edge{
			{"A", "A"},
		},
		expScores: map[string]float64{
			"A": 1.0,
		},
	}

	s.assertPageRankScores(c, spec)
}

func (s *CalculatorTestSuite) TestDeadEnd(c *gc.C) {
	spec := spec{
		descr: `
 (A) -> (B)

B is a dead-end: the score it accumulates is not propagated anywhere and is
not redistributed across the graph. A only retains its teleport share.
`,
		vertices: []string{"A", "B"},
		edges: []edge{
			{"A", "B"},
		},
		expScores: map[string]float64{
			"A": 0.1,
			"B": 0.18,
		},
	}

	s.assertPageRankScores(c, spec)
}

func (s *CalculatorTestSuite) TestLinkToUnknownVertex(c *gc.C) {
	spec := spec{
		descr: `
 (A) <-> (B)
  |
  v
 (X)  [not a vertex]

A's score is split across both of its outgoing links even though X is not
part of the graph; the share sent to X is lost.
`,
		vertices: []string{"A", "B"},
		edges: []edge{
			{"A", "B"},
			{"A", "X"},
			{"B", "A"},
		},
		expScores: map[string]float64{
			"A": 0.2654953984,
			"B": 0.206869248,
		},
	}

	s.assertPageRankScores(c, spec)
}

func (s *CalculatorTestSuite) TestAddEdgeWithUnknownSource(c *gc.C) {
	calc, err := pagerank.NewCalculator(pagerank.Config{})
	c.Assert(err, gc.IsNil)

	err = calc.AddEdge("A", "B")
	c.Assert(xerrors.Is(err, pagerank.ErrUnknownEdgeSource), gc.Equals, true)
}

func (s *CalculatorTestSuite) TestDeterministicScoresForLargeGraphs(c *gc.C) {
	first := s.calculateRandomGraphScores(c, 10000, 7, 32)
	second := s.calculateRandomGraphScores(c, 10000, 7, 1)

	// The same graph run through the same number of rounds must yield
	// identical scores regardless of the worker count.
	c.Assert(second, gc.DeepEquals, first)
}

func (s *CalculatorTestSuite) calculateRandomGraphScores(c *gc.C, numLinks, maxOutLinks, workers int) map[string]float64 {
	calc, err := pagerank.NewCalculator(pagerank.Config{ComputeWorkers: workers})
	c.Assert(err, gc.IsNil)

	// Make the graph generation deterministic for each test.
	rng := rand.New(rand.NewSource(42))

	names := make([]string, numLinks)
	for i := 0; i < numLinks; i++ {
		names[i] = strconv.FormatInt(int64(i), 10)
	}

	for i := 0; i < numLinks; i++ {
		calc.AddVertex(names[i])

		outLinks := rng.Intn(maxOutLinks)
		for j := 0; j < outLinks; j++ {
			dst := rng.Intn(numLinks)
			c.Assert(calc.AddEdge(names[i], names[dst]), gc.IsNil)
		}
	}

	c.Assert(calc.Calculate(context.TODO()), gc.IsNil)

	scores := make(map[string]float64, numLinks)
	err = calc.Scores(func(id string, score float64) error {
		scores[id] = score
		return nil
	})
	c.Assert(err, gc.IsNil)
	return scores
}

func (s *CalculatorTestSuite) assertPageRankScores(c *gc.C, spec spec) {
	c.Log(spec.descr)

	calc, err := pagerank.NewCalculator(pagerank.Config{
		ComputeWorkers: 2,
	})
	c.Assert(err, gc.IsNil)

	for _, id := range spec.vertices {
		calc.AddVertex(id)
	}
	for _, e := range spec.edges {
		c.Assert(calc.AddEdge(e.src, e.dst), gc.IsNil)
	}

	err = calc.Calculate(context.TODO())
	c.Assert(err, gc.IsNil)

	numScored := 0
	err = calc.Scores(func(id string, score float64) error {
		numScored++
		absDelta := math.Abs(score - spec.expScores[id])
		c.Assert(absDelta <= 1e-9, gc.Equals, true, gc.Commentf("expected score for %v to be %f; got %f (abs. delta %f)", id, spec.expScores[id], score, absDelta))
		return nil
	})
	c.Assert(err, gc.IsNil)
	c.Assert(numScored, gc.Equals, len(spec.vertices))
}
