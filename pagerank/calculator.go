// Package pagerank implements the iterative version of the PageRank
// algorithm on a link graph assembled by the caller.
//
// The calculator runs a fixed number of synchronous score propagation
// rounds. Every round, each page splits its current score evenly across ALL
// of its outgoing links, including links to pages that were never added as
// vertices; the share sent to such pages simply leaks out of the system.
// Score lost to pages without outgoing links is not redistributed either.
// The scores therefore do not necessarily sum to one; only their relative
// ordering is meaningful.
package pagerank

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/xerrors"
)

// ErrUnknownEdgeSource is returned by AddEdge when the source vertex is not
// present in the graph.
var ErrUnknownEdgeSource = xerrors.New("source vertex is not part of the graph")

type vertex struct {
	id        string
	score     float64
	nextScore float64
	outDegree int
	outEdges  []string

	// in is populated lazily when Calculate runs so that edges may refer
	// to vertices added after them.
	in []*vertex
}

// Calculator executes the iterative version of the PageRank algorithm on a
// graph assembled via AddVertex and AddEdge calls.
type Calculator struct {
	cfg      Config
	vertices map[string]*vertex
}

// NewCalculator returns a new Calculator instance using the provided config
// options.
func NewCalculator(cfg Config) (*Calculator, error) {
	if err := cfg.validate(); err != nil {
		return nil, xerrors.Errorf("PageRank calculator config validation failed: %w", err)
	}

	return &Calculator{
		cfg:      cfg,
		vertices: make(map[string]*vertex),
	}, nil
}

// AddVertex inserts a new vertex to the graph with the given id. Adding the
// same id twice is a no-op.
func (c *Calculator) AddVertex(id string) {
	if _, exists := c.vertices[id]; exists {
		return
	}
	c.vertices[id] = &vertex{id: id}
}

// AddEdge inserts a directed edge from src to dst. The destination does not
// need to be a vertex in the graph; src's score is still divided by its full
// outgoing link count so the share sent to an unknown destination is lost.
// Self-links are allowed.
func (c *Calculator) AddEdge(src, dst string) error {
	srcVertex, exists := c.vertices[src]
	if !exists {
		return xerrors.Errorf("add edge from %q: %w", src, ErrUnknownEdgeSource)
	}

	srcVertex.outDegree++
	srcVertex.outEdges = append(srcVertex.outEdges, dst)
	return nil
}

// Calculate executes the configured number of PageRank iterations over the
// graph. Scores are updated synchronously: every vertex score for round n+1
// is computed from the round n scores.
func (c *Calculator) Calculate(ctx context.Context) error {
	numVertices := len(c.vertices)
	if numVertices == 0 {
		return nil
	}

	// Vertices are visited in a stable order so that the floating point
	// summation order, and hence the resulting scores, are reproducible.
	vertexList := make([]*vertex, 0, numVertices)
	for _, v := range c.vertices {
		vertexList = append(vertexList, v)
	}
	sort.Slice(vertexList, func(i, j int) bool { return vertexList[i].id < vertexList[j].id })

	initialScore := 1.0 / float64(numVertices)
	for _, v := range vertexList {
		v.score = initialScore
		v.in = v.in[:0]
	}
	for _, v := range vertexList {
		for _, dst := range v.outEdges {
			if dstVertex, exists := c.vertices[dst]; exists {
				dstVertex.in = append(dstVertex.in, v)
			}
		}
	}

	baseScore := (1.0 - c.cfg.DampingFactor) / float64(numVertices)
	for i := 0; i < c.cfg.Iterations; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		c.runIteration(vertexList, baseScore)
		for _, v := range vertexList {
			v.score = v.nextScore
		}
	}

	return nil
}

// runIteration computes the next score of every vertex using a pool of
// compute workers. It returns once all next scores have been written.
func (c *Calculator) runIteration(vertexList []*vertex, baseScore float64) {
	vertexCh := make(chan *vertex, len(vertexList))
	for _, v := range vertexList {
		vertexCh <- v
	}
	close(vertexCh)

	var wg sync.WaitGroup
	wg.Add(c.cfg.ComputeWorkers)
	for i := 0; i < c.cfg.ComputeWorkers; i++ {
		go func() {
			defer wg.Done()
			for v := range vertexCh {
				var incoming float64
				for _, u := range v.in {
					incoming += u.score / float64(u.outDegree)
				}
				v.nextScore = baseScore + c.cfg.DampingFactor*incoming
			}
		}()
	}
	wg.Wait()
}

// Scores invokes the provided visitor function for each vertex in the graph.
func (c *Calculator) Scores(visitFn func(id string, score float64) error) error {
	for id, v := range c.vertices {
		if err := visitFn(id, v.score); err != nil {
			return err
		}
	}

	return nil
}
