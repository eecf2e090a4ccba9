package pagerank

import (
	multierror "github.com/hashicorp/go-multierror"
	"golang.org/x/xerrors"
)

// Config encapsulates the required parameters for creating a new PageRank
// calculator instance.
type Config struct {
	// DampingFactor is the probability that a random surfer will click on
	// one of the outgoing links on the page they are currently visiting
	// instead of visiting (teleporting to) a random page in the graph.
	//
	// If not specified, a default value of 0.8 will be used instead.
	DampingFactor float64

	// Iterations is the number of score propagation rounds to execute.
	// The calculator always runs the full number of rounds; it does not
	// test for convergence. Running the same graph through the same
	// number of rounds therefore always yields identical scores.
	//
	// If not specified, a default value of 10 will be used instead.
	Iterations int

	// The number of workers to spin up for computing PageRank scores. If
	// not specified, a default value of 1 will be used instead.
	ComputeWorkers int
}

// validate checks whether the PageRank calculator configuration is valid and
// sets the default values where required.
func (c *Config) validate() error {
	var err error
	if c.DampingFactor < 0 || c.DampingFactor > 1.0 {
		err = multierror.Append(err, xerrors.New("DampingFactor must be in the range (0, 1]"))
	} else if c.DampingFactor == 0 {
		c.DampingFactor = 0.8
	}

	if c.Iterations < 0 {
		err = multierror.Append(err, xerrors.New("Iterations must be a positive value"))
	} else if c.Iterations == 0 {
		c.Iterations = 10
	}

	if c.ComputeWorkers <= 0 {
		c.ComputeWorkers = 1
	}

	return err
}
