// Package pipeline provides a small framework for assembling multi-stage,
// channel-connected processing pipelines. The crawler uses it to wire the
// fetch, link-extraction, text-extraction and update stages together.
package pipeline

import (
	"context"
	"sync"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/xerrors"
)

// Payload is implemented by values that travel through a pipeline.
type Payload interface {
	// Clone returns a deep copy of the payload.
	Clone() Payload

	// MarkAsProcessed is invoked when the payload reaches the sink or is
	// discarded by a stage.
	MarkAsProcessed()
}

// Processor is implemented by types that operate on payloads as part of a
// pipeline stage.
type Processor interface {
	// Process transforms the input payload and returns the payload that
	// should be forwarded to the next stage. Returning a nil payload
	// discards the input without treating it as an error.
	Process(context.Context, Payload) (Payload, error)
}

// ProcessorFunc adapts a plain function into a Processor.
type ProcessorFunc func(context.Context, Payload) (Payload, error)

// Process calls f(ctx, p).
func (f ProcessorFunc) Process(ctx context.Context, p Payload) (Payload, error) {
	return f(ctx, p)
}

// StageParams provides a running stage with its position in the pipeline and
// the channels it reads from and writes to.
type StageParams interface {
	// StageIndex returns the position of this stage in the pipeline.
	StageIndex() int

	// Input returns the channel the stage reads payloads from.
	Input() <-chan Payload

	// Output returns the channel the stage writes payloads to.
	Output() chan<- Payload

	// Error returns the channel the stage reports errors to.
	Error() chan<- error
}

// StageRunner is implemented by types that can be strung together to form a
// pipeline. Run blocks until the stage input channel is closed, the context
// is cancelled or a processing error occurs.
type StageRunner interface {
	Run(context.Context, StageParams)
}

// Source generates the payloads that enter a pipeline.
type Source interface {
	// Next advances to the next payload. It returns false when no more
	// payloads are available or an error occurred.
	Next(context.Context) bool

	// Payload returns the payload at the current source position.
	Payload() Payload

	// Error returns the last error observed by the source.
	Error() error
}

// Sink consumes the payloads that exit a pipeline.
type Sink interface {
	Consume(context.Context, Payload) error
}

var _ StageParams = (*stageParams)(nil)

type stageParams struct {
	stage int

	inCh  <-chan Payload
	outCh chan<- Payload
	errCh chan<- error
}

func (p *stageParams) StageIndex() int        { return p.stage }
func (p *stageParams) Input() <-chan Payload  { return p.inCh }
func (p *stageParams) Output() chan<- Payload { return p.outCh }
func (p *stageParams) Error() chan<- error    { return p.errCh }

// Pipeline is an assembled sequence of stage runners.
type Pipeline struct {
	stages []StageRunner
}

// New returns a pipeline whose payloads traverse each of the given stages in
// order.
func New(stages ...StageRunner) *Pipeline {
	return &Pipeline{stages: stages}
}

// Process drains source, pushes every emitted payload through the pipeline
// stages and hands the results to sink. It blocks until the source is
// exhausted, an error occurs or ctx expires, and returns the accumulated
// errors, if any. Concurrent Process calls with distinct sources and sinks
// are safe.
func (p *Pipeline) Process(ctx context.Context, source Source, sink Sink) error {
	var wg sync.WaitGroup
	procCtx, cancelFn := context.WithCancel(ctx)

	// One channel per stage boundary plus one extra pair of endpoints for
	// wiring the source and the sink.
	stageCh := make([]chan Payload, len(p.stages)+1)
	errCh := make(chan error, len(p.stages)+2)
	for i := 0; i < len(stageCh); i++ {
		stageCh[i] = make(chan Payload)
	}

	for i := 0; i < len(p.stages); i++ {
		wg.Add(1)
		go func(stageIndex int) {
			p.stages[stageIndex].Run(procCtx, &stageParams{
				stage: stageIndex,
				inCh:  stageCh[stageIndex],
				outCh: stageCh[stageIndex+1],
				errCh: errCh,
			})

			// No more payloads for the downstream stage.
			close(stageCh[stageIndex+1])
			wg.Done()
		}(i)
	}

	wg.Add(2)
	go func() {
		sourceWorker(procCtx, source, stageCh[0], errCh)
		close(stageCh[0])
		wg.Done()
	}()

	go func() {
		sinkWorker(procCtx, sink, stageCh[len(stageCh)-1], errCh)
		wg.Done()
	}()

	go func() {
		wg.Wait()
		close(errCh)
		cancelFn()
	}()

	var err error
	for pErr := range errCh {
		err = multierror.Append(err, pErr)
		cancelFn()
	}
	return err
}

func sourceWorker(ctx context.Context, source Source, outCh chan<- Payload, errCh chan<- error) {
	for source.Next(ctx) {
		payload := source.Payload()
		select {
		case outCh <- payload:
		case <-ctx.Done():
			return
		}
	}

	if err := source.Error(); err != nil {
		emitError(xerrors.Errorf("pipeline source: %w", err), errCh)
	}
}

func sinkWorker(ctx context.Context, sink Sink, inCh <-chan Payload, errCh chan<- error) {
	for {
		select {
		case payload, ok := <-inCh:
			if !ok {
				return
			}

			if err := sink.Consume(ctx, payload); err != nil {
				emitError(xerrors.Errorf("pipeline sink: %w", err), errCh)
				return
			}
			payload.MarkAsProcessed()
		case <-ctx.Done():
			return
		}
	}
}

// emitError queues err to a buffered error channel; if the channel is full
// the error is dropped.
func emitError(err error, errCh chan<- error) {
	select {
	case errCh <- err:
	default:
	}
}
