package pipeline

import (
	"context"
	"sync"

	"golang.org/x/xerrors"
)

type fifo struct {
	proc Processor
}

// FIFO returns a StageRunner that feeds incoming payloads one at a time
// through proc and emits the results in order.
func FIFO(proc Processor) StageRunner {
	return fifo{proc: proc}
}

// Run implements StageRunner.
func (r fifo) Run(ctx context.Context, params StageParams) {
	for {
		var payloadIn Payload
		var ok bool
		select {
		case <-ctx.Done():
			return
		case payloadIn, ok = <-params.Input():
			if !ok {
				return
			}
		}

		payloadOut, err := r.proc.Process(ctx, payloadIn)
		if err != nil {
			emitError(xerrors.Errorf("pipeline stage %d: %w", params.StageIndex(), err), params.Error())
			return
		}

		// A nil payload means the processor dropped the input.
		if payloadOut == nil {
			payloadIn.MarkAsProcessed()
			continue
		}

		select {
		case <-ctx.Done():
			return
		case params.Output() <- payloadOut:
		}
	}
}

type workerPool struct {
	workers []StageRunner
}

// FixedWorkerPool returns a StageRunner that fans incoming payloads out to a
// pool of numWorkers concurrent FIFO workers sharing the stage channels.
func FixedWorkerPool(proc Processor, numWorkers int) StageRunner {
	if numWorkers <= 0 {
		panic("FixedWorkerPool: numWorkers must be > 0")
	}

	workers := make([]StageRunner, numWorkers)
	for i := range workers {
		workers[i] = FIFO(proc)
	}
	return &workerPool{workers: workers}
}

// Run implements StageRunner.
func (p *workerPool) Run(ctx context.Context, params StageParams) {
	var wg sync.WaitGroup
	wg.Add(len(p.workers))
	for _, w := range p.workers {
		go func(w StageRunner) {
			defer wg.Done()
			w.Run(ctx, params)
		}(w)
	}
	wg.Wait()
}

type broadcast struct {
	runners []StageRunner
}

// Broadcast returns a StageRunner that delivers a copy of every incoming
// payload to each of the supplied processors and multiplexes their outputs
// to the next stage.
func Broadcast(procs ...Processor) StageRunner {
	if len(procs) == 0 {
		panic("Broadcast: at least one processor must be specified")
	}

	runners := make([]StageRunner, len(procs))
	for i, proc := range procs {
		runners[i] = FIFO(proc)
	}
	return &broadcast{runners: runners}
}

// Run implements StageRunner.
func (b *broadcast) Run(ctx context.Context, params StageParams) {
	var wg sync.WaitGroup
	wg.Add(len(b.runners))

	// Each runner gets a dedicated input channel; all of them share the
	// stage output and error channels.
	inputs := make([]chan Payload, len(b.runners))
	for i, runner := range b.runners {
		inputs[i] = make(chan Payload)
		go func(runner StageRunner, input chan Payload) {
			defer wg.Done()
			runner.Run(ctx, &stageParams{
				stage: params.StageIndex(),
				inCh:  input,
				outCh: params.Output(),
				errCh: params.Error(),
			})
		}(runner, inputs[i])
	}

	b.dispatch(ctx, params, inputs)

	for _, input := range inputs {
		close(input)
	}
	wg.Wait()
}

// dispatch copies payloads off the stage input into each runner's dedicated
// input channel until the input is exhausted or ctx expires.
func (b *broadcast) dispatch(ctx context.Context, params StageParams, inputs []chan Payload) {
	for {
		var payload Payload
		var ok bool
		select {
		case <-ctx.Done():
			return
		case payload, ok = <-params.Input():
			if !ok {
				return
			}
		}

		for i := len(inputs) - 1; i >= 0; i-- {
			// Processors may mutate their payload; every runner
			// except the first receives a clone.
			fanoutPayload := payload
			if i != 0 {
				fanoutPayload = payload.Clone()
			}
			select {
			case <-ctx.Done():
				return
			case inputs[i] <- fanoutPayload:
			}
		}
	}
}
