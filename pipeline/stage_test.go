package pipeline_test

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/searchengineplaces/webrank/pipeline"
	gc "gopkg.in/check.v1"
)

var _ = gc.Suite(new(StageTestSuite))

type StageTestSuite struct{}

func (s StageTestSuite) TestFIFOPreservesOrder(c *gc.C) {
	stages := make([]pipeline.StageRunner, 10)
	for i := 0; i < len(stages); i++ {
		stages[i] = pipeline.FIFO(passthroughProcessor())
	}

	src := &stubSource{data: textPayloads(3)}
	sink := new(stubSink)

	err := pipeline.New(stages...).Process(context.TODO(), src, sink)
	c.Assert(err, gc.IsNil)
	c.Assert(sink.got, gc.DeepEquals, src.data)
	assertAllMarkedProcessed(c, src.data)
}

func (s StageTestSuite) TestFixedWorkerPoolRunsWorkersInParallel(c *gc.C) {
	numWorkers := 10
	checkinCh := make(chan struct{})
	releaseCh := make(chan struct{})

	proc := pipeline.ProcessorFunc(func(_ context.Context, _ pipeline.Payload) (pipeline.Payload, error) {
		// Announce arrival and block until the test releases the pool.
		checkinCh <- struct{}{}
		<-releaseCh
		return nil, nil
	})

	src := &stubSource{data: textPayloads(numWorkers)}

	doneCh := make(chan struct{})
	go func() {
		defer close(doneCh)
		err := pipeline.New(pipeline.FixedWorkerPool(proc, numWorkers)).Process(context.TODO(), src, new(stubSink))
		c.Assert(err, gc.IsNil)
	}()

	// A check-in from every worker proves each payload is being handled
	// by a dedicated worker concurrently.
	for i := 0; i < numWorkers; i++ {
		select {
		case <-checkinCh:
		case <-time.After(10 * time.Second):
			c.Fatalf("timed out waiting for worker %d to check in", i)
		}
	}

	close(releaseCh)
	select {
	case <-doneCh:
	case <-time.After(10 * time.Second):
		c.Fatal("timed out waiting for pipeline to complete")
	}
}

func (s StageTestSuite) TestBroadcastClonesPayloadPerProcessor(c *gc.C) {
	numProcs := 3
	procs := make([]pipeline.Processor, numProcs)
	for i := 0; i < numProcs; i++ {
		procs[i] = taggingProcessor(i)
	}

	src := &stubSource{data: textPayloads(1)}
	sink := new(stubSink)

	err := pipeline.New(pipeline.Broadcast(procs...)).Process(context.TODO(), src, sink)
	c.Assert(err, gc.IsNil)
	assertAllMarkedProcessed(c, src.data)

	// Each processor must have tagged its own copy exactly once. The
	// broadcast runners are concurrent so sort before comparing.
	want := []pipeline.Payload{
		&textPayload{val: "0_0", processed: true},
		&textPayload{val: "0_1", processed: true},
		&textPayload{val: "0_2", processed: true},
	}
	sortPayloads(want)
	sortPayloads(sink.got)
	c.Assert(sink.got, gc.DeepEquals, want)
}

func sortPayloads(payloads []pipeline.Payload) {
	sort.Slice(payloads, func(i, j int) bool {
		return payloads[i].(*textPayload).val < payloads[j].(*textPayload).val
	})
}

// taggingProcessor mutates its payload so the broadcast test can detect
// processors sharing a payload instead of receiving clones.
func taggingProcessor(index int) pipeline.Processor {
	return pipeline.ProcessorFunc(func(_ context.Context, p pipeline.Payload) (pipeline.Payload, error) {
		tp := p.(*textPayload)
		tp.val = fmt.Sprintf("%s_%d", tp.val, index)
		return p, nil
	})
}

func passthroughProcessor() pipeline.Processor {
	return pipeline.ProcessorFunc(func(_ context.Context, p pipeline.Payload) (pipeline.Payload, error) {
		return p, nil
	})
}
