// mixer_jobqueue_test.go - invariants 1 and 2 for the job queue/worker pool

package mixer

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestJobQueue_EachDescriptorDispatchedExactlyOnce(t *testing.T) {
	wp := NewWorkerPool(DefaultFramesPerPeriod)
	defer wp.Shutdown(0)

	const n = 500
	var counts [n]atomic.Int32
	jobs := make([]JobDescriptor, n)
	for i := 0; i < n; i++ {
		i := i
		jobs[i] = JobDescriptor{
			kind: PlayHandleKind,
			run: func(scratch *AlignedBuffer[float32]) {
				counts[i].Add(1)
			},
		}
	}

	wp.RunStage(jobs)

	for i := 0; i < n; i++ {
		if got := counts[i].Load(); got != 1 {
			t.Fatalf("job %d dispatched %d times, want exactly 1", i, got)
		}
	}
}

func TestJobQueue_DoneCountMatchesSizeAfterStage(t *testing.T) {
	wp := NewWorkerPool(DefaultFramesPerPeriod)
	defer wp.Shutdown(0)

	jobs := make([]JobDescriptor, 10)
	for i := range jobs {
		jobs[i] = JobDescriptor{kind: EffectChannelKind, run: func(scratch *AlignedBuffer[float32]) {}}
	}
	wp.RunStage(jobs)

	if wp.queue.Size() > JobQueueCapacity {
		t.Fatalf("queue size %d exceeds capacity %d", wp.queue.Size(), JobQueueCapacity)
	}
	if wp.queue.DoneCount() != wp.queue.Size() {
		t.Fatalf("done_count %d != queue_size %d after stage", wp.queue.DoneCount(), wp.queue.Size())
	}
}

func TestJobQueue_AppendRejectsPastCapacity(t *testing.T) {
	q := &JobQueue{}
	ok := true
	for i := 0; i < JobQueueCapacity; i++ {
		ok = q.Append(PlayHandleKind, 0, nil)
		if !ok {
			t.Fatalf("unexpected overflow at index %d", i)
		}
	}
	if q.Append(PlayHandleKind, 0, nil) {
		t.Fatal("expected Append to report overflow past JobQueueCapacity")
	}
}

// TestWorkerPool_ZeroExtraWorkersStillCompletes covers the boundary
// "W = 0 (engine-only)" case: on a single logical worker the caller alone
// must still drain the whole stage correctly.
func TestWorkerPool_ZeroExtraWorkersStillCompletes(t *testing.T) {
	wp := &WorkerPool{queue: &JobQueue{}, framesPerPeriod: DefaultFramesPerPeriod}
	wp.cond = sync.NewCond(&wp.mu)
	wp.callerScratch = NewAlignedBuffer[float32](DefaultFramesPerPeriod * 2)
	defer wp.callerScratch.Release()

	var total atomic.Int32
	jobs := []JobDescriptor{
		{kind: PlayHandleKind, run: func(*AlignedBuffer[float32]) { total.Add(1) }},
		{kind: PlayHandleKind, run: func(*AlignedBuffer[float32]) { total.Add(1) }},
	}
	wp.RunStage(jobs)

	if total.Load() != 2 {
		t.Fatalf("expected both jobs to run via the caller alone, got %d", total.Load())
	}
}
