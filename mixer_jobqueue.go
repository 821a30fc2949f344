// mixer_jobqueue.go - fixed-capacity job queue and persistent worker pool

package mixer

import (
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// JobDescriptor is one unit of work dispatched to the worker pool. Param
// carries a payload-specific index (e.g. the FX channel id for an
// EffectChannelKind job).
type JobDescriptor struct {
	kind  JobKind
	param int
	run   func(scratch *AlignedBuffer[float32])
	done  atomic.Int32
}

// JobQueue is a fixed-capacity array of job descriptors plus two atomic
// counters: size (how many descriptors were appended for the current
// stage) and doneCount (how many have finished in the current stage).
type JobQueue struct {
	items     [JobQueueCapacity]JobDescriptor
	size      atomic.Int32
	doneCount atomic.Int32
}

// Reset clears the queue for a new stage: size = 0, doneCount = 0.
func (q *JobQueue) Reset() {
	q.size.Store(0)
	q.doneCount.Store(0)
}

// Append adds a descriptor to the queue. Overflow past JobQueueCapacity is
// a design bug (spec: "treated as a design bug; either assert or stop
// enqueueing"); this implementation clamps in release by silently
// dropping jobs past capacity, and reports the overflow via the bool
// return so callers running in a debug/test context can assert on it.
func (q *JobQueue) Append(kind JobKind, param int, run func(scratch *AlignedBuffer[float32])) bool {
	idx := q.size.Load()
	if int(idx) >= JobQueueCapacity {
		return false
	}
	q.size.Store(idx + 1)
	item := &q.items[idx]
	item.kind = kind
	item.param = param
	item.run = run
	item.done.Store(0)
	return true
}

// Size reports the number of descriptors appended for the current stage.
func (q *JobQueue) Size() int { return int(q.size.Load()) }

// DoneCount reports how many descriptors have completed in the current
// stage.
func (q *JobQueue) DoneCount() int { return int(q.doneCount.Load()) }

// processJobQueue walks descriptors in index order; for each it attempts
// a CAS on done (0->1); on success it dispatches, then increments
// doneCount. Losing the CAS means another worker already claimed it.
func (q *JobQueue) processJobQueue(scratch *AlignedBuffer[float32]) {
	n := q.Size()
	for i := 0; i < n; i++ {
		item := &q.items[i]
		if !item.done.CompareAndSwap(0, 1) {
			continue
		}
		if item.run != nil {
			func() {
				// A panicking job is trapped here so it never unwinds
				// past the queue and the stage still completes.
				defer func() { _ = recover() }()
				item.run(scratch)
			}()
		}
		q.doneCount.Add(1)
	}
}

// WorkerPool runs W = max(1, ideal_concurrency-1) persistent worker
// goroutines plus the caller acting as worker N. Workers wait on a
// condition variable, drain the job queue on broadcast wake, and return
// to waiting. Broadcast (not single wake) is mandated so every worker
// participates in each stage (see DESIGN.md Open Questions).
type WorkerPool struct {
	queue *JobQueue

	mu        sync.Mutex
	cond      *sync.Cond
	generation uint64
	quit      bool

	workerScratch []*AlignedBuffer[float32]
	callerScratch *AlignedBuffer[float32]
	wg            sync.WaitGroup

	framesPerPeriod int
}

// NewWorkerPool starts W persistent worker goroutines sized from
// runtime.GOMAXPROCS, each with its own per-worker scratch buffer of
// framesPerPeriod aligned stereo frames.
func NewWorkerPool(framesPerPeriod int) *WorkerPool {
	ideal := runtime.GOMAXPROCS(0)
	w := ideal - 1
	if w < 1 {
		w = 1
	}

	wp := &WorkerPool{
		queue:           &JobQueue{},
		framesPerPeriod: framesPerPeriod,
		callerScratch:   NewAlignedBuffer[float32](framesPerPeriod * 2),
	}
	wp.cond = sync.NewCond(&wp.mu)
	wp.workerScratch = make([]*AlignedBuffer[float32], w)
	for i := 0; i < w; i++ {
		wp.workerScratch[i] = NewAlignedBuffer[float32](framesPerPeriod * 2)
		wp.wg.Add(1)
		go wp.runWorker(wp.workerScratch[i])
	}
	return wp
}

// NumWorkers reports the persistent worker goroutine count (not counting
// the caller).
func (wp *WorkerPool) NumWorkers() int { return len(wp.workerScratch) }

func (wp *WorkerPool) runWorker(scratch *AlignedBuffer[float32]) {
	defer wp.wg.Done()

	lastGen := uint64(0)
	for {
		wp.mu.Lock()
		for wp.generation == lastGen && !wp.quit {
			wp.cond.Wait()
		}
		if wp.quit {
			wp.mu.Unlock()
			return
		}
		lastGen = wp.generation
		wp.mu.Unlock()

		wp.queue.processJobQueue(scratch)
	}
}

// RunStage appends every job in jobs, wakes the worker pool, processes
// the queue itself (acting as worker N), and spins until every job has
// completed, yielding via runtime.Gosched() as the CPU-pause hint.
func (wp *WorkerPool) RunStage(jobs []JobDescriptor) {
	wp.queue.Reset()
	for i := range jobs {
		wp.queue.Append(jobs[i].kind, jobs[i].param, jobs[i].run)
	}

	wp.mu.Lock()
	wp.generation++
	wp.cond.Broadcast()
	wp.mu.Unlock()

	wp.queue.processJobQueue(wp.callerScratch)

	size := wp.queue.Size()
	for wp.queue.DoneCount() < size {
		runtime.Gosched()
	}
}

// Shutdown sets the quit flag, broadcasts, and joins every worker with a
// bounded timeout. A worker that does not exit within the timeout is
// abandoned rather than blocking shutdown forever.
func (wp *WorkerPool) Shutdown(timeout time.Duration) {
	wp.mu.Lock()
	wp.quit = true
	wp.generation++
	wp.cond.Broadcast()
	wp.mu.Unlock()

	done := make(chan struct{})
	go func() {
		wp.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(timeout):
	}

	for _, s := range wp.workerScratch {
		s.Release()
	}
	wp.callerScratch.Release()
}
