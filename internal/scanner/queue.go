package scanner

import (
	"sync"

	"github.com/ivoronin/diskhound/internal/types"
)

// task is one unit of work: a directory node whose children are not
// yet known. depth is the node's distance from the scan root.
type task struct {
	node  *types.Node
	depth int
}

// workQueue is a FIFO queue of directory tasks shared by all workers.
//
// pending counts tasks that have been enqueued but not yet finished
// (not merely dequeued). This is the completion barrier: a worker that
// sees an empty queue cannot exit while pending > 0, because another
// worker holding an in-flight task may be about to enqueue that
// directory's subdirectories. get returns nil only once the queue is
// empty AND pending is zero, which unblocks every worker at once.
type workQueue struct {
	mu      sync.Mutex
	cond    *sync.Cond
	tasks   []*task
	pending int
}

func newWorkQueue() *workQueue {
	q := &workQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// put enqueues a task. Must not be called after the queue has drained.
func (q *workQueue) put(t *task) {
	q.mu.Lock()
	q.tasks = append(q.tasks, t)
	q.pending++
	q.mu.Unlock()
	q.cond.Signal()
}

// get blocks until a task is available or all work is finished.
// Returns nil when every enqueued task has completed (exit signal).
func (q *workQueue) get() *task {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.tasks) == 0 && q.pending > 0 {
		q.cond.Wait()
	}
	if len(q.tasks) == 0 {
		return nil
	}
	t := q.tasks[0]
	q.tasks = q.tasks[1:]
	return t
}

// done marks one dequeued task as finished. When the last task
// finishes, all workers blocked in get are released.
func (q *workQueue) done() {
	q.mu.Lock()
	q.pending--
	finished := q.pending == 0
	q.mu.Unlock()
	if finished {
		q.cond.Broadcast()
	}
}
