package buckets

import "github.com/EinfachAndy/buckets/shared"

// Stream is an ordered work queue. Tasks submitted to the same stream
// run one after another, in submission order, on a single runner
// goroutine. Tasks on different streams carry no ordering guarantee.
// There is no cancellation, a submitted task always runs to
// completion.
type Stream struct {
	tasks chan func()
	done  chan struct{}
}

// NewStream creates a stream and starts its runner.
func NewStream() *Stream {
	s := &Stream{
		tasks: make(chan func(), shared.DefaultStreamDepth),
		done:  make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *Stream) run() {
	defer close(s.done)
	for task := range s.tasks {
		task()
	}
}

// Submit enqueues a task. It blocks while the submission queue is
// full. Submitting to a closed stream panics.
func (s *Stream) Submit(task func()) {
	s.tasks <- task
}

// Sync blocks the caller until every task submitted before the call
// has completed.
func (s *Stream) Sync() {
	drained := make(chan struct{})
	s.tasks <- func() { close(drained) }
	<-drained
}

// Close runs all remaining tasks and stops the runner. The stream must
// not be used afterwards.
func (s *Stream) Close() {
	close(s.tasks)
	<-s.done
}
