// Package worker provides the shared pool used to spread per-character
// simulation work across cores. Characters themselves are not safe for
// concurrent use; the pool parallelizes across characters, never within one.
package worker

import (
	"runtime"
	"sync"

	"github.com/getsentry/sentry-go"
)

var workerQueue = make(chan func(), runtime.NumCPU())

func init() {
	for i := 0; i < runtime.NumCPU(); i++ {
		go worker()
	}
}

func worker() {
	defer sentry.Recover()

	for {
		f, ok := <-workerQueue
		if !ok {
			return
		}

		f()
	}
}

// Submit queues a function on the pool. To be used for work that may be CPU
// intensive, such as ticking a character against a dense scene.
func Submit(f func()) {
	workerQueue <- f
}

// Batch runs every function on the pool and blocks until all of them have
// returned. Tick drivers use this to advance all characters of a fixed tick in
// parallel before the next tick starts.
func Batch(fs ...func()) {
	var wg sync.WaitGroup
	wg.Add(len(fs))
	for _, f := range fs {
		f := f
		Submit(func() {
			defer wg.Done()
			f()
		})
	}
	wg.Wait()
}
