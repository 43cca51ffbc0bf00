package dataflow

import (
	"context"
	"sync"
)

// FanIn merges streams into one. Ordering across inputs is not preserved;
// the merged stream closes after every input has closed or ctx ends.
func FanIn[T any](ctx context.Context, streams ...Stream[T]) Stream[T] {
	out := make(chan T)
	var wg sync.WaitGroup
	wg.Add(len(streams))

	for _, s := range streams {
		go func(s Stream[T]) {
			defer wg.Done()
			for msg := range s {
				select {
				case <-ctx.Done():
					return
				case out <- msg:
				}
			}
		}(s)
	}

	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}
