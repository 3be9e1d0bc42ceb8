package document

import "time"

// runTimed runs fn on its own goroutine and waits up to d for the
// result. The second return is false if the deadline elapsed first;
// fn keeps running but its eventual result is discarded. A deadline of
// zero or below disables enforcement and fn runs on the calling
// goroutine.
func runTimed[T any](d time.Duration, fn func() (T, error)) (T, bool, error) {
	if d <= 0 {
		v, err := fn()
		return v, true, err
	}

	type result struct {
		v   T
		err error
	}
	ch := make(chan result, 1)
	go func() {
		v, err := fn()
		ch <- result{v: v, err: err}
	}()

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case r := <-ch:
		return r.v, true, r.err
	case <-timer.C:
		var zero T
		return zero, false, nil
	}
}
