package alert

import (
	"fmt"
	"sync"
	"time"
)

// Scheduler runs fn every d until the returned stop func is called.
type Scheduler interface {
	Every(d time.Duration, fn func()) (stop func(), err error)
}

// TickerScheduler drives each schedule from its own time.Ticker goroutine.
type TickerScheduler struct{}

func (TickerScheduler) Every(d time.Duration, fn func()) (func(), error) {
	if d <= 0 {
		return nil, fmt.Errorf("alert: invalid schedule interval %s", d)
	}
	ticker := time.NewTicker(d)
	done := make(chan struct{})

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				fn()
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() { close(done) })
	}, nil
}
