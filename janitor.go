// janitor.go: background sweep archiving stale keys
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package bivium

import (
	"sync"
	"time"
)

// janitor runs sweep on every tick until stopped.
type janitor struct {
	done chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

func startJanitor(interval time.Duration, sweep func()) *janitor {
	j := &janitor{done: make(chan struct{})}
	j.wg.Add(1)
	go func() {
		defer j.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				sweep()
			case <-j.done:
				return
			}
		}
	}()
	return j
}

// stop signals the sweep goroutine and waits for it to exit.
func (j *janitor) stop() {
	j.once.Do(func() { close(j.done) })
	j.wg.Wait()
}
