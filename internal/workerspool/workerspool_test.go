// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package workerspool

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPool_Bounded(t *testing.T) {
	pool := New()
	pool.SetMaxParallelism(3)

	var running, peak, done atomic.Int32
	for range 12 {
		pool.WaitToStart(func() {
			now := running.Add(1)
			for {
				old := peak.Load()
				if now <= old || peak.CompareAndSwap(old, now) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			running.Add(-1)
			done.Add(1)
		})
	}
	pool.Wait()
	assert.Equal(t, int32(12), done.Load())
	assert.LessOrEqual(t, peak.Load(), int32(3))
	assert.Equal(t, 0, pool.NumRunning())
}

func TestPool_NoParallelism(t *testing.T) {
	pool := New()
	pool.SetMaxParallelism(0)
	assert.False(t, pool.IsEnabled())
	count := 0
	for range 3 {
		pool.WaitToStart(func() { count++ })
	}
	// Tasks ran inline, so there is nothing to wait for.
	assert.Equal(t, 3, count)
	pool.Wait()
}

func TestPool_Unlimited(t *testing.T) {
	pool := New()
	pool.SetMaxParallelism(-1)
	assert.True(t, pool.IsUnlimited())

	// All tasks must be running at the same time for the barrier to be released.
	const numTasks = 20
	var barrier sync.WaitGroup
	barrier.Add(numTasks)
	var count atomic.Int32
	for range numTasks {
		pool.WaitToStart(func() {
			barrier.Done()
			barrier.Wait()
			count.Add(1)
		})
	}
	finished := make(chan struct{})
	go func() {
		pool.Wait()
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for unlimited tasks")
	}
	assert.Equal(t, int32(numTasks), count.Load())
}

func TestPool_SingleWorker(t *testing.T) {
	pool := New()
	pool.SetMaxParallelism(1)
	var recovered atomic.Bool
	pool.WaitToStart(func() {
		defer func() {
			if recover() != nil {
				recovered.Store(true)
			}
		}()
		panic("boom")
	})
	ran := false
	pool.WaitToStart(func() { ran = true })
	pool.Wait()
	assert.True(t, recovered.Load())
	assert.True(t, ran)
}
