package routines

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestScheduleAndWait(t *testing.T) {
	var workDone [500]int32

	pool := NewPool(5)

	for i := range workDone {
		iPtr := &workDone[i]
		pool.Queue(func() {
			atomic.StoreInt32(iPtr, 1)
		})
	}

	pool.Wait()

	for i := range workDone {
		assert.Equal(t, int32(1), atomic.LoadInt32(&workDone[i]), "work %d not done", i)
	}
}

func TestConcurrencyIsBounded(t *testing.T) {
	const workers = 3

	var running, maxRunning int32
	var mu sync.Mutex

	pool := NewPool(workers)
	for i := 0; i < 30; i++ {
		pool.Queue(func() {
			cur := atomic.AddInt32(&running, 1)

			mu.Lock()
			if cur > maxRunning {
				maxRunning = cur
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)
			atomic.AddInt32(&running, -1)
		})
	}

	pool.Wait()

	assert.LessOrEqual(t, maxRunning, int32(workers))
	assert.Positive(t, maxRunning)
}

func TestQueuePanicsAfterWait(t *testing.T) {
	pool := NewPool(1)
	pool.Wait()

	assert.Panics(t, func() {
		pool.Queue(func() {})
	})
}

func TestWaitCanBeCalledMultipleTimes(t *testing.T) {
	pool := NewPool(0)
	pool.Wait()
	assert.NotPanics(t, pool.Wait)
}

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
