package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var epoch = time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

func TestStepClock_Steps(t *testing.T) {
	clock := NewStepClock(epoch, time.Second)

	assert.Equal(t, epoch, clock.Now())
	assert.Equal(t, epoch.Add(time.Second), clock.Now())
	assert.Equal(t, epoch.Add(2*time.Second), clock.Peek())
}

func TestStepClock_ZeroStepFreezes(t *testing.T) {
	clock := NewStepClock(epoch, 0)
	assert.Equal(t, epoch, clock.Now())
	assert.Equal(t, epoch, clock.Now())
}

func TestStepClock_SetAndAdvance(t *testing.T) {
	clock := NewStepClock(epoch, 0)

	clock.Advance(48 * time.Hour)
	assert.Equal(t, epoch.Add(48*time.Hour), clock.Now())

	later := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	clock.Set(later)
	assert.Equal(t, later, clock.Now())
}

func TestStepClock_ConcurrentNowIsDistinct(t *testing.T) {
	clock := NewStepClock(epoch, time.Second)

	const goroutines = 50
	seen := make(chan time.Time, goroutines)
	var wg sync.WaitGroup
	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			seen <- clock.Now()
		}()
	}
	wg.Wait()
	close(seen)

	unique := map[time.Time]bool{}
	for ts := range seen {
		unique[ts] = true
	}
	assert.Len(t, unique, goroutines)
	assert.Equal(t, epoch.Add(goroutines*time.Second), clock.Peek())
}
