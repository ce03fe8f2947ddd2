package navguard_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/storefront/pkg/navguard"
)

func TestQueue_RunsInOrder(t *testing.T) {
	t.Parallel()

	q := navguard.NewQueue(2)

	var (
		mu  sync.Mutex
		got []int
	)
	for i := range 10 {
		assert.True(t, q.Defer(func() {
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
		}))
	}
	q.Close()

	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, got)
}

func TestQueue_DeferFromJob(t *testing.T) {
	t.Parallel()

	q := navguard.NewQueue(0)
	done := make(chan struct{})

	q.Defer(func() {
		q.Defer(func() { close(done) })
	})

	<-done
	q.Close()
}

func TestQueue_Closed(t *testing.T) {
	t.Parallel()

	q := navguard.NewQueue(1)
	q.Close()
	q.Close()

	assert.False(t, q.Defer(func() {}))
	assert.False(t, q.Defer(nil))
}
