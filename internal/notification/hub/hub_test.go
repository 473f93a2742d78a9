package hub

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTouchConcurrentWithIdleCheck(t *testing.T) {
	c := &Connection{lastSeen: time.Now()}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			c.Touch()
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			_ = c.idleFor()
		}
	}()
	wg.Wait()

	assert.Less(t, c.idleFor(), time.Minute)
}
