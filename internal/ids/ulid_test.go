package ids

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCreateULID(t *testing.T) {
	id := CreateULID()
	assert.Len(t, id, 26)
	assert.NotEqual(t, id, CreateULID())
}

func TestCreateULID_Concurrent(t *testing.T) {
	const n = 64

	ids := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ids[i] = CreateULID()
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool, n)
	for _, id := range ids {
		assert.False(t, seen[id], id)
		seen[id] = true
	}
}
