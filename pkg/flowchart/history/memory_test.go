package history_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/flowchart/pkg/flowchart/history"
)

func TestMemoryStore_Len(t *testing.T) {
	store := history.NewMemoryStore()
	assert.Equal(t, 0, store.Len())

	require.NoError(t, store.Save(entry("run-1")))
	require.NoError(t, store.Save(entry("run-2")))
	require.NoError(t, store.Save(entry("run-1")))
	assert.Equal(t, 2, store.Len())

	require.NoError(t, store.Delete("run-2"))
	assert.Equal(t, 1, store.Len())
}

func TestMemoryStore_Concurrent(t *testing.T) {
	store := history.NewMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			runID := fmt.Sprintf("run-%d", id)
			_ = store.Save(entry(runID))
			_, _ = store.Get(runID)
			_, _ = store.List(3)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 50, store.Len())
}
