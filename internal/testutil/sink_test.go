package testutil

import (
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecorder_KeepsOrder(t *testing.T) {
	var r Recorder
	r.Broadcast([]byte("a"))
	r.Broadcast([]byte("b"))

	assert.Equal(t, []string{"a", "b"}, r.Messages())
	assert.Equal(t, 2, r.Len())

	r.Reset()
	assert.Empty(t, r.Messages())
}

func TestRecorder_MessagesIsACopy(t *testing.T) {
	var r Recorder
	r.Broadcast([]byte("a"))

	msgs := r.Messages()
	msgs[0] = "changed"
	assert.Equal(t, []string{"a"}, r.Messages())
}

func TestRecorder_ThreadSafe(t *testing.T) {
	var r Recorder
	const numGoroutines = 50
	const callsPerGoroutine = 20

	var wg sync.WaitGroup
	for i := range numGoroutines {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := range callsPerGoroutine {
				r.Broadcast(fmt.Appendf(nil, "%d-%d", id, j))
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, numGoroutines*callsPerGoroutine, r.Len())
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := WriteFile(t, dir, "nested/a.yaml", "name: a\n")

	assert.FileExists(t, path)
	assert.Equal(t, "a.yaml", filepath.Base(path))
}
