package sink

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tallyerrors "github.com/tallylog/tallylog/internal/errors"
)

func TestOpen_AppendsToExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")
	require.NoError(t, os.WriteFile(path, []byte("existing line\n"), 0644))

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.WriteLine("new line"))
	require.NoError(t, s.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "existing line\nnew line\n", string(data))
}

func TestOpen_UnwritablePath(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "no", "such", "dir", "out.log"))
	require.Error(t, err)
	assert.True(t, tallyerrors.IsIOError(err))
}

func TestWriteLine_AfterClose(t *testing.T) {
	s := New(&bytes.Buffer{})
	require.NoError(t, s.Close())

	err := s.WriteLine("too late")
	require.Error(t, err)
	assert.ErrorIs(t, err, tallyerrors.ErrSinkClosed)
}

func TestClose_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")
	s, err := Open(path)
	require.NoError(t, err)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
}

// TestWriteLine_ConcurrentWritersNoInterleaving hammers one sink from many
// goroutines and checks that every line arrives fully formed.
func TestWriteLine_ConcurrentWritersNoInterleaving(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")
	s, err := Open(path)
	require.NoError(t, err)

	const writers = 8
	const linesPerWriter = 200

	var wg sync.WaitGroup
	for id := 0; id < writers; id++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for n := 0; n < linesPerWriter; n++ {
				line := fmt.Sprintf("Thread %d: [2025-01-02 15:04:05] Has counter %d", id, n)
				if err := s.WriteLine(line); err != nil {
					t.Errorf("WriteLine failed: %v", err)
					return
				}
			}
		}(id)
	}
	wg.Wait()
	require.NoError(t, s.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, writers*linesPerWriter)

	seen := make(map[int]int)
	for _, line := range lines {
		var id, n int
		_, err := fmt.Sscanf(line, "Thread %d: [2025-01-02 15:04:05] Has counter %d", &id, &n)
		require.NoError(t, err, "malformed line: %q", line)
		seen[id]++
	}
	for id := 0; id < writers; id++ {
		assert.Equal(t, linesPerWriter, seen[id], "worker %d line count", id)
	}
}

func TestPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")
	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, path, s.Path())
	assert.Empty(t, New(&bytes.Buffer{}).Path())
}
