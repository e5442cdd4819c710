package joblog

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppend_CreatesAndAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.log")
	f := New(path)

	require.NoError(t, f.Append("first\n"))
	require.NoError(t, f.Append(""))
	require.NoError(t, f.Append("second\nthird\n"))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "first\nsecond\nthird\n", string(b))
}

func TestAppend_ConcurrentEntriesStayWhole(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.log")
	f := New(path)
	entry := "header\n→ a stock: 1\n→ b stock: 2\n"

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, f.Append(entry))
		}()
	}
	wg.Wait()

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat(entry, 20), string(b))
}

func TestAppend_MissingDirectory(t *testing.T) {
	f := New(filepath.Join(t.TempDir(), "nope", "job.log"))
	assert.Error(t, f.Append("x\n"))
}
