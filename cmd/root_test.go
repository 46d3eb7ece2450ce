package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tallyerrors "github.com/tallylog/tallylog/internal/errors"
)

// execute runs the root command with args and captures its output.
func execute(t *testing.T, args ...string) error {
	t.Helper()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)

	return rootCmd.Execute()
}

func TestRoot_WrongArgumentCount(t *testing.T) {
	assert.Error(t, execute(t, "just-a-path"))
	assert.Error(t, execute(t, "path", "2"))
	assert.Error(t, execute(t, "path", "2", "100", "extra"))
}

func TestRoot_NonNumericWorkerCount(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")

	err := execute(t, path, "abc", "100")
	require.Error(t, err)
	assert.True(t, tallyerrors.IsConfigError(err))

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "log file must not be created on bad arguments")
}

func TestRoot_NonPositiveWorkerCount(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")

	for _, count := range []string{"0", "-4"} {
		err := execute(t, path, count, "100")
		require.Error(t, err, "thread_count %s", count)
		assert.True(t, tallyerrors.IsConfigError(err))
	}

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "log file must not be created on bad arguments")
}

func TestRoot_NegativeSleep(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")

	err := execute(t, path, "2", "-50")
	require.Error(t, err)
	assert.True(t, tallyerrors.IsConfigError(err))
}

func TestRoot_NonNumericSleep(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")

	err := execute(t, path, "2", "fast")
	require.Error(t, err)
	assert.True(t, tallyerrors.IsConfigError(err))
}

func TestRoot_UnwritableLogPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "no", "such", "dir", "out.log")

	err := execute(t, path, "2", "100")
	require.Error(t, err)
	assert.True(t, tallyerrors.IsIOError(err))
}

func TestVersionCommand(t *testing.T) {
	assert.NoError(t, execute(t, "version"))
}
