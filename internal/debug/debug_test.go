package debug

import (
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureFile swaps *target for a pipe while fn runs and returns what was written.
func captureFile(t *testing.T, target **os.File, fn func()) string {
	t.Helper()
	orig := *target
	r, w, err := os.Pipe()
	require.NoError(t, err)
	*target = w
	defer func() { *target = orig }()

	fn()

	require.NoError(t, w.Close())
	out, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(out)
}

func resetState(t *testing.T) {
	t.Helper()
	oldEnabled, oldVerbose, oldQuiet := enabled, verboseMode, quietMode
	t.Cleanup(func() {
		enabled, verboseMode, quietMode = oldEnabled, oldVerbose, oldQuiet
	})
	enabled, verboseMode, quietMode = false, false, false
}

func TestEnabledFollowsVerbose(t *testing.T) {
	resetState(t)

	assert.False(t, Enabled())
	SetVerbose(true)
	assert.True(t, Enabled())
	SetVerbose(false)
	assert.False(t, Enabled())

	enabled = true
	assert.True(t, Enabled(), "SFOPS_DEBUG switch enables output without --verbose")
}

func TestLogf(t *testing.T) {
	resetState(t)

	out := captureFile(t, &os.Stderr, func() { Logf("github: %s\n", "GET") })
	assert.Empty(t, out)

	SetVerbose(true)
	out = captureFile(t, &os.Stderr, func() { Logf("github: %s\n", "GET") })
	assert.Equal(t, "github: GET\n", out)
}

func TestQuiet(t *testing.T) {
	resetState(t)

	assert.False(t, IsQuiet())
	SetQuiet(true)
	assert.True(t, IsQuiet())
	assert.False(t, Enabled(), "quiet does not touch debug output")
}
