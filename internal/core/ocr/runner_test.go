package ocr

import (
	"context"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecRunner(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	out, errb, err := ExecRunner{}.Run(context.Background(), "sh", nil, "-c", "echo out; echo err >&2")
	require.NoError(t, err)
	assert.Equal(t, "out\n", string(out))
	assert.Equal(t, "err\n", string(errb))

	_, _, err = ExecRunner{}.Run(context.Background(), "sh", nil, "-c", "exit 3")
	assert.Error(t, err)
}

func TestExecRunner_MissingTool(t *testing.T) {
	_, _, err := ExecRunner{}.Run(context.Background(), "invoicex-no-such-tool", nil)
	require.Error(t, err)
	assert.Equal(t, -1, ExitCode(err))
}

func TestExitCode(t *testing.T) {
	assert.Zero(t, ExitCode(nil))
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	_, _, err := ExecRunner{}.Run(context.Background(), "sh", nil, "-c", "exit 3")
	assert.Equal(t, 3, ExitCode(err))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 3))
	assert.Equal(t, "ab...(truncated)", truncate("abc", 2))
}
