package adapters

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"noetic-jammy/internal/types"
)

func TestExecRunner_TracesAndRunsInDir(t *testing.T) {
	dir := t.TempDir()
	var out, trace bytes.Buffer
	runner := ExecRunner{Output: &out, Trace: &trace}

	err := runner.Run(t.Context(), types.Command{
		Name: "sh",
		Args: []string{"-c", "pwd; echo $DEB_BUILD_OPTIONS"},
		Dir:  dir,
		Env:  []string{"DEB_BUILD_OPTIONS=parallel=3"},
	})
	require.NoError(t, err)

	assert.Equal(t, "+ sh -c pwd; echo $DEB_BUILD_OPTIONS\n", trace.String())
	resolved, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	gotDir, err := filepath.EvalSymlinks(lines[0])
	require.NoError(t, err)
	assert.Equal(t, resolved, gotDir)
	assert.Equal(t, "parallel=3", lines[1])

	cwd, err := os.Getwd()
	require.NoError(t, err)
	assert.NotEqual(t, resolved, cwd)
}

func TestExecRunner_FailureCarriesExitStatus(t *testing.T) {
	runner := ExecRunner{Output: &bytes.Buffer{}}
	err := runner.Run(t.Context(), types.Command{
		Name: "sh",
		Args: []string{"-c", "echo boom >&2; exit 7"},
		Dir:  t.TempDir(),
	})
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInternal, errbuilder.CodeOf(err))

	var toolErr *types.ToolError
	if errors.As(err, &toolErr) {
		assert.Equal(t, 7, toolErr.ExitCode)
		assert.Equal(t, "boom", toolErr.Output)
	}
}

func TestExecRunner_EmptyCommand(t *testing.T) {
	err := ExecRunner{}.Run(t.Context(), types.Command{})
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
}

func TestTailBufferKeepsLastBytes(t *testing.T) {
	buf := &tailBuffer{limit: 4}
	_, _ = buf.Write([]byte("abc"))
	_, _ = buf.Write([]byte("defg"))
	assert.Equal(t, "defg", string(buf.Bytes()))
}
