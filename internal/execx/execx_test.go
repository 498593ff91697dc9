package execx

import (
	"context"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("tests use POSIX shell commands")
	}
}

func TestLocal_Run(t *testing.T) {
	skipOnWindows(t)

	res, err := Local{}.Run(context.Background(), Command{
		Name: "sh",
		Args: []string{"-c", "echo out; echo err >&2"},
	})

	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, "out\n", res.Stdout)
	assert.Equal(t, "err\n", res.Stderr)
}

func TestLocal_Run_NonZeroExitIsNotAnError(t *testing.T) {
	skipOnWindows(t)

	res, err := Local{}.Run(context.Background(), Command{
		Name: "sh",
		Args: []string{"-c", "exit 3"},
	})

	require.NoError(t, err)
	assert.Equal(t, 3, res.ExitCode)
}

func TestLocal_Run_WorkingDirectory(t *testing.T) {
	skipOnWindows(t)
	dir := t.TempDir()

	res, err := Local{}.Run(context.Background(), Command{
		Name: "pwd",
		Dir:  dir,
	})

	require.NoError(t, err)
	assert.Contains(t, res.Stdout, dir)
}

func TestLocal_Run_EnvOverride(t *testing.T) {
	skipOnWindows(t)

	res, err := Local{}.Run(context.Background(), Command{
		Name: "sh",
		Args: []string{"-c", "echo $TEAM_EVAL_PROBE"},
		Env:  map[string]string{"TEAM_EVAL_PROBE": "42"},
	})

	require.NoError(t, err)
	assert.Equal(t, "42\n", res.Stdout)
}

func TestLocal_Run_Timeout(t *testing.T) {
	skipOnWindows(t)

	start := time.Now()
	_, err := Local{}.Run(context.Background(), Command{
		Name:    "sleep",
		Args:    []string{"10"},
		Timeout: 100 * time.Millisecond,
	})

	assert.ErrorIs(t, err, ErrTimeout)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestLocal_Run_MissingBinary(t *testing.T) {
	_, err := Local{}.Run(context.Background(), Command{Name: "definitely-not-a-binary-2718"})
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrTimeout)
}

func TestRunChecked(t *testing.T) {
	skipOnWindows(t)

	_, err := RunChecked(context.Background(), Local{}, Command{
		Name: "sh",
		Args: []string{"-c", "echo broken >&2; exit 1"},
	})

	var procErr *ProcessError
	require.ErrorAs(t, err, &procErr)
	assert.Equal(t, 1, procErr.Result.ExitCode)
	assert.Contains(t, procErr.Result.Stderr, "broken")
	assert.Contains(t, err.Error(), "exited with code 1")
}
