package jobrunner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunSingleStageCapturesStdout(t *testing.T) {
	r := New()
	out, code, err := r.Run([][]string{{"echo", "hello"}}, false, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, "hello\n", out)
}

func TestRunPipelineFeedsStdoutToStdin(t *testing.T) {
	r := New()
	out, code, err := r.Run([][]string{{"echo", "hello"}, {"cat"}}, false, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, "hello\n", out)
}

func TestRunNonzeroExit(t *testing.T) {
	r := New()
	_, code, err := r.Run([][]string{{"false"}}, false, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, code)
}

func TestRunEmptyPipelineErrors(t *testing.T) {
	r := New()
	_, _, err := r.Run(nil, false, 0)
	assert.Error(t, err)
}

func TestRunBackgroundReturnsImmediatelyAndRegistersPID(t *testing.T) {
	r := New()
	out, code, err := r.Run([][]string{{"sleep", "0.2"}}, true, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, "", out)
	assert.NotEmpty(t, r.Background())

	time.Sleep(400 * time.Millisecond)
	assert.Empty(t, r.Background())
}

func TestRunTimeoutKillsStage(t *testing.T) {
	r := New()
	start := time.Now()
	_, code, err := r.Run([][]string{{"sleep", "2"}}, false, 50*time.Millisecond)
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.NotEqual(t, 0, code)
}
