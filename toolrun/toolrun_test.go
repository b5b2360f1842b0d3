package toolrun_test

import (
	"context"
	"errors"
	"io/ioutil"
	"path/filepath"
	"testing"
	"time"

	"github.com/grailbio/testutil"
	"github.com/resolwebio/bio/toolrun"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "gatk ApplyBQSR", toolrun.Cmd{Name: "gatk", Args: []string{"ApplyBQSR", "--input", "a.bam"}}.Key())
	assert.Equal(t, "samtools index", toolrun.Cmd{Name: "samtools", Args: []string{"index", "a.bam"}}.Key())
	assert.Equal(t, "bamtobigwig.sh", toolrun.Cmd{Name: "bamtobigwig.sh", Args: []string{"a.bam", "Homo sapiens", "2"}}.Key())
	assert.Equal(t, "ls", toolrun.Cmd{Name: "ls", Args: []string{"-l"}}.Key())
	assert.Equal(t, "ls", toolrun.Cmd{Name: "ls"}.Key())
}

func TestString(t *testing.T) {
	c := toolrun.Cmd{Name: "samtools", Args: []string{"flagstat", "a.bam"}, Stdout: "a.bam_stats.txt"}
	assert.Equal(t, "samtools flagstat a.bam > a.bam_stats.txt", c.String())
}

func TestExecStdout(t *testing.T) {
	dir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, dir)

	r := toolrun.NewExec(dir)
	err := r.Run(context.Background(), toolrun.Cmd{
		Name:   "sh",
		Args:   []string{"-c", "echo hello; echo $GREETING"},
		Stdout: "out.txt",
	})
	require.NoError(t, err)
	data, err := ioutil.ReadFile(filepath.Join(dir, "out.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello\n\n", string(data))

	r.Env = []string{"GREETING=hi"}
	require.NoError(t, r.Run(context.Background(), toolrun.Cmd{
		Name:   "sh",
		Args:   []string{"-c", "echo $GREETING"},
		Stdout: "out.txt",
	}))
	data, err = ioutil.ReadFile(filepath.Join(dir, "out.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hi\n", string(data))
}

func TestExecExitStatus(t *testing.T) {
	dir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, dir)

	err := toolrun.NewExec(dir).Run(context.Background(), toolrun.Cmd{
		Name: "sh",
		Args: []string{"-c", "echo broken >&2; exit 3"},
	})
	require.Error(t, err)
	var exitErr *toolrun.ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 3, exitErr.Code)
	assert.Equal(t, "broken", exitErr.Stderr)
	assert.Contains(t, err.Error(), "exit status 3")
}

func TestExecMissingTool(t *testing.T) {
	err := toolrun.NewExec("").Run(context.Background(), toolrun.Cmd{Name: "no-such-tool-for-toolrun-tests"})
	require.Error(t, err)
	var exitErr *toolrun.ExitError
	assert.False(t, errors.As(err, &exitErr))
}

func TestExecCancel(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	start := time.Now()
	err := toolrun.NewExec("").Run(ctx, toolrun.Cmd{Name: "sh", Args: []string{"-c", "sleep 30"}})
	require.Error(t, err)
	assert.True(t, time.Since(start) < 10*time.Second)
}

func TestFake(t *testing.T) {
	f := toolrun.NewFake()
	boom := errors.New("boom")
	f.Handle("gatk ApplyBQSR", func(c toolrun.Cmd) error { return boom })

	ctx := context.Background()
	require.NoError(t, f.Run(ctx, toolrun.Cmd{Name: "samtools", Args: []string{"index", "a.bam"}}))
	assert.Equal(t, boom, f.Run(ctx, toolrun.Cmd{Name: "gatk", Args: []string{"ApplyBQSR"}}))
	assert.Equal(t, []string{"samtools index", "gatk ApplyBQSR"}, f.Keys())
	assert.Equal(t, []string{"index", "a.bam"}, f.Calls()[0].Args)
}
