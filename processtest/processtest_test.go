package processtest_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/resolwebio/bio/processtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeGzip(t *testing.T, path, content string) {
	f, err := os.Create(path)
	require.NoError(t, err)
	gz := gzip.NewWriter(f)
	_, err = gz.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())
}

func TestAssertFiles(t *testing.T) {
	h := processtest.New(t)
	defer h.Close()

	got := h.WriteFile("out/report.txt", "a\nb\n")
	golden := h.WriteFile("golden/report.txt", "a\nb\n")
	assert.True(t, processtest.AssertFiles(t, got, golden))

	gz := filepath.Join(h.Dir, "golden", "report.txt.gz")
	writeGzip(t, gz, "a\nb\n")
	assert.True(t, processtest.AssertFiles(t, got, gz))

	gotGz := filepath.Join(h.Dir, "out", "report.txt.gz")
	writeGzip(t, gotGz, "a\nb\n")
	assert.True(t, processtest.AssertFiles(t, gotGz, golden, processtest.Gunzip()))
}

func TestAssertFilesSkipLines(t *testing.T) {
	h := processtest.New(t)
	defer h.Close()

	got := h.WriteFile("got.sam", "@PG\tID:gatk\tVN:4.1\nread1\t0\nread2\t16\n")
	golden := h.WriteFile("want.sam", "@PG\tID:gatk\tVN:4.0\nread1\t0\nread2\t16\n")
	assert.True(t, processtest.AssertFiles(t, got, golden, processtest.SkipLines(processtest.HasPrefix("@PG"))))
}

type recordingT struct{ errors []string }

func (r *recordingT) Errorf(format string, args ...interface{}) {
	r.errors = append(r.errors, fmt.Sprintf(format, args...))
}

func TestAssertFilesMismatch(t *testing.T) {
	h := processtest.New(t)
	defer h.Close()

	got := h.WriteFile("got.txt", "1 + 0 in total\n")
	golden := h.WriteFile("want.txt", "2 + 0 in total\n")
	rec := &recordingT{}
	assert.False(t, processtest.AssertFiles(rec, got, golden))
	assert.Len(t, rec.errors, 1)
}

func TestDigest(t *testing.T) {
	h := processtest.New(t)
	defer h.Close()
	ctx := context.Background()

	a := h.WriteFile("a.txt", "x\n# comment\ny\n")
	b := h.WriteFile("b.txt", "x\ny\n")
	da, err := processtest.Digest(ctx, a)
	require.NoError(t, err)
	db, err := processtest.Digest(ctx, b)
	require.NoError(t, err)
	assert.NotEqual(t, da, db)

	da, err = processtest.Digest(ctx, a, processtest.SkipLines(processtest.HasPrefix("#")))
	require.NoError(t, err)
	assert.Equal(t, da, db)
}

func TestHarness(t *testing.T) {
	h := processtest.New(t)
	defer h.Close()

	env := h.Env("test")
	assert.Equal(t, h.Dir, env.Dir)
	assert.Equal(t, h.Runner, env.Runner)
	require.NoError(t, h.Touch("x.bw"))
	assert.True(t, env.Exists("x.bw"))
	env.Reporter.Info("hello")
	assert.Equal(t, []string{"hello"}, h.Reporter.Infos())
}
