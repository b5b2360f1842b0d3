// Package processtest runs processes against a fake tool runner in a
// scratch working directory and compares produced files with golden
// fixtures.
package processtest

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/fileio"
	"github.com/grailbio/testutil"
	"github.com/klauspost/compress/gzip"
	"github.com/minio/highwayhash"
	"github.com/resolwebio/bio/process"
	"github.com/resolwebio/bio/toolrun"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// digestKey keys the highwayhash digests; any fixed 32-byte key works since
// digests are only compared within one process.
var digestKey = []byte("resolwebio/bio processtest key!!")

// Harness is a scratch working directory plus a fake runner and a recording
// reporter.
type Harness struct {
	t        testing.TB
	Dir      string
	Runner   *toolrun.Fake
	Reporter *process.Recorder
	cleanup  func()
}

// New creates a Harness. Call Close when done; the directory is kept if the
// test failed.
func New(t testing.TB) *Harness {
	dir, cleanup := testutil.TempDir(t, "", "processtest")
	return &Harness{
		t:        t,
		Dir:      dir,
		Runner:   toolrun.NewFake(),
		Reporter: &process.Recorder{},
		cleanup:  cleanup,
	}
}

// Close removes the working directory unless the test failed.
func (h *Harness) Close() {
	testutil.NoCleanupOnError(h.t, h.cleanup, h.Dir)
}

// Env returns a process environment rooted at the harness directory.
func (h *Harness) Env(slug string) *process.Env {
	env := process.NewEnv(slug, h.Dir, h.Runner)
	env.Reporter = h.Reporter
	return env
}

// Path resolves name against the harness directory.
func (h *Harness) Path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(h.Dir, name)
}

// WriteFile creates name with the given content and returns its path.
func (h *Harness) WriteFile(name, content string) string {
	p := h.Path(name)
	require.NoError(h.t, os.MkdirAll(filepath.Dir(p), 0755))
	require.NoError(h.t, ioutil.WriteFile(p, []byte(content), 0644))
	return p
}

// Touch creates an empty file, as a stand-in for a tool's output.
func (h *Harness) Touch(name string) error {
	return ioutil.WriteFile(h.Path(name), nil, 0644)
}

type compareOpts struct {
	gunzip bool
	filter func(line string) bool
}

// Opt modifies how files are read before comparison.
type Opt func(*compareOpts)

// Gunzip decompresses the produced file before comparing it. Golden files
// ending in .gz are always decompressed.
func Gunzip() Opt { return func(o *compareOpts) { o.gunzip = true } }

// SkipLines drops lines for which skip returns true from both files, e.g.
// headers that carry timestamps or program versions.
func SkipLines(skip func(line string) bool) Opt {
	return func(o *compareOpts) { o.filter = skip }
}

func readAll(ctx context.Context, path string, gunzip bool, skip func(string) bool) (data []byte, err error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, errors.E(err, "processtest: open", path)
	}
	defer func() {
		if cerr := in.Close(ctx); cerr != nil && err == nil {
			err = cerr
		}
	}()
	r := io.Reader(in.Reader(ctx))
	if gunzip {
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, errors.E(err, "processtest: gzip", path)
		}
		defer gz.Close()
		r = gz
	}
	if skip == nil {
		return ioutil.ReadAll(r)
	}
	var buf bytes.Buffer
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if line := scanner.Text(); !skip(line) {
			buf.WriteString(line)
			buf.WriteByte('\n')
		}
	}
	return buf.Bytes(), scanner.Err()
}

func digest(data []byte) [highwayhash.Size]byte {
	return highwayhash.Sum(data, digestKey)
}

// Digest returns the highwayhash of path's content after applying opts.
func Digest(ctx context.Context, path string, opts ...Opt) ([highwayhash.Size]byte, error) {
	var o compareOpts
	for _, opt := range opts {
		opt(&o)
	}
	data, err := readAll(ctx, path, o.gunzip, o.filter)
	if err != nil {
		return [highwayhash.Size]byte{}, err
	}
	return digest(data), nil
}

// AssertFiles checks that the file got has the same content as golden. On
// mismatch it reports both contents.
func AssertFiles(t assert.TestingT, got, golden string, opts ...Opt) bool {
	var o compareOpts
	for _, opt := range opts {
		opt(&o)
	}
	ctx := context.Background()
	gotData, err := readAll(ctx, got, o.gunzip, o.filter)
	if !assert.NoError(t, err) {
		return false
	}
	wantData, err := readAll(ctx, golden, fileio.DetermineType(golden) == fileio.Gzip, o.filter)
	if !assert.NoError(t, err) {
		return false
	}
	if digest(gotData) == digest(wantData) {
		return true
	}
	return assert.Equal(t, string(wantData), string(gotData), "%s differs from %s", got, golden)
}

// HasPrefix is a SkipLines predicate dropping lines that start with any of
// the prefixes.
func HasPrefix(prefixes ...string) func(string) bool {
	return func(line string) bool {
		for _, p := range prefixes {
			if strings.HasPrefix(line, p) {
				return true
			}
		}
		return false
	}
}
