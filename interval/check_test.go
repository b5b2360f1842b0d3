package interval_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
	"github.com/klauspost/compress/gzip"
	"github.com/resolwebio/bio/interval"
)

func TestCheckReader(t *testing.T) {
	s, err := interval.CheckReader(strings.NewReader(`track name=targets
# comment
chr1	100	200	exon1

chr1	150	150
chr2 0 10 extra columns
`))
	assert.NoError(t, err)
	expect.EQ(t, s, interval.Summary{Intervals: 3, Bases: 110, Chroms: 2})
}

func TestCheckReaderErrors(t *testing.T) {
	for _, bed := range []string{
		"",
		"# only a header\n",
		"chr1\t100\n",
		"chr1\tx\t200\n",
		"chr1\t100\ty\n",
		"chr1\t200\t100\n",
		"chr1\t-1\t100\n",
	} {
		_, err := interval.CheckReader(strings.NewReader(bed))
		expect.True(t, errors.Is(errors.Invalid, err), "bed %q: %v", bed, err)
	}
}

func TestCheckGzip(t *testing.T) {
	tmpdir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, tmpdir)
	ctx := context.Background()

	path := filepath.Join(tmpdir, "targets.bed.gz")
	out, err := file.Create(ctx, path)
	assert.NoError(t, err)
	gz := gzip.NewWriter(out.Writer(ctx))
	_, err = gz.Write([]byte("chr2\t100000\t100005\nchr2\t100006\t100007\n"))
	assert.NoError(t, err)
	assert.NoError(t, gz.Close())
	assert.NoError(t, out.Close(ctx))

	s, err := interval.Check(ctx, path)
	assert.NoError(t, err)
	expect.EQ(t, s, interval.Summary{Intervals: 2, Bases: 6, Chroms: 1})

	_, err = interval.Check(ctx, filepath.Join(tmpdir, "missing.bed"))
	expect.NotNil(t, err)
}
