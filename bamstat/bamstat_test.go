package bamstat_test

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/grailbio/base/file"
	"github.com/grailbio/hts/bam"
	"github.com/grailbio/hts/sam"
	"github.com/grailbio/testutil"
	"github.com/resolwebio/bio/bamstat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newHeader returns a fresh header; sam.References can belong to only one
// header.
func newHeader(t *testing.T, rgs ...*sam.ReadGroup) (header *sam.Header, chr1, chr2 *sam.Reference) {
	chr1, err := sam.NewReference("chr1", "", "", 1000, nil, nil)
	require.NoError(t, err)
	chr2, err = sam.NewReference("chr2", "", "", 2000, nil, nil)
	require.NoError(t, err)
	header, err = sam.NewHeader(nil, []*sam.Reference{chr1, chr2})
	require.NoError(t, err)
	for _, rg := range rgs {
		require.NoError(t, header.AddReadGroup(rg))
	}
	return header, chr1, chr2
}

func newRecord(name string, ref *sam.Reference, pos int, flags sam.Flags, mateRef *sam.Reference, matePos int, mapq byte) *sam.Record {
	r := &sam.Record{
		Name:    name,
		Ref:     ref,
		Pos:     pos,
		MapQ:    mapq,
		Flags:   flags,
		MateRef: mateRef,
		MatePos: matePos,
		Seq:     sam.NewSeq([]byte("ACGT")),
		Qual:    []byte{30, 30, 30, 30},
	}
	if (flags & sam.Unmapped) == 0 {
		r.Cigar = []sam.CigarOp{sam.NewCigarOp(sam.CigarMatch, 4)}
	}
	return r
}

func writeBAM(t *testing.T, path string, header *sam.Header, records []*sam.Record) {
	ctx := context.Background()
	out, err := file.Create(ctx, path)
	require.NoError(t, err)
	w, err := bam.NewWriter(out.Writer(ctx), header, 1)
	require.NoError(t, err)
	for _, r := range records {
		require.NoError(t, w.Write(r))
	}
	require.NoError(t, w.Close())
	require.NoError(t, out.Close(ctx))
}

func TestReadGroups(t *testing.T) {
	dir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, dir)

	rg, err := sam.NewReadGroup("1", "", "", "GENIALIS", "", "ILLUMINA", "BARCODE", "SAMPLENAME1", "", "", time.Time{}, 0)
	require.NoError(t, err)
	path := filepath.Join(dir, "rg.bam")
	header, chr1, _ := newHeader(t, rg)
	writeBAM(t, path, header, []*sam.Record{newRecord("r", chr1, 10, 0, nil, -1, 60)})

	rgs, err := bamstat.ReadGroups(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, rgs, 1)
	assert.Equal(t, "1", rgs[0].Name())
	assert.Equal(t, "SAMPLENAME1", bamstat.ReadGroupTag(rgs[0], "SM"))
	assert.Equal(t, "GENIALIS", bamstat.ReadGroupTag(rgs[0], "LB"))

	path = filepath.Join(dir, "norg.bam")
	header, _, _ = newHeader(t)
	writeBAM(t, path, header, nil)
	rgs, err = bamstat.ReadGroups(context.Background(), path)
	require.NoError(t, err)
	assert.Len(t, rgs, 0)
}

func TestReadGroupsMissingFile(t *testing.T) {
	_, err := bamstat.ReadGroups(context.Background(), "/nonexistent/x.bam")
	assert.Error(t, err)
}

func TestFlagstat(t *testing.T) {
	dir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, dir)

	header, chr1, chr2 := newHeader(t)
	const (
		r1 = sam.Paired | sam.Read1
		r2 = sam.Paired | sam.Read2
	)
	records := []*sam.Record{
		newRecord("a", chr1, 100, r1|sam.ProperPair, chr1, 200, 60),
		newRecord("a", chr1, 200, r2|sam.ProperPair|sam.Reverse, chr1, 100, 60),
		newRecord("b", chr1, 300, r1, chr2, 50, 3),
		newRecord("b", chr2, 50, r2, chr1, 300, 30),
		newRecord("c", chr1, 400, r1|sam.MateUnmapped, chr1, 400, 60),
		newRecord("c", chr1, 400, r2|sam.Unmapped, chr1, 400, 0),
		newRecord("a", chr1, 100, r1|sam.Secondary, chr1, 200, 60),
		newRecord("d", chr2, 10, sam.QCFail, nil, -1, 60),
	}
	path := filepath.Join(dir, "stats.bam")
	writeBAM(t, path, header, records)

	var buf bytes.Buffer
	require.NoError(t, bamstat.Flagstat(context.Background(), path, &buf))
	expected := `7 + 1 in total (QC-passed reads + QC-failed reads)
1 + 0 secondary
0 + 0 supplementary
0 + 0 duplicates
6 + 1 mapped (85.71% : 100.00%)
6 + 0 paired in sequencing
3 + 0 read1
3 + 0 read2
2 + 0 properly paired (33.33% : N/A)
4 + 0 with itself and mate mapped
1 + 0 singletons (16.67% : N/A)
2 + 0 with mate mapped to a different chr
1 + 0 with mate mapped to a different chr (mapQ>=5)
`
	assert.Equal(t, expected, buf.String())
}
