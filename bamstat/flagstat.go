package bamstat

import (
	"context"
	"fmt"
	"io"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/hts/bam"
	"github.com/grailbio/hts/sam"
)

// Counts holds the per-category read counts 'samtools flagstat' reports for
// one QC class.
type Counts struct {
	Total         int
	Mapped        int
	Duplicate     int
	Secondary     int
	Supplementary int
	Paired        int
	ProperPair    int
	Singleton     int
	BothMapped    int
	DiffChr       int
	DiffChrHighQ  int
	Read1, Read2  int
}

// Record counts r.
func (c *Counts) Record(r *sam.Record) {
	c.Total++
	f := r.Flags
	if (f & sam.Unmapped) == 0 {
		c.Mapped++
	}
	if (f & sam.Duplicate) != 0 {
		c.Duplicate++
	}
	switch {
	case (f & sam.Secondary) != 0:
		c.Secondary++
	case (f & sam.Supplementary) != 0:
		c.Supplementary++
	case (f & sam.Paired) != 0:
		c.Paired++
		if (f&sam.ProperPair) != 0 && (f&sam.Unmapped) == 0 {
			c.ProperPair++
		}
		if (f & sam.Read1) != 0 {
			c.Read1++
		}
		if (f & sam.Read2) != 0 {
			c.Read2++
		}
		if (f&sam.MateUnmapped) != 0 && (f&sam.Unmapped) == 0 {
			c.Singleton++
		}
		if (f&sam.Unmapped) == 0 && (f&sam.MateUnmapped) == 0 {
			c.BothMapped++
			if r.Ref.ID() != r.MateRef.ID() {
				c.DiffChr++
				if r.MapQ >= 5 {
					c.DiffChrHighQ++
				}
			}
		}
	}
}

// Stats splits counts into QC-passed and QC-failed reads.
type Stats struct {
	Passed, Failed Counts
}

// Record counts r in the class its QCFail flag selects.
func (s *Stats) Record(r *sam.Record) {
	if (r.Flags & sam.QCFail) != 0 {
		s.Failed.Record(r)
		return
	}
	s.Passed.Record(r)
}

func percent(a int, b int) string {
	if b == 0 {
		return "N/A"
	}
	return fmt.Sprintf("%.2f%%", float64(a)*100/float64(b))
}

// WriteTo writes s in the 'samtools flagstat' text layout.
func (s *Stats) WriteTo(w io.Writer) (int64, error) {
	qc, failed := s.Passed, s.Failed
	var n int64
	lines := []string{
		fmt.Sprintf("%d + %d in total (QC-passed reads + QC-failed reads)", qc.Total, failed.Total),
		fmt.Sprintf("%d + %d secondary", qc.Secondary, failed.Secondary),
		fmt.Sprintf("%d + %d supplementary", qc.Supplementary, failed.Supplementary),
		fmt.Sprintf("%d + %d duplicates", qc.Duplicate, failed.Duplicate),
		fmt.Sprintf("%d + %d mapped (%s : %s)", qc.Mapped, failed.Mapped,
			percent(qc.Mapped, qc.Total), percent(failed.Mapped, failed.Total)),
		fmt.Sprintf("%d + %d paired in sequencing", qc.Paired, failed.Paired),
		fmt.Sprintf("%d + %d read1", qc.Read1, failed.Read1),
		fmt.Sprintf("%d + %d read2", qc.Read2, failed.Read2),
		fmt.Sprintf("%d + %d properly paired (%s : %s)", qc.ProperPair, failed.ProperPair,
			percent(qc.ProperPair, qc.Paired), percent(failed.ProperPair, failed.Paired)),
		fmt.Sprintf("%d + %d with itself and mate mapped", qc.BothMapped, failed.BothMapped),
		fmt.Sprintf("%d + %d singletons (%s : %s)", qc.Singleton, failed.Singleton,
			percent(qc.Singleton, qc.Paired), percent(failed.Singleton, failed.Paired)),
		fmt.Sprintf("%d + %d with mate mapped to a different chr", qc.DiffChr, failed.DiffChr),
		fmt.Sprintf("%d + %d with mate mapped to a different chr (mapQ>=5)", qc.DiffChrHighQ, failed.DiffChrHighQ),
	}
	for _, line := range lines {
		m, err := io.WriteString(w, line+"\n")
		n += int64(m)
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

// Compute reads every record of the BAM file at path.
func Compute(ctx context.Context, path string) (stats Stats, err error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return stats, errors.E(err, "bamstat: open", path)
	}
	defer func() {
		if cerr := in.Close(ctx); cerr != nil && err == nil {
			err = errors.E(cerr, "bamstat: close", path)
		}
	}()
	r, err := bam.NewReader(in.Reader(ctx), 1)
	if err != nil {
		return stats, errors.E(err, "bamstat: read header", path)
	}
	defer func() {
		if cerr := r.Close(); cerr != nil && err == nil {
			err = errors.E(cerr, "bamstat: close reader", path)
		}
	}()
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return stats, errors.E(err, "bamstat: read", path)
		}
		stats.Record(rec)
		sam.PutInFreePool(rec)
	}
	log.Debug.Printf("bamstat: %s: %d + %d records", path, stats.Passed.Total, stats.Failed.Total)
	return stats, nil
}

// Flagstat writes 'samtools flagstat' output for the BAM file at path to w.
func Flagstat(ctx context.Context, path string, w io.Writer) error {
	stats, err := Compute(ctx, path)
	if err != nil {
		return err
	}
	_, err = stats.WriteTo(w)
	return err
}
