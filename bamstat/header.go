package bamstat

import (
	"context"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/hts/bam"
	"github.com/grailbio/hts/sam"
)

// Header reads the SAM header of the BAM file at path.
func Header(ctx context.Context, path string) (header *sam.Header, err error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, errors.E(err, "bamstat: open", path)
	}
	defer func() {
		if cerr := in.Close(ctx); cerr != nil && err == nil {
			err = errors.E(cerr, "bamstat: close", path)
		}
	}()
	r, err := bam.NewReader(in.Reader(ctx), 1)
	if err != nil {
		return nil, errors.E(err, "bamstat: read header", path)
	}
	header = r.Header()
	if err = r.Close(); err != nil {
		return nil, errors.E(err, "bamstat: close reader", path)
	}
	return header, nil
}

// ReadGroups returns the @RG entries of the BAM file at path.
func ReadGroups(ctx context.Context, path string) ([]*sam.ReadGroup, error) {
	header, err := Header(ctx, path)
	if err != nil {
		return nil, err
	}
	return header.RGs(), nil
}

// ReadGroupTag returns the value of the two-letter tag (e.g. "SM") of rg.
func ReadGroupTag(rg *sam.ReadGroup, tag string) string {
	return rg.Get(sam.NewTag(tag))
}
