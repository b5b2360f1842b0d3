package interval

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"strconv"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/fileio"
	"github.com/klauspost/compress/gzip"
	perrors "github.com/pkg/errors"
)

// Summary describes a checked BED file.
type Summary struct {
	// Intervals is the number of interval lines.
	Intervals int
	// Bases is the sum of interval lengths; overlaps are counted twice.
	Bases int64
	// Chroms is the number of distinct chromosome names.
	Chroms int
}

// bedFields splits line on whitespace into at most len(dst) fields and
// returns how many it found.
func bedFields(dst [][]byte, line []byte) int {
	n := 0
	for n < len(dst) {
		line = bytes.TrimLeft(line, " \t\r")
		if len(line) == 0 {
			break
		}
		end := bytes.IndexAny(line, " \t\r")
		if end < 0 {
			end = len(line)
		}
		dst[n] = line[:end]
		line = line[end:]
		n++
	}
	return n
}

func isHeaderLine(line []byte) bool {
	return bytes.HasPrefix(line, []byte("#")) ||
		bytes.HasPrefix(line, []byte("track")) ||
		bytes.HasPrefix(line, []byte("browser"))
}

// CheckReader validates BED content: every non-header line needs a
// chromosome, a start and an end with 0 <= start <= end, and there must be
// at least one interval.
func CheckReader(r io.Reader) (Summary, error) {
	var (
		s      Summary
		fields [3][]byte
		chroms = map[string]bool{}
	)
	scanner := bufio.NewScanner(r)
	lineIdx := 0
	for scanner.Scan() {
		lineIdx++
		line := scanner.Bytes()
		if isHeaderLine(line) {
			continue
		}
		n := bedFields(fields[:], line)
		if n == 0 {
			continue
		}
		if n < 3 {
			return s, errors.E(errors.Invalid, perrors.Errorf("line %d has fewer than 3 fields", lineIdx))
		}
		start, err := strconv.ParseInt(string(fields[1]), 10, 64)
		if err != nil {
			return s, errors.E(errors.Invalid, perrors.Wrapf(err, "line %d: start", lineIdx))
		}
		end, err := strconv.ParseInt(string(fields[2]), 10, 64)
		if err != nil {
			return s, errors.E(errors.Invalid, perrors.Wrapf(err, "line %d: end", lineIdx))
		}
		if start < 0 || end < start {
			return s, errors.E(errors.Invalid, perrors.Errorf("line %d: invalid coordinate pair %d-%d", lineIdx, start, end))
		}
		chroms[string(fields[0])] = true
		s.Intervals++
		s.Bases += end - start
	}
	if err := scanner.Err(); err != nil {
		return s, err
	}
	s.Chroms = len(chroms)
	if s.Intervals == 0 {
		return s, errors.E(errors.Invalid, "no intervals")
	}
	return s, nil
}

// Check validates the BED file at path, which may be gzip-compressed (by
// extension) and remote.
func Check(ctx context.Context, path string) (s Summary, err error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return s, errors.E(err, "interval: open", path)
	}
	defer func() {
		if cerr := in.Close(ctx); cerr != nil && err == nil {
			err = errors.E(cerr, "interval: close", path)
		}
	}()
	reader := io.Reader(in.Reader(ctx))
	if fileio.DetermineType(path) == fileio.Gzip {
		gz, err := gzip.NewReader(reader)
		if err != nil {
			return s, errors.E(err, "interval: gzip", path)
		}
		defer gz.Close()
		reader = gz
	}
	if s, err = CheckReader(reader); err != nil {
		return s, errors.E(err, "interval:", path)
	}
	return s, nil
}
