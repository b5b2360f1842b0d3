package process

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/minio/highwayhash"
)

// StagedDir is the subdirectory of the working directory that receives
// copies of remote inputs.
const StagedDir = "inputs"

// stagingKey seeds the hash that names per-URL staging directories. It must
// be 32 bytes long.
var stagingKey = []byte("resolwebio/bio input staging ...")

// stagedPath is where remote input p is copied under dir. Each URL gets its
// own subdirectory so that inputs sharing a base name do not collide, while
// the file keeps its base name for tools that look at extensions.
func stagedPath(dir, p, suffix string) string {
	sub := fmt.Sprintf("%016x", highwayhash.Sum64([]byte(p), stagingKey))
	return filepath.Join(dir, StagedDir, sub, path.Base(suffix))
}

// Stage makes p available to local tools. A local path must exist and is
// returned in absolute form, since tools run in the working directory. A
// path with a scheme (e.g. s3://bucket/x.bam) is copied to
// <dir>/inputs/<url hash>/<basename> and the local copy is returned.
func Stage(ctx context.Context, dir, p string) (string, error) {
	scheme, suffix, err := file.ParsePath(p)
	if err != nil {
		return "", errors.E(errors.Invalid, err, p)
	}
	if scheme == "" {
		if _, err := os.Stat(p); err != nil {
			if os.IsNotExist(err) {
				return "", errors.E(errors.NotExist, "input file does not exist:", p)
			}
			return "", errors.E(err, "stat", p)
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			return "", errors.E(err, "abs", p)
		}
		return abs, nil
	}
	dst := stagedPath(dir, p, suffix)
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return "", errors.E(err, "mkdir", filepath.Dir(dst))
	}
	log.Printf("staging %s to %s", p, dst)
	if err := CopyFile(ctx, p, dst); err != nil {
		return "", err
	}
	return dst, nil
}

// CopyFile copies src to dst verbatim. Either may be a remote path. When
// dst is local its modification time is set to that of src.
func CopyFile(ctx context.Context, src, dst string) (err error) {
	in, err := file.Open(ctx, src)
	if err != nil {
		return errors.E(err, "open", src)
	}
	defer func() {
		if cerr := in.Close(ctx); cerr != nil && err == nil {
			err = errors.E(cerr, "close", src)
		}
	}()
	out, err := file.Create(ctx, dst)
	if err != nil {
		return errors.E(err, "create", dst)
	}
	if _, err = io.Copy(out.Writer(ctx), in.Reader(ctx)); err != nil {
		out.Discard(ctx)
		return errors.E(err, "copy", src, "to", dst)
	}
	if err = out.Close(ctx); err != nil {
		return errors.E(err, "close", dst)
	}
	if scheme, _, _ := file.ParsePath(dst); scheme != "" {
		return nil
	}
	info, err := in.Stat(ctx)
	if err != nil {
		return errors.E(err, "stat", src)
	}
	if mtime := info.ModTime(); !mtime.IsZero() {
		if err = os.Chtimes(dst, mtime, mtime); err != nil {
			return errors.E(err, "chtimes", dst)
		}
	}
	return nil
}
