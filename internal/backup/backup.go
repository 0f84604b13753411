// Package backup archives a storage directory as a zstd-compressed tar stream.
package backup

import (
	"archive/tar"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"github.com/meigma/connstore/internal/fileio"
)

// Extension is the conventional suffix of snapshot files.
const Extension = ".tar.zst"

// Stats summarizes a snapshot or restore.
type Stats struct {
	Files int
	Bytes int64
}

// Snapshot writes every regular file and directory under dir to w. Entry
// names are slash-separated and relative to dir.
func Snapshot(ctx context.Context, dir string, w io.Writer) (Stats, error) {
	var stats Stats

	enc, err := zstd.NewWriter(w, zstd.WithEncoderConcurrency(1))
	if err != nil {
		return stats, fmt.Errorf("create zstd encoder: %w", err)
	}
	tw := tar.NewWriter(enc)

	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		if !d.IsDir() && !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		hdr, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		hdr.Name = filepath.ToSlash(rel)
		if d.IsDir() {
			hdr.Name += "/"
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		n, err := copyFile(tw, path)
		stats.Files++
		stats.Bytes += n
		return err
	})
	if walkErr != nil {
		tw.Close()
		enc.Close()
		return stats, fmt.Errorf("snapshot %s: %w", dir, walkErr)
	}
	if err := tw.Close(); err != nil {
		enc.Close()
		return stats, fmt.Errorf("close tar stream: %w", err)
	}
	if err := enc.Close(); err != nil {
		return stats, fmt.Errorf("close zstd stream: %w", err)
	}
	return stats, nil
}

func copyFile(w io.Writer, path string) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return io.Copy(w, f)
}

// Restore extracts a snapshot read from r into dir, replacing files that
// already exist. Entries that would land outside dir are rejected.
func Restore(ctx context.Context, r io.Reader, dir string) (Stats, error) {
	var stats Stats

	dec, err := zstd.NewReader(r)
	if err != nil {
		return stats, fmt.Errorf("create zstd decoder: %w", err)
	}
	defer dec.Close()
	tr := tar.NewReader(dec)

	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return stats, nil
		}
		if err != nil {
			return stats, fmt.Errorf("read snapshot: %w", err)
		}
		name := filepath.FromSlash(hdr.Name)
		if !filepath.IsLocal(name) {
			return stats, fmt.Errorf("restore: entry %q escapes %s", hdr.Name, dir)
		}
		target := filepath.Join(dir, name)

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o750); err != nil {
				return stats, err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
				return stats, err
			}
			n, err := fileio.CopyFile(ctx, target, tr)
			if err != nil {
				return stats, err
			}
			stats.Files++
			stats.Bytes += n
		}
	}
}
