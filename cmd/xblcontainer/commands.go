package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/opencontainers/go-digest"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/meigma/connstore"
	"github.com/meigma/connstore/internal/fileio"
)

func (a *app) info(c *cli.Context) error {
	if err := requireArgs(c, 1); err != nil {
		return err
	}
	st, err := a.openStorage(c, c.Args().Get(0), false)
	if err != nil {
		return err
	}
	defer st.Close()

	var digests map[string]digest.Digest
	if c.Bool("digest") {
		if digests, err = blobDigests(st); err != nil {
			return err
		}
	}
	return printStorage(a.out, st, digests)
}

func blobDigests(st *connstore.Storage) (map[string]digest.Digest, error) {
	out := make(map[string]digest.Digest)
	for _, ct := range st.Containers() {
		for _, rec := range ct.Blobs() {
			rc, err := ct.Open(rec.Name)
			if err != nil {
				return nil, err
			}
			d, err := digest.FromReader(rc)
			rc.Close()
			if err != nil {
				return nil, fmt.Errorf("digest %s/%s: %w", ct.FileName(), rec.Name, err)
			}
			out[ct.BlobPath(rec)] = d
		}
	}
	return out, nil
}

// entryPath returns the slash-separated name used for ct under an extract
// directory. Indexes without entry names fall back to the file name.
func entryPath(ct *connstore.Container) (string, error) {
	name := ct.EntryName()
	if name == "" {
		name = ct.FileName()
	}
	p := filepath.FromSlash(name)
	if !filepath.IsLocal(p) {
		return "", fmt.Errorf("entry name %q is not a relative path", name)
	}
	return p, nil
}

// blobTarget is one blob and its location under an extract/update directory.
type blobTarget struct {
	container *connstore.Container
	blob      string
	path      string
}

// layout maps every live blob to a path below root. Single-blob entries map
// to <root>/<entry>; multi-blob entries to <root>/<entry>/<blob>.
func layout(st *connstore.Storage, root string) ([]blobTarget, error) {
	var out []blobTarget
	for _, ct := range st.Containers() {
		if ct.State() == connstore.StateDeleted {
			continue
		}
		base, err := entryPath(ct)
		if err != nil {
			return nil, err
		}
		blobs := ct.Blobs()
		if len(blobs) == 1 {
			out = append(out, blobTarget{container: ct, path: filepath.Join(root, base)})
			continue
		}
		for _, rec := range blobs {
			if !filepath.IsLocal(rec.Name) || strings.ContainsAny(rec.Name, `/\`) {
				return nil, fmt.Errorf("blob name %q in %s is not a file name", rec.Name, ct.FileName())
			}
			out = append(out, blobTarget{container: ct, blob: rec.Name, path: filepath.Join(root, base, rec.Name)})
		}
	}
	return out, nil
}

func (a *app) extract(c *cli.Context) error {
	if err := requireArgs(c, 2); err != nil {
		return err
	}
	st, err := a.openStorage(c, c.Args().Get(0), false)
	if err != nil {
		return err
	}
	defer st.Close()

	out := c.Args().Get(1)
	targets, err := layout(st, out)
	if err != nil {
		return err
	}
	for _, t := range targets {
		if err := os.MkdirAll(filepath.Dir(t.path), 0o750); err != nil {
			return err
		}
	}

	jobs := c.Int("jobs")
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	g, ctx := errgroup.WithContext(c.Context)
	g.SetLimit(jobs)
	for _, t := range targets {
		g.Go(func() error {
			rc, err := t.container.Open(t.blob)
			if err != nil {
				return err
			}
			defer rc.Close()
			n, err := fileio.CopyFile(ctx, t.path, rc)
			if err != nil {
				return err
			}
			a.logger.Debug("extracted", "entry", t.container.FileName(), "blob", t.blob, "path", t.path, "bytes", n)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "extracted %d blobs to %s\n", len(targets), out)
	return nil
}

func (a *app) update(c *cli.Context) error {
	if err := requireArgs(c, 2); err != nil {
		return err
	}
	dir := c.Args().Get(0)
	st, err := a.openStorage(c, dir, true)
	if err != nil {
		return err
	}
	targets, err := layout(st, c.Args().Get(1))
	if err != nil {
		return err
	}
	if err := a.snapshot(c, dir); err != nil {
		return err
	}

	updated := 0
	for _, t := range targets {
		f, err := os.Open(t.path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return err
		}
		err = t.container.Update(c.Context, t.blob, f)
		f.Close()
		if err != nil {
			return err
		}
		updated++
		fmt.Fprintf(a.out, "updated %s\n", t.path)
	}
	if err := st.Write(); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "updated %d of %d blobs\n", updated, len(targets))
	return nil
}

func (a *app) add(c *cli.Context) error {
	if err := requireArgs(c, 3); err != nil {
		return err
	}
	dir, fileName, source := c.Args().Get(0), c.Args().Get(1), c.Args().Get(2)
	entryName := c.String("entry-name")
	if entryName == "" {
		entryName = fileName
	}

	src, err := os.Open(source)
	if err != nil {
		return err
	}
	defer src.Close()

	st, err := a.openStorage(c, dir, true)
	if err != nil {
		return err
	}
	if err := a.snapshot(c, dir); err != nil {
		return err
	}
	ct, err := st.Add(fileName, entryName)
	if err != nil {
		return err
	}
	rec, err := ct.Add(c.Context, c.String("blob-name"), src)
	if err != nil {
		return err
	}
	if err := st.Write(); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "added %s (container %s, blob %s)\n", fileName, ct.ID(), rec.FileID)
	return nil
}

func (a *app) rm(c *cli.Context) error {
	if err := requireArgs(c, 2); err != nil {
		return err
	}
	dir := c.Args().Get(0)
	st, err := a.openStorage(c, dir, true)
	if err != nil {
		return err
	}
	if err := a.snapshot(c, dir); err != nil {
		return err
	}
	if err := st.RemoveByName(c.Args().Get(1)); err != nil {
		return err
	}
	if err := st.Write(); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "marked %s deleted\n", c.Args().Get(1))
	return nil
}
