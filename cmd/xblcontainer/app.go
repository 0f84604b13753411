package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/meigma/connstore"
	"github.com/meigma/connstore/internal/backup"
)

type app struct {
	out    io.Writer
	level  slog.LevelVar
	logger *slog.Logger
}

func newApp(out, errOut io.Writer) *cli.App {
	a := &app{out: out}
	a.level.Set(slog.LevelWarn)
	a.logger = newLogger(errOut, &a.level)

	backupFlag := &cli.StringFlag{
		Name:      "backup",
		Usage:     "write a snapshot of the storage directory to `FILE` before changing it",
		TakesFile: true,
		EnvVars:   []string{"XBLC_BACKUP"},
	}

	return &cli.App{
		Name:      "xblcontainer",
		Usage:     "inspect and edit connected storage save directories",
		Writer:    out,
		ErrWriter: errOut,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "platform", Value: "windows", Usage: "file naming of the storage (`windows` or `xbox`)", EnvVars: []string{"XBLC_PLATFORM"}},
			&cli.BoolFlag{Name: "read-only", Usage: "open storages read-only", EnvVars: []string{"XBLC_READ_ONLY"}},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "log storage operations"},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("verbose") {
				a.level.Set(slog.LevelDebug)
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "info",
				Usage:     "print the index header, entries and blobs",
				ArgsUsage: "<storage>",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "digest", Usage: "print the sha256 digest of every blob"},
				},
				Action: a.info,
			},
			{
				Name:      "extract",
				Usage:     "copy every blob into a directory",
				ArgsUsage: "<storage> <output>",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "jobs", Aliases: []string{"j"}, Usage: "number of blobs copied at once (0 = GOMAXPROCS)"},
				},
				Action: a.extract,
			},
			{
				Name:      "update",
				Usage:     "replace blobs with files from a directory laid out like extract output",
				ArgsUsage: "<storage> <input>",
				Flags:     []cli.Flag{backupFlag},
				Action:    a.update,
			},
			{
				Name:      "add",
				Usage:     "add an entry holding one blob read from a file",
				ArgsUsage: "<storage> <file name> <source>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "entry-name", Usage: "entry name (default: the file name)"},
					&cli.StringFlag{Name: "blob-name", Usage: "blob name", Value: connstore.DefaultBlobName},
					backupFlag,
				},
				Action: a.add,
			},
			{
				Name:      "rm",
				Usage:     "mark an entry deleted",
				ArgsUsage: "<storage> <file name>",
				Flags:     []cli.Flag{backupFlag},
				Action:    a.rm,
			},
			{
				Name:      "restore",
				Usage:     "unpack a snapshot written by --backup",
				ArgsUsage: "<snapshot> <directory>",
				Action:    a.restore,
			},
		},
	}
}

func requireArgs(c *cli.Context, n int) error {
	if c.NArg() != n {
		return fmt.Errorf("%s: expected %d arguments, got %d (usage: %s %s)",
			c.Command.Name, n, c.NArg(), c.Command.Name, c.Command.ArgsUsage)
	}
	return nil
}

// openStorage opens the storage at dir with the global flags applied.
func (a *app) openStorage(c *cli.Context, dir string, write bool) (*connstore.Storage, error) {
	platform, err := connstore.ParsePlatform(c.String("platform"))
	if err != nil {
		return nil, err
	}
	readOnly := !write || c.Bool("read-only")
	if write && c.Bool("read-only") {
		return nil, fmt.Errorf("%s: %w", c.Command.Name, connstore.ErrReadOnly)
	}
	return connstore.Open(dir,
		connstore.WithPlatform(platform),
		connstore.WithReadOnly(readOnly),
		connstore.WithLogger(a.logger),
	)
}

// snapshot writes a backup of dir when --backup is set.
func (a *app) snapshot(c *cli.Context, dir string) error {
	path := c.String("backup")
	if path == "" {
		return nil
	}
	if filepath.Ext(path) == "" {
		path += backup.Extension
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("create backup: %w", err)
	}
	start := time.Now()
	stats, err := backup.Snapshot(c.Context, dir, f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return err
	}
	a.logger.Info("backup written", "path", path, "files", stats.Files, "bytes", stats.Bytes, "took", time.Since(start))
	return nil
}

func (a *app) restore(c *cli.Context) error {
	if err := requireArgs(c, 2); err != nil {
		return err
	}
	f, err := os.Open(c.Args().Get(0))
	if err != nil {
		return err
	}
	defer f.Close()
	stats, err := backup.Restore(c.Context, f, c.Args().Get(1))
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "restored %d files (%d bytes)\n", stats.Files, stats.Bytes)
	return nil
}
