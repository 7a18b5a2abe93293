package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/funvibe/derivcheck/internal/config"
	"github.com/funvibe/derivcheck/internal/ctxlog"
	"github.com/funvibe/derivcheck/internal/manifest"
	"github.com/funvibe/derivcheck/internal/report"
	"github.com/funvibe/derivcheck/internal/store"
	"github.com/funvibe/derivcheck/internal/verifier"
)

// isManifestFile checks if a file has a recognized manifest extension
func isManifestFile(path string) bool {
	for _, ext := range config.ManifestFileExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

// collectManifests expands directories into the manifests they contain.
func collectManifests(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, fmt.Errorf("reading directory %s: %w", arg, err)
		}
		for _, e := range entries {
			if !e.IsDir() && isManifestFile(e.Name()) {
				paths = append(paths, filepath.Join(arg, e.Name()))
			}
		}
	}
	return paths, nil
}

type cli struct {
	opts    config.Options
	verify  bool
	export  string
	printer *report.Printer
}

// run verifies one manifest and reports whether it was clean: no
// diagnostics, or in verify mode no mismatches.
func (c *cli) run(ctx context.Context, path string) (bool, error) {
	m, err := manifest.LoadManifest(path)
	if err != nil {
		return false, err
	}
	unit, err := m.Build()
	if err != nil {
		return false, fmt.Errorf("%s: %w", path, err)
	}

	pass := verifier.NewPass(unit.Index, c.opts)
	logger := ctxlog.FromContext(ctx).With("manifest", path)
	results, err := pass.Run(ctxlog.WithLogger(ctx, logger), unit.Requests)
	if err != nil {
		return false, fmt.Errorf("%s: %w", path, err)
	}

	if c.export != "" {
		s, err := store.Open(c.export)
		if err != nil {
			return false, err
		}
		defer s.Close()
		if err := s.SaveTable(ctx, pass.ID, pass.Table()); err != nil {
			return false, fmt.Errorf("exporting %s: %w", path, err)
		}
		logger.Info("registrations exported", "db", c.export, "pass", pass.ID, "entries", pass.Table().Len())
	}

	if c.verify {
		mismatches := verifier.Check(results, unit.Expect)
		for _, mm := range mismatches {
			c.printer.Mismatch(mm)
		}
		return len(mismatches) == 0, nil
	}

	clean := true
	for _, r := range results {
		if r.Err != nil {
			clean = false
			c.printer.Failed(r)
			continue
		}
		if r.Diagnostic == nil {
			c.printer.Registered(r)
			continue
		}
		clean = false
		file := path
		if decl, ok := unit.Index.Lookup(r.Request.Candidate); ok {
			file = decl.File
		}
		c.printer.Diagnostic(file, r.Diagnostic)
	}
	c.printer.Summary(results)
	return clean, nil
}

func main() {
	opts := config.DefaultOptions()
	fs := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	fs.IntVar(&opts.Workers, "workers", opts.Workers, "number of requests verified concurrently")
	relax := fs.Bool("relax-same-file", false, "accept originals declared in another file")
	verify := fs.Bool("verify", false, "compare diagnostics with the manifests' expect fields")
	export := fs.String("export", "", "save accepted registrations to this SQLite database")
	verbose := fs.Bool("v", false, "log each pipeline stage")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <manifest|dir>...\n", os.Args[0])
		fs.PrintDefaults()
	}
	fs.Parse(os.Args[1:])
	opts.RequireSameFile = !*relax

	if fs.NArg() == 0 {
		fs.Usage()
		os.Exit(2)
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	ctx := ctxlog.WithLogger(context.Background(), logger)

	paths, err := collectManifests(fs.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	c := &cli{opts: opts, verify: *verify, export: *export, printer: report.New(os.Stdout)}
	failed := false
	for _, path := range paths {
		clean, err := c.run(ctx, path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		}
		if !clean {
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}
