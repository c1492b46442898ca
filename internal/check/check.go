// Package check runs the complexity visitors over source files.
package check

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	sitter "github.com/smacker/go-tree-sitter"
	"golang.org/x/sync/errgroup"

	"github.com/phobologic/pycounts/internal/config"
	"github.com/phobologic/pycounts/internal/counts"
	"github.com/phobologic/pycounts/internal/discover"
	"github.com/phobologic/pycounts/internal/lang"
	"github.com/phobologic/pycounts/internal/parse"
	"github.com/phobologic/pycounts/internal/violation"
	"github.com/phobologic/pycounts/internal/visitor"
)

// FileResult holds the violations found in one file.
type FileResult struct {
	Path       string
	Violations []violation.Violation
}

// Checker checks source files against a threshold snapshot.
// A Checker is safe for concurrent use; every tree gets fresh visitors.
type Checker struct {
	Options config.Options

	// Checks selects the visitors to run. Nil runs every check.
	Checks []counts.Check

	// MaxFileSize skips files larger than this many bytes. Zero disables the limit.
	MaxFileSize int64

	// Logger receives warnings about skipped files. Nil discards them.
	Logger *slog.Logger
}

func (c *Checker) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.Logger
}

func (c *Checker) visitors() []visitor.Visitor {
	checks := c.Checks
	if checks == nil {
		checks = counts.Checks()
	}
	out := make([]visitor.Visitor, 0, len(checks))
	for _, ch := range checks {
		out = append(out, ch.New(c.Options))
	}
	return out
}

// CheckSource parses one Python source unit and returns its violations.
// The parser must be created for Python and not be used concurrently.
func (c *Checker) CheckSource(ctx context.Context, parser *sitter.Parser, source []byte) ([]violation.Violation, error) {
	tree, err := parse.Tree(ctx, parser, source)
	if err != nil {
		return nil, err
	}
	return visitor.Run(tree, c.visitors()...), nil
}

// CheckFiles checks files under root concurrently and returns one result per
// checked file in input order. Files that cannot be read, exceed the size
// limit, or do not parse are logged and skipped. The only error returned is
// the context's.
func (c *Checker) CheckFiles(ctx context.Context, root string, files []discover.FileEntry) ([]FileResult, error) {
	log := c.logger()

	numWorkers := runtime.GOMAXPROCS(0)
	if numWorkers > len(files) {
		numWorkers = len(files)
	}

	work := make(chan int, len(files))
	for i := range files {
		work <- i
	}
	close(work)

	indexed := make([]FileResult, len(files))
	valid := make([]bool, len(files))

	g, ctx := errgroup.WithContext(ctx)
	for range numWorkers {
		g.Go(func() error {
			// Each goroutine gets its own parsers
			parsers := make(map[string]*sitter.Parser)

			for idx := range work {
				if err := ctx.Err(); err != nil {
					return err
				}

				f := files[idx]
				parser, ok := parsers[f.Language]
				if !ok {
					l := lang.Languages[f.Language]
					if l == nil {
						log.Warn("unsupported language", "path", f.Path, "language", f.Language)
						continue
					}
					parser = l.NewParser()
					parsers[f.Language] = parser
				}

				vs, err := c.checkFile(ctx, parser, filepath.Join(root, f.Path))
				if err != nil {
					log.Warn("skipped", "path", f.Path, "error", err)
					continue
				}
				log.Debug("checked", "path", f.Path, "violations", len(vs))

				indexed[idx] = FileResult{Path: f.Path, Violations: vs}
				valid[idx] = true
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var results []FileResult
	for i, v := range valid {
		if v {
			results = append(results, indexed[i])
		}
	}
	return results, nil
}

func (c *Checker) checkFile(ctx context.Context, parser *sitter.Parser, path string) ([]violation.Violation, error) {
	if c.MaxFileSize > 0 {
		if fi, err := os.Stat(path); err == nil && fi.Size() > c.MaxFileSize {
			return nil, fmt.Errorf("larger than %d bytes", c.MaxFileSize)
		}
	}

	source, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return c.CheckSource(ctx, parser, source)
}
