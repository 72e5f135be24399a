package vault

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/nibzard/obsidian-tasks/internal/frontmatter"
	"github.com/nibzard/obsidian-tasks/internal/task"
)

// Skipped records a note or directory that did not produce a task.
type Skipped struct {
	Path string
	Err  error
}

// Result is the outcome of one scan.
type Result struct {
	Tasks   []task.Task
	Skipped []Skipped
	// Scanned counts note files visited, with or without frontmatter.
	Scanned int
	// Plain counts notes without a frontmatter block.
	Plain int
}

// Collector runs the walk, extract and parse steps and folds the outcome of
// each note into a Result.
type Collector struct {
	walker *Walker
	parser *task.Parser
	logger *log.Logger
}

// NewCollector wires a walker, parser and logger together. A nil logger
// discards diagnostics.
func NewCollector(walker *Walker, parser *task.Parser, logger *log.Logger) *Collector {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Collector{walker: walker, parser: parser, logger: logger}
}

// Collect scans root and then every extra root that exists. A missing or
// unreadable root is fatal; problems with extra roots and with individual
// notes are logged and recorded in Result.Skipped. Notes reached twice by
// different roots yield one task.
func (c *Collector) Collect(ctx context.Context, root string, extraRoots ...string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	seq, err := c.walker.Walk(root)
	if err != nil {
		return nil, err
	}

	res := &Result{Tasks: []task.Task{}}
	seen := make(map[string]bool)
	if err := c.fold(ctx, seq, res, seen); err != nil {
		return nil, err
	}

	for _, extra := range extraRoots {
		if extra == "" || sameDir(root, extra) {
			continue
		}
		extraSeq, err := c.walker.Walk(extra)
		if err != nil {
			if errors.Is(err, ErrPathNotFound) {
				c.logger.Debug("extra root not present", "path", extra)
				continue
			}
			c.logger.Warn("skipping extra root", "path", extra, "err", err)
			res.Skipped = append(res.Skipped, Skipped{Path: extra, Err: err})
			continue
		}
		if err := c.fold(ctx, extraSeq, res, seen); err != nil {
			return nil, err
		}
	}

	c.logger.Debug("scan complete",
		"root", root,
		"scanned", res.Scanned,
		"tasks", len(res.Tasks),
		"plain", res.Plain,
		"skipped", len(res.Skipped),
	)
	return res, nil
}

func (c *Collector) fold(ctx context.Context, seq iter.Seq2[string, error], res *Result, seen map[string]bool) error {
	for path, walkErr := range seq {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			var we *WalkError
			skipPath := path
			if errors.As(walkErr, &we) {
				skipPath = we.Path
			}
			c.logger.Warn("skipping unreadable entry", "path", skipPath, "err", walkErr)
			res.Skipped = append(res.Skipped, Skipped{Path: skipPath, Err: walkErr})
			continue
		}

		key := identity(path)
		if seen[key] {
			continue
		}
		seen[key] = true
		res.Scanned++

		t, found, err := c.load(path)
		switch {
		case err != nil:
			c.logger.Warn("skipping note", "path", path, "err", err)
			res.Skipped = append(res.Skipped, Skipped{Path: path, Err: err})
		case !found:
			c.logger.Debug("no frontmatter", "path", path)
			res.Plain++
		default:
			res.Tasks = append(res.Tasks, *t)
		}
	}
	return nil
}

// load reads one note. found is false for notes without frontmatter.
func (c *Collector) load(path string) (*task.Task, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, true, fmt.Errorf("read note: %w", err)
	}
	block, found, err := frontmatter.Extract(string(data))
	if !found {
		return nil, false, nil
	}
	if err != nil {
		return nil, true, err
	}
	t, err := c.parser.Parse(block, path)
	if err != nil {
		return nil, true, err
	}
	return t, true, nil
}

// identity is the key used to de-duplicate notes reached more than once.
func identity(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

func sameDir(a, b string) bool {
	return identity(a) == identity(b)
}
