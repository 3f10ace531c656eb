// Package filewalker finds the files a directory conversion will rewrite.
package filewalker

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/kkahadze/mkhedruli-megruli/internal/parser"
)

// File is a discovered file and the format that reads it.
type File struct {
	Path   string // absolute
	Rel    string // relative to the walk root
	Format parser.Format
}

// Walker traverses a tree and keeps files some format can read. Hidden files
// and directories are never visited.
type Walker struct {
	formats []parser.Format
	exclude []string
}

// Option configures a Walker.
type Option func(*Walker)

// WithFormats replaces the built-in formats.
func WithFormats(formats ...parser.Format) Option {
	return func(w *Walker) { w.formats = formats }
}

// Exclude skips the given directories and everything below them. Converting
// into a directory nested in the input relies on this to not read back its
// own output.
func Exclude(dirs ...string) Option {
	return func(w *Walker) {
		for _, d := range dirs {
			if abs, err := filepath.Abs(d); err == nil {
				w.exclude = append(w.exclude, abs)
			}
		}
	}
}

// New creates a Walker using parser.Formats unless WithFormats says otherwise.
func New(opts ...Option) *Walker {
	w := &Walker{formats: parser.Formats()}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Walk lists the readable files under root in lexical order. It stops with
// ctx.Err() once ctx is done.
func (w *Walker) Walk(ctx context.Context, root string) ([]File, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root path: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root is not a directory: %s", root)
	}

	var files []File
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Error walking path")
			return nil
		}
		if path == root {
			return nil
		}

		hidden := strings.HasPrefix(d.Name(), ".")
		if d.IsDir() {
			if hidden || w.excluded(path) {
				return filepath.SkipDir
			}
			return nil
		}
		if hidden || !d.Type().IsRegular() {
			return nil
		}

		format, ok := parser.ForPath(w.formats, path)
		if !ok {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("relative path of %s: %w", path, err)
		}
		files = append(files, File{Path: path, Rel: rel, Format: format})
		return nil
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("walk directory: %w", err)
	}

	log.Info().Int("count", len(files)).Str("root", root).Msg("Discovered files")
	return files, nil
}

func (w *Walker) excluded(dir string) bool {
	for _, ex := range w.exclude {
		if dir == ex {
			return true
		}
	}
	return false
}
