// Package convert transliterates whole directory trees of text files.
package convert

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/kkahadze/mkhedruli-megruli/internal/filewalker"
	"github.com/kkahadze/mkhedruli-megruli/internal/interpolation"
	"github.com/kkahadze/mkhedruli-megruli/internal/parser"
	"github.com/kkahadze/mkhedruli-megruli/internal/translit"
	"github.com/kkahadze/mkhedruli-megruli/internal/worker"
)

// Options controls a directory conversion.
type Options struct {
	Direction translit.Direction
	Workers   int
	// Formats limits which files are converted; nil means parser.Formats().
	Formats []parser.Format
}

// Summary reports what a conversion did.
type Summary struct {
	Files   int
	Spans   int
	Written int
	Failed  int
}

// Text converts s in direction d, leaving placeholders, format verbs and
// URLs as they are.
func Text(tr *translit.Transliterator, s string, d translit.Direction) string {
	protected, mappings := interpolation.Protect(s)
	return interpolation.Restore(tr.Convert(protected, d), mappings)
}

// Dir converts every supported file under inputDir and writes the results
// to the same relative paths under outputDir.
func Dir(ctx context.Context, tr *translit.Transliterator, inputDir, outputDir string, opts Options) (Summary, error) {
	var sum Summary

	inputAbs, err := filepath.Abs(inputDir)
	if err != nil {
		return sum, fmt.Errorf("resolve input directory: %w", err)
	}
	outputAbs, err := filepath.Abs(outputDir)
	if err != nil {
		return sum, fmt.Errorf("resolve output directory: %w", err)
	}

	walkOpts := []filewalker.Option{filewalker.Exclude(outputAbs)}
	if opts.Formats != nil {
		walkOpts = append(walkOpts, filewalker.WithFormats(opts.Formats...))
	}
	files, err := filewalker.New(walkOpts...).Walk(ctx, inputAbs)
	if err != nil {
		return sum, fmt.Errorf("walk input directory: %w", err)
	}
	sum.Files = len(files)

	if err := os.MkdirAll(outputAbs, 0o755); err != nil {
		return sum, fmt.Errorf("create output directory: %w", err)
	}

	parsePool := worker.NewPool[filewalker.File, *parser.Document](opts.Workers,
		func(_ context.Context, f filewalker.File) (*parser.Document, error) {
			return f.Format.Parse(f.Path)
		},
	)
	docs := parsePool.Execute(ctx, files)

	// Identical spans convert identically, so each is converted once.
	seen := make(map[string]struct{})
	var spans []string
	for _, d := range docs {
		if d.Err != nil || d.Result == nil {
			continue
		}
		for _, text := range d.Result.Texts() {
			if _, ok := seen[text]; ok {
				continue
			}
			seen[text] = struct{}{}
			spans = append(spans, text)
		}
	}
	sum.Spans = len(spans)

	log.Info().
		Int("files", len(files)).
		Int("unique_spans", len(spans)).
		Str("direction", opts.Direction.String()).
		Msg("Conversion plan")

	convertPool := worker.NewPool[string, string](opts.Workers,
		func(_ context.Context, s string) (string, error) {
			return Text(tr, s, opts.Direction), nil
		},
	)
	converted := make(map[string]string, len(spans))
	for _, task := range convertPool.Execute(ctx, spans) {
		if task.Err == nil {
			converted[task.Input] = task.Result
		}
	}

	if err := ctx.Err(); err != nil {
		return sum, err
	}

	written := make([]bool, len(docs))

	var g errgroup.Group
	g.SetLimit(max(opts.Workers, 1))
	for i, d := range docs {
		if d.Err != nil || d.Result == nil {
			log.Error().Err(d.Err).Str("file", d.Input.Path).Msg("Parse failed")
			continue
		}
		i, d := i, d
		g.Go(func() error {
			if err := writeFile(d.Input, d.Result, converted, outputAbs); err != nil {
				log.Error().Err(err).Str("file", d.Input.Path).Msg("Write failed")
				return nil
			}
			written[i] = true
			return nil
		})
	}
	_ = g.Wait()

	for _, ok := range written {
		if ok {
			sum.Written++
		}
	}
	sum.Failed = sum.Files - sum.Written

	log.Info().
		Int("files", sum.Files).
		Int("written", sum.Written).
		Int("failed", sum.Failed).
		Str("output", outputAbs).
		Msg("Conversion complete")

	return sum, nil
}

func writeFile(f filewalker.File, doc *parser.Document, converted map[string]string, outputAbs string) error {
	outPath := filepath.Join(outputAbs, f.Rel)
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if err := os.WriteFile(outPath, f.Format.Render(doc, converted), 0o644); err != nil {
		return fmt.Errorf("write output file: %w", err)
	}

	log.Debug().
		Str("input", f.Path).
		Str("output", outPath).
		Int("spans", len(doc.Spans)).
		Msg("File converted")
	return nil
}
