// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package confounds extracts motion outlier column names from fMRIPrep
// confound tables. Only the header line of a table is parsed; the matched
// names are written one per line to a sibling text file.
package confounds

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/pdiddy/motion-outliers/internal/layout"
	"github.com/pdiddy/motion-outliers/pkg/types"
)

const (
	// MsgNotFound is printed, followed by the attempted path, when the
	// confound table is missing.
	MsgNotFound = "cannot find confound tsv file"

	// MsgExtracted is printed after the outlier list has been written.
	MsgExtracted = "extracted motion outlier columns to txt file"
)

// Result holds the outcome of one extraction.
type Result struct {
	layout.Paths `yaml:",inline"`

	// Columns are the matched column names in header order.
	Columns []string `json:"columns" yaml:"columns"`
}

// Count returns the number of matched columns.
func (r Result) Count() int {
	return len(r.Columns)
}

// Extract resolves the confound table for ids, reads its header, and
// writes the columns beginning with cfg.Prefix to the outlier list.
// User-facing messages go to w; diagnostics go to the zerolog logger
// attached to ctx.
//
// When the confound table is missing Extract prints MsgNotFound and the
// path to w, creates no output, and returns a *NotFoundError.
func Extract(ctx context.Context, ids types.Identifiers, cfg types.ExtractionConfig, w io.Writer) (Result, error) {
	log := zerolog.Ctx(ctx)
	cfg = cfg.WithDefaults()

	paths, err := layout.Resolve(ids)
	if err != nil {
		return Result{}, err
	}
	log.Debug().
		Str("confounds", paths.Confounds).
		Str("outliers", paths.Outliers).
		Msg("resolved paths")

	if err := CheckExists(paths.Confounds); err != nil {
		var nf *NotFoundError
		if errors.As(err, &nf) {
			fmt.Fprintln(w, MsgNotFound)
			fmt.Fprintln(w, paths.Confounds)
		}
		return Result{Paths: paths}, err
	}

	header, err := ReadHeader(paths.Confounds)
	if err != nil {
		return Result{Paths: paths}, err
	}
	cols := FilterColumns(header, cfg.Prefix)
	log.Info().
		Int("header_columns", len(header)).
		Int("matched", len(cols)).
		Str("prefix", cfg.Prefix).
		Msg("filtered header")

	if err := ctx.Err(); err != nil {
		return Result{Paths: paths}, err
	}

	if err := WriteList(paths.Outliers, cols); err != nil {
		return Result{Paths: paths}, err
	}
	fmt.Fprintln(w, MsgExtracted)

	return Result{Paths: paths, Columns: cols}, nil
}
