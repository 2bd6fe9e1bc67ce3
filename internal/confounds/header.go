// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package confounds

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

const utf8BOM = "\uFEFF"

// CheckExists returns a *NotFoundError when path does not exist. Any other
// stat failure is returned wrapped.
func CheckExists(path string) error {
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return &NotFoundError{Path: path}
	}
	return fmt.Errorf("checking confound table: %w", err)
}

// ReadHeader returns the column names from the first line of a
// tab-separated confound table. Data rows are never read.
func ReadHeader(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening confound table: %w", err)
	}
	defer f.Close()

	header, err := parseHeader(f)
	if err != nil {
		if errors.Is(err, ErrEmptyHeader) {
			return nil, fmt.Errorf("%w: %s", ErrEmptyHeader, path)
		}
		var dup *DuplicateColumnError
		if errors.As(err, &dup) {
			dup.Path = path
			return nil, dup
		}
		return nil, fmt.Errorf("reading header of %s: %w", path, err)
	}
	return header, nil
}

// parseHeader reads the first line of r as tab-separated column names and
// rejects duplicate non-empty names. Nothing past the first newline is read
// from r, so an unbalanced quote cannot pull data rows into the header.
func parseHeader(r io.Reader) ([]string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	line = strings.TrimRight(line, "\r\n")
	line = strings.TrimPrefix(line, utf8BOM)
	if line == "" {
		return nil, ErrEmptyHeader
	}

	cr := csv.NewReader(strings.NewReader(line))
	cr.Comma = '\t'
	cr.FieldsPerRecord = -1
	record, err := cr.Read()
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(record))
	for _, name := range record {
		// Trailing tabs leave empty names; they never match a prefix.
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			return nil, &DuplicateColumnError{Column: name}
		}
		seen[name] = struct{}{}
	}
	return record, nil
}

// FilterColumns returns the names in header that begin with prefix, in
// header order. The result is empty, never nil, when nothing matches.
func FilterColumns(header []string, prefix string) []string {
	matched := make([]string, 0)
	for _, name := range header {
		if strings.HasPrefix(name, prefix) {
			matched = append(matched, name)
		}
	}
	return matched
}
