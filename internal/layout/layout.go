// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package layout resolves confound table and outlier list paths from a set
// of BIDS-style identifiers, following the fMRIPrep derivatives naming
// convention:
//
//	{dir}/{subject}/[{session}/]func/{stem}_desc-confounds_timeseries.tsv
//	{dir}/{subject}/[{session}/]func/{stem}_motion_outliers.txt
package layout

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pdiddy/motion-outliers/pkg/types"
)

const (
	funcDir = "func"

	confoundsSuffix = "_desc-confounds_timeseries.tsv"
	outliersSuffix  = "_motion_outliers.txt"

	// restTask is the implicit task of the task-less layout. It appears in
	// the confound file name but not in the outlier list name.
	restTask = "rest"
)

var (
	// ErrMissingIdentifier is returned when Dir or Subject is empty.
	ErrMissingIdentifier = errors.New("missing required identifier")

	// ErrRunWithoutTask is returned when a run is given without a task.
	// The task-less layout has no run dimension.
	ErrRunWithoutTask = errors.New("run requires a task")
)

// Paths holds the resolved locations for one run.
type Paths struct {
	// Dir is the func/ directory that holds both files.
	Dir string `json:"dir" yaml:"dir"`

	// Stem is the shared file-name prefix of the outlier list.
	Stem string `json:"stem" yaml:"stem"`

	// Confounds is the confound table to read.
	Confounds string `json:"confounds" yaml:"confounds"`

	// Outliers is the text file the matched column names are written to.
	Outliers string `json:"outliers" yaml:"outliers"`
}

// presence is a bitmask over the optional identifiers.
type presence uint8

const (
	hasSession presence = 1 << iota
	hasTask
	hasRun
)

// template builds the two file names for one combination of optional
// identifiers. in and out return the confound stem and the outlier stem.
type template struct {
	in  func(id types.Identifiers) string
	out func(id types.Identifiers) string
}

// templates maps every valid presence combination to its naming template.
// Run without task has no entry and is rejected by Resolve.
var templates = map[presence]template{
	0: {
		in:  func(id types.Identifiers) string { return join(id.Subject, "task-"+restTask) },
		out: func(id types.Identifiers) string { return id.Subject },
	},
	hasSession: {
		in:  func(id types.Identifiers) string { return join(id.Subject, id.Session, "task-"+restTask) },
		out: func(id types.Identifiers) string { return join(id.Subject, id.Session) },
	},
	hasTask: {
		in:  taskStem,
		out: taskStem,
	},
	hasTask | hasSession: {
		in:  taskStem,
		out: taskStem,
	},
	hasTask | hasRun: {
		in:  taskStem,
		out: taskStem,
	},
	hasTask | hasSession | hasRun: {
		in:  taskStem,
		out: taskStem,
	},
}

// taskStem builds {subject}[_{session}]_task-{task}[_{run}].
func taskStem(id types.Identifiers) string {
	parts := []string{id.Subject}
	if id.HasSession() {
		parts = append(parts, id.Session)
	}
	parts = append(parts, "task-"+id.Task)
	if id.HasRun() {
		parts = append(parts, id.Run)
	}
	return join(parts...)
}

func join(parts ...string) string {
	return strings.Join(parts, "_")
}

func presenceOf(id types.Identifiers) presence {
	var p presence
	if id.HasSession() {
		p |= hasSession
	}
	if id.HasTask() {
		p |= hasTask
	}
	if id.HasRun() {
		p |= hasRun
	}
	return p
}

// Resolve computes the confound table and outlier list paths for id.
// It does not touch the filesystem.
func Resolve(id types.Identifiers) (Paths, error) {
	if id.Dir == "" {
		return Paths{}, fmt.Errorf("%w: dir", ErrMissingIdentifier)
	}
	if id.Subject == "" {
		return Paths{}, fmt.Errorf("%w: subject", ErrMissingIdentifier)
	}

	tmpl, ok := templates[presenceOf(id)]
	if !ok {
		return Paths{}, fmt.Errorf("%w: run %q", ErrRunWithoutTask, id.Run)
	}

	dir := filepath.Join(id.Dir, id.Subject)
	if id.HasSession() {
		dir = filepath.Join(dir, id.Session)
	}
	dir = filepath.Join(dir, funcDir)

	stem := tmpl.out(id)
	return Paths{
		Dir:       dir,
		Stem:      stem,
		Confounds: filepath.Join(dir, tmpl.in(id)+confoundsSuffix),
		Outliers:  filepath.Join(dir, stem+outliersSuffix),
	}, nil
}
