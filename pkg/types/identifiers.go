// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Identifiers locates one run's confound table inside an fMRIPrep
// derivatives tree. All values are opaque strings; only presence matters.
type Identifiers struct {
	// Dir is the fMRIPrep output root (e.g. "derivatives/fmriprep").
	Dir string `json:"dir" yaml:"dir"`

	// Subject is the subject label including its entity prefix (e.g. "sub-01").
	Subject string `json:"subject" yaml:"subject"`

	// Session is the optional session label (e.g. "ses-1").
	Session string `json:"session,omitempty" yaml:"session,omitempty"`

	// Task is the task name without the "task-" prefix (e.g. "rest").
	// When empty the resting-state layout without a task dimension is used.
	Task string `json:"task,omitempty" yaml:"task,omitempty"`

	// Run is the optional run label (e.g. "run-1"). Requires Task.
	Run string `json:"run,omitempty" yaml:"run,omitempty"`
}

// HasSession reports whether a session label was given.
func (id Identifiers) HasSession() bool { return id.Session != "" }

// HasTask reports whether a task name was given.
func (id Identifiers) HasTask() bool { return id.Task != "" }

// HasRun reports whether a run label was given.
func (id Identifiers) HasRun() bool { return id.Run != "" }
