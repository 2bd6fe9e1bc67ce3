// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/motion-outliers/internal/confounds"
	"github.com/pdiddy/motion-outliers/internal/ledger"
)

// resetCommands restores every flag to its default and rebinds viper so
// each test starts from a fresh CLI state.
func resetCommands(t *testing.T) {
	t.Helper()
	var reset func(c *cobra.Command)
	reset = func(c *cobra.Command) {
		for _, fs := range []*pflag.FlagSet{c.Flags(), c.PersistentFlags()} {
			fs.VisitAll(func(f *pflag.Flag) {
				require.NoError(t, f.Value.Set(f.DefValue))
				f.Changed = false
			})
		}
		c.SilenceErrors = false
		c.SilenceUsage = false
		for _, sub := range c.Commands() {
			reset(sub)
		}
	}
	reset(rootCmd)
	viper.Reset()
	bindConfig()
}

// execute runs the CLI and returns the exit code with captured output.
func execute(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	resetCommands(t)
	var out, errOut bytes.Buffer
	code = run(args, &out, &errOut)
	return code, out.String(), errOut.String()
}

// writeConfounds creates a confound table with the given header under root.
func writeConfounds(t *testing.T, root, rel string, header ...string) string {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	content := strings.Join(header, "\t") + "\n" + strings.Repeat("0\t", len(header)-1) + "0\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRun_NoArguments(t *testing.T) {
	code, stdout, _ := execute(t)
	assert.Equal(t, 1, code)
	assert.Contains(t, stdout, "Usage:")
	assert.Contains(t, stdout, "-subjid")
}

func TestRun_SessionAndRun(t *testing.T) {
	root := t.TempDir()
	writeConfounds(t, root, "sub-01/ses-1/func/sub-01_ses-1_task-rest_run-1_desc-confounds_timeseries.tsv",
		"trans_x", "motion_outlier00", "rot_z", "motion_outlier01")

	code, stdout, stderr := execute(t,
		"-dir", root, "-subjid", "sub-01", "-task", "rest", "-session", "ses-1", "-run", "run-1")
	require.Equal(t, 0, code, "stderr: %s", stderr)
	assert.Equal(t, confounds.MsgExtracted+"\n", stdout)

	data, err := os.ReadFile(filepath.Join(root, "sub-01", "ses-1", "func", "sub-01_ses-1_task-rest_run-1_motion_outliers.txt"))
	require.NoError(t, err)
	assert.Equal(t, "motion_outlier00\nmotion_outlier01\n", string(data))
}

func TestRun_TaskLessLayout(t *testing.T) {
	root := t.TempDir()
	writeConfounds(t, root, "sub-02/func/sub-02_task-rest_desc-confounds_timeseries.tsv",
		"motion_outlier00", "csf")

	code, _, stderr := execute(t, "--dir", root, "--subjid", "sub-02")
	require.Equal(t, 0, code, "stderr: %s", stderr)

	_, err := os.Stat(filepath.Join(root, "sub-02", "func", "sub-02_motion_outliers.txt"))
	assert.NoError(t, err)
}

func TestRun_MissingConfounds(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sub-03", "func"), 0o755))

	code, stdout, stderr := execute(t, "-dir", root, "-subjid", "sub-03", "-task", "rest")
	assert.Equal(t, 1, code)

	want := filepath.Join(root, "sub-03", "func", "sub-03_task-rest_desc-confounds_timeseries.tsv")
	assert.Equal(t, confounds.MsgNotFound+"\n"+want+"\n", stdout)
	assert.NotContains(t, stderr, "Error:")

	_, err := os.Stat(filepath.Join(root, "sub-03", "func", "sub-03_task-rest_motion_outliers.txt"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestRun_InvalidArguments(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"missing subjid", []string{"-dir", "/data"}, `required flag(s) "subjid" not set`},
		{"missing dir", []string{"-subjid", "sub-01"}, `required flag(s) "dir" not set`},
		{"unknown flag", []string{"-dir", "/data", "-subjid", "sub-01", "--bogus"}, "unknown flag"},
		{"positional argument", []string{"-dir", "/data", "-subjid", "sub-01", "extra"}, "unknown command"},
		{"run without task", []string{"-dir", "/data", "-subjid", "sub-01", "-run", "run-1"}, "run requires a task"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := execute(t, tt.args...)
			assert.Equal(t, 1, code)
			assert.Contains(t, stderr, tt.wantErr)
		})
	}
}

func TestRun_PrefixFromConfigFile(t *testing.T) {
	root := t.TempDir()
	writeConfounds(t, root, "sub-04/func/sub-04_task-rest_desc-confounds_timeseries.tsv",
		"motion_outlier00", "non_steady_state_outlier00")

	cfgPath := filepath.Join(t.TempDir(), "motion-outliers.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("prefix: non_steady_state_outlier\n"), 0o644))

	code, _, stderr := execute(t, "--config", cfgPath, "-dir", root, "-subjid", "sub-04", "-task", "rest")
	require.Equal(t, 0, code, "stderr: %s", stderr)

	data, err := os.ReadFile(filepath.Join(root, "sub-04", "func", "sub-04_task-rest_motion_outliers.txt"))
	require.NoError(t, err)
	assert.Equal(t, "non_steady_state_outlier00\n", string(data))
}

func TestRun_LedgerRecordListExport(t *testing.T) {
	root := t.TempDir()
	dbPath := filepath.Join(t.TempDir(), "ledger.db")
	writeConfounds(t, root, "sub-01/func/sub-01_task-rest_run-1_desc-confounds_timeseries.tsv",
		"motion_outlier00", "motion_outlier01", "trans_x")
	writeConfounds(t, root, "sub-01/func/sub-01_task-rest_run-2_desc-confounds_timeseries.tsv",
		"trans_x")

	for _, run := range []string{"run-1", "run-2"} {
		code, _, stderr := execute(t, "-ledger", dbPath, "-dir", root, "-subjid", "sub-01", "-task", "rest", "-run", run)
		require.Equal(t, 0, code, "stderr: %s", stderr)
	}

	code, stdout, stderr := execute(t, "ledger", "list", "--ledger", dbPath)
	require.Equal(t, 0, code, "stderr: %s", stderr)
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 4, "header, rule, two entries")
	assert.Contains(t, lines[2], "run-1")
	assert.Regexp(t, `\s2\s`, lines[2])
	assert.Contains(t, lines[3], "run-2")
	assert.Regexp(t, `\s0\s`, lines[3])

	code, stdout, stderr = execute(t, "ledger", "export", "-ledger", dbPath, "-subject", "sub-01")
	require.Equal(t, 0, code, "stderr: %s", stderr)
	var entries []ledger.Entry
	require.NoError(t, yaml.Unmarshal([]byte(stdout), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, []string{"motion_outlier00", "motion_outlier01"}, entries[0].Columns)
}

func TestRun_LedgerWithoutDatabase(t *testing.T) {
	code, _, stderr := execute(t, "ledger", "list")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "no ledger configured")

	code, _, stderr = execute(t, "ledger", "list", "--ledger", filepath.Join(t.TempDir(), "absent.db"))
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "opening ledger")
}

func TestRun_SingleDashHelp(t *testing.T) {
	code, stdout, stderr := execute(t, "-help")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "Usage:")
	assert.NotContains(t, stderr, "unknown shorthand flag")
}

func TestRun_Version(t *testing.T) {
	code, stdout, _ := execute(t, "version")
	assert.Equal(t, 0, code)
	assert.Equal(t, "motion-outliers dev\n", stdout)
}

func TestNormalizeArgs(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "single-dash long flags",
			in:   []string{"-dir", "/data", "-subjid", "sub-01"},
			want: []string{"--dir", "/data", "--subjid", "sub-01"},
		},
		{
			name: "inline value",
			in:   []string{"-session=ses-1"},
			want: []string{"--session=ses-1"},
		},
		{
			name: "double dash untouched",
			in:   []string{"--task", "rest"},
			want: []string{"--task", "rest"},
		},
		{
			name: "shorthand untouched",
			in:   []string{"-h"},
			want: []string{"-h"},
		},
		{
			name: "help flag",
			in:   []string{"-help"},
			want: []string{"--help"},
		},
		{
			name: "unknown name untouched",
			in:   []string{"-bogus"},
			want: []string{"-bogus"},
		},
		{
			name: "persistent and subcommand flags",
			in:   []string{"ledger", "export", "-ledger", "x.db", "-out", "y.yaml"},
			want: []string{"ledger", "export", "--ledger", "x.db", "--out", "y.yaml"},
		},
		{
			name: "stops at terminator",
			in:   []string{"-dir", "/data", "--", "-task"},
			want: []string{"--dir", "/data", "--", "-task"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeArgs(rootCmd, tt.in))
		})
	}
}
