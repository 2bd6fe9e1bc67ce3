// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the motion-outliers CLI.
// The root command extracts motion outlier column names from one run's
// fMRIPrep confound table; subcommands report on past extractions.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/motion-outliers/internal/confounds"
	"github.com/pdiddy/motion-outliers/internal/ledger"
	"github.com/pdiddy/motion-outliers/internal/logging"
	"github.com/pdiddy/motion-outliers/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the motion-outliers CLI.
var rootCmd = &cobra.Command{
	Use:   "motion-outliers -dir <path> -subjid <id> [-task <id>] [-session <id>] [-run <id>]",
	Short: "Extract motion outlier column names from an fMRIPrep confound table",
	Long: `motion-outliers reads the header of one run's fMRIPrep confound table
(*_desc-confounds_timeseries.tsv), selects the columns whose names begin with
motion_outlier, and writes them one per line to *_motion_outliers.txt in the
same func/ directory.

Without -task the resting-state layout is assumed:
  {dir}/{subjid}/[{session}/]func/{subjid}[_{session}]_task-rest_desc-confounds_timeseries.tsv
With -task the run-aware layout is used:
  {dir}/{subjid}/[{session}/]func/{subjid}[_{session}]_task-{task}[_{run}]_desc-confounds_timeseries.tsv`,
	Args: cobra.NoArgs,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		log, err := logging.New(cmd.ErrOrStderr(), viper.GetString("log_level"))
		if err != nil {
			return err
		}
		if used := viper.ConfigFileUsed(); used != "" {
			log.Debug().Str("file", used).Msg("using config file")
		}
		cmd.SetContext(log.WithContext(cmd.Context()))
		return nil
	},
	RunE: runExtract,
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./motion-outliers.yaml or ~/.config/motion-outliers/config.yaml)")
	pf.String("log-level", types.DefaultLogLevel, "diagnostics level on stderr: debug, info, warn, error, disabled")
	pf.String("ledger", "", "SQLite ledger recording each extraction (disabled when empty)")

	f := rootCmd.Flags()
	f.String("dir", "", "path to fmriprep directory")
	f.String("subjid", "", "subject ID")
	f.String("task", "", "task ID; omit for the task-rest layout without runs")
	f.String("session", "", "session ID; if any")
	f.String("run", "", "run ID; if any (requires -task)")
	f.String("prefix", types.DefaultPrefix, "column-name prefix to extract")
	rootCmd.MarkFlagRequired("dir")
	rootCmd.MarkFlagRequired("subjid")

	bindConfig()
}

// bindConfig ties the viper keys to their flags.
func bindConfig() {
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("ledger", rootCmd.PersistentFlags().Lookup("ledger"))
	viper.BindPFlag("prefix", rootCmd.Flags().Lookup("prefix"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("motion-outliers")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "motion-outliers"))
		}
	}

	viper.SetDefault("prefix", types.DefaultPrefix)
	viper.SetDefault("log_level", types.DefaultLogLevel)
	viper.SetEnvPrefix("MOTION_OUTLIERS")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			fmt.Fprintln(rootCmd.ErrOrStderr(), "warning: reading config:", err)
		}
	}
}

// extractionConfig collects the viper-resolved settings.
func extractionConfig() types.ExtractionConfig {
	return types.ExtractionConfig{
		Prefix:     viper.GetString("prefix"),
		LedgerPath: viper.GetString("ledger"),
		LogLevel:   viper.GetString("log_level"),
	}.WithDefaults()
}

func identifiersFromFlags(cmd *cobra.Command) types.Identifiers {
	var ids types.Identifiers
	ids.Dir, _ = cmd.Flags().GetString("dir")
	ids.Subject, _ = cmd.Flags().GetString("subjid")
	ids.Task, _ = cmd.Flags().GetString("task")
	ids.Session, _ = cmd.Flags().GetString("session")
	ids.Run, _ = cmd.Flags().GetString("run")
	return ids
}

func runExtract(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	ctx := cmd.Context()

	cfg := extractionConfig()
	ids := identifiersFromFlags(cmd)

	res, err := confounds.Extract(ctx, ids, cfg, cmd.OutOrStdout())
	if err != nil {
		if errors.Is(err, confounds.ErrConfoundsNotFound) {
			// Extract already printed the diagnostic and the path.
			cmd.SilenceErrors = true
		}
		return err
	}

	if cfg.LedgerPath != "" {
		if err := recordExtraction(ctx, cfg.LedgerPath, ids, res); err != nil {
			return err
		}
	}
	return nil
}

func recordExtraction(ctx context.Context, path string, ids types.Identifiers, res confounds.Result) error {
	store, err := ledger.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	err = store.Record(ctx, ledger.Entry{
		Identifiers:   ids,
		ConfoundsPath: res.Confounds,
		OutliersPath:  res.Outliers,
		Columns:       res.Columns,
	})
	if err != nil {
		return err
	}
	zerolog.Ctx(ctx).Info().
		Str("ledger", path).
		Int("count", res.Count()).
		Msg("recorded extraction")
	return nil
}

// run executes the CLI with args and returns the process exit code.
// Invoking with no arguments prints help and fails.
func run(args []string, stdout, stderr io.Writer) int {
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	if len(args) == 0 {
		rootCmd.Help()
		return 1
	}

	rootCmd.SetArgs(normalizeArgs(rootCmd, args))
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		return 1
	}
	return 0
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
