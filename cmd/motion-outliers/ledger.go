// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/motion-outliers/internal/ledger"
)

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Review recorded extractions (list, export)",
	Long: `Ledger reads the SQLite database that extractions are recorded in when
--ledger (or the "ledger" config key) is set. Each entry holds the run
identifiers, the confound table and outlier list paths, and the matched
motion outlier columns.`,
}

// --- list subcommand ---

var ledgerListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print recorded extractions with their outlier counts",
	Args:  cobra.NoArgs,
	RunE:  runLedgerList,
}

func runLedgerList(cmd *cobra.Command, args []string) error {
	store, err := openLedger()
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.List(cmd.Context(), ledgerFilterFromFlags(cmd))
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if len(entries) == 0 {
		fmt.Fprintln(w, "No extractions recorded.")
		return nil
	}

	fmt.Fprintf(w, "%-12s  %-10s  %-12s  %-8s  %5s  %s\n",
		"Subject", "Session", "Task", "Run", "Count", "Outliers")
	fmt.Fprintln(w, strings.Repeat("-", 90))
	for _, e := range entries {
		fmt.Fprintf(w, "%-12s  %-10s  %-12s  %-8s  %5d  %s\n",
			e.Subject, dash(e.Session), dash(e.Task), dash(e.Run), e.Count, e.OutliersPath)
	}
	return nil
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// --- export subcommand ---

var ledgerExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export recorded extractions as YAML",
	Args:  cobra.NoArgs,
	RunE:  runLedgerExport,
}

func runLedgerExport(cmd *cobra.Command, args []string) error {
	store, err := openLedger()
	if err != nil {
		return err
	}
	defer store.Close()

	outPath, _ := cmd.Flags().GetString("out")
	if outPath == "" {
		return store.ExportYAML(cmd.Context(), cmd.OutOrStdout(), ledgerFilterFromFlags(cmd))
	}

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("creating export file: %w", err)
	}
	if err := store.ExportYAML(cmd.Context(), f, ledgerFilterFromFlags(cmd)); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing export file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "exported ledger to %s\n", outPath)
	return nil
}

// --- shared ---

func openLedger() (*ledger.Store, error) {
	path := viper.GetString("ledger")
	if path == "" {
		return nil, fmt.Errorf("no ledger configured: pass --ledger or set ledger in the config file")
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("opening ledger %s: %w", path, err)
	}
	return ledger.Open(path)
}

func ledgerFilterFromFlags(cmd *cobra.Command) ledger.Filter {
	subject, _ := cmd.Flags().GetString("subject")
	task, _ := cmd.Flags().GetString("task")
	return ledger.Filter{Subject: subject, Task: task}
}

func init() {
	for _, c := range []*cobra.Command{ledgerListCmd, ledgerExportCmd} {
		c.Flags().String("subject", "", "filter by subject ID")
		c.Flags().String("task", "", "filter by task ID")
	}
	ledgerExportCmd.Flags().String("out", "", "write YAML to this file instead of stdout")

	ledgerCmd.AddCommand(ledgerListCmd)
	ledgerCmd.AddCommand(ledgerExportCmd)
	rootCmd.AddCommand(ledgerCmd)
}
