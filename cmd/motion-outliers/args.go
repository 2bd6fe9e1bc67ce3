// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// normalizeArgs rewrites single-dash long flags (-dir, -subjid=sub-01) into
// the double-dash form pflag expects. Only names that match a flag on root
// or one of its subcommands, or cobra's help flag (added only at execution),
// are rewritten; everything after "--" is left untouched.
func normalizeArgs(root *cobra.Command, args []string) []string {
	out := make([]string, 0, len(args))
	for i, a := range args {
		if a == "--" {
			return append(out, args[i:]...)
		}
		if isSingleDashLong(a) {
			name, _, _ := strings.Cut(a[1:], "=")
			if name == helpFlag || lookupFlag(root, name) != nil {
				a = "-" + a
			}
		}
		out = append(out, a)
	}
	return out
}

const helpFlag = "help"

func isSingleDashLong(a string) bool {
	return len(a) > 2 && a[0] == '-' && a[1] != '-'
}

// lookupFlag searches root and its subcommands for a flag called name.
func lookupFlag(root *cobra.Command, name string) *pflag.Flag {
	if f := root.Flags().Lookup(name); f != nil {
		return f
	}
	if f := root.PersistentFlags().Lookup(name); f != nil {
		return f
	}
	for _, c := range root.Commands() {
		if f := lookupFlag(c, name); f != nil {
			return f
		}
	}
	return nil
}
