package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"doccc/internal/diag"
	"doccc/internal/diagfmt"
	"doccc/internal/version"
)

var (
	diagnoseFormat string
	diagnoseNotes  bool
	diagnoseFixes  bool
)

func init() {
	diagnoseCmd.Flags().StringVar(&diagnoseFormat, "format", "pretty", "output format (pretty|short|json|sarif)")
	diagnoseCmd.Flags().BoolVar(&diagnoseNotes, "notes", true, "include diagnostic notes")
	diagnoseCmd.Flags().BoolVar(&diagnoseFixes, "fixes", true, "include quick-fix suggestions")
}

var diagnoseCmd = &cobra.Command{
	Use:   "diagnose <catalog.docc>",
	Short: "Assemble a catalog and report every diagnostic raised along the way",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := args[0]
		maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
		if err != nil {
			return err
		}

		p, err := buildPipeline(cmd.Context(), root, maxDiagnostics)
		if err != nil {
			return fmt.Errorf("doccc: %w", err)
		}

		p.bag.Sort()
		p.bag.Dedup()

		format := strings.ToLower(diagnoseFormat)
		switch format {
		case "pretty":
			colorOn := applyColorFlag(cmd)
			diagfmt.Pretty(cmd.OutOrStdout(), p.bag, p.fs, diagfmt.PrettyOpts{
				Color:     colorOn,
				Context:   1,
				PathMode:  diagfmt.PathModeAuto,
				ShowNotes: diagnoseNotes,
				ShowFixes: diagnoseFixes,
			})
		case "short":
			fmt.Fprintln(cmd.OutOrStdout(), diag.FormatShortDiagnostics(p.bag.Items(), p.fs, diagnoseNotes))
		case "json":
			if err := diagfmt.JSON(cmd.OutOrStdout(), p.bag, p.fs, diagfmt.JSONOpts{
				IncludePositions: true,
				PathMode:         diagfmt.PathModeRelative,
				IncludeNotes:     diagnoseNotes,
				IncludeFixes:     diagnoseFixes,
			}); err != nil {
				return err
			}
		case "sarif":
			meta := diagfmt.SarifRunMeta{
				ToolName:       "doccc",
				ToolVersion:    version.Version,
				InvocationArgs: append([]string{root}, args[1:]...),
			}
			if err := diagfmt.Sarif(cmd.OutOrStdout(), p.bag, p.fs, meta); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unsupported format %q (must be pretty, short, json, or sarif)", diagnoseFormat)
		}

		if p.bag.HasErrors() {
			os.Exit(1)
		}
		return nil
	},
}
