package main

import (
	"fmt"
	"os"
	"sync/atomic"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"doccc/internal/convert"
	"doccc/internal/diagfmt"
)

var convertJobs int

func init() {
	convertCmd.Flags().IntVar(&convertJobs, "jobs", 0, "concurrent render workers (0 = one per page)")
}

var convertCmd = &cobra.Command{
	Use:   "convert <catalog.docc>",
	Short: "Assemble and curate a catalog, then run the conversion driver over every page",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := args[0]
		maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
		if err != nil {
			return err
		}
		quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
		if err != nil {
			return err
		}
		colorOn := applyColorFlag(cmd)

		p, err := buildPipeline(cmd.Context(), root, maxDiagnostics)
		if err != nil {
			return fmt.Errorf("doccc: %w", err)
		}

		rc := p.renderContext()
		pages := p.pageInputs()

		registrationOK := &atomic.Bool{}
		registrationOK.Store(true)
		driver := convert.NewDriver(p.bag, registrationOK, convertJobs)

		consumer := newSummaryConsumer()
		driver.Run(cmd.Context(), rc, pages, nil, consumer)

		p.bag.Sort()
		p.bag.Dedup()

		if !quiet {
			printConvertSummary(consumer, p.catalogID, colorOn)
		}
		if p.bag.Len() > 0 {
			diagfmt.Pretty(cmd.OutOrStdout(), p.bag, p.fs, diagfmt.PrettyOpts{
				Color:     colorOn,
				Context:   1,
				PathMode:  diagfmt.PathModeAuto,
				ShowNotes: true,
				ShowFixes: true,
			})
		}

		if p.bag.HasErrors() {
			os.Exit(1)
		}
		return nil
	},
}

func printConvertSummary(c *summaryConsumer, catalogID string, colorOn bool) {
	title := color.New(color.FgGreen, color.Bold)
	label := color.New(color.FgWhite)
	if !colorOn {
		title.DisableColor()
		label.DisableColor()
	}

	title.Printf("%s converted\n", catalogID)
	label.Printf("  pages:      %d (%d external)\n", c.pageCount, c.externalCount)
	label.Printf("  links:      %d\n", c.linkCount)
	label.Printf("  indexed:    %d\n", c.indexingCount)
	label.Printf("  assets:     %d\n", c.assetCount)
	label.Printf("  documented: %d / %d\n", c.documented, c.documented+c.undocumented)
}
