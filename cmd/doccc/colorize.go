package main

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// applyColorFlag honors the persistent --color flag, overriding fatih/color's
// own terminal autodetection for "on"/"off" and leaving it alone for "auto".
// Returns whether color output is ultimately enabled.
func applyColorFlag(cmd *cobra.Command) bool {
	mode, _ := cmd.Root().PersistentFlags().GetString("color")
	switch mode {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	}
	return !color.NoColor
}
