package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"basegraph.app/assist/internal/assistant"
)

var featuresCmd = &cobra.Command{
	Use:   "features",
	Short: "List the supported assistant features",
	Run: func(cmd *cobra.Command, args []string) {
		bold := color.New(color.Bold)
		for _, f := range assistant.Catalog() {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s - %s\n", bold.Sprintf("%-12s", f.ID), f.Title, f.Description)
		}
	},
}
