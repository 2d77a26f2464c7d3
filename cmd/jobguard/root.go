package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for jobguard.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobguard",
		Short: "Highlight scam phrases in job postings",
		Long: `jobguard checks job postings for signs of employment scams.

It extracts the posting text, asks a classifier service for a trust score
and the suspicious phrases it found, and marks those phrases in the page
with a colour for their risk level. Results are kept in a local history
database so earlier checks can be reviewed later.

The classifier is reached at http://localhost:8000 unless --api-url or
the configuration file says otherwise.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	cmd.AddCommand(NewScanCmd())
	cmd.AddCommand(NewHighlightCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewReportCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
