// Command bonedriver bakes blendshape clips into bone pose tracks and inspects
// the driver's setup documents.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"bonedriver/internal/logging"
)

// app carries the state shared by every subcommand.
type app struct {
	verbose bool
	logJSON bool
	logger  *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{logger: zap.NewNop()}

	root := &cobra.Command{
		Use:   "bonedriver",
		Short: "Drive facial bones and blendshapes from expression weights",
		Long: `bonedriver evaluates a character's expression glossary and constraint
table against blendshape weight clips.

It amplifies viseme weights, propagates constraint blendshapes, poses the
glossary bones and mirrors the base weights onto every face part, then writes
the resulting bone poses per frame.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := "info"
			if a.verbose {
				level = "debug"
			}
			logger, err := logging.New(level, a.logJSON)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			a.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
	}
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")
	root.PersistentFlags().BoolVar(&a.logJSON, "log-json", false, "Log as JSON instead of console text")

	root.AddCommand(newBakeCmd(a), newInspectCmd(a), newCurveCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
