package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"bonedriver/internal/viseme"
)

func newCurveCmd() *cobra.Command {
	var power, scale, step float64
	cmd := &cobra.Command{
		Use:   "curve",
		Short: "Print the viseme amplification curve",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !viseme.ValidPower(power) {
				return fmt.Errorf("power %g outside [%g, %g]", power, viseme.MinPower, viseme.MaxPower)
			}
			if !viseme.ValidScale(scale) {
				return fmt.Errorf("scale %g outside [%g, %g]", scale, viseme.MinScale, viseme.MaxScale)
			}
			if step <= 0 {
				return fmt.Errorf("step must be positive")
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "power=%g scale=%g\n", power, scale)
			for x := 0.0; x <= 100+1e-9; x += step {
				fmt.Fprintf(w, "%6.1f -> %7.2f\n", x, viseme.Amplify(x, power, scale))
			}
			return nil
		},
	}
	cmd.Flags().Float64Var(&power, "power", 1, "Curve power")
	cmd.Flags().Float64Var(&scale, "scale", 1, "Curve scale")
	cmd.Flags().Float64Var(&step, "step", 10, "Weight step")
	return cmd
}
