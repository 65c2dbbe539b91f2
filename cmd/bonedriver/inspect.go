package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"bonedriver/internal/blendshape"
	"bonedriver/internal/constraint"
	"bonedriver/internal/glossary"
	"bonedriver/internal/rig"
)

type inspectFlags struct {
	glossary    string
	constraints string
	rig         string
}

func newInspectCmd(a *app) *cobra.Command {
	var f inspectFlags
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Summarize a glossary and constraint table",
		Long: `Prints the bones and expressions of a glossary and the constraints of a
constraint table. With --rig, named constraints are resolved against the body
mesh and out-of-range entries are reported.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.glossary == "" && f.constraints == "" {
				return fmt.Errorf("nothing to inspect: pass --glossary and/or --constraints")
			}
			return runInspect(cmd.OutOrStdout(), a.logger, f)
		},
	}
	cmd.Flags().StringVarP(&f.glossary, "glossary", "g", "", "Expression glossary (JSON or YAML)")
	cmd.Flags().StringVar(&f.constraints, "constraints", "", "Constraint table (JSON or YAML)")
	cmd.Flags().StringVar(&f.rig, "rig", "", "Rig description used to resolve shape names")
	return cmd
}

func runInspect(w io.Writer, logger *zap.Logger, f inspectFlags) error {
	var body blendshape.Mesh
	if f.rig != "" {
		ch, err := rig.Load(f.rig)
		if err != nil {
			return err
		}
		if b := ch.Body(); b != nil {
			body = b
		} else {
			logger.Warn("rig has no body mesh", zap.String("body", ch.BodyName))
		}
	}

	if f.glossary != "" {
		g, err := glossary.Load(f.glossary)
		if err != nil {
			return err
		}
		printGlossary(w, g, body)
	}

	if f.constraints != "" {
		list, err := constraint.Load(f.constraints, blendshape.Lookup(body))
		if err != nil {
			return err
		}
		if body != nil {
			ok, rejected := constraint.Validate(list, body.BlendShapeCount())
			for _, c := range rejected {
				logger.Warn("constraint index out of range", zap.Stringer("constraint", c))
			}
			list = ok
		}
		printConstraints(w, list, body)
	}
	return nil
}

func printGlossary(w io.Writer, g *glossary.Glossary, body blendshape.Mesh) {
	fmt.Fprintf(w, "Glossary: %d bones, highest slot %d\n", len(g.Bones), g.MaxBlendShapeIndex())
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "BONE\tEXPRESSIONS\tVISEMES")
	for _, b := range g.Bones {
		names := make([]string, 0, len(b.Expressions))
		visemes := 0
		for _, e := range b.Expressions {
			names = append(names, slotLabel(e.Name, e.BlendShapeIndex, body))
			if e.IsViseme {
				visemes++
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\n", b.Name, strings.Join(names, ", "), visemes)
	}
	tw.Flush()
}

func printConstraints(w io.Writer, list []constraint.UpdateConstraint, body blendshape.Mesh) {
	add, limit := constraint.Split(list)
	fmt.Fprintf(w, "Constraints: %d add, %d limit, %d targets\n", len(add), len(limit), len(constraint.Targets(list)))
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "MODE\tCURVE\tSOURCE\tTARGET\tGRADIENT")
	for _, c := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%g\n",
			c.UpdateMode, c.CurveMode,
			slotLabel("", c.SourceIndex, body),
			slotLabel("", c.TargetIndex, body),
			c.Gradient)
	}
	tw.Flush()
}

// slotLabel prints a slot as "name[index]", taking the name from body when
// one is not given.
func slotLabel(name string, index int, body blendshape.Mesh) string {
	if name == "" && body != nil && index >= 0 && index < body.BlendShapeCount() {
		name = body.BlendShapeName(index)
	}
	if name == "" {
		return fmt.Sprintf("[%d]", index)
	}
	return fmt.Sprintf("%s[%d]", name, index)
}
