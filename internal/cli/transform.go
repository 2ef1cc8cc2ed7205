package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/siteworks/drawalign/pkg/errors"
	"github.com/siteworks/drawalign/pkg/geometry"
	"github.com/siteworks/drawalign/pkg/observability"
)

// transformFlags holds a transform given on the command line. Rotation is in
// degrees; everything else uses the canonical units.
type transformFlags struct {
	scale      float64
	rotation   float64
	translateX float64
	translateY float64
}

func (f *transformFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.scale, "scale", 1, "uniform scale factor")
	cmd.Flags().Float64Var(&f.rotation, "rotation", 0, "rotation in degrees")
	cmd.Flags().Float64Var(&f.translateX, "tx", 0, "x translation in normalized units")
	cmd.Flags().Float64Var(&f.translateY, "ty", 0, "y translation in normalized units")
}

func (f *transformFlags) transform() (geometry.Transform, error) {
	t := geometry.Transform{
		Scale:      f.scale,
		Rotation:   geometry.Radians(f.rotation),
		TranslateX: f.translateX,
		TranslateY: f.translateY,
	}
	return t, errors.ValidateTransform(t)
}

// computeCommand creates the compute command.
func (c *CLI) computeCommand() *cobra.Command {
	var (
		baseA, baseB, candA, candB string
		asJSON                     bool
	)

	cmd := &cobra.Command{
		Use:   "compute",
		Short: "Compute the transform from two picked point pairs",
		Long: `Compute the similarity transform that maps the candidate points onto the
base points. Points are normalized x,y coordinates in [0,1].`,
		Example: `  drawalign compute --base-a 0.1,0.1 --base-b 0.9,0.1 --cand-a 0.2,0.2 --cand-b 0.6,0.2`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var pts geometry.AlignmentPoints
			for _, p := range []struct {
				dst  *geometry.Point2D
				flag string
				val  string
			}{
				{&pts.BaseA, "base-a", baseA},
				{&pts.BaseB, "base-b", baseB},
				{&pts.CandidateA, "cand-a", candA},
				{&pts.CandidateB, "cand-b", candB},
			} {
				if p.val == "" {
					return errors.New(errors.ErrCodeInvalidPoint, "--%s is required", p.flag)
				}
				pt, err := parsePoint(p.val)
				if err != nil {
					return fmt.Errorf("--%s: %w", p.flag, err)
				}
				*p.dst = pt
			}

			t := geometry.ComputeAlignment(pts)
			observability.Align().OnTransformComputed(cmd.Context(), "points", t.Scale, t.Rotation)
			if pts.CandidateA.Distance(pts.CandidateB) < geometry.MinDistance {
				c.Logger.Warn("candidate points coincide, scale fixed at 1")
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), t)
			}
			printTransform(t)
			return nil
		},
	}

	cmd.Flags().StringVar(&baseA, "base-a", "", "first base point (x,y)")
	cmd.Flags().StringVar(&baseB, "base-b", "", "second base point (x,y)")
	cmd.Flags().StringVar(&candA, "cand-a", "", "first candidate point (x,y)")
	cmd.Flags().StringVar(&candB, "cand-b", "", "second candidate point (x,y)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the transform as JSON")

	return cmd
}

// inverseCommand creates the inverse command.
func (c *CLI) inverseCommand() *cobra.Command {
	var (
		tf     transformFlags
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "inverse",
		Short: "Invert a transform",
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := tf.transform()
			if err != nil {
				return err
			}
			inv := geometry.Inverse(t)
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), inv)
			}
			printTransform(inv)
			return nil
		},
	}

	tf.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the transform as JSON")

	return cmd
}

// applyCommand creates the apply command.
func (c *CLI) applyCommand() *cobra.Command {
	var (
		tf      transformFlags
		points  []string
		inverse bool
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "apply [x,y...]",
		Short: "Map candidate points into base space",
		Example: `  drawalign apply --scale 2 --tx 0.1 0.25,0.5
  drawalign apply --scale 2 --inverse --point 0.6,1.1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := tf.transform()
			if err != nil {
				return err
			}
			if inverse {
				t = geometry.Inverse(t)
			}

			inputs := append(append([]string{}, points...), args...)
			if len(inputs) == 0 {
				return errors.New(errors.ErrCodeInvalidPoint, "at least one point is required")
			}

			type mapped struct {
				In  geometry.Point2D `json:"in"`
				Out geometry.Point2D `json:"out"`
			}
			out := make([]mapped, 0, len(inputs))
			for _, in := range inputs {
				p, err := parsePoint(in)
				if err != nil {
					return err
				}
				out = append(out, mapped{In: p, Out: geometry.Apply(p, t)})
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), out)
			}
			for _, m := range out {
				printKeyValue(fmt.Sprintf("%g,%g", m.In.X, m.In.Y),
					StyleDim.Render(iconArrow+" ")+StyleNumber.Render(fmt.Sprintf("%.6g,%.6g", m.Out.X, m.Out.Y)))
			}
			return nil
		},
	}

	tf.register(cmd)
	cmd.Flags().StringArrayVar(&points, "point", nil, "point to map (x,y); repeatable")
	cmd.Flags().BoolVar(&inverse, "inverse", false, "map base points back into candidate space")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print results as JSON")

	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
