package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/siteworks/drawalign/pkg/alignment"
	"github.com/siteworks/drawalign/pkg/errors"
	"github.com/siteworks/drawalign/pkg/render/statechart"
)

// statesCommand creates the states command.
func (c *CLI) statesCommand() *cobra.Command {
	var (
		format   string
		output   string
		current  string
		messages bool
	)

	cmd := &cobra.Command{
		Use:   "states",
		Short: "Render the alignment state machine",
		Example: `  drawalign states > states.dot
  drawalign states -f svg -o states.svg --current picking_candidate_A`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := statechart.Options{Messages: messages}
			if current != "" {
				s := alignment.State(current)
				if !s.Valid() {
					return errors.New(errors.ErrCodeInvalidInput, "unknown state %q", current)
				}
				opts.Current = s
			}

			dot := statechart.ToDOT(alignment.Transitions(), opts)

			var data []byte
			switch format {
			case "dot":
				data = []byte(dot)
			case "svg", "png":
				prog := newProgress(c.Logger)
				var err error
				if format == "svg" {
					data, err = statechart.RenderSVG(cmd.Context(), dot)
				} else {
					data, err = statechart.RenderPNG(cmd.Context(), dot)
				}
				if err != nil {
					return err
				}
				prog.done("Rendered state chart", "format", format, "bytes", len(data))
			default:
				return errors.New(errors.ErrCodeInvalidInput, "unknown format %q (dot, svg, png)", format)
			}

			if output == "" {
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			printSuccess("Wrote state chart")
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "dot", "output format (dot, svg, png)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&current, "current", "", "highlight this state")
	cmd.Flags().BoolVar(&messages, "messages", false, "label states with their status message")

	return cmd
}
