package cli

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/siteworks/drawalign/pkg/errors"
	"github.com/siteworks/drawalign/pkg/geometry"
	"github.com/siteworks/drawalign/pkg/observability"
)

// autoCommand creates the auto command.
func (c *CLI) autoCommand() *cobra.Command {
	var (
		base, candidate string
		tolerance       float64
		asJSON          bool
	)

	cmd := &cobra.Command{
		Use:   "auto",
		Short: "Align two drawings by page size alone",
		Long: `Align two drawings by comparing their page sizes. Each side is either a
literal size (WIDTHxHEIGHT) or an image file whose header is probed.

Same-size pages overlay 1:1. Pages with matching aspect ratios are scaled
uniformly. Anything else needs manual alignment.`,
		Example: `  drawalign auto --base 2000x1000 --candidate 1000x500
  drawalign auto --base rev-a.png --candidate rev-b.png`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if !cmd.Flags().Changed("tolerance") {
				tolerance = c.cfg.Align.Tolerance
			}
			if err := errors.ValidateTolerance(tolerance); err != nil {
				return err
			}

			prober := c.newProber()
			baseSize, baseSrc, err := resolveSize(ctx, prober, base)
			if err != nil {
				return fmt.Errorf("--base: %w", err)
			}
			candSize, candSrc, err := resolveSize(ctx, prober, candidate)
			if err != nil {
				return fmt.Errorf("--candidate: %w", err)
			}

			start := time.Now()
			res := geometry.AutoAlign(baseSize, candSize, tolerance)
			observability.Align().OnAutoAlign(ctx, res.Success, time.Since(start))
			c.Logger.Debug("auto-align", "base", formatSize(baseSize), "candidate", formatSize(candSize),
				"widthRatio", res.SizeMatch.WidthRatio, "heightRatio", res.SizeMatch.HeightRatio)

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), res)
			}

			printSource("base     ", baseSize, baseSrc, false)
			printSource("candidate", candSize, candSrc, false)
			printNewline()
			if !res.Success {
				printWarning("%s", res.Message)
				printDetail("width ratio %.4f, height ratio %.4f", res.SizeMatch.WidthRatio, res.SizeMatch.HeightRatio)
				printNextStep("Align by hand", "drawalign align --base "+base+" --candidate "+candidate)
				return nil
			}
			printSuccess("%s", res.Message)
			printTransform(res.Transform)
			return nil
		},
	}

	cmd.Flags().StringVar(&base, "base", "", "base size (WxH) or image path")
	cmd.Flags().StringVar(&candidate, "candidate", "", "candidate size (WxH) or image path")
	cmd.Flags().Float64Var(&tolerance, "tolerance", geometry.DefaultTolerance, "relative size tolerance")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")

	return cmd
}

// probeCommand creates the probe command.
func (c *CLI) probeCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "probe FILE...",
		Short: "Print the pixel size of image files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prog := newProgress(c.Logger)
			prober := c.newProber()
			var spinner *Spinner
			if len(args) > 1 && !asJSON {
				spinner = newSpinnerWithContext(cmd.Context(), "Probing...")
				prober.Progress = func(i, n int, path string) {
					spinner.SetMessage(fmt.Sprintf("Probing %d/%d %s", i+1, n, filepath.Base(path)))
				}
				spinner.Start()
			}

			results, err := prober.Files(cmd.Context(), args...)
			if spinner != nil {
				spinner.Stop()
			}
			if err != nil {
				return err
			}
			prog.done("Probed images", "count", len(results))

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), results)
			}

			rows := make([][]string, 0, len(results))
			for _, r := range results {
				status := iconFresh
				if r.Cached {
					status = iconCached
				}
				rows = append(rows, []string{r.Path, r.Format, fmt.Sprintf("%g", r.Size.Width), fmt.Sprintf("%g", r.Size.Height), status})
			}

			headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
			t := table.New().
				Border(lipgloss.RoundedBorder()).
				BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
				Headers("File", "Format", "Width", "Height", "").
				Rows(rows...).
				StyleFunc(func(row, col int) lipgloss.Style {
					if row == -1 {
						return headerStyle
					}
					switch col {
					case 2, 3:
						return lipgloss.NewStyle().Foreground(colorCyan)
					case 4:
						if row < len(results) && results[row].Cached {
							return styleCached
						}
						return styleComputed
					}
					return lipgloss.NewStyle().Foreground(colorWhite)
				})
			fmt.Fprintln(cmd.OutOrStdout(), t.Render())
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print results as JSON")

	return cmd
}
