package cli

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/siteworks/drawalign/pkg/alignment"
	"github.com/siteworks/drawalign/pkg/errors"
	"github.com/siteworks/drawalign/pkg/geometry"
	"github.com/siteworks/drawalign/pkg/store"
)

// alignmentCommand creates the saved-alignment management command.
func (c *CLI) alignmentCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "alignment",
		Aliases: []string{"alignments"},
		Short:   "Manage saved alignments",
	}

	cmd.AddCommand(c.alignmentGetCommand())
	cmd.AddCommand(c.alignmentSaveCommand())
	cmd.AddCommand(c.alignmentDeleteCommand())
	cmd.AddCommand(c.alignmentListCommand())

	return cmd
}

func (c *CLI) alignmentGetCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "get BASE_ID CANDIDATE_ID",
		Short: "Show the saved alignment for a drawing pair",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			rec, err := s.Get(cmd.Context(), args[0], args[1])
			if stderrors.Is(err, store.ErrNotFound) {
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), nil)
				}
				printInfo("No alignment saved for %s %s %s", args[0], iconArrow, args[1])
				return nil
			}
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), rec)
			}
			printRecord(rec)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the record as JSON")

	return cmd
}

func (c *CLI) alignmentSaveCommand() *cobra.Command {
	var (
		tf     transformFlags
		method string
		from   string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "save BASE_ID CANDIDATE_ID",
		Short: "Save an alignment for a drawing pair",
		Long: `Save an alignment for a drawing pair, replacing any existing one.

The transform comes from --scale/--rotation/--tx/--ty, or from --from FILE
holding JSON save data ({"transform": {...}, "method": "...",
"alignmentPoints": {...}}). Use --from - to read standard input.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var data alignment.SaveData
			if from != "" {
				if err := readSaveData(cmd.InOrStdin(), from, &data); err != nil {
					return err
				}
			} else {
				t, err := tf.transform()
				if err != nil {
					return err
				}
				data.Transform = t
			}
			if cmd.Flags().Changed("method") || data.Method == "" {
				data.Method = alignment.Method(method)
			}

			s, err := c.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			rec, err := s.Save(cmd.Context(), store.FromSave(args[0], args[1], data))
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), rec)
			}
			printSuccess("Saved alignment %s", StyleDim.Render(rec.ID))
			printRecord(rec)
			return nil
		},
	}

	tf.register(cmd)
	cmd.Flags().StringVar(&method, "method", string(alignment.MethodManual), "how the transform was produced (manual|auto)")
	cmd.Flags().StringVar(&from, "from", "", "read save data JSON from a file (- for stdin)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the stored record as JSON")

	return cmd
}

func (c *CLI) alignmentDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete BASE_ID CANDIDATE_ID",
		Short: "Delete the saved alignment for a drawing pair",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			deleted, err := s.Delete(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			if !deleted {
				printInfo("No alignment saved for %s %s %s", args[0], iconArrow, args[1])
				return nil
			}
			printSuccess("Deleted alignment %s %s %s", args[0], iconArrow, args[1])
			return nil
		},
	}
}

func (c *CLI) alignmentListCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list BASE_ID",
		Short: "List saved alignments for a base drawing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			recs, err := s.List(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), recs)
			}
			if len(recs) == 0 {
				printInfo("No alignments saved for %s", args[0])
				return nil
			}

			rows := make([][]string, 0, len(recs))
			for _, r := range recs {
				rows = append(rows, []string{
					r.CandidateDrawingID,
					string(r.Method),
					fmt.Sprintf("%.4f", r.Scale),
					fmt.Sprintf("%.2f°", geometry.Degrees(r.Rotation)),
					fmt.Sprintf("%.4f, %.4f", r.TranslateX, r.TranslateY),
					r.UpdatedAt.Local().Format("2006-01-02 15:04"),
				})
			}

			headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
			t := table.New().
				Border(lipgloss.RoundedBorder()).
				BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
				Headers("Candidate", "Method", "Scale", "Rotation", "Translate", "Updated").
				Rows(rows...).
				StyleFunc(func(row, col int) lipgloss.Style {
					switch {
					case row == -1:
						return headerStyle
					case col == 0:
						return lipgloss.NewStyle().Foreground(colorWhite)
					case col == 5:
						return lipgloss.NewStyle().Foreground(colorDim)
					}
					return lipgloss.NewStyle().Foreground(colorCyan)
				})
			fmt.Fprintln(cmd.OutOrStdout(), t.Render())
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print records as JSON")

	return cmd
}

// readSaveData decodes save data JSON from path, or from stdin when path is "-".
func readSaveData(stdin io.Reader, path string, data *alignment.SaveData) error {
	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return errors.Wrap(errors.ErrCodeNotFound, err, "open %s", path)
		}
		defer f.Close()
		r = f
	}
	if err := json.NewDecoder(r).Decode(data); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "decode save data")
	}
	return nil
}

// printRecord prints a stored alignment.
func printRecord(rec store.Record) {
	printKeyValue("pair", StyleHighlight.Render(rec.BaseDrawingID)+" "+StyleDim.Render(iconArrow)+" "+StyleHighlight.Render(rec.CandidateDrawingID))
	printKeyValue("method", string(rec.Method))
	printTransform(rec.Transform())
	if rec.Points != nil {
		if pts, ok := rec.Points.AlignmentPoints(); ok {
			printDetail("base A %g,%g  base B %g,%g", pts.BaseA.X, pts.BaseA.Y, pts.BaseB.X, pts.BaseB.Y)
			printDetail("cand A %g,%g  cand B %g,%g", pts.CandidateA.X, pts.CandidateA.Y, pts.CandidateB.X, pts.CandidateB.Y)
		}
	}
	printDetail("updated %s", rec.UpdatedAt.Local().Format("2006-01-02 15:04:05"))
}
