package cli

import (
	stderrors "errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/siteworks/drawalign/pkg/errors"
	"github.com/siteworks/drawalign/pkg/store"
)

// alignCommand creates the interactive align command.
func (c *CLI) alignCommand() *cobra.Command {
	var (
		base, candidate     string
		baseID, candidateID string
		noLoad              bool
	)

	cmd := &cobra.Command{
		Use:   "align",
		Short: "Align two drawings interactively",
		Long: `Align two drawings interactively by picking two points on each.

Press s to start, move the cursor with the arrow keys and pick with enter:
two points on the base drawing, then the matching two on the candidate.
Once aligned, fine-tune with the arrows, [ ] and + -, and press w to save.

--base and --candidate (WIDTHxHEIGHT or image paths) enable auto-align with
a. --base-id and --candidate-id enable saving and load any saved alignment
for the pair on start.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if (baseID == "") != (candidateID == "") {
				return errors.New(errors.ErrCodeInvalidInput, "--base-id and --candidate-id go together")
			}

			m := NewAlignModel(ctx, c.cfg.Align)
			m.BaseID, m.CandidateID = baseID, candidateID

			if base != "" || candidate != "" {
				prober := c.newProber()
				bs, _, err := resolveSize(ctx, prober, base)
				if err != nil {
					return err
				}
				cs, _, err := resolveSize(ctx, prober, candidate)
				if err != nil {
					return err
				}
				m.BaseSize, m.CandidateSize = &bs, &cs
			}

			if baseID != "" {
				s, err := c.openStore(ctx)
				if err != nil {
					return err
				}
				defer s.Close()
				m.Store = s

				if !noLoad {
					rec, err := s.Get(ctx, baseID, candidateID)
					switch {
					case err == nil:
						m.Controller.LoadSaved(rec.Saved())
						m.Message = "Loaded saved alignment"
					case !stderrors.Is(err, store.ErrNotFound):
						return err
					}
				}
			}

			final, err := tea.NewProgram(m, tea.WithContext(ctx)).Run()
			if err != nil {
				return err
			}

			fm := final.(AlignModel)
			if fm.Saved != nil {
				printSuccess("Alignment saved")
				printRecord(*fm.Saved)
			} else if fm.Controller.IsAligned() {
				printInfo("Alignment not saved")
				printTransform(fm.Controller.Transform())
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&base, "base", "", "base size (WxH) or image path, for auto-align")
	cmd.Flags().StringVar(&candidate, "candidate", "", "candidate size (WxH) or image path, for auto-align")
	cmd.Flags().StringVar(&baseID, "base-id", "", "base drawing ID, for saving")
	cmd.Flags().StringVar(&candidateID, "candidate-id", "", "candidate drawing ID, for saving")
	cmd.Flags().BoolVar(&noLoad, "no-load", false, "start fresh even if an alignment is saved")

	return cmd
}
