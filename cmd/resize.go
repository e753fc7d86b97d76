package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"rescale/internal/scaler"
	"rescale/internal/session"
	"rescale/internal/tui"
)

var resizeFlags editFlags

var resizeCmd = &cobra.Command{
	Use:   "resize [flags] <image>",
	Short: "Resize and re-encode a single image",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEditor()
		if err != nil {
			return err
		}
		if err := e.Open(cmd.Context(), []scaler.Input{scaler.FileInput(args[0])}); err != nil {
			if errors.Is(err, session.ErrNoImages) {
				return fmt.Errorf("%s is not an image file", args[0])
			}
			return err
		}
		if err := resizeFlags.apply(cmd, e); err != nil {
			return err
		}

		p, err := e.Preview()
		if err != nil {
			return err
		}
		out, err := e.Download()
		if err != nil {
			return err
		}
		path, err := resizeFlags.saver(cmd).Save(out)
		if err != nil {
			return err
		}

		rows := []tui.SummaryRow{
			{Label: "Source", Value: fmt.Sprintf("%d x %d", p.SourceWidth, p.SourceHeight)},
			{Label: "Output", Value: fmt.Sprintf("%d x %d", p.OutWidth, p.OutHeight)},
			{Label: "Format", Value: out.MIME},
			{Label: "Size", Value: scaler.FormatBytes(len(out.Data))},
			{Label: "Saved to", Value: path},
		}
		fmt.Fprintln(cmd.OutOrStdout(), tui.RenderSummary(rows))
		return nil
	},
}

func init() {
	addEditFlags(resizeCmd, &resizeFlags)
	addOutputFlags(resizeCmd, &resizeFlags)

	rootCmd.AddCommand(resizeCmd)
}
