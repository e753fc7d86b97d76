package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"rescale/internal/scaler"
	"rescale/internal/tui"
)

var estimateQualities = []float64{0.3, 0.5, 0.7, 0.9, 1}

var estimateFlags editFlags

var estimateCmd = &cobra.Command{
	Use:   "estimate [flags] <image>",
	Short: "Print the encoded size at several qualities without writing anything",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEditor()
		if err != nil {
			return err
		}
		if err := e.Open(cmd.Context(), []scaler.Input{scaler.FileInput(args[0])}); err != nil {
			return err
		}
		if err := estimateFlags.apply(cmd, e); err != nil {
			return err
		}

		target, res, err := e.Render()
		if err != nil {
			return err
		}
		format := e.Settings().Format

		qualities := estimateQualities
		if !format.Lossy() {
			qualities = []float64{e.Settings().Quality}
		}

		rows := []tui.SummaryRow{
			{Label: "Output", Value: fmt.Sprintf("%d x %d %s", res.OutWidth, res.OutHeight, format.Extension())},
		}
		for _, q := range qualities {
			n, err := scaler.Estimate(target, format, q)
			if err != nil {
				return err
			}
			label := fmt.Sprintf("Quality %.0f", q*100)
			if !format.Lossy() {
				label = "Lossless"
			}
			rows = append(rows, tui.SummaryRow{Label: label, Value: scaler.FormatBytes(n)})
		}
		fmt.Fprintln(cmd.OutOrStdout(), tui.RenderSummary(rows))
		return nil
	},
}

func init() {
	addEditFlags(estimateCmd, &estimateFlags)

	rootCmd.AddCommand(estimateCmd)
}
