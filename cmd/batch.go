package cmd

import (
	"errors"
	"fmt"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"rescale/internal/scaler"
	"rescale/internal/tui"
)

var batchFlags editFlags

var batchCmd = &cobra.Command{
	Use:   "batch [flags] <path>...",
	Short: "Export every image under the given paths with the same settings",
	Long: "batch resolves the settings against the first readable image and then exports every image with them.\n" +
		"With the aspect lock on, each image keeps its own proportions.",
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		inputs, err := scaler.CollectInputs(args)
		if err != nil {
			return err
		}
		e, err := newEditor()
		if err != nil {
			return err
		}
		if err := openEditor(ctx, e, inputs); err != nil {
			return err
		}
		if err := batchFlags.apply(cmd, e); err != nil {
			return err
		}

		updates := make(chan scaler.ProgressUpdate, 64)
		model := tui.NewModel(updates)
		program := tea.NewProgram(model, tea.WithOutput(cmd.ErrOrStderr()), tea.WithInput(nil))

		uiDone := make(chan struct{})
		go func() {
			_, _ = program.Run()
			close(uiDone)
		}()

		results, err := e.ExportAll(ctx, scaler.WithProgress(updates))
		close(updates)
		<-uiDone
		if err != nil && !errors.Is(err, ctx.Err()) {
			return err
		}

		saver := batchFlags.saver(cmd)
		var saved, failed int
		for i := range results {
			res := &results[i]
			if res.Err != nil {
				failed++
				continue
			}
			path, saveErr := saver.Save(res.Output)
			if saveErr != nil {
				logger.Warn("could not save output", zap.String("name", res.Name), zap.Error(saveErr))
				res.Err = saveErr
				failed++
				continue
			}
			res.Output.Filename = filepath.Base(path)
			saved++
		}

		rows := tui.ResultRows(results)
		rows = append(rows,
			tui.SummaryRow{Label: "Saved", Value: fmt.Sprintf("%d", saved)},
			tui.SummaryRow{Label: "Failed", Value: fmt.Sprintf("%d", failed)},
		)
		fmt.Fprintln(cmd.OutOrStdout(), tui.RenderSummary(rows))

		outPath := saver.Dir
		if abs, absErr := filepath.Abs(saver.Dir); absErr == nil {
			outPath = abs
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Resized files written to: %s\n", outPath)
		return err
	},
}

func init() {
	addEditFlags(batchCmd, &batchFlags)
	addOutputFlags(batchCmd, &batchFlags)

	rootCmd.AddCommand(batchCmd)
}
