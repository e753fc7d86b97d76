package cmd

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"rescale/internal/scaler"
	"rescale/internal/tui"
)

var browseFlags editFlags

var browseCmd = &cobra.Command{
	Use:   "browse [flags] <path>...",
	Short: "Step through images and adjust the output interactively",
	Args:  cobra.MinimumNArgs(1),
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
		if err := browseFlags.apply(cmd, e); err != nil {
			return err
		}

		program := tea.NewProgram(tui.NewBrowser(ctx, e, browseFlags.saver(cmd)), tea.WithAltScreen(), tea.WithContext(ctx))
		_, err = program.Run()
		return err
	},
}

func init() {
	addEditFlags(browseCmd, &browseFlags)
	addOutputFlags(browseCmd, &browseFlags)

	rootCmd.AddCommand(browseCmd)
}
