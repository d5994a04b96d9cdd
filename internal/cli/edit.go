package cli

import (
	"context"
	stderrors "errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// editCommand creates the "edit" command running the terminal editor.
func (c *CLI) editCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "edit <file>",
		Short: "Edit a chart in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := requireFile(args[0]); err != nil {
				return err
			}

			doc, err := c.openDocument(ctx, args[0])
			if err != nil {
				return err
			}
			defer doc.Close(context.Background())

			p := tea.NewProgram(newEditorModel(doc), tea.WithAltScreen(), tea.WithContext(ctx))
			if _, err := p.Run(); err != nil && !stderrors.Is(err, tea.ErrProgramKilled) {
				return err
			}

			printSuccess("Saved %s", args[0])
			return nil
		},
	}
}
