package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stemma/pkg/document"
	"github.com/matzehuels/stemma/pkg/store"
)

// newCommand creates the "new" command for starting an empty chart file.
func (c *CLI) newCommand() *cobra.Command {
	var (
		name  string
		force bool
	)

	cmd := &cobra.Command{
		Use:   "new <file>",
		Short: "Create an empty chart file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]

			if _, err := os.Stat(path); err == nil && !force {
				if !confirm(cmd, fmt.Sprintf("File %s already exists. Overwrite?", path)) {
					printInfo("Aborted")
					return nil
				}
			}

			st, err := store.NewFileStore(path)
			if err != nil {
				return err
			}
			doc := document.New(document.Options{
				Store:       st,
				DisplayName: name,
				Layout:      c.cfg.layoutOptions(),
				Logger:      c.Logger,
			})
			if err := doc.Save(cmd.Context()); err != nil {
				return err
			}
			if err := doc.Close(cmd.Context()); err != nil {
				return err
			}

			printSuccess("Created %s", path)
			printNextStep("Open the editor", fmt.Sprintf("stemma edit %s", path))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "display name stored in the chart")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite without asking")

	return cmd
}

// confirm asks a yes/no question on the command's streams. Anything but an
// explicit yes declines.
func confirm(cmd *cobra.Command, prompt string) bool {
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N] ", prompt)
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}
