package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// inspectCommand creates the "inspect" command for printing chart statistics.
func (c *CLI) inspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file>",
		Short: "Show chart statistics",
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
			defer doc.Close(ctx)

			s := doc.Stats()

			name := doc.DisplayName()
			if name == "" {
				name = "(unnamed)"
			}
			fmt.Println(StyleTitle.Render(name))
			printKeyValue("File:", doc.Location())
			printKeyValue("Schema:", strconv.Itoa(doc.SchemaVersion()))
			printKeyValue("Nodes:", fmt.Sprintf("%d (%d persons, %d sections)", s.Nodes, s.Persons, s.Sections))
			printKeyValue("Connections:", fmt.Sprintf("%d (%d tree, %d side)", s.Connections, s.TreeEdges, s.SideEdges))

			if presets := doc.Presets(); len(presets) > 0 {
				printNewline()
				fmt.Println(StyleHighlight.Render("Presets"))
				for _, p := range presets {
					printDetail("%s (%d nodes, %d connections)", p.Name, len(p.Nodes), len(p.Connections))
				}
			}

			return nil
		},
	}
}
