package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/stemma/pkg/chart/layout"
)

// layoutCommand creates the "layout" command for re-running automatic layout.
func (c *CLI) layoutCommand() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "layout <file>",
		Short: "Run automatic layout and save the result",
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

			if dryRun {
				nodes := doc.Nodes()
				positions, _ := layout.Apply(nodes, doc.Connections(), c.cfg.layoutOptions())
				moved := 0
				for _, n := range nodes {
					if p, ok := positions[n.ID]; ok && p != n.Position {
						moved++
					}
				}
				if moved == 0 {
					printInfo("Layout is already settled")
					return nil
				}
				printInfo("%d of %d persons would move", moved, len(positions))
				printNextStep("Apply it", "stemma layout "+args[0])
				return nil
			}

			if !doc.AutoLayout() {
				printInfo("Layout is already settled")
				return nil
			}
			if err := doc.Save(ctx); err != nil {
				return err
			}

			printSuccess("Layout updated")
			printStats(doc.Stats())
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report movement without writing")

	return cmd
}
