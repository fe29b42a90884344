package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRadarCmd() *cobra.Command {
	var group string

	cmd := &cobra.Command{
		Use:   "radar",
		Short: "Render the tech radar as text",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, api, err := buildSession()
			if err != nil {
				return err
			}

			data, err := api.Catalog.Radar(cmd.Context(), group)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "radar %s\n", data.Date)
			for q, quadrant := range data.Quadrants {
				fmt.Fprintf(out, "\n[%d] %s\n", q, quadrant.Name)
				for r, ring := range data.Rings {
					for _, entry := range data.Entries {
						if entry.Quadrant != q || entry.Ring != r {
							continue
						}
						marker := " "
						if entry.IsNewOrMoved {
							marker = "*"
						}
						fmt.Fprintf(out, "  %-6s %s %s\n", ring.Name, marker, entry.Label)
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&group, "group", "", "radar group")
	return cmd
}
