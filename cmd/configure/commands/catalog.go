package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wanderlist/wanderlist/internal/models"
	"github.com/wanderlist/wanderlist/internal/suggest"
	"github.com/wanderlist/wanderlist/internal/validation"
)

// NewCatalogCmd creates the catalog inspection command.
func NewCatalogCmd() *cobra.Command {
	var timeOfDay string
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect the suggestion catalog",
		Long:  "Print the category groups the suggestion engine samples from, optionally filtered by time of day.",
		RunE: func(cmd *cobra.Command, args []string) error {
			var tod models.TimeOfDay
			if timeOfDay != "" {
				if err := validation.ValidateTimeOfDay(timeOfDay); err != nil {
					return err
				}
				tod = models.TimeOfDay(timeOfDay)
			}

			groups := suggest.Catalog()
			shown := 0
			for i := range groups {
				g := &groups[i]
				if tod != "" && !suggest.GroupAllowedAt(g, tod) {
					continue
				}
				shown++
				fmt.Printf("%s (%s)\n", g.Title, g.ID)
				fmt.Printf("  Purpose: %s\n", g.Purpose)
				fmt.Printf("  Query: %s\n", g.Query)
				fmt.Printf("  Types: %s\n", strings.Join(g.TypeIDs(), ", "))
				fmt.Printf("  Base weight: %.1f\n", g.BaseWeight())
				if g.Metadata != nil {
					if g.Metadata.RequiresUserIntent {
						fmt.Println("  Requires user intent")
					}
					if g.Metadata.IsNightSuggestion {
						fmt.Println("  Night suggestion")
					}
					if g.Metadata.MinimumInteractionCount > 0 {
						fmt.Printf("  Minimum interactions: %d\n", g.Metadata.MinimumInteractionCount)
					}
				}
				fmt.Println()
			}

			if tod != "" {
				fmt.Printf("%d of %d groups eligible at %s\n", shown, len(groups), tod)
			} else {
				fmt.Printf("%d groups in catalog\n", shown)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&timeOfDay, "time-of-day", "", "Filter by time of day (morning, lunch, afternoon, evening, late_night)")
	return cmd
}
