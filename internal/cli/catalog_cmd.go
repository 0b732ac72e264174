package cli

import (
	"fmt"
	"time"

	"github.com/alexanderramin/furrow/internal/catalog"
	"github.com/alexanderramin/furrow/internal/cli/formatter"
	"github.com/alexanderramin/furrow/internal/domain"
	"github.com/spf13/cobra"
)

func newCatalogCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Browse crop varieties and their schedules",
	}
	cmd.AddCommand(newCatalogListCmd(a), newCatalogEstimateCmd(a))
	return cmd
}

func newCatalogListCmd(a *App) *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List varieties",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := parseCategory(category)
			if err != nil {
				return err
			}
			var out []*domain.Variety
			for _, v := range a.Catalog.Varieties() {
				if c == "" || v.Category == c {
					out = append(out, v)
				}
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatVarieties(out))
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "Only this crop category")
	return cmd
}

func newCatalogEstimateCmd(a *App) *cobra.Command {
	var sowDate string

	cmd := &cobra.Command{
		Use:   "estimate <variety>",
		Short: "Show soak, uncover and harvest dates for a sow date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, ok := a.Catalog.ResolveProduct(args[0])
			if !ok {
				return fmt.Errorf("unknown variety %q", args[0])
			}
			sow := domain.DateOf(time.Now())
			if d, err := parseDateFlag("sow-date", sowDate); err != nil {
				return err
			} else if d != nil {
				sow = *d
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatSchedule(v, catalog.ScheduleFor(v, sow)))
			return nil
		},
	}

	cmd.Flags().StringVar(&sowDate, "sow-date", "", "Sow date (YYYY-MM-DD, default today)")
	return cmd
}
