package cli

import (
	"fmt"

	"github.com/alexanderramin/furrow/internal/app"
	"github.com/alexanderramin/furrow/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newBatchCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "batch",
		Aliases: []string{"b"},
		Short:   "Plant, advance and harvest batches",
	}
	cmd.AddCommand(
		newBatchPlantCmd(a),
		newBatchAdvanceCmd(a),
		newBatchHarvestCmd(a),
		newBatchShowCmd(a),
		newBatchListCmd(a),
	)
	return cmd
}

func newBatchPlantCmd(a *App) *cobra.Command {
	var qty int
	var sowDate, notes, by, today string
	var fromRec bool

	cmd := &cobra.Command{
		Use:   "plant <variety>",
		Short: "Start a new batch",
		Long: "Start a new batch of a variety (ID, name or alias). With --from-rec the\n" +
			"quantity and notes come from today's recommendation.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := app.PlantRequest{
				VarietyID:          args[0],
				Quantity:           qty,
				Notes:              notes,
				By:                 by,
				FromRecommendation: fromRec,
			}
			var err error
			if req.SowDate, err = parseDateFlag("sow-date", sowDate); err != nil {
				return err
			}
			if req.Now, err = parseDateFlag("today", today); err != nil {
				return err
			}
			if !fromRec && qty <= 0 {
				return fmt.Errorf("--qty is required (or use --from-rec)")
			}

			b, err := a.Batches.Plant(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatPlanted(b))
			return nil
		},
	}

	cmd.Flags().IntVarP(&qty, "qty", "q", 0, "Number of trays, ports or blocks")
	cmd.Flags().StringVar(&sowDate, "sow-date", "", "Sow date (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&notes, "notes", "", "Free-form notes")
	cmd.Flags().StringVar(&by, "by", "", "Who planted it")
	cmd.Flags().StringVar(&today, "today", "", "Record as of this date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&fromRec, "from-rec", false, "Use the current recommendation for quantity and notes")
	return cmd
}

func newBatchAdvanceCmd(a *App) *cobra.Command {
	var by string

	cmd := &cobra.Command{
		Use:   "advance <batch-id>",
		Short: "Move a batch to its next stage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := a.Batches.Advance(cmd.Context(), app.AdvanceRequest{BatchID: args[0], By: by})
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatTransition(resp))
			return nil
		},
	}

	cmd.Flags().StringVar(&by, "by", "", "Who moved it")
	return cmd
}

func newBatchHarvestCmd(a *App) *cobra.Command {
	var yield yieldValue
	var by string

	cmd := &cobra.Command{
		Use:   "harvest <batch-id>",
		Short: "Harvest a batch, optionally recording its yield",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := app.HarvestRequest{BatchID: args[0], By: by}
			switch {
			case cmd.Flags().Changed("yield"):
				req.Yield = yield.v
			case a.interactive():
				y, err := promptYield(cmd, a, args[0])
				if err != nil {
					return err
				}
				req.Yield = y
			}

			resp, err := a.Batches.Harvest(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatTransition(resp))
			return nil
		},
	}

	addYieldFlag(cmd.Flags(), &yield)
	cmd.Flags().StringVar(&by, "by", "", "Who harvested it")
	return cmd
}

func promptYield(cmd *cobra.Command, a *App, id string) (*float64, error) {
	view, err := a.Batches.Show(cmd.Context(), id)
	if err != nil {
		return nil, err
	}
	unit := ""
	if v, ok := a.Catalog.Lookup(view.Batch.VarietyID); ok {
		unit = v.YieldUnit
	}
	var raw string
	if err := yieldForm(view.Batch.DisplayName(), unit, &raw).Run(); err != nil {
		return nil, err
	}
	return parseOptionalYield(raw)
}

func newBatchShowCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <batch-id>",
		Short: "Show a batch with its stage history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := a.Batches.Show(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatBatch(view))
			return nil
		},
	}
}

func newBatchListCmd(a *App) *cobra.Command {
	var all bool
	var variety, category, today string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List active batches",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := app.ListBatchesRequest{IncludeHarvested: all}
			var err error
			if req.Now, err = parseDateFlag("today", today); err != nil {
				return err
			}
			if req.Category, err = parseCategory(category); err != nil {
				return err
			}
			if variety != "" {
				v, ok := a.Catalog.ResolveProduct(variety)
				if !ok {
					return fmt.Errorf("unknown variety %q", variety)
				}
				req.VarietyID = v.ID
			}
			views, err := a.Batches.List(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatBatchList(views))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "Include harvested batches")
	cmd.Flags().StringVar(&variety, "variety", "", "Only this variety")
	cmd.Flags().StringVar(&category, "category", "", "Only this crop category")
	cmd.Flags().StringVar(&today, "today", "", "Evaluate as of this date (YYYY-MM-DD)")
	return cmd
}
