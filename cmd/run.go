package main

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wardwatch/rent-cli/internal/analysis"
	"github.com/wardwatch/rent-cli/internal/report"
	"github.com/wardwatch/rent-cli/internal/store"
)

var runPages int

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Collect, persist, analyze and report in one pass",
	Long:  "Scrapes all configured areas, replaces the stored listings with the fresh batch, runs the hypothesis test and writes the report artifacts.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		pages := runPages
		if pages == 0 {
			pages = cfg.Scrape.Pages
		}
		areas := targetAreas()

		// [1/3] collect
		collector := newCollector()
		records, summary := collector.CollectAll(ctx, areas, pages)
		if len(records) == 0 {
			return eris.New("collection yielded zero records across all areas, aborting before touching the store")
		}

		// [2/3] persist (fresh batch replaces everything)
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		run, err := st.StartRun(ctx, areaNames(areas), pages)
		if err != nil {
			return err
		}
		if err := st.ClearAll(ctx); err != nil {
			return err
		}
		saved, err := st.SaveAll(ctx, records)
		if err != nil {
			return err
		}
		if err := st.FinishRun(ctx, run.ID, saved, summary.Skips); err != nil {
			return err
		}
		zap.L().Info("batch persisted", zap.Int("records", saved), zap.String("run_id", run.ID))

		// [3/3] analyze and report
		return analyzeAndReport(ctx, st)
	},
}

// analyzeAndReport runs the hypothesis engine over the stored records and
// renders all artifacts.
func analyzeAndReport(ctx context.Context, st store.Store) error {
	records, err := st.GetAll(ctx)
	if err != nil {
		return err
	}

	result, err := analysis.NewEngine().Verify(records)
	if err != nil {
		return err
	}

	areaStats, err := st.GetAreaStats(ctx)
	if err != nil {
		return err
	}
	layoutStats, err := st.GetLayoutStats(ctx)
	if err != nil {
		return err
	}

	sink := report.NewSink(cfg.Report.OutputDir)
	artifacts, err := sink.Render(records, areaStats, layoutStats, result)
	if err != nil {
		return err
	}

	fmt.Print(sink.Summary(records, areaStats, result))
	fmt.Printf("\nArtifacts:\n  %s\n  %s\n  %s\n  %s\n",
		artifacts.ReportPath, artifacts.AreaChartPath, artifacts.LayoutChartPath, artifacts.WorkbookPath)
	return nil
}

func init() {
	runCmd.Flags().IntVar(&runPages, "pages", 0, "pages per area (default from config)")
	rootCmd.AddCommand(runCmd)
}
