package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wardwatch/rent-cli/internal/report"
)

var (
	scrapePages int
	scrapeKeep  bool
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Collect listings and persist them",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		pages := scrapePages
		if pages == 0 {
			pages = cfg.Scrape.Pages
		}
		areas := targetAreas()

		collector := newCollector()
		records, summary := collector.CollectAll(ctx, areas, pages)
		if len(records) == 0 {
			return eris.New("collection yielded zero records across all areas, aborting before touching the store")
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		run, err := st.StartRun(ctx, areaNames(areas), pages)
		if err != nil {
			return err
		}
		if !scrapeKeep {
			if err := st.ClearAll(ctx); err != nil {
				return err
			}
		}
		saved, err := st.SaveAll(ctx, records)
		if err != nil {
			return err
		}
		if err := st.FinishRun(ctx, run.ID, saved, summary.Skips); err != nil {
			return err
		}

		zap.L().Info("scrape complete", zap.Int("records", saved), zap.String("run_id", run.ID))
		for _, a := range summary.Areas {
			fmt.Printf("  %-10s %d records (%d skips, %d failed pages)\n",
				report.WardLabel(a.Area), a.Records, a.Skips, a.FailedPages)
		}
		fmt.Printf("saved %d records\n", saved)
		return nil
	},
}

func init() {
	scrapeCmd.Flags().IntVar(&scrapePages, "pages", 0, "pages per area (default from config)")
	scrapeCmd.Flags().BoolVar(&scrapeKeep, "keep", false, "append to existing rows instead of clearing first")
	rootCmd.AddCommand(scrapeCmd)
}
