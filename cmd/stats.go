package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wardwatch/rent-cli/internal/model"
	"github.com/wardwatch/rent-cli/internal/report"
)

var statsCmd = &cobra.Command{
	Use:       "stats [areas|layouts]",
	Short:     "Show aggregate rent statistics",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"areas", "layouts"},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		which := "areas"
		if len(args) > 0 {
			which = args[0]
		}

		var stats []model.GroupStats
		if which == "layouts" {
			stats, err = st.GetLayoutStats(ctx)
		} else {
			stats, err = st.GetAreaStats(ctx)
		}
		if err != nil {
			return err
		}

		fmt.Printf("%-12s %6s %12s %12s %12s\n", which[:len(which)-1], "count", "mean", "min", "max")
		for _, g := range stats {
			label := g.Group
			if which == "areas" {
				label = report.WardLabel(g.Group)
			}
			fmt.Printf("%-12s %6d %12.0f %12.0f %12.0f\n", label, g.Count, g.Mean, g.Min, g.Max)
		}
		return nil
	},
}

var countCmd = &cobra.Command{
	Use:   "count",
	Short: "Show the total number of stored listings",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		n, err := st.GetCount(ctx)
		if err != nil {
			return err
		}
		fmt.Println(n)
		return nil
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all stored listings",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.ClearAll(ctx); err != nil {
			return err
		}
		fmt.Println("all listings deleted")
		return nil
	},
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent scrape runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		runs, err := st.ListRuns(ctx, 20)
		if err != nil {
			return err
		}
		for _, r := range runs {
			status := "running"
			if r.FinishedAt != nil {
				status = r.FinishedAt.Format("2006-01-02 15:04:05")
			}
			fmt.Printf("%s  started %s  finished %s  %d records, %d skips\n",
				r.ID, r.StartedAt.Format("2006-01-02 15:04:05"), status, r.Records, r.Skips)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(countCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(runsCmd)
}
