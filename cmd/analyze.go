package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wardwatch/rent-cli/internal/analysis"
	"github.com/wardwatch/rent-cli/internal/report"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run the hypothesis test over stored listings",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		records, err := st.GetAll(ctx)
		if err != nil {
			return err
		}

		res, err := analysis.NewEngine().Verify(records)
		if err != nil {
			return err
		}

		verdict := "REJECTED"
		if res.Accepted {
			verdict = "ACCEPTED"
		}
		fmt.Printf("%s avg %.0f (n=%d, sd %.0f)\n", report.WardLabel(res.High.Area), res.High.Mean, res.High.Count, res.High.StdDev)
		fmt.Printf("%s avg %.0f (n=%d, sd %.0f)\n", report.WardLabel(res.Low.Area), res.Low.Mean, res.Low.Count, res.Low.StdDev)
		fmt.Printf("difference %.0f (%.1f%%), t = %.3f, %s\n", res.Diff, res.RelativeDiffPct, res.TStat, report.PDisplay(res.PValue))
		fmt.Printf("hypothesis %s (threshold %.0f%%), significant: %v\n", verdict, analysis.AcceptThresholdPct, res.Significant)
		return nil
	},
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Run the hypothesis test and write all report artifacts",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		return analyzeAndReport(ctx, st)
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(reportCmd)
}
