package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wardwatch/rent-cli/internal/report"
	"github.com/wardwatch/rent-cli/internal/store"
)

var (
	queryArea   string
	queryMin    int64
	queryMax    int64
	queryLayout string
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "List stored listings matching optional conditions",
	Long:  "Filters are conjunctive and only applied when the flag is set; rent bounds are inclusive and apply to total (rent + admin fee).",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		var f store.Filter
		if cmd.Flags().Changed("area") {
			f.Area = &queryArea
		}
		if cmd.Flags().Changed("min-rent") {
			f.MinTotal = &queryMin
		}
		if cmd.Flags().Changed("max-rent") {
			f.MaxTotal = &queryMax
		}
		if cmd.Flags().Changed("layout") {
			f.Layout = &queryLayout
		}

		records, err := st.GetByConditions(ctx, f)
		if err != nil {
			return err
		}

		for _, r := range records {
			fmt.Printf("%-10s %-6s %8d  %s\n", report.WardLabel(r.AreaName), r.Layout, r.Total, r.Name)
		}
		fmt.Printf("%d listings\n", len(records))
		return nil
	},
}

func init() {
	queryCmd.Flags().StringVar(&queryArea, "area", "", "ward name")
	queryCmd.Flags().Int64Var(&queryMin, "min-rent", 0, "minimum total rent, inclusive")
	queryCmd.Flags().Int64Var(&queryMax, "max-rent", 0, "maximum total rent, inclusive")
	queryCmd.Flags().StringVar(&queryLayout, "layout", "", "layout code, e.g. 1K")
	rootCmd.AddCommand(queryCmd)
}
