package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/yourusername/sports-edge/internal/backtest"
)

var runsOpts struct {
	league string
	limit  int
}

func init() {
	runsCmd.Flags().StringVarP(&runsOpts.league, "league", "l", "NBA", "League")
	runsCmd.Flags().IntVar(&runsOpts.limit, "limit", 10, "Number of runs to show")
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List stored backtest runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		runs, err := repos.BacktestRun.GetRecent(cmd.Context(), runsOpts.league, runsOpts.limit)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "RUN\tCREATED\tWINDOW\tBETS\tROI\tBRIER")
		for _, run := range runs {
			var m backtest.Metrics
			if err := json.Unmarshal(run.MetricsJSON, &m); err != nil {
				return fmt.Errorf("run %s: %w", run.ID, err)
			}
			fmt.Fprintf(w, "%s\t%s\t%s..%s\t%d\t%.2f%%\t%.4f\n",
				run.ID, run.CreatedAt.Format("2006-01-02 15:04"),
				run.StartDate.Format("2006-01-02"), run.EndDate.Format("2006-01-02"),
				m.TotalBets, m.ROI*100, m.BrierScore)
		}
		return w.Flush()
	},
}
