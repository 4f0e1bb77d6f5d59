package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var ratingsOpts struct {
	league string
	top    int
}

func init() {
	ratingsCmd.Flags().StringVarP(&ratingsOpts.league, "league", "l", "NBA", "League to rate")
	ratingsCmd.Flags().IntVar(&ratingsOpts.top, "top", 0, "Only show the top N teams")
}

var ratingsCmd = &cobra.Command{
	Use:   "ratings",
	Short: "Rebuild and print the rating table for a league",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := predictor.RefreshRatings(cmd.Context(), ratingsOpts.league); err != nil {
			return err
		}
		table, err := predictor.Ratings(cmd.Context(), ratingsOpts.league)
		if err != nil {
			return err
		}
		if ratingsOpts.top > 0 && len(table) > ratingsOpts.top {
			table = table[:ratingsOpts.top]
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "#\tTEAM\tRATING\tGAMES")
		for i, r := range table {
			fmt.Fprintf(w, "%d\t%s\t%.1f\t%d\n", i+1, r.Team, r.Rating, r.GamesPlayed)
		}
		return w.Flush()
	},
}
