package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/yourusername/sports-edge/internal/rating"
	"github.com/yourusername/sports-edge/internal/service"
)

var predictOpts struct {
	league       string
	date         string
	days         int
	bankroll     float64
	injuriesFile string
	jsonOutput   bool
}

func init() {
	f := predictCmd.Flags()
	f.StringVarP(&predictOpts.league, "league", "l", "NBA", "League to evaluate")
	f.StringVarP(&predictOpts.date, "date", "d", "", "First day of the slate (YYYY-MM-DD, default today UTC)")
	f.IntVar(&predictOpts.days, "days", 1, "Number of days in the slate")
	f.Float64Var(&predictOpts.bankroll, "bankroll", 0, "Bankroll override (default: service.bankroll)")
	f.StringVar(&predictOpts.injuriesFile, "injuries", "", "JSON file of injuries [{team, player, status}]")
	f.BoolVar(&predictOpts.jsonOutput, "json", false, "Print the full slate as JSON")
}

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Evaluate a slate of upcoming games",
	RunE: func(cmd *cobra.Command, args []string) error {
		from, err := slateStart(predictOpts.date)
		if err != nil {
			return err
		}
		if predictOpts.days < 1 {
			return fmt.Errorf("--days must be at least 1")
		}
		injuries, err := readInjuries(predictOpts.injuriesFile)
		if err != nil {
			return err
		}

		slate, err := predictor.EvaluateSlate(cmd.Context(), service.SlateRequest{
			League:   predictOpts.league,
			From:     from,
			To:       from.AddDate(0, 0, predictOpts.days),
			Injuries: injuries,
			Bankroll: decimal.NewFromFloat(predictOpts.bankroll),
		})
		if err != nil {
			return err
		}

		if predictOpts.jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(slate)
		}
		printSlate(slate)
		return nil
	},
}

func slateStart(date string) (time.Time, error) {
	if date == "" {
		now := time.Now().UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", date, err)
	}
	return t, nil
}

func readInjuries(path string) ([]rating.Injury, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read injuries: %w", err)
	}
	var injuries []rating.Injury
	if err := json.Unmarshal(data, &injuries); err != nil {
		return nil, fmt.Errorf("failed to parse injuries: %w", err)
	}
	return injuries, nil
}

func printSlate(slate *service.Slate) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s slate as of %s, bankroll %s\n\n", slate.League, slate.AsOf.Format(time.RFC3339), slate.Bankroll.StringFixed(2))
	fmt.Fprintln(w, "GAME\tMATCHUP\tP(HOME)\tP(AWAY)\tP(DRAW)\tPICK\tTIER\tNOTE")
	for _, g := range slate.Games {
		pick, tier := "-", "-"
		if g.Evaluation != nil && g.Evaluation.RecommendedSide != "" {
			pick, tier = string(g.Evaluation.RecommendedSide), string(g.Evaluation.Tier)
		}
		p := g.Snapshot.Probabilities
		fmt.Fprintf(w, "%s\t%s @ %s\t%.3f\t%.3f\t%.3f\t%s\t%s\t%s\n",
			g.Game.ID, g.Game.AwayTeam, g.Game.HomeTeam, p.Home, p.Away, p.Draw, pick, tier, g.SkipReason)
	}

	if len(slate.Allocations) > 0 {
		fmt.Fprintln(w, "\nSTAKES\tSIDE\tODDS\tEV\tEDGE(pp)\tFRACTION\tAMOUNT")
		for _, a := range slate.Allocations {
			fmt.Fprintf(w, "%s\t%s\t%+d\t%.3f\t%.1f\t%.4f\t%s\n",
				a.GameID, a.Side, a.AmericanOdds, a.ExpectedValue, a.Edge, a.Fraction, a.Amount.StringFixed(2))
		}
	}
	if slate.Parlay != nil {
		fmt.Fprintf(w, "\nParlay: %d legs, odds %+d, hit %.3f, EV %.3f\n",
			len(slate.Parlay.Legs), slate.Parlay.AmericanOdds, slate.Parlay.HitProb, slate.Parlay.ExpectedValue)
	}
	w.Flush()
}
