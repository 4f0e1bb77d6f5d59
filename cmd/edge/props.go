package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/sports-edge/internal/logger"
	"github.com/yourusername/sports-edge/internal/props"
)

// propsInput is the file read by the props command.
type propsInput struct {
	Lines   []props.Line        `json:"lines"`
	Players []props.PlayerStats `json:"players"`
}

var propsOpts struct {
	input      string
	bankroll   float64
	top        int
	all        bool
	jsonOutput bool
}

func init() {
	f := propsCmd.Flags()
	f.StringVarP(&propsOpts.input, "input", "i", "", "JSON file with {lines, players}")
	f.Float64Var(&propsOpts.bankroll, "bankroll", 0, "Bankroll override (default: service.bankroll)")
	f.IntVar(&propsOpts.top, "top", 0, "Number of picks to show (default: props.top_n)")
	f.BoolVar(&propsOpts.all, "all", false, "Show every analyzed line, not just picks")
	f.BoolVar(&propsOpts.jsonOutput, "json", false, "Print results as JSON")
	_ = propsCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(propsCmd)
}

var propsCmd = &cobra.Command{
	Use:   "props",
	Short: "Find value in player prop lines",
	// Prop analysis reads a file and needs no database.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(cmd.Context()); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		log = logger.NewLogger(cfg.App.LogLevel, cfg.App.LogFormat)
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(propsOpts.input)
		if err != nil {
			return fmt.Errorf("failed to read props input: %w", err)
		}
		var in propsInput
		if err := json.Unmarshal(data, &in); err != nil {
			return fmt.Errorf("failed to parse props input: %w", err)
		}

		pcfg := props.FromConfig(cfg.Props)
		if propsOpts.top > 0 {
			pcfg.TopN = propsOpts.top
		}
		analyzer, err := props.NewAnalyzer(pcfg, log)
		if err != nil {
			return err
		}

		bankroll := cfg.Service.Bankroll
		if propsOpts.bankroll > 0 {
			bankroll = propsOpts.bankroll
		}
		edges := analyzer.AnalyzeAll(in.Lines, in.Players, decimal.NewFromFloat(bankroll))
		if !propsOpts.all {
			edges = analyzer.Best(edges)
		}
		log.WithFields(logrus.Fields{
			"lines":   len(in.Lines),
			"players": len(in.Players),
			"shown":   len(edges),
		}).Info("Props analyzed")

		if propsOpts.jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(edges)
		}
		printProps(edges)
		return nil
	},
}

func printProps(edges []props.Edge) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PROP\tODDS O/U\tPROJ\tHIT% L10\tMODEL\tMARKET\tEDGE(pp)\tPICK\tEV\tSTAKE\tTIER")
	for _, e := range edges {
		pick, stake := "-", "-"
		ev, _, ok := e.Pick()
		if ok {
			pick = string(e.RecommendedSide)
			stake = e.StakeOver.StringFixed(2)
			if e.RecommendedSide == props.SideUnder {
				stake = e.StakeUnder.StringFixed(2)
			}
		}
		fmt.Fprintf(w, "%s\t%+d/%+d\t%.1f\t%.0f\t%.3f\t%.3f\t%+.1f\t%s\t%.3f\t%s\t%s\n",
			e.Line.Name(), e.Line.OverOdds, e.Line.UnderOdds, e.Projection, e.HitRateLast10*100,
			e.ModelProbOver, e.MarketProbOver, e.EdgePP, pick, ev, stake, e.Tier)
	}
	w.Flush()
}
