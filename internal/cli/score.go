package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"goban/internal/domain/board"
	"goban/internal/rules"
)

type scoreResult struct {
	Black  float64       `json:"black"`
	White  float64       `json:"white"`
	Result string        `json:"result"`
	Rules  board.Ruleset `json:"rules"`
	Komi   float64       `json:"komi"`
	Dead   []board.Cell  `json:"dead"`
}

func newScoreCmd(opts *options) *cobra.Command {
	var (
		ruleName string
		komi     float64
		show     bool
	)
	cmd := &cobra.Command{
		Use:   "score <file.sgf>",
		Short: "Estimate dead stones and count the final position",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := readRecord(args[0])
			if err != nil {
				return err
			}
			scoring := board.Game{Rules: rec.Rules, Komi: rec.Komi}
			if cmd.Flags().Changed("rules") {
				scoring.Rules = board.ParseRuleset(ruleName)
			}
			if cmd.Flags().Changed("komi") {
				scoring.Komi = komi
			}

			pos := rules.DetermineTerritory(rules.ReplayAll(rec.Setup, rec.Moves), false)
			black, white := rules.ScorePosition(pos, scoring)
			res := scoreResult{
				Black:  black,
				White:  white,
				Result: rules.Result(black, white),
				Rules:  scoring.Rules,
				Komi:   scoring.Komi,
				Dead:   pos.RemovedSpots(),
			}

			out := cmd.OutOrStdout()
			if opts.output == "json" {
				return printJSON(out, res)
			}
			if show {
				fmt.Fprint(out, Render(pos))
			}
			fmt.Fprintf(out, "Black %v, White %v (%s rules, komi %v): %s\n",
				res.Black, res.White, res.Rules, res.Komi, res.Result)
			return nil
		},
	}
	cmd.Flags().StringVar(&ruleName, "rules", "", "Override the ruleset of the record")
	cmd.Flags().Float64Var(&komi, "komi", 0, "Override the komi of the record")
	cmd.Flags().BoolVar(&show, "show", false, "Print the board with dead stones and territory")
	return cmd
}
