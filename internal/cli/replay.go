package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"goban/internal/domain/board"
	"goban/internal/domain/sgf"
	"goban/internal/rules"
)

func newReplayCmd(opts *options) *cobra.Command {
	var (
		upto      int
		territory bool
		variation bool
	)
	cmd := &cobra.Command{
		Use:   "replay <file.sgf>",
		Short: "Print the position after a move",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := readRecord(args[0])
			if err != nil {
				return err
			}
			var v *board.Variation
			if variation {
				v = rec.Variation
			}
			if !cmd.Flags().Changed("upto") {
				upto = len(rules.EffectiveMoves(rec.Moves, len(rec.Moves), v)) - 1
			}
			pos := rules.Replay(rec.Setup, rec.Moves, upto, territory, v)

			out := cmd.OutOrStdout()
			if opts.output == "json" {
				return printJSON(out, pos)
			}
			fmt.Fprint(out, Render(pos))
			fmt.Fprintf(out, "%s to move, captures B %d W %d\n",
				pos.NextToMove(), pos.Captures(board.Black), pos.Captures(board.White))
			return nil
		},
	}
	cmd.Flags().IntVar(&upto, "upto", -1, "Last move to play, counted from 0, -1 for the setup (default: all moves)")
	cmd.Flags().BoolVar(&territory, "territory", false, "Estimate dead stones and territory")
	cmd.Flags().BoolVar(&variation, "variation", false, "Follow the first side branch instead of the main line")
	return cmd
}

func newCheckCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "check <file.sgf>",
		Short: "Verify that every main line move is legal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := readRecord(args[0])
			if err != nil {
				return err
			}
			if err = rules.ValidateMoves(rec.Setup, rec.Moves, rec.Colors); err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			if opts.output == "json" {
				return printJSON(cmd.OutOrStdout(), map[string]any{"moves": len(rec.Moves), "ok": true})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d moves, ok\n", args[0], len(rec.Moves))
			return nil
		},
	}
}

// newPlayCmd appends a move given as a GTP vertex and writes the record back.
func newPlayCmd(opts *options) *cobra.Command {
	var write bool
	cmd := &cobra.Command{
		Use:   "play <file.sgf> <color> <vertex>",
		Short: "Append a move such as \"black Q16\" or \"white pass\"",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			raw, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			rec, err := readRecord(path)
			if err != nil {
				return err
			}
			color, err := board.ParseStone(args[1])
			if err != nil {
				return err
			}
			_, height := rec.Setup.Size()
			cell, err := board.ParseGtpCell(args[2], height)
			if err != nil {
				return err
			}

			pos := rules.ReplayAll(rec.Setup, rec.Moves)
			if color != pos.NextToMove() {
				return fmt.Errorf("%s is to move", pos.NextToMove())
			}
			next, err := rules.MakeMove(pos, color, cell)
			if err != nil {
				return err
			}
			if rules.IsKoCandidate(rec.Setup, rec.Moves, next) {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning: the move retakes a ko")
			}

			text := strings.TrimSpace(string(raw))
			if rec.Variation != nil {
				rec.Moves = append(rec.Moves, cell)
				text = sgf.Serialize(rec.ToTree())
			} else {
				text = sgf.AppendMove(text, color, cell)
			}
			if write {
				return os.WriteFile(path, []byte(text+"\n"), 0o644)
			}
			if opts.output == "json" {
				return printJSON(cmd.OutOrStdout(), map[string]any{"sgf": text, "position": next})
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&write, "write", "w", false, "Write the result back to the file")
	return cmd
}
