package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"goban/internal/domain/sgf"
)

type options struct {
	output string
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	opts := &options{output: "text"}

	rootCmd := &cobra.Command{
		Use:   "goban",
		Short: "Offline tools for SGF game records",
		Long: `goban replays, checks and scores SGF game records with the same rules
engine the game server uses.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&opts.output, "output", "o", opts.output, "Output format: text, json")

	rootCmd.AddCommand(newReplayCmd(opts))
	rootCmd.AddCommand(newCheckCmd(opts))
	rootCmd.AddCommand(newScoreCmd(opts))
	rootCmd.AddCommand(newPlayCmd(opts))

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func readRecord(path string) (sgf.Record, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return sgf.Record{}, err
	}
	tree, err := sgf.Parse(string(raw))
	if err != nil {
		return sgf.Record{}, fmt.Errorf("%s: %w", path, err)
	}
	rec, err := sgf.FromTree(tree)
	if err != nil {
		return sgf.Record{}, fmt.Errorf("%s: %w", path, err)
	}
	return rec, nil
}
