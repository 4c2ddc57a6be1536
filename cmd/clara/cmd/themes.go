package cmd

import (
	"fmt"
	"math/rand/v2"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/hyperxav/clara/internal/social"
	"github.com/hyperxav/clara/pkg/config"
)

func newThemesCmd() *cobra.Command {
	var sample int
	var seed uint64
	cmd := &cobra.Command{
		Use:   "themes",
		Short: "Show the theme weights in effect and optionally sample them",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			weights, err := social.ParseThemeWeights(config.GetEnv("CLARA_THEME_WEIGHTS", ""))
			if err != nil {
				return fmt.Errorf("CLARA_THEME_WEIGHTS: %w", err)
			}
			var rng *rand.Rand
			if seed != 0 {
				rng = rand.New(rand.NewPCG(seed, seed))
			}
			selector, err := social.NewThemeSelector(weights, rng)
			if err != nil {
				return err
			}
			logger.WithField("sample", sample).Debug("Listing themes")
			return printThemes(cmd, selector, sample)
		},
	}
	cmd.Flags().IntVar(&sample, "sample", 0, "draw N themes and print the observed frequencies")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "seed for --sample (0 picks a random seed)")
	return cmd
}

func printThemes(cmd *cobra.Command, selector *social.ThemeSelector, sample int) error {
	out := cmd.OutOrStdout()
	counts := make(map[social.Theme]int)
	for range sample {
		counts[selector.Pick()]++
	}

	bold := color.New(color.Bold)
	dim := color.New(color.Faint)
	_, _ = bold.Fprintf(out, "%-18s %8s", "THEME", "WEIGHT")
	if sample > 0 {
		_, _ = bold.Fprintf(out, " %8s", "OBSERVED")
	}
	fmt.Fprintln(out)

	for _, w := range selector.Weights() {
		line := fmt.Sprintf("%-18s %8.2f", w.Theme, w.Weight)
		if sample > 0 {
			line += fmt.Sprintf(" %8.3f", float64(counts[w.Theme])/float64(sample))
		}
		if w.Weight == 0 {
			_, _ = dim.Fprintln(out, line)
			continue
		}
		fmt.Fprintln(out, line)
	}
	return nil
}
