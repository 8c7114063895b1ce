package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/okian/certrep/internal/domain/scoring"
)

func newScoreCmd() *cobra.Command {
	var featuresPath string
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score a feature set",
		Long: `Reads a JSON feature set and prints its score and tier. Missing fields
take the scoring defaults, so {} is a valid input.

Examples:
  echo '{"issuer_rep": 90, "verified": true}' | certrep score
  certrep score --features features.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in := cmd.InOrStdin()
			if featuresPath != "" {
				f, err := os.Open(featuresPath)
				if err != nil {
					return fmt.Errorf("open features: %w", err)
				}
				defer f.Close()
				in = f
			}
			return runScore(in, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&featuresPath, "features", "", "features JSON file (default is stdin)")
	return cmd
}

func runScore(in io.Reader, out io.Writer) error {
	data, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("read features: %w", err)
	}
	p, err := scoring.DecodePartial(data)
	if err != nil {
		return err
	}
	return json.NewEncoder(out).Encode(scoring.ComposePartial(p))
}
