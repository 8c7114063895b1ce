package main

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"
)

var errUnsupportedInput = errors.New("unsupported input")

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

// newRootCmd builds the certrep command tree.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "certrep",
		Short: "Score the credibility of certificates",
		Long: `certrep reads the plain text of a certificate, extracts lexical signals,
resolves the issuer against reference data and composes a credibility score
and tier.

Run it as an HTTP service with "serve", or analyze files directly with
"analyze" and score precomputed features with "score".`,
		SilenceUsage: true,
	}

	root.PersistentFlags().String("reference-data", "", "reference data YAML file (default is the embedded data set)")

	root.AddCommand(newServeCmd(), newAnalyzeCmd(), newScoreCmd(), newRefdataCmd())
	return root
}
