package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/okian/certrep/internal/domain/refdata"
)

func newRefdataCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refdata",
		Short: "Print the embedded reference data",
		Long: `Prints the reference data compiled into certrep as YAML. Edit the output
and pass it to --reference-data, or set reference_data_path for serve.

Examples:
  certrep refdata > issuers.yaml
  certrep analyze --reference-data issuers.yaml cert.txt`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprint(cmd.OutOrStdout(), string(refdata.DefaultYAML()))
			return err
		},
	}
}
