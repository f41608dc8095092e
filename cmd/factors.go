package cmd

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"carbon-track/services/factors"
)

var factorsCmd = &cobra.Command{
	Use:   "factors",
	Short: "Print the active emission factor table as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		table := factors.Default()
		if cfg.FactorsFile != "" {
			t, err := factors.LoadFile(cfg.FactorsFile)
			if err != nil {
				return err
			}
			table = t
		}

		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		if err := enc.Encode(table); err != nil {
			return err
		}
		return enc.Close()
	},
}
