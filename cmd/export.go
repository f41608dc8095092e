package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"carbon-track/app"
	"carbon-track/services/aggregate"
	"carbon-track/services/records"
	"carbon-track/utils"
)

var (
	exportUser     string
	exportFilter   string
	exportCategory string
	exportOut      string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a user's emission history as CSV",
	Example: `  carbon-track export --user ana@example.com
  carbon-track export --user ana@example.com --category fuel --out -`,
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := aggregate.ParseFilter(exportFilter, exportCategory)
		if err != nil {
			return err
		}

		// l'export ne doit jamais amorcer le jeu de démonstration
		cfg.SeedDemoData = false
		a, err := app.New(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		identity := utils.NormalizeEmail(exportUser)
		if _, err := a.Registry.User(cmd.Context(), identity); err != nil {
			if errors.Is(err, records.ErrUnknownUser) {
				return fmt.Errorf("no logged-in user %q", identity)
			}
			return err
		}
		store, err := a.Registry.Store(cmd.Context(), identity)
		if err != nil {
			return err
		}
		if w := store.Warning(); w != nil {
			logger.Warn("exporting from a degraded history", zap.Error(w))
		}

		view := f.Apply(store.List())
		if exportOut == "-" {
			return aggregate.WriteCSV(cmd.OutOrStdout(), view)
		}
		return writeFile(exportOut, func(w io.Writer) error {
			return aggregate.WriteCSV(w, view)
		}, func() {
			logger.Info("history exported", zap.String("file", exportOut), zap.Int("records", len(view)))
		})
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportUser, "user", "", "Email of the user to export (required)")
	exportCmd.Flags().StringVar(&exportFilter, "filter", "", "Case-insensitive description filter")
	exportCmd.Flags().StringVar(&exportCategory, "category", aggregate.CategoryAll, "electricity, fuel, waste or all")
	exportCmd.Flags().StringVar(&exportOut, "out", aggregate.CSVFileName, `Output file ("-" for stdout)`)
	_ = exportCmd.MarkFlagRequired("user")
}

func writeFile(path string, write func(io.Writer) error, done func()) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	done()
	return nil
}
