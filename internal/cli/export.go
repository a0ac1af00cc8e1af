package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/s-boardman/enviroplus-datalogger/internal/database"
	"github.com/s-boardman/enviroplus-datalogger/internal/export"
	"github.com/s-boardman/enviroplus-datalogger/internal/models"
)

var (
	exportOutput   string
	exportCompress bool
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all measurements as CSV",
	Long: `Export every logged measurement as CSV, oldest first, for analysis
outside the logger.

Output goes to stdout unless --output names a file. A .gz output name
implies --compress.

Examples:
  enviroplus-datalogger export > measurements.csv
  enviroplus-datalogger export --output measurements.csv.gz`,
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	logger.Debug("Exporting measurements", "db_file", cfg.DBFile, "output", exportOutput)

	var out io.Writer = cmd.OutOrStdout()
	if exportOutput != "" && exportOutput != "-" {
		f, err := os.Create(exportOutput)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}
	compress := exportCompress || strings.HasSuffix(exportOutput, ".gz")

	w, err := export.NewWriter(out, compress)
	if err != nil {
		return fmt.Errorf("failed to start export: %w", err)
	}

	store := database.NewStore(cfg.DBFile, logger)
	if err := store.EnsureSchema(); err != nil {
		return err
	}

	count := 0
	err = store.ForEach(func(m models.Measurement) error {
		count++
		return w.Write(m)
	})
	if err != nil {
		return fmt.Errorf("failed to export measurements: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finish export: %w", err)
	}

	logger.Debug("Export complete", "measurements", count)
	return nil
}

func init() {
	// Add export command to root
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "File to write the CSV to instead of stdout")
	exportCmd.Flags().BoolVar(&exportCompress, "compress", false, "Gzip-compress the output")
}
