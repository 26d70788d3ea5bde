package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var metadataCmd = &cobra.Command{
	Use:   "metadata [pdf_file]",
	Short: "Extract descriptive metadata from a PDF document",
	Long: `Metadata reads the document information dictionary and page count of a PDF
and prints a JSON record with its authors, title, keywords and dates.

Properties that are missing or cannot be decoded are left out of the record.
With --output-dir the record is saved as <dir>/<file>.json instead of printed.

Examples:
  lekh metadata report.pdf
  lekh metadata report.pdf -o meta`,
	Args: cobra.ExactArgs(1),
	RunE: runMetadata,
}

func init() {
	rootCmd.AddCommand(metadataCmd)
}

func runMetadata(cmd *cobra.Command, args []string) error {
	path := args[0]

	record, err := extractRecord(path)
	if err != nil {
		return err
	}

	logger.Debugw("Extracted metadata",
		"input", path,
		"pages", record.Properties.Attrs.Pages,
		"authors", len(record.Authors),
	)

	if !cmd.Flags().Changed("output-dir") {
		return encodeRecord(cmd.OutOrStdout(), record)
	}

	out, err := saveRecord(record, path)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}
