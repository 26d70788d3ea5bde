package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mgpai22/lekh/internal/subtitle"
	"github.com/mgpai22/lekh/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch [directory]",
	Short: "Process transcripts and PDFs as they are dropped into a directory",
	Long: `Watch monitors a directory and handles every new or updated file once it has
stopped changing:

  .json .srt .vtt  rendered into the configured formats
  .pdf             metadata record saved as <file>.json

Outputs go to --output-dir, which must differ from the watched directory.
Stop with Ctrl-C.

Examples:
  lekh watch inbox -o out
  lekh watch inbox -o out -f srt,vtt --delay 2s`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	addWriteFlags(watchCmd)

	watchCmd.Flags().
		Duration("delay", watch.DefaultDelay, "How long a file must be quiet before it is processed")
}

// refuses to write into the watched directory, outputs would be picked up again
func checkWatchDirs(watchDir, outDir string) error {
	absWatch, err := filepath.Abs(watchDir)
	if err != nil {
		return err
	}
	absOut, err := filepath.Abs(outDir)
	if err != nil {
		return err
	}
	if absWatch == absOut {
		return fmt.Errorf("output directory must differ from the watched directory %s", watchDir)
	}
	return nil
}

// routes a settled file to rendering or metadata extraction by extension
func fileHandler(formats []subtitle.Format, opts []subtitle.Option) watch.Handler {
	return func(_ context.Context, path string) error {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".pdf":
			record, err := extractRecord(path)
			if err != nil {
				return err
			}
			_, err = saveRecord(record, path)
			return err
		default:
			_, err := renderFile(path, formats, opts)
			return err
		}
	}
}

func runWatch(cmd *cobra.Command, args []string) error {
	dir := args[0]

	if err := checkWatchDirs(dir, cfg.OutputDir); err != nil {
		return err
	}

	formats, err := outputFormats(cmd)
	if err != nil {
		return err
	}
	delay, _ := cmd.Flags().GetDuration("delay")

	w, err := watch.New(dir, fileHandler(formats, writerOptions(cmd)),
		watch.WithDelay(delay),
		watch.WithExtensions(".json", ".srt", ".vtt", ".pdf"),
		watch.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	return w.Run(cmd.Context())
}
