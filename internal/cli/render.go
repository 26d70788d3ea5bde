package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var renderCmd = &cobra.Command{
	Use:   "render [transcript_file...]",
	Short: "Write caption and text files from existing transcripts",
	Long: `Render loads timed transcripts and writes them in one or more output formats.

Input may be a JSON transcript (an array of {start, end, text} segments or an
object with a "segments" array), an SRT file or a WebVTT file. Each output is
named after the input file with the format extension appended, for example
talk.json -> talk.json.srt.

Examples:
  lekh render talk.json
  lekh render talk.srt -f vtt,txt -o captions
  lekh render *.json --format all --durable`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)
	addWriteFlags(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	formats, err := outputFormats(cmd)
	if err != nil {
		return err
	}
	opts := writerOptions(cmd)

	for _, path := range args {
		logger.Infow("Rendering transcript",
			"input", path,
			"formats", formats,
			"output_dir", cfg.OutputDir,
		)

		paths, err := renderFile(path, formats, opts)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		for _, p := range paths {
			fmt.Fprintln(cmd.OutOrStdout(), p)
		}
	}
	return nil
}
