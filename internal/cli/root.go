package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mgpai22/lekh/internal/audio"
	"github.com/mgpai22/lekh/internal/config"
	"github.com/mgpai22/lekh/internal/logging"
)

var (
	verbose    bool
	configPath string
	outputDir  string
	logger     *logging.Logger
	cfg        config.Config
)

var rootCmd = &cobra.Command{
	Use:   "lekh",
	Short: "Transcript writer and document metadata extractor",
	Long: `Lekh turns timed transcripts into caption and text files and pulls
descriptive metadata out of PDF documents.

Transcripts can be loaded from JSON, SRT or VTT files, or produced from
audio and video with OpenAI Whisper or Google Gemini, and written as
txt, vtt, srt, tsv and json.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = logging.NewLogger(verbose)

		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded

		if cmd.Flags().Changed("output-dir") {
			cfg.OutputDir = outputDir
		}
		audio.SetFFmpegPath(cfg.FFmpegPath)

		logger.Debugw("Loaded config",
			"config", configPath,
			"output_dir", cfg.OutputDir,
			"formats", cfg.Formats,
			"durable", cfg.Durable,
		)
		return nil
	},
}

// Execute runs the root command until it finishes or the process is
// interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().
		BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		StringVarP(&configPath, "config", "c", "", "Config file (default ./"+config.DefaultFile+" if present)")
	rootCmd.PersistentFlags().
		StringVarP(&outputDir, "output-dir", "o", "", "Directory for generated files (default from config, then .)")
}
