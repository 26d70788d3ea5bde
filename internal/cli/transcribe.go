package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mgpai22/lekh/internal/audio"
	"github.com/mgpai22/lekh/internal/transcribe"
)

var transcribeCmd = &cobra.Command{
	Use:   "transcribe [media_file]",
	Short: "Transcribe an audio or video file and write the transcript",
	Long: `Transcribe runs an audio or video file through a transcription provider and
writes the resulting timed transcript in the requested formats.

The audio track is converted to compact mono mp3, split into chunks and the
chunks are transcribed in parallel. Segment times are moved back onto the
timeline of the original file before writing.

Providers:
  openai  Whisper (OPENAI_API_KEY). Transcript language must be native or english.
  gemini  Google Gemini (GEMINI_API_KEY).

Examples:
  lekh transcribe talk.mp4
  lekh transcribe podcast.mp3 -p gemini -f srt,txt
  lekh transcribe lecture.mkv --transcript-language english -d 5 --concurrency 4`,
	Args: cobra.ExactArgs(1),
	RunE: runTranscribe,
}

func init() {
	rootCmd.AddCommand(transcribeCmd)
	addWriteFlags(transcribeCmd)

	transcribeCmd.Flags().
		StringP("provider", "p", "", "Transcription provider: openai or gemini (default from config)")
	transcribeCmd.Flags().
		StringP("api-key", "k", "", "API key (or set OPENAI_API_KEY / GEMINI_API_KEY)")
	transcribeCmd.Flags().
		String("model", "", "Model to use (default: whisper-1 or gemini-2.5-flash)")
	transcribeCmd.Flags().
		StringP("language", "l", "", "Language of the audio (e.g., en, es, fr)")
	transcribeCmd.Flags().
		String("transcript-language", "", "Output language for transcript (e.g., 'english', or 'native' for original language)")
	transcribeCmd.Flags().
		IntP("chunk-duration", "d", 0, "Chunk duration in minutes for splitting audio (default from config)")
	transcribeCmd.Flags().
		Int("concurrency", 0, "Number of parallel transcription workers (default from config)")
	transcribeCmd.Flags().
		String("prompt", "", "Extra instructions or vocabulary for the provider")
}

// whisper can only translate into english
func isValidOpenAITranscriptLanguage(lang string) bool {
	switch strings.ToLower(strings.TrimSpace(lang)) {
	case "", "native", "english", "en":
		return true
	default:
		return false
	}
}

func apiKeyEnv(provider transcribe.Provider) string {
	if provider == transcribe.ProviderGemini {
		return "GEMINI_API_KEY"
	}
	return "OPENAI_API_KEY"
}

func stringFlag(cmd *cobra.Command, name, fallback string) string {
	if cmd.Flags().Changed(name) {
		value, _ := cmd.Flags().GetString(name)
		return value
	}
	return fallback
}

func intFlag(cmd *cobra.Command, name string, fallback int) int {
	if cmd.Flags().Changed(name) {
		value, _ := cmd.Flags().GetInt(name)
		return value
	}
	return fallback
}

func runTranscribe(cmd *cobra.Command, args []string) error {
	mediaPath := args[0]
	ctx := cmd.Context()

	if _, err := os.Stat(mediaPath); err != nil {
		return fmt.Errorf("file not found: %s", mediaPath)
	}
	if !audio.IsMediaFile(mediaPath) {
		return fmt.Errorf("unsupported file type: %s (expected audio or video file)", filepath.Ext(mediaPath))
	}

	formats, err := outputFormats(cmd)
	if err != nil {
		return err
	}

	provider, err := transcribe.ParseProvider(stringFlag(cmd, "provider", cfg.Transcribe.Provider))
	if err != nil {
		return err
	}

	transcriptLang := stringFlag(cmd, "transcript-language", cfg.Transcribe.TranscriptLanguage)
	if provider == transcribe.ProviderOpenAI && !isValidOpenAITranscriptLanguage(transcriptLang) {
		return fmt.Errorf("openai can only transcribe in the native language or translate to english, got %q", transcriptLang)
	}

	chunkMinutes := intFlag(cmd, "chunk-duration", cfg.Transcribe.ChunkMinutes)
	if chunkMinutes < 1 {
		return fmt.Errorf("chunk duration must be at least 1 minute, got %d", chunkMinutes)
	}
	concurrency := intFlag(cmd, "concurrency", cfg.Transcribe.Concurrency)

	apiKey, _ := cmd.Flags().GetString("api-key")
	if apiKey == "" {
		apiKey = os.Getenv(apiKeyEnv(provider))
	}
	if apiKey == "" {
		return fmt.Errorf("%s API key is required: use --api-key flag or set %s environment variable", provider, apiKeyEnv(provider))
	}

	prompt, _ := cmd.Flags().GetString("prompt")
	transcribeOpts := transcribe.Options{
		Language:           stringFlag(cmd, "language", cfg.Transcribe.Language),
		TranscriptLanguage: transcriptLang,
		Model:              stringFlag(cmd, "model", cfg.Transcribe.Model),
		Prompt:             prompt,
	}

	logger.Infow("Starting transcription",
		"input", mediaPath,
		"provider", provider,
		"formats", formats,
		"chunk_minutes", chunkMinutes,
		"concurrency", concurrency,
	)

	tempDir, err := os.MkdirTemp("", "lekh-*")
	if err != nil {
		return fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer os.RemoveAll(tempDir)

	logger.Infow("Preparing audio for transcription")
	audioPath := filepath.Join(tempDir, "audio.mp3")
	if err := audio.Prepare(ctx, mediaPath, audioPath, audio.DefaultOptions()); err != nil {
		return fmt.Errorf("failed to prepare audio: %w", err)
	}

	duration, err := audio.GetDuration(audioPath)
	if err != nil {
		return fmt.Errorf("failed to get audio duration: %w", err)
	}
	logger.Infow("Audio prepared",
		"duration", time.Duration(duration*float64(time.Second)).Round(time.Millisecond).String(),
	)

	chunkDur := time.Duration(chunkMinutes) * time.Minute
	chunks, err := audio.Chunk(ctx, audioPath, chunkDur, filepath.Join(tempDir, "chunks"), concurrency)
	if err != nil {
		return fmt.Errorf("failed to split audio: %w", err)
	}
	defer audio.Cleanup(chunks)

	logger.Infow("Created audio chunks",
		"count", len(chunks),
		"chunk_duration", chunkDur.String(),
	)

	transcriber, err := transcribe.Factory(ctx, provider, apiKey, transcribeOpts)
	if err != nil {
		return fmt.Errorf("failed to create transcriber: %w", err)
	}

	result, err := transcriber.TranscribeWithChunks(ctx, chunks, concurrency)
	if err != nil {
		return fmt.Errorf("transcription failed: %w", err)
	}

	logger.Infow("Transcription complete",
		"segments", len(result.Segments),
	)

	paths, err := writeTranscript(result, mediaPath, formats, writerOptions(cmd))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Transcript written for %s\n", mediaPath)
	for _, p := range paths {
		abs, _ := filepath.Abs(p)
		fmt.Fprintf(out, "  %s\n", abs)
	}
	fmt.Fprintf(out, "  Segments: %d\n", len(result.Segments))

	return nil
}
