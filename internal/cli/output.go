package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mgpai22/lekh/internal/metadata"
	"github.com/mgpai22/lekh/internal/pdfdoc"
	"github.com/mgpai22/lekh/internal/subtitle"
	"github.com/mgpai22/lekh/internal/transcript"
)

// registers --format and --durable on commands that write transcripts
func addWriteFlags(cmd *cobra.Command) {
	cmd.Flags().
		StringP("format", "f", "", "Output formats: txt, vtt, srt, tsv, json, comma separated, or all (default from config)")
	cmd.Flags().
		Bool("durable", false, "Flush every segment to disk as it is written")
}

// flag value when given, config otherwise
func outputFormats(cmd *cobra.Command) ([]subtitle.Format, error) {
	if cmd.Flags().Changed("format") {
		value, _ := cmd.Flags().GetString("format")
		return subtitle.ParseFormats(value)
	}
	return cfg.OutputFormats()
}

func writerOptions(cmd *cobra.Command) []subtitle.Option {
	durable := cfg.Durable
	if cmd.Flags().Changed("durable") {
		durable, _ = cmd.Flags().GetBool("durable")
	}
	return []subtitle.Option{
		subtitle.WithDurable(durable),
		subtitle.WithLogger(logger),
	}
}

// writes result in every format into the output dir; segments that fail
// validation are reported but still written
func writeTranscript(
	result *transcript.Result,
	sourcePath string,
	formats []subtitle.Format,
	opts []subtitle.Option,
) ([]string, error) {
	if err := result.Validate(); err != nil {
		logger.Warnw("Transcript has invalid segment",
			"source", sourcePath,
			"error", err,
		)
	}

	paths, err := subtitle.WriteAll(result, sourcePath, cfg.OutputDir, formats, opts...)
	if err != nil {
		return paths, fmt.Errorf("failed to write transcript: %w", err)
	}

	logger.Infow("Wrote transcript files",
		"source", sourcePath,
		"segments", len(result.Segments),
		"files", len(paths),
	)
	return paths, nil
}

// loads a transcript file and writes it in every requested format
func renderFile(path string, formats []subtitle.Format, opts []subtitle.Option) ([]string, error) {
	result, err := transcript.Load(path)
	if err != nil {
		return nil, err
	}
	return writeTranscript(result, path, formats, opts)
}

func extractRecord(path string) (*metadata.Record, error) {
	return pdfdoc.Extract(path, metadata.NewExtractor(logger))
}

func encodeRecord(w io.Writer, record *metadata.Record) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(record)
}

// metadata file for a document: <dir>/<base>.json
func recordPath(dir, sourcePath string) string {
	return filepath.Join(dir, filepath.Base(sourcePath)+".json")
}

// writes the record as JSON into the output dir and returns the file path
func saveRecord(record *metadata.Record, sourcePath string) (path string, err error) {
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path = recordPath(cfg.OutputDir, sourcePath)
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create metadata file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
	}()

	if err := encodeRecord(file, record); err != nil {
		return "", fmt.Errorf("failed to write metadata: %w", err)
	}
	return path, nil
}
