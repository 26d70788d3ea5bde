package subtitle

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mgpai22/lekh/internal/logging"
	"github.com/mgpai22/lekh/internal/transcript"
)

// Writer renders results into <outputDir>/<source basename>.<ext>.
// A zero Writer has no format and refuses to write.
type Writer struct {
	outputDir string
	format    Format
	renderer  Renderer
	durable   bool
	logger    *logging.Logger
}

type Option func(*Writer)

// fsync the output after every segment
func WithDurable(durable bool) Option {
	return func(w *Writer) {
		w.durable = durable
	}
}

func WithLogger(logger *logging.Logger) Option {
	return func(w *Writer) {
		w.logger = logger
	}
}

func NewWriter(format Format, outputDir string, opts ...Option) (*Writer, error) {
	renderer, err := NewRenderer(format)
	if err != nil {
		return nil, err
	}
	if outputDir == "" {
		outputDir = "."
	}

	w := &Writer{
		outputDir: outputDir,
		format:    format,
		renderer:  renderer,
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = logging.OrNop(w.logger)

	return w, nil
}

func (w *Writer) Format() Format {
	return w.format
}

// output file for a source path; the source extension is kept (a.mp3 -> a.mp3.srt)
func (w *Writer) OutputPath(sourcePath string) string {
	return filepath.Join(w.outputDir, filepath.Base(sourcePath)+"."+w.format.Extension())
}

// Write renders result once into the output file derived from sourcePath and
// returns that path. I/O errors are returned as-is (wrapped), never retried.
func (w *Writer) Write(result *transcript.Result, sourcePath string) (path string, err error) {
	if w.renderer == nil {
		return "", ErrNoFormat
	}
	if result == nil {
		return "", errors.New("nil transcription result")
	}

	if err := os.MkdirAll(w.outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path = w.OutputPath(sourcePath)
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
	}()

	if err := w.renderer.Render(durableSink(file, w.durable), result); err != nil {
		return "", fmt.Errorf("failed to write %s output: %w", w.format, err)
	}

	w.logger.Debugw("Wrote transcript",
		"format", w.format,
		"path", path,
		"segments", len(result.Segments),
	)

	return path, nil
}

// WriteAll writes result once per format and returns the written paths in
// the same order. It stops at the first failure.
func WriteAll(
	result *transcript.Result,
	sourcePath string,
	outputDir string,
	formats []Format,
	opts ...Option,
) ([]string, error) {
	paths := make([]string, 0, len(formats))
	for _, format := range formats {
		writer, err := NewWriter(format, outputDir, opts...)
		if err != nil {
			return paths, err
		}
		path, err := writer.Write(result, sourcePath)
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// a sink that can force its buffered data to stable storage
type syncer interface {
	io.Writer
	Sync() error
}

// wraps w so each write is followed by Sync when durable and w supports it
func durableSink(w io.Writer, durable bool) io.Writer {
	if s, ok := w.(syncer); ok && durable {
		return &syncWriter{sink: s}
	}
	return w
}

type syncWriter struct {
	sink syncer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	n, err := s.sink.Write(p)
	if err != nil {
		return n, err
	}
	return n, s.sink.Sync()
}
