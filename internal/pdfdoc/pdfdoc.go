package pdfdoc

import (
	"fmt"
	"io"
	"os"

	"github.com/ledongthuc/pdf"

	"github.com/mgpai22/lekh/internal/logging"
	"github.com/mgpai22/lekh/internal/metadata"
)

// parsed document: the information dictionary and the page count
type Document struct {
	Info  metadata.Info
	Pages int
}

type Option func(*options)

type options struct {
	logger *logging.Logger
}

// logger for skipped properties; defaults to a no-op
func WithLogger(logger *logging.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func newOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	o.logger = logging.OrNop(o.logger)
	return o
}

// reads the PDF at path
func Open(path string, opts ...Option) (*Document, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	return Read(file, stat.Size(), opts...)
}

// reads a PDF from any random access source
func Read(r io.ReaderAt, size int64, opts ...Option) (*Document, error) {
	reader, err := newReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("failed to parse PDF: %w", err)
	}
	return read(reader, newOptions(opts))
}

// the parser reports malformed objects by panicking
func recoverParse(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("malformed PDF: %v", r)
	}
}

func newReader(r io.ReaderAt, size int64) (reader *pdf.Reader, err error) {
	defer recoverParse(&err)
	return pdf.NewReader(r, size)
}

func numPage(reader *pdf.Reader) (pages int, err error) {
	defer recoverParse(&err)
	return reader.NumPage(), nil
}

func read(reader *pdf.Reader, o options) (*Document, error) {
	pages, err := numPage(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to count pages: %w", err)
	}

	return &Document{
		Info:  infoDict(reader, o.logger),
		Pages: pages,
	}, nil
}

func infoValue(reader *pdf.Reader) (dict pdf.Value, err error) {
	defer recoverParse(&err)
	return reader.Trailer().Key("Info"), nil
}

// resolves one entry; indirect values are only parsed here
func resolveKey(dict pdf.Value, key string) (value any, err error) {
	defer recoverParse(&err)

	v := dict.Key(key)
	switch v.Kind() {
	case pdf.String:
		return []byte(v.RawString()), nil
	case pdf.Name:
		return v.Name(), nil
	case pdf.Integer:
		return v.Int64(), nil
	case pdf.Real:
		return v.Float64(), nil
	case pdf.Bool:
		return v.Bool(), nil
	}
	return nil, nil
}

// Strings stay undecoded bytes; interpreting them is the extractor's job. A
// dictionary that cannot be parsed at all yields no properties, a single
// broken entry is skipped.
func infoDict(reader *pdf.Reader, logger *logging.Logger) metadata.Info {
	dict, err := infoValue(reader)
	if err != nil {
		logger.Debugw("Skipping document information dictionary", "error", err)
		return nil
	}
	if dict.Kind() != pdf.Dict {
		return nil
	}

	info := make(metadata.Info)
	for _, key := range dict.Keys() {
		value, err := resolveKey(dict, key)
		if err != nil {
			logger.Debugw("Skipping document property",
				"key", key,
				"error", err,
			)
			continue
		}
		if value != nil {
			info[key] = value
		}
	}
	return info
}

// opens path and runs it through the extractor
func Extract(path string, extractor *metadata.Extractor) (*metadata.Record, error) {
	doc, err := Open(path, WithLogger(extractor.Logger()))
	if err != nil {
		return nil, err
	}
	return extractor.Extract(doc.Info, doc.Pages), nil
}
