package metadata

import (
	"errors"
	"fmt"
	"sort"

	"github.com/mgpai22/lekh/internal/logging"
)

// information dictionary keys that map onto Record fields
const (
	KeyAuthor       = "Author"
	KeyTitle        = "Title"
	KeyKeywords     = "Keywords"
	KeyCreationDate = "CreationDate"
	KeyModDate      = "ModDate"
)

// Extractor builds Records from raw document properties. Each field is
// extracted on its own; a field that cannot be decoded is logged and left out
// without affecting the others.
type Extractor struct {
	logger *logging.Logger
}

func NewExtractor(logger *logging.Logger) *Extractor {
	return &Extractor{logger: logging.OrNop(logger)}
}

func (e *Extractor) Logger() *logging.Logger {
	return e.logger
}

func (e *Extractor) Extract(info Info, pages int) *Record {
	if pages < 1 {
		pages = 1
	}

	record := &Record{
		Properties: Properties{
			Kind:  KindText,
			Attrs: Attrs{Pages: pages},
		},
	}

	// sorted for stable log output
	keys := make([]string, 0, len(info))
	for key := range info {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := info[key]

		var err error
		switch key {
		case KeyAuthor:
			record.Authors, err = parseAuthors(value)
		case KeyTitle:
			record.Title, err = parseTitle(value)
		case KeyKeywords:
			record.Keywords, err = parseKeywords(value)
		case KeyCreationDate:
			record.CreatedAt, err = parseDate(value)
		case KeyModDate:
			record.UpdatedAt, err = parseDate(value)
		default:
			continue
		}

		if err != nil && !errors.Is(err, errEmpty) {
			e.logger.Debugw("Skipping document property",
				"key", key,
				"error", err,
			)
		}
	}

	return record
}

// semicolon separated author names
func parseAuthors(value any) ([]string, error) {
	text, err := decodeTrimmed(value)
	if err != nil {
		return nil, err
	}
	return splitTrimmed(text, ";"), nil
}

func parseTitle(value any) (string, error) {
	return decodeTrimmed(value)
}

// comma separated keywords
func parseKeywords(value any) ([]string, error) {
	text, err := decodeTrimmed(value)
	if err != nil {
		return nil, err
	}
	return splitTrimmed(text, ","), nil
}

func parseDate(value any) (string, error) {
	text, err := decodeText(value)
	if err != nil {
		return "", err
	}
	t, ok := ParseDate(text)
	if !ok {
		return "", fmt.Errorf("malformed PDF date %q", text)
	}
	return FormatDate(t), nil
}
