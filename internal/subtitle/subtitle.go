package subtitle

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// returned by a Writer that was never bound to a format
	ErrNoFormat          = errors.New("writer has no output format")
	ErrUnsupportedFormat = errors.New("unsupported output format")
)

// represents supported output formats
type Format string

const (
	FormatTXT  Format = "txt"
	FormatVTT  Format = "vtt"
	FormatSRT  Format = "srt"
	FormatTSV  Format = "tsv"
	FormatJSON Format = "json"
)

// every format, in the order "all" expands to
func AllFormats() []Format {
	return []Format{FormatTXT, FormatVTT, FormatSRT, FormatTSV, FormatJSON}
}

// file extension for a format, without the dot
func (f Format) Extension() string {
	return string(f)
}

func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllFormats() {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// ParseFormats reads a comma separated list such as "srt,vtt". The word
// "all" selects every format. Duplicates are dropped, order is kept.
func ParseFormats(s string) ([]Format, error) {
	var formats []Format
	seen := make(map[Format]bool)

	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if strings.EqualFold(part, "all") {
			return AllFormats(), nil
		}
		f, err := ParseFormat(part)
		if err != nil {
			return nil, err
		}
		if !seen[f] {
			seen[f] = true
			formats = append(formats, f)
		}
	}

	if len(formats) == 0 {
		return nil, fmt.Errorf("no output format given")
	}
	return formats, nil
}
