package subtitle

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mgpai22/lekh/internal/transcript"
)

// Renderer turns a transcription result into one text artifact.
//
// Textual renderers format each segment completely and hand it to w in a
// single Write, so a failing sink never receives half a segment.
type Renderer interface {
	Render(w io.Writer, result *transcript.Result) error
}

// plain text, one trimmed segment per line
type TXTRenderer struct{}

// WebVTT
type VTTRenderer struct{}

// SubRip
type SRTRenderer struct{}

// tab separated, integer milliseconds
type TSVRenderer struct{}

// the result object itself
type JSONRenderer struct{}

func NewRenderer(format Format) (Renderer, error) {
	switch format {
	case FormatTXT:
		return TXTRenderer{}, nil
	case FormatVTT:
		return VTTRenderer{}, nil
	case FormatSRT:
		return SRTRenderer{}, nil
	case FormatTSV:
		return TSVRenderer{}, nil
	case FormatJSON:
		return JSONRenderer{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

func (TXTRenderer) Render(w io.Writer, result *transcript.Result) error {
	for _, seg := range result.Segments {
		if _, err := io.WriteString(w, strings.TrimSpace(seg.Text)+"\n"); err != nil {
			return err
		}
	}
	return nil
}

func (VTTRenderer) Render(w io.Writer, result *transcript.Result) error {
	if _, err := io.WriteString(w, "WEBVTT\n\n"); err != nil {
		return err
	}
	for _, seg := range result.Segments {
		block := fmt.Sprintf("%s --> %s\n%s\n\n",
			FormatTimestamp(seg.Start, vttClock),
			FormatTimestamp(seg.End, vttClock),
			escapeCueText(seg.Text))
		if _, err := io.WriteString(w, block); err != nil {
			return err
		}
	}
	return nil
}

func (SRTRenderer) Render(w io.Writer, result *transcript.Result) error {
	for i, seg := range result.Segments {
		// index (1-based)
		block := fmt.Sprintf("%d\n%s --> %s\n%s\n\n",
			i+1,
			FormatTimestamp(seg.Start, srtClock),
			FormatTimestamp(seg.End, srtClock),
			escapeCueText(seg.Text))
		if _, err := io.WriteString(w, block); err != nil {
			return err
		}
	}
	return nil
}

func (TSVRenderer) Render(w io.Writer, result *transcript.Result) error {
	if _, err := io.WriteString(w, "start\tend\ttext\n"); err != nil {
		return err
	}
	for _, seg := range result.Segments {
		text := strings.ReplaceAll(strings.TrimSpace(seg.Text), "\t", " ")
		line := fmt.Sprintf("%d\t%d\t%s\n",
			Milliseconds(seg.Start),
			Milliseconds(seg.End),
			text)
		if _, err := io.WriteString(w, line); err != nil {
			return err
		}
	}
	return nil
}

func (JSONRenderer) Render(w io.Writer, result *transcript.Result) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc.Encode(result)
}

// "-->" ends a cue timing line, so it may not appear in cue text. Replacing
// repeats until none is left ("--->" would otherwise become "-->").
func escapeCueText(text string) string {
	text = strings.TrimSpace(text)
	for strings.Contains(text, "-->") {
		text = strings.ReplaceAll(text, "-->", "->")
	}
	return text
}
