package transcript

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"
)

// keys engines use for the segment list, in lookup order
var segmentKeys = []string{"segments", "transcript", "results"}

// Load reads a transcript file. The format is chosen by extension:
// .json (whisper-style result), .srt or .vtt.
func Load(path string) (*Result, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".json":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read transcript: %w", err)
		}
		return ParseJSON(data)
	case ".srt":
		return parseSRTFile(path)
	case ".vtt":
		return parseVTTFile(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

// ParseJSON accepts a result object with a segment list under one of the
// known keys, or a bare array of segments.
func ParseJSON(data []byte) (*Result, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("invalid transcript JSON")
	}

	root := gjson.ParseBytes(data)
	result := &Result{Segments: []Segment{}}

	var list gjson.Result
	switch {
	case root.IsArray():
		list = root
	case root.IsObject():
		result.Text = root.Get("text").String()
		result.Language = root.Get("language").String()
		result.Duration = root.Get("duration").Float()
		for _, key := range segmentKeys {
			if v := root.Get(key); v.IsArray() {
				list = v
				break
			}
		}
		if !list.Exists() {
			if result.Text == "" {
				return nil, fmt.Errorf("no segments or text in transcript")
			}
			// whole text as one segment, like engines without timestamps
			result.Segments = append(result.Segments, Segment{
				Start: 0,
				End:   result.Duration,
				Text:  result.Text,
			})
			return result, nil
		}
	default:
		return nil, fmt.Errorf("transcript JSON must be an object or array")
	}

	var parseErr error
	list.ForEach(func(_, seg gjson.Result) bool {
		start, end, text := seg.Get("start"), seg.Get("end"), seg.Get("text")
		if start.Type != gjson.Number || end.Type != gjson.Number {
			parseErr = fmt.Errorf(
				"segment %d: start and end must be numbers",
				len(result.Segments),
			)
			return false
		}
		result.Segments = append(result.Segments, Segment{
			Start: start.Float(),
			End:   end.Float(),
			Text:  text.String(),
		})
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}

	return result, nil
}
