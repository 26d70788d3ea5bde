package transcript

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// hours are optional on either side of the arrow
var vttTimestampRegex = regexp.MustCompile(
	`(?:(\d{2,}):)?(\d{2}):(\d{2})\.(\d{3})\s*-->\s*(?:(\d{2,}):)?(\d{2}):(\d{2})\.(\d{3})`,
)

func parseVTTFile(path string) (*Result, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open VTT file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	result := &Result{Segments: []Segment{}}
	scanner := bufio.NewScanner(file)

	var current *cue
	lineNum := 0
	headerParsed := false

	flush := func() {
		if current != nil && current.timed {
			result.Segments = append(result.Segments, current.segment())
		}
		current = nil
	}

	for scanner.Scan() {
		line := scanner.Text()
		lineNum++

		if lineNum == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		trimmed := strings.TrimSpace(line)

		if !headerParsed && strings.HasPrefix(trimmed, "WEBVTT") {
			headerParsed = true
			continue
		}

		// NOTE and STYLE blocks run until the next blank line
		if current == nil &&
			(strings.HasPrefix(trimmed, "NOTE") || strings.HasPrefix(trimmed, "STYLE")) {
			for scanner.Scan() {
				lineNum++
				if strings.TrimSpace(scanner.Text()) == "" {
					break
				}
			}
			continue
		}

		if trimmed == "" {
			flush()
			continue
		}

		if matches := vttTimestampRegex.FindStringSubmatch(line); len(matches) == 9 {
			flush()
			start, end, err := cueTimes(matches[1:5], matches[5:9], lineNum)
			if err != nil {
				return nil, err
			}
			current = &cue{start: start, end: end, timed: true}
			continue
		}

		// anything before the timing line is a cue identifier
		if current != nil {
			current.lines = append(current.lines, line)
		}
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading VTT file: %w", err)
	}

	return result, nil
}

// hour fields may be empty when the cue omits them
func cueTimes(startFields, endFields []string, lineNum int) (float64, float64, error) {
	for _, fields := range [][]string{startFields, endFields} {
		if fields[0] == "" {
			fields[0] = "0"
		}
	}
	start, err := clock(startFields[0], startFields[1], startFields[2], startFields[3])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid start timestamp at line %d: %w", lineNum, err)
	}
	end, err := clock(endFields[0], endFields[1], endFields[2], endFields[3])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid end timestamp at line %d: %w", lineNum, err)
	}
	return start, end, nil
}
