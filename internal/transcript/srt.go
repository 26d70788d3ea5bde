package transcript

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
)

var srtTimestampRegex = regexp.MustCompile(
	`(\d{2,}):(\d{2}):(\d{2}),(\d{3})\s*-->\s*(\d{2,}):(\d{2}):(\d{2}),(\d{3})`,
)

// pending cue while scanning
type cue struct {
	start, end float64
	timed      bool
	lines      []string
}

func (c *cue) segment() Segment {
	return Segment{
		Start: c.start,
		End:   c.end,
		Text:  strings.Join(c.lines, "\n"),
	}
}

func parseSRTFile(path string) (*Result, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SRT file: %w", err)
	}
	defer file.Close()

	result := &Result{Segments: []Segment{}}
	scanner := bufio.NewScanner(file)

	var current *cue
	lineNum := 0

	for scanner.Scan() {
		line := scanner.Text()
		lineNum++

		if lineNum == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}

		// a blank line closes a timed cue, even one without text
		if strings.TrimSpace(line) == "" {
			if current != nil && current.timed {
				result.Segments = append(result.Segments, current.segment())
				current = nil
			}
			continue
		}

		if current == nil {
			if _, err := strconv.Atoi(strings.TrimSpace(line)); err == nil {
				current = &cue{}
				continue
			}
		}

		if current != nil && !current.timed {
			matches := srtTimestampRegex.FindStringSubmatch(line)
			if len(matches) == 9 {
				start, err := clock(matches[1], matches[2], matches[3], matches[4])
				if err != nil {
					return nil, fmt.Errorf(
						"invalid start timestamp at line %d: %w",
						lineNum,
						err,
					)
				}
				end, err := clock(matches[5], matches[6], matches[7], matches[8])
				if err != nil {
					return nil, fmt.Errorf(
						"invalid end timestamp at line %d: %w",
						lineNum,
						err,
					)
				}
				current.start, current.end, current.timed = start, end, true
				continue
			}
		}

		if current != nil && current.timed {
			current.lines = append(current.lines, line)
		}
	}

	if current != nil && current.timed {
		result.Segments = append(result.Segments, current.segment())
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading SRT file: %w", err)
	}

	return result, nil
}

// converts clock fields to seconds, keeping millisecond precision exact
func clock(hours, minutes, seconds, millis string) (float64, error) {
	h, err := strconv.Atoi(hours)
	if err != nil {
		return 0, err
	}
	m, err := strconv.Atoi(minutes)
	if err != nil {
		return 0, err
	}
	s, err := strconv.Atoi(seconds)
	if err != nil {
		return 0, err
	}
	ms, err := strconv.Atoi(millis)
	if err != nil {
		return 0, err
	}

	total := int64(h)*3_600_000 + int64(m)*60_000 + int64(s)*1_000 + int64(ms)
	return float64(total) / 1000, nil
}
