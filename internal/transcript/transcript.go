package transcript

import (
	"errors"
	"fmt"
	"math"
)

var ErrUnsupportedFormat = errors.New("unsupported transcript format")

// Segment is one timed span of recognised speech. Times are in seconds.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Result is the output of a transcription engine, segments in playback order.
type Result struct {
	Text     string    `json:"text,omitempty"`
	Language string    `json:"language,omitempty"`
	Duration float64   `json:"duration,omitempty"`
	Segments []Segment `json:"segments"`
}

// reports the first segment with unusable times
func (r *Result) Validate() error {
	for i, seg := range r.Segments {
		switch {
		case math.IsNaN(seg.Start) || math.IsNaN(seg.End):
			return fmt.Errorf("segment %d: time is NaN", i)
		case seg.Start < 0:
			return fmt.Errorf("segment %d: negative start %v", i, seg.Start)
		case seg.End < seg.Start:
			return fmt.Errorf(
				"segment %d: end %v before start %v",
				i,
				seg.End,
				seg.Start,
			)
		}
	}
	return nil
}

// shifts every segment by offset seconds, used when merging chunked results
func (r *Result) Shift(offset float64) {
	for i := range r.Segments {
		r.Segments[i].Start += offset
		r.Segments[i].End += offset
	}
}
