package subtitle

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mgpai22/lekh/internal/transcript"
)

func TestWriterOutputPath(t *testing.T) {
	tmpDir := t.TempDir()
	writer, err := NewWriter(FormatSRT, tmpDir)
	if err != nil {
		t.Fatalf("NewWriter failed: %v", err)
	}

	got := writer.OutputPath("/media/uploads/interview.mp3")
	want := filepath.Join(tmpDir, "interview.mp3.srt")
	if got != want {
		t.Errorf("OutputPath = %q, want %q", got, want)
	}
}

func TestWriterWrite(t *testing.T) {
	tmpDir := t.TempDir()
	outDir := filepath.Join(tmpDir, "nested", "out")

	writer, err := NewWriter(FormatVTT, outDir, WithDurable(true))
	if err != nil {
		t.Fatalf("NewWriter failed: %v", err)
	}

	path, err := writer.Write(sampleResult(), "/somewhere/else/talk.wav")
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if path != filepath.Join(outDir, "talk.wav.vtt") {
		t.Errorf("unexpected output path %q", path)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	if !strings.HasPrefix(string(content), "WEBVTT\n\n00:00.000 --> 00:01.500\n") {
		t.Errorf("unexpected content: %q", content)
	}
}

func TestWriterOverwrites(t *testing.T) {
	tmpDir := t.TempDir()
	writer, err := NewWriter(FormatTXT, tmpDir)
	if err != nil {
		t.Fatalf("NewWriter failed: %v", err)
	}

	existing := filepath.Join(tmpDir, "a.mp3.txt")
	if err := os.WriteFile(existing, []byte("stale content that is longer\n"), 0644); err != nil {
		t.Fatal(err)
	}

	result := &transcript.Result{Segments: []transcript.Segment{{Start: 0, End: 1, Text: "fresh"}}}
	if _, err := writer.Write(result, "a.mp3"); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	content, _ := os.ReadFile(existing)
	if string(content) != "fresh\n" {
		t.Errorf("expected file to be replaced, got %q", content)
	}
}

func TestZeroWriterRejected(t *testing.T) {
	var writer Writer
	_, err := writer.Write(sampleResult(), "talk.wav")
	if !errors.Is(err, ErrNoFormat) {
		t.Errorf("expected ErrNoFormat, got %v", err)
	}
}

func TestNewWriterUnsupportedFormat(t *testing.T) {
	_, err := NewWriter(Format("ass"), t.TempDir())
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestWriterNilResult(t *testing.T) {
	writer, err := NewWriter(FormatJSON, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := writer.Write(nil, "talk.wav"); err == nil {
		t.Error("expected error for nil result")
	}
}

func TestWriterUnwritableDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	blocker := filepath.Join(tmpDir, "blocker")
	if err := os.WriteFile(blocker, []byte("not a directory"), 0644); err != nil {
		t.Fatal(err)
	}

	writer, err := NewWriter(FormatSRT, filepath.Join(blocker, "out"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := writer.Write(sampleResult(), "talk.wav"); err == nil {
		t.Error("expected error when output directory cannot be created")
	}
}

func TestWriterDestinationIsDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.Mkdir(filepath.Join(tmpDir, "talk.wav.tsv"), 0755); err != nil {
		t.Fatal(err)
	}

	writer, err := NewWriter(FormatTSV, tmpDir)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := writer.Write(sampleResult(), "talk.wav"); err == nil {
		t.Error("expected error when destination is a directory")
	}
}

func TestWriteAll(t *testing.T) {
	tmpDir := t.TempDir()

	paths, err := WriteAll(sampleResult(), "clips/episode.m4a", tmpDir, AllFormats())
	if err != nil {
		t.Fatalf("WriteAll failed: %v", err)
	}
	if len(paths) != len(AllFormats()) {
		t.Fatalf("expected %d paths, got %d", len(AllFormats()), len(paths))
	}

	for i, format := range AllFormats() {
		want := filepath.Join(tmpDir, "episode.m4a."+format.Extension())
		if paths[i] != want {
			t.Errorf("path %d = %q, want %q", i, paths[i], want)
		}
		if _, err := os.Stat(want); err != nil {
			t.Errorf("missing %s output: %v", format, err)
		}
	}
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		input   string
		want    []Format
		wantErr bool
	}{
		{"srt", []Format{FormatSRT}, false},
		{"SRT, vtt", []Format{FormatSRT, FormatVTT}, false},
		{"tsv,tsv,json", []Format{FormatTSV, FormatJSON}, false},
		{"all", AllFormats(), false},
		{"srt,all", AllFormats(), false},
		{"", nil, true},
		{"ass", nil, true},
		{"srt,bogus", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormats(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error for %q", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if strings.Join(formatStrings(got), ",") != strings.Join(formatStrings(tt.want), ",") {
				t.Errorf("ParseFormats(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func formatStrings(formats []Format) []string {
	out := make([]string, len(formats))
	for i, f := range formats {
		out[i] = string(f)
	}
	return out
}

// records writes and how many of them were followed by Sync
type countingSink struct {
	writes int
	syncs  int
}

func (c *countingSink) Write(p []byte) (int, error) {
	c.writes++
	return len(p), nil
}

func (c *countingSink) Sync() error {
	c.syncs++
	return nil
}

func TestDurableSinkSyncsEveryWrite(t *testing.T) {
	sink := &countingSink{}
	if err := (VTTRenderer{}).Render(durableSink(sink, true), sampleResult()); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	// header plus one block per segment
	want := 1 + len(sampleResult().Segments)
	if sink.writes != want || sink.syncs != want {
		t.Errorf("got %d writes and %d syncs, want %d of each", sink.writes, sink.syncs, want)
	}
}

func TestDurableSinkOff(t *testing.T) {
	sink := &countingSink{}
	if err := (SRTRenderer{}).Render(durableSink(sink, false), sampleResult()); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if sink.syncs != 0 {
		t.Errorf("expected no syncs when not durable, got %d", sink.syncs)
	}
	if sink.writes != len(sampleResult().Segments) {
		t.Errorf("got %d writes, want one per segment", sink.writes)
	}
}

func TestDurableSinkWithoutSync(t *testing.T) {
	var buf strings.Builder
	if got := durableSink(&buf, true); got != &buf {
		t.Error("a sink without Sync should be used as is")
	}
}

func TestRenderedCaptionsLoadBack(t *testing.T) {
	result := &transcript.Result{Segments: []transcript.Segment{
		{Start: 0, End: 1.0005, Text: "first"},
		{Start: 1.25, End: 2.5, Text: "   "},
		{Start: 3.0625, End: 4.999, Text: "after the gap"},
		{Start: 3599.5, End: 3600.5, Text: "across the hour"},
		{Start: 3725.25, End: 3730, Text: "last"},
	}}

	for _, format := range []Format{FormatSRT, FormatVTT} {
		t.Run(string(format), func(t *testing.T) {
			writer, err := NewWriter(format, t.TempDir())
			if err != nil {
				t.Fatal(err)
			}
			path, err := writer.Write(result, "talk.wav")
			if err != nil {
				t.Fatalf("Write failed: %v", err)
			}

			// Load picks the parser from the extension
			loaded, err := transcript.Load(path)
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if len(loaded.Segments) != len(result.Segments) {
				t.Fatalf("got %d segments back, want %d", len(loaded.Segments), len(result.Segments))
			}

			for i, want := range result.Segments {
				got := loaded.Segments[i]
				if Milliseconds(got.Start) != Milliseconds(want.Start) ||
					Milliseconds(got.End) != Milliseconds(want.End) {
					t.Errorf("segment %d times = %v-%v, want %v-%v", i, got.Start, got.End, want.Start, want.End)
				}
				if got.Text != strings.TrimSpace(want.Text) {
					t.Errorf("segment %d text = %q, want %q", i, got.Text, strings.TrimSpace(want.Text))
				}
			}
		})
	}
}
