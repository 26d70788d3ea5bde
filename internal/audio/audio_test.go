package audio

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParseProbeDuration(t *testing.T) {
	tests := []struct {
		name    string
		out     string
		want    float64
		wantErr bool
	}{
		{"valid", `{"format": {"duration": "8.470000"}}`, 8.47, false},
		{"missing duration", `{"format": {}}`, 0, true},
		{"not json", `ffprobe: error`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseProbeDuration(tt.out)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPlanChunks(t *testing.T) {
	chunks := planChunks("/in/talk.mp3", "/tmp/chunks", time.Minute, 150)

	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}

	want := []ChunkInfo{
		{Path: filepath.Join("/tmp/chunks", "talk_chunk_000.mp3"), Index: 0, Start: 0, End: 60},
		{Path: filepath.Join("/tmp/chunks", "talk_chunk_001.mp3"), Index: 1, Start: 60, End: 120},
		{Path: filepath.Join("/tmp/chunks", "talk_chunk_002.mp3"), Index: 2, Start: 120, End: 150},
	}
	for i := range want {
		if chunks[i] != want[i] {
			t.Errorf("chunk %d = %+v, want %+v", i, chunks[i], want[i])
		}
	}
}

func TestPlanChunksExactMultiple(t *testing.T) {
	chunks := planChunks("a.wav", "out", 30*time.Second, 60)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[1].End != 60 {
		t.Errorf("last chunk should end at 60, got %v", chunks[1].End)
	}
}

func TestPrepareArgs(t *testing.T) {
	args := prepareArgs(DefaultOptions())
	if args["acodec"] != "libmp3lame" {
		t.Errorf("expected libmp3lame, got %v", args["acodec"])
	}
	if args["b:a"] != "64k" {
		t.Errorf("expected 64k bitrate, got %v", args["b:a"])
	}
	if _, ok := args["vn"]; !ok {
		t.Error("video should be dropped")
	}

	aac := prepareArgs(Options{Format: "aac", SampleRate: 16000, Channels: 1})
	if aac["acodec"] != "aac" {
		t.Errorf("expected aac, got %v", aac["acodec"])
	}
	if _, ok := aac["b:a"]; ok {
		t.Error("empty bitrate should not be passed")
	}
}

func TestSetFFmpegPath(t *testing.T) {
	t.Cleanup(func() { SetFFmpegPath("") })

	SetFFmpegPath("/opt/ffmpeg")
	if ffmpegPath != "/opt/ffmpeg" {
		t.Errorf("got %q", ffmpegPath)
	}
	SetFFmpegPath("")
	if ffmpegPath != "ffmpeg" {
		t.Errorf("empty path should restore default, got %q", ffmpegPath)
	}
}

func TestCleanup(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "c.mp3")
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	chunks := []ChunkInfo{{Path: path}, {Path: filepath.Join(dir, "missing.mp3")}}
	if err := Cleanup(chunks); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("chunk file should be removed")
	}
}

func TestPrepareMissingInput(t *testing.T) {
	err := Prepare(t.Context(), filepath.Join(t.TempDir(), "none.wav"), "out.mp3", DefaultOptions())
	if err == nil {
		t.Error("expected error for missing input")
	}
}

func TestIsMediaFile(t *testing.T) {
	tests := []struct {
		path  string
		audio bool
		video bool
	}{
		{"talk.MP3", true, false},
		{"clip.mkv", false, true},
		{"notes.srt", false, false},
		{"noext", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := IsAudioFile(tt.path); got != tt.audio {
				t.Errorf("IsAudioFile = %v, want %v", got, tt.audio)
			}
			if got := IsVideoFile(tt.path); got != tt.video {
				t.Errorf("IsVideoFile = %v, want %v", got, tt.video)
			}
			if got := IsMediaFile(tt.path); got != (tt.audio || tt.video) {
				t.Errorf("IsMediaFile = %v", got)
			}
		})
	}
}
