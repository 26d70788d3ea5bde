package transcribe

import (
	"testing"
)

func TestParseVerboseJSONResponse(t *testing.T) {
	tests := []struct {
		name             string
		rawJSON          string
		fallbackDuration float64
		wantCount        int
		wantErr          bool
	}{
		{
			name: "valid verbose_json with segments",
			rawJSON: `{
				"text": "Hello world. How are you today?",
				"segments": [
					{"start": 0.0, "end": 1.5, "text": "Hello world."},
					{"start": 1.5, "end": 3.0, "text": "How are you today?"}
				],
				"language": "en",
				"duration": 3.0
			}`,
			fallbackDuration: 5,
			wantCount:        2,
		},
		{
			name: "verbose_json with no segments but has text",
			rawJSON: `{
				"text": "This is a transcription without segments.",
				"segments": [],
				"language": "en",
				"duration": 2.5
			}`,
			fallbackDuration: 5,
			wantCount:        1,
		},
		{
			name: "verbose_json with null segments",
			rawJSON: `{
				"text": "Transcription text only.",
				"segments": null,
				"language": "en",
				"duration": 1.0
			}`,
			fallbackDuration: 5,
			wantCount:        1,
		},
		{
			name: "verbose_json with empty text segments filtered out",
			rawJSON: `{
				"text": "Hello world",
				"segments": [
					{"start": 0.0, "end": 0.5, "text": ""},
					{"start": 0.5, "end": 1.5, "text": "Hello world"},
					{"start": 1.5, "end": 2.0, "text": "   "}
				],
				"language": "en",
				"duration": 2.0
			}`,
			fallbackDuration: 5,
			wantCount:        1,
		},
		{
			name:             "empty response",
			rawJSON:          "",
			fallbackDuration: 5,
			wantErr:          true,
		},
		{
			name:             "invalid JSON",
			rawJSON:          `{"text": "incomplete`,
			fallbackDuration: 5,
			wantErr:          true,
		},
		{
			name: "no segments and no text",
			rawJSON: `{
				"text": "",
				"segments": [],
				"language": "en",
				"duration": 0
			}`,
			fallbackDuration: 5,
			wantErr:          true,
		},
		{
			name: "real whisper response format",
			rawJSON: `{
				"task": "transcribe",
				"language": "english",
				"duration": 8.470000267028809,
				"text": "The stale smell of old beer lingers. It takes heat to bring out the odor.",
				"segments": [
					{
						"id": 0,
						"seek": 0,
						"start": 0.0,
						"end": 3.319999933242798,
						"text": "The stale smell of old beer lingers.",
						"tokens": [50364, 440, 23025, 7966, 295, 1331, 8388, 22949, 404, 13, 50530],
						"temperature": 0.0,
						"avg_logprob": -0.2860786020755768,
						"no_speech_prob": 0.009231
					},
					{
						"id": 1,
						"seek": 0,
						"start": 3.319999933242798,
						"end": 6.190000057220459,
						"text": "It takes heat to bring out the odor.",
						"temperature": 0.0,
						"no_speech_prob": 0.009231
					}
				]
			}`,
			fallbackDuration: 10,
			wantCount:        2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := parseVerboseJSONResponse(tt.rawJSON, tt.fallbackDuration)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(result.Segments) != tt.wantCount {
				t.Errorf("got %d segments, want %d", len(result.Segments), tt.wantCount)
			}

			for i, seg := range result.Segments {
				if seg.Text == "" {
					t.Errorf("segment %d has empty text", i)
				}
			}
			if err := result.Validate(); err != nil {
				t.Errorf("result should validate: %v", err)
			}
		})
	}
}

func TestParseVerboseJSONResponseTimestamps(t *testing.T) {
	rawJSON := `{
		"text": "Hello world. Goodbye.",
		"segments": [
			{"start": 1.5, "end": 3.0, "text": " Hello world."},
			{"start": 3.0, "end": 5.5, "text": "Goodbye. "}
		],
		"language": "en",
		"duration": 5.5
	}`

	result, err := parseVerboseJSONResponse(rawJSON, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(result.Segments))
	}

	first := result.Segments[0]
	if first.Start != 1.5 || first.End != 3 || first.Text != "Hello world." {
		t.Errorf("segment 0 = %+v", first)
	}
	second := result.Segments[1]
	if second.Start != 3 || second.End != 5.5 || second.Text != "Goodbye." {
		t.Errorf("segment 1 = %+v", second)
	}
	if result.Language != "en" {
		t.Errorf("language: got %q, want en", result.Language)
	}
	if result.Duration != 5.5 {
		t.Errorf("duration: got %v, want 5.5", result.Duration)
	}
}

func TestShouldUseTranslation(t *testing.T) {
	tests := []struct {
		transcriptLang string
		want           bool
	}{
		{"english", true},
		{"English", true},
		{"ENGLISH", true},
		{"en", true},
		{"EN", true},
		{" english ", true},
		{"native", false},
		{"", false},
		{"spanish", false},
		{"japanese", false},
	}

	for _, tt := range tests {
		t.Run(tt.transcriptLang, func(t *testing.T) {
			transcriber := &OpenAITranscriber{
				options: Options{
					TranscriptLanguage: tt.transcriptLang,
				},
			}
			got := transcriber.shouldUseTranslation()
			if got != tt.want {
				t.Errorf("shouldUseTranslation() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFallbackSingleSegment(t *testing.T) {
	// response has text but no segments array
	rawJSON := `{
		"text": "This is a transcription without segments.",
		"duration": 10.5
	}`

	result, err := parseVerboseJSONResponse(rawJSON, 15)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Segments) != 1 {
		t.Fatalf("expected 1 fallback segment, got %d", len(result.Segments))
	}

	seg := result.Segments[0]
	if seg.Start != 0 {
		t.Errorf("fallback segment start time should be 0, got %v", seg.Start)
	}
	// duration from response wins over the fallback
	if seg.End != 10.5 {
		t.Errorf("fallback segment end time: got %v, want 10.5", seg.End)
	}
	if seg.Text != "This is a transcription without segments." {
		t.Errorf("fallback segment text incorrect: %q", seg.Text)
	}
}

func TestFallbackUsesProbedDuration(t *testing.T) {
	result, err := parseVerboseJSONResponse(`{"text": "short"}`, 4.25)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Segments[0].End != 4.25 {
		t.Errorf("got end %v, want 4.25", result.Segments[0].End)
	}
}
