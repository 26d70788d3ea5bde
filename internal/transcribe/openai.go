package transcribe

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/tidwall/gjson"

	"github.com/mgpai22/lekh/internal/audio"
	"github.com/mgpai22/lekh/internal/transcript"
)

// implements Transcriber interface using OpenAI Audio API
type OpenAITranscriber struct {
	client  openai.Client
	model   string
	options Options
}

func NewOpenAITranscriber(
	ctx context.Context,
	apiKey string,
	opts Options,
) (*OpenAITranscriber, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client := openai.NewClient(option.WithAPIKey(apiKey))

	model := opts.Model
	if model == "" {
		model = "whisper-1"
	}

	return &OpenAITranscriber{
		client:  client,
		model:   model,
		options: opts,
	}, nil
}

// transcribes single audio file
func (t *OpenAITranscriber) Transcribe(
	ctx context.Context,
	audioPath string,
) (*transcript.Result, error) {
	file, err := os.Open(audioPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer file.Close()

	duration, _ := audio.GetDuration(audioPath)

	if t.shouldUseTranslation() {
		return t.transcribeWithTranslation(ctx, file, duration)
	}

	return t.transcribeWithTimestamps(ctx, file, duration)
}

// whisper only translates into english
func (t *OpenAITranscriber) shouldUseTranslation() bool {
	lang := strings.ToLower(strings.TrimSpace(t.options.TranscriptLanguage))
	return lang == "english" || lang == "en"
}

func (t *OpenAITranscriber) transcribeWithTranslation(
	ctx context.Context,
	file *os.File,
	duration float64,
) (*transcript.Result, error) {
	params := openai.AudioTranslationNewParams{
		File:           file,
		Model:          openai.AudioModel(t.model),
		ResponseFormat: openai.AudioTranslationNewParamsResponseFormatVerboseJSON,
	}

	if t.options.Prompt != "" {
		params.Prompt = openai.String(t.options.Prompt)
	}

	resp, err := t.client.Audio.Translations.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("translation failed: %w", err)
	}

	result, err := parseVerboseJSONResponse(resp.RawJSON(), duration)
	if err != nil {
		result = singleSegment(resp.Text, duration)
	}
	result.Language = "en"
	return result, nil
}

func (t *OpenAITranscriber) transcribeWithTimestamps(
	ctx context.Context,
	file *os.File,
	duration float64,
) (*transcript.Result, error) {
	params := openai.AudioTranscriptionNewParams{
		File:                   file,
		Model:                  openai.AudioModel(t.model),
		ResponseFormat:         openai.AudioResponseFormatVerboseJSON,
		TimestampGranularities: []string{"segment"},
	}

	if t.options.Language != "" {
		params.Language = openai.String(t.options.Language)
	}

	if t.options.Prompt != "" {
		params.Prompt = openai.String(t.options.Prompt)
	}

	resp, err := t.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("transcription failed: %w", err)
	}

	result, err := parseVerboseJSONResponse(resp.RawJSON(), duration)
	if err != nil {
		result = singleSegment(resp.Text, duration)
	}
	if result.Language == "" {
		result.Language = t.options.Language
	}
	return result, nil
}

// whole text as one segment spanning the file
func singleSegment(text string, duration float64) *transcript.Result {
	text = strings.TrimSpace(text)
	return &transcript.Result{
		Text:     text,
		Duration: duration,
		Segments: []transcript.Segment{{Start: 0, End: duration, Text: text}},
	}
}

// parseVerboseJSONResponse reads a whisper verbose_json body. Blank segments
// are dropped; a body with text but no segments becomes a single segment
// spanning the reported (or fallback) duration.
func parseVerboseJSONResponse(
	rawJSON string,
	fallbackDuration float64,
) (*transcript.Result, error) {
	if rawJSON == "" {
		return nil, fmt.Errorf("empty response")
	}
	if !gjson.Valid(rawJSON) {
		return nil, fmt.Errorf("failed to parse verbose_json response")
	}

	body := gjson.Parse(rawJSON)
	text := strings.TrimSpace(body.Get("text").String())

	duration := fallbackDuration
	if d := body.Get("duration").Float(); d > 0 {
		duration = d
	}

	segs := body.Get("segments").Array()
	if len(segs) == 0 {
		if text == "" {
			return nil, fmt.Errorf("no segments or text in response")
		}
		result := singleSegment(text, duration)
		result.Language = body.Get("language").String()
		return result, nil
	}

	segments := make([]transcript.Segment, 0, len(segs))
	for _, seg := range segs {
		segText := strings.TrimSpace(seg.Get("text").String())
		if segText == "" {
			continue
		}
		segments = append(segments, transcript.Segment{
			Start: seg.Get("start").Float(),
			End:   seg.Get("end").Float(),
			Text:  segText,
		})
	}

	return &transcript.Result{
		Text:     text,
		Language: body.Get("language").String(),
		Duration: duration,
		Segments: segments,
	}, nil
}

// transcribes multiple chunks in parallel
func (t *OpenAITranscriber) TranscribeWithChunks(
	ctx context.Context,
	chunks []audio.ChunkInfo,
	concurrency int,
) (*transcript.Result, error) {
	return transcribeChunks(ctx, t, chunks, concurrency, t.options.Language)
}

func (t *OpenAITranscriber) Close() error {
	return nil
}
