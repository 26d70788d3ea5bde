package transcribe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
	"google.golang.org/genai"

	"github.com/mgpai22/lekh/internal/audio"
	"github.com/mgpai22/lekh/internal/transcript"
)

var errNoSegments = errors.New("no transcript segments found in response")

var jsonBlockRegex = regexp.MustCompile("```(?:json)?\\s*")

// implements Transcriber interface using Google Gemini
type GeminiTranscriber struct {
	client  *genai.Client
	model   string
	options Options
}

// segment from Gemini's JSON response
type transcriptSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

func NewGeminiTranscriber(ctx context.Context, apiKey string, opts Options) (*GeminiTranscriber, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := opts.Model
	if model == "" {
		model = "gemini-2.5-flash"
	}

	return &GeminiTranscriber{
		client:  client,
		model:   model,
		options: opts,
	}, nil
}

// transcribes single audio file
func (t *GeminiTranscriber) Transcribe(ctx context.Context, audioPath string) (*transcript.Result, error) {
	uploadedFile, err := t.client.Files.UploadFromPath(ctx, audioPath, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to upload audio file: %w", err)
	}

	defer func() {
		_, _ = t.client.Files.Delete(context.WithoutCancel(ctx), uploadedFile.Name, nil)
	}()

	parts := []*genai.Part{
		genai.NewPartFromText(t.buildTranscriptionPrompt()),
		genai.NewPartFromURI(uploadedFile.URI, uploadedFile.MIMEType),
	}
	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}

	resp, err := t.client.Models.GenerateContent(ctx, t.model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("transcription failed: %w", err)
	}

	text, err := responseText(resp)
	if err != nil {
		return nil, err
	}

	result, err := parseTranscriptionText(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse transcription: %w", err)
	}

	result.Language = t.options.Language
	result.Duration, _ = audio.GetDuration(audioPath)
	return result, nil
}

// transcribes multiple chunks in parallel
func (t *GeminiTranscriber) TranscribeWithChunks(
	ctx context.Context,
	chunks []audio.ChunkInfo,
	concurrency int,
) (*transcript.Result, error) {
	return transcribeChunks(ctx, t, chunks, concurrency, t.options.Language)
}

// creates the prompt for transcription
func (t *GeminiTranscriber) buildTranscriptionPrompt() string {
	var sb strings.Builder

	sb.WriteString("Generate a detailed transcript of this audio. ")
	sb.WriteString("For each sentence or phrase, provide the start timestamp, end timestamp, and the exact text spoken. ")
	sb.WriteString("Format your response as a JSON array with objects containing 'start', 'end', and 'text' fields, ")
	sb.WriteString("where 'start' and 'end' are timestamps in seconds (as numbers). ")

	if t.options.Language != "" {
		fmt.Fprintf(&sb, "The audio is in %s. ", t.options.Language)
	}

	if t.options.TranscriptLanguage != "" && t.options.TranscriptLanguage != "native" {
		fmt.Fprintf(&sb, "Output the transcript in %s. ", t.options.TranscriptLanguage)
	}

	if t.options.Prompt != "" {
		sb.WriteString(t.options.Prompt)
		sb.WriteString(" ")
	}

	sb.WriteString("Return ONLY the JSON array, no other text or markdown formatting.")

	return sb.String()
}

// concatenated text parts of all candidates
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("empty response from Gemini")
	}

	var sb strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			sb.WriteString(part.Text)
		}
	}

	if sb.Len() == 0 {
		return "", fmt.Errorf("no text in Gemini response")
	}
	return sb.String(), nil
}

// turns model output into a validated result, dropping blank segments
func parseTranscriptionText(text string) (*transcript.Result, error) {
	cleaned := cleanJSONResponse(text)

	found, err := extractTranscriptSegments(cleaned)
	if err != nil {
		return nil, fmt.Errorf("%w (response: %s)", err, truncateString(cleaned, 200))
	}

	segments := make([]transcript.Segment, 0, len(found))
	for _, ts := range found {
		segText := strings.TrimSpace(ts.Text)
		if segText == "" {
			continue
		}
		segments = append(segments, transcript.Segment{
			Start: ts.Start,
			End:   ts.End,
			Text:  segText,
		})
	}

	result := &transcript.Result{
		Text:     joinText(segments),
		Segments: segments,
	}
	if err := result.Validate(); err != nil {
		return nil, err
	}
	return result, nil
}

// extractTranscriptSegments finds the first JSON value in text that holds
// transcript segments. Values may be surrounded by prose, and segment arrays
// may be wrapped in objects under any key at any depth.
func extractTranscriptSegments(text string) ([]transcriptSegment, error) {
	for i := 0; i < len(text); i++ {
		if text[i] != '[' && text[i] != '{' {
			continue
		}

		dec := json.NewDecoder(strings.NewReader(text[i:]))
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			continue
		}

		if segments, ok := findSegments(gjson.ParseBytes(raw)); ok {
			return segments, nil
		}

		// skip past this value
		i += int(dec.InputOffset()) - 1
	}
	return nil, errNoSegments
}

func findSegments(value gjson.Result) ([]transcriptSegment, bool) {
	switch {
	case value.IsArray():
		var segments []transcriptSegment
		if err := json.Unmarshal([]byte(value.Raw), &segments); err != nil {
			return nil, false
		}
		return segments, validateSegments(segments)
	case value.IsObject():
		var (
			segments []transcriptSegment
			ok       bool
		)
		value.ForEach(func(_, child gjson.Result) bool {
			if child.IsArray() || child.IsObject() {
				segments, ok = findSegments(child)
			}
			return !ok
		})
		return segments, ok
	default:
		return nil, false
	}
}

// at least one segment carries text or a timestamp
func validateSegments(segments []transcriptSegment) bool {
	for _, seg := range segments {
		if seg.Text != "" || seg.Start != 0 || seg.End != 0 {
			return true
		}
	}
	return false
}

// removes markdown formatting from the response
func cleanJSONResponse(s string) string {
	s = strings.TrimSpace(s)

	// remove ```json and ``` markers
	s = jsonBlockRegex.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "```", "")

	return strings.TrimSpace(s)
}

// truncates a string to maxLen bytes
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

func (t *GeminiTranscriber) Close() error {
	return nil
}
