package transcribe

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/mgpai22/lekh/internal/audio"
	"github.com/mgpai22/lekh/internal/transcript"
)

// interface for audio transcription
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (*transcript.Result, error)
}

type ConcurrentTranscriber interface {
	Transcriber
	TranscribeWithChunks(
		ctx context.Context,
		chunks []audio.ChunkInfo,
		concurrency int,
	) (*transcript.Result, error)
}

// transcription service provider
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderGemini Provider = "gemini"
)

func ParseProvider(s string) (Provider, error) {
	switch p := Provider(strings.ToLower(strings.TrimSpace(s))); p {
	case ProviderOpenAI, ProviderGemini:
		return p, nil
	default:
		return "", fmt.Errorf("unsupported provider: %s", s)
	}
}

// transcription options
type Options struct {
	Language           string // Source language of audio
	TranscriptLanguage string // Output language for transcript (default: "native")
	Model              string
	Prompt             string
}

// creates transcriber based on provider
func Factory(
	ctx context.Context,
	provider Provider,
	apiKey string,
	opts Options,
) (ConcurrentTranscriber, error) {
	switch provider {
	case ProviderGemini:
		return NewGeminiTranscriber(ctx, apiKey, opts)
	case ProviderOpenAI:
		return NewOpenAITranscriber(ctx, apiKey, opts)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}

// holds the result of transcribing a chunk
type chunkResult struct {
	Index    int
	Segments []transcript.Segment
	Language string
	Error    error
}

// transcribes a single chunk and moves its segments to the chunk offset
func transcribeChunk(
	ctx context.Context,
	t Transcriber,
	chunk audio.ChunkInfo,
) chunkResult {
	result, err := t.Transcribe(ctx, chunk.Path)
	if err != nil {
		return chunkResult{Index: chunk.Index, Error: err}
	}
	result.Shift(chunk.Start)
	return chunkResult{
		Index:    chunk.Index,
		Segments: result.Segments,
		Language: result.Language,
	}
}

// transcribes chunks with a worker pool and merges them in chunk order. An
// empty language is filled from the first chunk that reports one.
func transcribeChunks(
	ctx context.Context,
	t Transcriber,
	chunks []audio.ChunkInfo,
	concurrency int,
	language string,
) (*transcript.Result, error) {
	if len(chunks) == 0 {
		return &transcript.Result{Language: language, Segments: []transcript.Segment{}}, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if concurrency <= 0 {
		concurrency = 3
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	workChan := make(chan audio.ChunkInfo)
	resultChan := make(chan chunkResult, len(chunks))

	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Go(func() {
			for {
				select {
				case <-ctx.Done():
					return
				case chunk, ok := <-workChan:
					if !ok || ctx.Err() != nil {
						return
					}
					result := transcribeChunk(ctx, t, chunk)
					if result.Error != nil {
						cancel()
					}
					resultChan <- result
				}
			}
		})
	}

	go func() {
		defer close(workChan)
		for _, chunk := range chunks {
			select {
			case <-ctx.Done():
				return
			case workChan <- chunk:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	results := make([]chunkResult, 0, len(chunks))
	var firstErr error
	for result := range resultChan {
		if result.Error != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("chunk %d failed: %w", result.Index, result.Error)
			}
			continue
		}
		results = append(results, result)
	}
	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil && len(results) < len(chunks) {
		return nil, err
	}

	// sort by index to maintain order
	sort.Slice(results, func(i, j int) bool {
		return results[i].Index < results[j].Index
	})

	merged := &transcript.Result{
		Language: language,
		Duration: chunks[len(chunks)-1].End,
		Segments: []transcript.Segment{},
	}
	for _, r := range results {
		merged.Segments = append(merged.Segments, r.Segments...)
		// requested language wins, otherwise the first one detected
		if merged.Language == "" {
			merged.Language = r.Language
		}
	}
	merged.Text = joinText(merged.Segments)

	return merged, nil
}

// full transcript text from trimmed segment texts
func joinText(segments []transcript.Segment) string {
	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		if text := strings.TrimSpace(seg.Text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}
