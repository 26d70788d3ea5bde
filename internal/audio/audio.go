package audio

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// ffmpeg binary; "ffmpeg" resolves through PATH
var ffmpegPath = "ffmpeg"

// overrides the ffmpeg binary, empty restores the PATH lookup
func SetFFmpegPath(path string) {
	if path == "" {
		path = "ffmpeg"
	}
	ffmpegPath = path
}

// audio chunk info, times in seconds
type ChunkInfo struct {
	Path  string
	Index int
	Start float64
	End   float64
}

// settings for the audio handed to a transcription engine
type Options struct {
	Format     string // mp3 or aac
	SampleRate int    // Hz
	Channels   int    // 1=mono, 2=stereo
	Bitrate    string // e.g. "64k"
}

// defaults for transcription
func DefaultOptions() Options {
	return Options{
		Format:     "mp3",
		SampleRate: 16000,
		Channels:   1,
		Bitrate:    "64k",
	}
}

// JSON output from ffprobe
type probeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// duration of an audio/video file in seconds
func GetDuration(filePath string) (float64, error) {
	if _, err := os.Stat(filePath); err != nil {
		return 0, fmt.Errorf("file not found: %s", filePath)
	}

	out, err := ffmpeg.Probe(filePath)
	if err != nil {
		return 0, fmt.Errorf("ffprobe failed: %w", err)
	}
	return parseProbeDuration(out)
}

func parseProbeDuration(out string) (float64, error) {
	var probe probeOutput
	if err := json.Unmarshal([]byte(out), &probe); err != nil {
		return 0, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	seconds, err := strconv.ParseFloat(probe.Format.Duration, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse duration: %w", err)
	}
	return seconds, nil
}

// ffmpeg arguments for Prepare; "vn" drops any video stream
func prepareArgs(opts Options) ffmpeg.KwArgs {
	kwargs := ffmpeg.KwArgs{
		"vn": "",
		"ar": opts.SampleRate,
		"ac": opts.Channels,
	}

	switch opts.Format {
	case "aac":
		kwargs["acodec"] = "aac"
	default:
		kwargs["acodec"] = "libmp3lame"
	}
	if opts.Bitrate != "" {
		kwargs["b:a"] = opts.Bitrate
	}
	return kwargs
}

// Prepare converts an audio or video file into compact mono audio suitable
// for upload to a transcription engine.
func Prepare(
	ctx context.Context,
	inputPath, outputPath string,
	opts Options,
) error {
	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return fmt.Errorf("input file not found: %s", inputPath)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	err := ffmpeg.Input(inputPath).
		Output(outputPath, prepareArgs(opts)).
		OverWriteOutput().
		SetFfmpegPath(ffmpegPath).
		Run()
	if err != nil {
		return fmt.Errorf("audio conversion failed: %w", err)
	}

	return nil
}

// chunk boundaries for a file of totalSeconds, last chunk may be shorter
func planChunks(
	audioPath, outputDir string,
	chunkDuration time.Duration,
	totalSeconds float64,
) []ChunkInfo {
	baseName := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	ext := filepath.Ext(audioPath)
	chunkSeconds := chunkDuration.Seconds()

	var chunks []ChunkInfo
	for i := 0; ; i++ {
		start := float64(i) * chunkSeconds
		if start >= totalSeconds {
			break
		}
		end := start + chunkSeconds
		if end > totalSeconds {
			end = totalSeconds
		}
		chunks = append(chunks, ChunkInfo{
			Path:  filepath.Join(outputDir, fmt.Sprintf("%s_chunk_%03d%s", baseName, i, ext)),
			Index: i,
			Start: start,
			End:   end,
		})
	}
	return chunks
}

// Chunk splits an audio file into ordered pieces of chunkDuration. If
// concurrency is 0 or negative, it defaults to 4 ffmpeg processes.
func Chunk(
	ctx context.Context,
	audioPath string,
	chunkDuration time.Duration,
	outputDir string,
	concurrency int,
) ([]ChunkInfo, error) {
	if chunkDuration <= 0 {
		return nil, fmt.Errorf("chunk duration must be positive, got %v", chunkDuration)
	}
	if concurrency <= 0 {
		concurrency = 4
	}

	totalSeconds, err := GetDuration(audioPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get audio duration: %w", err)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	jobs := planChunks(audioPath, outputDir, chunkDuration, totalSeconds)

	var (
		mu       sync.Mutex
		chunks   []ChunkInfo
		firstErr error
		wg       sync.WaitGroup
	)

	// semaphore limiting concurrent ffmpeg processes
	sem := make(chan struct{}, concurrency)

	for _, job := range jobs {
		if ctx.Err() != nil {
			break
		}

		wg.Add(1)
		go func(j ChunkInfo) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			mu.Lock()
			stop := firstErr != nil || ctx.Err() != nil
			mu.Unlock()
			if stop {
				return
			}

			err := ffmpeg.Input(audioPath).
				Output(j.Path, ffmpeg.KwArgs{
					"ss": j.Start,
					"t":  j.End - j.Start,
					"c":  "copy",
				}).
				OverWriteOutput().
				SetFfmpegPath(ffmpegPath).
				Run()

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				if firstErr == nil {
					firstErr = fmt.Errorf("failed to create chunk %d: %w", j.Index, err)
				}
				return
			}
			chunks = append(chunks, j)
		}(job)
	}

	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// sort chunks by index to maintain order
	sort.Slice(chunks, func(i, j int) bool {
		return chunks[i].Index < chunks[j].Index
	})

	return chunks, nil
}

var (
	audioExts = map[string]bool{
		".mp3": true, ".wav": true, ".aac": true, ".flac": true,
		".ogg": true, ".m4a": true, ".wma": true, ".aiff": true, ".opus": true,
	}
	videoExts = map[string]bool{
		".mp4": true, ".mkv": true, ".avi": true, ".mov": true, ".wmv": true,
		".flv": true, ".webm": true, ".m4v": true, ".mpeg": true, ".mpg": true,
	}
)

func IsAudioFile(path string) bool {
	return audioExts[strings.ToLower(filepath.Ext(path))]
}

func IsVideoFile(path string) bool {
	return videoExts[strings.ToLower(filepath.Ext(path))]
}

// anything ffmpeg can pull an audio track from
func IsMediaFile(path string) bool {
	return IsAudioFile(path) || IsVideoFile(path)
}

// removes all chunk files
func Cleanup(chunks []ChunkInfo) error {
	var lastErr error
	for _, chunk := range chunks {
		if err := os.Remove(chunk.Path); err != nil && !os.IsNotExist(err) {
			lastErr = err
		}
	}
	return lastErr
}
