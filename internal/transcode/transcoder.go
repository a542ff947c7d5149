// Package transcode drives ffmpeg to turn a concatenated transport stream
// into a duration-capped MP4 clip and a single-frame JPEG thumbnail.
package transcode

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/smartclips/clipper/internal/stage"
)

// Transcoder wraps the ffmpeg binary. Both operations read their input from
// stdin, so the source never has to be written to disk first.
type Transcoder struct {
	ffmpegPath string
	threads    int
	logger     *zap.Logger
}

// NewTranscoder creates a transcoder. ffmpegPath may be empty, in which case
// the binary is resolved from PATH at invocation time.
func NewTranscoder(ffmpegPath string, logger *zap.Logger) *Transcoder {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
		if p, err := exec.LookPath("ffmpeg"); err == nil {
			ffmpegPath = p
		}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Transcoder{
		ffmpegPath: ffmpegPath,
		threads:    runtime.NumCPU(),
		logger:     logger,
	}
}

// Run executes thumbnail extraction and the video remux concurrently, each
// over its own independent reader of src. The two invocations never share a
// read cursor: src is immutable and each gets a fresh bytes.Reader. Returns
// (image result, video result); only the video result is fatal to a clip.
func (t *Transcoder) Run(ctx context.Context, src []byte, thumbnail io.Writer, videoPath string, lengthSec float64) (stage.Result, stage.Result) {
	var (
		wg       sync.WaitGroup
		imageRes stage.Result
		videoRes stage.Result
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		imageRes = t.ExtractThumbnail(ctx, bytes.NewReader(src), thumbnail)
	}()
	go func() {
		defer wg.Done()
		videoRes = t.RemuxVideo(ctx, bytes.NewReader(src), videoPath, lengthSec)
	}()
	wg.Wait()
	return imageRes, videoRes
}

// ExtractThumbnail decodes exactly one frame from the transport stream on r
// and writes it as MJPEG to out.
func (t *Transcoder) ExtractThumbnail(ctx context.Context, r io.Reader, out io.Writer) stage.Result {
	cmd := exec.CommandContext(ctx, t.ffmpegPath, imageArgs()...)
	cmd.Stdin = r
	cmd.Stdout = out

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		t.logger.Warn("thumbnail render failed", zap.Error(err), zap.String("stderr", tail(stderr.String())))
		return stage.Fail(stage.ArtifactImage, "", fmt.Sprintf("render image: %v", err))
	}
	return stage.OK(stage.ArtifactImage)
}

// RemuxVideo stream-copies the transport stream on r into an MP4 at
// outputPath, capped at lengthSec seconds. ffmpeg needs seekable output to
// finalize the MP4 container, hence a file path rather than a pipe. A clean
// exit without a file on disk is still a failure.
func (t *Transcoder) RemuxVideo(ctx context.Context, r io.Reader, outputPath string, lengthSec float64) stage.Result {
	cmd := exec.CommandContext(ctx, t.ffmpegPath, videoArgs(t.threads, outputPath, lengthSec)...)
	cmd.Stdin = r

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		t.logger.Warn("video render failed", zap.Error(err), zap.String("stderr", tail(stderr.String())))
		return stage.Fail(stage.ArtifactVideo, stage.CodeRenderFailed, fmt.Sprintf("render video: %v", err))
	}
	if _, err := os.Stat(outputPath); err != nil {
		t.logger.Warn("video render produced no file", zap.String("path", outputPath))
		return stage.Fail(stage.ArtifactVideo, stage.CodeRenderFailed, "file does not exist after render")
	}
	return stage.OK(stage.ArtifactVideo)
}

func imageArgs() []string {
	return []string{
		"-f", "mpegts",
		"-i", "pipe:0",
		"-vframes", "1",
		"-f", "mjpeg",
		"pipe:1",
	}
}

func videoArgs(threads int, outputPath string, lengthSec float64) []string {
	return []string{
		"-f", "mpegts",
		"-i", "pipe:0",
		"-threads", strconv.Itoa(threads),
		"-c", "copy",
		"-bsf:a", "aac_adtstoasc",
		"-async", "1",
		"-t", strconv.FormatFloat(lengthSec, 'f', -1, 64),
		"-y",
		outputPath,
	}
}

// tail returns the last few stderr lines, which is where ffmpeg puts the
// actual failure reason.
func tail(s string) string {
	s = strings.TrimSpace(s)
	lines := strings.Split(s, "\n")
	if len(lines) > 4 {
		lines = lines[len(lines)-4:]
	}
	return strings.Join(lines, "\n")
}
