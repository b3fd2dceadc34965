package media

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/zhven/bytefit/pkg/file"
)

var (
	// ErrProbeFailed marks ffprobe invocations that produced no usable result.
	ErrProbeFailed = errors.New("media probe failed")
	// ErrEncodeFailed marks ffmpeg invocations that exited abnormally.
	ErrEncodeFailed = errors.New("media encode failed")
)

type ffmpeg struct {
	ffmpegCmd  string
	ffprobeCmd string
	timeout    time.Duration
	logger     zerolog.Logger
}

func NewFfmpeg(
	ffmpegBin string,
	ffprobeBin string,
	timeout time.Duration,
	logger zerolog.Logger,
) ffmpeg {
	if ffmpegBin == "" {
		ffmpegBin = "ffmpeg"
	}
	if ffprobeBin == "" {
		ffprobeBin = "ffprobe"
	}

	return ffmpeg{
		ffmpegCmd:  ffmpegBin,
		ffprobeCmd: ffprobeBin,
		timeout:    timeout,
		logger:     logger,
	}
}

// Check verifies both binaries resolve on PATH.
func (ff ffmpeg) Check() error {
	if _, err := exec.LookPath(ff.ffmpegCmd); err != nil {
		return err
	}
	if _, err := exec.LookPath(ff.ffprobeCmd); err != nil {
		return err
	}
	return nil
}

// ProbeDuration reads the container duration of path in seconds.
func (ff ffmpeg) ProbeDuration(ctx context.Context, path string) (float64, error) {
	cmdPath, err := exec.LookPath(ff.ffprobeCmd)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrProbeFailed, err)
	}

	ctx, cancel := ff.withDeadline(ctx)
	defer cancel()
	cmd := exec.CommandContext(ctx, cmdPath, ff.probeDurationArgs(path)...)

	output, err := cmd.Output()
	if err != nil {
		ff.logger.Error().Err(err).Str("path", path).Msg("ffprobe failed")
		return 0, fmt.Errorf("%w: %v%s", ErrProbeFailed, err, exitDetail(err))
	}

	duration, err := strconv.ParseFloat(strings.TrimSpace(string(output)), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: unparseable duration %q", ErrProbeFailed,
			strings.TrimSpace(string(output)))
	}
	if duration <= 0 {
		return 0, fmt.Errorf("%w: non-positive duration %f", ErrProbeFailed, duration)
	}

	return duration, nil
}

// Transcode re-encodes req.Input into req.Output, keeping the first
// req.Duration seconds. Codecs follow the output extension.
func (ff ffmpeg) Transcode(ctx context.Context, req TranscodeRequest) error {
	cmdPath, err := exec.LookPath(ff.ffmpegCmd)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEncodeFailed, err)
	}

	ctx, cancel := ff.withDeadline(ctx)
	defer cancel()
	cmd := exec.CommandContext(ctx, cmdPath, ff.transcodeArgs(req)...)

	if output, err := cmd.CombinedOutput(); err != nil {
		ff.logger.Error().Err(err).
			Str("input", req.Input).
			Str("output", req.Output).
			Msg("ffmpeg transcode failed")
		return fmt.Errorf("%w: %v: %s", ErrEncodeFailed, err, tail(output))
	}
	return nil
}

// RenderClip synthesizes a solid-color clip at path.
func (ff ffmpeg) RenderClip(ctx context.Context, path string, spec ClipSpec) error {
	cmdPath, err := exec.LookPath(ff.ffmpegCmd)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEncodeFailed, err)
	}

	ctx, cancel := ff.withDeadline(ctx)
	defer cancel()
	cmd := exec.CommandContext(ctx, cmdPath, ff.renderClipArgs(path, spec)...)

	if output, err := cmd.CombinedOutput(); err != nil {
		ff.logger.Error().Err(err).Str("path", path).Msg("ffmpeg clip render failed")
		return fmt.Errorf("%w: %v: %s", ErrEncodeFailed, err, tail(output))
	}
	return nil
}

func (ff ffmpeg) withDeadline(ctx context.Context) (context.Context, context.CancelFunc) {
	if ff.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, ff.timeout)
}

func (ffmpeg) probeDurationArgs(path string) []string {
	return []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	}
}

func (ffmpeg) transcodeArgs(req TranscodeRequest) []string {
	args := []string{
		"-i", req.Input,
		"-t", formatSeconds(req.Duration),
	}
	ext := file.Ext(req.Output)
	if req.Kind == StreamVideo {
		args = append(args, videoCodecArgs(ext)...)
	} else {
		args = append(args, audioCodecArgs(ext)...)
	}
	return append(args, "-y", req.Output)
}

func (ffmpeg) renderClipArgs(path string, spec ClipSpec) []string {
	color := spec.Color
	if color == "" {
		color = "red"
	}
	source := fmt.Sprintf("color=c=%s:s=%dx%d:r=%d:d=%s",
		color, spec.Width, spec.Height, spec.FPS, formatSeconds(spec.Seconds))
	return []string{
		"-f", "lavfi",
		"-i", source,
		"-pix_fmt", "yuv420p",
		"-y", path,
	}
}

// videoCodecArgs picks the codec pair for a video container extension.
func videoCodecArgs(ext string) []string {
	switch ext {
	case "mp4", "mov":
		return []string{"-c:v", "libx264", "-c:a", "aac"}
	default:
		return []string{"-c:v", "libxvid", "-c:a", "mp3"}
	}
}

var audioCodecs = map[string]string{
	"mp3":  "libmp3lame",
	"wav":  "pcm_s16le",
	"flac": "flac",
	"aac":  "aac",
	"m4a":  "aac",
	"mp4":  "aac",
	"mov":  "aac",
	"ogg":  "libvorbis",
	"wma":  "wmav2",
}

// audioCodecArgs picks the codec for an audio container extension.
func audioCodecArgs(ext string) []string {
	codec, ok := audioCodecs[ext]
	if !ok {
		codec = "libmp3lame"
	}
	return []string{"-c:a", codec}
}

func formatSeconds(seconds float64) string {
	return strconv.FormatFloat(seconds, 'f', 3, 64)
}

func exitDetail(err error) string {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
		return ": " + tail(exitErr.Stderr)
	}
	return ""
}

// tail keeps error messages bounded when ffmpeg is chatty.
func tail(output []byte) string {
	const keep = 512
	s := strings.TrimSpace(string(output))
	if len(s) > keep {
		s = s[len(s)-keep:]
	}
	return s
}
