package media

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// StreamKind selects the codec family used when re-encoding.
type StreamKind string

const (
	StreamVideo StreamKind = "video"
	StreamAudio StreamKind = "audio"
)

// TranscodeRequest describes a single re-encode pass: keep the first
// Duration seconds of Input and write the result to Output with codecs
// chosen from Output's extension.
type TranscodeRequest struct {
	Input    string
	Output   string
	Duration float64
	Kind     StreamKind
}

// ClipSpec describes a synthesized solid-color clip.
type ClipSpec struct {
	Width   int
	Height  int
	FPS     int
	Seconds float64
	Color   string
}

// DefaultClipSpec is the base clip used when growing a video file from
// nothing: small, short and cheap to encode.
func DefaultClipSpec() ClipSpec {
	return ClipSpec{Width: 160, Height: 120, FPS: 10, Seconds: 2, Color: "red"}
}

type Operator interface {
	Check() error
	ProbeDuration(ctx context.Context, path string) (float64, error)
	Transcode(ctx context.Context, req TranscodeRequest) error
	RenderClip(ctx context.Context, path string, spec ClipSpec) error
}

func NewOperator(
	ffmpegBin string,
	ffprobeBin string,
	timeout time.Duration,
	logger zerolog.Logger,
) Operator {
	return NewFfmpeg(ffmpegBin, ffprobeBin, timeout, logger)
}
