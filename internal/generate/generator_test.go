package generate

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/zhven/bytefit/internal/media"
	"github.com/zhven/bytefit/internal/sizing"
)

// fakeOperator stands in for ffmpeg: RenderClip writes a tiny stub file.
type fakeOperator struct {
	renderErr error
	rendered  []string
}

func (f *fakeOperator) Check() error { return nil }

func (f *fakeOperator) ProbeDuration(context.Context, string) (float64, error) {
	return 0, nil
}

func (f *fakeOperator) Transcode(context.Context, media.TranscodeRequest) error {
	return nil
}

func (f *fakeOperator) RenderClip(_ context.Context, path string, _ media.ClipSpec) error {
	if f.renderErr != nil {
		return f.renderErr
	}
	f.rendered = append(f.rendered, path)
	return os.WriteFile(path, []byte("stub-video-base"), 0o644)
}

func newTestGenerator(op media.Operator) *Generator {
	return NewGenerator(op, "", zerolog.Nop())
}

func TestGenerator_ExactSizes(t *testing.T) {
	tests := []struct {
		format   string
		targetMB float64
	}{
		{format: "txt", targetMB: 0.25},
		{format: "wav", targetMB: 0.25},
		{format: "png", targetMB: 0.25},
		{format: "jpg", targetMB: 0.25},
		{format: "pdf", targetMB: 0.25},
		{format: "docx", targetMB: 0.25},
		{format: "mp4", targetMB: 0.25},
	}

	op := &fakeOperator{}
	g := newTestGenerator(op)

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "out."+tt.format)
			result, err := g.Generate(context.Background(), Request{
				Path:     path,
				Format:   tt.format,
				TargetMB: tt.targetMB,
				Language: language.Chinese,
			})
			require.NoError(t, err)

			want := sizing.BytesForMB(tt.targetMB)
			assert.Equal(t, want, result.Bytes)
			assert.True(t, result.Exact)
			assert.Equal(t, want, result.BaseBytes+result.Padded)

			info, err := os.Stat(path)
			require.NoError(t, err)
			assert.Equal(t, want, info.Size())
		})
	}

	assert.Len(t, op.rendered, 1, "only the mp4 case touches the encoder")
}

func TestGenerator_FractionalTargetTruncates(t *testing.T) {
	g := newTestGenerator(&fakeOperator{})
	path := filepath.Join(t.TempDir(), "out.txt")

	result, err := g.Generate(context.Background(), Request{
		Path:     path,
		Format:   "txt",
		TargetMB: 0.0000014, // just above one byte
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Bytes)
}

func TestGenerator_OversizedBaseReported(t *testing.T) {
	g := newTestGenerator(&fakeOperator{})
	path := filepath.Join(t.TempDir(), "out.png")

	// A PNG base is a few hundred bytes; ask for fewer.
	result, err := g.Generate(context.Background(), Request{
		Path:     path,
		Format:   "png",
		TargetMB: 0.00001, // ~10 bytes
	})
	require.NoError(t, err)

	assert.False(t, result.Exact)
	assert.Equal(t, int64(0), result.Padded)
	assert.Greater(t, result.Bytes, result.Target)
}

func TestGenerator_CustomFillText(t *testing.T) {
	g := newTestGenerator(&fakeOperator{})
	path := filepath.Join(t.TempDir(), "out.txt")

	_, err := g.Generate(context.Background(), Request{
		Path:     path,
		Format:   "txt",
		TargetMB: 0.0001,
		FillText: "custom words",
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "custom words")
}

func TestGenerator_RejectsBadRequests(t *testing.T) {
	g := newTestGenerator(&fakeOperator{})
	dir := t.TempDir()

	_, err := g.Generate(context.Background(), Request{
		Path:     filepath.Join(dir, "a.txt"),
		Format:   "txt",
		TargetMB: 0,
	})
	assert.ErrorIs(t, err, ErrBadTarget)

	_, err = g.Generate(context.Background(), Request{
		Path:     filepath.Join(dir, "a.mkv"),
		Format:   "mkv",
		TargetMB: 1,
	})
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestGenerator_EncoderFailureSurfaces(t *testing.T) {
	g := newTestGenerator(&fakeOperator{renderErr: media.ErrEncodeFailed})
	path := filepath.Join(t.TempDir(), "out.mp4")

	_, err := g.Generate(context.Background(), Request{
		Path:     path,
		Format:   "mp4",
		TargetMB: 1,
	})
	assert.ErrorIs(t, err, media.ErrEncodeFailed)
}
