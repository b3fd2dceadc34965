package generate

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/text/language"

	"github.com/zhven/bytefit/internal/media"
	"github.com/zhven/bytefit/internal/sizing"
	"github.com/zhven/bytefit/internal/storage"
)

var (
	ErrBadTarget         = errors.New("invalid target size")
	ErrUnsupportedFormat = errors.New("unsupported generate format")
)

// Request asks for one synthesized file of an exact byte size.
type Request struct {
	Path     string
	Format   string
	TargetMB float64
	FillText string
	Language language.Tag
}

// Result reports what was written. Exact is false only when the rendered
// base already exceeded the target and padding was skipped.
type Result struct {
	Path      string `json:"path"`
	Target    int64  `json:"target"`
	BaseBytes int64  `json:"base_bytes"`
	Padded    int64  `json:"padded"`
	Bytes     int64  `json:"bytes"`
	Exact     bool   `json:"exact"`
}

// Generator synthesizes files of arbitrary exact sizes. Formats with a
// meaningful internal structure get a real base document first; the rest
// of the target is reached with zero padding.
type Generator struct {
	media       media.Operator
	cjkFontPath string
	logger      zerolog.Logger
}

func NewGenerator(operator media.Operator, cjkFontPath string, logger zerolog.Logger) *Generator {
	return &Generator{
		media:       operator,
		cjkFontPath: cjkFontPath,
		logger:      logger,
	}
}

func (g *Generator) Generate(ctx context.Context, req Request) (Result, error) {
	format := strings.ToLower(strings.TrimPrefix(req.Format, "."))
	target := sizing.BytesForMB(req.TargetMB)
	if target <= 0 {
		return Result{}, fmt.Errorf("%w: %.3f MB", ErrBadTarget, req.TargetMB)
	}
	if !storage.CanGenerate(format) {
		return Result{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	line := NormalizeFillText(req.FillText)
	if line == "" {
		line = FillLine(req.Language)
	}

	var err error
	switch storage.KindOf("x." + format) {
	case storage.KindText:
		err = WriteText(req.Path, target, line)
	case storage.KindAudio:
		err = WriteWAV(req.Path, target)
	case storage.KindImage:
		err = WriteBaseImage(req.Path, format)
	case storage.KindPDF:
		err = WritePDF(req.Path, line, g.cjkFontPath)
	case storage.KindDoc:
		err = WriteDocx(req.Path, line)
	case storage.KindVideo:
		err = g.media.RenderClip(ctx, req.Path, media.DefaultClipSpec())
	default:
		err = fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return Result{}, err
	}

	baseInfo, err := os.Stat(req.Path)
	if err != nil {
		return Result{}, err
	}

	report, err := PadToSize(req.Path, target)
	if err != nil {
		return Result{}, err
	}

	result := Result{
		Path:      req.Path,
		Target:    target,
		BaseBytes: baseInfo.Size(),
		Padded:    report.Padded,
		Bytes:     report.After,
		Exact:     report.After == target,
	}

	g.logger.Info().
		Str("format", format).
		Int64("target", target).
		Int64("base", result.BaseBytes).
		Int64("padded", result.Padded).
		Bool("exact", result.Exact).
		Msg("file generated")
	return result, nil
}
