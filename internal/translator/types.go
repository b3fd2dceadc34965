package translator

import (
	"context"

	"github.com/zhven/bytefit/internal/media"
	"github.com/zhven/bytefit/internal/subtitle"
)

type MediaMeta struct {
	media.TVShowInfo
	media.Actor
}

type Translator interface {
	Translate(
		ctx context.Context,
		media MediaMeta,
		subtitleTexts []string,
		targetLang string,
	) ([]string, error)

	BatchTranslate(
		ctx context.Context,
		media MediaMeta,
		subtitleLines []subtitle.Line,
		targetLanguage string,
		batchSize int) ([]subtitle.Line, error)
}
