package storage

import (
	"slices"

	"github.com/zhven/bytefit/pkg/file"
)

var videoExts = []string{
	"mp4", "mov", "m4v", "avi", "mkv", "wmv", "flv", "webm",
	"mpg", "mpeg", "3gp", "ts",
}

var audioExts = []string{
	"mp3", "wav", "flac", "aac", "ogg", "wma", "m4a",
}

var imageExts = []string{
	"png", "jpg", "jpeg", "bmp", "gif", "tiff", "webp",
}

var textExts = []string{
	"txt", "log", "csv", "md", "json", "xml", "html", "srt",
}

// KindOf classifies path by its extension. Unknown extensions are binary:
// they can still be padded and split, just never re-encoded.
func KindOf(path string) Kind {
	ext := file.Ext(path)
	switch {
	case ext == "pdf":
		return KindPDF
	case ext == "docx":
		return KindDoc
	case slices.Contains(videoExts, ext):
		return KindVideo
	case slices.Contains(audioExts, ext):
		return KindAudio
	case slices.Contains(imageExts, ext):
		return KindImage
	case slices.Contains(textExts, ext):
		return KindText
	default:
		return KindBinary
	}
}

// generateFormats are the extensions the generator can synthesize from
// nothing. Every entry maps to a renderer.
var generateFormats = []string{
	"txt", "wav", "png", "jpg", "jpeg", "bmp", "tiff", "pdf", "docx", "mp4", "mov",
}

// CanGenerate reports whether format has a from-scratch renderer.
func CanGenerate(format string) bool {
	return slices.Contains(generateFormats, format)
}

// DefaultGenerateFormats is the format set offered when a request does not
// narrow the selection.
func DefaultGenerateFormats() []string {
	return []string{"mp4", "wav", "png", "txt", "pdf", "docx"}
}
