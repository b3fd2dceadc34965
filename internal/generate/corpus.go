package generate

import (
	"strings"
	"unicode"

	"github.com/abadojack/whatlanggo"
	"golang.org/x/text/language"
)

// One natural prose sentence per corpus language. The filler only has to
// read like text; generation truncates it anywhere, mid-rune included.
const (
	fillLineZH = "燕子去了，有再来的时候；杨柳枯了，有再青的时候；桃花谢了，有再开的时候。\n"
	fillLineEN = "The swallows may go, but there is a time of return; the willows may fade, but there is a time of green again.\n"
)

// First entry doubles as the fallback.
var corpusTags = []language.Tag{
	language.Chinese,
	language.English,
}

var corpusMatcher = language.NewMatcher(corpusTags)

// FillLine returns the filler sentence for tag, newline included.
func FillLine(tag language.Tag) string {
	_, idx, _ := corpusMatcher.Match(tag)
	if idx == 1 {
		return fillLineEN
	}
	return fillLineZH
}

// NormalizeFillText prepares custom filler text for line-based repetition.
func NormalizeFillText(text string) string {
	text = strings.TrimRight(text, "\r\n")
	if text == "" {
		return ""
	}
	return text + "\n"
}

// NeedsCJKFont reports whether text cannot be drawn with latin core fonts.
func NeedsCJKFont(text string) bool {
	info := whatlanggo.Detect(text)
	switch info.Lang {
	case whatlanggo.Cmn, whatlanggo.Jpn, whatlanggo.Kor:
		return true
	}

	// Detection is unreliable on short fragments; any CJK rune settles it.
	for _, r := range text {
		if unicode.Is(unicode.Han, r) || unicode.Is(unicode.Hiragana, r) ||
			unicode.Is(unicode.Katakana, r) || unicode.Is(unicode.Hangul, r) {
			return true
		}
	}
	return false
}
