package generate

import (
	"fmt"
	"os"

	"golang.org/x/text/language"

	"github.com/zhven/bytefit/internal/sizing"
)

// WriteText fills path with repeated filler prose truncated to exactly
// target bytes. The cut may land inside a multi-byte rune; only the byte
// count is contractual.
func WriteText(path string, target int64, line string) error {
	if target < 0 {
		return fmt.Errorf("%w: %d bytes", ErrBadTarget, target)
	}
	if line == "" {
		line = FillLine(language.Chinese)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	block := buildBlock([]byte(line), sizing.DefaultChunkBytes)
	remaining := target
	for remaining > 0 {
		writeLen := int64(len(block))
		if remaining < writeLen {
			writeLen = remaining
		}
		if _, err := f.Write(block[:writeLen]); err != nil {
			_ = f.Close()
			return fmt.Errorf("write text: %w", err)
		}
		remaining -= writeLen
	}
	return f.Close()
}

// buildBlock repeats line into a write buffer of at most size bytes,
// always holding at least one full copy.
func buildBlock(line []byte, size int) []byte {
	if len(line) >= size {
		return line
	}
	block := make([]byte, 0, size)
	for len(block)+len(line) <= size {
		block = append(block, line...)
	}
	return block
}
