package generate

import (
	"fmt"
	"os"
	"strings"

	docx "github.com/fumiama/go-docx"
)

const docxFillParagraphs = 30

// WriteDocx renders a document of filler paragraphs. The zip container
// tolerates trailing zero padding without a guard byte.
func WriteDocx(path, line string) error {
	line = strings.TrimSuffix(line, "\n")

	doc := docx.New().WithDefaultTheme()
	for range docxFillParagraphs {
		doc.AddParagraph().AddText(line)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := doc.WriteTo(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("render docx: %w", err)
	}
	return f.Close()
}
