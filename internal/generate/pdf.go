package generate

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-pdf/fpdf"
)

const pdfFillParagraphs = 40

// WritePDF renders a document of filler prose. A single newline is
// appended after the trailer so later zero padding never touches %%EOF.
func WritePDF(path, line, cjkFontPath string) error {
	line = strings.TrimSuffix(line, "\n")

	pdf := fpdf.New("P", "mm", "A4", "")
	if NeedsCJKFont(line) {
		if !fontUsable(cjkFontPath) {
			// Core fonts cannot draw CJK glyphs, fall back to latin filler.
			line = strings.TrimSuffix(fillLineEN, "\n")
			pdf.SetFont("Helvetica", "", 12)
		} else {
			pdf.AddUTF8Font("fill", "", cjkFontPath)
			pdf.SetFont("fill", "", 12)
		}
	} else {
		pdf.SetFont("Helvetica", "", 12)
	}

	pdf.AddPage()
	for range pdfFillParagraphs {
		pdf.MultiCell(0, 8, line, "", "L", false)
	}

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write([]byte("\n")); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func fontUsable(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
