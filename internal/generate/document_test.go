package generate

import (
	"archive/zip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestWritePDF_LatinFiller(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fill.pdf")

	require.NoError(t, WritePDF(path, FillLine(language.English), ""))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	assert.True(t, strings.HasPrefix(string(data), "%PDF"))
	assert.Equal(t, byte('\n'), data[len(data)-1], "guard byte after trailer")
	assert.Contains(t, string(data), "%%EOF")
}

func TestWritePDF_CJKWithoutFontFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fill.pdf")

	// No usable CJK font configured: the renderer must still produce a
	// valid document instead of failing.
	require.NoError(t, WritePDF(path, FillLine(language.Chinese), ""))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "%PDF"))
}

func TestWriteDocx_ValidContainer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fill.docx")

	require.NoError(t, WriteDocx(path, FillLine(language.English)))

	r, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer r.Close()

	names := make([]string, 0, len(r.File))
	for _, f := range r.File {
		names = append(names, f.Name)
	}
	assert.Contains(t, names, "word/document.xml")
}
