package file

import (
	"path/filepath"
	"strings"
)

func ReplaceExt(path, ext string) string {
	if path == "" {
		return path
	}

	dir := filepath.Dir(path)
	filename := filepath.Base(path)

	lastDot := strings.LastIndex(filename, ".")

	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	if lastDot <= 0 {
		return filepath.Join(dir, filename+ext)
	}

	return filepath.Join(dir, filename[:lastDot]+ext)
}

// Ext returns the lowercase extension of path without the leading dot.
func Ext(path string) string {
	ext := filepath.Ext(path)
	if ext == "" {
		return ""
	}
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// StripExt returns the base name of path without its extension.
func StripExt(path string) string {
	base := filepath.Base(path)
	lastDot := strings.LastIndex(base, ".")
	if lastDot <= 0 {
		return base
	}
	return base[:lastDot]
}

// SanitizeBase reduces name to a bare file name safe to place inside a
// managed directory. Path separators and traversal segments are stripped.
func SanitizeBase(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(filepath.Clean("/" + name))
	if name == "/" || name == "." {
		return ""
	}
	return name
}

// SafeJoin joins rel onto root and verifies the result stays under root.
// It returns false when rel escapes via traversal or an absolute path.
func SafeJoin(root, rel string) (string, bool) {
	if rel == "" {
		return "", false
	}
	joined := filepath.Join(root, rel)
	cleanRoot := filepath.Clean(root)
	if joined != cleanRoot &&
		!strings.HasPrefix(joined, cleanRoot+string(filepath.Separator)) {
		return "", false
	}
	return joined, true
}
