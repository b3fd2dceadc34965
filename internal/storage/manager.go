package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/zhven/bytefit/internal/sizing"
	"github.com/zhven/bytefit/pkg/file"
)

var (
	ErrInvalidName    = errors.New("invalid file name")
	ErrNotFound       = errors.New("file not found")
	ErrUploadTooLarge = errors.New("upload exceeds size limit")
)

type managerOptions struct {
	cacheTTL time.Duration
}

type Option func(*managerOptions)

func WithCacheTTL(ttl time.Duration) Option {
	return func(o *managerOptions) {
		o.cacheTTL = ttl
	}
}

type listingCache struct {
	version uint64
	listed  time.Time
	outputs []OutputInfo
}

// Manager owns the upload and output directories: placement of new files,
// name sanitation, listings and retention sweeps all go through it.
type Manager struct {
	uploadDir      string
	outputDir      string
	maxUploadBytes int64
	logger         zerolog.Logger

	mu            sync.RWMutex
	cacheTTL      time.Duration
	cache         *listingCache
	configVersion uint64
}

func NewManager(
	uploadDir string,
	outputDir string,
	maxUploadBytes int64,
	logger zerolog.Logger,
	opts ...Option,
) (*Manager, error) {
	options := managerOptions{
		cacheTTL: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(&options)
	}

	if uploadDir == "" || outputDir == "" {
		return nil, fmt.Errorf("upload and output directories are required")
	}
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	return &Manager{
		uploadDir:      uploadDir,
		outputDir:      outputDir,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
		cacheTTL:       options.cacheTTL,
	}, nil
}

func (m *Manager) UploadDir() string { return m.uploadDir }
func (m *Manager) OutputDir() string { return m.outputDir }

func (m *Manager) Invalidate() {
	m.mu.Lock()
	m.cache = nil
	m.configVersion++
	m.mu.Unlock()
}

// SaveUpload streams r into the upload directory under a collision-free
// name. The copy is bounded; a source larger than the configured cap is
// rejected and nothing is left on disk.
func (m *Manager) SaveUpload(name string, r io.Reader) (UploadInfo, error) {
	base := file.SanitizeBase(name)
	if base == "" {
		return UploadInfo{}, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	stored := uuid.NewString()[:8] + "_" + base
	path := filepath.Join(m.uploadDir, stored)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return UploadInfo{}, fmt.Errorf("create upload: %w", err)
	}

	written, err := io.Copy(f, io.LimitReader(r, m.maxUploadBytes+1))
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return UploadInfo{}, fmt.Errorf("write upload: %w", err)
	}
	if written > m.maxUploadBytes {
		_ = os.Remove(path)
		return UploadInfo{}, fmt.Errorf("%w: cap is %d MB", ErrUploadTooLarge,
			m.maxUploadBytes>>20)
	}

	m.logger.Info().Str("name", stored).Int64("bytes", written).Msg("upload stored")
	return UploadInfo{
		Name:    stored,
		Bytes:   written,
		SizeMB:  sizing.MB(written),
		Kind:    KindOf(stored),
		ModTime: time.Now(),
	}, nil
}

// UploadPath resolves a stored upload name to its absolute path.
func (m *Manager) UploadPath(name string) (string, error) {
	base := file.SanitizeBase(name)
	if base == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	path, ok := file.SafeJoin(m.uploadDir, base)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return "", err
	}
	return path, nil
}

func (m *Manager) ListUploads() ([]UploadInfo, error) {
	entries, err := os.ReadDir(m.uploadDir)
	if err != nil {
		return nil, err
	}

	ret := make([]UploadInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		ret = append(ret, UploadInfo{
			Name:    entry.Name(),
			Bytes:   info.Size(),
			SizeMB:  sizing.MB(info.Size()),
			Kind:    KindOf(entry.Name()),
			ModTime: info.ModTime(),
		})
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i].Name < ret[j].Name })
	return ret, nil
}

func (m *Manager) DeleteUpload(name string) error {
	path, err := m.UploadPath(name)
	if err != nil {
		return err
	}
	return os.Remove(path)
}

// NewSplitDir creates a fresh per-job directory under the output root.
func (m *Manager) NewSplitDir() (SplitDir, error) {
	rel := "split_" + uuid.NewString()[:8]
	abs := filepath.Join(m.outputDir, rel)
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return SplitDir{}, fmt.Errorf("create split dir: %w", err)
	}
	m.Invalidate()
	return SplitDir{Abs: abs, Rel: rel}, nil
}

// NewOutputPath reserves a name directly under the output root. An existing
// file with the same name gets a short unique prefix instead of being
// clobbered.
func (m *Manager) NewOutputPath(name string) (string, string, error) {
	base := file.SanitizeBase(name)
	if base == "" {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	abs := filepath.Join(m.outputDir, base)
	if _, err := os.Stat(abs); err == nil {
		base = uuid.NewString()[:8] + "_" + base
		abs = filepath.Join(m.outputDir, base)
	}
	m.Invalidate()
	return abs, base, nil
}

// OutputAbs resolves an output-relative path, confined to the output root.
func (m *Manager) OutputAbs(rel string) (string, error) {
	path, ok := file.SafeJoin(m.outputDir, rel)
	if !ok || path == filepath.Clean(m.outputDir) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, rel)
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, rel)
		}
		return "", err
	}
	return path, nil
}

func (m *Manager) ListOutputs(ctx context.Context) ([]OutputInfo, error) {
	m.mu.RLock()
	version := m.configVersion
	cacheTTL := m.cacheTTL
	if m.cache != nil && m.cache.version == version &&
		(cacheTTL <= 0 || time.Since(m.cache.listed) < cacheTTL) {
		cached := append([]OutputInfo(nil), m.cache.outputs...)
		m.mu.RUnlock()
		return cached, nil
	}
	m.mu.RUnlock()

	ret := make([]OutputInfo, 0)
	err := filepath.WalkDir(m.outputDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(m.outputDir, path)
		if err != nil {
			return err
		}
		ret = append(ret, OutputInfo{
			Path:    rel,
			Bytes:   info.Size(),
			SizeMB:  sizing.MB(info.Size()),
			Kind:    KindOf(rel),
			ModTime: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i].Path < ret[j].Path })

	m.mu.Lock()
	if m.configVersion == version {
		m.cache = &listingCache{
			version: version,
			listed:  time.Now(),
			outputs: append([]OutputInfo(nil), ret...),
		}
	}
	m.mu.Unlock()

	return ret, nil
}

// DeleteOutput removes a single output file or a whole split directory.
func (m *Manager) DeleteOutput(rel string) error {
	path, err := m.OutputAbs(rel)
	if err != nil {
		return err
	}

	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		err = os.RemoveAll(path)
	} else {
		err = os.Remove(path)
	}
	if err != nil {
		return err
	}
	m.Invalidate()
	return nil
}

// Sweep deletes uploads and outputs older than cutoff, then prunes empty
// split directories. It returns the number of files removed.
func (m *Manager) Sweep(ctx context.Context, cutoff time.Time) (int, error) {
	removed := 0
	for _, dir := range []string{m.uploadDir, m.outputDir} {
		stale, err := file.FindOlderThan(dir, cutoff)
		if err != nil {
			return removed, err
		}
		for _, path := range stale {
			select {
			case <-ctx.Done():
				return removed, ctx.Err()
			default:
			}
			if err := os.Remove(path); err != nil {
				m.logger.Warn().Err(err).Str("path", path).Msg("sweep skip")
				continue
			}
			removed++
		}
	}

	entries, err := os.ReadDir(m.outputDir)
	if err != nil {
		return removed, err
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		sub := filepath.Join(m.outputDir, entry.Name())
		children, err := os.ReadDir(sub)
		if err != nil || len(children) > 0 {
			continue
		}
		_ = os.Remove(sub)
	}

	if removed > 0 {
		m.logger.Info().Int("removed", removed).Msg("retention sweep done")
		m.Invalidate()
	}
	return removed, nil
}
