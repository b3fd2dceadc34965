package file

import (
	"os"
	"path/filepath"
	"time"
)

// FindOlderThan walks dir and collects regular files whose modification
// time is before cutoff. Missing directories yield an empty result.
func FindOlderThan(dir string, cutoff time.Time) ([]string, error) {
	var staleFiles []string

	err := filepath.Walk(dir, func(path string, info os.FileInfo,
		err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}

		if !info.IsDir() && info.ModTime().Before(cutoff) {
			staleFiles = append(staleFiles, path)
		}
		return nil
	})

	return staleFiles, err
}
