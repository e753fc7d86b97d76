package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"rescale/internal/scaler"
)

// maxSuffix bounds the " (n)" search for a free file name.
const maxSuffix = 9999

// Saver writes encoded outputs into a directory.
type Saver struct {
	Dir string
	// Overwrite replaces an existing file of the same name. Otherwise a
	// " (n)" suffix is added before the extension.
	Overwrite bool
}

// Save writes out to s.Dir and returns the final path. The file is written
// to a temporary name first and renamed into place.
func (s Saver) Save(out scaler.Output) (string, error) {
	if out.Filename == "" || filepath.Base(out.Filename) != out.Filename {
		return "", fmt.Errorf("invalid output file name %q", out.Filename)
	}

	dir := s.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	destPath := filepath.Join(dir, out.Filename)
	if !s.Overwrite {
		free, err := freePath(destPath)
		if err != nil {
			return "", err
		}
		destPath = free
	}

	tmpFile, err := os.CreateTemp(dir, "rescale-*.tmp")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmpFile.Name())

	if err := tmpFile.Chmod(0o644); err != nil {
		_ = tmpFile.Close()
		return "", err
	}
	if _, err := tmpFile.Write(out.Data); err != nil {
		_ = tmpFile.Close()
		return "", err
	}
	if err := tmpFile.Sync(); err != nil {
		_ = tmpFile.Close()
		return "", err
	}
	if err := tmpFile.Close(); err != nil {
		return "", err
	}

	if err := replaceFile(tmpFile.Name(), destPath); err != nil {
		return "", err
	}
	return destPath, nil
}

// freePath returns path, or the first "name (n).ext" variant that does not
// exist yet.
func freePath(path string) (string, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return path, nil
	} else if err != nil {
		return "", err
	}

	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)
	for n := 1; n <= maxSuffix; n++ {
		candidate := fmt.Sprintf("%s (%d)%s", stem, n, ext)
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate, nil
		} else if err != nil {
			return "", err
		}
	}
	return "", fmt.Errorf("no free file name for %s", path)
}

func replaceFile(tmpPath, destPath string) error {
	if err := os.Rename(tmpPath, destPath); err == nil {
		return nil
	}
	if err := os.Remove(destPath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return os.Rename(tmpPath, destPath)
}
