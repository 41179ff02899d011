package logging

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

type logFile struct {
	path    string
	modTime time.Time
}

// rotate makes room for one new file in dir: of the cmdflow_*.log files
// there, only the newest maxFiles-1 are kept. maxFiles <= 0 keeps all.
func rotate(dir string, maxFiles int) error {
	if maxFiles <= 0 {
		return nil
	}
	files, err := logFiles(dir)
	if err != nil {
		return err
	}
	keep := maxFiles - 1
	if len(files) <= keep {
		return nil
	}
	slices.SortFunc(files, func(a, b logFile) int {
		if c := b.modTime.Compare(a.modTime); c != 0 {
			return c
		}
		return strings.Compare(b.path, a.path)
	})
	var errs []error
	for _, f := range files[keep:] {
		if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// logFiles lists the files written by Init, newest first once sorted.
func logFiles(dir string) ([]logFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []logFile
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if ok, _ := filepath.Match(filePrefix+"*.log", e.Name()); !ok {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, logFile{path: filepath.Join(dir, e.Name()), modTime: info.ModTime()})
	}
	return files, nil
}
