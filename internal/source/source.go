// Package source fetches the raw alarm CSV from a local file or an HTTP URL.
package source

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/afero"
)

// ErrEmptySource is returned when no source location is configured.
var ErrEmptySource = errors.New("source: location is empty")

// Loader returns the full CSV text of the alarm file.
type Loader interface {
	Load(ctx context.Context) (string, error)
	// Location describes where the data comes from, safe for logging.
	Location() string
}

// New picks a loader for location: http(s) URLs get an HTTPLoader with a
// disk cache in cacheDir, anything else is read as a path on fsys.
func New(location string, fsys afero.Fs, cacheDir string) (Loader, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, ErrEmptySource
	}
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	if IsRemote(location) {
		return NewHTTPLoader(location, fsys, cacheDir), nil
	}
	return NewFileLoader(fsys, location), nil
}

// IsRemote reports whether location is an http or https URL.
func IsRemote(location string) bool {
	l := strings.ToLower(location)
	return strings.HasPrefix(l, "http://") || strings.HasPrefix(l, "https://")
}

// FileLoader reads the CSV from a filesystem path.
type FileLoader struct {
	fs   afero.Fs
	path string
}

func NewFileLoader(fsys afero.Fs, path string) *FileLoader {
	return &FileLoader{fs: fsys, path: path}
}

func (f *FileLoader) Load(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := afero.ReadFile(f.fs, f.path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", f.path, err)
	}
	return string(data), nil
}

func (f *FileLoader) Location() string { return f.path }

// Path returns the file being read.
func (f *FileLoader) Path() string { return f.path }
