package catz

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Flat is a directory of gzipped files, eg. the stored windows of runs.
type Flat struct {
	root string
}

// NewFlat returns a Flat rooted at dir, made absolute.
func NewFlat(dir string) *Flat {
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	return &Flat{root: filepath.Clean(dir)}
}

// Sub returns the Flat of a subdirectory. It is created on first write.
func (f *Flat) Sub(name string) *Flat {
	return &Flat{root: filepath.Join(f.root, name)}
}

func (f *Flat) Path() string { return f.root }

func (f *Flat) Ensure() error {
	return os.MkdirAll(f.root, DefaultGZFileWriterConfig().DirPerm)
}

// Has reports whether the named file exists.
func (f *Flat) Has(name string) bool {
	_, err := os.Stat(filepath.Join(f.root, name))
	return err == nil
}

// Create truncates or creates the named file for gzipped writing.
func (f *Flat) Create(name string) (*GZFileWriter, error) {
	conf := DefaultGZFileWriterConfig()
	conf.Flag = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	return NewGZFileWriter(filepath.Join(f.root, name), conf)
}

func (f *Flat) Open(name string) (*GZReader, error) {
	return NewGZFileReader(filepath.Join(f.root, name))
}

// Remove deletes the named file. A missing file is not an error.
func (f *Flat) Remove(name string) error {
	err := os.Remove(filepath.Join(f.root, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// Names lists the files ending in suffix, sorted. A missing directory has none.
func (f *Flat) Names(suffix string) ([]string, error) {
	entries, err := os.ReadDir(f.root)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.Type().IsRegular() && strings.HasSuffix(e.Name(), suffix) {
			out = append(out, e.Name())
		}
	}
	slices.Sort(out)
	return out, nil
}
