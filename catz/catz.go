/*
Package catz reads and writes gzip-compressed files and streams:
recorded sessions (.csv.gz), model exports (.json.gz) and saved run results.
*/
package catz

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/params"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"
)

type GZFileWriter struct {
	f      *os.File
	gzw    *gzip.Writer
	locked bool
	closed bool

	GZFileWriterConfig
}

type GZFileWriterConfig struct {
	CompressionLevel int
	Flag             int
	FilePerm         os.FileMode
	DirPerm          os.FileMode
}

func DefaultGZFileWriterConfig() *GZFileWriterConfig {
	return &GZFileWriterConfig{
		CompressionLevel: params.DefaultGZipCompressionLevel,
		Flag:             os.O_WRONLY | os.O_APPEND | os.O_CREATE,
		FilePerm:         0660,
		DirPerm:          0770,
	}
}

func NewGZFileWriter(path string, config *GZFileWriterConfig) (*GZFileWriter, error) {
	if config == nil {
		config = DefaultGZFileWriterConfig()
	}
	if err := os.MkdirAll(filepath.Dir(path), config.DirPerm); err != nil {
		return nil, err
	}
	fi, err := os.OpenFile(path, config.Flag, config.FilePerm)
	if err != nil {
		return nil, err
	}
	gzw, err := gzip.NewWriterLevel(fi, config.CompressionLevel)
	if err != nil {
		_ = fi.Close()
		return nil, err
	}
	return &GZFileWriter{f: fi, gzw: gzw, GZFileWriterConfig: *config}, nil
}

// Write compresses p to the file, taking an exclusive lock on first write.
// The lock is released on Close.
func (g *GZFileWriter) Write(p []byte) (int, error) {
	g.lock()
	return g.gzw.Write(p)
}

// lock locks the file for exclusive access.
// The lock will be invalidated if and when the file is closed.
func (g *GZFileWriter) lock() {
	if g.locked || g.closed || g.f == nil {
		return
	}
	_ = syscall.Flock(int(g.f.Fd()), syscall.LOCK_EX)
	g.locked = true
}

// unlock unlocks the file. It is a no-op if the file is not locked.
func (g *GZFileWriter) unlock() {
	if !g.locked || g.closed || g.f == nil {
		return
	}
	_ = syscall.Flock(int(g.f.Fd()), syscall.LOCK_UN)
	g.locked = false
}

func (g *GZFileWriter) Close() error {
	if g.closed {
		return nil
	}
	defer func() {
		g.closed = true
	}()
	defer g.unlock()
	if err := g.gzw.Close(); err != nil {
		return err
	}
	return g.f.Close()
}

// MaybeClose closes the writer, discarding errors.
func (g *GZFileWriter) MaybeClose() {
	_ = g.Close()
}

func (g *GZFileWriter) Path() string {
	return g.f.Name()
}

// GZReader decompresses an underlying stream, closing both on Close.
type GZReader struct {
	src    io.ReadCloser
	gzr    *gzip.Reader
	closed bool
}

// NewGZReader wraps a compressed stream.
func NewGZReader(src io.ReadCloser) (*GZReader, error) {
	gzr, err := gzip.NewReader(src)
	if err != nil {
		_ = src.Close()
		return nil, err
	}
	return &GZReader{src: src, gzr: gzr}, nil
}

// NewGZFileReader opens a gzip file.
func NewGZFileReader(path string) (*GZReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return NewGZReader(f)
}

// Read satisfies the io.Reader interface.
func (g *GZReader) Read(p []byte) (int, error) {
	return g.gzr.Read(p)
}

// Close closes the gzip reader and the underlying stream.
func (g *GZReader) Close() error {
	if g.closed {
		return nil
	}
	g.closed = true
	gzErr := g.gzr.Close()
	if err := g.src.Close(); err != nil {
		return err
	}
	return gzErr
}

func (g *GZReader) MaybeClose() {
	_ = g.Close()
}

var gzipMagic = []byte{0x1f, 0x8b}

// IsGZPath reports whether a path or URI names a gzip file.
func IsGZPath(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".gz")
}

// MaybeGZ returns a reader that decompresses src if it starts with the gzip
// magic bytes, and passes it through unchanged otherwise.
func MaybeGZ(src io.ReadCloser) (io.ReadCloser, error) {
	br := bufio.NewReader(src)
	head, err := br.Peek(len(gzipMagic))
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		_ = src.Close()
		return nil, err
	}
	rc := &readCloser{Reader: br, Closer: src}
	if bytes.Equal(head, gzipMagic) {
		return NewGZReader(rc)
	}
	return rc, nil
}

type readCloser struct {
	io.Reader
	io.Closer
}

// OpenFile opens a plain or gzip file, decompressing by content.
func OpenFile(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return MaybeGZ(f)
}
