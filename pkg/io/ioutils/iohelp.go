// Package ioutils opens and creates data files, transparently handling gzip.
package ioutils

import (
	"bufio"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
)

// gzipMagic is the two-byte gzip header.
var gzipMagic = [2]byte{0x1f, 0x8b}

// Stdio is the path that selects stdin or stdout.
const Stdio = "-"

// Open opens path, or stdin for "-" or "", and decompresses gzip input
// detected by extension or by magic bytes.
func Open(path string) (io.ReadCloser, error) {
	if path == Stdio || path == "" {
		return sniffGzip(bufio.NewReader(os.Stdin), func() error { return nil })
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	rc, err := sniffGzip(bufio.NewReader(f), f.Close)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return rc, nil
}

func sniffGzip(br *bufio.Reader, closeFn func() error) (io.ReadCloser, error) {
	b, err := br.Peek(2)
	if err != nil || b[0] != gzipMagic[0] || b[1] != gzipMagic[1] {
		return readCloser{Reader: br, closeFn: closeFn}, nil
	}
	zr, err := gzip.NewReader(br)
	if err != nil {
		return nil, err
	}
	return readCloser{Reader: zr, closeFn: func() error {
		zerr := zr.Close()
		if err := closeFn(); err != nil {
			return err
		}
		return zerr
	}}, nil
}

// Create creates path, or writes to stdout for "-" or "". A .gz path is
// gzip compressed. Output is buffered until Close.
func Create(path string) (io.WriteCloser, error) {
	if path == Stdio || path == "" {
		bw := bufio.NewWriter(os.Stdout)
		return writeCloser{Writer: bw, closeFn: bw.Flush}, nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	bw := bufio.NewWriter(f)
	if filepath.Ext(path) != ".gz" {
		return writeCloser{Writer: bw, closeFn: func() error {
			if err := bw.Flush(); err != nil {
				_ = f.Close()
				return err
			}
			return f.Close()
		}}, nil
	}
	zw := gzip.NewWriter(bw)
	return writeCloser{Writer: zw, closeFn: func() error {
		for _, step := range []func() error{zw.Close, bw.Flush} {
			if err := step(); err != nil {
				_ = f.Close()
				return err
			}
		}
		return f.Close()
	}}, nil
}

// TrimExt strips a trailing .gz and then the format extension, so
// "rows.csv.gz" becomes "rows".
func TrimExt(path string) string {
	if filepath.Ext(path) == ".gz" {
		path = path[:len(path)-3]
	}
	return path[:len(path)-len(filepath.Ext(path))]
}

type readCloser struct {
	io.Reader
	closeFn func() error
}

func (r readCloser) Close() error { return r.closeFn() }

type writeCloser struct {
	io.Writer
	closeFn func() error
}

func (w writeCloser) Close() error { return w.closeFn() }
