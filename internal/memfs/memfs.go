// Package memfs implements an in-memory fs.FS over a flat map of path
// to file content, used to exercise cfg's Include Resolver (see
// cfg.WithFS) without touching the real filesystem in tests.
package memfs

import (
	"io"
	"io/fs"
	"path"
	"sort"
	"time"
)

// FS is a map[string]string-backed fs.FS: keys are slash-separated
// paths (fs.FS convention, no leading slash), values are file contents.
// Unlike vippsas-sqlcode's go/mapfs.MapFS — which maps basenames to
// real on-disk paths and delegates Open to os.Open — FS holds content
// directly, since the documents it serves are synthesized inline in
// test code rather than checked in as fixture files.
type FS map[string]string

var _ fs.FS = FS(nil)
var _ fs.ReadFileFS = FS(nil)

// Open implements fs.FS. A directory lookup returns a virtualDir
// listing every entry whose immediate parent is dir.
func (m FS) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	if content, ok := m[name]; ok {
		return &openFile{name: name, content: content}, nil
	}
	if entries, ok := m.readDir(name); ok {
		return &virtualDir{name: name, entries: entries}, nil
	}
	return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
}

// ReadFile implements fs.ReadFileFS, letting fs.ReadFile skip the
// Open/Read/Close dance for the common case.
func (m FS) ReadFile(name string) ([]byte, error) {
	content, ok := m[name]
	if !ok {
		return nil, &fs.PathError{Op: "readfile", Path: name, Err: fs.ErrNotExist}
	}
	return []byte(content), nil
}

func (m FS) readDir(dir string) ([]fs.DirEntry, bool) {
	if dir == "." {
		dir = ""
	}
	seen := map[string]bool{}
	var entries []fs.DirEntry
	var found bool
	for p := range m {
		d, base := path.Split(p)
		d = path.Clean(d)
		if d == "." {
			d = ""
		}
		if d != dir {
			continue
		}
		found = true
		if seen[base] {
			continue
		}
		seen[base] = true
		entries = append(entries, fileDirEntry{name: base, size: int64(len(m[p]))})
	}
	if !found {
		return nil, false
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	return entries, true
}

type openFile struct {
	name    string
	content string
	pos     int
}

func (f *openFile) Stat() (fs.FileInfo, error) {
	return fileInfo{name: path.Base(f.name), size: int64(len(f.content))}, nil
}

func (f *openFile) Read(p []byte) (int, error) {
	if f.pos >= len(f.content) {
		return 0, io.EOF
	}
	n := copy(p, f.content[f.pos:])
	f.pos += n
	return n, nil
}

func (f *openFile) Close() error { return nil }

type virtualDir struct {
	name    string
	entries []fs.DirEntry
	pos     int
}

func (d *virtualDir) Stat() (fs.FileInfo, error) {
	return fileInfo{name: path.Base(d.name), isDir: true}, nil
}

func (d *virtualDir) Read([]byte) (int, error) { return 0, io.EOF }
func (d *virtualDir) Close() error              { return nil }

func (d *virtualDir) ReadDir(n int) ([]fs.DirEntry, error) {
	if d.pos >= len(d.entries) {
		if n <= 0 {
			return nil, nil
		}
		return nil, io.EOF
	}
	if n <= 0 || d.pos+n > len(d.entries) {
		n = len(d.entries) - d.pos
	}
	out := d.entries[d.pos : d.pos+n]
	d.pos += n
	return out, nil
}

type fileDirEntry struct {
	name string
	size int64
}

func (e fileDirEntry) Name() string               { return e.name }
func (e fileDirEntry) IsDir() bool                 { return false }
func (e fileDirEntry) Type() fs.FileMode           { return 0 }
func (e fileDirEntry) Info() (fs.FileInfo, error)  { return fileInfo{name: e.name, size: e.size}, nil }

type fileInfo struct {
	name  string
	size  int64
	isDir bool
}

func (i fileInfo) Name() string       { return i.name }
func (i fileInfo) Size() int64        { return i.size }
func (i fileInfo) Mode() fs.FileMode {
	if i.isDir {
		return fs.ModeDir
	}
	return 0
}
func (i fileInfo) ModTime() time.Time { return time.Time{} }
func (i fileInfo) IsDir() bool        { return i.isDir }
func (i fileInfo) Sys() any           { return nil }
