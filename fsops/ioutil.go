package fsops

import (
	"io"
	"io/fs"
	"time"

	"github.com/SBOne-Kenobi/OneFS/node"
)

// ioFS adapts a Service-plus-Cursor pair to io/fs.FS, read-only, following
// the teacher's converter.FS wrapper (filesystem.FileSystem -> fs.FS).
type ioFS struct {
	service *Service
	cursor  Cursor
}

// AsIOFS exposes cursor's current folder as a standard io/fs.FS, so it can
// be consumed by anything written against the standard library (fs.WalkDir,
// http.FileServer, archive/zip, and so on).
func AsIOFS(service *Service, cursor Cursor) fs.FS {
	return &ioFS{service: service, cursor: cursor}
}

func (f *ioFS) Open(name string) (fs.File, error) {
	path := f.service.resolve(f.cursor, name, false)
	cell, err := f.service.store.GetFileDataCell(path)
	if err == nil {
		loader, lerr := f.service.store.GetFileLoader(path)
		if lerr != nil {
			return nil, lerr
		}
		defer loader.Close()
		fn, lerr := loader.Load()
		if lerr != nil {
			return nil, lerr
		}
		return &ioFile{r: cell.Reader(), info: fileInfo{name: fn.Name, size: cell.Filled(), modTime: fn.ModificationTime}}, nil
	}
	if !node.IsNotFound(err) {
		return nil, err
	}

	dirPath := f.service.resolve(f.cursor, name, true)
	loader, derr := f.service.store.GetFolderLoader(dirPath)
	if derr != nil {
		return nil, derr
	}
	defer loader.Close()
	folder, derr := loader.Load()
	if derr != nil {
		return nil, derr
	}
	return &ioDir{name: folder.Name, folder: folder}, nil
}

type ioFile struct {
	r    io.Reader
	info fs.FileInfo
}

func (f *ioFile) Stat() (fs.FileInfo, error) { return f.info, nil }
func (f *ioFile) Read(p []byte) (int, error) { return f.r.Read(p) }
func (f *ioFile) Close() error                { return nil }

type ioDir struct {
	name   string
	folder *node.FolderNode
}

func (d *ioDir) Stat() (fs.FileInfo, error) {
	return fileInfo{name: d.name, isDir: true}, nil
}
func (d *ioDir) Read([]byte) (int, error) { return 0, io.EOF }
func (d *ioDir) Close() error              { return nil }

func (d *ioDir) ReadDir(n int) ([]fs.DirEntry, error) {
	var entries []fs.DirEntry
	for _, fl := range d.folder.Files {
		entries = append(entries, dirEntry{name: fl.Name(), isDir: false})
	}
	for _, fol := range d.folder.Folders {
		entries = append(entries, dirEntry{name: fol.Name(), isDir: true})
	}
	if n <= 0 || n >= len(entries) {
		return entries, nil
	}
	return entries[:n], nil
}

type dirEntry struct {
	name  string
	isDir bool
}

func (e dirEntry) Name() string               { return e.name }
func (e dirEntry) IsDir() bool                 { return e.isDir }
func (e dirEntry) Type() fs.FileMode           { return e.Info2().Mode() }
func (e dirEntry) Info() (fs.FileInfo, error)  { return e.Info2(), nil }
func (e dirEntry) Info2() fileInfo             { return fileInfo{name: e.name, isDir: e.isDir} }

type fileInfo struct {
	name    string
	size    int64
	isDir   bool
	modTime time.Time
}

func (i fileInfo) Name() string       { return i.name }
func (i fileInfo) Size() int64        { return i.size }
func (i fileInfo) ModTime() time.Time { return i.modTime }
func (i fileInfo) IsDir() bool        { return i.isDir }
func (i fileInfo) Sys() any           { return nil }
func (i fileInfo) Mode() fs.FileMode {
	if i.isDir {
		return fs.ModeDir | 0o555
	}
	return 0o444
}
