package importer

import (
	"io"
	"io/fs"
	"os"
	"path"

	times "gopkg.in/djherbis/times.v1"

	"github.com/SBOne-Kenobi/OneFS/node"
	"github.com/SBOne-Kenobi/OneFS/store"
)

// excludedNames mirrors the teacher's sync.excludedPaths: host-fs entries
// that never belong in an imported container.
var excludedNames = map[string]bool{
	"lost+found":                true,
	".DS_Store":                 true,
	"System Volume Information": true,
}

// HostFS imports a host io/fs.FS subtree into the store, one of the two
// core-shipped Importer implementations (spec.md §6.2's "embedders supply
// a host-filesystem importer"), grounded on the teacher's
// sync.CopyFileSystem walk (sync/copy.go) generalized from
// filesystem.FileSystem destinations to the record store's create_file/
// data-cell surface.
//
// root, when non-empty, is the real OS directory fsys was rooted at
// (os.DirFS(root)); it lets ImportFile recover a host file's birth time
// via times.Stat, which needs a real path rather than an fs.FS handle.
// A HostFS built over a non-OS fs.FS (embed.FS, an archive reader) simply
// leaves root empty and falls back to the import-time stamp.
type HostFS struct {
	fsys fs.FS
	root string
}

var _ Importer = HostFS{}

// NewHostFS wraps an arbitrary fs.FS as an Importer, without birth-time
// recovery.
func NewHostFS(fsys fs.FS) HostFS {
	return HostFS{fsys: fsys}
}

// NewHostDir wraps the real OS directory root as an Importer, with
// birth-time recovery.
func NewHostDir(root string) HostFS {
	return HostFS{fsys: os.DirFS(root), root: root}
}

// ImportFile streams src's content in, then best-effort restores the
// host's recorded birth time over the import-time stamp CreateFile gave
// the record (teacher's copy.go restores timestamps only after data is
// written, "tar semantics"; a host lacking birth-time support is left
// with the import timestamp).
func (h HostFS) ImportFile(dst *store.Store, destFolder node.Path, src FileSource) error {
	if err := importFileInto(dst, destFolder, src); err != nil {
		return err
	}
	hf, ok := src.(hostFile)
	if !ok || h.root == "" {
		return nil
	}
	ts, err := times.Stat(path.Join(h.root, hf.path))
	if err != nil || !ts.HasBirthTime() {
		return nil
	}
	_ = dst.SetCreationTime(destFolder.AddFile(src.Name()), ts.BirthTime())
	return nil
}

func (h HostFS) ImportFolder(dst *store.Store, destFolder node.Path, src FolderSource) error {
	return importFolderInto(dst, destFolder, src, h.ImportFile, h.ImportFolder)
}

// FileAt adapts the host path p into a FileSource reading through fsys.
func (h HostFS) FileAt(p string) (FileSource, error) {
	info, err := fs.Stat(h.fsys, p)
	if err != nil {
		return nil, err
	}
	return hostFile{fsys: h.fsys, path: p, name: info.Name()}, nil
}

// FolderAt adapts the host directory p into a FolderSource over fsys.
func (h HostFS) FolderAt(p string) (FolderSource, error) {
	info, err := fs.Stat(h.fsys, p)
	if err != nil {
		return nil, err
	}
	return hostFolder{fsys: h.fsys, path: p, name: info.Name()}, nil
}

type hostFile struct {
	fsys fs.FS
	path string
	name string
}

func (f hostFile) Name() string { return f.name }

func (f hostFile) Open() (io.ReadCloser, error) {
	return f.fsys.Open(f.path)
}

type hostFolder struct {
	fsys fs.FS
	path string
	name string
}

func (f hostFolder) Name() string { return f.name }

func (f hostFolder) Files() ([]FileSource, error) {
	entries, err := fs.ReadDir(f.fsys, f.path)
	if err != nil {
		return nil, err
	}
	var out []FileSource
	for _, e := range entries {
		if excludedNames[e.Name()] || e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, err
		}
		if !info.Mode().IsRegular() {
			continue
		}
		out = append(out, hostFile{fsys: f.fsys, path: f.child(e.Name()), name: e.Name()})
	}
	return out, nil
}

func (f hostFolder) Folders() ([]FolderSource, error) {
	entries, err := fs.ReadDir(f.fsys, f.path)
	if err != nil {
		return nil, err
	}
	var out []FolderSource
	for _, e := range entries {
		if excludedNames[e.Name()] || !e.IsDir() {
			continue
		}
		out = append(out, hostFolder{fsys: f.fsys, path: f.child(e.Name()), name: e.Name()})
	}
	return out, nil
}

func (f hostFolder) child(name string) string {
	if f.path == "." {
		return name
	}
	return path.Join(f.path, name)
}
