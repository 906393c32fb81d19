// Package importer streams bytes into a freshly created file or folder
// subtree (spec.md §6.2): the core ships CopyImporter (in-store
// duplication) and HostFS (host io/fs.FS -> container), both behind the
// same Importer contract so fsops.ImportFile/ImportDirectory can drive
// either without caring which one it got.
package importer

import (
	"crypto/md5"
	"io"

	"github.com/SBOne-Kenobi/OneFS/node"
	"github.com/SBOne-Kenobi/OneFS/store"
)

// FileSource names a single file to import and opens its byte content.
// Go methods cannot declare their own type parameters, so spec.md
// §6.2's Importer<FileId, FolderId> trait is reshaped here: instead of
// threading a generic FileId through the service, the identity of "which
// host path" or "which stored file" lives inside the concrete FileSource
// value itself (hostFile carries an os path, copyFileSource carries a
// store path). See DESIGN.md's Open Question notes.
type FileSource interface {
	Name() string
	Open() (io.ReadCloser, error)
}

// FolderSource names a folder to import and lists its direct children.
type FolderSource interface {
	Name() string
	Files() ([]FileSource, error)
	Folders() ([]FolderSource, error)
}

// Importer creates records in dst under destFolder and streams content
// into them from src, per spec.md §6.2.
type Importer interface {
	ImportFile(dst *store.Store, destFolder node.Path, src FileSource) error
	ImportFolder(dst *store.Store, destFolder node.Path, src FolderSource) error
}

// importFileInto creates destFolder.AddFile(src.Name()), streams src's
// bytes into its data cell, and stamps the resulting MD5. Shared by both
// importer implementations.
func importFileInto(dst *store.Store, destFolder node.Path, src FileSource) error {
	path := destFolder.AddFile(src.Name())
	if _, err := dst.CreateFile(path); err != nil {
		return err
	}

	r, err := src.Open()
	if err != nil {
		return err
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	if len(data) > 0 {
		cell, err := dst.GetMutableFileDataCell(path)
		if err != nil {
			return err
		}
		if _, err := cell.Write(0, data); err != nil {
			return err
		}
	}
	return dst.SetMD5(path, md5.Sum(data))
}

// importFolderInto creates destFolder.AddFolder(src.Name()), then recurses
// into src's files and subfolders via importFn, the caller's own
// ImportFile/ImportFolder (so host-fs and in-store imports each keep their
// own source-opening logic at every depth).
func importFolderInto(dst *store.Store, destFolder node.Path, src FolderSource, importFile func(*store.Store, node.Path, FileSource) error, importFolder func(*store.Store, node.Path, FolderSource) error) error {
	path := destFolder.AddFolder(src.Name())
	if _, err := dst.CreateFolder(path); err != nil {
		return err
	}

	files, err := src.Files()
	if err != nil {
		return err
	}
	for _, f := range files {
		if err := importFile(dst, path, f); err != nil {
			return err
		}
	}

	folders, err := src.Folders()
	if err != nil {
		return err
	}
	for _, fol := range folders {
		if err := importFolder(dst, path, fol); err != nil {
			return err
		}
	}
	return nil
}
