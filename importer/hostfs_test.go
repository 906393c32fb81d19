package importer

import (
	"io"
	"testing"
	"testing/fstest"

	"github.com/SBOne-Kenobi/OneFS/node"
)

func TestHostFSImportsFile(t *testing.T) {
	s := newTestStore(t)
	fsys := fstest.MapFS{
		"greeting.txt": &fstest.MapFile{Data: []byte("hi there")},
	}
	h := NewHostFS(fsys)

	src, err := h.FileAt("greeting.txt")
	if err != nil {
		t.Fatalf("FileAt: %v", err)
	}
	if err := h.ImportFile(s, node.Root(), src); err != nil {
		t.Fatalf("ImportFile: %v", err)
	}

	cell, err := s.GetFileDataCell(node.ParsePath("/greeting.txt"))
	if err != nil {
		t.Fatalf("GetFileDataCell: %v", err)
	}
	data, err := io.ReadAll(cell.Reader())
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(data) != "hi there" {
		t.Fatalf("expected %q, got %q", "hi there", data)
	}
}

func TestHostFSImportsFolderRecursivelyAndSkipsExcluded(t *testing.T) {
	s := newTestStore(t)
	fsys := fstest.MapFS{
		"tree/a.txt":     &fstest.MapFile{Data: []byte("a")},
		"tree/sub/b.txt": &fstest.MapFile{Data: []byte("b")},
		"tree/.DS_Store": &fstest.MapFile{Data: []byte("junk")},
	}
	h := NewHostFS(fsys)

	src, err := h.FolderAt("tree")
	if err != nil {
		t.Fatalf("FolderAt: %v", err)
	}
	if err := h.ImportFolder(s, node.Root(), src); err != nil {
		t.Fatalf("ImportFolder: %v", err)
	}

	if _, _, err := s.Find(node.ParsePath("/tree/a.txt")); err != nil {
		t.Fatalf("Find /tree/a.txt: %v", err)
	}
	if _, _, err := s.Find(node.ParsePath("/tree/sub/b.txt")); err != nil {
		t.Fatalf("Find /tree/sub/b.txt: %v", err)
	}
	if _, _, err := s.Find(node.ParsePath("/tree/.DS_Store")); err == nil {
		t.Fatal("excluded name .DS_Store should not have been imported")
	}
}
