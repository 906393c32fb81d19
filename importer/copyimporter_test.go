package importer

import (
	"io"
	"testing"
	"time"

	"github.com/SBOne-Kenobi/OneFS/internal/testhelper"
	"github.com/SBOne-Kenobi/OneFS/node"
	"github.com/SBOne-Kenobi/OneFS/store"
	"github.com/SBOne-Kenobi/OneFS/util/timestamp"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	mem := testhelper.NewMemStorage()
	s := store.New(mem, timestamp.Fixed(time.Unix(1700000000, 0).UTC()), nil)
	if err := s.Init(true); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return s
}

func TestCopyImporterImportsFile(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.CreateFile(node.ParsePath("/src.txt")); err != nil {
		t.Fatalf("CreateFile: %v", err)
	}
	cell, err := s.GetMutableFileDataCell(node.ParsePath("/src.txt"))
	if err != nil {
		t.Fatalf("GetMutableFileDataCell: %v", err)
	}
	if _, err := cell.Write(0, []byte("hello")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	imp := NewCopyImporter(s)
	src, err := imp.FileAt(node.ParsePath("/src.txt"))
	if err != nil {
		t.Fatalf("FileAt: %v", err)
	}

	if err := imp.ImportFile(s, node.Root(), renamed(src, "dest.txt")); err != nil {
		t.Fatalf("ImportFile: %v", err)
	}

	destCell, err := s.GetFileDataCell(node.ParsePath("/dest.txt"))
	if err != nil {
		t.Fatalf("GetFileDataCell: %v", err)
	}
	data, err := io.ReadAll(destCell.Reader())
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(data) != "hello" {
		t.Fatalf("expected %q, got %q", "hello", data)
	}
}

func TestCopyImporterImportsFolderRecursively(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.CreateFolder(node.ParsePath("/src/")); err != nil {
		t.Fatalf("CreateFolder /src/: %v", err)
	}
	if _, err := s.CreateFolder(node.ParsePath("/src/nested/")); err != nil {
		t.Fatalf("CreateFolder /src/nested/: %v", err)
	}
	if _, err := s.CreateFile(node.ParsePath("/src/a.txt")); err != nil {
		t.Fatalf("CreateFile /src/a.txt: %v", err)
	}
	if _, err := s.CreateFile(node.ParsePath("/src/nested/b.txt")); err != nil {
		t.Fatalf("CreateFile /src/nested/b.txt: %v", err)
	}

	imp := NewCopyImporter(s)
	src, err := imp.FolderAt(node.ParsePath("/src/"))
	if err != nil {
		t.Fatalf("FolderAt: %v", err)
	}
	if err := imp.ImportFolder(s, node.Root(), renamedFolder(src, "dup")); err != nil {
		t.Fatalf("ImportFolder: %v", err)
	}

	if _, _, err := s.Find(node.ParsePath("/dup/a.txt")); err != nil {
		t.Fatalf("Find /dup/a.txt: %v", err)
	}
	if _, _, err := s.Find(node.ParsePath("/dup/nested/b.txt")); err != nil {
		t.Fatalf("Find /dup/nested/b.txt: %v", err)
	}
}

type renamedFile struct {
	FileSource
	name string
}

func (r renamedFile) Name() string { return r.name }

func renamed(src FileSource, name string) FileSource {
	return renamedFile{FileSource: src, name: name}
}

type renamedFolderWrap struct {
	FolderSource
	name string
}

func (r renamedFolderWrap) Name() string { return r.name }

func renamedFolder(src FolderSource, name string) FolderSource {
	return renamedFolderWrap{FolderSource: src, name: name}
}
