package fsops

import (
	"io"
	"testing"
	"time"

	"github.com/SBOne-Kenobi/OneFS/internal/testhelper"
	"github.com/SBOne-Kenobi/OneFS/node"
	"github.com/SBOne-Kenobi/OneFS/store"
	"github.com/SBOne-Kenobi/OneFS/util/timestamp"
)

// rootCursor is a fixed Cursor at the store's root, enough to exercise
// Service operations without pulling in the navigator package.
type rootCursor struct {
	loader node.FolderLoader
}

func (c rootCursor) Path() node.Path           { return node.Root() }
func (c rootCursor) Loader() node.FolderLoader { return c.loader }

func newTestService(t *testing.T) (*Service, *store.Store, Cursor) {
	t.Helper()
	mem := testhelper.NewMemStorage()
	s := store.New(mem, timestamp.Fixed(time.Unix(1700000000, 0).UTC()), nil)
	if err := s.Init(true); err != nil {
		t.Fatalf("Init: %v", err)
	}
	loader, err := s.GetFolderLoader(node.Root())
	if err != nil {
		t.Fatalf("GetFolderLoader: %v", err)
	}
	return New(s, nil), s, rootCursor{loader: loader}
}

func TestCreateFileAndReadBack(t *testing.T) {
	svc, _, cursor := newTestService(t)
	if err := svc.CreateFile(cursor, "report.txt", []byte("hello")); err != nil {
		t.Fatalf("CreateFile: %v", err)
	}
	data, err := svc.ReadFile(cursor, "report.txt")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "hello" {
		t.Fatalf("got %q, want %q", data, "hello")
	}
}

func TestCreateFileRejectsDuplicate(t *testing.T) {
	svc, _, cursor := newTestService(t)
	if err := svc.CreateFile(cursor, "a.txt", nil); err != nil {
		t.Fatalf("CreateFile: %v", err)
	}
	err := svc.CreateFile(cursor, "a.txt", nil)
	if err == nil {
		t.Fatal("expected an already-exists error")
	}
}

func TestCreateFolderNested(t *testing.T) {
	svc, s, cursor := newTestService(t)
	if err := svc.CreateFolder(cursor, "docs"); err != nil {
		t.Fatalf("CreateFolder: %v", err)
	}
	if err := svc.CreateFile(cursor, "docs/readme.txt", []byte("hi")); err != nil {
		t.Fatalf("CreateFile nested: %v", err)
	}
	if _, _, err := s.Find(node.ParsePath("/docs/readme.txt")); err != nil {
		t.Fatalf("Find: %v", err)
	}
}

func TestDeleteFolderRemovesDescendants(t *testing.T) {
	svc, s, cursor := newTestService(t)
	if err := svc.CreateFolder(cursor, "docs"); err != nil {
		t.Fatalf("CreateFolder: %v", err)
	}
	if err := svc.CreateFile(cursor, "docs/a.txt", []byte("a")); err != nil {
		t.Fatalf("CreateFile: %v", err)
	}
	if err := svc.CreateFolder(cursor, "docs/nested"); err != nil {
		t.Fatalf("CreateFolder nested: %v", err)
	}
	if err := svc.CreateFile(cursor, "docs/nested/b.txt", []byte("b")); err != nil {
		t.Fatalf("CreateFile nested: %v", err)
	}

	if err := svc.DeleteFolder(cursor, "docs"); err != nil {
		t.Fatalf("DeleteFolder: %v", err)
	}
	if _, _, err := s.Find(node.ParsePath("/docs/")); !node.IsNotFound(err) {
		t.Fatalf("expected /docs/ to be gone, got %v", err)
	}
}

func TestMoveFileKeepsSourceNameUnderTrailingSlashDest(t *testing.T) {
	svc, s, cursor := newTestService(t)
	if err := svc.CreateFolder(cursor, "dst"); err != nil {
		t.Fatalf("CreateFolder: %v", err)
	}
	if err := svc.CreateFile(cursor, "a.txt", []byte("a")); err != nil {
		t.Fatalf("CreateFile: %v", err)
	}
	if err := svc.MoveFile(cursor, "a.txt", "dst/", false); err != nil {
		t.Fatalf("MoveFile: %v", err)
	}
	if _, _, err := s.Find(node.ParsePath("/dst/a.txt")); err != nil {
		t.Fatalf("Find moved file: %v", err)
	}
	if _, _, err := s.Find(node.ParsePath("/a.txt")); !node.IsNotFound(err) {
		t.Fatalf("expected source to be gone, got %v", err)
	}
}

func TestMoveFileRenamesUnderExplicitDestName(t *testing.T) {
	svc, s, cursor := newTestService(t)
	if err := svc.CreateFile(cursor, "a.txt", []byte("a")); err != nil {
		t.Fatalf("CreateFile: %v", err)
	}
	if err := svc.MoveFile(cursor, "a.txt", "b.txt", false); err != nil {
		t.Fatalf("MoveFile: %v", err)
	}
	if _, _, err := s.Find(node.ParsePath("/b.txt")); err != nil {
		t.Fatalf("Find renamed file: %v", err)
	}
}

func TestMoveFileWithoutOverrideFailsOnCollision(t *testing.T) {
	svc, _, cursor := newTestService(t)
	if err := svc.CreateFile(cursor, "a.txt", []byte("a")); err != nil {
		t.Fatalf("CreateFile a: %v", err)
	}
	if err := svc.CreateFile(cursor, "b.txt", []byte("b")); err != nil {
		t.Fatalf("CreateFile b: %v", err)
	}
	if err := svc.MoveFile(cursor, "a.txt", "b.txt", false); err == nil {
		t.Fatal("expected collision error without override")
	}
}

func TestMoveFileWithOverrideReplacesDestination(t *testing.T) {
	svc, _, cursor := newTestService(t)
	if err := svc.CreateFile(cursor, "a.txt", []byte("a")); err != nil {
		t.Fatalf("CreateFile a: %v", err)
	}
	if err := svc.CreateFile(cursor, "b.txt", []byte("b")); err != nil {
		t.Fatalf("CreateFile b: %v", err)
	}
	if err := svc.MoveFile(cursor, "a.txt", "b.txt", true); err != nil {
		t.Fatalf("MoveFile with override: %v", err)
	}
	data, err := svc.ReadFile(cursor, "b.txt")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "a" {
		t.Fatalf("got %q, want %q", data, "a")
	}
}

func TestCopyFileDuplicatesContentIndependently(t *testing.T) {
	svc, _, cursor := newTestService(t)
	if err := svc.CreateFile(cursor, "a.txt", []byte("original")); err != nil {
		t.Fatalf("CreateFile: %v", err)
	}
	if err := svc.CopyFile(cursor, "a.txt", "b.txt", false); err != nil {
		t.Fatalf("CopyFile: %v", err)
	}
	if err := svc.AppendIntoFile(cursor, "a.txt", []byte("-more")); err != nil {
		t.Fatalf("AppendIntoFile: %v", err)
	}

	aData, err := svc.ReadFile(cursor, "a.txt")
	if err != nil {
		t.Fatalf("ReadFile a: %v", err)
	}
	bData, err := svc.ReadFile(cursor, "b.txt")
	if err != nil {
		t.Fatalf("ReadFile b: %v", err)
	}
	if string(aData) != "original-more" {
		t.Fatalf("got %q, want %q", aData, "original-more")
	}
	if string(bData) != "original" {
		t.Fatalf("copy should be unaffected by later append to source, got %q", bData)
	}
}

func TestCopyFolderRecursesIntoSubfolders(t *testing.T) {
	svc, s, cursor := newTestService(t)
	if err := svc.CreateFolder(cursor, "src"); err != nil {
		t.Fatalf("CreateFolder: %v", err)
	}
	if err := svc.CreateFile(cursor, "src/a.txt", []byte("a")); err != nil {
		t.Fatalf("CreateFile: %v", err)
	}
	if err := svc.CreateFolder(cursor, "src/nested"); err != nil {
		t.Fatalf("CreateFolder nested: %v", err)
	}
	if err := svc.CreateFile(cursor, "src/nested/b.txt", []byte("b")); err != nil {
		t.Fatalf("CreateFile nested: %v", err)
	}

	if err := svc.CopyFolder(cursor, "src", "dup", false); err != nil {
		t.Fatalf("CopyFolder: %v", err)
	}
	if _, _, err := s.Find(node.ParsePath("/dup/a.txt")); err != nil {
		t.Fatalf("Find /dup/a.txt: %v", err)
	}
	if _, _, err := s.Find(node.ParsePath("/dup/nested/b.txt")); err != nil {
		t.Fatalf("Find /dup/nested/b.txt: %v", err)
	}
	if _, _, err := s.Find(node.ParsePath("/src/a.txt")); err != nil {
		t.Fatalf("source should survive a copy: %v", err)
	}
}

func TestFindFilesGlobsRecursively(t *testing.T) {
	svc, _, cursor := newTestService(t)
	if err := svc.CreateFile(cursor, "a.txt", nil); err != nil {
		t.Fatalf("CreateFile a.txt: %v", err)
	}
	if err := svc.CreateFile(cursor, "a.log", nil); err != nil {
		t.Fatalf("CreateFile a.log: %v", err)
	}
	if err := svc.CreateFolder(cursor, "sub"); err != nil {
		t.Fatalf("CreateFolder sub: %v", err)
	}
	if err := svc.CreateFile(cursor, "sub/b.txt", nil); err != nil {
		t.Fatalf("CreateFile sub/b.txt: %v", err)
	}

	var got []string
	err := svc.FindFiles(cursor, "**.txt", true, func(fl node.FileLoader) (bool, error) {
		got = append(got, fl.Path().String())
		return true, nil
	})
	if err != nil {
		t.Fatalf("FindFiles: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 matches, got %v", got)
	}
}

func TestFindFilesNonRecursiveStaysInCurrentFolder(t *testing.T) {
	svc, _, cursor := newTestService(t)
	if err := svc.CreateFile(cursor, "a.txt", nil); err != nil {
		t.Fatalf("CreateFile: %v", err)
	}
	if err := svc.CreateFolder(cursor, "sub"); err != nil {
		t.Fatalf("CreateFolder: %v", err)
	}
	if err := svc.CreateFile(cursor, "sub/b.txt", nil); err != nil {
		t.Fatalf("CreateFile nested: %v", err)
	}

	var got []string
	err := svc.FindFiles(cursor, "/*.txt", false, func(fl node.FileLoader) (bool, error) {
		got = append(got, fl.Path().String())
		return true, nil
	})
	if err != nil {
		t.Fatalf("FindFiles: %v", err)
	}
	if len(got) != 1 || got[0] != "/a.txt" {
		t.Fatalf("expected only /a.txt, got %v", got)
	}
}

func TestValidateDetectsMD5Tampering(t *testing.T) {
	svc, s, cursor := newTestService(t)
	if err := svc.CreateFile(cursor, "a.txt", []byte("hello")); err != nil {
		t.Fatalf("CreateFile: %v", err)
	}
	ok, err := svc.Validate(cursor)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !ok {
		t.Fatal("expected a fresh file to validate")
	}

	cell, err := s.GetMutableFileDataCell(node.ParsePath("/a.txt"))
	if err != nil {
		t.Fatalf("GetMutableFileDataCell: %v", err)
	}
	if _, err := cell.Write(0, []byte("XXXXX")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	ok, err = svc.Validate(cursor)
	if err != nil {
		t.Fatalf("Validate after tamper: %v", err)
	}
	if ok {
		t.Fatal("expected tampered content to fail validation")
	}
}

func TestUpdateMD5FixesValidation(t *testing.T) {
	svc, s, cursor := newTestService(t)
	if err := svc.CreateFile(cursor, "a.txt", []byte("hello")); err != nil {
		t.Fatalf("CreateFile: %v", err)
	}
	cell, err := s.GetMutableFileDataCell(node.ParsePath("/a.txt"))
	if err != nil {
		t.Fatalf("GetMutableFileDataCell: %v", err)
	}
	if _, err := cell.Write(0, []byte("XXXXX")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := svc.UpdateMD5(cursor, "a.txt"); err != nil {
		t.Fatalf("UpdateMD5: %v", err)
	}
	ok, err := svc.Validate(cursor)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !ok {
		t.Fatal("expected validation to pass after UpdateMD5")
	}
}

func TestClearFileEmptiesContent(t *testing.T) {
	svc, _, cursor := newTestService(t)
	if err := svc.CreateFile(cursor, "a.txt", []byte("hello")); err != nil {
		t.Fatalf("CreateFile: %v", err)
	}
	if err := svc.ClearFile(cursor, "a.txt"); err != nil {
		t.Fatalf("ClearFile: %v", err)
	}
	data, err := svc.ReadFile(cursor, "a.txt")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(data) != 0 {
		t.Fatalf("expected empty content after ClearFile, got %q", data)
	}
}

func TestClearFileLeavesMD5StaleUntilUpdateMD5(t *testing.T) {
	svc, _, cursor := newTestService(t)
	if err := svc.CreateFile(cursor, "a.txt", []byte("hello")); err != nil {
		t.Fatalf("CreateFile: %v", err)
	}
	if err := svc.ClearFile(cursor, "a.txt"); err != nil {
		t.Fatalf("ClearFile: %v", err)
	}
	ok, err := svc.Validate(cursor)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if ok {
		t.Fatal("expected stale md5 to fail validation after ClearFile")
	}
	if err := svc.UpdateMD5(cursor, "a.txt"); err != nil {
		t.Fatalf("UpdateMD5: %v", err)
	}
	ok, err = svc.Validate(cursor)
	if err != nil {
		t.Fatalf("Validate after UpdateMD5: %v", err)
	}
	if !ok {
		t.Fatal("expected validation to pass after explicit UpdateMD5")
	}
}

func TestAppendIntoFileGrowsContent(t *testing.T) {
	svc, _, cursor := newTestService(t)
	if err := svc.CreateFile(cursor, "a.txt", []byte("hello")); err != nil {
		t.Fatalf("CreateFile: %v", err)
	}
	if err := svc.AppendIntoFile(cursor, "a.txt", []byte(" world")); err != nil {
		t.Fatalf("AppendIntoFile: %v", err)
	}
	data, err := svc.ReadFile(cursor, "a.txt")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "hello world" {
		t.Fatalf("got %q, want %q", data, "hello world")
	}
}

func TestOutputStreamOverwritesAtOffset(t *testing.T) {
	svc, _, cursor := newTestService(t)
	if err := svc.CreateFile(cursor, "a.txt", []byte("hello world")); err != nil {
		t.Fatalf("CreateFile: %v", err)
	}
	w, err := svc.OutputStream(cursor, "a.txt", 6)
	if err != nil {
		t.Fatalf("OutputStream: %v", err)
	}
	if _, err := w.Write([]byte("there")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	w.Close()

	data, err := svc.ReadFile(cursor, "a.txt")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "hello there" {
		t.Fatalf("got %q, want %q", data, "hello there")
	}
}

func TestAsIOFSReadsFileAndDir(t *testing.T) {
	svc, _, cursor := newTestService(t)
	if err := svc.CreateFolder(cursor, "docs"); err != nil {
		t.Fatalf("CreateFolder: %v", err)
	}
	if err := svc.CreateFile(cursor, "docs/a.txt", []byte("hi")); err != nil {
		t.Fatalf("CreateFile: %v", err)
	}

	iofs := AsIOFS(svc, cursor)
	f, err := iofs.Open("docs/a.txt")
	if err != nil {
		t.Fatalf("Open file: %v", err)
	}
	data, err := io.ReadAll(f)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(data) != "hi" {
		t.Fatalf("got %q, want %q", data, "hi")
	}
	f.Close()

	dir, err := iofs.Open("docs")
	if err != nil {
		t.Fatalf("Open dir: %v", err)
	}
	defer dir.Close()
	info, err := dir.Stat()
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if !info.IsDir() {
		t.Fatal("expected docs to report as a directory")
	}
}
