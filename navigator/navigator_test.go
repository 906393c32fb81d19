package navigator

import (
	"testing"
	"time"

	"github.com/SBOne-Kenobi/OneFS/internal/testhelper"
	"github.com/SBOne-Kenobi/OneFS/node"
	"github.com/SBOne-Kenobi/OneFS/store"
	"github.com/SBOne-Kenobi/OneFS/util/timestamp"
)

func newTestNavigator(t *testing.T) (*Navigator, *store.Store) {
	t.Helper()
	mem := testhelper.NewMemStorage()
	s := store.New(mem, timestamp.Fixed(time.Unix(1700000000, 0).UTC()), nil)
	if err := s.Init(true); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if _, err := s.CreateFolder(node.ParsePath("/a/")); err != nil {
		t.Fatalf("CreateFolder /a/: %v", err)
	}
	if _, err := s.CreateFolder(node.ParsePath("/a/b/")); err != nil {
		t.Fatalf("CreateFolder /a/b/: %v", err)
	}
	nav, err := New(s, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return nav, s
}

func TestNewStartsAtRoot(t *testing.T) {
	nav, _ := newTestNavigator(t)
	if !nav.Path().Absolute() || !nav.Path().Empty() {
		t.Fatalf("expected root path, got %q", nav.Path().String())
	}
	if !nav.Folder().IsRoot() {
		t.Fatal("fresh navigator's folder should report IsRoot()")
	}
}

func TestCdAbsoluteWalksFromRoot(t *testing.T) {
	nav, _ := newTestNavigator(t)
	if err := nav.Cd("/a/b/"); err != nil {
		t.Fatalf("Cd: %v", err)
	}
	if nav.Path().String() != "/a/b/" {
		t.Fatalf("expected /a/b/, got %q", nav.Path().String())
	}
	if nav.Folder().IsRoot() {
		t.Fatal("folder at /a/b/ should not report IsRoot()")
	}
}

func TestCdRelativeWalksFromCurrent(t *testing.T) {
	nav, _ := newTestNavigator(t)
	if err := nav.Cd("/a/"); err != nil {
		t.Fatalf("Cd /a/: %v", err)
	}
	if err := nav.Cd("b/"); err != nil {
		t.Fatalf("Cd b/: %v", err)
	}
	if nav.Path().String() != "/a/b/" {
		t.Fatalf("expected /a/b/, got %q", nav.Path().String())
	}
}

func TestCdMissingComponentFails(t *testing.T) {
	nav, _ := newTestNavigator(t)
	err := nav.Cd("/a/missing/")
	if !node.IsNotFound(err) {
		t.Fatalf("expected a not-found error, got %v", err)
	}
	if nav.Path().String() != "/" {
		t.Fatal("a failed Cd must not move the cursor")
	}
}

func TestBackReturnsToParent(t *testing.T) {
	nav, _ := newTestNavigator(t)
	if err := nav.Cd("/a/b/"); err != nil {
		t.Fatalf("Cd: %v", err)
	}
	if err := nav.Back(); err != nil {
		t.Fatalf("Back: %v", err)
	}
	if nav.Path().String() != "/a/" {
		t.Fatalf("expected /a/, got %q", nav.Path().String())
	}
}

func TestBackAtRootIsNoop(t *testing.T) {
	nav, _ := newTestNavigator(t)
	if err := nav.Back(); err != nil {
		t.Fatalf("Back at root: %v", err)
	}
	if !nav.Path().Empty() {
		t.Fatal("Back at root should not move the cursor")
	}
}

func TestReloadPicksUpExternalMutation(t *testing.T) {
	nav, s := newTestNavigator(t)
	if err := nav.Cd("/a/"); err != nil {
		t.Fatalf("Cd: %v", err)
	}
	if _, err := s.CreateFolder(node.ParsePath("/a/c/")); err != nil {
		t.Fatalf("CreateFolder /a/c/: %v", err)
	}
	if len(nav.Folder().Folders) != 1 {
		t.Fatal("stale snapshot should not see the new folder yet")
	}
	if err := nav.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if len(nav.Folder().Folders) != 2 {
		t.Fatalf("expected 2 subfolders after Reload, got %d", len(nav.Folder().Folders))
	}
}
